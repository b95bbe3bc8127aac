package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
)

// SessionStore keeps server-side sessions. Get returns (nil, nil) for an
// unknown or expired id. DeleteByUser ends every session of a user.
type SessionStore interface {
	Save(ctx context.Context, s *entity.Session) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// PaymentGateway is the hosted checkout provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req entity.CheckoutRequest) (*entity.PaymentSession, error)
	ConfirmPayment(ctx context.Context, sessionID string) (*entity.PaymentConfirmation, error)
}

// Notifier delivers a rendered HTML email.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

type InvoiceRenderer interface {
	Render(w io.Writer, doc entity.InvoiceDocument) error
}

// InvoiceStore keeps the durable copy of generated invoices and returns its location.
type InvoiceStore interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// OrderIndexer publishes finalized orders to the search index.
type OrderIndexer interface {
	IndexOrder(ctx context.Context, o *entity.Order) error
}

// Clock is injected so token expiry can be tested without sleeping.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
