package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
)

type OrderRepository interface {
	// Create persists o unless an order with the same PaymentRef exists. It
	// returns the stored order and whether this call created it.
	Create(ctx context.Context, o *entity.Order) (*entity.Order, bool, error)
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByPaymentRef(ctx context.Context, ref string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Order, error)
}
