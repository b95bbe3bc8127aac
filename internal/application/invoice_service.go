package application

import (
	"bytes"
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/guard"
	repo "github.com/oksasatya/go-ddd-storefront/internal/domain/repository"
)

const invoiceContentType = "application/pdf"

type InvoiceService struct {
	Orders   repo.OrderRepository
	Renderer InvoiceRenderer
	Store    InvoiceStore // optional
	Logger   *logrus.Logger
}

func NewInvoiceService(orders repo.OrderRepository, renderer InvoiceRenderer, store InvoiceStore, logger *logrus.Logger) *InvoiceService {
	return &InvoiceService{Orders: orders, Renderer: renderer, Store: store, Logger: logger}
}

// GenerateInvoice renders the invoice of one of user's orders. Ownership is
// checked before anything is rendered or stored.
func (s *InvoiceService) GenerateInvoice(ctx context.Context, user *entity.User, orderID string) (*entity.Invoice, error) {
	if user == nil {
		return nil, apperror.ErrAuthorization
	}
	order, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.Upstream("get order", err)
	}
	if order == nil {
		return nil, apperror.NotFound("order")
	}
	if err := guard.AssertOwner(order, user.ID); err != nil {
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"order_id": orderID, "user_id": user.ID}).Warn("invoice requested by non-owner")
		}
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.Renderer.Render(&buf, entity.NewInvoiceDocument(order)); err != nil {
		return nil, err
	}
	inv := &entity.Invoice{
		Name:        entity.InvoiceName(order.ID),
		ContentType: invoiceContentType,
		Data:        buf.Bytes(),
	}

	if s.Store != nil {
		if loc, err := s.Store.Save(ctx, "invoices/"+inv.Name, inv.ContentType, inv.Data); err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("order_id", order.ID).Error("store invoice copy failed")
			}
		} else if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"order_id": order.ID, "location": loc}).Debug("invoice stored")
		}
	}
	invoicesGenerated.Add(1)
	return inv, nil
}
