package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
)

// ProductRepository is the read side of the catalog.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs returns the products that still exist, keyed by id.
	GetByIDs(ctx context.Context, ids []string) (map[string]entity.Product, error)
}
