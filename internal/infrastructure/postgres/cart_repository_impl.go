package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/repository"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) Get(ctx context.Context, userID string) (*entity.Cart, error) {
	cart := &entity.Cart{UserID: userID, Entries: []entity.CartEntry{}}
	rows, err := r.pool.Query(ctx, `
		SELECT product_id::text, quantity
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at, product_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var e entity.CartEntry
		if err := rows.Scan(&e.ProductID, &e.Quantity); err != nil {
			return nil, err
		}
		cart.Entries = append(cart.Entries, e)
	}
	return cart, rows.Err()
}

// Increment adds the product with quantity 1 or bumps the existing entry, in
// one statement.
func (r *CartRepository) Increment(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + 1
	`, userID, productID)
	return err
}

func (r *CartRepository) Remove(ctx context.Context, userID, productID string) error {
	if !isUUID(productID) {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	return err
}

func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

var _ repository.CartRepository = (*CartRepository)(nil)
