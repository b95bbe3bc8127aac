package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/repository"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order header and its lines in one transaction. The
// unique payment_ref makes a second finalization of the same payment a no-op
// that hands back the first order.
func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) (*entity.Order, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, email, payment_ref, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (payment_ref) DO NOTHING
		RETURNING id
	`, o.ID, o.UserID, o.Email, o.PaymentRef, o.CreatedAt).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = tx.Rollback(ctx)
		existing, gErr := r.GetByPaymentRef(ctx, o.PaymentRef)
		if gErr != nil {
			return nil, false, gErr
		}
		if existing == nil {
			return nil, false, fmt.Errorf("order for payment %s vanished after conflict", o.PaymentRef)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	batch := &pgx.Batch{}
	for i, l := range o.Lines {
		batch.Queue(`
			INSERT INTO order_lines (order_id, position, product_id, title, description, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)
		`, o.ID, i, l.ProductID, l.Title, l.Description, l.Price.String(), l.Quantity)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *OrderRepository) GetByPaymentRef(ctx context.Context, ref string) (*entity.Order, error) {
	return r.getOne(ctx, `WHERE payment_ref = $1`, ref)
}

func (r *OrderRepository) getOne(ctx context.Context, where string, arg any) (*entity.Order, error) {
	o := &entity.Order{}
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, user_id::text, email, payment_ref, created_at
		FROM orders `+where, arg).Scan(&o.ID, &o.UserID, &o.Email, &o.PaymentRef, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	lines, err := r.linesFor(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, user_id::text, email, payment_ref, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []entity.Order{}
	ids := []string{}
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Email, &o.PaymentRef, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

func (r *OrderRepository) linesFor(ctx context.Context, orderIDs []string) (map[string][]entity.OrderLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_id::text, product_id::text, title, description, price::text, quantity
		FROM order_lines
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position
	`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]entity.OrderLine, len(orderIDs))
	for rows.Next() {
		var (
			orderID, price string
			l              entity.OrderLine
		)
		if err := rows.Scan(&orderID, &l.ProductID, &l.Title, &l.Description, &price, &l.Quantity); err != nil {
			return nil, err
		}
		if l.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("order %s line price %q: %w", orderID, price, err)
		}
		out[orderID] = append(out[orderID], l)
	}
	return out, rows.Err()
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
