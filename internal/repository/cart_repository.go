package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/storefront-service/internal/domain"
)

// CartRepository persists per-user cart contents.
type CartRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	ListWithProducts(ctx context.Context, userID string) ([]domain.CartLine, error)
	Upsert(ctx context.Context, userID, productID string) error
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	Clear(ctx context.Context, userID string) error
}

type cartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a Postgres-backed implementation.
func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &cartRepository{pool: pool}
}

func (r *cartRepository) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	const query = `
        SELECT product_id, quantity FROM cart_items
        WHERE user_id=$1 ORDER BY added_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *cartRepository) ListWithProducts(ctx context.Context, userID string) ([]domain.CartLine, error) {
	const query = `
        SELECT p.id, p.name, p.description, p.price, p.image, p.category, p.is_featured,
               p.created_at, p.updated_at, c.quantity
        FROM cart_items c
        JOIN products p ON p.id = c.product_id
        WHERE c.user_id=$1 ORDER BY c.added_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.Product.ID,
			&line.Product.Name,
			&line.Product.Description,
			&line.Product.Price,
			&line.Product.Image,
			&line.Product.Category,
			&line.Product.IsFeatured,
			&line.Product.CreatedAt,
			&line.Product.UpdatedAt,
			&line.Quantity,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *cartRepository) Upsert(ctx context.Context, userID, productID string) error {
	const query = `
        INSERT INTO cart_items (user_id, product_id, quantity)
        VALUES ($1, $2, 1)
        ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + 1`

	_, err := r.pool.Exec(ctx, query, userID, productID)
	return err
}

func (r *cartRepository) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		_, err := r.pool.Exec(ctx,
			`DELETE FROM cart_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
		return err
	}

	const query = `
        UPDATE cart_items SET quantity=$3 WHERE user_id=$1 AND product_id=$2`
	_, err := r.pool.Exec(ctx, query, userID, productID, quantity)
	return err
}

func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}
