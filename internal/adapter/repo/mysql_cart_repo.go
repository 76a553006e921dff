package repo

import (
	"context"
	"database/sql"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/chilin89117/shopfront/internal/usecase"
)

type MySQLCartRepo struct{ db *sql.DB }

func NewMySQLCartRepo(db *sql.DB) *MySQLCartRepo { return &MySQLCartRepo{db: db} }

// Items joins cart rows with live product data, oldest line first so
// checkout snapshots preserve insertion order.
func (r *MySQLCartRepo) Items(ctx context.Context, userID string) ([]entity.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.product_id, p.title, p.price, p.image_path, c.qty
FROM cart_items c JOIN products p ON p.id = c.product_id
WHERE c.user_id=? ORDER BY c.created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.CartItem
	for rows.Next() {
		var it entity.CartItem
		if err := rows.Scan(&it.ProductID, &it.Title, &it.Price, &it.ImagePath, &it.Qty); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *MySQLCartRepo) Add(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO cart_items (user_id,product_id,qty,created_at)
VALUES (?,?,1,NOW())
ON DUPLICATE KEY UPDATE qty = qty + 1`, userID, productID)
	return err
}

// Remove decrements by qty; a non-positive qty or one that empties the
// line deletes the row.
func (r *MySQLCartRepo) Remove(ctx context.Context, userID, productID string, qty int) error {
	if qty > 0 {
		res, err := r.db.ExecContext(ctx, `
UPDATE cart_items SET qty = qty - ? WHERE user_id=? AND product_id=? AND qty > ?`,
			qty, userID, productID, qty)
		if err != nil {
			return err
		}
		if rows, err := res.RowsAffected(); err != nil {
			return err
		} else if rows > 0 {
			return nil
		}
	}
	_, err := r.db.ExecContext(ctx, `
DELETE FROM cart_items WHERE user_id=? AND product_id=?`, userID, productID)
	return err
}

func (r *MySQLCartRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id=?`, userID)
	return err
}

func (r *MySQLCartRepo) PurgeProduct(ctx context.Context, productID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE product_id=?`, productID)
	return err
}

var _ usecase.CartRepo = (*MySQLCartRepo)(nil)
