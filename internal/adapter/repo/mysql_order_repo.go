package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/chilin89117/shopfront/internal/usecase"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

// Create writes the order header and its denormalized line items in one
// transaction. Items keep their position so invoices render rows in
// insertion order.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *entity.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO orders (id,user_id,user_name,user_email,payment_status,created_at)
VALUES (?,?,?,?,?,NOW())
`, o.ID, o.User.ID, o.User.Name, o.User.Email, o.PaymentStatus); err != nil {
		return err
	}

	for i, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO order_items (order_id,position,title,qty,unit_price,image_path)
VALUES (?,?,?,?,?,?)
`, o.ID, i, it.Title, it.Qty, it.UnitPrice, it.ImagePath); err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,user_id,user_name,user_email,payment_status,created_at
FROM orders WHERE id=?`, id)

	var o entity.Order
	err := row.Scan(&o.ID, &o.User.ID, &o.User.Name, &o.User.Email, &o.PaymentStatus, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *MySQLOrderRepo) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,user_id,user_name,user_email,payment_status,created_at
FROM orders WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.User.ID, &o.User.Name, &o.User.Email, &o.PaymentStatus, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.itemsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *MySQLOrderRepo) UpdatePaymentStatusIf(ctx context.Context, id string, from, to entity.PaymentStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET payment_status=? WHERE id=? AND payment_status=?`, to, id, from)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// rows == 0 → nothing matched (either not found or status mismatch)
	return rows > 0, nil
}

func (r *MySQLOrderRepo) itemsFor(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT title,qty,unit_price,image_path
FROM order_items WHERE order_id=? ORDER BY position ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.Title, &it.Qty, &it.UnitPrice, &it.ImagePath); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
