package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/chilin89117/shopfront/internal/usecase"
)

type MySQLProductRepo struct{ db *sql.DB }

func NewMySQLProductRepo(db *sql.DB) *MySQLProductRepo { return &MySQLProductRepo{db: db} }

const productCols = `id,title,price,description,image_path,owner_id,deleted,created_at,updated_at`

func (r *MySQLProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO products (id,title,price,description,image_path,owner_id,deleted,created_at,updated_at)
VALUES (?,?,?,?,?,?,0,NOW(),NOW())
`, p.ID, p.Title, p.Price, p.Description, p.ImagePath, p.OwnerID)
	return err
}

func (r *MySQLProductRepo) Update(ctx context.Context, p *entity.Product) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE products SET title=?, price=?, description=?, image_path=?, updated_at=NOW()
WHERE id=? AND deleted=0`, p.Title, p.Price, p.Description, p.ImagePath, p.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// SoftDelete marks the row; the image and any order snapshots keep
// working.
func (r *MySQLProductRepo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE products SET deleted=1, updated_at=NOW() WHERE id=? AND deleted=0`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *MySQLProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE id=?`, id)
	var p entity.Product
	err := row.Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.ImagePath, &p.OwnerID, &p.Deleted, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MySQLProductRepo) List(ctx context.Context, offset, limit int) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+productCols+` FROM products
WHERE deleted=0 ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (r *MySQLProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE deleted=0`).Scan(&n)
	return n, err
}

func (r *MySQLProductRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+productCols+` FROM products
WHERE owner_id=? AND deleted=0 ORDER BY created_at DESC LIMIT ? OFFSET ?`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (r *MySQLProductRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM products WHERE owner_id=? AND deleted=0`, ownerID).Scan(&n)
	return n, err
}

func scanProducts(rows *sql.Rows) ([]entity.Product, error) {
	defer rows.Close()
	var out []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.ImagePath, &p.OwnerID, &p.Deleted, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ usecase.ProductRepo = (*MySQLProductRepo)(nil)
