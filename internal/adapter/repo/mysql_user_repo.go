package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/chilin89117/shopfront/internal/usecase"
	"github.com/go-sql-driver/mysql"
)

type MySQLUserRepo struct{ db *sql.DB }

func NewMySQLUserRepo(db *sql.DB) *MySQLUserRepo { return &MySQLUserRepo{db: db} }

func (r *MySQLUserRepo) Create(ctx context.Context, u *entity.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id,name,email,password_hash,image_path,admin,created_at,updated_at)
VALUES (?,?,?,?,?,?,NOW(),NOW())
`, u.ID, u.Name, u.Email, u.PasswordHash, u.ImagePath, u.Admin)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return entity.ErrDuplicateEmail
	}
	return err
}

func (r *MySQLUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
SELECT id,name,email,password_hash,image_path,admin,created_at,updated_at
FROM users WHERE id=?`, id))
}

func (r *MySQLUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
SELECT id,name,email,password_hash,image_path,admin,created_at,updated_at
FROM users WHERE email=?`, email))
}

func (r *MySQLUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET password_hash=?, updated_at=NOW() WHERE id=?`, passwordHash, id)
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

func (r *MySQLUserRepo) scanOne(row *sql.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ImagePath, &u.Admin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

var _ usecase.UserRepo = (*MySQLUserRepo)(nil)
