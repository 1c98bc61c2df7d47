package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserStore reads and writes the admin_users table.
type PostgresUserStore struct {
	db *pgxpool.Pool
}

func NewPostgresUserStore(db *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (r *PostgresUserStore) get(ctx context.Context, where string, arg any) (*AdminUser, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM admin_users WHERE ` + where
	u := &AdminUser{}
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*AdminUser, error) {
	return r.get(ctx, "username = $1", username)
}

func (r *PostgresUserStore) GetByID(ctx context.Context, id int64) (*AdminUser, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *PostgresUserStore) Create(ctx context.Context, u *AdminUser) error {
	query := `
		INSERT INTO admin_users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, u.Username, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrUserExists
	}
	return err
}
