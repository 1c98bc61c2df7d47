package contact

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, m *Message) error {
	if m.Status == "" {
		m.Status = StatusNew
	}
	query := `
		INSERT INTO contact_messages (name, email, subject, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return s.db.QueryRow(ctx, query, m.Name, m.Email, m.Subject, m.Message, string(m.Status)).
		Scan(&m.ID, &m.CreatedAt)
}

func (s *PostgresStore) List(ctx context.Context) ([]Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, email, subject, message, status, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m      Message
			status string
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &status, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Status = Status(status)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, status Status) (*Message, error) {
	query := `
		UPDATE contact_messages SET status = $1 WHERE id = $2
		RETURNING id, name, email, subject, message, status, created_at
	`
	var (
		m   Message
		raw string
	)
	err := s.db.QueryRow(ctx, query, string(status), id).
		Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &raw, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m.Status = Status(raw)
	return &m, nil
}
