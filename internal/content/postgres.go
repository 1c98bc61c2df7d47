package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresStore implements Store on the content and attachments tables.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const contentColumns = `id, type, title, slug, summary, body, status, published_at, hero_image_url, author_id, created_at, updated_at`

func scanContent(row pgx.Row) (*Content, error) {
	c := &Content{}
	err := row.Scan(
		&c.ID,
		&c.Type,
		&c.Title,
		&c.Slug,
		&c.Summary,
		&c.Body,
		&c.Status,
		&c.PublishedAt,
		&c.HeroImageURL,
		&c.AuthorID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) ListContent(ctx context.Context, f Filter) ([]Content, error) {
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		args = append(args, string(f.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + contentColumns + ` FROM content`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var out []Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetContentByID(ctx context.Context, id int64) (*Content, error) {
	return scanContent(s.db.QueryRow(ctx, `SELECT `+contentColumns+` FROM content WHERE id = $1`, id))
}

func (s *PostgresStore) GetContentBySlug(ctx context.Context, slug string) (*Content, error) {
	return scanContent(s.db.QueryRow(ctx, `SELECT `+contentColumns+` FROM content WHERE slug = $1`, slug))
}

func (s *PostgresStore) CreateContent(ctx context.Context, c *Content) error {
	query := `
		INSERT INTO content (type, title, slug, summary, body, status, published_at, hero_image_url, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query,
		string(c.Type),
		c.Title,
		c.Slug,
		c.Summary,
		c.Body,
		string(c.Status),
		c.PublishedAt,
		c.HeroImageURL,
		c.AuthorID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapUnique(err)
}

func (s *PostgresStore) UpdateContent(ctx context.Context, id int64, p Patch) (*Content, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Type != nil {
		add("type", string(*p.Type))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Slug != nil {
		add("slug", *p.Slug)
	}
	if p.Summary != nil {
		add("summary", *p.Summary)
	}
	if p.Body != nil {
		add("body", *p.Body)
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.PublishedAt != nil {
		add("published_at", *p.PublishedAt)
	}
	if p.HeroImageURL != nil {
		add("hero_image_url", *p.HeroImageURL)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE content SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), contentColumns)
	c, err := scanContent(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapUnique(err)
	}
	return c, nil
}

func (s *PostgresStore) DeleteContent(ctx context.Context, id int64) error {
	// attachments cascade through the foreign key
	tag, err := s.db.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetAttachmentsByContentID(ctx context.Context, contentID int64) ([]Attachment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, content_id, kind, url, title, description, file_size, sort_order, created_at
		FROM attachments WHERE content_id = $1
		ORDER BY sort_order, id
	`, contentID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var out []Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.ContentID, &a.Kind, &a.URL, &a.Title, &a.Description,
			&a.FileSize, &a.Order, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateAttachment(ctx context.Context, a *Attachment) error {
	query := `
		INSERT INTO attachments (content_id, kind, url, title, description, file_size, sort_order)
		SELECT $1::bigint, $2::varchar, $3::varchar, $4::varchar, $5::text, $6::bigint, $7::integer
		WHERE EXISTS (SELECT 1 FROM content WHERE id = $1)
		RETURNING id, created_at
	`
	err := s.db.QueryRow(ctx, query,
		a.ContentID,
		string(a.Kind),
		a.URL,
		a.Title,
		a.Description,
		a.FileSize,
		a.Order,
	).Scan(&a.ID, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStore) DeleteAttachment(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlugTaken
	}
	return err
}
