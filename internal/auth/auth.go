package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already exists")
	ErrSessionNotFound    = errors.New("session not found or expired")
)

// AdminUser is a person allowed into the admin area.
type AdminUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session links a browser cookie to an admin user. Only the hash of the
// cookie token is stored.
type Session struct {
	ID        string    `json:"id"`
	TokenHash string    `json:"token_hash"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*AdminUser, error)
	GetByID(ctx context.Context, id int64) (*AdminUser, error)
	Create(ctx context.Context, u *AdminUser) error
}

// SessionStore keeps sessions keyed by token hash until they expire.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, tokenHash string) (*Session, error)
	Delete(ctx context.Context, tokenHash string) error
}

type ctxKey string

const userContextKey ctxKey = "essayons.auth.user"

func WithUser(ctx context.Context, u *AdminUser) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

func UserFromContext(ctx context.Context) (*AdminUser, bool) {
	u, ok := ctx.Value(userContextKey).(*AdminUser)
	return u, ok
}
