package contact

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"essayons/internal/apperr"
)

var ErrNotFound = errors.New("contact message not found")

type Status string

const (
	StatusNew       Status = "new"
	StatusRead      Status = "read"
	StatusResponded Status = "responded"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusResponded, StatusArchived:
		return true
	}
	return false
}

// Message is a stored contact form submission.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Input is what the public form posts.
type Input struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

const (
	maxNameLen    = 255
	maxSubjectLen = 500
	maxMessageLen = 10000
)

// Normalize trims every field.
func (in Input) Normalize() Input {
	return Input{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
}

// Validate expects a normalized input.
func (in Input) Validate() error {
	var ve apperr.ValidationError
	ve.Require("name", in.Name)
	ve.Require("email", in.Email)
	ve.Require("subject", in.Subject)
	ve.Require("message", in.Message)

	if in.Email != "" {
		if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
			ve.Add("email", "must be a valid email address")
		}
	}
	if utf8.RuneCountInString(in.Name) > maxNameLen {
		ve.Add("name", "is too long")
	}
	if utf8.RuneCountInString(in.Subject) > maxSubjectLen {
		ve.Add("subject", "is too long")
	}
	if utf8.RuneCountInString(in.Message) > maxMessageLen {
		ve.Add("message", "is too long")
	}
	return ve.Err()
}

type Store interface {
	Create(ctx context.Context, m *Message) error
	// List returns messages newest first.
	List(ctx context.Context) ([]Message, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Message, error)
}

// Notifier relays a saved message to whoever answers the inbox.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}
