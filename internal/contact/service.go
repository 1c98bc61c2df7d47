package contact

import (
	"context"
	"fmt"
	"log/slog"

	"essayons/internal/apperr"
)

// Result reports what happened to a submission. The message is saved even
// when delivery fails.
type Result struct {
	Message       Message `json:"message"`
	Delivered     bool    `json:"delivered"`
	DeliveryError string  `json:"delivery_error,omitempty"`
}

type Service struct {
	store    Store
	notifier Notifier
	log      *slog.Logger
}

func NewService(store Store, notifier Notifier) *Service {
	if notifier == nil {
		notifier = NewLogNotifier(nil)
	}
	return &Service{store: store, notifier: notifier, log: slog.Default().With("component", "contact")}
}

// Submit validates, persists and then relays the message.
func (s *Service) Submit(ctx context.Context, in Input) (*Result, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m := &Message{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
		Status:  StatusNew,
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("save contact message: %w", err)
	}

	res := &Result{Message: *m, Delivered: true}
	if err := s.notifier.Notify(ctx, *m); err != nil {
		s.log.Error("contact relay failed", "message_id", m.ID, "error", err)
		res.Delivered = false
		res.DeliveryError = err.Error()
	}
	return res, nil
}

func (s *Service) List(ctx context.Context) ([]Message, error) {
	return s.store.List(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) (*Message, error) {
	if !status.Valid() {
		var ve apperr.ValidationError
		ve.Add("status", "must be one of new, read, responded, archived")
		return nil, ve.Err()
	}
	return s.store.UpdateStatus(ctx, id, status)
}
