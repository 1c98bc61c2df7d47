package content

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"essayons/internal/apperr"
)

// Input is the body of a create request.
type Input struct {
	Type         Kind       `json:"type"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Summary      string     `json:"summary"`
	Body         string     `json:"body"`
	Status       Status     `json:"status"`
	PublishedAt  *time.Time `json:"published_at"`
	HeroImageURL string     `json:"hero_image_url"`
}

// AttachmentInput is the body of an attachment create request.
type AttachmentInput struct {
	ContentID   int64          `json:"content_id"`
	Kind        AttachmentKind `json:"kind"`
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	FileSize    int64          `json:"file_size"`
	Order       int            `json:"order"`
}

// Service validates requests before they reach the store.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) List(ctx context.Context, f Filter) ([]Content, error) {
	var v apperr.ValidationError
	if f.Type != "" && !f.Type.Valid() {
		v.Add("type", "must be blog or tutorial")
	}
	if f.Status != "" && !f.Status.Valid() {
		v.Add("status", "must be draft or published")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return s.store.ListContent(ctx, f)
}

// Published returns the published item with slug; drafts are not found.
func (s *Service) Published(ctx context.Context, slug string) (*Content, []Attachment, error) {
	c, err := s.store.GetContentBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if c.Status != StatusPublished {
		return nil, nil, ErrNotFound
	}
	atts, err := s.store.GetAttachmentsByContentID(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}
	return c, atts, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Content, []Attachment, error) {
	c, err := s.store.GetContentByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	atts, err := s.store.GetAttachmentsByContentID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return c, atts, nil
}

func (s *Service) Create(ctx context.Context, in Input, authorID *int64) (*Content, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	} else {
		in.Slug = Slugify(in.Slug)
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}

	var v apperr.ValidationError
	if !in.Type.Valid() {
		v.Add("type", "must be blog or tutorial")
	}
	v.Require("title", in.Title)
	v.Require("body", in.Body)
	if in.Slug == "" && in.Title != "" {
		v.Add("slug", "could not be derived from the title")
	}
	if !in.Status.Valid() {
		v.Add("status", "must be draft or published")
	}
	checkURL(&v, "hero_image_url", in.HeroImageURL, false)
	if err := v.Err(); err != nil {
		return nil, err
	}

	c := &Content{
		Type:         in.Type,
		Title:        in.Title,
		Slug:         in.Slug,
		Summary:      in.Summary,
		Body:         in.Body,
		Status:       in.Status,
		PublishedAt:  in.PublishedAt,
		HeroImageURL: in.HeroImageURL,
		AuthorID:     authorID,
	}
	if c.Status == StatusPublished && c.PublishedAt == nil {
		now := s.now().UTC()
		c.PublishedAt = &now
	}
	if err := s.store.CreateContent(ctx, c); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (*Content, error) {
	var v apperr.ValidationError
	if p.Type != nil && !p.Type.Valid() {
		v.Add("type", "must be blog or tutorial")
	}
	if p.Title != nil {
		v.Require("title", *p.Title)
	}
	if p.Body != nil {
		v.Require("body", *p.Body)
	}
	if p.Slug != nil {
		slug := Slugify(*p.Slug)
		if slug == "" {
			v.Add("slug", "must contain letters or digits")
		}
		p.Slug = &slug
	}
	if p.Status != nil && !p.Status.Valid() {
		v.Add("status", "must be draft or published")
	}
	if p.HeroImageURL != nil {
		checkURL(&v, "hero_image_url", *p.HeroImageURL, false)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if p.Status != nil && *p.Status == StatusPublished && p.PublishedAt == nil {
		cur, err := s.store.GetContentByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if cur.PublishedAt == nil {
			now := s.now().UTC()
			p.PublishedAt = &now
		}
	}
	c, err := s.store.UpdateContent(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("update content %d: %w", id, err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteContent(ctx, id); err != nil {
		return fmt.Errorf("delete content %d: %w", id, err)
	}
	return nil
}

func (s *Service) AddAttachment(ctx context.Context, in AttachmentInput) (*Attachment, error) {
	var v apperr.ValidationError
	if in.ContentID <= 0 {
		v.Add("content_id", "is required")
	}
	if !in.Kind.Valid() {
		v.Add("kind", "must be pdf or video")
	}
	checkURL(&v, "url", in.URL, true)
	if in.FileSize < 0 {
		v.Add("file_size", "must not be negative")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	a := &Attachment{
		ContentID:   in.ContentID,
		Kind:        in.Kind,
		URL:         in.URL,
		Title:       in.Title,
		Description: in.Description,
		FileSize:    in.FileSize,
		Order:       in.Order,
	}
	if err := s.store.CreateAttachment(ctx, a); err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	return a, nil
}

func (s *Service) RemoveAttachment(ctx context.Context, id int64) error {
	if err := s.store.DeleteAttachment(ctx, id); err != nil {
		return fmt.Errorf("delete attachment %d: %w", id, err)
	}
	return nil
}

func checkURL(v *apperr.ValidationError, field, raw string, required bool) {
	if raw == "" {
		if required {
			v.Add(field, "is required")
		}
		return
	}
	if strings.HasPrefix(raw, "/") {
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.Add(field, "must be an http(s) URL or a site path")
	}
}
