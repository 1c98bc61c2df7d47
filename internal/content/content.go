package content

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	ErrNotFound  = errors.New("content not found")
	ErrSlugTaken = errors.New("slug already in use")
)

// Kind separates blog posts from tutorials.
type Kind string

const (
	KindBlog     Kind = "blog"
	KindTutorial Kind = "tutorial"
)

func (k Kind) Valid() bool { return k == KindBlog || k == KindTutorial }

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool { return s == StatusDraft || s == StatusPublished }

// AttachmentKind is the media type of an attachment.
type AttachmentKind string

const (
	AttachmentPDF   AttachmentKind = "pdf"
	AttachmentVideo AttachmentKind = "video"
)

func (k AttachmentKind) Valid() bool { return k == AttachmentPDF || k == AttachmentVideo }

// Content is a blog post or tutorial.
type Content struct {
	ID           int64      `json:"id"`
	Type         Kind       `json:"type"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Summary      string     `json:"summary"`
	Body         string     `json:"body"`
	Status       Status     `json:"status"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	HeroImageURL string     `json:"hero_image_url,omitempty"`
	AuthorID     *int64     `json:"author_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Attachment is a PDF or video linked to a piece of content.
type Attachment struct {
	ID          int64          `json:"id"`
	ContentID   int64          `json:"content_id"`
	Kind        AttachmentKind `json:"kind"`
	URL         string         `json:"url"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	FileSize    int64          `json:"file_size,omitempty"`
	Order       int            `json:"order"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Filter narrows ListContent. Empty fields match everything.
type Filter struct {
	Type   Kind
	Status Status
}

func (f Filter) match(c *Content) bool {
	return (f.Type == "" || c.Type == f.Type) && (f.Status == "" || c.Status == f.Status)
}

// Patch holds the fields to change; nil fields are left alone.
type Patch struct {
	Type         *Kind      `json:"type,omitempty"`
	Title        *string    `json:"title,omitempty"`
	Slug         *string    `json:"slug,omitempty"`
	Summary      *string    `json:"summary,omitempty"`
	Body         *string    `json:"body,omitempty"`
	Status       *Status    `json:"status,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	HeroImageURL *string    `json:"hero_image_url,omitempty"`
}

func (p Patch) apply(c *Content) {
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.Summary != nil {
		c.Summary = *p.Summary
	}
	if p.Body != nil {
		c.Body = *p.Body
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		c.PublishedAt = &t
	}
	if p.HeroImageURL != nil {
		c.HeroImageURL = *p.HeroImageURL
	}
}

// Store persists content and attachments. Slug uniqueness is enforced by
// the store; missing rows return ErrNotFound.
type Store interface {
	ListContent(ctx context.Context, f Filter) ([]Content, error)
	GetContentByID(ctx context.Context, id int64) (*Content, error)
	GetContentBySlug(ctx context.Context, slug string) (*Content, error)
	CreateContent(ctx context.Context, c *Content) error
	UpdateContent(ctx context.Context, id int64, p Patch) (*Content, error)
	DeleteContent(ctx context.Context, id int64) error

	GetAttachmentsByContentID(ctx context.Context, contentID int64) ([]Attachment, error)
	CreateAttachment(ctx context.Context, a *Attachment) error
	DeleteAttachment(ctx context.Context, id int64) error
}

// Slugify lowercases s and joins its words with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}
