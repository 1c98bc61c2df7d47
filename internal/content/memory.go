package content

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps everything in maps. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	content     map[int64]*Content
	attachments map[int64]*Attachment
	nextID      int64
	nextAttID   int64
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		content:     make(map[int64]*Content),
		attachments: make(map[int64]*Attachment),
		now:         time.Now,
	}
}

func (m *MemoryStore) ListContent(_ context.Context, f Filter) ([]Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Content, 0, len(m.content))
	for _, c := range m.content {
		if f.match(c) {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) GetContentByID(_ context.Context, id int64) (*Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.content[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := clone(c)
	return &cp, nil
}

func (m *MemoryStore) GetContentBySlug(_ context.Context, slug string) (*Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.content {
		if c.Slug == slug {
			cp := clone(c)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateContent(_ context.Context, c *Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugUsed(c.Slug, 0) {
		return ErrSlugTaken
	}
	m.nextID++
	now := m.now().UTC()
	c.ID = m.nextID
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := clone(c)
	m.content[c.ID] = &cp
	return nil
}

func (m *MemoryStore) UpdateContent(_ context.Context, id int64, p Patch) (*Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.content[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Slug != nil && m.slugUsed(*p.Slug, id) {
		return nil, ErrSlugTaken
	}
	p.apply(c)
	c.UpdatedAt = m.now().UTC()
	cp := clone(c)
	return &cp, nil
}

func (m *MemoryStore) DeleteContent(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.content[id]; !ok {
		return ErrNotFound
	}
	delete(m.content, id)
	for aid, a := range m.attachments {
		if a.ContentID == id {
			delete(m.attachments, aid)
		}
	}
	return nil
}

func (m *MemoryStore) GetAttachmentsByContentID(_ context.Context, contentID int64) ([]Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Attachment
	for _, a := range m.attachments {
		if a.ContentID == contentID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) CreateAttachment(_ context.Context, a *Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.content[a.ContentID]; !ok {
		return ErrNotFound
	}
	m.nextAttID++
	a.ID = m.nextAttID
	a.CreatedAt = m.now().UTC()
	cp := *a
	m.attachments[a.ID] = &cp
	return nil
}

func (m *MemoryStore) DeleteAttachment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attachments[id]; !ok {
		return ErrNotFound
	}
	delete(m.attachments, id)
	return nil
}

func (m *MemoryStore) slugUsed(slug string, except int64) bool {
	for id, c := range m.content {
		if id != except && c.Slug == slug {
			return true
		}
	}
	return false
}

func clone(c *Content) Content {
	cp := *c
	if c.PublishedAt != nil {
		t := *c.PublishedAt
		cp.PublishedAt = &t
	}
	if c.AuthorID != nil {
		id := *c.AuthorID
		cp.AuthorID = &id
	}
	return cp
}
