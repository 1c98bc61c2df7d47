package lobby

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("table not found")
	ErrFull     = errors.New("too many open tables")
)

// Manager manages the open lobbies, one per table.
type Manager struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby
	max     int
	now     func() time.Time
}

// NewManager creates a manager holding at most max lobbies; 0 means no limit.
func NewManager(max int) *Manager {
	return &Manager{
		lobbies: make(map[string]*Lobby),
		max:     max,
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now()
}

// Create creates a new lobby and returns it.
func (m *Manager) Create() (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.max > 0 && len(m.lobbies) >= m.max {
		return nil, ErrFull
	}
	id := uuid.NewString()
	l := NewLobby(id, m.now())
	m.lobbies[id] = l
	return l, nil
}

// Get returns a lobby by ID.
func (m *Manager) Get(id string) (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lobbies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

// Remove drops a lobby.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lobbies, id)
}

// List returns all lobbies, oldest first.
func (m *Manager) List() []Info {
	m.mu.Lock()
	ls := make([]*Lobby, 0, len(m.lobbies))
	for _, l := range m.lobbies {
		ls = append(ls, l)
	}
	m.mu.Unlock()

	out := make([]Info, len(ls))
	for i, l := range ls {
		out[i] = l.Info()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Sweep removes lobbies idle for longer than ttl and returns their IDs.
func (m *Manager) Sweep(ttl time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-ttl)
	var removed []string
	for id, l := range m.lobbies {
		if l.idleSince().Before(cutoff) {
			delete(m.lobbies, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lobbies)
}
