package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"essayons/internal/lobby"
	"essayons/internal/table"
)

// Tables owns one running hub per open lobby.
type Tables struct {
	mu      sync.Mutex
	lobbies *lobby.Manager
	hubs    map[string]*Hub
	opts    table.Options
}

func NewTables(lobbies *lobby.Manager, opts table.Options) *Tables {
	return &Tables{
		lobbies: lobbies,
		hubs:    make(map[string]*Hub),
		opts:    opts,
	}
}

// Create opens a lobby and starts its hub.
func (t *Tables) Create() (*Hub, error) {
	lob, err := t.lobbies.Create()
	if err != nil {
		return nil, err
	}
	hub := NewHub(lob, t.opts, t.lobbies.Now)
	t.mu.Lock()
	t.hubs[lob.ID] = hub
	t.mu.Unlock()
	go hub.Run()
	slog.Info("table created", "table_id", lob.ID)
	return hub, nil
}

// Get returns the hub of an open table. The lobby manager decides whether
// the table is still open.
func (t *Tables) Get(id string) (*Hub, error) {
	if _, err := t.lobbies.Get(id); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	hub, ok := t.hubs[id]
	if !ok {
		return nil, lobby.ErrNotFound
	}
	return hub, nil
}

// Remove closes one table.
func (t *Tables) Remove(id string) {
	t.mu.Lock()
	hub, ok := t.hubs[id]
	delete(t.hubs, id)
	t.mu.Unlock()
	t.lobbies.Remove(id)
	if ok {
		hub.Close()
	}
}

// List describes the open tables, oldest first.
func (t *Tables) List() []lobby.Info {
	return t.lobbies.List()
}

func (t *Tables) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.hubs)
}

// Sweep closes tables idle for longer than ttl.
func (t *Tables) Sweep(ttl time.Duration) []string {
	removed := t.lobbies.Sweep(ttl)
	if len(removed) == 0 {
		return nil
	}
	t.mu.Lock()
	hubs := make([]*Hub, 0, len(removed))
	for _, id := range removed {
		if hub, ok := t.hubs[id]; ok {
			hubs = append(hubs, hub)
			delete(t.hubs, id)
		}
	}
	t.mu.Unlock()

	for _, hub := range hubs {
		hub.Close()
	}
	return removed
}

// RunSweeper sweeps idle tables every interval until ctx is done.
func (t *Tables) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	slog.Info("table sweeper started", "interval", interval, "idle_ttl", ttl)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("table sweeper stopped")
			return
		case <-ticker.C:
			if removed := t.Sweep(ttl); len(removed) > 0 {
				slog.Info("closed idle tables", "count", len(removed), "ids", removed)
			}
		}
	}
}

// Close stops every hub.
func (t *Tables) Close() {
	t.mu.Lock()
	hubs := make([]*Hub, 0, len(t.hubs))
	for id, hub := range t.hubs {
		hubs = append(hubs, hub)
		delete(t.hubs, id)
		t.lobbies.Remove(id)
	}
	t.mu.Unlock()
	for _, hub := range hubs {
		hub.Close()
	}
}
