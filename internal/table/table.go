package table

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"essayons/internal/engine"
)

var ErrNotStarted = errors.New("table has no game in progress")

const (
	DefaultThinkDelay = 1500 * time.Millisecond
	DefaultAckDelay   = 2 * time.Second
)

// Timer is the part of *time.Timer the driver needs.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler is backed by time.AfterFunc.
func RealScheduler() Scheduler { return realScheduler{} }

// Options configure a table. Zero values fall back to defaults.
type Options struct {
	ThinkDelay time.Duration
	AckDelay   time.Duration
	WinPoints  int
	Scheduler  Scheduler
	// NewRNG is called once per session; nil means math/rand/v2.
	NewRNG func() engine.RNG
	Logger *slog.Logger
}

// Update is delivered to listeners after every change.
type Update struct {
	TableID    string         `json:"table_id"`
	Generation uint64         `json:"generation"`
	Events     []engine.Event `json:"events,omitempty"`
	View       *engine.View   `json:"view,omitempty"`
}

// Listener is called with the table lock held and must not block or call
// back into the table.
type Listener func(Update)

// Table owns one game session and drives its computer players.
type Table struct {
	mu        sync.Mutex
	id        string
	opts      Options
	game      *engine.Game
	gen       uint64
	seq       uint64
	timer     Timer
	listeners []Listener
	log       *slog.Logger
}

func New(id string, opts Options) *Table {
	if opts.ThinkDelay <= 0 {
		opts.ThinkDelay = DefaultThinkDelay
	}
	if opts.AckDelay <= 0 {
		opts.AckDelay = DefaultAckDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Table{
		id:   id,
		opts: opts,
		log:  opts.Logger.With("table_id", id),
	}
}

func (t *Table) ID() string { return t.id }

// Subscribe registers l for every later update.
func (t *Table) Subscribe(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// Start replaces any running session with a fresh one.
func (t *Table) Start(playerName string, opponents int) error {
	cfg := engine.DefaultConfig()
	cfg.PlayerName = playerName
	cfg.Opponents = opponents
	if t.opts.WinPoints > 0 {
		cfg.WinPoints = t.opts.WinPoints
	}

	var rng engine.RNG
	if t.opts.NewRNG != nil {
		rng = t.opts.NewRNG()
	}
	g, err := engine.NewGame(cfg, rng)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelTimer()
	t.gen++
	t.game = g
	t.log.Info("game started", "generation", t.gen, "opponents", opponents)
	t.notify(g.StartEvents())
	t.arm()
	return nil
}

// Roll rolls for the human player.
func (t *Table) Roll() error {
	return t.apply(engine.Action{Type: engine.ActionRoll})
}

// Acknowledge closes the card shown to the human player.
func (t *Table) Acknowledge() error {
	return t.apply(engine.Action{Type: engine.ActionAcknowledge})
}

// Reset tears the session down and returns the table to setup. Pending
// computer moves are invalidated.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelTimer()
	t.gen++
	t.game = nil
	t.log.Info("table reset", "generation", t.gen)
	t.notify(nil)
}

// Snapshot is a consistent copy of the table state.
type Snapshot struct {
	ID         string       `json:"id"`
	Started    bool         `json:"started"`
	Generation uint64       `json:"generation"`
	View       *engine.View `json:"view,omitempty"`
}

func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Observe calls f with the current snapshot while holding the table lock,
// so no update can be delivered between the snapshot and f returning. The
// same rules as for listeners apply to f.
func (t *Table) Observe(f func(Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f(t.snapshotLocked())
}

func (t *Table) snapshotLocked() Snapshot {
	s := Snapshot{ID: t.id, Started: t.game != nil, Generation: t.gen}
	if t.game != nil {
		v := t.game.View()
		s.View = &v
	}
	return s
}

// Close stops any pending computer move.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelTimer()
	t.gen++
}

func (t *Table) apply(action engine.Action) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applyLocked(action)
}

func (t *Table) applyLocked(action engine.Action) error {
	if t.game == nil {
		return ErrNotStarted
	}
	events, err := t.game.Apply(action)
	if err != nil {
		return err
	}
	t.notify(events)
	t.arm()
	return nil
}

// arm schedules the next computer move, if any. Callbacks carry the session
// generation and a per-arm sequence number and do nothing once either moved on.
func (t *Table) arm() {
	t.cancelTimer()
	g := t.game
	if g == nil || g.Over() || !g.Active().IsAI {
		return
	}

	var (
		delay  time.Duration
		action engine.Action
	)
	switch g.Phase {
	case engine.PhaseAIPending:
		delay, action = t.opts.ThinkDelay, engine.Action{Type: engine.ActionRoll, Auto: true}
	case engine.PhaseCardShown:
		delay, action = t.opts.AckDelay, engine.Action{Type: engine.ActionAcknowledge, Auto: true}
	default:
		return
	}

	gen, seq := t.gen, t.seq
	t.timer = t.opts.Scheduler.AfterFunc(delay, func() {
		t.fire(gen, seq, action)
	})
}

func (t *Table) fire(gen, seq uint64, action engine.Action) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || seq != t.seq {
		t.log.Debug("stale computer move dropped", "generation", gen, "current", t.gen)
		return
	}
	t.timer = nil
	if err := t.applyLocked(action); err != nil {
		t.log.Debug("computer move rejected", "action", action.Type, "error", err)
	}
}

func (t *Table) cancelTimer() {
	t.seq++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Table) notify(events []engine.Event) {
	if len(t.listeners) == 0 {
		return
	}
	s := t.snapshotLocked()
	u := Update{TableID: t.id, Generation: t.gen, Events: events, View: s.View}
	for _, l := range t.listeners {
		l(u)
	}
}
