package lobby

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"essayons/internal/engine"
)

var ErrInvalidSetup = errors.New("invalid table setup")

const maxNameLen = 40

// Setup is what the configuration screen collects before a game starts.
type Setup struct {
	PlayerName string `json:"player_name"`
	Opponents  int    `json:"opponents"`
}

// Normalize trims the name and fills the default.
func (s *Setup) Normalize() {
	s.PlayerName = strings.TrimSpace(s.PlayerName)
	if s.PlayerName == "" {
		s.PlayerName = "You"
	}
}

func (s Setup) Validate() error {
	if s.Opponents < 0 || s.Opponents > engine.MaxOpponents {
		return fmt.Errorf("%w: opponents must be between 0 and %d", ErrInvalidSetup, engine.MaxOpponents)
	}
	if utf8.RuneCountInString(s.PlayerName) > maxNameLen {
		return fmt.Errorf("%w: player name longer than %d characters", ErrInvalidSetup, maxNameLen)
	}
	return nil
}

// Lobby holds the setup of one table between games.
type Lobby struct {
	mu        sync.Mutex
	ID        string
	setup     Setup
	started   bool
	games     int
	createdAt time.Time
	touched   time.Time
}

// NewLobby creates a lobby with one computer opponent preselected.
func NewLobby(id string, now time.Time) *Lobby {
	return &Lobby{
		ID:        id,
		setup:     Setup{PlayerName: "You", Opponents: 1},
		createdAt: now,
		touched:   now,
	}
}

// Configure replaces the setup used by the next Start.
func (l *Lobby) Configure(s Setup, now time.Time) error {
	s.Normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setup = s
	l.touched = now
	return nil
}

// Start marks a game as running and returns the setup to use.
func (l *Lobby) Start(now time.Time) Setup {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = true
	l.games++
	l.touched = now
	return l.setup
}

// Reset returns the lobby to the configuration screen.
func (l *Lobby) Reset(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = false
	l.touched = now
}

// Touch records activity so the lobby is not swept.
func (l *Lobby) Touch(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.touched = now
}

// Info is a copy of the lobby state.
type Info struct {
	ID        string    `json:"id"`
	Setup     Setup     `json:"setup"`
	Started   bool      `json:"started"`
	Games     int       `json:"games"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *Lobby) Info() Info {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Info{ID: l.ID, Setup: l.setup, Started: l.started, Games: l.games, CreatedAt: l.createdAt}
}

func (l *Lobby) idleSince() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.touched
}
