package lobby_test

import (
	"strings"
	"testing"
	"time"

	"essayons/internal/lobby"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidation(t *testing.T) {
	tests := []struct {
		name    string
		setup   lobby.Setup
		wantErr bool
	}{
		{"solo", lobby.Setup{PlayerName: "Ana", Opponents: 0}, false},
		{"full table", lobby.Setup{PlayerName: "Ana", Opponents: 3}, false},
		{"too many", lobby.Setup{PlayerName: "Ana", Opponents: 4}, true},
		{"negative", lobby.Setup{PlayerName: "Ana", Opponents: -1}, true},
		{"long name", lobby.Setup{PlayerName: strings.Repeat("x", 41), Opponents: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.setup.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, lobby.ErrInvalidSetup)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLobbyLifecycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := lobby.NewLobby("abc", now)
	info := l.Info()
	assert.Equal(t, "You", info.Setup.PlayerName)
	assert.Equal(t, 1, info.Setup.Opponents)
	assert.False(t, info.Started)

	require.NoError(t, l.Configure(lobby.Setup{PlayerName: "  Dana ", Opponents: 3}, now))
	s := l.Start(now)
	assert.Equal(t, "Dana", s.PlayerName)
	assert.Equal(t, 3, s.Opponents)
	assert.True(t, l.Info().Started)
	assert.Equal(t, 1, l.Info().Games)

	l.Reset(now)
	assert.False(t, l.Info().Started)

	err := l.Configure(lobby.Setup{Opponents: 9}, now)
	assert.ErrorIs(t, err, lobby.ErrInvalidSetup)
	assert.Equal(t, 3, l.Info().Setup.Opponents, "rejected setup leaves the old one")
}

func TestManagerCreateGet(t *testing.T) {
	m := lobby.NewManager(2)
	a, err := m.Create()
	require.NoError(t, err)
	_, err = uuid.Parse(a.ID)
	assert.NoError(t, err)

	got, err := m.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = m.Create()
	require.NoError(t, err)
	_, err = m.Create()
	assert.ErrorIs(t, err, lobby.ErrFull)

	m.Remove(a.ID)
	_, err = m.Get(a.ID)
	assert.ErrorIs(t, err, lobby.ErrNotFound)
	assert.Equal(t, 1, m.Len())
}

func TestManagerSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := lobby.NewManager(0)
	m.SetClock(func() time.Time { return now })

	old, err := m.Create()
	require.NoError(t, err)
	now = now.Add(30 * time.Minute)
	fresh, err := m.Create()
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	removed := m.Sweep(time.Hour)
	assert.Equal(t, []string{old.ID}, removed)

	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
	assert.Len(t, m.List(), 1)
}
