package engine

import "fmt"

// MaxOpponents is the number of computer players a table can seat.
const MaxOpponents = 3

// GameConfig holds configuration for creating a new game.
type GameConfig struct {
	Cards      []Card // card pool
	WinPoints  int    // points needed on the finish tile (default 15)
	PlayerName string
	Opponents  int // computer players, 0..MaxOpponents
}

func DefaultConfig() GameConfig {
	return GameConfig{
		Cards:      Catalog(),
		WinPoints:  15,
		PlayerName: "You",
	}
}

// Validate checks the opponent count and fills blanks.
func (c *GameConfig) Validate() error {
	if c.Opponents < 0 || c.Opponents > MaxOpponents {
		return fmt.Errorf("%w: opponents must be between 0 and %d, got %d", ErrInvalidConfig, MaxOpponents, c.Opponents)
	}
	if c.WinPoints <= 0 {
		c.WinPoints = 15
	}
	if c.PlayerName == "" {
		c.PlayerName = "You"
	}
	if len(c.Cards) == 0 {
		c.Cards = Catalog()
	}
	return nil
}

var aiNames = []string{"AI Leader", "AI Manager", "AI Director"}

const humanColor = "#ef4444"

var aiColors = []string{"#ef4444", "#3b82f6", "#10b981", "#a855f7", "#f59e0b", "#06b6d4"}
