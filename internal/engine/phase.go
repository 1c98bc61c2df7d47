package engine

import "fmt"

// GamePhase represents the current phase of the turn state machine.
type GamePhase int

const (
	PhaseSetup        GamePhase = iota // no session yet
	PhaseAwaitingRoll                  // human player to roll
	PhaseAIPending                     // computer player to roll
	PhaseResolving                     // movement and effects in progress
	PhaseCardShown                     // a card waits to be acknowledged
	PhaseGameOver                      // someone won
)

var phaseNames = map[GamePhase]string{
	PhaseSetup:        "Setup",
	PhaseAwaitingRoll: "AwaitingRoll",
	PhaseAIPending:    "AIPending",
	PhaseResolving:    "Resolving",
	PhaseCardShown:    "CardShown",
	PhaseGameOver:     "GameOver",
}

func (p GamePhase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "Unknown"
}

func (p GamePhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *GamePhase) UnmarshalText(b []byte) error {
	for k, v := range phaseNames {
		if v == string(b) {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}
