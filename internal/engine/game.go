package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotYourTurn   = errors.New("not your turn")
	ErrInvalidAction = errors.New("invalid action")
	ErrWrongPhase    = errors.New("wrong phase for this action")
	ErrInvalidConfig = errors.New("invalid game config")
)

// Game holds the entire state of one session.
type Game struct {
	Board   Board      `json:"board"`
	Deck    *Deck      `json:"-"`
	Players []*Player  `json:"players"`
	Config  GameConfig `json:"-"`

	Phase       GamePhase `json:"phase"`
	Turn        int       `json:"turn"`
	Current     int       `json:"current"`
	Rolled      int       `json:"rolled,omitempty"`
	CurrentCard *Card     `json:"current_card,omitempty"`
	Queue       []Card    `json:"queue,omitempty"`
	Winner      string    `json:"winner,omitempty"`

	rng RNG
}

// NewGame seats one human and cfg.Opponents computer players, builds the
// board and shuffles the deck. The human always moves first.
func NewGame(cfg GameConfig, rng RNG) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	players := []*Player{NewPlayer(cfg.PlayerName, humanColor, false)}
	for i := 0; i < cfg.Opponents; i++ {
		players = append(players, NewPlayer(aiNames[i], aiColors[(i+1)%len(aiColors)], true))
	}

	g := &Game{
		Board:   NewBoard(),
		Deck:    NewDeck(cfg.Cards, rng),
		Players: players,
		Config:  cfg,
		Turn:    1,
		rng:     rng,
	}
	g.Phase = g.waitingPhase()
	return g, nil
}

// StartEvents describes the opening position.
func (g *Game) StartEvents() []Event {
	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}
	return []Event{
		{Type: EventGameStart, Data: map[string]any{"players": names}},
		g.turnStartEvent(),
	}
}

// Active returns the player whose turn it is.
func (g *Game) Active() *Player {
	return g.Players[g.Current]
}

// Over reports whether the session has a winner.
func (g *Game) Over() bool {
	return g.Phase == PhaseGameOver
}

// Apply is the single entry point for actions. Rejected actions leave the
// game untouched.
func (g *Game) Apply(action Action) ([]Event, error) {
	switch action.Type {
	case ActionRoll:
		return g.applyRoll(action)
	case ActionAcknowledge:
		return g.applyAcknowledge(action)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action.Type)
	}
}

func (g *Game) applyRoll(action Action) ([]Event, error) {
	if g.Phase != PhaseAwaitingRoll && g.Phase != PhaseAIPending {
		return nil, ErrWrongPhase
	}
	if err := g.checkActor(action); err != nil {
		return nil, err
	}

	p := g.Active()
	if p.SkipTurns > 0 {
		g.SetSkipTurns(g.Current, p.SkipTurns-1)
		events := []Event{{
			Type:   EventTurnSkipped,
			Player: p.Name,
			Data:   map[string]any{"remaining": p.SkipTurns},
		}}
		return append(events, g.endTurn()...), nil
	}

	g.Phase = PhaseResolving
	g.Rolled = g.rng.IntN(6) + 1
	events := []Event{{
		Type:   EventRolled,
		Player: p.Name,
		Data:   map[string]any{"value": g.Rolled},
	}}
	return append(events, g.resolve(step{kind: stepMove, spaces: g.Rolled})...), nil
}

func (g *Game) applyAcknowledge(action Action) ([]Event, error) {
	if g.CurrentCard == nil {
		return nil, ErrWrongPhase
	}
	if g.Phase == PhaseGameOver {
		// Dismissing the victory card; nothing else can happen.
		card := *g.CurrentCard
		g.CurrentCard = nil
		return []Event{{Type: EventCardResolved, Player: g.Winner, Data: card}}, nil
	}
	if g.Phase != PhaseCardShown {
		return nil, ErrWrongPhase
	}
	if err := g.checkActor(action); err != nil {
		return nil, err
	}

	card := *g.CurrentCard
	g.CurrentCard = nil
	g.Phase = PhaseResolving
	events := []Event{{Type: EventCardResolved, Player: g.Active().Name, Data: card}}
	return append(events, g.resolve(step{kind: stepApply, card: card})...), nil
}

// checkActor rejects humans acting on a computer turn and the driver acting
// on a human turn.
func (g *Game) checkActor(action Action) error {
	if g.Active().IsAI != action.Auto {
		return ErrNotYourTurn
	}
	return nil
}

func (g *Game) waitingPhase() GamePhase {
	if g.Active().IsAI {
		return PhaseAIPending
	}
	return PhaseAwaitingRoll
}

func (g *Game) turnStartEvent() Event {
	p := g.Active()
	return Event{
		Type:   EventTurnStart,
		Player: p.Name,
		Data:   map[string]any{"turn": g.Turn, "index": g.Current, "is_ai": p.IsAI},
	}
}

// endTurn clears the transient turn state and passes play on.
func (g *Game) endTurn() []Event {
	ended := g.Active().Name
	g.Rolled = 0
	g.CurrentCard = nil
	g.Current = (g.Current + 1) % len(g.Players)
	g.Turn++
	g.Phase = g.waitingPhase()
	return []Event{
		{Type: EventTurnEnd, Player: ended},
		g.turnStartEvent(),
	}
}
