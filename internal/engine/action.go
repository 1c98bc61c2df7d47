package engine

// ActionType identifies the actions accepted by Game.Apply.
type ActionType string

const (
	ActionRoll        ActionType = "roll"
	ActionAcknowledge ActionType = "acknowledge"
)

// Action is an input to the turn state machine.
type Action struct {
	Type ActionType `json:"type"`
	// Auto marks actions issued by the computer player driver rather than
	// a person. Humans cannot act for computer players and vice versa.
	Auto bool `json:"-"`
}

// EventType identifies events emitted by the engine.
type EventType string

const (
	EventGameStart    EventType = "game_start"
	EventTurnStart    EventType = "turn_start"
	EventTurnSkipped  EventType = "turn_skipped"
	EventRolled       EventType = "rolled"
	EventMoved        EventType = "moved"
	EventCardShown    EventType = "card_shown"
	EventCardResolved EventType = "card_resolved"
	EventCardsQueued  EventType = "cards_queued"
	EventTurnEnd      EventType = "turn_end"
	EventGameOver     EventType = "game_over"
)

// Event is emitted by the engine after state changes.
type Event struct {
	Type   EventType `json:"type"`
	Player string    `json:"player,omitempty"`
	Data   any       `json:"data,omitempty"`
}
