package protocol

// Message types: Server → Client
const (
	MsgTableState = "table_state"
	MsgLobby      = "lobby"
	MsgEvent      = "event"
	MsgError      = "error"
)

// Message types: Client → Server
const (
	MsgConfigure   = "configure"
	MsgStart       = "start"
	MsgRoll        = "roll"
	MsgAcknowledge = "acknowledge"
	MsgReset       = "reset"
)

// ConfigureMsg picks the player name and number of computer opponents.
type ConfigureMsg struct {
	PlayerName string `json:"player_name"`
	Opponents  int    `json:"opponents"`
}

// StartMsg starts a game. Fields left empty keep the lobby setup.
type StartMsg struct {
	PlayerName string `json:"player_name,omitempty"`
	Opponents  *int   `json:"opponents,omitempty"`
}

// ErrorMsg is sent to a client on error.
type ErrorMsg struct {
	Message string `json:"message"`
}
