package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"essayons/internal/engine"
	"essayons/internal/lobby"
	"essayons/internal/protocol"
	"essayons/internal/table"
)

// Hub manages the WebSocket connections and the game session of one table.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
	closed  bool

	// ctl serializes compound lobby and table operations.
	ctl sync.Mutex

	lobby *lobby.Lobby
	table *table.Table
	now   func() time.Time
	log   *slog.Logger

	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	quit       chan struct{}
	closeOnce  sync.Once
}

func NewHub(lob *lobby.Lobby, opts table.Options, now func() time.Time) *Hub {
	if now == nil {
		now = time.Now
	}
	h := &Hub{
		clients:    make(map[*Client]bool),
		lobby:      lob,
		now:        now,
		log:        slog.Default().With("table_id", lob.ID),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan IncomingMessage, 256),
		quit:       make(chan struct{}),
	}
	h.table = table.New(lob.ID, opts)
	h.table.Subscribe(h.onUpdate)
	return h
}

func (h *Hub) ID() string { return h.lobby.ID }

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.attach(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.log.Debug("client left", "client_id", client.ID)

		case msg := <-h.incoming:
			h.handleMessage(msg)

		case <-h.quit:
			return
		}
	}
}

// attach adds the client and sends it the lobby and the current table
// state. The table lock is held while the client joins so the first state
// it receives is never older than a later broadcast.
func (h *Hub) attach(client *Client) {
	h.lobby.Touch(h.now())
	h.table.Observe(func(s table.Snapshot) {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed {
			close(client.send)
			return
		}
		h.clients[client] = true
		client.SendEnvelope(protocol.MustEnvelope(protocol.MsgLobby, h.lobby.Info()))
		client.SendEnvelope(protocol.MustEnvelope(protocol.MsgTableState, s))
	})
	h.log.Debug("client joined", "client_id", client.ID)
}

// join hands a new connection to the hub. It fails once the hub stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// leave unregisters a client unless the hub already stopped.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

func (h *Hub) enqueue(msg IncomingMessage) {
	select {
	case h.incoming <- msg:
	case <-h.quit:
	}
}

func (h *Hub) handleMessage(msg IncomingMessage) {
	var err error
	switch msg.Envelope.Type {
	case protocol.MsgConfigure:
		var cfg protocol.ConfigureMsg
		if err = msg.Envelope.Decode(&cfg); err == nil {
			err = h.Configure(lobby.Setup{PlayerName: cfg.PlayerName, Opponents: cfg.Opponents})
		}
	case protocol.MsgStart:
		var start protocol.StartMsg
		if err = msg.Envelope.Decode(&start); err == nil {
			err = h.Start(start)
		}
	case protocol.MsgRoll:
		err = h.Roll()
	case protocol.MsgAcknowledge:
		err = h.Acknowledge()
	case protocol.MsgReset:
		h.Reset()
	default:
		h.sendError(msg.Client, "unknown message type "+msg.Envelope.Type)
		return
	}
	if err == nil {
		return
	}
	if isStaleAction(err) {
		h.log.Debug("action ignored", "type", msg.Envelope.Type, "error", err)
		return
	}
	h.sendError(msg.Client, err.Error())
}

// isStaleAction reports errors caused by clicks that raced the game state.
// They leave the state unchanged and need no reply.
func isStaleAction(err error) bool {
	return errors.Is(err, engine.ErrWrongPhase) ||
		errors.Is(err, engine.ErrNotYourTurn) ||
		errors.Is(err, engine.ErrInvalidAction)
}

// Configure changes the setup used by the next game.
func (h *Hub) Configure(s lobby.Setup) error {
	h.ctl.Lock()
	defer h.ctl.Unlock()
	if err := h.lobby.Configure(s, h.now()); err != nil {
		return err
	}
	h.broadcastLobby()
	return nil
}

// Start begins a new game, replacing any running one. Fields set in msg
// override the lobby setup first.
func (h *Hub) Start(msg protocol.StartMsg) error {
	h.ctl.Lock()
	defer h.ctl.Unlock()

	setup := h.lobby.Info().Setup
	if msg.PlayerName != "" || msg.Opponents != nil {
		if msg.PlayerName != "" {
			setup.PlayerName = msg.PlayerName
		}
		if msg.Opponents != nil {
			setup.Opponents = *msg.Opponents
		}
		if err := h.lobby.Configure(setup, h.now()); err != nil {
			return err
		}
		setup = h.lobby.Info().Setup
	}
	if err := h.table.Start(setup.PlayerName, setup.Opponents); err != nil {
		return err
	}
	h.lobby.Start(h.now())
	h.broadcastLobby()
	return nil
}

func (h *Hub) Roll() error {
	h.lobby.Touch(h.now())
	return h.table.Roll()
}

func (h *Hub) Acknowledge() error {
	h.lobby.Touch(h.now())
	return h.table.Acknowledge()
}

// Reset abandons the game and returns to the setup screen.
func (h *Hub) Reset() {
	h.ctl.Lock()
	defer h.ctl.Unlock()
	h.table.Reset()
	h.lobby.Reset(h.now())
	h.broadcastLobby()
}

func (h *Hub) Snapshot() table.Snapshot { return h.table.Snapshot() }

func (h *Hub) Info() lobby.Info { return h.lobby.Info() }

// Close stops the hub, any pending computer move and all connections.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.quit)
		h.table.Close()
		h.mu.Lock()
		defer h.mu.Unlock()
		h.closed = true
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
	})
}

// onUpdate runs under the table lock.
func (h *Hub) onUpdate(u table.Update) {
	for _, ev := range u.Events {
		h.broadcast(protocol.MustEnvelope(protocol.MsgEvent, ev))
	}
	h.broadcast(protocol.MustEnvelope(protocol.MsgTableState, table.Snapshot{
		ID:         u.TableID,
		Started:    u.View != nil,
		Generation: u.Generation,
		View:       u.View,
	}))
}

func (h *Hub) broadcastLobby() {
	h.broadcast(protocol.MustEnvelope(protocol.MsgLobby, h.lobby.Info()))
}

func (h *Hub) broadcast(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.log.Error("broadcast marshal error", "type", env.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.log.Warn("client buffer full, dropping message", "client_id", client.ID, "type", env.Type)
		}
	}
}

// sendTo writes to one client if it is still connected.
func (h *Hub) sendTo(client *Client, env protocol.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client] {
		client.SendEnvelope(env)
	}
}

func (h *Hub) sendError(client *Client, message string) {
	h.sendTo(client, protocol.MustEnvelope(protocol.MsgError, protocol.ErrorMsg{Message: message}))
}
