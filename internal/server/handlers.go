package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"essayons/internal/lobby"
	"essayons/internal/protocol"
	qr "essayons/internal/qrcode"
	"essayons/internal/table"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const maxQRSize = 1024

type tableResponse struct {
	Table lobby.Info     `json:"table"`
	State table.Snapshot `json:"state"`
	Link  string         `json:"link,omitempty"`
}

func (s *Server) tableResponse(r *http.Request, hub *Hub) tableResponse {
	resp := tableResponse{Table: hub.Info(), State: hub.Snapshot()}
	if link, err := qr.TableLink(s.baseURL(r), hub.ID()); err == nil {
		resp.Link = link
	}
	return resp
}

// baseURL prefers the configured public URL and falls back to the request.
func (s *Server) baseURL(r *http.Request) string {
	if s.cfg.PublicURL != "" {
		return s.cfg.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) hubFor(w http.ResponseWriter, r *http.Request) (*Hub, bool) {
	hub, err := s.tables.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return hub, true
}

// POST /api/tables
func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req protocol.StartMsg
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	hub, err := s.tables.Create()
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if req.PlayerName != "" || req.Opponents != nil {
		setup := hub.Info().Setup
		if req.PlayerName != "" {
			setup.PlayerName = req.PlayerName
		}
		if req.Opponents != nil {
			setup.Opponents = *req.Opponents
		}
		if err := hub.Configure(setup); err != nil {
			s.tables.Remove(hub.ID())
			respondServiceError(w, r, err)
			return
		}
	}
	respondJSON(w, http.StatusCreated, s.tableResponse(r, hub))
}

// GET /api/tables/{id}
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	hub, ok := s.hubFor(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.tableResponse(r, hub))
}

// POST /api/tables/{id}/start
func (s *Server) handleStartTable(w http.ResponseWriter, r *http.Request) {
	hub, ok := s.hubFor(w, r)
	if !ok {
		return
	}
	var req protocol.StartMsg
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if err := hub.Start(req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.tableResponse(r, hub))
}

// POST /api/tables/{id}/roll
func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, (*Hub).Roll)
}

// POST /api/tables/{id}/acknowledge
func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, (*Hub).Acknowledge)
}

// tableAction runs a player action. A click that raced the game state is
// ignored and answered with the unchanged table, like on the websocket.
func (s *Server) tableAction(w http.ResponseWriter, r *http.Request, act func(*Hub) error) {
	hub, ok := s.hubFor(w, r)
	if !ok {
		return
	}
	if err := act(hub); err != nil {
		if !isStaleAction(err) {
			respondServiceError(w, r, err)
			return
		}
		slog.Debug("action ignored", "table_id", hub.ID(), "path", r.URL.Path, "error", err)
	}
	respondJSON(w, http.StatusOK, s.tableResponse(r, hub))
}

// GET /api/tables
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.tables.List())
}

// POST /api/tables/{id}/reset
func (s *Server) handleResetTable(w http.ResponseWriter, r *http.Request) {
	hub, ok := s.hubFor(w, r)
	if !ok {
		return
	}
	hub.Reset()
	respondJSON(w, http.StatusOK, s.tableResponse(r, hub))
}

// GET /api/tables/{id}/qr generates a PNG that opens the table.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	hub, ok := s.hubFor(w, r)
	if !ok {
		return
	}
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > maxQRSize {
			respondError(w, http.StatusBadRequest, "invalid_size", "size must be between 64 and 1024")
			return
		}
		size = n
	}
	link, err := qr.TableLink(s.baseURL(r), hub.ID())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	png, err := qr.Generate(link, size)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

// GET /ws?table=ID upgrades to a WebSocket bound to one table.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table")
	if tableID == "" {
		respondError(w, http.StatusBadRequest, "missing_table", "missing table parameter")
		return
	}
	hub, err := s.tables.Get(tableID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade error", "table_id", tableID, "error", err)
		return
	}

	client := NewClient(hub, conn)
	if !hub.join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
