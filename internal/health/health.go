package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

const (
	StateConnected    = "connected"
	StateDisconnected = "disconnected"
	StateDisabled     = "disabled"
)

const pingTimeout = 2 * time.Second

// Status reports each backing service. Services that are not configured
// report "disabled" and never fail the check.
type Status struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
	NATS     string `json:"nats"`
}

func (s *Status) Healthy() bool {
	for _, v := range []string{s.Database, s.Redis, s.NATS} {
		if v == StateDisconnected {
			return false
		}
	}
	return true
}

// Checker pings the services the process was started with.
type Checker struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	nc          *nats.Conn
}

// NewChecker accepts nil for anything that is not in use.
func NewChecker(db *pgxpool.Pool, redisClient *redis.Client, nc *nats.Conn) *Checker {
	return &Checker{db: db, redisClient: redisClient, nc: nc}
}

func (h *Checker) Check(ctx context.Context) *Status {
	status := &Status{Database: StateDisabled, Redis: StateDisabled, NATS: StateDisabled}

	if h.db != nil {
		dbCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		status.Database = state(h.db.Ping(dbCtx) == nil)
		cancel()
	}
	if h.redisClient != nil {
		redisCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		status.Redis = state(h.redisClient.Ping(redisCtx).Err() == nil)
		cancel()
	}
	if h.nc != nil {
		status.NATS = state(h.nc.IsConnected())
	}
	return status
}

func state(ok bool) string {
	if ok {
		return StateConnected
	}
	return StateDisconnected
}

// ServeHTTP answers readiness probes.
func (h *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if status.Healthy() {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}
