package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"essayons/internal/auth"
	"essayons/internal/config"
	"essayons/internal/contact"
	"essayons/internal/content"
	"essayons/internal/engine"
	"essayons/internal/lobby"
	"essayons/internal/protocol"
	"essayons/internal/quiz"
	"essayons/internal/table"
)

// maxRNG always rolls a six and leaves shuffles in catalog order.
type maxRNG struct{}

func (maxRNG) IntN(n int) int { return n - 1 }

type testEnv struct {
	srv     *Server
	tables  *Tables
	notify  *recordingNotifier
	cookies []*http.Cookie
}

type recordingNotifier struct {
	got []contact.Message
}

func (n *recordingNotifier) Notify(_ context.Context, m contact.Message) error {
	n.got = append(n.got, m)
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tables := NewTables(lobby.NewManager(10), table.Options{
		NewRNG: func() engine.RNG { return maxRNG{} },
	})
	t.Cleanup(tables.Close)

	authSvc := auth.NewService(auth.NewMemoryUserStore(), auth.NewMemorySessionStore(), time.Hour)
	authSvc.SetCost(bcrypt.MinCost)
	_, err := authSvc.SeedAdmin(context.Background(), "admin", "admin123", "admin@example.com")
	require.NoError(t, err)

	quizzes, err := quiz.Load()
	require.NoError(t, err)

	n := &recordingNotifier{}
	static := fstest.MapFS{
		"index.html":         {Data: []byte("<html>home</html>")},
		"toolbox/index.html": {Data: []byte("<html>toolbox</html>")},
		"app.js":             {Data: []byte("console.log(1)")},
	}

	srv := New(
		config.ServerConfig{PublicURL: "https://essayons.example", AppURL: "https://app.example/login"},
		config.SessionConfig{CookieName: "sid", TTL: time.Hour},
		Deps{
			Tables:  tables,
			Content: content.NewService(content.NewMemoryStore()),
			Auth:    authSvc,
			Contact: contact.NewService(contact.NewMemoryStore(), n),
			Quizzes: quizzes,
			Static:  static,
		},
	)
	return &testEnv{srv: srv, tables: tables, notify: n}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range e.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	e.cookies = rec.Result().Cookies()
	require.NotEmpty(t, e.cookies)
}

type envelope[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Error   *apiError `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestStatusAndHealth(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/status", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]any](t, rec)
	assert.True(t, status.Success)
	assert.Equal(t, "ok", status.Data["status"])

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/ready", nil).Code)
}

func TestAppRedirect(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/app", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://app.example/login", rec.Header().Get("Location"))
}

func TestTableLifecycleOverREST(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/tables", map[string]any{"player_name": "Ada", "opponents": 0})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[tableResponse](t, rec)
	id := created.Data.Table.ID
	require.NotEmpty(t, id)
	assert.Equal(t, "Ada", created.Data.Table.Setup.PlayerName)
	assert.False(t, created.Data.State.Started)
	assert.Equal(t, "https://essayons.example/toolbox?table="+id, created.Data.Link)

	rec = e.do(t, http.MethodPost, "/api/tables/"+id+"/roll", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "rolling before the game starts")
	assert.Equal(t, "not_started", decode[any](t, rec).Error.Code)

	rec = e.do(t, http.MethodPost, "/api/tables/"+id+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	started := decode[tableResponse](t, rec)
	require.True(t, started.Data.State.Started)
	require.Len(t, started.Data.State.View.Players, 1)
	assert.Equal(t, "Ada", started.Data.State.View.Players[0].Name)

	rec = e.do(t, http.MethodPost, "/api/tables/"+id+"/roll", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rolled := decode[tableResponse](t, rec)
	assert.Equal(t, engine.PhaseCardShown, rolled.Data.State.View.Phase)
	assert.Equal(t, 6, rolled.Data.State.View.Players[0].Position)
	require.NotNil(t, rolled.Data.State.View.CurrentCard)
	assert.Equal(t, "c1", rolled.Data.State.View.CurrentCard.ID)

	rec = e.do(t, http.MethodPost, "/api/tables/"+id+"/roll", nil)
	require.Equal(t, http.StatusOK, rec.Code, "a roll while a card is showing is ignored")
	stale := decode[tableResponse](t, rec)
	assert.Equal(t, rolled.Data.State.View, stale.Data.State.View)

	rec = e.do(t, http.MethodPost, "/api/tables/"+id+"/acknowledge", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	acked := decode[tableResponse](t, rec)
	assert.Equal(t, engine.PhaseAwaitingRoll, acked.Data.State.View.Phase)
	assert.Equal(t, 2, acked.Data.State.View.Turn)

	rec = e.do(t, http.MethodPost, "/api/tables/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reset := decode[tableResponse](t, rec)
	assert.False(t, reset.Data.State.Started)
	assert.Nil(t, reset.Data.State.View)
	assert.Equal(t, 1, reset.Data.Table.Games)
}

func TestStaleAcknowledgeKeepsState(t *testing.T) {
	e := newTestEnv(t)
	hub, err := e.tables.Create()
	require.NoError(t, err)
	require.NoError(t, hub.Start(protocol.StartMsg{}))
	before := hub.Snapshot()

	rec := e.do(t, http.MethodPost, "/api/tables/"+hub.ID()+"/acknowledge", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[tableResponse](t, rec)
	assert.Equal(t, engine.PhaseAwaitingRoll, got.Data.State.View.Phase)
	assert.Equal(t, before.View.Turn, got.Data.State.View.Turn)
	assert.Nil(t, got.Data.State.View.CurrentCard)
}

func TestListTables(t *testing.T) {
	e := newTestEnv(t)
	first, err := e.tables.Create()
	require.NoError(t, err)
	second, err := e.tables.Create()
	require.NoError(t, err)

	rec := e.do(t, http.MethodGet, "/api/tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]lobby.Info](t, rec)
	require.Len(t, got.Data, 2)
	ids := []string{got.Data[0].ID, got.Data[1].ID}
	assert.ElementsMatch(t, []string{first.ID(), second.ID()}, ids)

	e.tables.Remove(first.ID())
	rec = e.do(t, http.MethodGet, "/api/tables", nil)
	got = decode[[]lobby.Info](t, rec)
	require.Len(t, got.Data, 1)
	assert.Equal(t, second.ID(), got.Data[0].ID)

	rec = e.do(t, http.MethodGet, "/api/tables/"+first.ID(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTableRejectsBadSetup(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/api/tables", map[string]any{"opponents": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, e.tables.Len(), "the rejected table is closed again")
}

func TestStartRejectsTooManyOpponents(t *testing.T) {
	e := newTestEnv(t)
	hub, err := e.tables.Create()
	require.NoError(t, err)

	rec := e.do(t, http.MethodPost, "/api/tables/"+hub.ID()+"/start", map[string]any{"opponents": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, hub.Snapshot().Started)
}

func TestUnknownTable(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/api/tables/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decode[any](t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestTableQRCode(t *testing.T) {
	e := newTestEnv(t)
	hub, err := e.tables.Create()
	require.NoError(t, err)

	rec := e.do(t, http.MethodGet, "/api/tables/"+hub.ID()+"/qr?size=128", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = e.do(t, http.MethodGet, "/api/tables/"+hub.ID()+"/qr?size=9", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSweepClosesIdleTables(t *testing.T) {
	mgr := lobby.NewManager(0)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	mgr.SetClock(func() time.Time { return now })
	tables := NewTables(mgr, table.Options{NewRNG: func() engine.RNG { return maxRNG{} }})
	t.Cleanup(tables.Close)

	idle, err := tables.Create()
	require.NoError(t, err)
	now = now.Add(90 * time.Minute)
	busy, err := tables.Create()
	require.NoError(t, err)

	now = now.Add(time.Hour)
	removed := tables.Sweep(2 * time.Hour)
	assert.Equal(t, []string{idle.ID()}, removed)

	_, err = tables.Get(idle.ID())
	assert.ErrorIs(t, err, lobby.ErrNotFound)
	_, err = tables.Get(busy.ID())
	assert.NoError(t, err)
}

func readEnvelope(t *testing.T, conn *websocket.Conn) protocol.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var env protocol.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

// readUntil skips messages until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) protocol.Envelope {
	t.Helper()
	for i := 0; i < 50; i++ {
		env := readEnvelope(t, conn)
		if env.Type == typ {
			return env
		}
	}
	t.Fatalf("no %s message received", typ)
	return protocol.Envelope{}
}

func TestWebSocketPlaysATable(t *testing.T) {
	e := newTestEnv(t)
	ts := httptest.NewServer(e.srv.Router())
	defer ts.Close()

	hub, err := e.tables.Create()
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?table=" + hub.ID()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readEnvelope(t, conn)
	assert.Equal(t, protocol.MsgLobby, first.Type)
	state := readEnvelope(t, conn)
	require.Equal(t, protocol.MsgTableState, state.Type)
	var snap table.Snapshot
	require.NoError(t, state.Decode(&snap))
	assert.False(t, snap.Started)

	zero := 0
	require.NoError(t, conn.WriteJSON(protocol.MustEnvelope(protocol.MsgStart, protocol.StartMsg{PlayerName: "Solo", Opponents: &zero})))
	readUntil(t, conn, protocol.MsgTableState)

	require.NoError(t, conn.WriteJSON(protocol.Envelope{Type: protocol.MsgRoll}))
	ev := readUntil(t, conn, protocol.MsgEvent)
	var event engine.Event
	require.NoError(t, ev.Decode(&event))
	assert.Equal(t, engine.EventRolled, event.Type)

	require.NoError(t, conn.WriteJSON(protocol.Envelope{Type: "dance"}))
	errEnv := readUntil(t, conn, protocol.MsgError)
	var msg protocol.ErrorMsg
	require.NoError(t, errEnv.Decode(&msg))
	assert.Contains(t, msg.Message, "unknown message type")
}

func TestWebSocketUnknownTable(t *testing.T) {
	e := newTestEnv(t)
	ts := httptest.NewServer(e.srv.Router())
	defer ts.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?table=missing", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	e.login(t)
	cookie := e.cookies[0]
	assert.Equal(t, "sid", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	rec = e.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]map[string]any](t, rec)
	assert.Equal(t, "admin", me.Data["user"]["username"])
	assert.NotContains(t, rec.Body.String(), "password")

	rec = e.do(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/api/auth/me", nil).Code)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	e := newTestEnv(t)
	for _, target := range []string{"/api/admin/content", "/api/admin/contact"} {
		rec := e.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestContentPublishing(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	rec := e.do(t, http.MethodPost, "/api/admin/content", map[string]any{
		"type":  "blog",
		"title": "Leading Through Change",
		"body":  "Body text",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	draft := decode[content.Content](t, rec)
	assert.Equal(t, "leading-through-change", draft.Data.Slug)
	assert.Equal(t, content.StatusDraft, draft.Data.Status)
	require.NotNil(t, draft.Data.AuthorID)

	public := &testEnv{srv: e.srv}
	list := decode[[]content.Content](t, public.do(t, http.MethodGet, "/api/content", nil))
	assert.Empty(t, list.Data, "drafts stay private")
	assert.Equal(t, http.StatusNotFound, public.do(t, http.MethodGet, "/api/content/leading-through-change", nil).Code)

	id := draft.Data.ID
	rec = e.do(t, http.MethodPatch, "/api/admin/content/"+itoa(id), map[string]any{"status": "published"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/admin/content/"+itoa(id)+"/attachments", map[string]any{
		"kind": "pdf",
		"url":  "/files/guide.pdf",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = public.do(t, http.MethodGet, "/api/content/leading-through-change", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[contentResponse](t, rec)
	assert.Equal(t, "Leading Through Change", detail.Data.Title)
	require.Len(t, detail.Data.Attachments, 1)
	assert.Equal(t, content.AttachmentPDF, detail.Data.Attachments[0].Kind)

	list = decode[[]content.Content](t, public.do(t, http.MethodGet, "/api/content?type=blog", nil))
	assert.Len(t, list.Data, 1)
	list = decode[[]content.Content](t, public.do(t, http.MethodGet, "/api/content?status=draft", nil))
	assert.Empty(t, list.Data)

	rec = e.do(t, http.MethodPost, "/api/admin/content", map[string]any{
		"type":  "blog",
		"title": "Leading Through Change",
		"body":  "again",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/admin/content/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/admin/content/"+itoa(id), nil).Code)
}

func TestContentValidationErrors(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	rec := e.do(t, http.MethodPost, "/api/admin/content", map[string]any{"type": "podcast"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[any](t, rec)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.NotEmpty(t, env.Error.Fields)

	rec = e.do(t, http.MethodPost, "/api/admin/content", map[string]any{"surprise": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decode[any](t, rec).Error.Code)
}

func TestContactSubmission(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/contact", map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"subject": "Workshops",
		"message": "Hello there",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[contact.Result](t, rec)
	assert.True(t, res.Data.Delivered)
	assert.Len(t, e.notify.got, 1)

	rec = e.do(t, http.MethodPost, "/api/contact", map[string]string{"name": "Ada", "email": "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode[any](t, rec).Error.Fields
	assert.NotEmpty(t, fields)

	e.login(t)
	msgs := decode[[]contact.Message](t, e.do(t, http.MethodGet, "/api/admin/contact", nil))
	require.Len(t, msgs.Data, 1)

	rec = e.do(t, http.MethodPatch, "/api/admin/contact/"+itoa(msgs.Data[0].ID), map[string]string{"status": "read"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contact.StatusRead, decode[contact.Message](t, rec).Data.Status)
}

func TestQuizRoutes(t *testing.T) {
	e := newTestEnv(t)

	names := decode[[]string](t, e.do(t, http.MethodGet, "/api/quizzes", nil))
	assert.Equal(t, []string{"readiness", "style"}, names.Data)

	rec := e.do(t, http.MethodGet, "/api/quizzes/style", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bank := decode[quiz.Bank](t, rec)
	assert.Len(t, bank.Data.Questions, 14)

	rec = e.do(t, http.MethodPost, "/api/quizzes/style/score", map[string]any{"answers": map[string]int{"3": 5, "4": 5}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[quiz.Result](t, rec)
	assert.Equal(t, "Servant", res.Data.Top.Key)

	rec = e.do(t, http.MethodPost, "/api/quizzes/readiness/score", map[string]any{"answers": map[string]int{"q1": 5}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/quizzes/trivia", nil).Code)
}

func TestStaticFallback(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "home")

	rec = e.do(t, http.MethodGet, "/blog/some-post", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "home")

	rec = e.do(t, http.MethodGet, "/toolbox/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "toolbox")

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/app.js", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/missing.js", nil).Code)

	rec = e.do(t, http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[any](t, rec).Error.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
