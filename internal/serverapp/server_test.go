package serverapp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoundrel/internal/config"
	"scoundrel/internal/game"
	"scoundrel/internal/save"
	"scoundrel/internal/session"
)

type fixture struct {
	srv     *httptest.Server
	manager *session.Manager
	hub     *Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()
	m := session.NewManager(session.Options{
		Repo:   save.NewMemoryRepo(),
		Logger: zerolog.Nop(),
		Rules:  cfg.Rules,
	})
	hub := NewHub(zerolog.Nop())
	h, err := NewHandler(Options{
		Config:  func() *config.Config { return cfg },
		Manager: m,
		Hub:     hub,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		hub.Stop()
		srv.Close()
	})
	return &fixture{srv: srv, manager: m, hub: hub}
}

func (f *fixture) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (f *fixture) create(t *testing.T, seed int64) session.View {
	t.Helper()
	var created struct {
		Run    session.View `json:"run"`
		Events []game.Event `json:"events"`
	}
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/runs", map[string]any{"seed": seed}, &created))
	require.NotEmpty(t, created.Events)
	return created.Run
}

func (f *fixture) cmd(t *testing.T, id, cmd string, args map[string]any) (int, CommandResponse) {
	t.Helper()
	var resp CommandResponse
	code := f.do(t, http.MethodPost, "/api/runs/"+id+"/cmd", CommandRequest{Cmd: cmd, Args: args}, &resp)
	return code, resp
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	for _, p := range []string{"/healthz", "/readyz"} {
		var body map[string]any
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, p, nil, &body), p)
		assert.Equal(t, true, body["ok"])
	}
}

func TestRunLifecycle(t *testing.T) {
	f := newFixture(t)
	run := f.create(t, 42)
	assert.True(t, run.Busy)

	code, resp := f.cmd(t, run.ID, "settle", nil)
	require.Equal(t, http.StatusOK, code)
	require.True(t, resp.OK)
	v := resp.Result.View
	require.Len(t, v.Room, 4)

	code, resp = f.cmd(t, run.ID, "resolve", map[string]any{"card": v.Room[0].ID, "settle": true})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Result.Outcome)
	assert.True(t, resp.Result.Outcome.OK())
	assert.Len(t, resp.Result.View.Room, 3)

	var got session.View
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/runs/"+run.ID, nil, &got))
	assert.Equal(t, resp.Result.View.Life, got.Life)

	var runs []session.View
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/runs", nil, &runs))
	assert.Len(t, runs, 1)

	var saves []save.Summary
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/saves", nil, &saves))
	require.Len(t, saves, 1)
	assert.Equal(t, run.ID, saves[0].ID)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/runs/"+run.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/runs/"+run.ID, nil, &map[string]any{}))

	var loaded session.View
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/saves/"+run.ID+"/load", nil, &loaded))
	assert.Equal(t, got.Room, loaded.Room)
}

func TestCommand_Errors(t *testing.T) {
	f := newFixture(t)
	run := f.create(t, 1)

	code, resp := f.cmd(t, run.ID, "dance", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error, "unknown command")

	code, _ = f.cmd(t, "nope", "settle", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = f.cmd(t, run.ID, "resolve", map[string]any{"card": 1})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, game.ReasonBusy, resp.Result.Outcome.Reason)

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/runs/"+run.ID+"/cmd", strings.NewReader("{"))
	require.NoError(t, err)
	r, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/saves/not-a-uuid/load", nil, &map[string]any{}))
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/saves/00000000-0000-0000-0000-000000000000/load", nil, &map[string]any{}))
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	run := f.create(t, 5)
	f.cmd(t, run.ID, "settle", nil)

	var stats map[string]any
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/stats", nil, &stats))
	assert.EqualValues(t, 1, stats["runs"])
	assert.EqualValues(t, 1, stats["rooms_entered"])

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/stats?since=yesterday", nil, &map[string]any{}))
}

func TestRunStats_ScopedToRun(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, 5)
	f.cmd(t, first.ID, "settle", nil)
	second := f.create(t, 6)
	f.cmd(t, second.ID, "settle", nil)

	var all, one, none map[string]any
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/stats", nil, &all))
	assert.EqualValues(t, 2, all["runs"])

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/runs/"+first.ID+"/stats", nil, &one))
	assert.EqualValues(t, 1, one["runs"])
	assert.EqualValues(t, 1, one["rooms_entered"])

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/runs/unknown/stats", nil, &none))
	assert.EqualValues(t, 0, none["runs"])
}

func TestPages(t *testing.T) {
	f := newFixture(t)
	run := f.create(t, 8)

	for path, want := range map[string]int{
		"/":                    http.StatusOK,
		"/runs/" + run.ID:      http.StatusOK,
		"/runs/missing":        http.StatusNotFound,
		"/_/admin":             http.StatusOK,
		"/_/admin/routes.json": http.StatusOK,
		"/static/js/run.js":    http.StatusOK,
		"/static/css/nope.css": http.StatusNotFound,
	} {
		resp, err := http.Get(f.srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestWebsocket_StreamsViewAndEvents(t *testing.T) {
	f := newFixture(t)
	run := f.create(t, 13)

	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/runs/" + run.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() Message {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var m Message
		require.NoError(t, conn.ReadJSON(&m))
		return m
	}
	assert.Equal(t, "view", read().Type)
	require.Eventually(t, func() bool { return f.hub.ClientCount(run.ID) == 1 }, time.Second, 10*time.Millisecond)

	f.cmd(t, run.ID, "ack", nil)
	assert.Equal(t, "event", read().Type)

	var last Message
	for i := 0; i < 10 && last.Type != "view"; i++ {
		last = read()
	}
	assert.Equal(t, "view", last.Type)
}
