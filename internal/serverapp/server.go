package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"scoundrel/internal/config"
	"scoundrel/internal/httpmw"
	"scoundrel/internal/save"
	"scoundrel/internal/server"
	"scoundrel/internal/session"
	"scoundrel/internal/telemetry"
	"scoundrel/static"
)

type Options struct {
	// Config returns the active configuration. It may change under hot
	// reload.
	Config  func() *config.Config
	Manager *session.Manager
	Hub     *Hub
	Logger  zerolog.Logger
	// StaticDir serves page assets from disk instead of the embedded copy.
	StaticDir string
}

type api struct {
	cfg     func() *config.Config
	manager *session.Manager
	hub     *Hub
	log     zerolog.Logger
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Manager == nil {
		return nil, errors.New("session manager is required")
	}
	if opts.Hub == nil {
		opts.Hub = NewHub(opts.Logger)
	}
	a := &api{cfg: opts.Config, manager: opts.Manager, hub: opts.Hub, log: opts.Logger}
	cfg := opts.Config()

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	rr := &server.RouteRegistry{}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "scoundrel",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.Get("/readyz", a.ready)

	r.Group(func(r chi.Router) {
		r.Use(httpmw.WithRateLimit(cfg.Server.RatePerSecond, cfg.Server.RateBurst))

		server.Handle(r, rr, "GET /api/config", "active configuration", "", a.config)
		server.Handle(r, rr, "POST /api/runs", "start a run, seed 0 picks one", `{"seed": 42}`, a.createRun)
		server.Handle(r, rr, "GET /api/runs", "live runs", "", a.listRuns)
		server.Handle(r, rr, "GET /api/runs/{id}", "view of a live run", "", a.getRun)
		server.Handle(r, rr, "DELETE /api/runs/{id}", "close a live run", "", a.closeRun)
		server.Handle(r, rr, "POST /api/runs/{id}/cmd", "resolve, bare, run, stash, use, ack, tick or settle",
			`{"cmd": "resolve", "args": {"card": 3, "settle": true}}`, a.command)
		server.Handle(r, rr, "GET /api/runs/{id}/ws", "websocket stream of events and views", "", a.watch)
		server.Handle(r, rr, "GET /api/saves", "saved runs, newest first", "", a.listSaves)
		server.Handle(r, rr, "POST /api/saves/{id}/load", "bring a saved run back to life", "", a.loadSave)
		server.Handle(r, rr, "DELETE /api/saves/{id}", "delete a save", "", a.deleteSave)
		server.Handle(r, rr, "GET /api/stats", "balance stats, optional ?since=RFC3339", "", a.stats)
		server.Handle(r, rr, "GET /api/runs/{id}/stats", "stats of one run, live or finished", "", a.runStats)
	})

	server.RegisterAdminUI(r, rr, cfg.Server.Addr)
	r.Handle("/static/*", http.StripPrefix("/static/", static.Handler(opts.StaticDir)))
	r.Get("/", a.indexPage)
	r.Get("/runs/{id}", a.runPage)

	return httpmw.Chain(
		r,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	), nil
}

func (a *api) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := a.manager.Saves().List(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ok":    false,
			"error": "save storage unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "scoundrel",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *api) config(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a.cfg()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type createRequest struct {
	Seed int64 `json:"seed"`
}

type createResponse struct {
	Run    session.View `json:"run"`
	Events any          `json:"events"`
}

func (a *api) createRun(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s, events, err := a.manager.Create(r.Context(), req.Seed)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{Run: s.View(), Events: events})
}

func (a *api) listRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.manager.List())
}

func (a *api) getRun(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (a *api) closeRun(w http.ResponseWriter, r *http.Request) {
	if err := a.manager.Close(chi.URLParam(r, "id")); err != nil {
		writeErr(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type CommandRequest struct {
	Cmd  string         `json:"cmd"`
	Args map[string]any `json:"args"`
}

type CommandResponse struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
	Result *session.Result `json:"result,omitempty"`
}

func (a *api) command(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CommandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Args == nil {
		req.Args = map[string]any{}
	}

	res, err := a.manager.Execute(r.Context(), id, strings.TrimSpace(req.Cmd), req.Args)
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeJSON(w, http.StatusNotFound, CommandResponse{Error: err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusBadRequest, CommandResponse{Error: err.Error()})
		return
	}

	a.hub.Publish(id, Message{Type: "view", Data: res.View})
	writeJSON(w, http.StatusOK, CommandResponse{OK: true, Result: &res})
}

func (a *api) watch(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	a.hub.Serve(w, r, s)
}

func (a *api) listSaves(w http.ResponseWriter, r *http.Request) {
	list, err := a.manager.Saves().List(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *api) loadSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := save.ValidateID(id); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	s, err := a.manager.Load(r.Context(), id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (a *api) deleteSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := save.ValidateID(id); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	err := a.manager.Saves().Delete(r.Context(), id)
	switch {
	case errors.Is(err, save.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) stats(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		since = t
	}
	a.writeStats(w, telemetry.Query{Since: since})
}

func (a *api) runStats(w http.ResponseWriter, r *http.Request) {
	a.writeStats(w, telemetry.Query{Run: chi.URLParam(r, "id")})
}

func (a *api) writeStats(w http.ResponseWriter, q telemetry.Query) {
	events, err := a.manager.Telemetry().Events(q)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := telemetry.CalculateStats(events, q.Since)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := a.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return s, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(out)
}
