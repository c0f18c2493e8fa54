package session

import (
	"context"
	"errors"
	"fmt"
	"math"

	"scoundrel/internal/card"
	"scoundrel/internal/game"
)

var ErrUnknownCommand = errors.New("unknown command")

// Result is what a command did, the events it raised and the state after.
type Result struct {
	Outcome *game.Outcome `json:"outcome,omitempty"`
	Acked   int           `json:"acked,omitempty"`
	Events  []game.Event  `json:"events"`
	View    View          `json:"view"`
}

// Execute runs one command against a live session and autosaves once the
// engine is idle. Action commands accept "settle": true to acknowledge every
// step they start.
func (m *Manager) Execute(ctx context.Context, id, cmd string, args map[string]any) (Result, error) {
	s, err := m.Get(id)
	if err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := m.executeCommand(s.engine, cmd, args)
	if err != nil {
		s.bus.drain()
		return Result{}, err
	}
	if res.Outcome != nil && res.Outcome.OK() && getBoolOr(args, "settle", false) {
		res.Acked = s.engine.Settle()
	}
	if err := m.persist(ctx, s); err != nil {
		m.log.Warn().Err(err).Str("run", s.ID).Msg("autosave failed")
	}
	res.Events = s.bus.drain()
	res.View = NewView(s.ID, s.engine)

	ev := m.log.Debug().Str("run", s.ID).Str("cmd", cmd)
	if res.Outcome != nil {
		ev = ev.Str("result", string(res.Outcome.Result)).Str("reason", res.Outcome.Reason)
	}
	ev.Int("events", len(res.Events)).Msg("command")
	return res, nil
}

// executeCommand dispatches the command to the engine.
func (m *Manager) executeCommand(e *game.Engine, cmd string, args map[string]any) (Result, error) {
	switch cmd {
	case "resolve":
		return cmdResolve(e, args, getBoolOr(args, "bare", false))
	case "bare":
		return cmdResolve(e, args, true)
	case "run":
		out := e.RunFromRoom()
		return Result{Outcome: &out}, nil
	case "stash":
		id, err := getInt(args, "card")
		if err != nil {
			return Result{}, err
		}
		out := e.Stash(card.ID(id))
		return Result{Outcome: &out}, nil
	case "use":
		slot, err := getInt(args, "slot")
		if err != nil {
			return Result{}, err
		}
		out := e.UseInventory(slot)
		return Result{Outcome: &out}, nil
	case "ack":
		n := 0
		if e.Ack() {
			n = 1
		}
		return Result{Acked: n}, nil
	case "tick":
		e.Tick()
		return Result{}, nil
	case "settle":
		return Result{Acked: e.Settle()}, nil
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func cmdResolve(e *game.Engine, args map[string]any, bare bool) (Result, error) {
	id, err := getInt(args, "card")
	if err != nil {
		return Result{}, err
	}
	out := e.Resolve(card.ID(id), game.Intent{BareHanded: bare})
	return Result{Outcome: &out}, nil
}

// Helper to get int from args (JSON numbers are float64)
func getInt(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required field: %s", key)
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return 0, fmt.Errorf("field %s must be a whole number, got %v", key, n)
		}
		return int(n), nil
	case int:
		return n, nil
	}
	return 0, fmt.Errorf("field %s must be a number", key)
}

func getBoolOr(args map[string]any, key string, def bool) bool {
	v, ok := args[key].(bool)
	if !ok {
		return def
	}
	return v
}
