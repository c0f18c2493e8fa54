package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scoundrel/internal/game"
	"scoundrel/internal/save"
	"scoundrel/internal/telemetry"
)

var ErrNotFound = errors.New("session not found")

type Options struct {
	Repo      save.Repo
	Telemetry telemetry.Repository
	Logger    zerolog.Logger
	Rules     game.Rules
	Preset    string
	Now       func() time.Time
}

// Manager owns the live sessions and persists them after every settled
// command.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	rules    game.Rules
	preset   string

	repo save.Repo
	tele telemetry.Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		rules:    opts.Rules,
		preset:   opts.Preset,
		repo:     opts.Repo,
		tele:     opts.Telemetry,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if m.repo == nil {
		m.repo = save.NewMemoryRepo()
	}
	if m.tele == nil {
		m.tele = telemetry.NewMemoryRepository()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.preset == "" {
		m.preset = "default"
	}
	return m
}

// SetRules changes the rules for runs created afterwards. Live runs keep
// their own.
func (m *Manager) SetRules(rules game.Rules, preset string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = rules
	m.preset = preset
}

func (m *Manager) Rules() (game.Rules, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rules, m.preset
}

func (m *Manager) Telemetry() telemetry.Repository { return m.tele }
func (m *Manager) Saves() save.Repo                { return m.repo }

// Create starts a new run. A zero seed picks one from the clock.
func (m *Manager) Create(ctx context.Context, seed int64) (*Session, []game.Event, error) {
	rules, preset := m.Rules()
	if seed == 0 {
		seed = m.now().UnixNano()
	}
	id := uuid.NewString()
	now := m.now()

	s := &Session{
		ID:        id,
		Seed:      seed,
		Preset:    preset,
		Rules:     rules,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.bus = newBus(telemetry.NewObserver(m.tele, id, m.log))

	e, err := game.New(rules,
		game.WithSeed(seed),
		game.WithSink(s.bus),
		game.WithLogger(m.log.With().Str("run", id).Logger()),
	)
	if err != nil {
		return nil, nil, err
	}
	s.engine = e
	if err := m.tele.RecordEvent(telemetry.EventRunStarted, telemetry.EventMetadata{
		"run":    id,
		"seed":   seed,
		"preset": preset,
	}); err != nil {
		m.log.Warn().Err(err).Msg("telemetry record failed")
	}
	if err := e.Start(); err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.log.Info().Str("run", id).Int64("seed", seed).Str("preset", preset).Msg("session created")
	return s, s.bus.drain(), nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// List returns the live sessions, oldest first.
func (m *Manager) List() []View {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
	out := make([]View, len(sessions))
	for i, s := range sessions {
		out[i] = s.View()
	}
	return out
}

// Load brings a saved run back to life. A run that is already live is
// returned as is.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if s, err := m.Get(id); err == nil {
		return s, nil
	}
	rec, err := m.repo.Load(ctx, id)
	if err != nil {
		if errors.Is(err, save.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s := &Session{
		ID:        rec.ID,
		Seed:      rec.Seed,
		Preset:    rec.Preset,
		Rules:     rec.Rules,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	s.bus = newBus(telemetry.NewObserver(m.tele, rec.ID, m.log))
	e, err := game.Restore(rec.Rules, rec.Snapshot,
		game.WithSink(s.bus),
		game.WithLogger(m.log.With().Str("run", rec.ID).Logger()),
	)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", id, err)
	}
	s.engine = e
	s.bus.drain()

	m.mu.Lock()
	defer m.mu.Unlock()
	if live, ok := m.sessions[id]; ok {
		return live, nil
	}
	m.sessions[id] = s
	return s, nil
}

// Close drops a live session. Its last settled state stays saved.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// persist saves the session if its engine is between transitions. Callers
// hold the session lock.
func (m *Manager) persist(ctx context.Context, s *Session) error {
	snap, err := s.engine.Snapshot()
	if errors.Is(err, game.ErrBusy) {
		return nil
	}
	if err != nil {
		return err
	}
	s.UpdatedAt = m.now()
	return m.repo.Save(ctx, save.Record{
		ID:        s.ID,
		Seed:      s.Seed,
		Preset:    s.Preset,
		Rules:     s.Rules,
		Snapshot:  snap,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	})
}
