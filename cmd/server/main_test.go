package main

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoundrel/internal/config"
	"scoundrel/internal/session"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.PresetDefault, cfg.Preset)

	p := filepath.Join(t.TempDir(), "scoundrel.toml")
	require.NoError(t, os.WriteFile(p, []byte("preset = \"hard\"\n[server]\nsave_backend = \"memory\"\n"), 0o644))
	t.Setenv("SCOUNDREL_FLOORS", "2")
	cfg, err = loadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Rules.MaxLife)
	assert.Equal(t, 2, cfg.Rules.FloorCount)
	assert.Equal(t, config.BackendMemory, cfg.Server.SaveBackend)
}

func TestReload_KeepsServerSettings(t *testing.T) {
	cur := config.Default()
	var active atomic.Pointer[config.Config]
	active.Store(cur)
	m := session.NewManager(session.Options{Rules: cur.Rules, Preset: cur.Preset})

	next := config.Default()
	next.Preset = config.PresetCasual
	next.Rules = config.Casual()
	next.Server.Addr = ":1"
	reload(zerolog.Nop(), &active, m, next)

	rules, preset := m.Rules()
	assert.Equal(t, config.PresetCasual, preset)
	assert.Equal(t, 25, rules.MaxLife)
	assert.Equal(t, cur.Server.Addr, active.Load().Server.Addr)
	assert.Equal(t, config.PresetCasual, active.Load().Preset)
}

func TestApplyReload_RejectsInvalidEnvOverride(t *testing.T) {
	cur := config.Default()
	var active atomic.Pointer[config.Config]
	active.Store(cur)
	m := session.NewManager(session.Options{Rules: cur.Rules, Preset: cur.Preset})

	t.Setenv("SCOUNDREL_START_LIFE", "50")
	next := config.Default()
	next.Preset = config.PresetCasual
	next.Rules = config.Casual()
	assert.Error(t, applyReload(zerolog.Nop(), &active, m, next))

	rules, preset := m.Rules()
	assert.Equal(t, config.PresetDefault, preset)
	assert.Equal(t, 20, rules.MaxLife)
	assert.Same(t, cur, active.Load())

	t.Setenv("SCOUNDREL_START_LIFE", "10")
	require.NoError(t, applyReload(zerolog.Nop(), &active, m, next))
	rules, _ = m.Rules()
	assert.Equal(t, 10, rules.StartLife)
}

func TestLoadConfig_RejectsInvalidEnvOverride(t *testing.T) {
	t.Setenv("SCOUNDREL_START_LIFE", "50")
	_, err := loadConfig("")
	assert.Error(t, err)
}
