package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_YAMLPresetWithOverrides(t *testing.T) {
	p := writeFile(t, t.TempDir(), "scoundrel.yaml", `
preset: hard
rules:
  max_life: 18
  start_life: 18
server:
  save_backend: sqlite
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, PresetHard, cfg.Preset)
	assert.Equal(t, 18, cfg.Rules.MaxLife)
	assert.Equal(t, 1, cfg.Rules.InventoryCapacity, "kept from the preset")
	assert.Equal(t, 44, cfg.Rules.Composition.Total)
	assert.Equal(t, BackendSQLite, cfg.Server.SaveBackend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_TOML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "scoundrel.toml", `
preset = "casual"

[rules]
floor_count = 2

[log]
level = "debug"
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Rules.MaxLife)
	assert.Equal(t, 2, cfg.Rules.FloorCount)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Rejects(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"unknown preset":  "preset: brutal\n",
		"unknown backend": "server:\n  save_backend: redis\n",
		"unsatisfiable": `
rules:
  composition:
    potion:
      suits: [hearts]
      min_value: 2
      max_value: 3
`,
		"bad yaml": "rules: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, dir, "c.yaml", body))
			assert.Error(t, err)
		})
	}
}

func TestPresets_AreValid(t *testing.T) {
	for _, name := range Presets() {
		r, err := Preset(name)
		require.NoError(t, err)
		assert.NoError(t, r.Validate(), name)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("DIFFICULTY", "hard")
	t.Setenv("SCOUNDREL_FLOORS", "5")
	t.Setenv("SCOUNDREL_ADDR", ":9999")
	t.Setenv("SCOUNDREL_INVENTORY", "not-a-number")

	base := Default()
	cfg := FromEnv(base)

	assert.Equal(t, PresetHard, cfg.Preset)
	assert.Equal(t, 15, cfg.Rules.MaxLife)
	assert.Equal(t, 5, cfg.Rules.FloorCount)
	assert.Equal(t, 1, cfg.Rules.InventoryCapacity)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, PresetDefault, base.Preset, "base is not modified")
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "scoundrel.yaml", "preset: default\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var maxLife atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, zerolog.Nop(), func(c *Config) {
			maxLife.Store(int64(c.Rules.MaxLife))
		})
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(p, []byte("preset: casual\n"), 0o644)
		return maxLife.Load() == 25
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
