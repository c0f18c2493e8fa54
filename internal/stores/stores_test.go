package stores

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoundrel/internal/config"
	"scoundrel/internal/telemetry"
)

func TestOpen_Backends(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			s, err := Open(config.ServerConfig{SaveBackend: backend, DataDir: t.TempDir()}, zerolog.Nop())
			require.NoError(t, err)
			defer s.Close()

			list, err := s.Saves.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, list)

			require.NoError(t, s.Telemetry.RecordEvent(telemetry.EventRunStarted, telemetry.EventMetadata{"run": "x"}))
			events, err := s.Telemetry.Events(telemetry.Query{})
			require.NoError(t, err)
			assert.Len(t, events, 1)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(config.ServerConfig{SaveBackend: "redis"}, zerolog.Nop())
	assert.Error(t, err)
}
