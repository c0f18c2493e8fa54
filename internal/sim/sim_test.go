package sim

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoundrel/internal/game"
	"scoundrel/internal/telemetry"
)

func TestPlay_EndsInTerminalState(t *testing.T) {
	for _, p := range []func(int64) Policy{
		func(int64) Policy { return Greedy{} },
		func(s int64) Policy { return NewRandom(s) },
	} {
		for seed := int64(1); seed <= 20; seed++ {
			pol := p(seed)
			res, err := Play(context.Background(), game.DefaultRules(), seed, pol, nil, zerolog.Nop())
			require.NoError(t, err, "%s seed %d", pol.Name(), seed)
			assert.Contains(t, []game.Status{game.StatusVictory, game.StatusDefeat}, res.Status)
			if res.Status == game.StatusDefeat {
				assert.Zero(t, res.Life)
			} else {
				assert.Positive(t, res.Life)
				assert.Equal(t, 3, res.Floor)
			}
			assert.Positive(t, res.Actions)
		}
	}
}

func TestRunMany_DeterministicAndCounted(t *testing.T) {
	seeds := Seeds(100, 24)
	opts := Options{Rules: game.DefaultRules(), Workers: 6, Logger: zerolog.Nop()}

	a, stats, err := RunMany(context.Background(), seeds, opts)
	require.NoError(t, err)
	b, _, err := RunMany(context.Background(), seeds, opts)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	for i, r := range a {
		assert.Equal(t, seeds[i], r.Seed)
	}
	assert.Equal(t, 24, stats.Runs)
	assert.Equal(t, 24, stats.Victories+stats.Defeats)
	assert.Positive(t, stats.RoomsEntered)
}

func TestRunMany_SharedRepository(t *testing.T) {
	repo := telemetry.NewMemoryRepository()
	_, _, err := RunMany(context.Background(), Seeds(1, 4), Options{
		Rules:  game.DefaultRules(),
		Policy: func(s int64) Policy { return NewRandom(s) },
		Repo:   repo,
	})
	require.NoError(t, err)

	started, err := repo.Events(telemetry.Query{Types: []telemetry.EventType{telemetry.EventRunStarted}})
	require.NoError(t, err)
	assert.Len(t, started, 4)
}

func TestRunMany_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := RunMany(ctx, Seeds(1, 8), Options{Rules: game.DefaultRules()})
	assert.ErrorIs(t, err, context.Canceled)
}
