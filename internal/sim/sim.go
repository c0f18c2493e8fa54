package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"scoundrel/internal/game"
	"scoundrel/internal/telemetry"
)

// maxActions bounds a run. Every resolve removes a card, so real runs end
// long before it.
const maxActions = 10_000

var ErrStuck = errors.New("sim: policy made no progress")

// Result summarizes one simulated run.
type Result struct {
	Seed    int64       `json:"seed"`
	Status  game.Status `json:"status"`
	Life    int         `json:"life"`
	Floor   int         `json:"floor"`
	Rooms   int         `json:"rooms"`
	Actions int         `json:"actions"`
}

// Options configures a batch.
type Options struct {
	Rules   game.Rules
	Policy  func(seed int64) Policy
	Workers int
	Repo    telemetry.Repository
	Logger  zerolog.Logger
}

// Play runs one game to completion, acknowledging every step as soon as it
// is raised.
func Play(ctx context.Context, rules game.Rules, seed int64, policy Policy, repo telemetry.Repository, log zerolog.Logger) (Result, error) {
	run := fmt.Sprintf("sim-%d", seed)
	var sink game.Sink = game.Fanout{}
	if repo != nil {
		sink = telemetry.NewObserver(repo, run, log)
		if err := repo.RecordEvent(telemetry.EventRunStarted, telemetry.EventMetadata{
			"run":    run,
			"seed":   seed,
			"policy": policy.Name(),
		}); err != nil {
			return Result{}, err
		}
	}

	e, err := game.New(rules, game.WithSeed(seed), game.WithSink(sink))
	if err != nil {
		return Result{}, err
	}
	if err := e.Start(); err != nil {
		return Result{}, err
	}

	res := Result{Seed: seed}
	for e.Settle(); !e.Over(); e.Settle() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if res.Actions >= maxActions {
			return res, fmt.Errorf("%w after %d actions (seed %d)", ErrStuck, res.Actions, seed)
		}
		if out := policy.Act(e); !out.OK() {
			return res, fmt.Errorf("%w: %s (seed %d)", ErrStuck, out.Reason, seed)
		}
		res.Actions++
	}

	res.Status = e.Status()
	res.Life = e.Player().Life()
	res.Floor = e.Floors().CurrentFloorIndex() + 1
	res.Rooms = e.Floors().RoomCounter()
	log.Debug().Int64("seed", seed).Str("status", string(res.Status)).Int("actions", res.Actions).Msg("run finished")
	return res, nil
}

// RunMany plays every seed on a bounded pool of workers and returns the
// results in seed order together with the aggregated stats.
func RunMany(ctx context.Context, seeds []int64, opts Options) ([]Result, telemetry.Stats, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Policy == nil {
		opts.Policy = func(int64) Policy { return Greedy{} }
	}
	if opts.Repo == nil {
		opts.Repo = telemetry.NewMemoryRepository()
	}
	start := time.Now()

	results := make([]Result, len(seeds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			r, err := Play(ctx, opts.Rules, seed, opts.Policy(seed), opts.Repo, opts.Logger)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, telemetry.Stats{}, err
	}

	events, err := opts.Repo.Events(telemetry.Query{Since: start})
	if err != nil {
		return results, telemetry.Stats{}, err
	}
	stats, err := telemetry.CalculateStats(events, start)
	if err != nil {
		return results, telemetry.Stats{}, err
	}
	opts.Logger.Info().
		Int("runs", len(results)).
		Int("victories", stats.Victories).
		Float64("win_rate", stats.WinRate).
		Dur("took", time.Since(start)).
		Msg("simulation finished")
	return results, stats, nil
}

// Seeds returns n consecutive seeds starting at first.
func Seeds(first int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = first + int64(i)
	}
	return out
}
