package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"scoundrel/internal/config"
	"scoundrel/internal/logging"
	"scoundrel/internal/save"
	"scoundrel/internal/sim"
	"scoundrel/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	preset := flag.String("preset", "", "rules preset, overrides the config file")
	runs := flag.Int("n", 1000, "number of runs")
	first := flag.Int64("seed", 1, "first seed")
	workers := flag.Int("workers", 8, "parallel runs")
	policy := flag.String("policy", "greedy", "greedy or random")
	dbPath := flag.String("db", "", "record telemetry into this SQLite file")
	flag.Parse()

	if err := run(*configPath, *preset, *runs, *first, *workers, *policy, *dbPath); err != nil {
		fmt.Fprintln(os.Stderr, "scoundrel-sim:", err)
		os.Exit(1)
	}
}

func run(configPath, preset string, n int, first int64, workers int, policy, dbPath string) error {
	cfg := config.Default()
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
	}
	cfg = config.FromEnv(cfg)
	if preset != "" {
		rules, err := config.Preset(preset)
		if err != nil {
			return err
		}
		cfg.Rules = rules
	}
	log, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	var pick func(int64) sim.Policy
	switch policy {
	case "greedy":
		pick = func(int64) sim.Policy { return sim.Greedy{} }
	case "random":
		pick = func(seed int64) sim.Policy { return sim.NewRandom(seed) }
	default:
		return fmt.Errorf("unknown policy %q", policy)
	}

	var repo telemetry.Repository = telemetry.NewMemoryRepository()
	if dbPath != "" {
		db, err := save.Open(save.DefaultDBConfig(dbPath))
		if err != nil {
			return err
		}
		defer db.Close()
		repo = telemetry.NewSQLRepository(db.Conn())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, stats, err := sim.RunMany(ctx, sim.Seeds(first, n), sim.Options{
		Rules:   cfg.Rules,
		Policy:  pick,
		Workers: workers,
		Repo:    repo,
		Logger:  log,
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
