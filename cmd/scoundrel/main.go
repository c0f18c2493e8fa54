package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"scoundrel/internal/config"
	"scoundrel/internal/logging"
	"scoundrel/internal/session"
	"scoundrel/internal/stores"
	"scoundrel/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	seed := flag.Int64("seed", 0, "seed for a new run, 0 picks one")
	load := flag.String("load", "", "id of a saved run to continue")
	list := flag.Bool("list", false, "list saved runs and exit")
	flag.Parse()

	if err := run(*configPath, *seed, *load, *list); err != nil {
		fmt.Fprintln(os.Stderr, "scoundrel:", err)
		os.Exit(1)
	}
}

func run(configPath string, seed int64, load string, list bool) error {
	cfg := config.Default()
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
	}
	cfg = config.FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.Server.DataDir, "scoundrel.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log, err := logging.New(cfg.Log, logFile)
	if err != nil {
		return err
	}

	st, err := stores.Open(cfg.Server, log)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if list {
		saves, err := st.Saves.List(ctx)
		if err != nil {
			return err
		}
		for _, s := range saves {
			fmt.Printf("%s  %-8s %-8s floor %d room %d life %d  %s\n",
				s.ID, s.Preset, s.Status, s.Floor+1, s.Room, s.Life, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	}

	m := session.NewManager(session.Options{
		Repo:      st.Saves,
		Telemetry: st.Telemetry,
		Logger:    log,
		Rules:     cfg.Rules,
		Preset:    cfg.Preset,
	})

	var s *session.Session
	if load != "" {
		s, err = m.Load(ctx, load)
	} else {
		s, _, err = m.Create(ctx, seed)
	}
	if err != nil {
		return err
	}
	return tui.Run(ctx, m, s, log)
}
