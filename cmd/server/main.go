package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"scoundrel/internal/config"
	"scoundrel/internal/logging"
	"scoundrel/internal/serverapp"
	"scoundrel/internal/session"
	"scoundrel/internal/stores"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "scoundrel-server:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	cfg = config.FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}

	st, err := stores.Open(cfg.Server, log)
	if err != nil {
		return err
	}
	defer st.Close()

	var active atomic.Pointer[config.Config]
	active.Store(cfg)

	manager := session.NewManager(session.Options{
		Repo:      st.Saves,
		Telemetry: st.Telemetry,
		Logger:    log,
		Rules:     cfg.Rules,
		Preset:    cfg.Preset,
	})
	hub := serverapp.NewHub(log)
	handler, err := serverapp.NewHandler(serverapp.Options{
		Config:  active.Load,
		Manager: manager,
		Hub:     hub,
		Logger:  log,
		// Set while editing page assets to skip rebuilds.
		StaticDir: os.Getenv("SCOUNDREL_STATIC_DIR"),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Str("backend", cfg.Server.SaveBackend).Str("preset", cfg.Preset).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		hub.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if configPath != "" {
		g.Go(func() error {
			return config.Watch(ctx, configPath, log, func(next *config.Config) {
				if err := applyReload(log, &active, manager, next); err != nil {
					log.Warn().Err(err).Msg("config reload rejected")
				}
			})
		})
	}
	return g.Wait()
}

// applyReload layers the environment over a reloaded file and installs it
// once the combined config validates.
func applyReload(log zerolog.Logger, active *atomic.Pointer[config.Config], m *session.Manager, next *config.Config) error {
	next = config.FromEnv(next)
	if err := next.Validate(); err != nil {
		return err
	}
	reload(log, active, m, next)
	return nil
}

// reload applies the parts of a new config that can change at runtime:
// rules for new runs and the log level. Server settings need a restart.
func reload(log zerolog.Logger, active *atomic.Pointer[config.Config], m *session.Manager, next *config.Config) {
	prev := active.Load()
	if next.Server != prev.Server {
		log.Warn().Msg("server settings changed; restart to apply them")
		next.Server = prev.Server
	}
	if lvl, err := zerolog.ParseLevel(next.Log.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	m.SetRules(next.Rules, next.Preset)
	active.Store(next)
}
