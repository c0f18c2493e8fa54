// Package stores opens the save and telemetry repositories for the
// configured backend.
package stores

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"scoundrel/internal/config"
	"scoundrel/internal/save"
	"scoundrel/internal/telemetry"
)

// DBFile is the SQLite file name inside the data directory.
const DBFile = "scoundrel.db"

type Stores struct {
	Saves     save.Repo
	Telemetry telemetry.Repository
	db        *save.DB
}

// Open builds the repositories for cfg.SaveBackend. The sqlite backend keeps
// telemetry in the same database; the others keep it in memory.
func Open(cfg config.ServerConfig, log zerolog.Logger) (*Stores, error) {
	switch cfg.SaveBackend {
	case config.BackendMemory:
		return &Stores{Saves: save.NewMemoryRepo(), Telemetry: telemetry.NewMemoryRepository()}, nil
	case config.BackendFile, "":
		repo, err := save.NewFileRepo(filepath.Join(cfg.DataDir, "saves"))
		if err != nil {
			return nil, err
		}
		return &Stores{Saves: repo, Telemetry: telemetry.NewMemoryRepository()}, nil
	case config.BackendSQLite:
		path := filepath.Join(cfg.DataDir, DBFile)
		db, err := save.Open(save.DefaultDBConfig(path))
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", path).Msg("database opened")
		return &Stores{
			Saves:     save.NewSQLiteRepo(db),
			Telemetry: telemetry.NewSQLRepository(db.Conn()),
			db:        db,
		}, nil
	}
	return nil, fmt.Errorf("stores: unknown save backend %q", cfg.SaveBackend)
}

func (s *Stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
