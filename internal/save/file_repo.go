package save

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileRepo persists each save as a JSON file.
type FileRepo struct {
	mu      sync.RWMutex
	dataDir string
	cache   map[string]Record
}

// NewFileRepo creates a file-based save repository under dataDir.
func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &FileRepo{
		dataDir: dataDir,
		cache:   make(map[string]Record),
	}, nil
}

func (r *FileRepo) filePath(id string) string {
	return filepath.Join(r.dataDir, id+".json")
}

func (r *FileRepo) Load(ctx context.Context, id string) (Record, error) {
	if err := ValidateID(id); err != nil {
		return Record{}, ErrNotFound
	}
	r.mu.RLock()
	if rec, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return rec, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.cache[id]; ok {
		return rec, nil
	}
	rec, err := r.read(id)
	if err != nil {
		return Record{}, err
	}
	r.cache[id] = rec
	return rec, nil
}

func (r *FileRepo) read(id string) (Record, error) {
	data, err := os.ReadFile(r.filePath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Save writes through a temp file so a crash never leaves a torn save.
func (r *FileRepo) Save(ctx context.Context, rec Record) error {
	if err := ValidateID(rec.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	path := r.filePath(rec.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	r.cache[rec.ID] = rec
	return nil
}

func (r *FileRepo) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if ValidateID(id) != nil {
			continue
		}
		rec, err := r.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Summary())
	}
	sortSummaries(out)
	return out, nil
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, id)
	if err := os.Remove(r.filePath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
