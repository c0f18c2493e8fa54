// Package ops moves saves between backends and in and out of archives.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"scoundrel/internal/game"
	"scoundrel/internal/save"
)

// Export writes every save in repo to w as a gzipped tar of <id>.json
// entries. It returns the number of saves written.
func Export(ctx context.Context, repo save.Repo, w io.Writer) (int, error) {
	list, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	n := 0
	for _, s := range list {
		rec, err := repo.Load(ctx, s.ID)
		if err != nil {
			return n, fmt.Errorf("load %s: %w", s.ID, err)
		}
		b, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return n, err
		}
		hdr := &tar.Header{
			Name:     rec.ID + ".json",
			Mode:     0o644,
			Size:     int64(len(b)),
			ModTime:  rec.UpdatedAt,
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return n, err
		}
		if _, err := tw.Write(b); err != nil {
			return n, err
		}
		n++
	}
	if err := tw.Close(); err != nil {
		return n, err
	}
	return n, gz.Close()
}

// ImportResult counts what Import did with each archive entry.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped,omitempty"`
}

// Import reads an archive written by Export into repo. Entries whose name is
// not a save id or whose snapshot does not restore are skipped.
func Import(ctx context.Context, r io.Reader, repo save.Repo) (ImportResult, error) {
	var res ImportResult
	gz, err := gzip.NewReader(r)
	if err != nil {
		return res, err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		id, err := entryID(hdr.Name)
		if err != nil {
			res.Skipped = append(res.Skipped, hdr.Name)
			continue
		}

		var rec save.Record
		if err := json.NewDecoder(io.LimitReader(tr, 4<<20)).Decode(&rec); err != nil || rec.ID != id {
			res.Skipped = append(res.Skipped, hdr.Name)
			continue
		}
		if _, err := game.Restore(rec.Rules, rec.Snapshot); err != nil {
			res.Skipped = append(res.Skipped, hdr.Name)
			continue
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = time.Now().UTC()
		}
		if err := repo.Save(ctx, rec); err != nil {
			return res, fmt.Errorf("save %s: %w", id, err)
		}
		res.Imported++
	}
	return res, nil
}

// Copy moves every save from src to dst, for example from the file backend
// into sqlite.
func Copy(ctx context.Context, src, dst save.Repo) (int, error) {
	list, err := src.List(ctx)
	if err != nil {
		return 0, err
	}
	for i, s := range list {
		rec, err := src.Load(ctx, s.ID)
		if err != nil {
			return i, err
		}
		if err := dst.Save(ctx, rec); err != nil {
			return i, err
		}
	}
	return len(list), nil
}

func entryID(name string) (string, error) {
	name = path.Clean(strings.TrimSpace(name))
	if strings.Contains(name, "/") || !strings.HasSuffix(name, ".json") {
		return "", fmt.Errorf("invalid archive entry path: %s", name)
	}
	id := strings.TrimSuffix(name, ".json")
	if err := save.ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}
