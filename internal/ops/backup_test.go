package ops

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoundrel/internal/game"
	"scoundrel/internal/save"
)

func savedRun(t *testing.T, repo save.Repo, seed int64) string {
	t.Helper()
	rules := game.DefaultRules()
	e, err := game.New(rules, game.WithSeed(seed))
	require.NoError(t, err)
	require.NoError(t, e.Start())
	e.Settle()
	snap, err := e.Snapshot()
	require.NoError(t, err)

	now := time.Unix(1_700_000_000+seed, 0).UTC()
	rec := save.Record{
		ID:        uuid.NewString(),
		Seed:      seed,
		Preset:    "default",
		Rules:     rules,
		Snapshot:  snap,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Save(context.Background(), rec))
	return rec.ID
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := save.NewMemoryRepo()
	ids := []string{savedRun(t, src, 1), savedRun(t, src, 2), savedRun(t, src, 3)}

	var buf bytes.Buffer
	n, err := Export(ctx, src, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	dst, err := save.NewFileRepo(t.TempDir())
	require.NoError(t, err)
	res, err := Import(ctx, &buf, dst)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Empty(t, res.Skipped)

	for _, id := range ids {
		want, err := src.Load(ctx, id)
		require.NoError(t, err)
		got, err := dst.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want.Snapshot, got.Snapshot)
		assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
	}
}

func TestImport_SkipsBadEntries(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	write := func(name, body string) {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(body))}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	id := uuid.NewString()
	write("../escape.json", "{}")
	write("nested/"+id+".json", "{}")
	write(id+".json", `{"id":"`+id+`","snapshot":{"version":99}}`)
	write(uuid.NewString()+".json", "not json")
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	dst := save.NewMemoryRepo()
	res, err := Import(context.Background(), &buf, dst)
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	assert.Len(t, res.Skipped, 4)

	list, err := dst.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	src := save.NewMemoryRepo()
	savedRun(t, src, 4)
	savedRun(t, src, 5)

	db, err := save.Open(save.DefaultDBConfig(t.TempDir() + "/copy.db"))
	require.NoError(t, err)
	defer db.Close()
	dst := save.NewSQLiteRepo(db)

	n, err := Copy(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	list, err := dst.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
