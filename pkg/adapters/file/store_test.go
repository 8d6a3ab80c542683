package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements ReportStore
var _ ports.ReportStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunReportStoreContract(t, file.NewStore(t.TempDir()))
}

func TestFileStore_ListOrderSkipsGarbage(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		finished := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Save(ctx, domain.NewReport(id, "Food", domain.Exhausted(5), nil, base, finished)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestFileStore_Overwrite(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Save(ctx, domain.NewReport("r1", "Food", domain.Exhausted(5), nil, now, now)))
	require.NoError(t, store.Save(ctx, domain.NewReport("r1", "Toys", domain.Exhausted(2), nil, now, now)))

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Toys", loaded.Root)
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "../escape", `dir\file`} {
		_, err := store.Load(ctx, id)
		assert.Error(t, err, id)
		assert.NotErrorIs(t, err, domain.ErrReportNotFound, id)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "nope"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
