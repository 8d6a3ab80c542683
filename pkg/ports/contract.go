package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReportStoreContract runs a suite of tests to verify that a ReportStore implementation
// adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	reportID := "contract-test-report-" + time.Now().Format("20060102150405")

	newReport := func(id string) *domain.Report {
		started := time.Now().UTC().Truncate(time.Second)
		return domain.NewReport(id, "Food",
			domain.Outcome{
				Kind:  domain.OutcomeFound,
				Path:  domain.Path{"Food", "Snacks"},
				Item:  &domain.ItemRef{Name: "Chips", Ordinal: 2},
				Stats: domain.Stats{DescentAttempts: 1, CategoriesTried: 1, Descents: 2},
			}, nil, started, started.Add(time.Second))
	}

	t.Run("Save and Load", func(t *testing.T) {
		report := newReport(reportID)

		err := store.Save(ctx, report)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, reportID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.Root, loaded.Root)
		assert.Equal(t, domain.OutcomeFound, loaded.Kind)
		assert.Equal(t, domain.Path{"Food", "Snacks"}, loaded.Path)
		require.NotNil(t, loaded.Item)
		assert.Equal(t, "Chips", loaded.Item.Name)
		assert.Equal(t, 2, loaded.Stats.Descents)
		assert.True(t, report.StartedAt.Equal(loaded.StartedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+reportID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, newReport(reportID))
		require.NoError(t, err)

		err = store.Delete(ctx, reportID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, reportID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound, "Load after Delete should return ErrReportNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := reportID + "-1"
		id2 := reportID + "-2"
		_ = store.Save(ctx, newReport(id1))
		_ = store.Save(ctx, newReport(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
