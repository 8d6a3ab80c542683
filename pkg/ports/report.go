package ports

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// ReportStore persists the reports of finished runs.
// The navigator never reads it back; it serves the harness and the API adapters.
type ReportStore interface {
	// Save persists the report under report.ID.
	Save(ctx context.Context, report *domain.Report) error

	// Load retrieves a report by ID.
	// Returns domain.ErrReportNotFound if the report does not exist.
	Load(ctx context.Context, id string) (*domain.Report, error)

	// List returns the IDs of stored reports, most recent first.
	List(ctx context.Context) ([]string, error)

	// Delete removes a report.
	Delete(ctx context.Context, id string) error
}
