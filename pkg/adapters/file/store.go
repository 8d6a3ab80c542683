package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
)

// Store implements ports.ReportStore using the local filesystem.
// It stores reports as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// NewStore creates a new Store with the given base path.
// If basePath is empty, it defaults to ".canopy/reports".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".canopy", "reports")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id string) (string, error) {
	if id == "" {
		return "", errors.New("report id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid report id %q", id)
	}
	return filepath.Join(s.BasePath, id+".json"), nil
}

// Save persists the report to a JSON file atomically.
// It writes to a temporary file first, syncs it, and then renames it over the destination.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	if report == nil {
		return errors.New("report cannot be nil")
	}
	destPath, err := s.path(report.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	// Same directory so the rename stays on one filesystem
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+report.ID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing report for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to report: %w", err)
	}
	return nil
}

// Load retrieves a report from its JSON file.
func (s *Store) Load(ctx context.Context, id string) (*domain.Report, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// Delete removes the report file.
func (s *Store) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete report file: %w", err)
	}
	return nil
}

// List returns stored report IDs, most recent first.
// Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	var reports []*domain.Report
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		r, err := s.Load(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		reports = append(reports, r)
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].FinishedAt.Equal(reports[j].FinishedAt) {
			return reports[i].ID < reports[j].ID
		}
		return reports[i].FinishedAt.After(reports[j].FinishedAt)
	})

	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	return ids, nil
}
