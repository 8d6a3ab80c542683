package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Report
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Report),
	}
}

// Save persists the report in memory.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	// Copy to ensure isolation, similar to serialization
	copied := copyReport(report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[report.ID] = copied
	return nil
}

// Load retrieves the report from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}

	// Copy on read so callers can't mutate store state through the pointer
	return copyReport(report), nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored report IDs, most recent first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]*domain.Report, 0, len(s.data))
	for _, r := range s.data {
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

func copyReport(src *domain.Report) *domain.Report {
	ret := *src
	ret.Path = src.Path.Clone()
	if src.Item != nil {
		item := *src.Item
		ret.Item = &item
	}
	if src.DeadEnds != nil {
		ret.DeadEnds = make([]domain.Path, len(src.DeadEnds))
		for i, p := range src.DeadEnds {
			ret.DeadEnds[i] = p.Clone()
		}
	}
	return &ret
}
