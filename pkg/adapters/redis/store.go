package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.ReportStore using Redis.
// Reports are stored as JSON strings and indexed in a ZSET scored by
// completion time, which keeps List ordered without a key scan.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithTTL sets the expiration for reports.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for reports.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock overrides the time source used to prune the index.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "canopy:report:",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + indexName
}

// indexName is the key suffix of the sorted index. It shares the report
// namespace, so it is not a valid report ID.
const indexName = "index"

// Save persists the report to Redis.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	if report == nil || report.ID == "" {
		return errors.New("report id is required")
	}
	if report.ID == indexName {
		return fmt.Errorf("report id %q is reserved", report.ID)
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	finished := report.FinishedAt
	if finished.IsZero() {
		finished = s.now()
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(report.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(finished.UnixMilli()),
		Member: report.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save report to redis: %w", err)
	}
	return nil
}

// Load retrieves a report from Redis.
func (s *Store) Load(ctx context.Context, id string) (*domain.Report, error) {
	if id == indexName {
		return nil, domain.ErrReportNotFound
	}
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report from redis: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(val, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// Delete removes the report and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == indexName {
		return nil
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns report IDs, most recent first.
// Index entries older than the TTL are pruned lazily.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if s.ttl > 0 {
		cutoff := s.now().Add(-s.ttl).UnixMilli()
		err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+strconv.FormatInt(cutoff, 10)).Err()
		if err != nil {
			return nil, fmt.Errorf("failed to prune expired reports: %w", err)
		}
	}

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return ids, nil
}

// Client returns the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
