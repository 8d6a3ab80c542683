package canopy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/canopy/internal/runtime"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/google/uuid"
)

// Finder is the high-level entry point for the canopy library.
// It wraps the navigator with the harness concerns of a run: seeding, report
// persistence and exclusive access to the provider session.
//
// A Finder drives a single provider, so runs on the same Finder are serialized.
type Finder struct {
	provider ports.MenuProvider
	limits   domain.Limits
	seed     *uint64
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	store   ports.ReportStore
	locker  ports.DistributedLocker
	session string
	lockTTL time.Duration

	newID func() string
	now   func() time.Time

	mu sync.Mutex
}

// Option defines a functional option for configuring the Finder.
type Option func(*Finder)

// WithLimits overrides the search limits. Zero fields keep their defaults.
func WithLimits(limits domain.Limits) Option {
	return func(f *Finder) {
		f.limits = limits.WithDefaults()
	}
}

// WithSeed makes every run of this Finder reproducible.
func WithSeed(seed uint64) Option {
	return func(f *Finder) {
		f.seed = &seed
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(f *Finder) {
		f.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		f.logger = logger
	}
}

// WithReportStore saves a report after every run.
func WithReportStore(store ports.ReportStore) Option {
	return func(f *Finder) {
		f.store = store
	}
}

// WithSessionLock holds a distributed lock on session for the duration of
// each run, so that two processes never drive the same provider session.
func WithSessionLock(locker ports.DistributedLocker, session string, ttl time.Duration) Option {
	return func(f *Finder) {
		f.locker = locker
		f.session = session
		f.lockTTL = ttl
	}
}

// WithIDGenerator overrides the report ID generator (default: UUIDv4).
func WithIDGenerator(gen func() string) Option {
	return func(f *Finder) {
		if gen != nil {
			f.newID = gen
		}
	}
}

// New creates a Finder over provider.
func New(provider ports.MenuProvider, opts ...Option) (*Finder, error) {
	if provider == nil {
		return nil, errors.New("menu provider is required")
	}

	f := &Finder{
		provider: provider,
		limits:   domain.DefaultLimits(),
		lockTTL:  5 * time.Minute,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if f.session != "" {
		f.logger = f.logger.With("session", f.session)
	}
	if err := f.limits.Validate(); err != nil {
		return nil, err
	}
	if f.locker != nil && f.session == "" {
		return nil, errors.New("session lock requires a session key")
	}
	return f, nil
}

// Limits returns the effective limits.
func (f *Finder) Limits() domain.Limits {
	return f.limits
}

// Search runs the navigator from root and returns its outcome.
// No report is produced.
func (f *Finder) Search(ctx context.Context, root string) (domain.Outcome, error) {
	unlock, err := f.acquire(ctx)
	if err != nil {
		return domain.Outcome{}, err
	}
	defer unlock()

	return f.search(ctx, root, f.logger)
}

// Run searches from root and records the result as a report.
//
// The returned error is the run's own error (provider fault, navigation
// error, cancellation). A failure to save the report is joined to it. The
// report is returned in every case except when the session lock cannot be
// acquired.
func (f *Finder) Run(ctx context.Context, root string) (*domain.Report, error) {
	unlock, err := f.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	id := f.newID()
	logger := f.logger.With("run_id", id)

	started := f.now()
	outcome, runErr := f.search(ctx, root, logger)
	report := domain.NewReport(id, root, outcome, runErr, started, f.now())
	report.Session = f.session
	report.Limits = f.limits

	if runErr != nil {
		logger.Error("run failed", "root", root, "error", runErr)
	}

	if f.store != nil {
		// The run context may already be canceled; the report must still land.
		saveCtx := context.WithoutCancel(ctx)
		if err := f.store.Save(saveCtx, report); err != nil {
			logger.Error("failed to save report", "error", err)
			return report, errors.Join(runErr, fmt.Errorf("failed to save report %s: %w", id, err))
		}
	}
	return report, runErr
}

// Categories resets the provider to the chooser and lists the root categories.
func (f *Finder) Categories(ctx context.Context) ([]string, error) {
	unlock, err := f.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	chooser, err := f.provider.ResetToCategoryRoot(ctx)
	if err != nil {
		return nil, err
	}
	refs, err := f.provider.ListChildren(ctx, chooser)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return names, nil
}

// Report loads a stored report by ID.
func (f *Finder) Report(ctx context.Context, id string) (*domain.Report, error) {
	if f.store == nil {
		return nil, domain.ErrReportNotFound
	}
	return f.store.Load(ctx, id)
}

// Reports lists stored report IDs, most recent first.
func (f *Finder) Reports(ctx context.Context) ([]string, error) {
	if f.store == nil {
		return []string{}, nil
	}
	return f.store.List(ctx)
}

// search brings the provider back to the chooser, where the navigator
// expects it, and runs one search.
func (f *Finder) search(ctx context.Context, root string, logger *slog.Logger) (domain.Outcome, error) {
	if _, err := f.provider.ResetToCategoryRoot(ctx); err != nil {
		if !errors.Is(err, domain.ErrProviderUnavailable) && !errors.Is(err, domain.ErrNavigation) {
			err = domain.Unavailable("reset_to_category_root", err)
		}
		return domain.Outcome{}, err
	}

	opts := []runtime.NavigatorOption{
		runtime.WithLimits(f.limits),
		runtime.WithLifecycleHooks(f.hooks),
		runtime.WithLogger(logger),
		runtime.WithClock(f.now),
	}
	if f.seed != nil {
		opts = append(opts, runtime.WithSeed(*f.seed))
	}
	return runtime.NewNavigator(f.provider, opts...).Run(ctx, root)
}

// acquire serializes access to the provider, locally and, when configured,
// across processes.
func (f *Finder) acquire(ctx context.Context) (func(), error) {
	f.mu.Lock()
	if f.locker == nil {
		return f.mu.Unlock, nil
	}

	release, err := f.locker.Lock(ctx, f.session, f.lockTTL)
	if err != nil {
		f.mu.Unlock()
		return nil, fmt.Errorf("failed to lock session %s: %w", f.session, err)
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			f.logger.Warn("failed to release session lock", "error", err)
		}
		f.mu.Unlock()
	}, nil
}
