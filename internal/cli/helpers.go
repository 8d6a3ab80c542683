package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/config"
	"github.com/aretw0/canopy/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger from the log settings.
// A non-empty level overrides the configured one (the --log-level flag).
func NewLogger(w io.Writer, cfg config.LogConfig, level string) (*slog.Logger, error) {
	if level == "" {
		level = cfg.Level
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	format := logging.FormatText
	if cfg.Format == "json" {
		format = logging.FormatJSON
	}
	return logging.NewWithWriter(w, lvl, format), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDescend: func(ctx context.Context, e *domain.MoveEvent) {
			logger.Debug("Descend", "to", e.To.String(), "attempts", e.Budget.TotalDescentAttempts)
		},
		OnBacktrack: func(ctx context.Context, e *domain.MoveEvent) {
			logger.Debug("Backtrack", "from", e.From.String(), "to", e.To.String(), "levels", e.Levels)
		},
		OnDeadEnd: func(ctx context.Context, e *domain.DeadEndEvent) {
			logger.Debug("Dead End", "path", e.Path.String(), "reason", e.Reason)
		},
		OnCategorySwitch: func(ctx context.Context, e *domain.CategoryEvent) {
			logger.Debug("Category Switch", "from", e.From, "to", e.To, "reused", e.Reused)
		},
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// handleExecutionError turns interruptions into a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
