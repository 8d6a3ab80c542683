package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
)

// StreamManager fans search events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new subscriber. The returned function unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe() (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 32)
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscribers.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends msg to every subscriber. Slow subscribers lose messages
// rather than stall the search.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message")
		}
	}
}

func (sm *StreamManager) publish(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		sm.logger.Error("SSE: event encode failed", "error", err)
		return
	}
	sm.Broadcast(string(data))
}

// Hooks returns lifecycle hooks that broadcast every event.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDescend:        func(ctx context.Context, e *domain.MoveEvent) { sm.publish(e) },
		OnBacktrack:      func(ctx context.Context, e *domain.MoveEvent) { sm.publish(e) },
		OnDeadEnd:        func(ctx context.Context, e *domain.DeadEndEvent) { sm.publish(e) },
		OnCategorySwitch: func(ctx context.Context, e *domain.CategoryEvent) { sm.publish(e) },
		OnFound:          func(ctx context.Context, e *domain.OutcomeEvent) { sm.publish(e) },
		OnExhausted:      func(ctx context.Context, e *domain.OutcomeEvent) { sm.publish(e) },
	}
}
