package http

import (
	"log/slog"
	"sync"

	"github.com/aretw0/epsilon/internal/logging"
	"github.com/aretw0/epsilon/pkg/domain"
)

// StreamManager fans snapshots out to the active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan domain.State]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan domain.State]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a connection and returns its channel and release function.
func (sm *StreamManager) Subscribe() (<-chan domain.State, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan domain.State, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Count returns the number of connected clients.
func (sm *StreamManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast delivers s to every subscriber without blocking.
func (sm *StreamManager) Broadcast(s domain.State) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- s:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping snapshot", "step", s.Step)
		}
	}
}
