// Package connectivity tracks whether the authoritative remote store is reachable.
// The Monitor only publishes a boolean; it never touches the queue or conflicts.
package connectivity

import (
	"log/slog"
	"slices"
	"sync"
)

// SourceDefault is the source updated by Set.
const SourceDefault = "default"

// Monitor holds the current connectivity state and fans out changes to subscribers.
// Several sources (probe, offline marker, manual) may report independently;
// the monitor is online only while every source reports online.
type Monitor struct {
	subscribers map[uint64]func(online bool)
	sources     map[string]bool
	logger      *slog.Logger
	mu          sync.Mutex
	nextID      uint64
	online      bool
}

// NewMonitor creates a monitor with the given initial state
func NewMonitor(initial bool, logger *slog.Logger) *Monitor {
	return &Monitor{
		subscribers: make(map[uint64]func(online bool)),
		sources:     map[string]bool{SourceDefault: initial},
		logger:      logger,
		online:      initial,
	}
}

// Online returns the current state
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records a new state for the default source.
func (m *Monitor) Set(online bool) {
	m.Report(SourceDefault, online)
}

// Report records the state seen by one source. Subscribers are notified only
// when the combined state changes, outside the monitor lock, in subscription order.
func (m *Monitor) Report(source string, online bool) {
	m.mu.Lock()
	m.sources[source] = online

	combined := true
	for _, up := range m.sources {
		combined = combined && up
	}

	if combined == m.online {
		m.mu.Unlock()
		return
	}
	m.online = combined
	subs := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("Connectivity changed", "online", combined, "source", source)

	for _, fn := range subs {
		fn(combined)
	}
}

// Subscribe registers fn for state changes and returns its unsubscribe function.
// Unsubscribe is idempotent.
func (m *Monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers, id)
			m.mu.Unlock()
		})
	}
}

// Close drops every subscriber
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.subscribers)
}

func (m *Monitor) snapshotLocked() []func(bool) {
	ids := make([]uint64, 0, len(m.subscribers))
	for id := range m.subscribers {
		ids = append(ids, id)
	}
	// id монотонны - сортировка даёт порядок подписки
	slices.Sort(ids)

	subs := make([]func(bool), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, m.subscribers[id])
	}
	return subs
}
