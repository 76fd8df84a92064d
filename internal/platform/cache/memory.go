package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a mutex-guarded map store with per-entry TTL. It backs tests
// and cache-less deployments where no Redis address is configured.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	subs    map[string][]chan []byte
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		subs:    make(map[string][]chan []byte),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	if key == "" {
		return nil, false
	}

	now := m.now()
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(now) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if key == "" {
		return
	}

	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	copied := make([]byte, len(value))
	copy(copied, value)

	m.mu.Lock()
	m.entries[key] = entry{
		value:     copied,
		expiresAt: expiresAt,
	}
	m.mu.Unlock()
}

func (m *Memory) Publish(_ context.Context, channel string, payload []byte) {
	if channel == "" {
		return
	}

	m.mu.RLock()
	subs := m.subs[channel]
	m.mu.RUnlock()

	for _, ch := range subs {
		copied := make([]byte, len(payload))
		copy(copied, payload)
		select {
		case ch <- copied:
		default:
			// Slow subscriber; drop rather than block a sync job.
		}
	}
}

// Subscribe registers an in-process listener for a channel. Used by tests
// and the cache-less dev mode.
func (m *Memory) Subscribe(channel string, buffer int) <-chan []byte {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan []byte, buffer)

	m.mu.Lock()
	m.subs[channel] = append(m.subs[channel], ch)
	m.mu.Unlock()

	return ch
}
