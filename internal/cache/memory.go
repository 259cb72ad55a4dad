package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process LRU store with per-entry expiry.
type Memory struct {
	capacity int
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*memEntry
	order   *list.List // front = most recently used
}

type memEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
	elem      *list.Element
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Memory{
		capacity: capacity,
		now:      time.Now,
		entries:  make(map[string]*memEntry),
		order:    list.New(),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		m.remove(e)
		return nil, false, nil
	}
	m.order.MoveToFront(e.elem)
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		e.value = value
		e.expiresAt = m.now().Add(ttl)
		m.order.MoveToFront(e.elem)
		return nil
	}
	for len(m.entries) >= m.capacity {
		m.remove(m.order.Back().Value.(*memEntry))
	}
	e := &memEntry{key: key, value: value, expiresAt: m.now().Add(ttl)}
	e.elem = m.order.PushFront(e)
	m.entries[key] = e
	return nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.entries {
		if strings.HasPrefix(key, prefix) {
			m.remove(e)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// must hold mu
func (m *Memory) remove(e *memEntry) {
	m.order.Remove(e.elem)
	delete(m.entries, e.key)
}
