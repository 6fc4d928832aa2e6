package cache

import (
	"sync"
	"time"
)

// MemCache is a small in-memory TTL cache. Items expire lazily on Get and
// eagerly when NewMemCache is given a positive cleanupInterval.
type MemCache[V any] struct {
	items sync.Map
	stop  chan struct{}
	once  sync.Once
}

type item[V any] struct {
	value      V
	expiration int64 // unix nano; 0 means no expiration
}

func NewMemCache[V any](cleanupInterval time.Duration) *MemCache[V] {
	m := &MemCache[V]{
		stop: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go func() {
			ticker := time.NewTicker(cleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					m.cleanup()
				case <-m.stop:
					return
				}
			}
		}()
	}
	return m
}

func (m *MemCache[V]) Set(key string, value V, ttl time.Duration) {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}
	m.items.Store(key, item[V]{
		value:      value,
		expiration: exp,
	})
}

func (m *MemCache[V]) Get(key string) (V, bool) {
	var zero V
	v, ok := m.items.Load(key)
	if !ok {
		return zero, false
	}
	it := v.(item[V])
	if it.expired(time.Now().UnixNano()) {
		m.items.Delete(key)
		return zero, false
	}
	return it.value, true
}

func (m *MemCache[V]) Delete(key string) {
	m.items.Delete(key)
}

func (m *MemCache[V]) Close() {
	m.once.Do(func() {
		close(m.stop)
	})
}

func (m *MemCache[V]) cleanup() {
	now := time.Now().UnixNano()
	m.items.Range(func(key, value any) bool {
		if value.(item[V]).expired(now) {
			m.items.Delete(key)
		}
		return true
	})
}

func (it item[V]) expired(now int64) bool {
	return it.expiration > 0 && now > it.expiration
}
