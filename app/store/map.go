package store

import "sync"

// Map is a map guarded by a RWMutex.
type Map[K comparable, V any] struct {
	data map[K]V
	mu   sync.RWMutex
}

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		data: make(map[K]V),
	}
}

func (m *Map[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.data[key]
	return value, exists
}

// Update applies fn to the current value under the write lock. exists is
// false when key is not present; the returned value is always stored.
func (m *Map[K, V]) Update(key K, fn func(value V, exists bool) V) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, exists := m.data[key]
	updated := fn(current, exists)
	m.data[key] = updated
	return updated
}

func (m *Map[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Map[K, V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make([]V, 0, len(m.data))
	for _, value := range m.data {
		values = append(values, value)
	}
	return values
}
