package records

import (
	"context"
	"iter"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

var _ Store = (*Memory)(nil)

// Memory is an in-memory Store. Records are stored encoded so callers never
// share state with the store.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, id string) (*Interview, error) {
	m.mu.RLock()
	v, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var rec Interview
	if err := msgpack.Unmarshal(v, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *Memory) Put(_ context.Context, rec *Interview) error {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[rec.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return ErrNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *Memory) List(_ context.Context) iter.Seq2[*Interview, error] {
	m.mu.RLock()
	ids := make([]string, 0, len(m.data))
	vals := make(map[string][]byte, len(m.data))
	for id, v := range m.data {
		ids = append(ids, id)
		vals[id] = v
	}
	m.mu.RUnlock()
	sort.Strings(ids)

	return func(yield func(*Interview, error) bool) {
		for _, id := range ids {
			var rec Interview
			if err := msgpack.Unmarshal(vals[id], &rec); err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if !yield(&rec, nil) {
				return
			}
		}
	}
}

func (m *Memory) Close() error { return nil }
