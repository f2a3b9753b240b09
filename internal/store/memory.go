package store

import (
	"context"
	"sort"
	"sync"

	"traffic-ca/internal/road"
)

type key struct {
	road string
	tick int
}

// Memory keeps snapshots in process memory. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	snaps map[key]*road.State
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snaps: make(map[key]*road.State)}
}

// Write stores a copy of st.
func (m *Memory) Write(_ context.Context, roadName string, tick int, st *road.State) error {
	if err := checkKey(roadName, tick); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key{roadName, tick}] = st.Clone()
	return nil
}

// Read returns a copy of the stored snapshot.
func (m *Memory) Read(_ context.Context, roadName string, tick int) (*road.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.snaps[key{roadName, tick}]
	if !ok {
		return nil, notFound(roadName, tick)
	}
	return st.Clone(), nil
}

// Ticks lists the stored ticks of a road.
func (m *Memory) Ticks(_ context.Context, roadName string) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ticks []int
	for k := range m.snaps {
		if k.road == roadName {
			ticks = append(ticks, k.tick)
		}
	}
	sort.Ints(ticks)
	return ticks, nil
}
