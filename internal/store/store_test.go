package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-ca/internal/road"
	"traffic-ca/internal/sim"
	"traffic-ca/pkg/core"
)

func sampleState(t *testing.T, cells ...int) *road.State {
	t.Helper()
	st, err := road.StateFromCells(cells)
	require.NoError(t, err)
	return st
}

// exerciseStore runs the contract every Store implementation must satisfy.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	a := sampleState(t, 0, -1, 2, -1)
	b := sampleState(t, -1, 1, -1, 3)

	require.NoError(t, s.Write(ctx, "Road1", 0, a))
	require.NoError(t, s.Write(ctx, "Road1", 1, b))
	require.NoError(t, s.Write(ctx, "Road2", 0, b))

	got, err := s.Read(ctx, "Road1", 1)
	require.NoError(t, err)
	assert.True(t, got.Equal(b))

	got, err = s.Read(ctx, "Road2", 0)
	require.NoError(t, err)
	assert.True(t, got.Equal(b))

	_, err = s.Read(ctx, "Road1", 7)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Read(ctx, "Road3", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	// Overwrite resolves to the latest write.
	require.NoError(t, s.Write(ctx, "Road1", 0, b))
	got, err = s.Read(ctx, "Road1", 0)
	require.NoError(t, err)
	assert.True(t, got.Equal(b))

	ticks, err := s.Ticks(ctx, "Road1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, ticks)

	assert.Error(t, s.Write(ctx, "", 0, a))
	assert.Error(t, s.Write(ctx, "../etc", 0, a))
	assert.Error(t, s.Write(ctx, "Road1", -1, a))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	st := sampleState(t, 1, -1)
	require.NoError(t, m.Write(ctx, "r", 0, st))
	st.Clear(0)
	got, err := m.Read(ctx, "r", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CarCount())
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(filepath.Join(dir, "snaps"))
	require.NoError(t, err)
	exerciseStore(t, f)

	_, err = os.Stat(f.Path("Road1"))
	assert.NoError(t, err)

	require.NoError(t, f.Reset("Road1"))
	ticks, err := f.Ticks(context.Background(), "Road1")
	require.NoError(t, err)
	assert.Empty(t, ticks)
	assert.NoError(t, f.Reset("never-written"))
}

func TestFileStoreRejectsCorruptLines(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.Path("bad"), []byte("{not json}\n"), 0o644))
	_, err = f.Read(context.Background(), "bad", 0)
	assert.Error(t, err)
}

func TestSinkRoundTripsSimulation(t *testing.T) {
	ctx := context.Background()
	cfg, err := road.NewConfig("Road1", 40, 5, 0.25, 0.2, true)
	require.NoError(t, err)
	rng := core.NewRNG(12)
	initial, err := road.Generate(cfg, rng, 0)
	require.NoError(t, err)
	start := initial.Clone()

	mem := NewMemory()
	s, err := sim.New(cfg, rng, sim.WithSink(Sink(mem)))
	require.NoError(t, err)
	final, err := s.Run(ctx, initial, 15)
	require.NoError(t, err)

	series, err := ReadSeries(ctx, mem, "Road1", 15)
	require.NoError(t, err)
	require.Len(t, series, 16)
	assert.True(t, series[0].Equal(start))
	assert.True(t, series[15].Equal(final))

	_, err = ReadSeries(ctx, mem, "Road1", 16)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoNilCollection(t *testing.T) {
	m := &Mongo{}
	ctx := context.Background()
	assert.Error(t, m.Write(ctx, "r", 0, sampleState(t, -1)))
	_, err := m.Read(ctx, "r", 0)
	assert.Error(t, err)
	_, err = m.Ticks(ctx, "r")
	assert.Error(t, err)
	assert.Error(t, m.EnsureIndexes(ctx))
	assert.Error(t, m.DeleteRoad(ctx, "r"))
}

// Integration test (requires running MongoDB)
func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping integration test")
	}
	ctx := context.Background()
	client, err := Connect(ctx, uri)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}
	defer client.Disconnect(ctx)

	m := NewMongo(client, "traffic_ca_test")
	require.NoError(t, m.Collection.Drop(ctx))
	require.NoError(t, m.EnsureIndexes(ctx))
	exerciseStore(t, m)
	require.NoError(t, m.DeleteRoad(ctx, "Road1"))
	ticks, err := m.Ticks(ctx, "Road1")
	require.NoError(t, err)
	assert.Empty(t, ticks)
}
