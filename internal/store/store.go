// Package store persists road snapshots keyed by road name and tick.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"traffic-ca/internal/road"
	"traffic-ca/internal/sim"
)

// ErrNotFound is returned when no snapshot exists for a road and tick.
var ErrNotFound = errors.New("snapshot not found")

// Store writes and reads labeled road snapshots with random access by
// (road, tick).
type Store interface {
	Write(ctx context.Context, roadName string, tick int, st *road.State) error
	Read(ctx context.Context, roadName string, tick int) (*road.State, error)
	// Ticks lists the stored ticks of a road in ascending order.
	Ticks(ctx context.Context, roadName string) ([]int, error)
}

// Sink adapts a Store to the simulator's sink contract.
func Sink(s Store) sim.Sink {
	return sim.SinkFunc(func(ctx context.Context, snap sim.Snapshot) error {
		return s.Write(ctx, snap.Road, snap.Tick, snap.State)
	})
}

// ReadSeries loads ticks [0, ticks] of a road, e.g. to render a heatmap.
func ReadSeries(ctx context.Context, s Store, roadName string, ticks int) ([]*road.State, error) {
	series := make([]*road.State, 0, ticks+1)
	for t := 0; t <= ticks; t++ {
		st, err := s.Read(ctx, roadName, t)
		if err != nil {
			return nil, err
		}
		series = append(series, st)
	}
	return series, nil
}

func checkKey(roadName string, tick int) error {
	if roadName == "" {
		return errors.New("road name is required")
	}
	if strings.ContainsAny(roadName, `/\`) {
		return fmt.Errorf("road name %q must not contain path separators", roadName)
	}
	if tick < 0 {
		return fmt.Errorf("tick must not be negative, got %d", tick)
	}
	return nil
}

func notFound(roadName string, tick int) error {
	return fmt.Errorf("road %q tick %d: %w", roadName, tick, ErrNotFound)
}
