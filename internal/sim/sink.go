package sim

import (
	"context"
	"errors"
	"fmt"

	"traffic-ca/internal/road"
)

// ErrSinkFailure is matched by every error a sink returns through the
// simulator.
var ErrSinkFailure = errors.New("sink failure")

// Snapshot is the state of one road after a given tick. Tick 0 is the
// initial placement.
type Snapshot struct {
	Road  string
	RunID string
	Tick  int
	State *road.State
	Stats road.StepStats
}

// Sink receives every snapshot the simulator produces. Sinks may keep the
// state; the simulator hands each one its own copy.
type Sink interface {
	Emit(ctx context.Context, snap Snapshot) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, snap Snapshot) error

// Emit calls f.
func (f SinkFunc) Emit(ctx context.Context, snap Snapshot) error { return f(ctx, snap) }

// MultiSink forwards each snapshot to every sink and joins their errors.
type MultiSink []Sink

// Emit forwards snap to all sinks, even when an earlier one fails.
func (m MultiSink) Emit(ctx context.Context, snap Snapshot) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SinkError records a sink failure at a given tick.
type SinkError struct {
	Road string
	Tick int
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("road %q tick %d: %v: %v", e.Road, e.Tick, ErrSinkFailure, e.Err)
}

// Unwrap exposes both the cause and ErrSinkFailure to errors.Is.
func (e *SinkError) Unwrap() []error { return []error{ErrSinkFailure, e.Err} }
