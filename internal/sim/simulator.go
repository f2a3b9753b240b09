// Package sim drives roads through a fixed number of ticks and hands every
// resulting state to the configured sinks.
package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"traffic-ca/internal/road"
	"traffic-ca/pkg/core"
)

// Simulator runs a single road.
type Simulator struct {
	cfg    road.Config
	engine *road.Engine
	sink   Sink
	logger *logrus.Entry
	runID  string

	continueOnSinkError bool
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSink sets the sink receiving snapshots. Several sinks can be combined
// with MultiSink.
func WithSink(s Sink) Option {
	return func(sim *Simulator) { sim.sink = s }
}

// WithLogger sets the logger used for progress and sink failures.
func WithLogger(l *logrus.Entry) Option {
	return func(sim *Simulator) {
		if l != nil {
			sim.logger = l
		}
	}
}

// WithContinueOnSinkError keeps ticking after a sink failure. The failures
// are joined and returned once the run completes.
func WithContinueOnSinkError(v bool) Option {
	return func(sim *Simulator) { sim.continueOnSinkError = v }
}

// WithRunID overrides the generated run identifier attached to snapshots.
func WithRunID(id string) Option {
	return func(sim *Simulator) {
		if id != "" {
			sim.runID = id
		}
	}
}

// New returns a simulator for cfg drawing its slowdown decisions from rng.
func New(cfg road.Config, rng core.Rand, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		cfg:    cfg,
		engine: road.NewEngine(cfg, rng),
		runID:  uuid.NewString(),
		logger: logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields(logrus.Fields{"road": cfg.Name, "run_id": s.runID})
	return s, nil
}

// RunID identifies this simulator's run in emitted snapshots.
func (s *Simulator) RunID() string { return s.runID }

// Run advances initial by ticks steps in place, emitting the initial state and
// the state after every tick. It returns the final state. A sink failure
// aborts the run unless WithContinueOnSinkError is set; the in-memory state is
// never rolled back.
func (s *Simulator) Run(ctx context.Context, initial *road.State, ticks int) (*road.State, error) {
	if initial == nil || initial.Len() != s.cfg.Length {
		return nil, fmt.Errorf("%w: state does not match road %q of length %d", road.ErrInvalidConfig, s.cfg.Name, s.cfg.Length)
	}
	if ticks < 0 {
		return nil, fmt.Errorf("%w: negative tick count %d", road.ErrInvalidConfig, ticks)
	}

	st := initial
	var sinkErrs []error
	emit := func(tick int, stats road.StepStats) error {
		if s.sink == nil {
			return nil
		}
		err := s.sink.Emit(ctx, Snapshot{Road: s.cfg.Name, RunID: s.runID, Tick: tick, State: st.Clone(), Stats: stats})
		if err == nil {
			return nil
		}
		serr := &SinkError{Road: s.cfg.Name, Tick: tick, Err: err}
		s.logger.WithError(err).WithField("tick", tick).Warn("Sink failed")
		if !s.continueOnSinkError {
			return serr
		}
		sinkErrs = append(sinkErrs, serr)
		return nil
	}

	s.logger.WithFields(logrus.Fields{"ticks": ticks, "cars": st.CarCount()}).Debug("Run started")
	if err := emit(0, road.StepStats{}); err != nil {
		return st, err
	}
	for t := 1; t <= ticks; t++ {
		if err := ctx.Err(); err != nil {
			return st, fmt.Errorf("road %q stopped before tick %d: %w", s.cfg.Name, t, err)
		}
		stats := s.engine.Step(st)
		if err := emit(t, stats); err != nil {
			return st, err
		}
	}
	s.logger.WithFields(logrus.Fields{
		"cars":       st.CarCount(),
		"mean_speed": road.MeanSpeed(st),
	}).Debug("Run finished")
	return st, errors.Join(sinkErrs...)
}
