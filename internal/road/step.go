package road

import "traffic-ca/pkg/core"

// StepStats summarizes one tick.
type StepStats struct {
	Moving int // cars with a positive speed after the acceleration pass
	Slowed int // cars that took the random extra brake
	Exited int // cars that left an open road
	Flow   int // cars that crossed the end of the road
}

// Engine applies the update rules to states of a single road. It owns a
// scratch buffer so that repeated ticks do not allocate; an Engine must not be
// shared between goroutines.
type Engine struct {
	cfg  Config
	rng  core.Rand
	next []int
}

// NewEngine returns an engine for roads built from cfg. rng supplies the
// slowdown draws.
func NewEngine(cfg Config, rng core.Rand) *Engine {
	return &Engine{cfg: cfg, rng: rng, next: make([]int, cfg.Length)}
}

// Config returns the road configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Step advances st by one tick: the acceleration pass followed by the
// movement pass. States of a different length are left untouched.
func (e *Engine) Step(st *State) StepStats {
	if st == nil || st.Len() != e.cfg.Length {
		return StepStats{}
	}
	var stats StepStats
	stats.Moving, stats.Slowed = e.Accelerate(st)
	stats.Exited, stats.Flow = e.Move(st)
	return stats
}

// Step is a one-off convenience wrapper around Engine.Step.
func Step(cfg Config, st *State, rng core.Rand) StepStats {
	return NewEngine(cfg, rng).Step(st)
}

// Gap returns the number of consecutive empty cells ahead of cell i, scanning
// at most SpeedLimit-1 cells.
func (e *Engine) Gap(st *State, i int) int {
	return gap(e.cfg, st.cells, i)
}

func gap(cfg Config, cells []int, i int) int {
	n := len(cells)
	horizon := cfg.SpeedLimit - 1
	for k := 0; k < horizon; k++ {
		j := i + k + 1
		if j >= n {
			if !cfg.ClosedLoop {
				if cfg.Boundary == BoundaryExit {
					continue
				}
				return k
			}
			j %= n
		}
		if cells[j] != Empty {
			return k
		}
	}
	return horizon
}

// Accelerate rewrites every car's speed from the current positions, which it
// does not modify, so the order cars are visited in does not matter.
func (e *Engine) Accelerate(st *State) (moving, slowed int) {
	cells := st.cells
	for i, speed := range cells {
		if speed == Empty {
			continue
		}
		g := gap(e.cfg, cells, i)
		if speed < e.cfg.SpeedLimit && speed < g {
			speed++
		}
		if speed > g {
			speed = g
		}
		if speed > 0 {
			if e.rng.Float64() < e.cfg.SlowProbability {
				speed--
				slowed++
			}
		}
		if speed > 0 {
			moving++
		}
		cells[i] = speed
	}
	return moving, slowed
}

// Move shifts every car forward by its speed. Destinations are computed from
// the pre-move snapshot into the scratch buffer and committed at once, so a
// car wrapping past the end is never moved twice.
//
// On an open road a destination past the last cell removes the car. With a
// wall boundary this only happens when Move runs on speeds that did not come
// from Accelerate.
func (e *Engine) Move(st *State) (exited, flow int) {
	cells := st.cells
	n := len(cells)
	if cap(e.next) < n {
		e.next = make([]int, n)
	}
	next := e.next[:n]
	for i := range next {
		next[i] = Empty
	}
	for i, speed := range cells {
		if speed == Empty {
			continue
		}
		dest := i + speed
		if dest >= n {
			flow++
			if !e.cfg.ClosedLoop {
				exited++
				continue
			}
			dest %= n
		}
		next[dest] = speed
	}
	copy(cells, next)
	return exited, flow
}
