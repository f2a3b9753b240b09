package road

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-ca/pkg/core"
)

// scriptedRand replays fixed draws so tests control every random decision.
type scriptedRand struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.999
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *scriptedRand) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)] % n
	s.ii++
	return v
}

func stateOf(t *testing.T, cells ...int) *State {
	t.Helper()
	st, err := StateFromCells(cells)
	require.NoError(t, err)
	return st
}

func ring(t *testing.T, length, limit int, slow float64) Config {
	t.Helper()
	cfg, err := NewConfig("test", length, limit, 0, slow, true)
	require.NoError(t, err)
	return cfg
}

func TestNewConfigRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name    string
		length  int
		limit   int
		density float64
		slow    float64
	}{
		{"zero length", 0, 3, 0.2, 0.1},
		{"negative length", -4, 3, 0.2, 0.1},
		{"zero limit", 10, 0, 0.2, 0.1},
		{"density above one", 10, 3, 1.2, 0.1},
		{"negative density", 10, 3, -0.1, 0.1},
		{"nan density", 10, 3, math.NaN(), 0.1},
		{"slow above one", 10, 3, 0.2, 1.5},
		{"negative slow", 10, 3, 0.2, -0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig("r", tc.length, tc.limit, tc.density, tc.slow, true)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	cfg, err := NewConfig("edge", 1, 1, 1, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.TargetCars())
}

func TestFromMapOverridesAndIgnoresGarbage(t *testing.T) {
	cfg := FromMap(map[string]string{
		"preset":   "jam",
		"length":   "50",
		"limit":    "x",
		"density":  "2",
		"slow":     "0.4",
		"closed":   "false",
		"boundary": "exit",
	})
	assert.Equal(t, "jam", cfg.Name)
	assert.Equal(t, 50, cfg.Length)
	assert.Equal(t, 6, cfg.SpeedLimit)
	assert.Equal(t, 0.5, cfg.Density)
	assert.Equal(t, 0.4, cfg.SlowProbability)
	assert.False(t, cfg.ClosedLoop)
	assert.Equal(t, BoundaryExit, cfg.Boundary)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultConfig(), FromMap(nil))
}

func TestPresets(t *testing.T) {
	names := PresetNames()
	assert.Contains(t, names, "Road1")
	assert.Contains(t, names, "Road2")
	for _, name := range names {
		cfg, ok := Preset(name)
		require.True(t, ok)
		assert.Equal(t, name, cfg.Name)
		assert.NoError(t, cfg.Validate(), name)
	}
	_, ok := Preset("nope")
	assert.False(t, ok)
}

func TestParseBoundary(t *testing.T) {
	b, err := ParseBoundary("Exit")
	require.NoError(t, err)
	assert.Equal(t, BoundaryExit, b)
	_, err = ParseBoundary("teleport")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGeneratePlacesTargetCars(t *testing.T) {
	cfg, err := NewConfig("gen", 200, 6, 0.2, 0.25, true)
	require.NoError(t, err)

	st, err := Generate(cfg, core.NewRNG(42), 2)
	require.NoError(t, err)
	assert.Equal(t, 40, st.CarCount())
	_, speeds := st.Positions()
	for _, s := range speeds {
		assert.Equal(t, 2, s)
	}
}

func TestGenerateFloorsTargetCount(t *testing.T) {
	cfg, err := NewConfig("floor", 7, 3, 0.5, 0, true)
	require.NoError(t, err)
	st, err := Generate(cfg, core.NewRNG(1), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, st.CarCount())
}

func TestGenerateFullRoad(t *testing.T) {
	cfg, err := NewConfig("full", 64, 4, 1, 0, true)
	require.NoError(t, err)
	st, err := Generate(cfg, core.NewRNG(3), 0)
	require.NoError(t, err)
	assert.Equal(t, 64, st.CarCount())
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	a, err := Generate(cfg, core.NewRNG(9), 0)
	require.NoError(t, err)
	b, err := Generate(cfg, core.NewRNG(9), 0)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestGenerateRejectsBadStartSpeed(t *testing.T) {
	cfg := DefaultConfig()
	_, err := Generate(cfg, core.NewRNG(1), cfg.SpeedLimit+1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = Generate(cfg, core.NewRNG(1), -1)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg.Length = 0
	_, err = Generate(cfg, core.NewRNG(1), 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGenerateStopsOnStuckSource(t *testing.T) {
	cfg, err := NewConfig("stuck", 10, 3, 0.5, 0, true)
	require.NoError(t, err)
	_, err = Generate(cfg, &scriptedRand{ints: []int{4}}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
}

func TestStepSingleCarAtGapCap(t *testing.T) {
	cfg := ring(t, 10, 3, 0)
	st := stateOf(t, 2, -1, -1, -1, -1, -1, -1, -1, -1, -1)

	eng := NewEngine(cfg, &scriptedRand{})
	assert.Equal(t, 2, eng.Gap(st, 0))

	stats := eng.Step(st)
	assert.Equal(t, "..2.......", st.String())
	assert.Equal(t, 1, stats.Moving)
	assert.Equal(t, 0, stats.Flow)
}

func TestStepTwoCarsFromRest(t *testing.T) {
	cfg := ring(t, 5, 3, 0)
	st := stateOf(t, 0, 0, -1, -1, -1)

	eng := NewEngine(cfg, &scriptedRand{})
	assert.Equal(t, 0, eng.Gap(st, 0))
	assert.Equal(t, 2, eng.Gap(st, 1))

	eng.Step(st)
	assert.Equal(t, []int{0, -1, 1, -1, -1}, st.Cells())
}

func TestStepWraparoundMovesOnce(t *testing.T) {
	cfg := ring(t, 5, 4, 0)
	st := stateOf(t, -1, -1, -1, -1, 3)

	stats := Step(cfg, st, &scriptedRand{})
	assert.Equal(t, []int{-1, -1, 3, -1, -1}, st.Cells())
	assert.Equal(t, 1, stats.Flow)
	assert.Equal(t, 1, st.CarCount())
}

func TestStepWraparoundWithFollower(t *testing.T) {
	// The car at 8 wraps past the car at 2 within the same tick.
	cfg := ring(t, 10, 4, 0)
	st := stateOf(t, -1, -1, 0, -1, -1, -1, -1, -1, 3, -1)

	stats := Step(cfg, st, &scriptedRand{})
	assert.Equal(t, ".3.1......", st.String())
	assert.Equal(t, 1, stats.Flow)
	assert.Equal(t, 2, st.CarCount())
}

func TestZeroSpeedBlockedCarStays(t *testing.T) {
	cfg := ring(t, 6, 5, 0)
	st := stateOf(t, 0, 0, 0, 0, 0, 0)
	Step(cfg, st, &scriptedRand{})
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, st.Cells())
}

func TestSlowdownAppliesOnlyToMovingCars(t *testing.T) {
	cfg := ring(t, 8, 4, 1)
	st := stateOf(t, 0, 0, -1, -1, 2, -1, -1, -1)

	stats := Step(cfg, st, &scriptedRand{floats: []float64{0}})
	// car 0: blocked, stays 0 and draws nothing. car 1: 0 -> 1 -> 0.
	// car 4: gap 3, 2 -> 3 -> 2.
	assert.Equal(t, 2, stats.Slowed)
	assert.Equal(t, 1, stats.Moving)
	assert.Equal(t, "00....2.", st.String())
}

func TestSlowdownDrawCount(t *testing.T) {
	cfg := ring(t, 20, 5, 0.5)
	st := stateOf(t, 3, -1, -1, -1, -1, -1, -1, -1, -1, -1, 0, 0, -1, -1, -1, -1, -1, -1, -1, -1)
	rng := &scriptedRand{floats: []float64{0.9}}
	NewEngine(cfg, rng).Accelerate(st)
	// cars at 0 and 11 move; the car at 10 is blocked by 11.
	assert.Equal(t, 2, rng.fi)
}

func TestOpenRoadWallKeepsCars(t *testing.T) {
	cfg, err := NewConfig("open", 6, 4, 0, 0, false)
	require.NoError(t, err)
	st := stateOf(t, -1, -1, -1, -1, 2, 3)

	eng := NewEngine(cfg, &scriptedRand{})
	assert.Equal(t, 0, eng.Gap(st, 5))
	assert.Equal(t, 0, eng.Gap(st, 4))
	for i := 0; i < 5; i++ {
		eng.Step(st)
		assert.Equal(t, 2, st.CarCount())
	}
	assert.Equal(t, "....00", st.String())
}

func TestOpenRoadExitRemovesCars(t *testing.T) {
	cfg, err := NewConfig("open", 6, 4, 0, 0, false)
	require.NoError(t, err)
	cfg.Boundary = BoundaryExit
	st := stateOf(t, -1, -1, -1, -1, 2, -1)

	eng := NewEngine(cfg, &scriptedRand{})
	assert.Equal(t, 3, eng.Gap(st, 4))
	stats := eng.Step(st)
	assert.Equal(t, 1, stats.Exited)
	assert.Equal(t, 0, st.CarCount())
}

func TestStepIgnoresMismatchedState(t *testing.T) {
	cfg := ring(t, 5, 3, 0)
	st := stateOf(t, 1, -1, -1)
	stats := Step(cfg, st, &scriptedRand{})
	assert.Equal(t, StepStats{}, stats)
	assert.Equal(t, []int{1, -1, -1}, st.Cells())
}

func TestStepInvariants(t *testing.T) {
	configs := []Config{
		{Name: "ring", Length: 200, SpeedLimit: 6, Density: 0.2, SlowProbability: 0.25, ClosedLoop: true},
		{Name: "dense", Length: 50, SpeedLimit: 5, Density: 0.7, SlowProbability: 0.5, ClosedLoop: true},
		{Name: "tiny", Length: 5, SpeedLimit: 9, Density: 0.4, SlowProbability: 0.1, ClosedLoop: true},
		{Name: "wall", Length: 80, SpeedLimit: 6, Density: 0.3, SlowProbability: 0.2},
	}
	for _, cfg := range configs {
		t.Run(cfg.Name, func(t *testing.T) {
			rng := core.NewRNG(2024)
			st, err := Generate(cfg, rng, 0)
			require.NoError(t, err)
			eng := NewEngine(cfg, rng)
			cars := st.CarCount()

			for tick := 0; tick < 300; tick++ {
				before := st.Clone()
				gaps := make(map[int]int)
				for i, v := range before.Cells() {
					if v != Empty {
						gaps[i] = gap(cfg, before.Cells(), i)
					}
				}

				eng.Accelerate(st)
				for i, v := range st.Cells() {
					if before.Cells()[i] == Empty {
						require.Equal(t, Empty, v, "acceleration moved a car at tick %d", tick)
						continue
					}
					require.GreaterOrEqual(t, v, 0)
					require.LessOrEqual(t, v, min(cfg.SpeedLimit, gaps[i]), "speed bound at tick %d cell %d", tick, i)
				}

				want := NewState(cfg.Length)
				for i, v := range st.Cells() {
					if v == Empty {
						continue
					}
					dest := (i + v) % cfg.Length
					_, taken := want.At(dest)
					require.False(t, taken, "two cars target cell %d at tick %d", dest, tick)
					want.Place(dest, v)
				}

				eng.Move(st)
				require.Equal(t, cars, st.CarCount(), "conservation at tick %d", tick)
				require.True(t, want.Equal(st), "tick %d: got %s want %s", tick, st, want)
			}
		})
	}
}

func TestStepDeterministicReplay(t *testing.T) {
	cfg := DefaultConfig()
	run := func() *State {
		rng := core.NewRNG(77)
		st, err := Generate(cfg, rng, 0)
		require.NoError(t, err)
		eng := NewEngine(cfg, rng)
		for i := 0; i < 100; i++ {
			eng.Step(st)
		}
		return st
	}
	assert.True(t, run().Equal(run()))
}

func TestMetrics(t *testing.T) {
	st := stateOf(t, 0, -1, 2, 4, -1)
	assert.InDelta(t, 2.0, MeanSpeed(st), 1e-9)
	assert.InDelta(t, 0.6, Occupancy(st), 1e-9)
	assert.InDelta(t, 1.0/3.0, StoppedFraction(st), 1e-9)

	empty := NewState(4)
	assert.Zero(t, MeanSpeed(empty))
	assert.Zero(t, StoppedFraction(empty))
	assert.Zero(t, Occupancy(NewState(0)))
}

func TestStateHelpers(t *testing.T) {
	_, err := StateFromCells([]int{0, -2})
	assert.Error(t, err)

	st := stateOf(t, -1, 12, 3)
	assert.Equal(t, ".+3", st.String())
	pos, speeds := st.Positions()
	assert.Equal(t, []int{1, 2}, pos)
	assert.Equal(t, []int{12, 3}, speeds)

	c := st.Clone()
	c.Clear(1)
	_, ok := st.At(1)
	assert.True(t, ok, "clone must not alias the original")
	_, ok = st.At(7)
	assert.False(t, ok)
}
