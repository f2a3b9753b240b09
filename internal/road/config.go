package road

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Boundary selects what happens at the far end of an open road.
type Boundary uint8

const (
	// BoundaryWall treats the cells past the last index as occupied: cars
	// brake for the road end and never leave.
	BoundaryWall Boundary = iota
	// BoundaryExit treats the cells past the last index as free: cars drive
	// off the end and are removed.
	BoundaryExit
)

func (b Boundary) String() string {
	switch b {
	case BoundaryWall:
		return "wall"
	case BoundaryExit:
		return "exit"
	default:
		return "boundary(" + strconv.Itoa(int(b)) + ")"
	}
}

// ParseBoundary parses "wall" or "exit".
func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wall", "":
		return BoundaryWall, nil
	case "exit":
		return BoundaryExit, nil
	}
	return BoundaryWall, fmt.Errorf("%w: unknown boundary %q", ErrInvalidConfig, s)
}

// Config holds the immutable parameters of one road.
type Config struct {
	Name            string
	Length          int     // cells
	SpeedLimit      int     // cells per tick
	Density         float64 // fraction of cells occupied at start
	SlowProbability float64 // chance a moving car brakes one extra unit per tick
	ClosedLoop      bool
	Boundary        Boundary // only consulted when ClosedLoop is false
}

// DefaultConfig returns the standard ring road.
func DefaultConfig() Config {
	return Config{
		Name:            "road",
		Length:          200,
		SpeedLimit:      6,
		Density:         0.20,
		SlowProbability: 0.25,
		ClosedLoop:      true,
	}
}

// NewConfig builds and validates a road configuration.
func NewConfig(name string, length, speedLimit int, density, slowProbability float64, closedLoop bool) (Config, error) {
	c := Config{
		Name:            name,
		Length:          length,
		SpeedLimit:      speedLimit,
		Density:         density,
		SlowProbability: slowProbability,
		ClosedLoop:      closedLoop,
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every parameter against its bound.
func (c Config) Validate() error {
	if c.Length <= 0 {
		return fmt.Errorf("%w: length must be positive, got %d", ErrInvalidConfig, c.Length)
	}
	if c.SpeedLimit < 1 {
		return fmt.Errorf("%w: speed limit must be at least 1, got %d", ErrInvalidConfig, c.SpeedLimit)
	}
	if !unitInterval(c.Density) {
		return fmt.Errorf("%w: density must be in [0,1], got %v", ErrInvalidConfig, c.Density)
	}
	if !unitInterval(c.SlowProbability) {
		return fmt.Errorf("%w: slow probability must be in [0,1], got %v", ErrInvalidConfig, c.SlowProbability)
	}
	if c.Boundary > BoundaryExit {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Boundary)
	}
	return nil
}

func unitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// TargetCars is the number of cars placed at initialization.
func (c Config) TargetCars() int {
	return int(math.Floor(float64(c.Length) * c.Density))
}

// FromMap overrides DefaultConfig with flag-style key/value pairs. Malformed
// values are ignored.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["preset"]; ok {
		if p, found := Preset(v); found {
			c = p
		}
	}
	if v, ok := cfg["name"]; ok && v != "" {
		c.Name = v
	}
	if v, ok := cfg["length"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Length = parsed
		}
	}
	if v, ok := cfg["limit"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 {
			c.SpeedLimit = parsed
		}
	}
	if v, ok := cfg["density"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && unitInterval(parsed) {
			c.Density = parsed
		}
	}
	if v, ok := cfg["slow"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && unitInterval(parsed) {
			c.SlowProbability = parsed
		}
	}
	if v, ok := cfg["closed"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.ClosedLoop = parsed
		}
	}
	if v, ok := cfg["boundary"]; ok {
		if parsed, err := ParseBoundary(v); err == nil {
			c.Boundary = parsed
		}
	}
	return c
}

var presets = map[string]Config{
	"Road1":   named(DefaultConfig(), "Road1"),
	"Road2":   named(DefaultConfig(), "Road2"),
	"jam":     {Name: "jam", Length: 200, SpeedLimit: 6, Density: 0.5, SlowProbability: 0.25, ClosedLoop: true},
	"freeway": {Name: "freeway", Length: 400, SpeedLimit: 8, Density: 0.08, SlowProbability: 0.1, ClosedLoop: true},
	"open":    {Name: "open", Length: 200, SpeedLimit: 6, Density: 0.2, SlowProbability: 0.25, Boundary: BoundaryWall},
}

func named(c Config, name string) Config {
	c.Name = name
	return c
}

// Preset returns the named road configuration.
func Preset(name string) (Config, bool) {
	c, ok := presets[name]
	return c, ok
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := lo.Keys(presets)
	sort.Strings(names)
	return names
}
