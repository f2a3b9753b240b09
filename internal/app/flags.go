package app

import (
	"flag"
	"strconv"
)

// Config represents the command-line parameters of the viewer.
type Config struct {
	Sim     string
	Preset  string
	Scale   int
	TPS     int
	Seed    int64
	History int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "road", Preset: "Road1", Scale: 3, TPS: 10, Seed: 42, History: 240}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.StringVar(&c.Preset, "preset", c.Preset, "road preset")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "road ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.History, "history", c.History, "ticks of history kept on screen")
}

// SimOptions converts the flags into the key/value map sim factories accept.
func (c *Config) SimOptions() map[string]string {
	opts := map[string]string{}
	if c.Preset != "" {
		opts["preset"] = c.Preset
		opts["name"] = c.Preset
	}
	if c.History > 0 {
		opts["history"] = strconv.Itoa(c.History)
	}
	return opts
}
