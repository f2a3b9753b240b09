package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"traffic-ca/internal/road"
)

// Config holds the command-line and environment parameters of a run.
type Config struct {
	Roads      string
	Ticks      int
	Seed       int64
	StartSpeed int
	Store      string
	Out        string
	MongoURI   string
	MongoDB    string
	Heatmap    bool
	Ring       bool
	Scale      int
	MQTT       string
	MQTTPrefix string
	WSAddr     string
	LogLevel   string
	KeepGoing  bool
}

// NewConfig returns the defaults of the two-road demo.
func NewConfig() *Config {
	return &Config{
		Roads:      "Road1,Road2",
		Ticks:      60,
		Seed:       42,
		Store:      "file",
		Out:        "out",
		MongoDB:    "traffic",
		Scale:      2,
		MQTTPrefix: "traffic",
		LogLevel:   "info",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Roads, "roads", c.Roads, "comma-separated road presets to run")
	fs.IntVar(&c.Ticks, "ticks", c.Ticks, "ticks to simulate per road")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed shared by all roads; each road gets its own stream")
	fs.IntVar(&c.StartSpeed, "start-speed", c.StartSpeed, "speed of the generated cars")
	fs.StringVar(&c.Store, "store", c.Store, "snapshot store: memory, file or mongo")
	fs.StringVar(&c.Out, "out", c.Out, "output directory for snapshot files and images")
	fs.StringVar(&c.MongoURI, "mongo-uri", c.MongoURI, "MongoDB connection string")
	fs.StringVar(&c.MongoDB, "mongo-db", c.MongoDB, "MongoDB database name")
	fs.BoolVar(&c.Heatmap, "heatmap", c.Heatmap, "write a space-time heatmap per road")
	fs.BoolVar(&c.Ring, "ring", c.Ring, "write the final ring plot per road")
	fs.IntVar(&c.Scale, "scale", c.Scale, "heatmap pixel scale")
	fs.StringVar(&c.MQTT, "mqtt", c.MQTT, "MQTT broker url, e.g. tcp://localhost:1883")
	fs.StringVar(&c.MQTTPrefix, "mqtt-prefix", c.MQTTPrefix, "MQTT topic prefix")
	fs.StringVar(&c.WSAddr, "ws", c.WSAddr, "listen address of the websocket feed, e.g. :8090")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	fs.BoolVar(&c.KeepGoing, "keep-going", c.KeepGoing, "keep simulating when a sink fails")
}

// ApplyEnv fills unset values from the environment. Flags win over the
// environment for the connection strings; TRAFFIC_TICKS replaces the default
// tick count only.
func (c *Config) ApplyEnv(getenv func(string) string, ticksSet bool) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if c.MongoURI == "" {
		c.MongoURI = getenv("MONGO_URI")
	}
	if v := getenv("MONGO_DB"); v != "" && c.MongoDB == NewConfig().MongoDB {
		c.MongoDB = v
	}
	if c.MQTT == "" {
		c.MQTT = getenv("MQTT_BROKER")
	}
	if !ticksSet {
		if v := getenv("TRAFFIC_TICKS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				c.Ticks = n
			}
		}
	}
}

// RoadNames splits the -roads flag, dropping blanks and duplicates.
func (c *Config) RoadNames() []string {
	names := lo.Map(strings.Split(c.Roads, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Compact(names))
}

// RoadConfigs resolves every road name to a preset.
func (c *Config) RoadConfigs() ([]road.Config, error) {
	names := c.RoadNames()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no roads given", road.ErrInvalidConfig)
	}
	cfgs := make([]road.Config, 0, len(names))
	for _, name := range names {
		cfg, ok := road.Preset(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown road %q (available: %s)", road.ErrInvalidConfig, name, strings.Join(road.PresetNames(), ", "))
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

// Validate checks the settings that do not depend on a road.
func (c *Config) Validate() error {
	if c.Ticks < 0 {
		return fmt.Errorf("%w: ticks must be non-negative, got %d", road.ErrInvalidConfig, c.Ticks)
	}
	if !lo.Contains([]string{"memory", "file", "mongo"}, c.Store) {
		return fmt.Errorf("%w: unknown store %q", road.ErrInvalidConfig, c.Store)
	}
	if c.Scale < 1 {
		return fmt.Errorf("%w: scale must be at least 1", road.ErrInvalidConfig)
	}
	return nil
}
