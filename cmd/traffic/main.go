package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"traffic-ca/internal/render"
	"traffic-ca/internal/road"
	"traffic-ca/internal/sim"
	"traffic-ca/internal/store"
	"traffic-ca/internal/stream"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("Failed to load .env")
	}

	cfg := NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()
	ticksSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "ticks" {
			ticksSet = true
		}
	})
	cfg.ApplyEnv(os.Getenv, ticksSet)

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("Invalid log level")
	}
	log.SetLevel(level)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	roads, err := cfg.RoadConfigs()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, roads); err != nil {
		log.WithError(err).Fatal("Simulation failed")
	}
}

func run(ctx context.Context, cfg *Config, roads []road.Config) error {
	sinks := sim.MultiSink{}

	st, closeStore, err := openStore(ctx, cfg, roads)
	if err != nil {
		return err
	}
	defer closeStore()
	sinks = append(sinks, st)

	var recorder *render.Recorder
	if cfg.Heatmap || cfg.Ring {
		recorder = render.NewRecorder(roads...)
		sinks = append(sinks, recorder)
	}

	if cfg.MQTT != "" {
		client, err := stream.ConnectMQTT(cfg.MQTT, "traffic-ca-"+uuid.NewString())
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		sinks = append(sinks, stream.NewMQTTPublisher(client, cfg.MQTTPrefix, nil))
		log.WithField("broker", cfg.MQTT).Info("Publishing snapshots over MQTT")
	}

	if cfg.WSAddr != "" {
		hub := stream.NewHub(nil)
		defer hub.Close()
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: cfg.WSAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Websocket server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		sinks = append(sinks, hub)
		log.WithField("addr", cfg.WSAddr).Info("Serving websocket feed on /ws")
	}

	jobs := make([]sim.Job, 0, len(roads))
	for _, rc := range roads {
		jobs = append(jobs, sim.Job{Config: rc, Seed: cfg.Seed, Ticks: cfg.Ticks, StartSpeed: cfg.StartSpeed, Sink: sinks})
	}

	log.WithFields(log.Fields{
		"roads": cfg.RoadNames(),
		"ticks": cfg.Ticks,
		"seed":  cfg.Seed,
		"store": cfg.Store,
	}).Info("Starting traffic simulation")

	results, runErr := sim.RunAll(ctx, jobs, sim.WithContinueOnSinkError(cfg.KeepGoing))
	for _, res := range results {
		if res.Final == nil {
			continue
		}
		log.WithFields(log.Fields{
			"road":       res.Config.Name,
			"run_id":     res.RunID,
			"cars":       res.Final.CarCount(),
			"occupancy":  road.Occupancy(res.Final),
			"mean_speed": road.MeanSpeed(res.Final),
			"stopped":    road.StoppedFraction(res.Final),
		}).Info("Road summary")
		log.WithField("road", res.Config.Name).Debug(res.Final.String())
	}
	if runErr != nil {
		if !cfg.KeepGoing || !errors.Is(runErr, sim.ErrSinkFailure) {
			return runErr
		}
		log.WithError(runErr).Warn("Some snapshots were not delivered")
	}

	if recorder != nil {
		paths, err := recorder.Flush(cfg.Out, cfg.Scale, cfg.Ring)
		if err != nil {
			return err
		}
		for _, p := range paths {
			log.WithField("path", p).Info("Wrote image")
		}
	}
	return nil
}

// openStore builds the snapshot sink selected by -store. The returned func
// releases its resources.
func openStore(ctx context.Context, cfg *Config, roads []road.Config) (sim.Sink, func(), error) {
	switch cfg.Store {
	case "memory":
		return store.Sink(store.NewMemory()), func() {}, nil
	case "mongo":
		client, err := store.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.WithError(err).Warn("Mongo disconnect failed")
			}
		}
		m := store.NewMongo(client, cfg.MongoDB)
		if err := m.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		for _, rc := range roads {
			if err := m.DeleteRoad(ctx, rc.Name); err != nil {
				closeFn()
				return nil, nil, err
			}
		}
		return m, closeFn, nil
	default:
		f, err := store.NewFile(cfg.Out)
		if err != nil {
			return nil, nil, err
		}
		for _, rc := range roads {
			if err := f.Reset(rc.Name); err != nil {
				return nil, nil, err
			}
		}
		log.WithField("dir", cfg.Out).Info("Writing snapshots to files")
		return store.Sink(f), func() {}, nil
	}
}
