package main

import (
	"flag"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"traffic-ca/internal/road"

	log "github.com/sirupsen/logrus"
)

type result struct {
	sample road.FlowSample
	err    error
}

func main() {
	preset := flag.String("preset", "Road1", "road preset to sweep")
	points := flag.Int("points", 20, "number of densities between 0 and 1")
	warmup := flag.Int("warmup", 200, "ticks discarded before measuring")
	ticks := flag.Int("ticks", 500, "ticks measured per density")
	seed := flag.Int64("seed", 1337, "seed for every scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	flag.Parse()

	base, ok := road.Preset(*preset)
	if !ok {
		log.Fatalf("unknown preset %q (available: %v)", *preset, road.PresetNames())
	}
	if *points < 1 {
		log.Fatal("points must be positive")
	}

	var densities []float64
	for i := 1; i <= *points; i++ {
		densities = append(densities, float64(i)/float64(*points))
	}

	fmt.Printf("Sweeping %d densities on %s (%d workers, %d+%d ticks)\n", len(densities), base.Name, *workers, *warmup, *ticks)

	jobs := make(chan float64)
	results := make(chan result)
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for density := range jobs {
				cfg := base
				cfg.Density = density
				sample, err := road.MeasureFlow(cfg, *seed, *warmup, *ticks)
				results <- result{sample: sample, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, d := range densities {
			jobs <- d
		}
		close(jobs)
	}()

	start := time.Now()
	var all []road.FlowSample
	for res := range results {
		if res.err != nil {
			log.WithError(res.err).Warn("Scenario failed")
			continue
		}
		all = append(all, res.sample)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Density < all[j].Density })

	var best road.FlowSample
	fmt.Printf("\n%8s %6s %10s %10s %8s\n", "density", "cars", "flow", "speed", "stopped")
	for _, s := range all {
		fmt.Printf("%8.3f %6d %10.3f %10.3f %7.1f%%\n", s.Density, s.Cars, s.MeanFlow, s.MeanSpeed, 100*s.Stopped)
		if s.MeanFlow > best.MeanFlow {
			best = s
		}
	}
	fmt.Printf("\nPeak flow %.3f at density %.3f (elapsed %s)\n", best.MeanFlow, best.Density, time.Since(start).Round(time.Millisecond))
}
