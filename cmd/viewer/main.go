//go:build ebiten

package main

import (
	"errors"
	"flag"

	"traffic-ca/internal/app"
	"traffic-ca/internal/core"
	_ "traffic-ca/internal/road"

	"github.com/hajimehoshi/ebiten/v2"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		log.Fatalf("unknown sim %q (available: %v)", cfg.Sim, core.SimNames())
	}

	sim := factory(cfg.SimOptions())
	sim.Reset(cfg.Seed)

	game := app.New(sim, cfg.Scale, cfg.TPS, cfg.Seed)
	size := sim.Size()

	ebiten.SetWindowTitle("traffic-ca: " + sim.Name())
	ebiten.SetWindowSize(size.W*cfg.Scale, size.H*cfg.Scale)

	log.WithFields(log.Fields{"sim": sim.Name(), "seed": cfg.Seed, "tps": cfg.TPS}).Info("Starting viewer")
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
