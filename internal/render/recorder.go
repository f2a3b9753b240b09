package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"traffic-ca/internal/road"
	"traffic-ca/internal/sim"
)

// Recorder is a sink collecting every state of a set of roads so that their
// heatmaps and final ring plots can be written once the run ends.
type Recorder struct {
	mu     sync.Mutex
	cfgs   map[string]road.Config
	series map[string][]*road.State
}

// NewRecorder records the roads described by cfgs.
func NewRecorder(cfgs ...road.Config) *Recorder {
	r := &Recorder{cfgs: map[string]road.Config{}, series: map[string][]*road.State{}}
	for _, c := range cfgs {
		r.cfgs[c.Name] = c
	}
	return r
}

// Emit appends the snapshot's state to its road's series.
func (r *Recorder) Emit(_ context.Context, snap sim.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cfgs[snap.Road]; !ok {
		return fmt.Errorf("recorder: unknown road %q", snap.Road)
	}
	r.series[snap.Road] = append(r.series[snap.Road], snap.State)
	return nil
}

// Series returns the recorded states of a road.
func (r *Recorder) Series(roadName string) []*road.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.series[roadName]
}

// Flush writes heatmap_<road>.png and, when ring is set, ring_<road>.png
// showing the last recorded state. It returns the written paths.
func (r *Recorder) Flush(dir string, scale int, ring bool) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.series))
	for name := range r.series {
		names = append(names, name)
	}
	sort.Strings(names)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	for _, name := range names {
		cfg := r.cfgs[name]
		states := r.series[name]
		if len(states) == 0 {
			continue
		}
		p := filepath.Join(dir, "heatmap_"+name+".png")
		if err := WritePNG(p, Heatmap(cfg, states, scale)); err != nil {
			return paths, err
		}
		paths = append(paths, p)
		if ring {
			p := filepath.Join(dir, "ring_"+name+".png")
			if err := WritePNG(p, Positions(cfg, states[len(states)-1], 480)); err != nil {
				return paths, err
			}
			paths = append(paths, p)
		}
	}
	return paths, nil
}
