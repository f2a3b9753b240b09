package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"traffic-ca/internal/road"
	"traffic-ca/pkg/core"
)

// Job describes one independent road run.
type Job struct {
	Config     road.Config
	Seed       int64
	Ticks      int
	StartSpeed int
	Sink       Sink
}

// Result is the outcome of a Job.
type Result struct {
	Config  road.Config
	RunID   string
	Initial *road.State
	Final   *road.State
}

// RunAll generates and runs every job concurrently. Each job owns its state
// and random stream, so nothing is shared between goroutines except the
// sinks, which must be safe for concurrent use when reused across jobs. The
// first failure cancels the remaining runs.
func RunAll(ctx context.Context, jobs []Job, opts ...Option) ([]Result, error) {
	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			rng := core.NewStreamRNG(job.Seed, uint64(i))
			initial, err := road.Generate(job.Config, rng, job.StartSpeed)
			if err != nil {
				return fmt.Errorf("road %q: %w", job.Config.Name, err)
			}
			jobOpts := append([]Option{}, opts...)
			if job.Sink != nil {
				jobOpts = append(jobOpts, WithSink(job.Sink))
			}
			s, err := New(job.Config, rng, jobOpts...)
			if err != nil {
				return fmt.Errorf("road %q: %w", job.Config.Name, err)
			}
			start := initial.Clone()
			final, err := s.Run(ctx, initial, job.Ticks)
			results[i] = Result{Config: job.Config, RunID: s.RunID(), Initial: start, Final: final}
			if err != nil {
				return err
			}
			s.logger.WithFields(logrus.Fields{
				"ticks":      job.Ticks,
				"cars":       final.CarCount(),
				"mean_speed": road.MeanSpeed(final),
			}).Info("Road finished")
			return nil
		})
	}
	err := g.Wait()
	return results, err
}
