// Package simulator wraps a network.Network with the fixed-delta tick
// driver and a multi-instance parallel runner.
// §5: each Simulator ticks single-threaded, but independent instances
// (sharing no state) may be driven concurrently.
package simulator

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/corridorsim/corridor/geom"
	"github.com/corridorsim/corridor/model"
	"github.com/corridorsim/corridor/network"
)

// Options configures a Simulator.
type Options struct {
	// RunID tags this instance's log lines for correlation when many
	// Simulators are driven together by RunParallel. Generated if empty.
	RunID  string
	Logger *slog.Logger
}

// DefaultOptions returns a fresh run id and the default logger.
func DefaultOptions() Options {
	return Options{
		RunID:  uuid.NewString(),
		Logger: slog.Default(),
	}
}

// Simulator drives one Network forward in fixed dt increments.
type Simulator struct {
	net   *network.Network
	opts  Options
	log   *slog.Logger
	ticks uint64
}

// New wraps an already-built Network.
func New(net *network.Network, opts Options) *Simulator {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Simulator{
		net:  net,
		opts: opts,
		log:  opts.Logger.With("run_id", opts.RunID),
	}
}

// Network returns the underlying network, for scenario/test setup.
func (s *Simulator) Network() *network.Network { return s.net }

// RunID returns this instance's correlation id.
func (s *Simulator) RunID() string { return s.opts.RunID }

// Tick advances the simulation by one fixed step.
func (s *Simulator) Tick(dt float64) error {
	if err := s.net.Step(dt); err != nil {
		s.log.Warn("tick failed", "tick", s.ticks, "dt", dt, "err", err)
		return err
	}
	s.ticks++
	return nil
}

// Run advances the simulation by steps fixed ticks of dt, returning the
// number of ticks actually completed before ctx was cancelled.
func (s *Simulator) Run(ctx context.Context, dt float64, steps int) (int, error) {
	s.log.Info("run starting", "steps", steps, "dt", dt)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.log.Warn("run cancelled", "completed", i, "requested", steps, "err", ctx.Err())
			return i, ctx.Err()
		default:
		}
		if err := s.Tick(dt); err != nil {
			return i, err
		}
	}
	s.log.Info("run complete", "completed", steps)
	return steps, nil
}

// Pose returns a vehicle's current position and heading.
func (s *Simulator) Pose(v model.VehicleID) (geom.Vec3, float64, error) {
	return s.net.Pose(v)
}

// Ticks returns the number of ticks this instance has completed.
func (s *Simulator) Ticks() uint64 { return s.ticks }

// RunParallel drives many independent Simulator instances concurrently,
// each for steps ticks of dt, sharing nothing but the errgroup that
// collects their first error (instances never share
// network state, only the Network's own builder mutex is exclusive
// within one instance).
func RunParallel(ctx context.Context, instances []*Simulator, dt float64, steps int) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sim := range instances {
		sim := sim
		g.Go(func() error {
			_, err := sim.Run(gctx, dt, steps)
			return err
		})
	}
	return g.Wait()
}
