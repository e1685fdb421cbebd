package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/internal/logging"
	"github.com/signalsfoundry/orrery/internal/record"
	"github.com/signalsfoundry/orrery/timectrl"
)

type simulateOptions struct {
	frames int
	tick   time.Duration
	serve  bool
}

func newSimulateCmd(a *app) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Step the scene headless and print the final poses",
		Long: `simulate runs the frame loop without a screen. By default it steps
--frames frames of --tick wall time back to back and prints where every
body ended up. With --serve it runs in real time until interrupted, which
is useful together with --grpc-addr and --metrics-addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.simulate(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.frames, "frames", 600, "frames to step; ignored with --serve")
	flags.DurationVar(&opts.tick, "tick", 0, "wall time per frame; 0 uses 1/sim.fps")
	flags.BoolVar(&opts.serve, "serve", false, "run in real time until interrupted")
	flags.Bool("record", false, "record poses to SQLite")
	flags.String("record-path", "", "recording database; empty keeps it in memory")
	flags.Int("record-every", 1, "record one frame out of N")

	bindFlags(a.v, flags.Lookup, map[string]string{
		"record.enabled":  "record",
		"record.path":     "record-path",
		"record.every":    "record-every",
	})
	return cmd
}

func (a *app) simulate(ctx context.Context, opts *simulateOptions, out, errOut io.Writer) error {
	if opts.frames < 1 && !opts.serve {
		return fmt.Errorf("--frames must be at least 1, got %d", opts.frames)
	}
	s := a.settings
	log := a.logger(errOut)

	stopTracing, err := a.startTracing(ctx, errOut, log)
	if err != nil {
		return err
	}
	defer stopTracing()

	metrics, err := newCollectors()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	sc, err := a.buildScene(ctx, log)
	if err != nil {
		return err
	}

	engineOpts := []core.EngineOption{
		core.WithEngineLogger(log),
		core.WithMetricsRecorder(metrics.engine),
		core.WithClock(timectrl.NewAnimationClock(s.Sim.Acceleration)),
	}

	var rec *record.SQLRecorder
	if s.Record.Enabled {
		rec, err = record.Open(record.Options{
			Path:    s.Record.Path,
			Every:   s.Record.Every,
			Batch:   s.Record.Batch,
			Logger:  log,
			Counter: metrics.engine,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(context.WithoutCancel(ctx)); err != nil {
				log.Warn(ctx, "closing recorder failed", logging.Err(err))
			}
		}()
		if err := rec.OnStart(ctx, sc); err != nil {
			return err
		}
		engineOpts = append(engineOpts, core.WithObserver(rec))
	}

	engine := core.NewEngine(sc, engineOpts...)

	svc, err := startServices(ctx, s.Metrics.Addr, s.GRPC.Addr, engine, metrics, log)
	if err != nil {
		return err
	}
	defer svc.stop(ctx)

	tick := opts.tick
	if tick <= 0 {
		tick = timectrl.TickForFPS(s.Sim.FPS)
	}
	mode, frames := timectrl.Accelerated, uint64(opts.frames)
	if opts.serve {
		mode, frames = timectrl.RealTime, 0
	}
	loop := timectrl.NewFrameLoop(tick, mode)
	engine.Attach(ctx, loop, nil)

	log.Info(ctx, "simulation starting",
		logging.Int("frames", int(frames)),
		logging.String("tick", tick.String()),
		logging.Bool("serve", opts.serve),
	)
	<-loop.Start(ctx, frames)

	if rec != nil {
		if err := rec.Flush(context.WithoutCancel(ctx)); err != nil {
			return err
		}
		n, err := rec.Count(context.WithoutCancel(ctx))
		if err != nil {
			return err
		}
		log.Info(ctx, "recording complete", logging.Int("run", int(rec.RunID())), logging.Int("poses", int(n)))
	}

	writeSummary(out, engine.Snapshot())
	return nil
}

func writeSummary(out io.Writer, f *core.Frame) {
	if f == nil {
		return
	}
	state := "running"
	if f.Paused {
		state = "paused"
	}
	fmt.Fprintf(out, "frame %d  sim %.3fs  wall %s  %s\n", f.Index, f.SimTime, f.Wall, state)
	for _, b := range f.Bodies {
		fmt.Fprintf(out, "%-14s %-6s %10.3f %10.3f %10.3f\n",
			b.Name, b.Kind, b.Position.X, b.Position.Y, b.Position.Z)
	}
}
