package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/internal/term"
	"github.com/signalsfoundry/orrery/timectrl"
)

func newRunCmd(a *app) *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the interactive terminal viewer",
		Long: `run draws the scene top-down in the terminal. Click a body to inspect
it, p pauses, c switches between orbit and fly controls, x closes the info
panel and q quits. Logs go to --log-file so they do not tear the screen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()

			out := io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return a.runViewer(cmd.Context(), screen, out)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "orrery.log", "log destination while the viewer owns the terminal; empty discards")
	return cmd
}

// runViewer drives an initialized screen until the user quits. Logs and
// stdout spans go to out.
func (a *app) runViewer(ctx context.Context, screen tcell.Screen, out io.Writer) error {
	s := a.settings
	log := a.logger(out)

	stopTracing, err := a.startTracing(ctx, out, log)
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

	bary := s.BarycenterVec()
	viewer := term.NewViewer(screen, r2.Vec{X: bary.X, Y: bary.Z}, log)
	engine := core.NewEngine(sc, append(viewer.EngineOptions(),
		core.WithEngineLogger(log),
		core.WithMetricsRecorder(metrics.engine),
		core.WithClock(timectrl.NewAnimationClock(s.Sim.Acceleration)),
	)...)

	svc, err := startServices(ctx, s.Metrics.Addr, s.GRPC.Addr, engine, metrics, log)
	if err != nil {
		return err
	}
	defer svc.stop(ctx)

	loop := timectrl.NewFrameLoop(timectrl.TickForFPS(s.Sim.FPS), timectrl.RealTime)
	return viewer.Run(ctx, engine, loop)
}
