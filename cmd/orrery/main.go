package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/internal/config"
	"github.com/signalsfoundry/orrery/internal/logging"
	"github.com/signalsfoundry/orrery/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every subcommand shares once flags are parsed.
type app struct {
	v        *viper.Viper
	cfgFile  string
	settings config.Settings
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "orrery",
		Short:         "Animated star system with ray picking",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadSettings()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (json, yaml or toml)")
	flags.String("scene", "", "scene table JSON file; empty uses the built-in table")
	flags.String("assets", "", "directory textures are resolved against")
	flags.Float64("acceleration", 0.5, "sim seconds per wall second")
	flags.Uint64("seed", 1, "asteroid belt seed")
	flags.String("metrics-addr", "", "HTTP address for Prometheus /metrics")
	flags.String("grpc-addr", "", "TCP address for the inspection gRPC server")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.String("log-format", "text", "text or json")
	flags.Bool("tracing", false, "export spans")

	bindFlags(a.v, root.PersistentFlags().Lookup, map[string]string{
		"scene.file":       "scene",
		"scene.assets":     "assets",
		"sim.acceleration": "acceleration",
		"sim.seed":         "seed",
		"metrics.addr":     "metrics-addr",
		"grpc.addr":        "grpc-addr",
		"log.level":        "log-level",
		"log.format":       "log-format",
		"tracing.enabled":  "tracing",
	})

	root.AddCommand(
		newRunCmd(a),
		newSimulateCmd(a),
		newValidateCmd(a),
	)
	return root
}

// bindFlags ties viper keys to flags so a set flag beats file and env
// values.
func bindFlags(v *viper.Viper, lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, name := range keys {
		if f := lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func (a *app) loadSettings() error {
	if err := config.Load(a.v, a.cfgFile); err != nil {
		return err
	}
	s, err := config.Decode(a.v)
	if err != nil {
		return err
	}
	a.settings = s
	return nil
}

// logger builds the configured logger writing to out.
func (a *app) logger(out io.Writer) logging.Logger {
	cfg := a.settings.LoggingConfig()
	cfg.Output = out
	return logging.New(cfg)
}

// startTracing installs the configured tracer provider. The stdout
// exporter writes to out.
func (a *app) startTracing(ctx context.Context, out io.Writer, log logging.Logger) (stop func(), err error) {
	cfg := a.settings.TracingConfig()
	cfg.Output = out
	shutdown, err := observability.InitTracing(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	return func() {
		observability.ShutdownWithTimeout(context.WithoutCancel(ctx), shutdown, log)
	}, nil
}

// buildScene loads the configured table, or the built-in one, and builds it.
func (a *app) buildScene(ctx context.Context, log logging.Logger) (*core.Scene, error) {
	s := a.settings
	table := core.DefaultTable()
	if s.Scene.File != "" {
		loaded, err := core.LoadSceneFile(s.Scene.File)
		if err != nil {
			return nil, err
		}
		table = *loaded
	}

	opts := []core.BuildOption{
		core.WithLogger(log),
		core.WithSeed(s.Sim.Seed),
		core.WithBarycenter(s.BarycenterVec()),
		core.WithShadows(s.Sim.Shadows),
	}
	if s.Scene.Assets != "" {
		opts = append(opts, core.WithAssets(core.DirAssets{Dir: s.Scene.Assets}))
	}
	return core.BuildScene(ctx, table, opts...)
}
