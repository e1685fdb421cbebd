// Package config loads orrery settings from defaults, an optional config
// file, ORRERY_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/orrery/internal/logging"
	"github.com/signalsfoundry/orrery/internal/observability"
)

// EnvPrefix prefixes every environment override, e.g. ORRERY_SIM_FPS.
const EnvPrefix = "ORRERY"

// ErrInvalidSettings wraps every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the decoded configuration tree.
type Settings struct {
	Sim     SimSettings     `json:"sim" mapstructure:"sim"`
	Scene   SceneSettings   `json:"scene" mapstructure:"scene"`
	Metrics MetricsSettings `json:"metrics" mapstructure:"metrics"`
	GRPC    GRPCSettings    `json:"grpc" mapstructure:"grpc"`
	Record  RecordSettings  `json:"record" mapstructure:"record"`
	Tracing TracingSettings `json:"tracing" mapstructure:"tracing"`
	Log     LogSettings     `json:"log" mapstructure:"log"`
}

// SimSettings control the animation clock and the scene build.
type SimSettings struct {
	Acceleration float64   `json:"acceleration" mapstructure:"acceleration"`
	Barycenter   []float64 `json:"barycenter" mapstructure:"barycenter"`
	FPS          int       `json:"fps" mapstructure:"fps"`
	Seed         uint64    `json:"seed" mapstructure:"seed"`
	Shadows      bool      `json:"shadows" mapstructure:"shadows"`
}

// SceneSettings locate the scene table and its textures. An empty File
// selects the built-in table.
type SceneSettings struct {
	File   string `json:"file" mapstructure:"file"`
	Assets string `json:"assets" mapstructure:"assets"`
}

// MetricsSettings configure the Prometheus endpoint. An empty Addr disables it.
type MetricsSettings struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// GRPCSettings configure the inspection server. An empty Addr disables it.
type GRPCSettings struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// RecordSettings configure the trajectory recorder.
type RecordSettings struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
	Every   int    `json:"every" mapstructure:"every"`
	Batch   int    `json:"batch" mapstructure:"batch"`
}

// TracingSettings mirror observability.TracingConfig.
type TracingSettings struct {
	Enabled     bool    `json:"enabled" mapstructure:"enabled"`
	Exporter    string  `json:"exporter" mapstructure:"exporter"`
	Endpoint    string  `json:"endpoint" mapstructure:"endpoint"`
	ServiceName string  `json:"serviceName" mapstructure:"serviceName"`
	SampleRatio float64 `json:"sampleRatio" mapstructure:"sampleRatio"`
}

// LogSettings mirror logging.Config.
type LogSettings struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
	Source bool   `json:"source" mapstructure:"source"`
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("sim.acceleration", 0.5)
	v.SetDefault("sim.barycenter", []float64{1, 0, 1})
	v.SetDefault("sim.fps", 60)
	v.SetDefault("sim.seed", 1)
	v.SetDefault("sim.shadows", true)

	v.SetDefault("scene.file", "")
	v.SetDefault("scene.assets", "")

	v.SetDefault("metrics.addr", "")
	v.SetDefault("grpc.addr", "")

	v.SetDefault("record.enabled", false)
	v.SetDefault("record.path", "")
	v.SetDefault("record.every", 1)
	v.SetDefault("record.batch", 256)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.serviceName", observability.DefaultServiceName)
	v.SetDefault("tracing.sampleRatio", 1.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.source", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file into v when file is not empty. The format follows the
// file extension (json, yaml, toml).
func Load(v *viper.Viper, file string) error {
	if file == "" {
		return nil
	}
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Decode unmarshals v into Settings and validates the result.
func Decode(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	switch {
	case s.Sim.Acceleration <= 0:
		return fmt.Errorf("%w: sim.acceleration must be positive, got %v", ErrInvalidSettings, s.Sim.Acceleration)
	case len(s.Sim.Barycenter) != 3:
		return fmt.Errorf("%w: sim.barycenter needs 3 components, got %d", ErrInvalidSettings, len(s.Sim.Barycenter))
	case s.Sim.FPS <= 0:
		return fmt.Errorf("%w: sim.fps must be positive", ErrInvalidSettings)
	case s.Record.Every < 1:
		return fmt.Errorf("%w: record.every must be at least 1", ErrInvalidSettings)
	case s.Record.Batch < 1:
		return fmt.Errorf("%w: record.batch must be at least 1", ErrInvalidSettings)
	case s.Tracing.SampleRatio < 0 || s.Tracing.SampleRatio > 1:
		return fmt.Errorf("%w: tracing.sampleRatio %v outside [0,1]", ErrInvalidSettings, s.Tracing.SampleRatio)
	}
	return nil
}

// BarycenterVec returns sim.barycenter as a vector. Call after Validate.
func (s Settings) BarycenterVec() r3.Vec {
	b := s.Sim.Barycenter
	return r3.Vec{X: b[0], Y: b[1], Z: b[2]}
}

// TracingConfig converts the tracing section.
func (s Settings) TracingConfig() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     s.Tracing.Enabled,
		ServiceName: s.Tracing.ServiceName,
		Exporter:    strings.ToLower(s.Tracing.Exporter),
		Endpoint:    s.Tracing.Endpoint,
		SampleRatio: s.Tracing.SampleRatio,
	}
}

// LoggingConfig converts the log section.
func (s Settings) LoggingConfig() logging.Config {
	return logging.Config{
		Level:     s.Log.Level,
		Format:    s.Log.Format,
		AddSource: s.Log.Source,
	}
}
