package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestDecodeDefaults(t *testing.T) {
	s, err := Decode(New())
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if s.Sim.Acceleration != 0.5 || s.Sim.FPS != 60 || s.Sim.Seed != 1 || !s.Sim.Shadows {
		t.Fatalf("sim defaults = %+v", s.Sim)
	}
	if got := s.BarycenterVec(); got != (r3.Vec{X: 1, Z: 1}) {
		t.Fatalf("barycenter = %v, want (1,0,1)", got)
	}
	if s.Record.Every != 1 || s.Record.Enabled {
		t.Fatalf("record defaults = %+v", s.Record)
	}
	if tc := s.TracingConfig(); tc.Enabled || tc.ServiceName != "orrery" || tc.SampleRatio != 1 {
		t.Fatalf("tracing defaults = %+v", tc)
	}
	if lc := s.LoggingConfig(); lc.Level != "info" || lc.Format != "text" {
		t.Fatalf("log defaults = %+v", lc)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orrery.json")
	cfg := `{
		"sim": {"acceleration": 2, "barycenter": [0, 5, 0]},
		"record": {"enabled": true, "path": "poses.db", "every": 10},
		"tracing": {"serviceName": "orrery-test"}
	}`
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	v := New()
	if err := Load(v, path); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	s, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if s.Sim.Acceleration != 2 || s.BarycenterVec() != (r3.Vec{Y: 5}) {
		t.Fatalf("sim = %+v", s.Sim)
	}
	if s.Sim.FPS != 60 {
		t.Fatalf("unset fps lost its default: %d", s.Sim.FPS)
	}
	if !s.Record.Enabled || s.Record.Path != "poses.db" || s.Record.Every != 10 {
		t.Fatalf("record = %+v", s.Record)
	}
	if s.Tracing.ServiceName != "orrery-test" {
		t.Fatalf("service name = %q", s.Tracing.ServiceName)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orrery.yaml")
	if err := os.WriteFile(path, []byte("sim:\n  fps: 30\nlog:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	v := New()
	if err := Load(v, path); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	s, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if s.Sim.FPS != 30 || s.Log.Level != "debug" {
		t.Fatalf("settings = %+v", s)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if err := Load(New(), filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if err := Load(New(), ""); err != nil {
		t.Fatalf("empty path should be a no-op, got %v", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("ORRERY_SIM_FPS", "24")
	t.Setenv("ORRERY_GRPC_ADDR", ":50051")
	t.Setenv("ORRERY_TRACING_ENABLED", "true")

	s, err := Decode(New())
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if s.Sim.FPS != 24 || s.GRPC.Addr != ":50051" || !s.Tracing.Enabled {
		t.Fatalf("env overrides not applied: %+v", s)
	}
}

func TestValidate(t *testing.T) {
	base, err := Decode(New())
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"negative acceleration", func(s *Settings) { s.Sim.Acceleration = -1 }},
		{"zero acceleration", func(s *Settings) { s.Sim.Acceleration = 0 }},
		{"short barycenter", func(s *Settings) { s.Sim.Barycenter = []float64{1, 2} }},
		{"zero fps", func(s *Settings) { s.Sim.FPS = 0 }},
		{"zero record interval", func(s *Settings) { s.Record.Every = 0 }},
		{"zero batch", func(s *Settings) { s.Record.Batch = 0 }},
		{"sample ratio", func(s *Settings) { s.Tracing.SampleRatio = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			s.Sim.Barycenter = append([]float64(nil), base.Sim.Barycenter...)
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("Validate = %v, want ErrInvalidSettings", err)
			}
		})
	}
}
