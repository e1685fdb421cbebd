package core

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/orrery/internal/logging"
	"github.com/signalsfoundry/orrery/model"
	"github.com/signalsfoundry/orrery/timectrl"
)

// BodyPose is one body's world pose in a frame.
type BodyPose struct {
	Name     string
	Kind     model.BodyKind
	Position r3.Vec
	Radius   float64
	Color    model.Color
}

// StarEffect is the pause-independent visual state of a star.
type StarEffect struct {
	Name           string
	ShaderTime     float64
	TextureOffsetX float64
}

// Frame is the output of one Advance call.
type Frame struct {
	Index      uint64
	SimTime    float64
	Wall       time.Duration
	Paused     bool
	Navigation string

	// Bodies lists stars, then planets, then moons.
	Bodies    []BodyPose
	Stars     []StarEffect
	BeltAngle float64

	// Scene gives renderers access to curves, lights and the belt. It is
	// only safe to read on the goroutine that called Advance.
	Scene *Scene
}

// Renderer is the render collaborator.
type Renderer interface {
	Render(ctx context.Context, f *Frame) error
}

// FrameObserver receives every frame after the pose update, for recording.
type FrameObserver interface {
	OnFrame(ctx context.Context, f *Frame) error
}

// MetricsRecorder receives engine measurements.
type MetricsRecorder interface {
	ObserveFrame(d time.Duration, paused bool)
	ObservePick(hit bool)
	SetBodyCount(kind string, n int)
	SetSimTime(t float64)
}

type nopMetrics struct{}

func (nopMetrics) ObserveFrame(time.Duration, bool) {}
func (nopMetrics) ObservePick(bool)                 {}
func (nopMetrics) SetBodyCount(string, int)         {}
func (nopMetrics) SetSimTime(float64)               {}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	log         logging.Logger
	metrics     MetricsRecorder
	observers   []FrameObserver
	clock       *timectrl.AnimationClock
	camera      Camera
	intersector Intersector
	panel       Panel
	orbit, fly  NavigationController
}

// WithEngineLogger sets the engine logger.
func WithEngineLogger(l logging.Logger) EngineOption {
	return func(c *engineConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetricsRecorder wires engine measurements into m.
func WithMetricsRecorder(m MetricsRecorder) EngineOption {
	return func(c *engineConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithObserver adds a frame observer.
func WithObserver(o FrameObserver) EngineOption {
	return func(c *engineConfig) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithClock replaces the default animation clock.
func WithClock(clock *timectrl.AnimationClock) EngineOption {
	return func(c *engineConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithCamera sets the camera used to turn pointer events into rays.
func WithCamera(cam Camera) EngineOption {
	return func(c *engineConfig) { c.camera = cam }
}

// WithIntersector replaces SphereIntersector.
func WithIntersector(in Intersector) EngineOption {
	return func(c *engineConfig) { c.intersector = in }
}

// WithPanel sets the info panel collaborator.
func WithPanel(p Panel) EngineOption {
	return func(c *engineConfig) { c.panel = p }
}

// WithNavigation sets the orbit-style and fly-style controllers.
func WithNavigation(orbit, fly NavigationController) EngineOption {
	return func(c *engineConfig) { c.orbit, c.fly = orbit, fly }
}

// Engine steps a built scene. Every entry point takes the same lock, so a
// frame step never interleaves with a pick or a toggle.
type Engine struct {
	mu sync.Mutex

	scene  *Scene
	clock  *timectrl.AnimationClock
	kin    *Kinematics
	picker *Picker
	nav    *NavigationSwitch

	log       logging.Logger
	metrics   MetricsRecorder
	observers []FrameObserver
	tracer    trace.Tracer

	frames uint64
	last   *Frame
}

// NewEngine wraps a built scene.
func NewEngine(sc *Scene, opts ...EngineOption) *Engine {
	cfg := engineConfig{
		log:     logging.Noop(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = timectrl.NewAnimationClock(timectrl.DefaultAcceleration)
	}
	if cfg.camera == nil {
		cfg.camera = NewPerspectiveCamera(1)
	}

	e := &Engine{
		scene:     sc,
		clock:     cfg.clock,
		kin:       NewKinematics(sc.Registry, sc.Barycenter),
		picker:    NewPicker(sc.Registry, cfg.camera, cfg.intersector, cfg.panel),
		nav:       NewNavigationSwitch(cfg.orbit, cfg.fly),
		log:       cfg.log,
		metrics:   cfg.metrics,
		observers: cfg.observers,
		tracer:    otel.Tracer("github.com/signalsfoundry/orrery/core"),
	}

	stars, planets, moons := sc.Registry.Counts()
	e.metrics.SetBodyCount(model.KindStar.String(), stars)
	e.metrics.SetBodyCount(model.KindPlanet.String(), planets)
	e.metrics.SetBodyCount(model.KindMoon.String(), moons)

	e.kin.UpdatePositions(e.clock.SimTime())
	e.last = e.snapshotLocked()
	return e
}

// Scene returns the scene the engine drives.
func (e *Engine) Scene() *Scene { return e.scene }

// Advance steps one frame of wall duration dt. Body poses move only while
// unpaused; belt spin, star shader time and texture scroll always advance.
func (e *Engine) Advance(ctx context.Context, dt time.Duration) *Frame {
	start := time.Now()

	e.mu.Lock()
	sim, wall := e.clock.Advance(dt)
	paused := e.clock.Paused()
	if !paused {
		e.kin.UpdatePositions(sim)
	}
	e.kin.UpdateEffects(wall.Seconds())
	e.nav.Update(dt)
	e.frames++
	f := e.snapshotLocked()
	e.last = f
	e.mu.Unlock()

	e.metrics.ObserveFrame(time.Since(start), paused)
	e.metrics.SetSimTime(sim)

	for _, o := range e.observers {
		if err := o.OnFrame(ctx, f); err != nil {
			e.log.Warn(ctx, "frame observer failed",
				logging.Int("frame", int(f.Index)),
				logging.Err(err),
			)
		}
	}
	return f
}

// Attach drives the engine from loop and hands each frame to r.
func (e *Engine) Attach(ctx context.Context, loop *timectrl.FrameLoop, r Renderer) {
	loop.AddListener(func(dt time.Duration) {
		f := e.Advance(ctx, dt)
		if r == nil {
			return
		}
		if err := r.Render(ctx, f); err != nil {
			e.log.Error(ctx, "render failed", logging.Err(err))
		}
	})
}

// Snapshot returns the most recent frame.
func (e *Engine) Snapshot() *Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Pick selects the nearest body under the pointer.
func (e *Engine) Pick(ctx context.Context, px, py float64, vp Viewport) (Selection, bool) {
	_, span := e.tracer.Start(ctx, "orrery.Pick", trace.WithAttributes(
		attribute.Float64("pointer.x", px),
		attribute.Float64("pointer.y", py),
	))
	defer span.End()

	e.mu.Lock()
	sel, hit := e.picker.Pick(px, py, vp)
	e.mu.Unlock()

	span.SetAttributes(attribute.Bool("pick.hit", hit))
	if hit {
		span.SetAttributes(attribute.String("pick.body", sel.Name))
		e.log.Debug(ctx, "body picked",
			logging.String("body", sel.Name),
			logging.Float("ray_distance", sel.RayDistance),
		)
	}
	e.metrics.ObservePick(hit)
	return sel, hit
}

// Select presents a body by name.
func (e *Engine) Select(name string) (Selection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.picker.Select(name)
}

// Selected returns the current selection, if any.
func (e *Engine) Selected() (Selection, bool) {
	return e.picker.Selected()
}

// Dismiss closes the info panel.
func (e *Engine) Dismiss() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.picker.Dismiss()
}

// SetPaused sets the pause flag read by the next frame.
func (e *Engine) SetPaused(p bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock.SetPaused(p)
}

// TogglePause flips the pause flag and returns the new value.
func (e *Engine) TogglePause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.TogglePause()
}

// Paused reports the pause flag.
func (e *Engine) Paused() bool { return e.clock.Paused() }

// ToggleNavigation switches the active camera controller.
func (e *Engine) ToggleNavigation() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.Toggle()
}

// NavigationMode returns the active controller label.
func (e *Engine) NavigationMode() string { return e.nav.Mode() }

func (e *Engine) snapshotLocked() *Frame {
	reg := e.scene.Registry
	f := &Frame{
		Index:      e.frames,
		SimTime:    e.clock.SimTime(),
		Wall:       e.clock.Wall(),
		Paused:     e.clock.Paused(),
		Navigation: e.nav.Mode(),
		BeltAngle:  reg.Belt().Angle(),
		Scene:      e.scene,
	}
	for _, body := range reg.Pickables() {
		b := body.Base()
		pose := BodyPose{Name: b.Name, Kind: body.Kind(), Radius: b.Radius, Color: b.Color}
		if b.Mesh != nil {
			pose.Position = b.Mesh.WorldPosition()
		}
		f.Bodies = append(f.Bodies, pose)
	}
	for _, s := range reg.Stars() {
		f.Stars = append(f.Stars, StarEffect{
			Name:           s.Name,
			ShaderTime:     s.Shader.Time,
			TextureOffsetX: s.TextureOffsetX,
		})
	}
	return f
}
