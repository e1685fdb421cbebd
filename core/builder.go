package core

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/orrery/internal/logging"
	"github.com/signalsfoundry/orrery/kb"
	"github.com/signalsfoundry/orrery/model"
	"github.com/signalsfoundry/orrery/scene"
)

// Star light and decoration constants.
const (
	StarLightIntensity = 1e6
	StarLightDecay     = 2
	ShadowMapSize      = 2048
	ShadowBias         = -0.001
	GlowScale          = 4

	AsteroidRadius = 0.05
	AsteroidJitter = 0.1

	SkyRadius = 500
)

// AsteroidColor is shared by every belt asteroid.
const AsteroidColor model.Color = 0x888888

// AmbientLight is the scene-wide fill light.
type AmbientLight struct {
	Color     model.Color
	Intensity float64
}

// DefaultAmbient matches the fill of the built-in system.
var DefaultAmbient = AmbientLight{Color: 0x404040, Intensity: 2}

// Scene is everything BuildScene produced.
type Scene struct {
	Registry   *kb.Registry
	Graph      *scene.Graph
	Curves     []*model.OrbitCurve
	Sky        *scene.Node
	Ambient    AmbientLight
	Barycenter r3.Vec
}

// BuildOption configures BuildScene.
type BuildOption func(*buildConfig)

type buildConfig struct {
	assets     AssetLoader
	log        logging.Logger
	seed       uint64
	barycenter r3.Vec
	shadows    bool
}

// WithAssets sets the texture loader. Defaults to PassthroughAssets.
func WithAssets(a AssetLoader) BuildOption {
	return func(c *buildConfig) {
		if a != nil {
			c.assets = a
		}
	}
}

// WithLogger sets the build logger.
func WithLogger(l logging.Logger) BuildOption {
	return func(c *buildConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSeed fixes the belt layout.
func WithSeed(seed uint64) BuildOption {
	return func(c *buildConfig) { c.seed = seed }
}

// WithBarycenter moves the point host-less planets orbit.
func WithBarycenter(p r3.Vec) BuildOption {
	return func(c *buildConfig) { c.barycenter = p }
}

// WithShadows toggles shadow casting on star lights.
func WithShadows(on bool) BuildOption {
	return func(c *buildConfig) { c.shadows = on }
}

// BuildScene registers every row of table in order, creates the owning
// nodes, orbit curves and the belt, and seats all bodies at t = 0.
//
// A row that names a host not yet registered aborts the build with an
// error matching kb.ErrDanglingHostReference.
func BuildScene(ctx context.Context, table model.SceneTable, opts ...BuildOption) (*Scene, error) {
	cfg := buildConfig{
		assets:     PassthroughAssets{},
		log:        logging.Noop(),
		seed:       1,
		barycenter: DefaultBarycenter,
		shadows:    true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("build scene: %w", ErrEmptyTable)
	}

	b := &builder{
		ctx: ctx,
		cfg: cfg,
		out: &Scene{
			Registry:   kb.NewRegistry(),
			Graph:      scene.NewGraph(),
			Ambient:    DefaultAmbient,
			Barycenter: cfg.barycenter,
		},
	}

	unsubscribe := b.out.Registry.Subscribe(func(ev kb.Event) {
		msg := "body registered"
		if ev.Type == kb.EventBeltAttached {
			msg = "belt attached"
		}
		cfg.log.Debug(ctx, msg, logging.String("kind", ev.Kind.String()), logging.String("name", ev.Name))
	})
	defer unsubscribe()

	for i, row := range table.Rows {
		var err error
		switch row.Kind() {
		case model.KindStar:
			err = b.addStar(row.Star)
		case model.KindPlanet:
			err = b.addPlanet(row.Planet)
		case model.KindMoon:
			err = b.addMoon(row.Moon)
		default:
			err = ErrInvalidRow
		}
		if err != nil {
			return nil, fmt.Errorf("build scene: row %d (%s): %w", i, row.Name(), err)
		}
	}

	if table.Belt != nil {
		if err := b.addBelt(table.Belt); err != nil {
			return nil, fmt.Errorf("build scene: belt: %w", err)
		}
	}
	if table.Sky != "" {
		b.addSky(table.Sky)
	}

	NewKinematics(b.out.Registry, cfg.barycenter).UpdatePositions(0)

	stars, planets, moons := b.out.Registry.Counts()
	cfg.log.Info(ctx, "scene built",
		logging.Int("stars", stars),
		logging.Int("planets", planets),
		logging.Int("moons", moons),
		logging.Int("curves", len(b.out.Curves)),
		logging.Int("nodes", b.out.Graph.Len()),
	)
	return b.out, nil
}

type builder struct {
	ctx context.Context
	cfg buildConfig
	out *Scene
}

func (b *builder) texture(owner, path string) string {
	if path == "" {
		return ""
	}
	h, err := b.cfg.assets.LoadTexture(path)
	if err != nil {
		b.cfg.log.Warn(b.ctx, "texture unavailable",
			logging.String("body", owner),
			logging.String("path", path),
			logging.Err(err),
		)
		return ""
	}
	return h
}

func (b *builder) addStar(d *model.StarDef) error {
	s := &model.Star{
		Body: model.Body{
			Name:   d.Name,
			Radius: d.Radius,
			Orbit: model.Orbit{
				Dist:  d.Dist,
				Speed: d.Speed,
				F1:    d.F1,
				F2:    d.F2,
				Phase: radians(d.PhaseDegrees),
			},
			Color:   d.Color,
			Texture: b.texture(d.Name, d.Texture),
		},
		CenterX:              d.CenterX,
		CenterZ:              d.CenterZ,
		OrbitRotationDivisor: d.OrbitRotationDivisor,
		Shader:               model.ShaderUniforms{StarColor: d.Color.RGB()},
	}

	s.Mesh = scene.NewMesh(d.Name, scene.Sphere{Radius: d.Radius, WidthSegments: 30, HeightSegments: 30}, &scene.Material{
		Color:    d.Color.Colorful(),
		Opacity:  1,
		Texture:  s.Texture,
		Emissive: true,
	})
	s.Light = scene.NewNode(d.Name + "/light")
	s.Light.Light = &scene.PointLight{
		Color:         d.Color.Colorful(),
		Intensity:     StarLightIntensity,
		Decay:         StarLightDecay,
		CastShadow:    b.cfg.shadows,
		ShadowMapSize: ShadowMapSize,
		ShadowBias:    ShadowBias,
	}
	s.Glow = scene.NewMesh(d.Name+"/glow", scene.Sprite{Size: d.Radius * GlowScale}, &scene.Material{
		Color:       d.Color.Colorful(),
		Opacity:     1,
		Transparent: true,
		Blending:    scene.BlendAdditive,
	})

	if _, err := b.out.Registry.RegisterStar(s); err != nil {
		return err
	}

	root := b.out.Graph.Root
	root.MustAddChild(s.Mesh)
	s.Mesh.MustAddChild(s.Light)
	s.Mesh.MustAddChild(s.Glow)

	curve := StarOrbitCurve(s)
	root.MustAddChild(curve.Node)
	b.out.Curves = append(b.out.Curves, curve)
	return nil
}

func (b *builder) addPlanet(d *model.PlanetDef) error {
	p := &model.Planet{
		Body: model.Body{
			Name:   d.Name,
			Radius: d.Radius,
			Orbit: model.Orbit{
				Dist:  d.Dist,
				Speed: d.Speed,
				F1:    d.F1,
				F2:    d.F2,
			},
			Color:   d.Color,
			Texture: b.texture(d.Name, d.Texture),
		},
		Incl: radians(d.InclinationDegrees),
	}

	var hostNode *scene.Node
	if d.Host != "" {
		h, ok := b.out.Registry.StarHandle(d.Host)
		if !ok {
			return fmt.Errorf("planet %q: star %q: %w", d.Name, d.Host, ErrUnknownHost)
		}
		p.Host = h
		hostNode = b.out.Registry.Star(h).Mesh
	}

	p.Mesh = scene.NewMesh(d.Name, scene.Sphere{Radius: d.Radius, WidthSegments: 20, HeightSegments: 20}, &scene.Material{
		Color:   d.Color.Colorful(),
		Opacity: 1,
		Texture: p.Texture,
	})

	if _, err := b.out.Registry.RegisterPlanet(p); err != nil {
		return err
	}
	// Planet poses are written in world space, so the mesh hangs off the
	// root even when it has a host star.
	b.out.Graph.Root.MustAddChild(p.Mesh)

	curve := CircumbinaryOrbitCurve(d.Name, p.Orbit, p.Incl, PlanetCurveColor)
	if hostNode == nil {
		hostNode = b.out.Graph.Root
		curve.Node.Position = b.cfg.barycenter
	}
	hostNode.MustAddChild(curve.Node)
	b.out.Curves = append(b.out.Curves, curve)
	return nil
}

func (b *builder) addMoon(d *model.MoonDef) error {
	h, ok := b.out.Registry.PlanetHandle(d.Host)
	if !ok {
		return fmt.Errorf("moon %q: planet %q: %w", d.Name, d.Host, ErrUnknownHost)
	}
	host := b.out.Registry.Planet(h)

	m := &model.Moon{
		Body: model.Body{
			Name:   d.Name,
			Radius: d.Radius,
			Orbit: model.Orbit{
				Dist:  d.Dist,
				Speed: d.Speed,
				F1:    d.F1,
				F2:    d.F2,
			},
			Color:   d.Color,
			Texture: b.texture(d.Name, d.Texture),
		},
		Incl:  radians(d.InclinationDegrees),
		Host:  h,
		Pivot: scene.NewNode(d.Name + "/pivot"),
	}
	m.Mesh = scene.NewMesh(d.Name, scene.Sphere{Radius: d.Radius, WidthSegments: 20, HeightSegments: 20}, &scene.Material{
		Color:   d.Color.Colorful(),
		Opacity: 1,
		Texture: m.Texture,
	})

	if _, err := b.out.Registry.RegisterMoon(m); err != nil {
		return err
	}
	host.Mesh.MustAddChild(m.Pivot)
	m.Pivot.MustAddChild(m.Mesh)

	curve := CircumbinaryOrbitCurve(d.Name, m.Orbit, m.Incl, MoonCurveColor)
	host.Mesh.MustAddChild(curve.Node)
	b.out.Curves = append(b.out.Curves, curve)
	return nil
}

func (b *builder) addBelt(d *model.BeltDef) error {
	h, ok := b.out.Registry.PlanetHandle(d.Host)
	if !ok {
		return fmt.Errorf("planet %q: %w", d.Host, ErrUnknownHost)
	}
	rate := d.RotationRate
	if rate == 0 {
		rate = DefaultBeltRotationRate
	}
	belt := &model.Belt{
		Host:         h,
		InnerRadius:  d.InnerRadius,
		OuterRadius:  d.OuterRadius,
		Count:        d.Count,
		RotationRate: rate,
		Group:        scene.NewNode("belt"),
	}
	if err := b.out.Registry.SetBelt(belt); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(b.cfg.seed, b.cfg.seed^0x9e3779b97f4a7c15))
	mat := &scene.Material{Color: AsteroidColor.Colorful(), Opacity: 1}
	geom := scene.Icosahedron{Radius: AsteroidRadius, Detail: 1}
	for i := range d.Count {
		angle := rng.Float64() * 2 * math.Pi
		radius := d.InnerRadius + (d.OuterRadius-d.InnerRadius)*rng.Float64()
		y := (rng.Float64()*2 - 1) * AsteroidJitter

		a := scene.NewMesh(fmt.Sprintf("belt/%d", i), geom, mat)
		a.Position = r3.Vec{X: math.Cos(angle) * radius, Y: y, Z: math.Sin(angle) * radius}
		a.Rotation = scene.Euler{X: rng.Float64() * math.Pi, Y: rng.Float64() * math.Pi}
		belt.Group.MustAddChild(a)
	}

	b.out.Registry.Planet(h).Mesh.MustAddChild(belt.Group)
	return nil
}

func (b *builder) addSky(path string) {
	sky := scene.NewMesh("sky", scene.Sphere{Radius: SkyRadius, WidthSegments: 64, HeightSegments: 64}, &scene.Material{
		Opacity: 1,
		Texture: b.texture("sky", path),
	})
	b.out.Graph.Root.MustAddChild(sky)
	b.out.Sky = sky
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
