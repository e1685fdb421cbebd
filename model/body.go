package model

import (
	"github.com/signalsfoundry/orrery/scene"
)

// BodyKind tags the three celestial body variants.
type BodyKind int

const (
	KindUnknown BodyKind = iota
	KindStar
	KindPlanet
	KindMoon
)

func (k BodyKind) String() string {
	switch k {
	case KindStar:
		return "star"
	case KindPlanet:
		return "planet"
	case KindMoon:
		return "moon"
	default:
		return "unknown"
	}
}

// Orbit holds the parametric ellipse shared by every body. Angles are in
// radians; Speed is radians per simulated time unit.
type Orbit struct {
	Dist  float64
	Speed float64
	F1    float64
	F2    float64
	Phase float64
}

// Factors returns F1 and F2, substituting 1 for unset values.
func (o Orbit) Factors() (f1, f2 float64) {
	f1, f2 = o.F1, o.F2
	if f1 == 0 {
		f1 = 1
	}
	if f2 == 0 {
		f2 = 1
	}
	return f1, f2
}

// Axes returns the two ellipse semi-axes, f1·dist and f2·dist.
func (o Orbit) Axes() (a, b float64) {
	f1, f2 := o.Factors()
	return f1 * o.Dist, f2 * o.Dist
}

// Body is the field set common to stars, planets and moons.
type Body struct {
	Name   string
	Radius float64
	Orbit  Orbit
	Color  Color
	// Texture is the identifier passed to the asset collaborator.
	Texture string

	// Mesh is the pickable node whose pose the kinematics write.
	Mesh *scene.Node
}

// Celestial is implemented by *Star, *Planet and *Moon.
type Celestial interface {
	Base() *Body
	Kind() BodyKind
	// Inclination is the orbital plane tilt in radians; stars report 0.
	Inclination() float64
}

// Star orbits a point in the reference plane, not another body.
type Star struct {
	Body

	CenterX float64
	CenterZ float64
	// OrbitRotationDivisor rotates the star's orbit curve by π/divisor
	// about X.
	OrbitRotationDivisor float64

	Light *scene.Node
	Glow  *scene.Node

	Shader         ShaderUniforms
	TextureOffsetX float64
}

// ShaderUniforms drives the star surface-noise effect.
type ShaderUniforms struct {
	Time      float64
	StarColor [3]float64
}

func (s *Star) Base() *Body          { return &s.Body }
func (s *Star) Kind() BodyKind       { return KindStar }
func (s *Star) Inclination() float64 { return 0 }

// Planet orbits its host star or, with no host, the barycenter.
type Planet struct {
	Body

	Incl float64
	// Host is a non-owning reference; zero means the barycenter.
	Host StarHandle
}

func (p *Planet) Base() *Body          { return &p.Body }
func (p *Planet) Kind() BodyKind       { return KindPlanet }
func (p *Planet) Inclination() float64 { return p.Incl }

// Moon orbits its host planet. Its Mesh is owned by Pivot, and Pivot is
// owned by the host planet's Mesh.
type Moon struct {
	Body

	Incl  float64
	Host  PlanetHandle
	Pivot *scene.Node
}

func (m *Moon) Base() *Body          { return &m.Body }
func (m *Moon) Kind() BodyKind       { return KindMoon }
func (m *Moon) Inclination() float64 { return m.Incl }
