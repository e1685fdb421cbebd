package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/orrery/kb"
	"github.com/signalsfoundry/orrery/model"
)

// DefaultBarycenter is the point host-less planets orbit.
var DefaultBarycenter = r3.Vec{X: 1, Y: 0, Z: 1}

// MotionModel writes a body's pose for a given simulated time.
type MotionModel interface {
	UpdatePosition(simTime float64)
}

// StarMotionModel moves a star around its ellipse center in the XZ plane.
type StarMotionModel struct {
	Star *model.Star
}

func (m *StarMotionModel) UpdatePosition(simTime float64) {
	s := m.Star
	if s.Mesh == nil {
		return
	}
	p := StarPosition(s, simTime)
	s.Mesh.Position.X = p.X
	s.Mesh.Position.Z = p.Z
}

// PlanetMotionModel places a planet relative to its host star's current
// world position, or the barycenter when it has none.
type PlanetMotionModel struct {
	Planet     *model.Planet
	Host       *model.Star
	Barycenter r3.Vec
}

func (m *PlanetMotionModel) UpdatePosition(simTime float64) {
	p := m.Planet
	if p.Mesh == nil {
		return
	}
	center := m.Barycenter
	if m.Host != nil && m.Host.Mesh != nil {
		center = m.Host.Mesh.WorldPosition()
	}
	p.Mesh.Position = r3.Add(center, OrbitOffset(p.Orbit, p.Incl, simTime))
}

// MoonMotionModel writes a moon's offset local to its pivot. The host's
// motion reaches the moon through the ownership chain, never through here.
type MoonMotionModel struct {
	Moon *model.Moon
}

func (m *MoonMotionModel) UpdatePosition(simTime float64) {
	if m.Moon.Mesh == nil {
		return
	}
	m.Moon.Mesh.Position = OrbitOffset(m.Moon.Orbit, m.Moon.Incl, simTime)
}

// StarPosition evaluates a star's world position at simTime. Y is left at
// whatever the mesh currently holds.
func StarPosition(s *model.Star, simTime float64) r3.Vec {
	a := simTime*s.Orbit.Speed + s.Orbit.Phase
	ax, az := s.Orbit.Axes()
	var y float64
	if s.Mesh != nil {
		y = s.Mesh.Position.Y
	}
	return r3.Vec{
		X: s.CenterX + math.Cos(a)*ax,
		Y: y,
		Z: s.CenterZ + math.Sin(a)*az,
	}
}

// OrbitOffset is the inclined ellipse offset shared by planets and moons:
// the XZ ellipse point tilted about X by incl.
func OrbitOffset(o model.Orbit, incl, simTime float64) r3.Vec {
	a := simTime * o.Speed
	ax, az := o.Axes()
	x := math.Cos(a) * ax
	z0 := math.Sin(a) * az
	return r3.Vec{
		X: x,
		Y: z0 * math.Sin(incl),
		Z: z0 * math.Cos(incl),
	}
}

// Kinematics holds the per-body motion models in update order: every star,
// then every planet, then every moon.
type Kinematics struct {
	models []MotionModel
	stars  []*model.Star
	belt   *model.Belt
}

// NewKinematics resolves host handles once and orders the motion models.
func NewKinematics(reg *kb.Registry, barycenter r3.Vec) *Kinematics {
	k := &Kinematics{
		stars: reg.Stars(),
		belt:  reg.Belt(),
	}
	for _, s := range k.stars {
		k.models = append(k.models, &StarMotionModel{Star: s})
	}
	for _, p := range reg.Planets() {
		k.models = append(k.models, &PlanetMotionModel{
			Planet:     p,
			Host:       reg.Star(p.Host),
			Barycenter: barycenter,
		})
	}
	for _, m := range reg.Moons() {
		k.models = append(k.models, &MoonMotionModel{Moon: m})
	}
	return k
}

// UpdatePositions moves every body to its pose at simTime.
func (k *Kinematics) UpdatePositions(simTime float64) {
	for _, m := range k.models {
		m.UpdatePosition(simTime)
	}
}

// UpdateEffects advances the effects that run even while paused: star
// texture scroll, shader time and the belt spin.
func (k *Kinematics) UpdateEffects(wallSeconds float64) {
	for _, s := range k.stars {
		s.TextureOffsetX += StarTextureScroll
		s.Shader.Time = wallSeconds
	}
	if k.belt != nil && k.belt.Group != nil {
		k.belt.Group.Rotation.Y += k.belt.RotationRate
	}
}

// StarTextureScroll is the per-frame horizontal texture offset step.
const StarTextureScroll = 0.001
