package model

import "github.com/signalsfoundry/orrery/scene"

// Belt is a decorative ring of asteroids owned by one planet. It has no
// per-asteroid motion; the whole group spins about Y.
type Belt struct {
	Host PlanetHandle

	InnerRadius float64
	OuterRadius float64
	Count       int
	// RotationRate is added to the group's Y rotation every frame.
	RotationRate float64

	Group *scene.Node
}

// Angle is the current whole-group rotation about Y.
func (b *Belt) Angle() float64 {
	if b == nil || b.Group == nil {
		return 0
	}
	return b.Group.Rotation.Y
}
