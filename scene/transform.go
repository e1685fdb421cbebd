package scene

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	AxisX = r3.Vec{X: 1}
	AxisY = r3.Vec{Y: 1}
	AxisZ = r3.Vec{Z: 1}
)

// Identity is the rotation that leaves every vector unchanged. The zero
// r3.Rotation is not a valid rotation.
var Identity = r3.Rotation(quat.Number{Real: 1})

// Euler is an XYZ-ordered rotation in radians: the X rotation is applied
// last, matching the convention of the render collaborators.
type Euler struct {
	X, Y, Z float64
}

// Rotation converts the Euler angles to a unit quaternion.
func (e Euler) Rotation() r3.Rotation {
	q := quat.Number(Identity)
	if e.X != 0 {
		q = quat.Mul(q, quat.Number(r3.NewRotation(e.X, AxisX)))
	}
	if e.Y != 0 {
		q = quat.Mul(q, quat.Number(r3.NewRotation(e.Y, AxisY)))
	}
	if e.Z != 0 {
		q = quat.Mul(q, quat.Number(r3.NewRotation(e.Z, AxisZ)))
	}
	return r3.Rotation(q)
}

// Transform is a rigid pose: rotate, then translate.
type Transform struct {
	Rotation    r3.Rotation
	Translation r3.Vec
}

// Apply maps a point from the transform's local frame to its parent frame.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	return r3.Add(t.Rotation.Rotate(p), t.Translation)
}

// Compose returns the transform equivalent to applying child, then t.
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Rotation:    r3.Rotation(quat.Mul(quat.Number(t.Rotation), quat.Number(child.Rotation))),
		Translation: t.Apply(child.Translation),
	}
}

// RotateX rotates p about the X axis by angle radians (right-handed).
func RotateX(p r3.Vec, angle float64) r3.Vec {
	s, c := math.Sincos(angle)
	return r3.Vec{X: p.X, Y: p.Y*c - p.Z*s, Z: p.Y*s + p.Z*c}
}
