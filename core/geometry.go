package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ray is a half-line from Origin along Dir. Dir need not be normalized;
// ray parameters are in units of |Dir|.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// At returns the point Origin + t·Dir.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// Normalized returns r with a unit direction, so that ray parameters are
// world distances.
func (r Ray) Normalized() Ray {
	n := r3.Norm(r.Dir)
	if n == 0 {
		return r
	}
	return Ray{Origin: r.Origin, Dir: r3.Scale(1/n, r.Dir)}
}

// intersectSphere returns the smallest non-negative t at which r enters
// or touches the sphere. A ray starting inside the sphere hits at its exit
// point.
func intersectSphere(r Ray, center r3.Vec, radius float64) (float64, bool) {
	a := r3.Dot(r.Dir, r.Dir)
	if a == 0 {
		return 0, false
	}
	oc := r3.Sub(r.Origin, center)
	halfB := r3.Dot(oc, r.Dir)
	c := r3.Dot(oc, oc) - radius*radius

	disc := halfB*halfB - a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)

	t := (-halfB - sq) / a
	if t < 0 {
		t = (-halfB + sq) / a
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
