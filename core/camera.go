package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera turns normalized device coordinates into a world-space ray.
type Camera interface {
	Ray(ndcX, ndcY float64) Ray
}

// Perspective defaults of the viewer.
const (
	DefaultFOV  = 90.0
	DefaultNear = 0.1
	DefaultFar  = 1000.0
)

// DefaultCameraPosition is where the viewer starts.
var DefaultCameraPosition = r3.Vec{X: 0, Y: 10, Z: 100}

// PerspectiveCamera is a pinhole camera looking from Position at Target.
type PerspectiveCamera struct {
	Position r3.Vec
	Target   r3.Vec
	Up       r3.Vec
	// FOV is the vertical field of view in degrees.
	FOV    float64
	Aspect float64
	Near   float64
	Far    float64
}

// NewPerspectiveCamera returns the default viewer camera for the given
// aspect ratio, aimed at the origin.
func NewPerspectiveCamera(aspect float64) *PerspectiveCamera {
	return &PerspectiveCamera{
		Position: DefaultCameraPosition,
		Up:       r3.Vec{Y: 1},
		FOV:      DefaultFOV,
		Aspect:   aspect,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
}

// Ray casts from the camera position through the NDC point.
func (c *PerspectiveCamera) Ray(ndcX, ndcY float64) Ray {
	up := c.Up
	if up == (r3.Vec{}) {
		up = r3.Vec{Y: 1}
	}
	aspect := c.Aspect
	if aspect == 0 {
		aspect = 1
	}

	forward := r3.Unit(r3.Sub(c.Target, c.Position))
	right := r3.Unit(r3.Cross(forward, up))
	trueUp := r3.Cross(right, forward)

	tanHalf := math.Tan(c.FOV * math.Pi / 360)
	dir := r3.Add(forward, r3.Add(
		r3.Scale(ndcX*tanHalf*aspect, right),
		r3.Scale(ndcY*tanHalf, trueUp),
	))
	return Ray{Origin: c.Position, Dir: r3.Unit(dir)}
}
