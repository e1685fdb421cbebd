package model

import (
	"github.com/signalsfoundry/orrery/scene"
	"gonum.org/v1/gonum/spatial/r2"
)

// CurveVariant selects how an orbit curve is laid out and parented.
type CurveVariant int

const (
	// CurveStar is sampled in the local XY plane around the star's
	// ellipse center and rotated about X by π/divisor; owned by the root.
	CurveStar CurveVariant = iota + 1
	// CurveCircumbinary is sampled in the local XZ plane around the origin
	// and rotated about X by −inclination; owned by the host node.
	CurveCircumbinary
)

func (v CurveVariant) String() string {
	switch v {
	case CurveStar:
		return "star"
	case CurveCircumbinary:
		return "circumbinary"
	default:
		return "unknown"
	}
}

// OrbitCurve is the static polyline tracing a body's ellipse. It carries no
// simulation state and is never re-sampled.
type OrbitCurve struct {
	Owner   string
	Variant CurveVariant

	// Samples are the ellipse points relative to the ellipse center,
	// before any plane mapping or rotation: (a·cos θ, b·sin θ).
	Samples []r2.Vec

	Node *scene.Node
}
