package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/orrery/model"
	"github.com/signalsfoundry/orrery/scene"
)

const (
	StarCurveDivisions         = 50
	CircumbinaryCurveDivisions = 100

	CurveOpacity = 0.6

	DefaultOrbitRotationDivisor = 2.0
)

// Curve colors per owner kind.
const (
	StarCurveColor   model.Color = 0xffffff
	PlanetCurveColor model.Color = 0xa0a0a0
	MoonCurveColor   model.Color = 0x707070
)

// SampleEllipse returns divisions+1 points (a·cos θ, b·sin θ) for θ evenly
// spaced over [0, 2π]; the last point closes the loop.
func SampleEllipse(a, b float64, divisions int) []r2.Vec {
	if divisions < 1 {
		divisions = 1
	}
	out := make([]r2.Vec, divisions+1)
	for i := range out {
		theta := 2 * math.Pi * float64(i) / float64(divisions)
		out[i] = r2.Vec{X: a * math.Cos(theta), Y: b * math.Sin(theta)}
	}
	return out
}

// StarOrbitCurve traces a star's ellipse in the local XY plane around
// (centerX, centerZ) and tilts it by π/divisor about X. The result belongs
// under the world root.
func StarOrbitCurve(s *model.Star) *model.OrbitCurve {
	a, b := s.Orbit.Axes()
	samples := SampleEllipse(a, b, StarCurveDivisions)

	points := make([]r3.Vec, len(samples))
	for i, p := range samples {
		points[i] = r3.Vec{X: s.CenterX + p.X, Y: s.CenterZ + p.Y}
	}

	divisor := s.OrbitRotationDivisor
	if divisor == 0 {
		divisor = DefaultOrbitRotationDivisor
	}
	node := curveNode(s.Name, points, StarCurveColor)
	node.Rotation.X = math.Pi / divisor

	return &model.OrbitCurve{
		Owner:   s.Name,
		Variant: model.CurveStar,
		Samples: samples,
		Node:    node,
	}
}

// CircumbinaryOrbitCurve traces a planet or moon ellipse in the local XZ
// plane around the origin, tilted by −incl about X so that it matches the
// y = z0·sin(incl) mapping of the kinematics.
func CircumbinaryOrbitCurve(owner string, o model.Orbit, incl float64, color model.Color) *model.OrbitCurve {
	a, b := o.Axes()
	samples := SampleEllipse(a, b, CircumbinaryCurveDivisions)

	points := make([]r3.Vec, len(samples))
	for i, p := range samples {
		points[i] = r3.Vec{X: p.X, Z: p.Y}
	}

	node := curveNode(owner, points, color)
	node.Rotation.X = -incl

	return &model.OrbitCurve{
		Owner:   owner,
		Variant: model.CurveCircumbinary,
		Samples: samples,
		Node:    node,
	}
}

func curveNode(owner string, points []r3.Vec, color model.Color) *scene.Node {
	return scene.NewMesh(owner+"/orbit", scene.Polyline{Points: points}, &scene.Material{
		Color:       color.Colorful(),
		Opacity:     CurveOpacity,
		Transparent: true,
	})
}
