package term

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/model"
)

// CameraHeight is the Y the pointer rays start from.
const CameraHeight = 1000.0

// TopDownCamera casts rays straight down -Y from above the pointer.
type TopDownCamera struct {
	View *View
}

// Ray satisfies core.Camera.
func (c TopDownCamera) Ray(ndcX, ndcY float64) core.Ray {
	p := c.View.Unproject(ndcX, ndcY)
	return core.Ray{
		Origin: r3.Vec{X: p.X, Y: CameraHeight, Z: p.Y},
		Dir:    r3.Vec{Y: -1},
	}
}

// CellIntersector hits a body whose center lies in the pointer's cell, or
// whose radius reaches the ray. It expects the vertical rays of
// TopDownCamera.
type CellIntersector struct {
	View *View
}

// Intersect satisfies core.Intersector. The ray parameter is the drop
// from the ray origin to the body's center.
func (ci CellIntersector) Intersect(r core.Ray, body model.Celestial) (float64, bool) {
	b := body.Base()
	if b.Mesh == nil {
		return 0, false
	}
	pos := b.Mesh.WorldPosition()
	d := r2.Sub(r2.Vec{X: pos.X, Y: pos.Z}, r2.Vec{X: r.Origin.X, Y: r.Origin.Z})

	s := ci.View.Scale()
	inCell := math.Abs(d.X) <= s/2 && math.Abs(d.Y) <= s*CellAspect/2
	if !inCell && r2.Norm(d) > b.Radius {
		return 0, false
	}
	t := r.Origin.Y - pos.Y
	if t < 0 {
		return 0, false
	}
	return t, true
}
