package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/orrery/model"
	"github.com/signalsfoundry/orrery/scene"
)

func TestSampleEllipseSatisfiesEquation(t *testing.T) {
	tests := []struct {
		dist, f1, f2 float64
		divisions    int
	}{
		{dist: 57.14, f1: 1.2, f2: 1, divisions: StarCurveDivisions},
		{dist: 32, f1: 1, f2: 1.5, divisions: CircumbinaryCurveDivisions},
		{dist: 3.2, f1: 1.2, f2: 0.8, divisions: 7},
	}
	for _, tt := range tests {
		a, b := tt.f1*tt.dist, tt.f2*tt.dist
		pts := SampleEllipse(a, b, tt.divisions)
		if len(pts) != tt.divisions+1 {
			t.Fatalf("len = %d, want %d", len(pts), tt.divisions+1)
		}
		for i, p := range pts {
			u, v := p.X/a, p.Y/b
			if got := u*u + v*v; math.Abs(got-1) > eps {
				t.Fatalf("sample %d: (u/a)²+(v/b)² = %v, want 1", i, got)
			}
		}
		if first, last := pts[0], pts[len(pts)-1]; math.Abs(first.X-last.X) > eps || math.Abs(first.Y-last.Y) > eps {
			t.Fatalf("curve not closed: first %v last %v", first, last)
		}
	}
}

func TestStarOrbitCurveMatchesStarPath(t *testing.T) {
	s := newStar("s")
	s.Orbit.Phase = 0
	s.OrbitRotationDivisor = 2

	c := StarOrbitCurve(s)
	if c.Variant != model.CurveStar || len(c.Samples) != StarCurveDivisions+1 {
		t.Fatalf("curve = %v with %d samples", c.Variant, len(c.Samples))
	}
	if got := c.Node.Rotation.X; math.Abs(got-math.Pi/2) > eps {
		t.Fatalf("rotation.x = %v, want π/2", got)
	}

	g := scene.NewGraph()
	g.Root.MustAddChild(c.Node)
	world := c.Node.World()
	points := c.Node.Geometry.(scene.Polyline).Points

	for _, k := range []int{0, 10, 25, 37} {
		theta := 2 * math.Pi * float64(k) / StarCurveDivisions
		want := StarPosition(s, theta)
		if got := world.Apply(points[k]); !near(got, want) {
			t.Fatalf("sample %d: curve %v, star path %v", k, got, want)
		}
	}
}

func TestStarOrbitCurveDefaultsDivisor(t *testing.T) {
	s := newStar("s")
	c := StarOrbitCurve(s)
	if got := c.Node.Rotation.X; math.Abs(got-math.Pi/DefaultOrbitRotationDivisor) > eps {
		t.Fatalf("rotation.x = %v with unset divisor", got)
	}
}

func TestCircumbinaryCurveMatchesKinematics(t *testing.T) {
	o := model.Orbit{Dist: 26, Speed: 1, F1: 1.5, F2: 1.8}
	incl := -45 * math.Pi / 180

	c := CircumbinaryOrbitCurve("Aureon", o, incl, PlanetCurveColor)
	if c.Variant != model.CurveCircumbinary || len(c.Samples) != CircumbinaryCurveDivisions+1 {
		t.Fatalf("curve = %v with %d samples", c.Variant, len(c.Samples))
	}
	if got := c.Node.Material.Color.Hex(); got != "#a0a0a0" {
		t.Fatalf("curve color = %s", got)
	}
	if c.Node.Material.Opacity != CurveOpacity || !c.Node.Material.Transparent {
		t.Fatalf("curve material = %+v", c.Node.Material)
	}

	host := scene.NewNode("host")
	host.Position = r3.Vec{X: 4, Y: 1, Z: -2}
	host.MustAddChild(c.Node)
	world := c.Node.World()
	points := c.Node.Geometry.(scene.Polyline).Points

	for _, k := range []int{0, 13, 50, 99} {
		theta := 2 * math.Pi * float64(k) / CircumbinaryCurveDivisions
		want := r3.Add(host.Position, OrbitOffset(o, incl, theta))
		if got := world.Apply(points[k]); !near(got, want) {
			t.Fatalf("sample %d: curve %v, orbit %v", k, got, want)
		}
	}
}
