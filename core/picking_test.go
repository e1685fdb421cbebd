package core

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/orrery/kb"
	"github.com/signalsfoundry/orrery/model"
	"github.com/signalsfoundry/orrery/scene"
)

type recordingPanel struct {
	presented []Selection
	dismissed int
}

func (p *recordingPanel) Present(s Selection) { p.presented = append(p.presented, s) }
func (p *recordingPanel) Dismiss()            { p.dismissed++ }

// fixedHits reports a preset ray parameter per body name.
type fixedHits map[string]float64

func (h fixedHits) Intersect(_ Ray, body model.Celestial) (float64, bool) {
	t, ok := h[body.Base().Name]
	return t, ok
}

type fixedCamera struct{ ray Ray }

func (c fixedCamera) Ray(float64, float64) Ray { return c.ray }

func twoBodyRegistry(t *testing.T) *kb.Registry {
	t.Helper()
	reg := kb.NewRegistry()
	far := &model.Star{Body: model.Body{Name: "far", Radius: 1, Color: 0xff0000}}
	far.Mesh = scene.NewMesh("far", scene.Sphere{Radius: 1}, &scene.Material{Color: model.Color(0xff0000).Colorful()})
	planet := &model.Planet{
		Body: model.Body{Name: "near", Radius: 1, Orbit: model.Orbit{Dist: 32, Speed: 1}},
		Incl: 20 * math.Pi / 180,
	}
	planet.Mesh = scene.NewMesh("near", scene.Sphere{Radius: 1}, &scene.Material{Color: model.Color(0xcad7ff).Colorful()})

	if _, err := reg.RegisterStar(far); err != nil {
		t.Fatalf("RegisterStar error: %v", err)
	}
	if _, err := reg.RegisterPlanet(planet); err != nil {
		t.Fatalf("RegisterPlanet error: %v", err)
	}
	return reg
}

func TestPickSelectsNearestHit(t *testing.T) {
	reg := twoBodyRegistry(t)
	panel := &recordingPanel{}
	p := NewPicker(reg, fixedCamera{}, fixedHits{"far": 7.5, "near": 3.0}, panel)

	sel, ok := p.Pick(400, 300, Viewport{Width: 800, Height: 600})
	if !ok {
		t.Fatalf("expected a hit")
	}
	if sel.Name != "near" || sel.RayDistance != 3.0 {
		t.Fatalf("selection = %s at %v, want near at 3.0", sel.Name, sel.RayDistance)
	}
	if len(panel.presented) != 1 || panel.presented[0].Name != "near" {
		t.Fatalf("panel presented %+v", panel.presented)
	}
}

func TestPickMissLeavesSelection(t *testing.T) {
	reg := twoBodyRegistry(t)
	panel := &recordingPanel{}
	hits := fixedHits{"far": 7.5}
	p := NewPicker(reg, fixedCamera{}, hits, panel)

	if _, ok := p.Pick(1, 1, Viewport{Width: 10, Height: 10}); !ok {
		t.Fatalf("expected first pick to hit")
	}
	delete(hits, "far")

	if _, ok := p.Pick(1, 1, Viewport{Width: 10, Height: 10}); ok {
		t.Fatalf("expected miss")
	}
	if len(panel.presented) != 1 {
		t.Fatalf("panel presented %d times, want 1", len(panel.presented))
	}
	if sel, ok := p.Selected(); !ok || sel.Name != "far" {
		t.Fatalf("selection after miss = %+v, %v", sel, ok)
	}
}

func TestDescribeFormatsPanelFields(t *testing.T) {
	reg := twoBodyRegistry(t)
	body, err := reg.Lookup("near")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}

	sel := Describe(body)
	if sel.Display.Distance != "32.00" || sel.Display.Speed != "1.000" || sel.Display.Inclination != "20.0°" {
		t.Fatalf("display = %+v", sel.Display)
	}
	if sel.ColorHex != "#cad7ff" || sel.Kind != model.KindPlanet {
		t.Fatalf("selection = %+v", sel)
	}
}

func TestDescribeWithoutMaterialUsesPlaceholder(t *testing.T) {
	sel := Describe(&model.Moon{Body: model.Body{Name: "bare"}})
	if sel.ColorHex != NoColor || sel.Display.Color != NoColor {
		t.Fatalf("color = %q, want placeholder", sel.ColorHex)
	}
}

func TestSelectByNameAndDismiss(t *testing.T) {
	reg := twoBodyRegistry(t)
	panel := &recordingPanel{}
	p := NewPicker(reg, fixedCamera{}, nil, panel)

	if _, err := p.Select("missing"); !errors.Is(err, kb.ErrBodyNotFound) {
		t.Fatalf("Select(missing) err = %v", err)
	}
	if _, err := p.Select("far"); err != nil {
		t.Fatalf("Select error: %v", err)
	}
	p.Dismiss()
	if panel.dismissed != 1 {
		t.Fatalf("dismissed = %d, want 1", panel.dismissed)
	}
	if sel, ok := p.Selected(); !ok || sel.Name != "far" {
		t.Fatalf("selection lost on dismiss: %+v", sel)
	}
}

func TestNDC(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	tests := []struct {
		px, py float64
		x, y   float64
	}{
		{0, 0, -1, 1},
		{800, 600, 1, -1},
		{400, 300, 0, 0},
		{200, 450, -0.5, -0.5},
	}
	for _, tt := range tests {
		x, y := NDC(tt.px, tt.py, vp)
		if x != tt.x || y != tt.y {
			t.Fatalf("NDC(%v,%v) = %v,%v, want %v,%v", tt.px, tt.py, x, y, tt.x, tt.y)
		}
	}
}

func TestSphereIntersectorUsesWorldPosition(t *testing.T) {
	reg := kb.NewRegistry()
	g := scene.NewGraph()
	for _, tc := range []struct {
		name string
		z    float64
	}{{"back", 8.5}, {"front", 4}} {
		s := &model.Star{Body: model.Body{Name: tc.name, Radius: 1}}
		s.Mesh = g.Root.MustAddChild(scene.NewMesh(tc.name, scene.Sphere{Radius: 1}, nil))
		s.Mesh.Position = r3.Vec{Z: tc.z}
		if _, err := reg.RegisterStar(s); err != nil {
			t.Fatalf("RegisterStar error: %v", err)
		}
	}

	p := NewPicker(reg, nil, nil, nil)
	sel, ok := p.PickRay(Ray{Dir: r3.Vec{Z: 2}})
	if !ok || sel.Name != "front" {
		t.Fatalf("PickRay = %+v, %v, want front", sel, ok)
	}
	if math.Abs(sel.RayDistance-3) > eps {
		t.Fatalf("ray distance = %v, want 3", sel.RayDistance)
	}
}

func TestIntersectSphere(t *testing.T) {
	r := Ray{Dir: r3.Vec{X: 1}}
	if tHit, ok := intersectSphere(r, r3.Vec{X: 10}, 2); !ok || math.Abs(tHit-8) > eps {
		t.Fatalf("hit = %v, %v, want 8", tHit, ok)
	}
	if _, ok := intersectSphere(r, r3.Vec{X: -10}, 2); ok {
		t.Fatalf("sphere behind the ray should not hit")
	}
	if _, ok := intersectSphere(r, r3.Vec{X: 10, Y: 3}, 2); ok {
		t.Fatalf("offset sphere should not hit")
	}
	if tHit, ok := intersectSphere(r, r3.Vec{}, 2); !ok || math.Abs(tHit-2) > eps {
		t.Fatalf("inside hit = %v, %v, want exit at 2", tHit, ok)
	}
}

func TestPerspectiveCameraCenterRay(t *testing.T) {
	cam := NewPerspectiveCamera(16.0 / 9)
	r := cam.Ray(0, 0)
	want := r3.Unit(r3.Sub(r3.Vec{}, DefaultCameraPosition))
	if !near(r.Dir, want) || r.Origin != DefaultCameraPosition {
		t.Fatalf("center ray = %+v, want dir %v", r, want)
	}

	up := cam.Ray(0, 1)
	if up.Dir.Y <= r.Dir.Y {
		t.Fatalf("ray through top edge should point higher: %v vs %v", up.Dir, r.Dir)
	}
}
