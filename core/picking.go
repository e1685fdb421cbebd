package core

import (
	"fmt"
	"math"
	"sync"

	"github.com/signalsfoundry/orrery/kb"
	"github.com/signalsfoundry/orrery/model"
)

// NoColor is shown when a body's color cannot be derived.
const NoColor = "—"

// Intersector tests a ray against one pickable body and reports the ray
// parameter of the nearest hit.
type Intersector interface {
	Intersect(r Ray, body model.Celestial) (float64, bool)
}

// SphereIntersector treats each body as a sphere of its radius around the
// world position of its mesh.
type SphereIntersector struct{}

func (SphereIntersector) Intersect(r Ray, body model.Celestial) (float64, bool) {
	b := body.Base()
	if b.Mesh == nil || b.Mesh.Destroyed() {
		return 0, false
	}
	return intersectSphere(r.Normalized(), b.Mesh.WorldPosition(), b.Radius)
}

// Panel is the info panel collaborator.
type Panel interface {
	Present(Selection)
	Dismiss()
}

// Viewport is the size of the pointer surface in pixels (or cells).
type Viewport struct {
	Width  float64
	Height float64
}

// NDC maps a pointer position to normalized device coordinates: x grows
// right, y grows up, both in [-1, 1].
func NDC(px, py float64, vp Viewport) (x, y float64) {
	if vp.Width == 0 || vp.Height == 0 {
		return 0, 0
	}
	return px/vp.Width*2 - 1, -(py/vp.Height)*2 + 1
}

// Selection is what the panel shows for a picked body.
type Selection struct {
	Name               string
	Kind               model.BodyKind
	Distance           float64
	Speed              float64
	InclinationDegrees float64
	ColorHex           string

	// RayDistance is the ray parameter of the hit; zero for selections
	// made by name.
	RayDistance float64

	Display SelectionDisplay
}

// SelectionDisplay holds the formatted panel strings.
type SelectionDisplay struct {
	Distance    string
	Speed       string
	Inclination string
	Color       string
}

// Describe derives the panel fields of a body.
func Describe(body model.Celestial) Selection {
	b := body.Base()
	incl := body.Inclination() * 180 / math.Pi

	color := NoColor
	if b.Mesh != nil && b.Mesh.Material != nil {
		color = b.Mesh.Material.Color.Hex()
	}

	return Selection{
		Name:               b.Name,
		Kind:               body.Kind(),
		Distance:           b.Orbit.Dist,
		Speed:              b.Orbit.Speed,
		InclinationDegrees: incl,
		ColorHex:           color,
		Display: SelectionDisplay{
			Distance:    fmt.Sprintf("%.2f", b.Orbit.Dist),
			Speed:       fmt.Sprintf("%.3f", b.Orbit.Speed),
			Inclination: fmt.Sprintf("%.1f°", incl),
			Color:       color,
		},
	}
}

// Picker resolves pointer events to bodies and drives the panel.
type Picker struct {
	mu sync.Mutex

	registry    *kb.Registry
	camera      Camera
	intersector Intersector
	panel       Panel

	selected *Selection
}

// NewPicker wires a picker. A nil intersector means SphereIntersector; a
// nil panel is allowed.
func NewPicker(reg *kb.Registry, cam Camera, in Intersector, panel Panel) *Picker {
	if in == nil {
		in = SphereIntersector{}
	}
	return &Picker{registry: reg, camera: cam, intersector: in, panel: panel}
}

// Pick casts a ray through the pointer position and selects the nearest
// body it hits. On a miss nothing changes and the panel is not touched.
func (p *Picker) Pick(px, py float64, vp Viewport) (Selection, bool) {
	x, y := NDC(px, py, vp)
	return p.PickRay(p.camera.Ray(x, y))
}

// PickRay is Pick for an already computed ray.
func (p *Picker) PickRay(r Ray) (Selection, bool) {
	var (
		best  model.Celestial
		bestT = math.Inf(1)
	)
	for _, body := range p.registry.Pickables() {
		t, ok := p.intersector.Intersect(r, body)
		if ok && t < bestT {
			best, bestT = body, t
		}
	}
	if best == nil {
		return Selection{}, false
	}

	sel := Describe(best)
	sel.RayDistance = bestT
	p.present(sel)
	return sel, true
}

// Select presents the body with the given name as if it had been picked.
func (p *Picker) Select(name string) (Selection, error) {
	body, err := p.registry.Lookup(name)
	if err != nil {
		return Selection{}, err
	}
	sel := Describe(body)
	p.present(sel)
	return sel, nil
}

// Selected returns the last presented selection. It survives Dismiss.
func (p *Picker) Selected() (Selection, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return Selection{}, false
	}
	return *p.selected, true
}

// Dismiss closes the panel and keeps the selection.
func (p *Picker) Dismiss() {
	if p.panel != nil {
		p.panel.Dismiss()
	}
}

func (p *Picker) present(sel Selection) {
	p.mu.Lock()
	p.selected = &sel
	p.mu.Unlock()
	if p.panel != nil {
		p.panel.Present(sel)
	}
}
