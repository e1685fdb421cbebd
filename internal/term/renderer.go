package term

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/model"
	"github.com/signalsfoundry/orrery/scene"
)

// Glyphs per body kind.
const (
	StarGlyph     = '✸'
	PlanetGlyph   = '●'
	MoonGlyph     = '•'
	CurveGlyph    = '·'
	AsteroidGlyph = '.'
)

// Renderer draws frames on a tcell screen. It satisfies core.Renderer.
type Renderer struct {
	screen tcell.Screen
	view   *View
	panel  *Panel
}

// NewRenderer draws onto screen through view. panel may be nil.
func NewRenderer(screen tcell.Screen, view *View, panel *Panel) *Renderer {
	return &Renderer{screen: screen, view: view, panel: panel}
}

// Render draws one frame: belt, orbit curves, bodies, status line and
// panel, in that order.
func (r *Renderer) Render(_ context.Context, f *core.Frame) error {
	if f == nil {
		return nil
	}
	r.screen.Clear()

	if f.Scene != nil {
		r.drawBelt(f.Scene.Registry.Belt())
		for _, c := range f.Scene.Curves {
			r.drawCurve(c)
		}
	}
	for _, b := range f.Bodies {
		r.plot(b.Position, glyphFor(b.Kind), styleFor(b.Color))
	}
	r.drawStatus(f)
	if r.panel != nil {
		r.panel.Draw(r.screen)
	}

	r.screen.Show()
	return nil
}

func (r *Renderer) drawBelt(belt *model.Belt) {
	if belt == nil || belt.Group == nil {
		return
	}
	style := styleFor(core.AsteroidColor).Dim(true)
	for _, a := range belt.Group.Children() {
		r.plot(a.WorldPosition(), AsteroidGlyph, style)
	}
}

func (r *Renderer) drawCurve(c *model.OrbitCurve) {
	if c == nil || c.Node == nil {
		return
	}
	line, ok := c.Node.Geometry.(scene.Polyline)
	if !ok {
		return
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	if c.Node.Material != nil {
		cr, cg, cb := c.Node.Material.Color.RGB255()
		style = tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(cr), int32(cg), int32(cb)))
	}
	world := c.Node.World()
	for _, p := range line.Points {
		r.plot(world.Apply(p), CurveGlyph, style)
	}
}

func (r *Renderer) drawStatus(f *core.Frame) {
	_, height := r.screen.Size()
	state := "running"
	if f.Paused {
		state = "paused"
	}
	status := fmt.Sprintf(" t=%.2f %s | %s | p pause  c controls  x close  +/- zoom  q quit",
		f.SimTime, state, f.Navigation)
	drawText(r.screen, 0, height-1, len(status), status, tcell.StyleDefault.Reverse(true))
}

func (r *Renderer) plot(p r3.Vec, glyph rune, style tcell.Style) {
	col, row, ok := r.view.Project(p)
	if !ok {
		return
	}
	r.screen.SetContent(col, row, glyph, nil, style)
}

func glyphFor(kind model.BodyKind) rune {
	switch kind {
	case model.KindStar:
		return StarGlyph
	case model.KindPlanet:
		return PlanetGlyph
	default:
		return MoonGlyph
	}
}

func styleFor(c model.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewHexColor(int32(c)))
}
