package term

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/model"
	"github.com/signalsfoundry/orrery/timectrl"
)

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	s.SetSize(80, 24)
	t.Cleanup(s.Fini)
	return s
}

// twoBodyTable puts a static star at the origin and a static planet 41.25
// units along +X, so both sit in known cells at DefaultScale.
func twoBodyTable() model.SceneTable {
	return model.SceneTable{Rows: []model.Row{
		{Star: &model.StarDef{Name: "Sol", Radius: 5, F1: 1, F2: 1, Color: 0xffcc00}},
		{Planet: &model.PlanetDef{Name: "Far", Radius: 3, Dist: 41.25, F1: 1, F2: 1, Color: 0x3366ff}},
	}}
}

func newTestViewer(t *testing.T) (*Viewer, *core.Engine, tcell.SimulationScreen) {
	t.Helper()
	screen := newTestScreen(t)
	sc, err := core.BuildScene(t.Context(), twoBodyTable(), core.WithBarycenter(r3.Vec{}))
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	v := NewViewer(screen, r2.Vec{}, nil)
	e := core.NewEngine(sc, v.EngineOptions()...)
	v.Bind(e)
	return v, e, screen
}

func cellRune(s tcell.SimulationScreen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func rowText(s tcell.SimulationScreen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		b.WriteRune(cellRune(s, x, y))
	}
	return b.String()
}

func press(x, y int) *tcell.EventMouse {
	return tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone)
}

func release(x, y int) *tcell.EventMouse {
	return tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone)
}

func TestMouseClickPicksBodyInCell(t *testing.T) {
	v, e, _ := newTestViewer(t)
	ctx := t.Context()

	col, row, ok := v.View().Project(r3.Vec{X: 41.25})
	if !ok || col != 56 || row != 12 {
		t.Fatalf("planet cell = (%d,%d) ok=%v", col, row, ok)
	}

	v.HandleEvent(ctx, press(col, row))
	sel, ok := e.Selected()
	if !ok || sel.Name != "Far" {
		t.Fatalf("selected = %+v, %v, want Far", sel, ok)
	}
	if shown, visible := v.Panel().Visible(); !visible || shown.Name != "Far" {
		t.Fatalf("panel shows %q visible=%v", shown.Name, visible)
	}
}

func TestMousePickOnlyOnPressEdge(t *testing.T) {
	v, _, _ := newTestViewer(t)
	picks := &fakeEngine{}
	v.Bind(picks)
	ctx := t.Context()

	v.HandleEvent(ctx, press(10, 10))
	v.HandleEvent(ctx, press(11, 10)) // drag
	v.HandleEvent(ctx, release(11, 10))
	v.HandleEvent(ctx, press(40, 12))

	if len(picks.picks) != 2 {
		t.Fatalf("picks = %d, want 2", len(picks.picks))
	}
	last := picks.picks[1]
	if last.px != 40.5 || last.py != 12.5 || last.vp.Width != 80 || last.vp.Height != 24 {
		t.Fatalf("pick = %+v", last)
	}
}

func TestMissedClickKeepsSelection(t *testing.T) {
	v, e, _ := newTestViewer(t)
	ctx := t.Context()

	v.HandleEvent(ctx, press(40, 12))
	v.HandleEvent(ctx, release(40, 12))
	v.HandleEvent(ctx, press(2, 2))

	sel, ok := e.Selected()
	if !ok || sel.Name != "Sol" {
		t.Fatalf("selected = %+v, %v, want Sol to survive a miss", sel, ok)
	}
}

func TestKeyBindings(t *testing.T) {
	v, _, _ := newTestViewer(t)
	fe := &fakeEngine{}
	v.Bind(fe)
	ctx := t.Context()

	for _, r := range "pcx" {
		if v.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)) {
			t.Fatalf("%q should not quit", r)
		}
	}
	if fe.pauses != 1 || fe.toggles != 1 || fe.dismissals != 1 {
		t.Fatalf("engine calls = %+v", fe)
	}

	for _, ev := range []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone),
	} {
		if !v.HandleEvent(ctx, ev) {
			t.Fatalf("%v should quit", ev.Name())
		}
	}
}

func TestNavigationKeysFollowActiveController(t *testing.T) {
	v, e, _ := newTestViewer(t)
	ctx := t.Context()

	v.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModNone))
	if v.View().Scale() != DefaultScale*ZoomIn {
		t.Fatalf("orbit zoom: scale = %v", v.View().Scale())
	}

	v.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone))
	if e.NavigationMode() != core.NavFly {
		t.Fatalf("mode = %s, want %s", e.NavigationMode(), core.NavFly)
	}
	v.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	e.Advance(ctx, 100*time.Millisecond)
	if v.View().Center().X <= 0 {
		t.Fatalf("fly controller did not pan right: %v", v.View().Center())
	}

	v.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone))
	if !e.Paused() {
		t.Fatalf("p should pause the engine")
	}
}

func TestRendererDrawsBodiesStatusAndPanel(t *testing.T) {
	v, e, screen := newTestViewer(t)
	ctx := t.Context()

	f := e.Advance(ctx, 16*time.Millisecond)
	if err := v.Renderer().Render(ctx, f); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := cellRune(screen, 40, 12); got != StarGlyph {
		t.Fatalf("star cell = %q, want %q", got, StarGlyph)
	}
	if got := cellRune(screen, 56, 12); got != PlanetGlyph {
		t.Fatalf("planet cell = %q, want %q", got, PlanetGlyph)
	}
	status := rowText(screen, 23)
	if !strings.HasPrefix(status, " t=") || !strings.Contains(status, "running | "+core.NavOrbit) {
		t.Fatalf("status line = %q", status)
	}
	if got := cellRune(screen, 80-panelWidth, 0); got == '┌' {
		t.Fatalf("panel drawn with nothing selected")
	}

	if _, err := e.Select("Far"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	e.SetPaused(true)
	if err := v.Renderer().Render(ctx, e.Advance(ctx, 16*time.Millisecond)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := cellRune(screen, 80-panelWidth, 0); got != '┌' {
		t.Fatalf("panel corner = %q", got)
	}
	if got := rowText(screen, 1); !strings.Contains(got, "Far") {
		t.Fatalf("panel title row = %q", got)
	}
	if got := rowText(screen, 5); !strings.Contains(got, "#3366ff") || cellRune(screen, 80-3, 5) != '█' {
		t.Fatalf("panel color row = %q", got)
	}
	if status := rowText(screen, 23); !strings.Contains(status, "paused") {
		t.Fatalf("status line = %q", status)
	}
}

func TestRunQuitsOnKey(t *testing.T) {
	v, e, screen := newTestViewer(t)
	loop := timectrl.NewFrameLoop(5*time.Millisecond, timectrl.RealTime)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	if err := v.Run(ctx, e, loop); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("Run returned only after the timeout")
	}
}

type pickCall struct {
	px, py float64
	vp     core.Viewport
}

type fakeEngine struct {
	picks      []pickCall
	pauses     int
	toggles    int
	dismissals int
}

func (f *fakeEngine) Pick(_ context.Context, px, py float64, vp core.Viewport) (core.Selection, bool) {
	f.picks = append(f.picks, pickCall{px: px, py: py, vp: vp})
	return core.Selection{}, false
}

func (f *fakeEngine) TogglePause() bool {
	f.pauses++
	return f.pauses%2 == 1
}

func (f *fakeEngine) ToggleNavigation() string {
	f.toggles++
	return core.NavFly
}

func (f *fakeEngine) NavigationMode() string { return core.NavOrbit }

func (f *fakeEngine) Dismiss() { f.dismissals++ }
