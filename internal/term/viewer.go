package term

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/internal/logging"
	"github.com/signalsfoundry/orrery/timectrl"
)

// Zoom steps for the +/- keys.
const (
	ZoomIn  = 0.8
	ZoomOut = 1.25
)

// Engine is the part of *core.Engine the key and mouse bindings drive.
type Engine interface {
	Pick(ctx context.Context, px, py float64, vp core.Viewport) (core.Selection, bool)
	TogglePause() bool
	ToggleNavigation() string
	NavigationMode() string
	Dismiss()
}

// Viewer owns the screen and wires the terminal collaborators into an
// engine.
type Viewer struct {
	screen   tcell.Screen
	view     *View
	panel    *Panel
	orbit    *OrbitController
	fly      *FlyController
	renderer *Renderer
	log      logging.Logger

	engine      Engine
	lastButtons tcell.ButtonMask
}

// NewViewer prepares an initialized screen, centered on home.
func NewViewer(screen tcell.Screen, home r2.Vec, log logging.Logger) *Viewer {
	if log == nil {
		log = logging.Noop()
	}
	w, h := screen.Size()
	view := NewView(home, w, h)
	panel := &Panel{}
	screen.EnableMouse()
	return &Viewer{
		screen:   screen,
		view:     view,
		panel:    panel,
		orbit:    NewOrbitController(view, home),
		fly:      NewFlyController(view),
		renderer: NewRenderer(screen, view, panel),
		log:      log,
	}
}

// EngineOptions returns the camera, intersector, panel and navigation
// options to pass to core.NewEngine.
func (v *Viewer) EngineOptions() []core.EngineOption {
	return []core.EngineOption{
		core.WithCamera(TopDownCamera{View: v.view}),
		core.WithIntersector(CellIntersector{View: v.view}),
		core.WithPanel(v.panel),
		core.WithNavigation(v.orbit, v.fly),
	}
}

// View returns the shared view.
func (v *Viewer) View() *View { return v.view }

// Panel returns the info panel.
func (v *Viewer) Panel() *Panel { return v.panel }

// Renderer returns the frame renderer.
func (v *Viewer) Renderer() *Renderer { return v.renderer }

// Bind sets the engine that input is forwarded to.
func (v *Viewer) Bind(e Engine) { v.engine = e }

// Run drives e from loop, renders every frame and handles input until the
// user quits or ctx is done.
func (v *Viewer) Run(ctx context.Context, e *core.Engine, loop *timectrl.FrameLoop) error {
	v.Bind(e)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.Attach(ctx, loop, v.renderer)
	done := loop.Start(ctx, 0)

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	go v.screen.ChannelEvents(events, quit)
	defer func() {
		close(quit)
		cancel()
		<-done
	}()

	v.log.Info(ctx, "viewer started", logging.String("navigation", e.NavigationMode()))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if v.HandleEvent(ctx, ev) {
				v.log.Info(ctx, "viewer closed")
				return nil
			}
		}
	}
}

// HandleEvent applies one input event and reports whether the viewer
// should quit.
func (v *Viewer) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ctx, ev)
	case *tcell.EventMouse:
		v.handleMouse(ctx, ev)
	case *tcell.EventResize:
		v.view.Resize(v.screen.Size())
		v.screen.Sync()
	}
	return false
}

func (v *Viewer) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.fly.Nudge(r2.Vec{Y: -1})
	case tcell.KeyDown:
		v.fly.Nudge(r2.Vec{Y: 1})
	case tcell.KeyLeft:
		v.fly.Nudge(r2.Vec{X: -1})
	case tcell.KeyRight:
		v.fly.Nudge(r2.Vec{X: 1})
	case tcell.KeyRune:
		return v.handleRune(ctx, ev.Rune())
	}
	return false
}

func (v *Viewer) handleRune(ctx context.Context, r rune) bool {
	switch r {
	case 'q':
		return true
	case 'p':
		if v.engine != nil {
			paused := v.engine.TogglePause()
			v.log.Debug(ctx, "pause toggled", logging.Bool("paused", paused))
		}
	case 'c':
		if v.engine != nil {
			mode := v.engine.ToggleNavigation()
			v.log.Debug(ctx, "navigation toggled", logging.String("mode", mode))
		}
	case 'x':
		if v.engine != nil {
			v.engine.Dismiss()
		}
	case '+', '=':
		v.orbit.Zoom(ZoomIn)
		v.fly.Zoom(ZoomIn)
	case '-':
		v.orbit.Zoom(ZoomOut)
		v.fly.Zoom(ZoomOut)
	case 'w':
		v.fly.Nudge(r2.Vec{Y: -1})
	case 's':
		v.fly.Nudge(r2.Vec{Y: 1})
	case 'a':
		v.fly.Nudge(r2.Vec{X: -1})
	case 'd':
		v.fly.Nudge(r2.Vec{X: 1})
	}
	return false
}

// handleMouse picks on the press edge of the primary button.
func (v *Viewer) handleMouse(ctx context.Context, ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && v.lastButtons&tcell.Button1 == 0
	v.lastButtons = buttons
	if !pressed || v.engine == nil {
		return
	}

	col, row := ev.Position()
	w, h := v.view.Size()
	vp := core.Viewport{Width: float64(w), Height: float64(h)}
	// Aim at the middle of the cell.
	sel, hit := v.engine.Pick(ctx, float64(col)+0.5, float64(row)+0.5, vp)
	if hit {
		v.log.Debug(ctx, "picked", logging.String("body", sel.Name))
	}
}
