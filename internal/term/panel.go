package term

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/signalsfoundry/orrery/core"
)

// panelWidth includes the border.
const panelWidth = 28

// Panel is the boxed info panel in the top right corner. It satisfies
// core.Panel.
type Panel struct {
	mu        sync.Mutex
	selection core.Selection
	visible   bool
}

// Present shows sel.
func (p *Panel) Present(sel core.Selection) {
	p.mu.Lock()
	p.selection = sel
	p.visible = true
	p.mu.Unlock()
}

// Dismiss hides the panel.
func (p *Panel) Dismiss() {
	p.mu.Lock()
	p.visible = false
	p.mu.Unlock()
}

// Visible reports whether the panel is shown and what it shows.
func (p *Panel) Visible() (core.Selection, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection, p.visible
}

// Lines returns the panel body.
func (p *Panel) Lines() []string {
	sel, _ := p.Visible()
	return []string{
		sel.Name,
		"Distance:    " + sel.Display.Distance,
		"Speed:       " + sel.Display.Speed,
		"Inclination: " + sel.Display.Inclination,
		"Color:       " + sel.Display.Color,
	}
}

// Draw paints the panel if it is visible.
func (p *Panel) Draw(s tcell.Screen) {
	sel, ok := p.Visible()
	if !ok {
		return
	}
	width, _ := s.Size()
	x0 := width - panelWidth
	if x0 < 0 {
		x0 = 0
	}
	lines := p.Lines()
	box := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	text := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	drawBox(s, x0, 0, panelWidth, len(lines)+2, box)
	for i, line := range lines {
		style := text
		if i == 0 {
			style = style.Bold(true)
		}
		drawText(s, x0+2, i+1, panelWidth-4, line, style)
	}

	// Swatch after the hex value.
	if sel.ColorHex != core.NoColor {
		swatch := tcell.StyleDefault.Foreground(tcell.GetColor(sel.ColorHex))
		s.SetContent(x0+panelWidth-3, len(lines), '█', nil, swatch)
	}
}

func drawBox(s tcell.Screen, x, y, w, h int, style tcell.Style) {
	for i := x + 1; i < x+w-1; i++ {
		s.SetContent(i, y, '─', nil, style)
		s.SetContent(i, y+h-1, '─', nil, style)
	}
	for j := y + 1; j < y+h-1; j++ {
		s.SetContent(x, j, '│', nil, style)
		s.SetContent(x+w-1, j, '│', nil, style)
		for i := x + 1; i < x+w-1; i++ {
			s.SetContent(i, j, ' ', nil, tcell.StyleDefault)
		}
	}
	s.SetContent(x, y, '┌', nil, style)
	s.SetContent(x+w-1, y, '┐', nil, style)
	s.SetContent(x, y+h-1, '└', nil, style)
	s.SetContent(x+w-1, y+h-1, '┘', nil, style)
}

func drawText(s tcell.Screen, x, y, limit int, text string, style tcell.Style) {
	i := 0
	for _, r := range text {
		if i >= limit {
			return
		}
		s.SetContent(x+i, y, r, nil, style)
		i++
	}
}
