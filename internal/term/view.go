// Package term is the terminal front-end: a top-down tcell renderer, a
// pointer camera, the info panel and the two navigation controllers.
package term

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// CellAspect is the height of a terminal cell in column widths.
const CellAspect = 2.0

// Zoom limits in world units per column.
const (
	MinScale     = 0.25
	MaxScale     = 20.0
	DefaultScale = 2.5
)

// View maps the world XZ plane onto terminal cells. +X is right and +Z is
// down. It is shared by the renderer, the camera and the controllers.
type View struct {
	mu     sync.RWMutex
	center r2.Vec
	scale  float64
	width  int
	height int
}

// NewView returns a view centered on center at DefaultScale.
func NewView(center r2.Vec, width, height int) *View {
	return &View{center: center, scale: DefaultScale, width: width, height: height}
}

// Resize records the screen size in cells.
func (v *View) Resize(width, height int) {
	v.mu.Lock()
	v.width, v.height = width, height
	v.mu.Unlock()
}

// Size returns the screen size in cells.
func (v *View) Size() (width, height int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// Center returns the world XZ point at the middle of the screen.
func (v *View) Center() r2.Vec {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.center
}

// SetCenter moves the middle of the screen to c.
func (v *View) SetCenter(c r2.Vec) {
	v.mu.Lock()
	v.center = c
	v.mu.Unlock()
}

// Pan shifts the center by d world units.
func (v *View) Pan(d r2.Vec) {
	v.mu.Lock()
	v.center = r2.Add(v.center, d)
	v.mu.Unlock()
}

// Scale returns world units per column.
func (v *View) Scale() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scale
}

// Zoom multiplies the scale by factor, clamped to [MinScale, MaxScale].
func (v *View) Zoom(factor float64) {
	v.mu.Lock()
	v.scale = math.Min(MaxScale, math.Max(MinScale, v.scale*factor))
	v.mu.Unlock()
}

// Project returns the cell under world point p and whether it is on screen.
func (v *View) Project(p r3.Vec) (col, row int, ok bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	x := float64(v.width)/2 + (p.X-v.center.X)/v.scale
	y := float64(v.height)/2 + (p.Z-v.center.Y)/(v.scale*CellAspect)
	col, row = int(math.Floor(x)), int(math.Floor(y))
	return col, row, col >= 0 && row >= 0 && col < v.width && row < v.height
}

// Unproject returns the world XZ point under NDC coordinates.
func (v *View) Unproject(ndcX, ndcY float64) r2.Vec {
	v.mu.RLock()
	defer v.mu.RUnlock()
	halfW := float64(v.width) / 2 * v.scale
	halfH := float64(v.height) / 2 * v.scale * CellAspect
	return r2.Vec{
		X: v.center.X + ndcX*halfW,
		Y: v.center.Y - ndcY*halfH,
	}
}
