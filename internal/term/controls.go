package term

import (
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// OrbitDamping is the fraction of the distance to Home the orbit
// controller closes per second.
const OrbitDamping = 3.0

// FlySpeed is the fly controller speed in columns per second; FlyDrag is
// the fraction of velocity kept after one second without input.
const (
	FlySpeed = 40.0
	FlyDrag  = 0.05
)

// OrbitController keeps the view centered on Home and only zooms. After
// a fly session it eases the center back.
type OrbitController struct {
	mu      sync.Mutex
	view    *View
	enabled bool

	Home r2.Vec
}

// NewOrbitController returns a controller for view centered on home.
func NewOrbitController(view *View, home r2.Vec) *OrbitController {
	return &OrbitController{view: view, Home: home}
}

func (c *OrbitController) SetEnabled(on bool) {
	c.mu.Lock()
	c.enabled = on
	c.mu.Unlock()
}

func (c *OrbitController) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Update eases the view center toward Home.
func (c *OrbitController) Update(dt time.Duration) {
	if !c.Enabled() {
		return
	}
	k := math.Min(1, OrbitDamping*dt.Seconds())
	cur := c.view.Center()
	c.view.SetCenter(r2.Add(cur, r2.Scale(k, r2.Sub(c.Home, cur))))
}

// Zoom scales the view; factor < 1 zooms in.
func (c *OrbitController) Zoom(factor float64) {
	if c.Enabled() {
		c.view.Zoom(factor)
	}
}

// FlyController moves the view freely. Nudge adds velocity in screen
// directions; Update integrates it and applies drag.
type FlyController struct {
	mu       sync.Mutex
	view     *View
	enabled  bool
	velocity r2.Vec
}

// NewFlyController returns a controller for view.
func NewFlyController(view *View) *FlyController {
	return &FlyController{view: view}
}

func (c *FlyController) SetEnabled(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = on
	if !on {
		c.velocity = r2.Vec{}
	}
}

func (c *FlyController) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Nudge accelerates toward dir, given in columns (X) and rows (Y).
func (c *FlyController) Nudge(dir r2.Vec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	c.velocity = r2.Add(c.velocity, r2.Vec{X: dir.X * FlySpeed, Y: dir.Y * FlySpeed * CellAspect})
}

// Velocity returns the current velocity in column widths per second.
func (c *FlyController) Velocity() r2.Vec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.velocity
}

// Zoom scales the view; factor < 1 zooms in.
func (c *FlyController) Zoom(factor float64) {
	if c.Enabled() {
		c.view.Zoom(factor)
	}
}

// Update moves the view by velocity·dt and decays the velocity.
func (c *FlyController) Update(dt time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	s := dt.Seconds()
	c.view.Pan(r2.Scale(s*c.view.Scale(), c.velocity))
	c.velocity = r2.Scale(math.Pow(FlyDrag, s), c.velocity)
}
