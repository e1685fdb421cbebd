package core

import (
	"sync"
	"time"
)

// Navigation mode labels reported to the toggle widget.
const (
	NavOrbit = "OrbitControls"
	NavFly   = "FlyControls"
)

// NavigationController is a camera controller collaborator. Only the
// enabled controller receives updates.
type NavigationController interface {
	SetEnabled(bool)
	Enabled() bool
	Update(dt time.Duration)
}

// NavigationSwitch keeps exactly one of two controllers enabled.
type NavigationSwitch struct {
	mu     sync.Mutex
	orbit  NavigationController
	fly    NavigationController
	flying bool
}

// NewNavigationSwitch starts with the orbit controller enabled. Nil
// controllers are replaced with IdleController.
func NewNavigationSwitch(orbit, fly NavigationController) *NavigationSwitch {
	if orbit == nil {
		orbit = &IdleController{}
	}
	if fly == nil {
		fly = &IdleController{}
	}
	orbit.SetEnabled(true)
	fly.SetEnabled(false)
	return &NavigationSwitch{orbit: orbit, fly: fly}
}

// Toggle flips both enable flags together and returns the new mode label.
func (s *NavigationSwitch) Toggle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flying = !s.flying
	s.orbit.SetEnabled(!s.flying)
	s.fly.SetEnabled(s.flying)
	return s.modeLocked()
}

// Mode returns the active mode label.
func (s *NavigationSwitch) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modeLocked()
}

// Active returns the enabled controller.
func (s *NavigationSwitch) Active() NavigationController {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flying {
		return s.fly
	}
	return s.orbit
}

// Update forwards the frame delta to the enabled controller.
func (s *NavigationSwitch) Update(dt time.Duration) {
	s.Active().Update(dt)
}

func (s *NavigationSwitch) modeLocked() string {
	if s.flying {
		return NavFly
	}
	return NavOrbit
}

// IdleController is a controller that only tracks its enable flag; used
// when no camera is attached.
type IdleController struct {
	enabled bool
	Updates int
}

func (c *IdleController) SetEnabled(on bool)   { c.enabled = on }
func (c *IdleController) Enabled() bool        { return c.enabled }
func (c *IdleController) Update(time.Duration) { c.Updates++ }
