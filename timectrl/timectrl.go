// Package timectrl owns simulated time for the orrery: a pausable
// animation clock and the frame loop that steps it.
package timectrl

import (
	"context"
	"sync"
	"time"
)

// DefaultAcceleration converts unpaused wall seconds to simulated time
// units.
const DefaultAcceleration = 0.5

// AnimationClock accumulates simulated time as unpaused wall time scaled
// by Acceleration. Wall time keeps accumulating while paused.
type AnimationClock struct {
	mu sync.RWMutex

	acceleration float64
	sim          float64
	wall         time.Duration
	paused       bool
}

// NewAnimationClock constructs a clock at t = 0. A non-positive
// acceleration falls back to DefaultAcceleration.
func NewAnimationClock(acceleration float64) *AnimationClock {
	if acceleration <= 0 {
		acceleration = DefaultAcceleration
	}
	return &AnimationClock{acceleration: acceleration}
}

// Advance moves the clock by one frame of wall duration dt and returns the
// new simulated time and total wall time.
func (c *AnimationClock) Advance(dt time.Duration) (sim float64, wall time.Duration) {
	if dt < 0 {
		dt = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wall += dt
	if !c.paused {
		c.sim += dt.Seconds() * c.acceleration
	}
	return c.sim, c.wall
}

// SimTime returns the current simulated time.
func (c *AnimationClock) SimTime() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sim
}

// Wall returns the total wall time the clock has been advanced by.
func (c *AnimationClock) Wall() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wall
}

// Acceleration returns the sim-time scale.
func (c *AnimationClock) Acceleration() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.acceleration
}

// Paused reports whether simulated time is frozen.
func (c *AnimationClock) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

// SetPaused freezes or resumes simulated time. Resuming continues from the
// frozen value; paused wall time is never counted.
func (c *AnimationClock) SetPaused(p bool) {
	c.mu.Lock()
	c.paused = p
	c.mu.Unlock()
}

// TogglePause flips the pause flag and returns the new value.
func (c *AnimationClock) TogglePause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = !c.paused
	return c.paused
}

// Mode describes how the FrameLoop paces frames.
type Mode int

const (
	// RealTime waits for a ticker and reports measured wall deltas.
	RealTime Mode = iota
	// Accelerated runs frames back to back, each reporting exactly Tick.
	Accelerated
)

// FrameLoop calls its listeners once per frame with the wall delta of
// that frame.
type FrameLoop struct {
	mu     sync.RWMutex
	Tick   time.Duration
	Mode   Mode
	frames uint64

	listeners []func(dt time.Duration)
}

// NewFrameLoop constructs a loop.
func NewFrameLoop(tick time.Duration, mode Mode) *FrameLoop {
	if tick <= 0 {
		tick = 16 * time.Millisecond
	}
	return &FrameLoop{Tick: tick, Mode: mode}
}

// TickForFPS returns the frame period for a frame rate.
func TickForFPS(fps int) time.Duration {
	if fps <= 0 {
		return 16 * time.Millisecond
	}
	return time.Second / time.Duration(fps)
}

// AddListener registers a callback invoked on every frame.
func (l *FrameLoop) AddListener(fn func(dt time.Duration)) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// Frames returns how many frames have run.
func (l *FrameLoop) Frames() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.frames
}

// Start runs the loop in a separate goroutine until ctx is done or, when
// frames > 0, that many frames have run. It returns a channel that is
// closed when the loop finishes.
func (l *FrameLoop) Start(ctx context.Context, frames uint64) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		var ticker *time.Ticker
		if l.Mode == RealTime {
			ticker = time.NewTicker(l.Tick)
			defer ticker.Stop()
		}
		last := time.Now()

		for n := uint64(0); frames == 0 || n < frames; n++ {
			dt := l.Tick
			if ticker != nil {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					dt = now.Sub(last)
					last = now
				}
			} else if ctx.Err() != nil {
				return
			}

			l.mu.Lock()
			l.frames++
			listeners := append([]func(time.Duration){}, l.listeners...)
			l.mu.Unlock()

			for _, fn := range listeners {
				fn(dt)
			}
		}
	}()
	return done
}
