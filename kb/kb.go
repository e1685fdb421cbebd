// Package kb is the body registry of the orrery: it owns every star,
// planet and moon record and the asteroid belt, issues stable handles and
// enforces that hosts exist before the bodies that reference them.
package kb

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signalsfoundry/orrery/model"
)

var (
	// ErrDanglingHostReference marks a planet, moon or belt whose host was
	// not registered first.
	ErrDanglingHostReference = errors.New("dangling host reference")
	// ErrBodyExists is returned when a body name is registered twice.
	ErrBodyExists = errors.New("body already exists")
	// ErrBodyNotFound is returned by lookups of unknown bodies.
	ErrBodyNotFound = errors.New("body not found")
	// ErrInvalidBody is returned for nil or unnamed records.
	ErrInvalidBody = errors.New("invalid body")
)

// HostReferenceError describes a registration that referenced a host
// handle the registry never issued.
type HostReferenceError struct {
	Body     string
	Kind     model.BodyKind
	HostKind model.BodyKind
	Host     int
}

func (e *HostReferenceError) Error() string {
	return fmt.Sprintf("%s %q references %s handle %d: %v",
		e.Kind, e.Body, e.HostKind, e.Host, ErrDanglingHostReference)
}

func (e *HostReferenceError) Unwrap() error { return ErrDanglingHostReference }

// EventType indicates what kind of change happened in the registry.
type EventType int

const (
	EventBodyRegistered EventType = iota
	EventBeltAttached
)

// Event is emitted to subscribers when something is registered.
type Event struct {
	Type EventType
	Kind model.BodyKind
	Name string
}

// Registry stores the bodies in registration order. Writes happen during
// scene construction only; afterwards callers use the read-only accessors.
type Registry struct {
	mu sync.RWMutex

	stars   []*model.Star
	planets []*model.Planet
	moons   []*model.Moon
	belt    *model.Belt

	byName map[string]model.Celestial

	subs    []subscriber
	nextSub uint64
}

type subscriber struct {
	id uint64
	fn func(Event)
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]model.Celestial),
	}
}

// RegisterStar stores s and returns its handle.
func (r *Registry) RegisterStar(s *model.Star) (model.StarHandle, error) {
	if s == nil || s.Name == "" {
		return 0, fmt.Errorf("register star: %w", ErrInvalidBody)
	}

	r.mu.Lock()
	if _, exists := r.byName[s.Name]; exists {
		r.mu.Unlock()
		return 0, fmt.Errorf("star %q: %w", s.Name, ErrBodyExists)
	}
	r.stars = append(r.stars, s)
	r.byName[s.Name] = s
	h := model.StarHandle(len(r.stars))
	subs := r.snapshotSubs()
	r.mu.Unlock()

	notify(subs, Event{Type: EventBodyRegistered, Kind: model.KindStar, Name: s.Name})
	return h, nil
}

// RegisterPlanet stores p. A non-zero p.Host must refer to an already
// registered star; otherwise the planet is rejected and never becomes
// visible to iteration or picking.
func (r *Registry) RegisterPlanet(p *model.Planet) (model.PlanetHandle, error) {
	if p == nil || p.Name == "" {
		return 0, fmt.Errorf("register planet: %w", ErrInvalidBody)
	}

	r.mu.Lock()
	if p.Host != 0 && !r.validStar(p.Host) {
		r.mu.Unlock()
		return 0, &HostReferenceError{Body: p.Name, Kind: model.KindPlanet, HostKind: model.KindStar, Host: int(p.Host)}
	}
	if _, exists := r.byName[p.Name]; exists {
		r.mu.Unlock()
		return 0, fmt.Errorf("planet %q: %w", p.Name, ErrBodyExists)
	}
	r.planets = append(r.planets, p)
	r.byName[p.Name] = p
	h := model.PlanetHandle(len(r.planets))
	subs := r.snapshotSubs()
	r.mu.Unlock()

	notify(subs, Event{Type: EventBodyRegistered, Kind: model.KindPlanet, Name: p.Name})
	return h, nil
}

// RegisterMoon stores m. Its host planet is required.
func (r *Registry) RegisterMoon(m *model.Moon) (model.MoonHandle, error) {
	if m == nil || m.Name == "" {
		return 0, fmt.Errorf("register moon: %w", ErrInvalidBody)
	}

	r.mu.Lock()
	if !r.validPlanet(m.Host) {
		r.mu.Unlock()
		return 0, &HostReferenceError{Body: m.Name, Kind: model.KindMoon, HostKind: model.KindPlanet, Host: int(m.Host)}
	}
	if _, exists := r.byName[m.Name]; exists {
		r.mu.Unlock()
		return 0, fmt.Errorf("moon %q: %w", m.Name, ErrBodyExists)
	}
	r.moons = append(r.moons, m)
	r.byName[m.Name] = m
	h := model.MoonHandle(len(r.moons))
	subs := r.snapshotSubs()
	r.mu.Unlock()

	notify(subs, Event{Type: EventBodyRegistered, Kind: model.KindMoon, Name: m.Name})
	return h, nil
}

// SetBelt attaches the asteroid belt. Its host planet must exist.
func (r *Registry) SetBelt(b *model.Belt) error {
	if b == nil {
		return fmt.Errorf("set belt: %w", ErrInvalidBody)
	}

	r.mu.Lock()
	if !r.validPlanet(b.Host) {
		r.mu.Unlock()
		return &HostReferenceError{Body: "belt", Kind: model.KindUnknown, HostKind: model.KindPlanet, Host: int(b.Host)}
	}
	r.belt = b
	host := r.planets[b.Host.Index()].Name
	subs := r.snapshotSubs()
	r.mu.Unlock()

	notify(subs, Event{Type: EventBeltAttached, Kind: model.KindPlanet, Name: host})
	return nil
}

// Star returns the star for h, or nil.
func (r *Registry) Star(h model.StarHandle) *model.Star {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.validStar(h) {
		return nil
	}
	return r.stars[h.Index()]
}

// Planet returns the planet for h, or nil.
func (r *Registry) Planet(h model.PlanetHandle) *model.Planet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.validPlanet(h) {
		return nil
	}
	return r.planets[h.Index()]
}

// Moon returns the moon for h, or nil.
func (r *Registry) Moon(h model.MoonHandle) *model.Moon {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !h.Valid() || h.Index() >= len(r.moons) {
		return nil
	}
	return r.moons[h.Index()]
}

// StarHandle looks up a star by name.
func (r *Registry) StarHandle(name string) (model.StarHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, s := range r.stars {
		if s.Name == name {
			return model.StarHandle(i + 1), true
		}
	}
	return 0, false
}

// PlanetHandle looks up a planet by name.
func (r *Registry) PlanetHandle(name string) (model.PlanetHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, p := range r.planets {
		if p.Name == name {
			return model.PlanetHandle(i + 1), true
		}
	}
	return 0, false
}

// Lookup returns any body by name.
func (r *Registry) Lookup(name string) (model.Celestial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrBodyNotFound)
	}
	return b, nil
}

// Stars returns a snapshot of the stars in registration order.
func (r *Registry) Stars() []*model.Star {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*model.Star(nil), r.stars...)
}

// Planets returns a snapshot of the planets in registration order.
func (r *Registry) Planets() []*model.Planet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*model.Planet(nil), r.planets...)
}

// Moons returns a snapshot of the moons in registration order.
func (r *Registry) Moons() []*model.Moon {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*model.Moon(nil), r.moons...)
}

// Belt returns the asteroid belt, or nil when none was attached.
func (r *Registry) Belt() *model.Belt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.belt
}

// Pickables returns stars, then planets, then moons. The belt and orbit
// curves are never pickable.
func (r *Registry) Pickables() []model.Celestial {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Celestial, 0, len(r.stars)+len(r.planets)+len(r.moons))
	for _, s := range r.stars {
		out = append(out, s)
	}
	for _, p := range r.planets {
		out = append(out, p)
	}
	for _, m := range r.moons {
		out = append(out, m)
	}
	return out
}

// Counts returns the number of registered stars, planets and moons.
func (r *Registry) Counts() (stars, planets, moons int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stars), len(r.planets), len(r.moons)
}

// Subscribe registers a callback for registry events. It returns an
// unsubscribe function.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSub++
	id := r.nextSub
	r.subs = append(r.subs, subscriber{id: id, fn: fn})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, sub := range r.subs {
			if sub.id == id {
				r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry) validStar(h model.StarHandle) bool {
	return h.Valid() && h.Index() < len(r.stars)
}

func (r *Registry) validPlanet(h model.PlanetHandle) bool {
	return h.Valid() && h.Index() < len(r.planets)
}

func (r *Registry) snapshotSubs() []func(Event) {
	fns := make([]func(Event), len(r.subs))
	for i, sub := range r.subs {
		fns[i] = sub.fn
	}
	return fns
}

// notify runs outside the lock so subscribers may call back into the
// registry.
func notify(subs []func(Event), ev Event) {
	for _, sub := range subs {
		sub(ev)
	}
}
