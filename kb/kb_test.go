package kb

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/signalsfoundry/orrery/model"
)

func star(name string) *model.Star {
	return &model.Star{Body: model.Body{Name: name, Radius: 1}}
}

func TestRegisterAndGetStar(t *testing.T) {
	reg := NewRegistry()
	h, err := reg.RegisterStar(star("Betelguese"))
	if err != nil {
		t.Fatalf("RegisterStar error: %v", err)
	}
	if !h.Valid() {
		t.Fatalf("handle %d not valid", h)
	}
	got := reg.Star(h)
	if got == nil || got.Name != "Betelguese" {
		t.Fatalf("Star(%d) = %#v, want Betelguese", h, got)
	}
	if reg.Star(h+1) != nil {
		t.Fatalf("Star(unissued handle) should be nil")
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.RegisterStar(star("s")); err != nil {
		t.Fatalf("first RegisterStar error: %v", err)
	}
	_, err := reg.RegisterPlanet(&model.Planet{Body: model.Body{Name: "s"}})
	if !errors.Is(err, ErrBodyExists) {
		t.Fatalf("duplicate name err = %v, want ErrBodyExists", err)
	}
}

func TestRegisterPlanetDanglingHost(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.RegisterPlanet(&model.Planet{
		Body: model.Body{Name: "Coruscant"},
		Host: model.StarHandle(1),
	})
	if !errors.Is(err, ErrDanglingHostReference) {
		t.Fatalf("err = %v, want ErrDanglingHostReference", err)
	}
	var hre *HostReferenceError
	if !errors.As(err, &hre) || hre.Body != "Coruscant" || hre.HostKind != model.KindStar {
		t.Fatalf("err = %#v, want HostReferenceError for Coruscant", err)
	}

	for _, b := range reg.Pickables() {
		if b.Base().Name == "Coruscant" {
			t.Fatalf("rejected planet present in pickable set")
		}
	}
	if _, planets, _ := reg.Counts(); planets != 0 {
		t.Fatalf("planets = %d, want 0", planets)
	}
}

func TestRegisterPlanetWithoutHost(t *testing.T) {
	reg := NewRegistry()
	h, err := reg.RegisterPlanet(&model.Planet{Body: model.Body{Name: "Alderaan"}})
	if err != nil {
		t.Fatalf("RegisterPlanet error: %v", err)
	}
	if reg.Planet(h).Host.Valid() {
		t.Fatalf("host-less planet reports a host")
	}
}

func TestRegisterMoonRequiresHost(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.RegisterMoon(&model.Moon{Body: model.Body{Name: "Exegol"}}); !errors.Is(err, ErrDanglingHostReference) {
		t.Fatalf("moon without host err = %v, want ErrDanglingHostReference", err)
	}

	ph, err := reg.RegisterPlanet(&model.Planet{Body: model.Body{Name: "Thalmyra"}})
	if err != nil {
		t.Fatalf("RegisterPlanet error: %v", err)
	}
	mh, err := reg.RegisterMoon(&model.Moon{Body: model.Body{Name: "Exegol"}, Host: ph})
	if err != nil {
		t.Fatalf("RegisterMoon error: %v", err)
	}
	if m := reg.Moon(mh); m == nil || m.Host != ph {
		t.Fatalf("Moon(%d) = %#v", mh, m)
	}
}

func TestSetBeltRequiresHost(t *testing.T) {
	reg := NewRegistry()
	if err := reg.SetBelt(&model.Belt{Host: 3}); !errors.Is(err, ErrDanglingHostReference) {
		t.Fatalf("SetBelt err = %v, want ErrDanglingHostReference", err)
	}
	if reg.Belt() != nil {
		t.Fatalf("belt stored despite error")
	}
}

func TestPickablesOrder(t *testing.T) {
	reg := NewRegistry()
	sh, _ := reg.RegisterStar(star("s1"))
	ph, _ := reg.RegisterPlanet(&model.Planet{Body: model.Body{Name: "p1"}, Host: sh})
	if _, err := reg.RegisterMoon(&model.Moon{Body: model.Body{Name: "m1"}, Host: ph}); err != nil {
		t.Fatalf("RegisterMoon error: %v", err)
	}
	if _, err := reg.RegisterStar(star("s2")); err != nil {
		t.Fatalf("RegisterStar error: %v", err)
	}

	var names []string
	for _, b := range reg.Pickables() {
		names = append(names, b.Base().Name)
	}
	want := []string{"s1", "s2", "p1", "m1"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Fatalf("Pickables = %v, want %v", names, want)
	}
}

func TestLookupByName(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.RegisterStar(star("White dwarf")); err != nil {
		t.Fatalf("RegisterStar error: %v", err)
	}
	b, err := reg.Lookup("White dwarf")
	if err != nil || b.Kind() != model.KindStar {
		t.Fatalf("Lookup = %v, %v", b, err)
	}
	if _, err := reg.Lookup("nope"); !errors.Is(err, ErrBodyNotFound) {
		t.Fatalf("Lookup(nope) err = %v, want ErrBodyNotFound", err)
	}
	if h, ok := reg.StarHandle("White dwarf"); !ok || h != 1 {
		t.Fatalf("StarHandle = %d, %v", h, ok)
	}
}

func TestSubscribeReceivesRegistrations(t *testing.T) {
	reg := NewRegistry()

	var got []Event
	unsubscribe := reg.Subscribe(func(e Event) {
		got = append(got, e)
	})

	if _, err := reg.RegisterStar(star("s")); err != nil {
		t.Fatalf("RegisterStar error: %v", err)
	}
	unsubscribe()
	if _, err := reg.RegisterStar(star("t")); err != nil {
		t.Fatalf("RegisterStar error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].Type != EventBodyRegistered || got[0].Kind != model.KindStar || got[0].Name != "s" {
		t.Fatalf("event = %#v", got[0])
	}
}

func TestUnsubscribeRemovesOnlyItsOwnCallback(t *testing.T) {
	reg := NewRegistry()

	var a, b, c int
	unsubA := reg.Subscribe(func(Event) { a++ })
	unsubB := reg.Subscribe(func(Event) { b++ })
	reg.Subscribe(func(Event) { c++ })

	unsubA()
	unsubB()
	unsubA()

	if _, err := reg.RegisterStar(star("s")); err != nil {
		t.Fatalf("RegisterStar error: %v", err)
	}
	if a != 0 || b != 0 || c != 1 {
		t.Fatalf("calls a=%d b=%d c=%d, want 0 0 1", a, b, c)
	}
}

func TestConcurrentReads(t *testing.T) {
	reg := NewRegistry()
	for i := range 5 {
		if _, err := reg.RegisterStar(star(fmt.Sprintf("s-%d", i))); err != nil {
			t.Fatalf("RegisterStar error: %v", err)
		}
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.Pickables()
			_ = reg.Stars()
			_, _ = reg.Lookup("s-3")
		}()
	}
	wg.Wait()
}
