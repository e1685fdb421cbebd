package model

// Handles are stable 1-based indexes issued by the body registry. The zero
// value of each handle refers to nothing.
type (
	StarHandle   int
	PlanetHandle int
	MoonHandle   int
)

func (h StarHandle) Valid() bool   { return h > 0 }
func (h PlanetHandle) Valid() bool { return h > 0 }
func (h MoonHandle) Valid() bool   { return h > 0 }

// Index converts a valid handle to a slice index.
func (h StarHandle) Index() int   { return int(h) - 1 }
func (h PlanetHandle) Index() int { return int(h) - 1 }
func (h MoonHandle) Index() int   { return int(h) - 1 }
