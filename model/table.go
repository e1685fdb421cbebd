package model

// The scene table is the initial configuration of the orrery. Angles are
// authored in degrees and converted to radians once at registration.

// StarDef is one star row.
type StarDef struct {
	Name                 string  `json:"name"`
	Radius               float64 `json:"radius"`
	Dist                 float64 `json:"dist"`
	Speed                float64 `json:"speed"`
	Color                Color   `json:"color"`
	F1                   float64 `json:"f1"`
	F2                   float64 `json:"f2"`
	OrbitRotationDivisor float64 `json:"orbitRotationDivisor"`
	CenterX              float64 `json:"centerX"`
	CenterZ              float64 `json:"centerZ"`
	PhaseDegrees         float64 `json:"phaseDegrees"`
	Texture              string  `json:"texture"`
}

// PlanetDef is one planet row. An empty Host makes the planet orbit the
// barycenter.
type PlanetDef struct {
	Name               string  `json:"name"`
	Radius             float64 `json:"radius"`
	Dist               float64 `json:"dist"`
	Speed              float64 `json:"speed"`
	Color              Color   `json:"color"`
	F1                 float64 `json:"f1"`
	F2                 float64 `json:"f2"`
	InclinationDegrees float64 `json:"inclinationDegrees"`
	Host               string  `json:"host,omitempty"`
	Texture            string  `json:"texture"`
}

// MoonDef is one moon row. Host is required.
type MoonDef struct {
	Name               string  `json:"name"`
	Host               string  `json:"host"`
	Radius             float64 `json:"radius"`
	Dist               float64 `json:"dist"`
	Speed              float64 `json:"speed"`
	Color              Color   `json:"color"`
	F1                 float64 `json:"f1"`
	F2                 float64 `json:"f2"`
	InclinationDegrees float64 `json:"inclinationDegrees"`
	Texture            string  `json:"texture"`
}

// BeltDef places the asteroid belt around one planet.
type BeltDef struct {
	Host         string  `json:"host"`
	InnerRadius  float64 `json:"innerRadius"`
	OuterRadius  float64 `json:"outerRadius"`
	Count        int     `json:"count"`
	RotationRate float64 `json:"rotationRate"`
}

// Row is one ordered table entry; exactly one field is set.
type Row struct {
	Star   *StarDef   `json:"star,omitempty"`
	Planet *PlanetDef `json:"planet,omitempty"`
	Moon   *MoonDef   `json:"moon,omitempty"`
}

// Kind reports which variant the row carries.
func (r Row) Kind() BodyKind {
	switch {
	case r.Star != nil:
		return KindStar
	case r.Planet != nil:
		return KindPlanet
	case r.Moon != nil:
		return KindMoon
	default:
		return KindUnknown
	}
}

// Name is the body name of whichever variant is set.
func (r Row) Name() string {
	switch {
	case r.Star != nil:
		return r.Star.Name
	case r.Planet != nil:
		return r.Planet.Name
	case r.Moon != nil:
		return r.Moon.Name
	default:
		return ""
	}
}

// SceneTable is the complete, ordered initial configuration.
type SceneTable struct {
	Rows []Row    `json:"rows"`
	Belt *BeltDef `json:"belt,omitempty"`
	Sky  string   `json:"sky,omitempty"`
}
