package core

import "github.com/signalsfoundry/orrery/model"

// Binary pair of the default system.
const (
	PrimaryMass      = 20.0
	CompanionMass    = 15.0
	BinarySeparation = 100.0
)

// DefaultBeltRotationRate is the belt's Y spin per frame, in radians.
const DefaultBeltRotationRate = 0.01

// BinarySplit divides the separation of two stars by mass ratio: each star
// sits separation·m_i/(m1+m2) from the system center.
func BinarySplit(separation, m1, m2 float64) (d1, d2 float64) {
	total := m1 + m2
	if total == 0 {
		return separation / 2, separation / 2
	}
	return separation * m1 / total, separation * m2 / total
}

// DefaultTable is the built-in system: a binary pair, six planets, five moons
// and a belt around Thalmyra.
func DefaultTable() model.SceneTable {
	d1, d2 := BinarySplit(BinarySeparation, PrimaryMass, CompanionMass)

	return model.SceneTable{
		Sky: "milkyway.png",
		Rows: []model.Row{
			{Star: &model.StarDef{
				Name: "Betelguese", Radius: 10, Dist: d1, Speed: 1.0, Color: 0xffbf00,
				F1: 1.2, F2: 1.0, OrbitRotationDivisor: 2, CenterX: -d1, CenterZ: 0,
				Texture: "Betelguese.png",
			}},
			{Star: &model.StarDef{
				Name: "White dwarf", Radius: 6, Dist: d2, Speed: 2.0, Color: 0xcad7ff,
				F1: 1.2, F2: 1.0, OrbitRotationDivisor: 2, CenterX: d2, CenterZ: 0,
				PhaseDegrees: 180, Texture: "white-dwarf.png",
			}},
			{Planet: &model.PlanetDef{
				Name: "Coruscant", Radius: 2.5, Dist: 32, Speed: 1.0, Color: 0xcad7ff,
				F1: 1.0, F2: 1.5, InclinationDegrees: 20, Host: "Betelguese",
				Texture: "coruscant.png",
			}},
			{Moon: &model.MoonDef{
				Name: "Death Star I", Host: "Coruscant", Radius: 0.35, Dist: 10, Speed: -3.5,
				Color: 0xffff00, F1: 0.6, F2: 1.0, InclinationDegrees: 0,
				Texture: "deathstar.png",
			}},
			{Moon: &model.MoonDef{
				Name: "Dathomir", Host: "Coruscant", Radius: 0.65, Dist: 14, Speed: 1.0,
				Color: 0x0000ff, F1: 1.0, F2: 1.4, InclinationDegrees: -10,
				Texture: "dathomir.png",
			}},
			{Planet: &model.PlanetDef{
				Name: "Aureon", Radius: 2.0, Dist: 26, Speed: 2.0, Color: 0x00fff0,
				F1: 1.5, F2: 1.8, InclinationDegrees: -45, Host: "White dwarf",
				Texture: "planet2.png",
			}},
			{Planet: &model.PlanetDef{
				Name: "Neryth", Radius: 0.5, Dist: 5, Speed: 5.0, Color: 0xffcf00,
				F1: 1.5, F2: 2.0, InclinationDegrees: -45, Host: "White dwarf",
				Texture: "planet1.png",
			}},
			{Moon: &model.MoonDef{
				Name: "Mustafar", Host: "Aureon", Radius: 0.3, Dist: 3.2, Speed: 2.6,
				Color: 0xf000ff, F1: 1.2, F2: 0.8, InclinationDegrees: 20,
				Texture: "mustafar.png",
			}},
			{Planet: &model.PlanetDef{
				Name: "Volcaris", Radius: 1.2, Dist: 6, Speed: 0.4, Color: 0xff0f00,
				F1: 2.5, F2: 3.0, InclinationDegrees: -50, Host: "Betelguese",
				Texture: "planet3.png",
			}},
			{Planet: &model.PlanetDef{
				Name: "Alderaan", Radius: 5, Dist: 40, Speed: 0.2, Color: 0xffa0ff,
				F1: 4.5, F2: 4.0, InclinationDegrees: 90,
				Texture: "alderaan.png",
			}},
			{Planet: &model.PlanetDef{
				Name: "Thalmyra", Radius: 8, Dist: 50, Speed: 0.2, Color: 0x0faaff,
				F1: 5.0, F2: 3.0, InclinationDegrees: -30,
				Texture: "planet4.png",
			}},
			{Moon: &model.MoonDef{
				Name: "Selunara", Host: "Alderaan", Radius: 1.5, Dist: 9.6, Speed: 2.6,
				Color: 0xf0f00f, F1: 1.6, F2: 1.8, InclinationDegrees: 20,
				Texture: "moon1.png",
			}},
			{Moon: &model.MoonDef{
				Name: "Exegol", Host: "Thalmyra", Radius: 0.7, Dist: 10, Speed: 2.6,
				Color: 0xff00ff, F1: 2.2, F2: 2.8, InclinationDegrees: 60,
				Texture: "exegol.png",
			}},
		},
		Belt: &model.BeltDef{
			Host:         "Thalmyra",
			InnerRadius:  10,
			OuterRadius:  14,
			Count:        500,
			RotationRate: DefaultBeltRotationRate,
		},
	}
}
