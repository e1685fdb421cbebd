package scene

import (
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// Geometry is the shape attached to a node. Render collaborators switch
// on the concrete type.
type Geometry interface {
	// Bounds is the radius of a sphere around the node origin that
	// contains the geometry.
	Bounds() float64
}

// Sphere is a UV sphere centered on the node origin.
type Sphere struct {
	Radius         float64
	WidthSegments  int
	HeightSegments int
}

func (s Sphere) Bounds() float64 { return s.Radius }

// Icosahedron is a subdivided icosahedron, used for belt asteroids.
type Icosahedron struct {
	Radius float64
	Detail int
}

func (i Icosahedron) Bounds() float64 { return i.Radius }

// Polyline is an open or closed line strip in node-local coordinates.
type Polyline struct {
	Points []r3.Vec
}

func (l Polyline) Bounds() float64 {
	var m float64
	for _, p := range l.Points {
		if n := r3.Norm(p); n > m {
			m = n
		}
	}
	return m
}

// Sprite is a camera-facing quad of the given size.
type Sprite struct {
	Size float64
}

func (s Sprite) Bounds() float64 { return s.Size / 2 }

// Blending selects how a material is composited.
type Blending int

const (
	BlendNormal Blending = iota
	BlendAdditive
)

// Material is the display-only surface description of a node.
type Material struct {
	Color       colorful.Color
	Opacity     float64
	Transparent bool
	Blending    Blending

	// Texture is an opaque handle issued by the asset collaborator; empty
	// when loading failed or no texture was requested.
	Texture string
	// Emissive marks self-lit materials (stars).
	Emissive bool
}

// PointLight is a light emitted from the node origin.
type PointLight struct {
	Color         colorful.Color
	Intensity     float64
	Range         float64
	Decay         float64
	CastShadow    bool
	ShadowMapSize int
	ShadowBias    float64
}
