package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a 24-bit RGB value, authored as 0xRRGGBB.
type Color uint32

// Colorful converts to a go-colorful color with channels in [0,1].
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64((c>>16)&0xff) / 255,
		G: float64((c>>8)&0xff) / 255,
		B: float64(c&0xff) / 255,
	}
}

// RGB returns the channels in [0,1], as fed to shader uniforms.
func (c Color) RGB() [3]float64 {
	cf := c.Colorful()
	return [3]float64{cf.R, cf.G, cf.B}
}

// Hex renders the color as "#rrggbb".
func (c Color) Hex() string {
	return c.Colorful().Hex()
}

// ParseColor accepts "#rrggbb", "0xrrggbb" or a bare hex string.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		cf, err := colorful.Hex(s)
		if err != nil {
			return 0, fmt.Errorf("parse color %q: %w", s, err)
		}
		r, g, b := cf.RGB255()
		return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b)), nil
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || v > 0xffffff {
		return 0, fmt.Errorf("parse color %q: not a 24-bit hex value", s)
	}
	return Color(v), nil
}

// UnmarshalJSON accepts either a number or a hex string.
func (c *Color) UnmarshalJSON(b []byte) error {
	var n uint32
	if err := json.Unmarshal(b, &n); err == nil {
		if n > 0xffffff {
			return fmt.Errorf("color %d out of range", n)
		}
		*c = Color(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("color must be a number or hex string: %w", err)
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalJSON writes the "#rrggbb" form.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}
