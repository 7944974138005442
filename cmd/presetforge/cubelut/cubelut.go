// Package cubelut generates and reads the plain text 3D LUT format (.cube)
// used by PresetForge presets.
package cubelut

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultTitle is written into the TITLE line of generated LUTs.
const DefaultTitle = "PresetForge Generated LUT"

var (
	ErrInvalidGridSize = errors.New("invalid LUT grid size")
	ErrNotFound        = errors.New("LUT file not found")
	ErrInvalidTitle    = errors.New("invalid LUT title")
	// ErrMalformedLine is wrapped by every ParseError.
	ErrMalformedLine   = errors.New("malformed LUT data line")
)

// ParseError reports a data line that is not three numbers.
type ParseError struct {
	Line int // 1-based line number in the source
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v %q: %v", e.Line, ErrMalformedLine, e.Text, e.Err)
}

// Unwrap exposes both ErrMalformedLine and the underlying cause.
func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformedLine, e.Err}
}

// ValidateTitle rejects titles that would break out of the quoted TITLE
// line.
func ValidateTitle(title string) error {
	if strings.ContainsAny(title, "\r\n\"") {
		return fmt.Errorf("%w: %q (no quotes or line breaks)", ErrInvalidTitle, title)
	}
	return nil
}

// ColorTriplet is an 8-bit color in R, G, B order.
type ColorTriplet struct {
	R, G, B int
}

func (c ColorTriplet) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// Clamped returns c with every channel limited to [0,255].
func (c ColorTriplet) Clamped() ColorTriplet {
	return ColorTriplet{R: clampChannel(c.R), G: clampChannel(c.G), B: clampChannel(c.B)}
}

func (c ColorTriplet) colorful() colorful.Color {
	c = c.Clamped()
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Hex returns the color as #rrggbb.
func (c ColorTriplet) Hex() string {
	return c.colorful().Hex()
}

// HSL returns hue in degrees, saturation and lightness in [0,1].
func (c ColorTriplet) HSL() (h, s, l float64) {
	return c.colorful().Hsl()
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ToneShift is a per channel multiplicative gain derived from a LUT.
type ToneShift struct {
	R, G, B float64
}

// IdentityShift leaves every pixel unchanged.
var IdentityShift = ToneShift{R: 1, G: 1, B: 1}

func (s ToneShift) String() string {
	return fmt.Sprintf("(%.6f,%.6f,%.6f)", s.R, s.G, s.B)
}
