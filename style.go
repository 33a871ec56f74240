package lilfast

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/lilfast/lilfast/utils"
)

// CanvasSize is the fixed width and height of the drawing canvas in pixels.
const CanvasSize = 512

// Brush presets offered by the drawing form.
const (
	BrushSmall  = 2.0
	BrushMedium = 5.0
	BrushLarge  = 10.0
)

// Quality presets map to the number of inference iterations requested from the server.
const (
	QualityRapid    = 1
	QualityEnhanced = 10

	// DefaultIterations is used when no quality preset is picked.
	DefaultIterations = 2
)

// DefaultColor is the initial pen color.
const DefaultColor = "#000000"

var (
	ErrInvalidColor = errors.New("invalid brush color")
	ErrInvalidBrush = errors.New("brush width must be positive")
)

// Style is the pen configuration read every time a stroke segment is committed.
type Style struct {
	Color color.NRGBA
	Width float64
}

// DefaultStyle returns a medium sized black pen.
func DefaultStyle() Style {
	return Style{Color: color.NRGBA{A: 0xff}, Width: BrushMedium}
}

// ParseStyle builds a Style from the hex color and brush width supplied by the form.
func ParseStyle(hex string, width float64) (Style, error) {
	c, err := utils.HexToNRGBA(hex)
	if err != nil {
		return Style{}, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	if width <= 0 {
		return Style{}, fmt.Errorf("%w: got %v", ErrInvalidBrush, width)
	}
	return Style{Color: c, Width: width}, nil
}

// BrushPreset resolves the brush names used by the form ("small", "medium", "large").
func BrushPreset(name string) (float64, bool) {
	switch name {
	case "small":
		return BrushSmall, true
	case "medium":
		return BrushMedium, true
	case "large":
		return BrushLarge, true
	}
	return 0, false
}

// QualityPreset resolves the quality names used by the form ("rapid", "enhanced").
func QualityPreset(name string) (int, bool) {
	switch name {
	case "rapid":
		return QualityRapid, true
	case "enhanced":
		return QualityEnhanced, true
	}
	return 0, false
}

// String returns the hex form of the style color followed by the brush width.
func (s Style) String() string {
	return fmt.Sprintf("%s/%g", utils.NRGBAToHex(s.Color), s.Width)
}
