// Package units converts CSS lengths between pixels and device independent
// millimeters at a given screen density.
package units

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnsupportedUnit = errors.New("unsupported unit")
	ErrNoReference     = errors.New("percentage without reference dimension")
	ErrBadDensity      = errors.New("density must be positive")
)

const mmPerInch = 25.4

// Length unit.
// ENUM(none, px, pt, mm, cm, in, percent)
type Unit int

// FromSuffix maps unit suffix of a CSS dimension ("px", "%", "") to Unit.
func FromSuffix(s string) (Unit, error) {
	switch s = strings.ToLower(s); s {
	case "":
		return UnitNone, nil
	case "%":
		return UnitPercent, nil
	case "none", "percent":
		// enum names, not CSS suffixes
		return UnitNone, fmt.Errorf("%w: %s", ErrUnsupportedUnit, s)
	}
	u, err := ParseUnit(s)
	if err != nil {
		return UnitNone, fmt.Errorf("%w: %s", ErrUnsupportedUnit, s)
	}
	return u, nil
}

// Suffix returns CSS suffix for the unit.
func (x Unit) Suffix() string {
	switch x {
	case UnitNone:
		return ""
	case UnitPercent:
		return "%"
	default:
		return x.String()
	}
}

// Length is a number with unit.
type Length struct {
	Value float64
	Unit  Unit
}

func (l Length) String() string {
	return fmt.Sprintf("%g%s", l.Value, l.Unit.Suffix())
}

// IsZero reports whether length is zero regardless of unit.
func (l Length) IsZero() bool {
	return l.Value == 0
}

// ToMillimeters converts value to millimeters at the given density (dots per
// inch). Unitless values are treated as pixels. Percentages are resolved
// against reference dimension expressed in pixels.
func ToMillimeters(value float64, unit Unit, density int, reference float64) (float64, error) {
	if density <= 0 {
		return 0, ErrBadDensity
	}
	switch unit {
	case UnitNone, UnitPx:
		return value * mmPerInch / float64(density), nil
	case UnitPt:
		return value * mmPerInch / 72, nil
	case UnitMm:
		return value, nil
	case UnitCm:
		return value * 10, nil
	case UnitIn:
		return value * mmPerInch, nil
	case UnitPercent:
		if reference <= 0 {
			return 0, ErrNoReference
		}
		return value / 100 * reference * mmPerInch / float64(density), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedUnit, unit)
	}
}

// ToPixels converts value to whole pixels at the given density.
func ToPixels(value float64, unit Unit, density int, reference float64) (int, error) {
	switch unit {
	case UnitNone, UnitPx:
		return int(math.Round(value)), nil
	case UnitPercent:
		if reference <= 0 {
			return 0, ErrNoReference
		}
		return int(math.Round(value / 100 * reference)), nil
	}
	mm, err := ToMillimeters(value, unit, density, reference)
	if err != nil {
		return 0, err
	}
	return MillimetersToPixels(mm, density), nil
}

// MillimetersToPixels converts millimeters to whole pixels at the given density.
func MillimetersToPixels(mm float64, density int) int {
	return int(math.Round(mm * float64(density) / mmPerInch))
}

// Pixels converts length to pixels, see ToPixels.
func (l Length) Pixels(density int, reference float64) (int, error) {
	return ToPixels(l.Value, l.Unit, density, reference)
}

// Millimeters converts length to millimeters, see ToMillimeters.
func (l Length) Millimeters(density int, reference float64) (float64, error) {
	return ToMillimeters(l.Value, l.Unit, density, reference)
}
