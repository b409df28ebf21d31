// Package decision derives how a flattened element style is reproduced by
// the runtime: with native borders and gradients or with generated raster
// assets, and computes theme properties of the element state.
package decision

import (
	"strings"

	"cn1css/style"
)

// Strategy is rendering approach chosen for element state.
//
// ENUM(native-round-rect, native-underline, native-round-border, native-gradient-background, raster-background-image, raster-image-border)
type Strategy int

// Raster reports whether strategy needs generated images.
func (x Strategy) Raster() bool {
	return x == StrategyRasterBackgroundImage || x == StrategyRasterImageBorder
}

// Decision is outcome for one element state.
type Decision struct {
	Strategy   Strategy
	Descriptor Descriptor
}

// requiresImageBorder reports whether box is reproduced by a 9-piece image
// border generated from snapshot.
func (d Descriptor) requiresImageBorder() bool {
	switch {
	case d.BgType == "cn1-image-border":
		return true
	case strings.HasPrefix(d.BgType, "cn1-image"):
		return false
	case d.roundBorder():
		return false
	case d.NinePatch.Set:
		return true
	case d.canRoundRect(), d.canUnderline():
		return false
	case d.complex():
		if d.percentSize() {
			return false
		}
		if d.Gradient.Present() && !d.hasRadius() && !d.hasShadow() && !d.unequalBorders() && !d.pointUnits() {
			return false
		}
		return true
	}
	return false
}

// requiresBackgroundImage reports whether box is reproduced by a single
// stretched background image generated from snapshot.
func (d Descriptor) requiresBackgroundImage() bool {
	switch {
	case d.canRoundRect(), d.canUnderline():
		return false
	case d.roundBorder():
		return false
	case d.complex():
		if d.percentSize() {
			return true
		}
		if strings.HasPrefix(d.BgType, "cn1-image") && !strings.HasSuffix(d.BgType, "border") {
			return true
		}
		if d.Gradient.Present() && !d.requiresImageBorder() {
			return true
		}
	}
	return false
}

// Decide selects strategy, first match wins.
func Decide(d Descriptor) Strategy {
	switch {
	case d.roundBorder():
		return StrategyNativeRoundBorder
	case d.requiresImageBorder():
		return StrategyRasterImageBorder
	case d.requiresBackgroundImage():
		return StrategyRasterBackgroundImage
	case d.Gradient.Native():
		return StrategyNativeGradientBackground
	case d.canUnderline():
		return StrategyNativeUnderline
	}
	return StrategyNativeRoundRect
}

// Analyze describes flattened style and decides its strategy.
func Analyze(t *style.Table) (Decision, error) {
	d, err := Describe(t)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Strategy: Decide(d), Descriptor: d}, nil
}
