package decision

import (
	"errors"
	"fmt"

	"cn1css/resfile"
	"cn1css/style"
	"cn1css/units"
)

var ErrUnsupportedBorderStyle = errors.New("unsupported border style")

// stroke converts border width to runtime stroke: whole pixels for pixel
// widths, millimeters otherwise. Absent width is 1px.
func stroke(l units.Length) (float64, bool) {
	switch l.Unit {
	case units.UnitPx, units.UnitNone:
		if l.IsZero() {
			return 1, false
		}
		return float64(int(l.Value)), false
	case units.UnitPt:
		return l.Value * 25.4 / 72, true
	case units.UnitMm:
		return l.Value, true
	case units.UnitCm:
		return l.Value * 10, true
	case units.UnitIn:
		return l.Value * 25.4, true
	}
	return 1, false
}

func (d Descriptor) shadow(env Env) (*resfile.Shadow, error) {
	s := d.Shadow
	if !s.Set || s.Inset {
		return nil, nil
	}
	var v [4]float64
	for i, l := range []units.Length{s.Spread, s.H, s.V, s.Blur} {
		f, err := env.pixelsF(l, env.RefWidth)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}
	spread, h, vert, blur := v[0], v[1], v[2], v[3]
	// offsets are relative to spread, 0.5 is centered
	ratio := func(f float64) float64 {
		if spread == 0 {
			return 0.5
		}
		return 0.5 - f/spread/2
	}
	return &resfile.Shadow{
		Spread:  spread,
		X:       ratio(h),
		Y:       ratio(vert),
		Blur:    blur,
		Opacity: s.Color.Alpha255(),
	}, nil
}

func (d Descriptor) roundBorderObject(env Env) (*resfile.Border, error) {
	top := d.Sides[0]
	b := &resfile.Border{Type: resfile.BorderRound, Rectangle: d.BgType == "cn1-pill-border"}
	if top.Visible() {
		b.Stroke, b.StrokeMM = stroke(top.Width)
	}
	if d.HasBg {
		b.Color, b.Opacity = rgb(d.Background), d.Background.Alpha255()
	}
	if top.HasColor {
		b.StrokeColor, b.StrokeOpacity = rgb(top.Color), top.Color.Alpha255()
	}
	sh, err := d.shadow(env)
	if err != nil {
		return nil, err
	}
	b.Shadow = sh
	return b, nil
}

func (d Descriptor) roundRectObject(env Env) (*resfile.Border, error) {
	top := d.Sides[0]
	b := &resfile.Border{Type: resfile.BorderRoundRect}
	for _, c := range d.Corners {
		if c.IsZero() {
			continue
		}
		mm, err := c.X.Millimeters(env.DPI, env.RefWidth)
		if err != nil {
			return nil, err
		}
		b.CornerRadius = mm
		break
	}
	tl, tr, br, bl := d.Corners[0].IsZero(), d.Corners[1].IsZero(), d.Corners[2].IsZero(), d.Corners[3].IsZero()
	switch {
	case !bl && !br && tl && tr:
		b.BottomOnly = true
	case bl && br && !tl && !tr:
		b.TopOnly = true
	}
	if top.Visible() {
		b.Stroke, b.StrokeMM = stroke(top.Width)
	}
	if top.HasColor {
		b.StrokeColor, b.StrokeOpacity = rgb(top.Color), top.Color.Alpha255()
	}
	if d.HasBg {
		b.Color, b.Opacity = rgb(d.Background), d.Background.Alpha255()
	}
	sh, err := d.shadow(env)
	if err != nil {
		return nil, err
	}
	b.Shadow = sh
	return b, nil
}

func (d Descriptor) underlineObject() *resfile.Border {
	bottom := d.Sides[2]
	b := &resfile.Border{Type: resfile.BorderUnderline}
	b.Thickness, b.Millimeters = stroke(bottom.Width)
	if bottom.HasColor {
		b.Color = rgb(bottom.Color)
	}
	return b
}

// sideObject returns border painted on one side, nil when side has no style.
func sideObject(s Side, env Env) (*resfile.Border, error) {
	color := 0
	if s.HasColor {
		color = rgb(s.Color)
	}
	switch s.Style {
	case "":
		return nil, nil
	case "none", "hidden", "inherit", "initial":
		return &resfile.Border{Type: resfile.BorderEmpty}, nil
	case "etched":
		return &resfile.Border{Type: resfile.BorderEtchedLowered, Highlight: 0xffffff, Color: color}, nil
	case "solid", "line":
		b := &resfile.Border{Type: resfile.BorderLine, Color: color, Thickness: 1}
		switch s.Width.Unit {
		case units.UnitPx, units.UnitNone, units.UnitPt:
			if !s.Width.IsZero() {
				b.Thickness = float64(int(s.Width.Value))
			}
		case units.UnitPercent:
			px, err := env.pixels(s.Width, env.RefWidth)
			if err != nil {
				return nil, err
			}
			b.Thickness = float64(px)
		default:
			mm, err := s.Width.Millimeters(env.DPI, env.RefWidth)
			if err != nil {
				return nil, err
			}
			b.Thickness, b.Millimeters = mm, true
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedBorderStyle, s.Style)
}

// NativeBorder returns runtime border object reproducing the box natively,
// nil when box has no border.
func NativeBorder(d Descriptor, env Env) (*resfile.Border, error) {
	switch {
	case d.roundBorder():
		return d.roundBorderObject(env)
	case d.hasRadius():
		return d.roundRectObject(env)
	case d.canUnderline():
		return d.underlineObject(), nil
	case d.unequalBorders():
		// compound border sides are in top, bottom, left, right order
		b := &resfile.Border{Type: resfile.BorderCompound}
		for _, i := range []int{0, 2, 3, 1} {
			s, err := sideObject(d.Sides[i], env)
			if err != nil {
				return nil, fmt.Errorf("border-%s: %w", style.Sides[i], err)
			}
			if s == nil {
				s = &resfile.Border{Type: resfile.BorderEmpty}
			}
			b.Sides = append(b.Sides, s)
		}
		return b, nil
	}
	b, err := sideObject(d.Sides[0], env)
	if err != nil {
		return nil, fmt.Errorf("border: %w", err)
	}
	return b, nil
}
