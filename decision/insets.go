package decision

import (
	"math"

	"cn1css/assets"
	"cn1css/css"
	"cn1css/units"
)

// Env carries density and references used to resolve lengths.
type Env struct {
	DPI       int
	RefWidth  float64
	RefHeight float64
	FontFaces []css.FontFace
}

func (e Env) pixels(l units.Length, ref float64) (int, error) {
	return l.Pixels(e.DPI, ref)
}

func (e Env) pixelsF(l units.Length, ref float64) (float64, error) {
	switch l.Unit {
	case units.UnitNone, units.UnitPx:
		return l.Value, nil
	case units.UnitPercent:
		if ref <= 0 {
			return 0, units.ErrNoReference
		}
		return l.Value / 100 * ref, nil
	}
	mm, err := l.Millimeters(e.DPI, ref)
	if err != nil {
		return 0, err
	}
	return mm * float64(e.DPI) / 25.4, nil
}

// ShadowPadding returns room outer shadow needs on each side of the box.
func ShadowPadding(d Descriptor, env Env) (assets.Insets, error) {
	s := d.Shadow
	if !s.Set || s.Inset {
		return assets.Insets{}, nil
	}
	var v [4]float64
	for i, l := range []units.Length{s.H, s.V, s.Blur, s.Spread} {
		f, err := env.pixelsF(l, env.RefWidth)
		if err != nil {
			return assets.Insets{}, err
		}
		v[i] = f
	}
	h, vert, blur, spread := v[0], v[1], v[2], v[3]
	pad := func(f float64) int {
		return max(0, int(math.Ceil(f)))
	}
	return assets.Insets{
		Top:    pad(spread - vert + blur/2),
		Right:  pad(spread + h + blur/2),
		Bottom: pad(spread + vert + blur/2),
		Left:   pad(spread - h + blur/2),
	}, nil
}

func borderInsets(d Descriptor, env Env) (assets.Insets, error) {
	var w [4]int
	for i, s := range d.Sides {
		if !s.Visible() {
			continue
		}
		px, err := env.pixels(s.Width, env.RefWidth)
		if err != nil {
			return assets.Insets{}, err
		}
		w[i] = px
	}
	return assets.Insets{Top: w[0], Right: w[1], Bottom: w[2], Left: w[3]}, nil
}

// ImageBorderInsets computes 9-patch insets for w x h snapshot of the box.
func ImageBorderInsets(d Descriptor, env Env, w, h int) (assets.Insets, error) {
	if np := d.NinePatch; np.Set {
		return assets.Insets{Top: np.Top, Right: np.Right, Bottom: np.Bottom, Left: np.Left}, nil
	}
	shadow, err := ShadowPadding(d, env)
	if err != nil {
		return assets.Insets{}, err
	}
	border, err := borderInsets(d, env)
	if err != nil {
		return assets.Insets{}, err
	}
	vshadow := shadow.Top + shadow.Bottom
	hshadow := shadow.Left + shadow.Right

	switch d.Gradient.Func {
	case "linear-gradient":
		if d.Gradient.Kind == GradientLinearHorizontal {
			return assets.Insets{
				Top:    1 + border.Top + vshadow,
				Right:  w/2 - 1,
				Bottom: 1 + border.Bottom + vshadow,
				Left:   w/2 - 1,
			}.Clamp(w, h), nil
		}
		return assets.Insets{
			Top:    h/2 - 1,
			Right:  1 + border.Right + hshadow,
			Bottom: h/2 - 1,
			Left:   1 + border.Left + hshadow,
		}.Clamp(w, h), nil
	}

	r := d.Corners // tl, tr, br, bl
	radius := func(a, b units.Length, ref float64) (int, error) {
		pa, err := env.pixels(a, ref)
		if err != nil {
			return 0, err
		}
		pb, err := env.pixels(b, ref)
		if err != nil {
			return 0, err
		}
		return max(pa, pb), nil
	}
	var in assets.Insets
	if in.Left, err = radius(r[0].X, r[3].X, float64(w)); err != nil {
		return in, err
	}
	if in.Right, err = radius(r[1].X, r[2].X, float64(w)); err != nil {
		return in, err
	}
	if in.Top, err = radius(r[0].Y, r[1].Y, float64(h)); err != nil {
		return in, err
	}
	if in.Bottom, err = radius(r[3].Y, r[2].Y, float64(h)); err != nil {
		return in, err
	}
	in.Left += border.Left + hshadow + 1
	in.Right += border.Right + hshadow + 1
	in.Top += border.Top + vshadow + 1
	in.Bottom += border.Bottom + vshadow + 1
	return in.Clamp(w, h), nil
}
