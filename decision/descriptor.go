package decision

import (
	"fmt"
	"math"
	"strings"

	"cn1css/style"
	"cn1css/units"
)

// Side is border of one box side. Style is empty when not set.
type Side struct {
	Width    units.Length
	Style    string
	Color    style.Color
	HasColor bool
}

// Visible reports whether side paints anything.
func (s Side) Visible() bool {
	switch s.Style {
	case "", "none", "hidden":
		return false
	}
	return !s.Width.IsZero()
}

func (s Side) String() string {
	c := "-"
	if s.HasColor {
		c = s.Color.String()
	}
	st := s.Style
	if st == "" {
		st = "-"
	}
	return s.Width.String() + " " + st + " " + c
}

// Corner radius, zero lengths when not set.
type Corner struct {
	X units.Length
	Y units.Length
}

// IsZero reports whether corner is square.
func (c Corner) IsZero() bool {
	return c.X.IsZero() && c.Y.IsZero()
}

// BoxShadow describes single box shadow.
type BoxShadow struct {
	Set    bool
	Inset  bool
	H      units.Length
	V      units.Length
	Blur   units.Length
	Spread units.Length
	Color  style.Color
}

// NinePatch holds explicit image border insets in pixels.
type NinePatch struct {
	Set                      bool
	Top, Right, Bottom, Left int
}

// Descriptor captures everything that affects how element box is painted.
// It is comparable: equal descriptors produce identical raster assets.
type Descriptor struct {
	Sides      [4]Side   // style.Sides order: top, right, bottom, left
	Corners    [4]Corner // style.Corners order: tl, tr, br, bl
	Background style.Color
	HasBg      bool
	BgNone     bool // background-color none or transparent
	Gradient   Gradient
	Image      string // background image url
	Repeat     string
	Size       string
	Position   string
	BgType     string
	Shadow     BoxShadow
	NinePatch  NinePatch
	Width      units.Length
	Height     units.Length
}

func lengthOf(t *style.Table, key string) units.Length {
	if v, ok := t.Get(key); ok && v.Kind == style.KindLength {
		return v.Length
	}
	return units.Length{}
}

func identOf(t *style.Table, key string) string {
	if v, ok := t.Get(key); ok && v.Kind == style.KindIdent {
		return v.Text
	}
	return ""
}

func textOf(t *style.Table, key string) string {
	if v, ok := t.Get(key); ok {
		return v.String()
	}
	return ""
}

// Describe builds descriptor of a flattened style.
func Describe(t *style.Table) (Descriptor, error) {
	var d Descriptor
	for i, side := range style.Sides {
		s := Side{
			Width: lengthOf(t, style.BorderKey(side, "width")),
			Style: identOf(t, style.BorderKey(side, "style")),
		}
		if v, ok := t.Get(style.BorderKey(side, "color")); ok {
			s.Color, s.HasColor = v.AsColor()
		}
		d.Sides[i] = s
	}
	for i, corner := range style.Corners {
		d.Corners[i] = Corner{
			X: lengthOf(t, style.RadiusKey(corner, "x")),
			Y: lengthOf(t, style.RadiusKey(corner, "y")),
		}
	}
	if v, ok := t.Get("background-color"); ok {
		switch {
		case v.IsNone(), v.IsIdent("transparent"):
			d.BgNone = true
		default:
			d.Background, d.HasBg = v.AsColor()
		}
	}
	if g, ok := GradientOf(t); ok {
		d.Gradient = ClassifyGradient(g)
	}
	if v, ok := t.Get("background-image"); ok && v.Kind == style.KindURL {
		d.Image = v.Text
	}
	d.Repeat = textOf(t, "background-repeat")
	d.Size = textOf(t, "background-size")
	d.Position = textOf(t, "background-position")
	d.BgType = identOf(t, "cn1-background-type")

	if v, ok := t.Get("cn1-box-shadow-h"); ok && !v.IsNone() {
		d.Shadow = BoxShadow{
			Set:    true,
			Inset:  identOf(t, "cn1-box-shadow-inset") == "inset",
			H:      v.Length,
			V:      lengthOf(t, "cn1-box-shadow-v"),
			Blur:   lengthOf(t, "cn1-box-shadow-blur"),
			Spread: lengthOf(t, "cn1-box-shadow-spread"),
			Color:  style.Color{A: 1},
		}
		if c, ok := t.Get("cn1-box-shadow-color"); ok {
			if clr, ok := c.AsColor(); ok {
				d.Shadow.Color = clr
			}
		}
	}
	if v, ok := t.Get("cn1-9patch"); ok && !v.IsNone() {
		np, err := ninePatch(v)
		if err != nil {
			return d, err
		}
		d.NinePatch = np
	}
	d.Width = lengthOf(t, "width")
	d.Height = lengthOf(t, "height")
	return d, nil
}

// ninePatch reads 1 to 4 pixel insets in top, right, bottom, left order.
func ninePatch(v style.Value) (NinePatch, error) {
	vals := []style.Value{v}
	if v.Kind == style.KindList {
		vals = v.List
	}
	var px []int
	for _, e := range vals {
		if e.Kind != style.KindLength {
			return NinePatch{}, fmt.Errorf("cn1-9patch: length expected, got %s", e)
		}
		switch e.Length.Unit {
		case units.UnitNone, units.UnitPx:
		default:
			return NinePatch{}, fmt.Errorf("cn1-9patch: %w: %s", units.ErrUnsupportedUnit, e.Length.Unit.Suffix())
		}
		px = append(px, int(math.Round(e.Length.Value)))
	}
	var trbl [4]int
	switch len(px) {
	case 1:
		trbl = [4]int{px[0], px[0], px[0], px[0]}
	case 2:
		trbl = [4]int{px[0], px[1], px[0], px[1]}
	case 3:
		trbl = [4]int{px[0], px[1], px[2], px[1]}
	case 4:
		trbl = [4]int{px[0], px[1], px[2], px[3]}
	default:
		return NinePatch{}, fmt.Errorf("cn1-9patch: expected 1 to 4 values, got %d", len(px))
	}
	return NinePatch{Set: true, Top: trbl[0], Right: trbl[1], Bottom: trbl[2], Left: trbl[3]}, nil
}

// Key returns stable textual form of the descriptor.
func (d Descriptor) Key() string {
	var sb strings.Builder
	for i, s := range d.Sides {
		fmt.Fprintf(&sb, "%s:%s;", style.Sides[i], s)
	}
	for i, c := range d.Corners {
		fmt.Fprintf(&sb, "%s:%s/%s;", style.Corners[i], c.X, c.Y)
	}
	fmt.Fprintf(&sb, "bg:%v/%v/%s;", d.HasBg, d.BgNone, d.Background)
	if d.Gradient.Present() {
		fmt.Fprintf(&sb, "gradient:%+v;", d.Gradient)
	}
	fmt.Fprintf(&sb, "image:%s/%s/%s/%s;type:%s;", d.Image, d.Repeat, d.Size, d.Position, d.BgType)
	if d.Shadow.Set {
		fmt.Fprintf(&sb, "shadow:%+v;", d.Shadow)
	}
	if d.NinePatch.Set {
		fmt.Fprintf(&sb, "9patch:%d,%d,%d,%d;", d.NinePatch.Top, d.NinePatch.Right, d.NinePatch.Bottom, d.NinePatch.Left)
	}
	fmt.Fprintf(&sb, "size:%sx%s", d.Width, d.Height)
	return sb.String()
}

// predicates used by strategy selection

func (d Descriptor) hasRadius() bool {
	for _, c := range d.Corners {
		if !c.IsZero() {
			return true
		}
	}
	return false
}

func (d Descriptor) unequalBorders() bool {
	for _, s := range d.Sides[1:] {
		if s != d.Sides[0] {
			return true
		}
	}
	return false
}

func (d Descriptor) hasShadow() bool {
	return d.Shadow.Set
}

func lineOrNone(s string) bool {
	switch s {
	case "", "none", "line", "solid":
		return true
	}
	return false
}

func (d Descriptor) styleNative() bool {
	switch d.Sides[0].Style {
	case "", "none", "hidden", "line", "solid", "etched":
		return true
	}
	return false
}

func (d Descriptor) pointUnits() bool {
	for _, s := range d.Sides {
		if s.Width.Unit == units.UnitPt {
			return true
		}
		if (s.Width.Unit == units.UnitPx || s.Width.Unit == units.UnitNone) && s.Width.Value != math.Trunc(s.Width.Value) {
			return true
		}
	}
	return false
}

func (d Descriptor) percentSize() bool {
	return d.Width.Unit == units.UnitPercent || d.Height.Unit == units.UnitPercent
}

func (d Descriptor) roundBorder() bool {
	return d.BgType == "cn1-round-border" || d.BgType == "cn1-pill-border"
}

// canRoundRect reports whether runtime round rect border reproduces the box.
func (d Descriptor) canRoundRect() bool {
	if d.unequalBorders() || d.Gradient.Present() || !lineOrNone(d.Sides[0].Style) || d.Image != "" || d.hasShadow() {
		return false
	}
	var radius units.Length
	for _, c := range d.Corners {
		if c.IsZero() {
			continue
		}
		if c.X != c.Y || (!radius.IsZero() && c.X != radius) {
			return false
		}
		radius = c.X
	}
	tl, tr, br, bl := d.Corners[0], d.Corners[1], d.Corners[2], d.Corners[3]
	return tl.IsZero() == tr.IsZero() && bl.IsZero() == br.IsZero()
}

// canUnderline reports whether only opaque bottom line is painted.
func (d Descriptor) canUnderline() bool {
	if d.Gradient.Present() || d.Image != "" || d.hasShadow() || d.hasRadius() {
		return false
	}
	top, right, bottom, left := d.Sides[0], d.Sides[1], d.Sides[2], d.Sides[3]
	for _, s := range []Side{top, right, left} {
		if s.Visible() {
			return false
		}
	}
	if !bottom.Visible() || !lineOrNone(bottom.Style) {
		return false
	}
	return !bottom.HasColor || bottom.Color.Opaque()
}

// complex reports whether box needs anything beyond plain native border.
func (d Descriptor) complex() bool {
	return d.hasRadius() ||
		(d.Gradient.Present() && !d.Gradient.Native()) ||
		d.hasShadow() ||
		d.unequalBorders() ||
		!d.styleNative() ||
		d.pointUnits()
}
