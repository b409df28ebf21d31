package style

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"cn1css/css"
	"cn1css/units"
)

var ErrUnsupportedProperty = errors.New("unsupported property")

var (
	Sides   = [4]string{"top", "right", "bottom", "left"}
	Corners = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

	ShadowKeys = [6]string{
		"cn1-box-shadow-inset", "cn1-box-shadow-color", "cn1-box-shadow-spread",
		"cn1-box-shadow-blur", "cn1-box-shadow-h", "cn1-box-shadow-v",
	}
)

// BackgroundTypes lists accepted cn1-background-type tokens.
var BackgroundTypes = []string{
	"cn1-image-scaled", "cn1-image-scaled-fill", "cn1-image-scaled-fit",
	"cn1-image-tile-both",
	"cn1-image-tile-valign-left", "cn1-image-tile-valign-center", "cn1-image-tile-valign-right",
	"cn1-image-tile-halign-top", "cn1-image-tile-halign-center", "cn1-image-tile-halign-bottom",
	"cn1-image-align-top", "cn1-image-align-bottom", "cn1-image-align-left", "cn1-image-align-right",
	"cn1-image-align-center",
	"cn1-image-align-top-left", "cn1-image-align-top-right",
	"cn1-image-align-bottom-left", "cn1-image-align-bottom-right",
	"cn1-image-border", "cn1-none", "cn1-round-border", "cn1-pill-border", "none",
	"cn1-background-gradient-linear-horizontal", "cn1-background-gradient-linear-vertical",
	"cn1-background-gradient-radial",
}

// BorderKey returns canonical key of per side border component.
func BorderKey(side, component string) string {
	return "border-" + side + "-" + component
}

// RadiusKey returns canonical key of per corner radius axis ("x" or "y").
func RadiusKey(corner, axis string) string {
	return "cn1-border-" + corner + "-radius-" + axis
}

var longhands = func() map[string]bool {
	m := map[string]bool{}
	for _, n := range []string{
		"opacity", "cn1-9patch", "cn1-source-dpi", "cn1-densities", "cn1-derive",
		"font-family", "font-size", "font-style", "font-weight",
		"color", "background-image", "background-color", "background-repeat",
		"background-size", "background-position",
		"width", "height", "min-width", "min-height",
		"cn1-image-id", "text-align", "text-decoration", "cn1-background-type",
	} {
		m[n] = true
	}
	for _, side := range Sides {
		m["margin-"+side] = true
		m["padding-"+side] = true
		for _, c := range []string{"width", "style", "color"} {
			m[BorderKey(side, c)] = true
		}
	}
	for _, corner := range Corners {
		m[RadiusKey(corner, "x")] = true
		m[RadiusKey(corner, "y")] = true
	}
	for _, k := range ShadowKeys {
		m[k] = true
	}
	return m
}()

var (
	aliasBorderRe = regexp.MustCompile(`^border-(style|width|color)-(top|right|bottom|left)$`)
	aliases       = map[string]string{
		"derive":          "cn1-derive",
		"cn1-border-type": "cn1-background-type",
	}
)

// CanonicalName folds property name and resolves alias spellings.
func CanonicalName(name string) string {
	name = strings.ToLower(name)
	if m := aliasBorderRe.FindStringSubmatch(name); m != nil {
		return BorderKey(m[2], m[1])
	}
	if a, ok := aliases[name]; ok {
		return a
	}
	return name
}

func isColorKey(name string) bool {
	switch name {
	case "color", "background-color", "cn1-box-shadow-color":
		return true
	}
	for _, side := range Sides {
		if name == BorderKey(side, "color") {
			return true
		}
	}
	return false
}

// Apply expands declaration into canonical longhand properties.
func (t *Table) Apply(decl css.Declaration) error {
	if CanonicalName(decl.Property) == "cn1-derive" {
		// element names are case sensitive
		if len(decl.Values) != 1 || decl.Values[0].Kind != css.Ident {
			return fmt.Errorf("%s: single element name expected", decl.Property)
		}
		t.Set("cn1-derive", Value{Kind: KindIdent, Text: decl.Values[0].Text})
		return nil
	}
	vals, err := FromTokens(decl.Values)
	if err != nil {
		return fmt.Errorf("%s: %w", decl.Property, err)
	}
	return t.ApplyValues(decl.Property, vals)
}

// ApplyValues expands already converted values of a property.
func (t *Table) ApplyValues(name string, vals []Value) error {
	if len(vals) == 0 {
		return fmt.Errorf("%s: empty value", name)
	}
	name = CanonicalName(name)

	switch name {
	case "margin", "padding":
		return t.applySides(name, "", vals)
	case "border-width", "border-color":
		return t.applySides("border", name[len("border-"):], vals)
	case "border-style":
		if len(vals) == 1 && (vals[0].IsIdent("cn1-round-border") || vals[0].IsIdent("cn1-pill-border")) {
			t.Set("cn1-background-type", vals[0])
			return nil
		}
		return t.applySides("border", "style", vals)
	case "border":
		for _, side := range Sides {
			if err := t.applyBorderSide(side, vals); err != nil {
				return err
			}
		}
		return nil
	case "border-top", "border-right", "border-bottom", "border-left":
		return t.applyBorderSide(name[len("border-"):], vals)
	case "border-radius":
		return t.applyRadius(vals)
	case "border-top-left-radius", "border-top-right-radius", "border-bottom-right-radius", "border-bottom-left-radius":
		return t.applyCornerRadius(name[len("border-"):len(name)-len("-radius")], vals)
	case "box-shadow":
		return t.applyShadow(vals)
	case "background":
		return t.applyBackground(vals)
	case "font":
		return t.applyFont(vals)
	case "cn1-background-type":
		if len(vals) != 1 || vals[0].Kind != KindIdent || !slices.Contains(BackgroundTypes, vals[0].Text) {
			return fmt.Errorf("%s: unsupported background type %s", name, List(vals...))
		}
	}

	if !longhands[name] {
		return fmt.Errorf("%w: %s", ErrUnsupportedProperty, name)
	}
	v := single(vals)
	if isColorKey(name) {
		c, err := colorOrKeyword(name, v)
		if err != nil {
			return err
		}
		v = c
	}
	t.Set(name, v)
	return nil
}

func single(vals []Value) Value {
	if len(vals) == 1 {
		return vals[0]
	}
	return List(vals...)
}

func colorOrKeyword(name string, v Value) (Value, error) {
	if v.IsNone() || v.IsIdent("inherit") || v.IsIdent("initial") {
		return v, nil
	}
	if c, ok := v.AsColor(); ok {
		return ColorValue(c), nil
	}
	return Value{}, fmt.Errorf("%s: invalid color %s", name, v)
}

// trbl maps 1 to 4 values onto top, right, bottom, left.
func trbl(name string, vals []Value) ([4]Value, error) {
	switch len(vals) {
	case 1:
		return [4]Value{vals[0], vals[0], vals[0], vals[0]}, nil
	case 2:
		return [4]Value{vals[0], vals[1], vals[0], vals[1]}, nil
	case 3:
		return [4]Value{vals[0], vals[1], vals[2], vals[1]}, nil
	case 4:
		return [4]Value{vals[0], vals[1], vals[2], vals[3]}, nil
	}
	return [4]Value{}, fmt.Errorf("%s: expected 1 to 4 values, got %d", name, len(vals))
}

func (t *Table) applySides(prefix, component string, vals []Value) error {
	sides, err := trbl(prefix, vals)
	if err != nil {
		return err
	}
	for i, side := range Sides {
		key := prefix + "-" + side
		if component != "" {
			key = BorderKey(side, component)
		}
		if err := t.ApplyValues(key, []Value{sides[i]}); err != nil {
			return err
		}
	}
	return nil
}

var borderWidthKeywords = map[string]float64{"thin": 1, "medium": 3, "thick": 5}

func (t *Table) applyBorderSide(side string, vals []Value) error {
	for _, v := range vals {
		switch v.Kind {
		case KindColor:
			t.Set(BorderKey(side, "color"), v)
		case KindLength:
			if v.Length.Unit == units.UnitPercent {
				return fmt.Errorf("border-%s: %w: %%", side, units.ErrUnsupportedUnit)
			}
			t.Set(BorderKey(side, "width"), v)
		case KindIdent:
			if v.Text == "cn1-round-border" || v.Text == "cn1-pill-border" {
				t.Set("cn1-background-type", v)
				continue
			}
			if w, ok := borderWidthKeywords[v.Text]; ok {
				t.Set(BorderKey(side, "width"), Len(w, units.UnitPx))
				continue
			}
			if c, ok := v.AsColor(); ok {
				t.Set(BorderKey(side, "color"), ColorValue(c))
				continue
			}
			t.Set(BorderKey(side, "style"), v)
		default:
			return fmt.Errorf("border-%s: unexpected value %s", side, v)
		}
	}
	return nil
}

// cornerValues maps 1 to 4 radius values onto Corners order
// (top-left, top-right, bottom-right, bottom-left).
func cornerValues(vals []Value) ([4]Value, error) {
	switch len(vals) {
	case 1:
		return [4]Value{vals[0], vals[0], vals[0], vals[0]}, nil
	case 2:
		return [4]Value{vals[0], vals[1], vals[0], vals[1]}, nil
	case 3:
		return [4]Value{vals[0], vals[1], vals[2], vals[1]}, nil
	case 4:
		return [4]Value{vals[0], vals[1], vals[2], vals[3]}, nil
	}
	return [4]Value{}, fmt.Errorf("border-radius: expected 1 to 4 values, got %d", len(vals))
}

func (t *Table) applyRadius(vals []Value) error {
	xs, ys := vals, vals
	if i := slices.IndexFunc(vals, func(v Value) bool { return v.isSeparator("/") }); i >= 0 {
		xs, ys = vals[:i], vals[i+1:]
	}
	cx, err := cornerValues(xs)
	if err != nil {
		return err
	}
	cy, err := cornerValues(ys)
	if err != nil {
		return err
	}
	for i, corner := range Corners {
		if cx[i].Kind != KindLength || cy[i].Kind != KindLength {
			return fmt.Errorf("border-radius: length expected")
		}
		t.Set(RadiusKey(corner, "x"), cx[i])
		t.Set(RadiusKey(corner, "y"), cy[i])
	}
	return nil
}

func (t *Table) applyCornerRadius(corner string, vals []Value) error {
	if len(vals) > 2 {
		return fmt.Errorf("border-%s-radius: expected 1 or 2 values, got %d", corner, len(vals))
	}
	x, y := vals[0], vals[len(vals)-1]
	if x.Kind != KindLength || y.Kind != KindLength {
		return fmt.Errorf("border-%s-radius: length expected", corner)
	}
	t.Set(RadiusKey(corner, "x"), x)
	t.Set(RadiusKey(corner, "y"), y)
	return nil
}

func (t *Table) applyShadow(vals []Value) error {
	if len(vals) == 1 && vals[0].IsNone() {
		for _, k := range ShadowKeys {
			t.Set(k, Ident("none"))
		}
		return nil
	}

	inset := Ident("none")
	clr := ColorValue(Color{A: 1})
	var lengths []Value
	for _, v := range vals {
		switch {
		case v.Kind == KindSeparator:
			return fmt.Errorf("box-shadow: multiple shadows are not supported")
		case v.IsIdent("inset"):
			inset = v
		case v.Kind == KindLength:
			lengths = append(lengths, v)
		default:
			c, ok := v.AsColor()
			if !ok {
				return fmt.Errorf("box-shadow: unexpected value %s", v)
			}
			clr = ColorValue(c)
		}
	}
	if len(lengths) < 2 || len(lengths) > 4 {
		return fmt.Errorf("box-shadow: expected 2 to 4 lengths, got %d", len(lengths))
	}
	for len(lengths) < 4 {
		lengths = append(lengths, Len(0, units.UnitPx))
	}
	t.Set("cn1-box-shadow-inset", inset)
	t.Set("cn1-box-shadow-color", clr)
	t.Set("cn1-box-shadow-h", lengths[0])
	t.Set("cn1-box-shadow-v", lengths[1])
	t.Set("cn1-box-shadow-blur", lengths[2])
	t.Set("cn1-box-shadow-spread", lengths[3])
	return nil
}

var (
	repeatKeywords   = []string{"repeat", "repeat-x", "repeat-y", "no-repeat"}
	positionKeywords = []string{"top", "bottom", "left", "right", "center"}
)

func (t *Table) applyBackground(vals []Value) error {
	var position []Value
	for _, v := range vals {
		switch v.Kind {
		case KindIdent:
			if slices.Contains(BackgroundTypes, v.Text) {
				t.Set("cn1-background-type", v)
				if v.IsNone() {
					t.Set("background-color", v)
				}
				continue
			}
			if slices.Contains(repeatKeywords, v.Text) {
				t.Set("background-repeat", v)
				continue
			}
			if slices.Contains(positionKeywords, v.Text) {
				position = append(position, v)
				continue
			}
			c, ok := v.AsColor()
			if !ok {
				return fmt.Errorf("background: unexpected value %s", v)
			}
			t.Set("background-color", ColorValue(c))
		case KindColor:
			t.Set("background-color", v)
		case KindURL:
			t.Set("background-image", v)
		case KindFunction:
			if v.Text != "linear-gradient" && v.Text != "radial-gradient" {
				return fmt.Errorf("background: unsupported function %s", v.Text)
			}
			t.Set("background", v)
		case KindLength:
			position = append(position, v)
		default:
			return fmt.Errorf("background: unexpected value %s", v)
		}
	}
	if len(position) > 0 {
		t.Set("background-position", single(position))
	}
	return nil
}

var (
	fontStyles  = []string{"italic", "normal", "oblique"}
	fontWeights = []string{"bold", "bolder", "lighter"}
	fontSizes   = []string{"xx-small", "x-small", "small", "medium", "large", "x-large", "xx-large", "smaller", "larger"}
)

func (t *Table) applyFont(vals []Value) error {
	var family []Value
	for i := 0; i < len(vals); i++ {
		v := vals[i]
		switch {
		case v.Kind == KindIdent && slices.Contains(fontStyles, v.Text):
			t.Set("font-style", v)
		case v.Kind == KindIdent && slices.Contains(fontWeights, v.Text):
			t.Set("font-weight", v)
		case v.Kind == KindIdent && slices.Contains(fontSizes, v.Text), v.Kind == KindLength:
			t.Set("font-size", v)
			if i+2 < len(vals) && vals[i+1].isSeparator("/") {
				// line height is not supported by runtime fonts
				i += 2
			}
		case v.Kind == KindString, v.Kind == KindIdent, v.Kind == KindSeparator && v.Text == ",":
			family = append(family, v)
		default:
			return fmt.Errorf("font: unexpected value %s", v)
		}
	}
	if len(family) > 0 {
		t.Set("font-family", single(family))
	}
	return nil
}
