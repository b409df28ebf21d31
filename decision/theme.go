package decision

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cn1css/resfile"
	"cn1css/style"
	"cn1css/units"
)

var ErrUnsupportedValue = errors.New("unsupported value")

// runtime constants
const (
	alignLeft   = 1
	alignRight  = 3
	alignCenter = 4

	faceSystem    = 0
	faceMonospace = 32
	stylePlain    = 0
	styleBold     = 1
	styleItalic   = 2
	sizeMedium    = 0
	sizeSmall     = 8
	sizeLarge     = 16

	ttfSizePixels = -1
	ttfSizeSmall  = 0
	ttfSizeMedium = 1
	ttfSizeLarge  = 2
	ttfSizeMM     = 3

	unitPixels      = 0
	unitPercent     = 1
	unitMillimeters = 2
)

var textDecorations = map[string]int{
	"none":                0,
	"underline":           1,
	"line-through":        2,
	"overline":            4,
	"cn1-3d":              8,
	"cn1-3d-lowered":      16,
	"cn1-3d-shadow-north": 32,
}

var backgroundTypeCodes = map[string]int{
	"cn1-background-gradient-linear-vertical":   int(GradientLinearVertical),
	"cn1-background-gradient-linear-horizontal": int(GradientLinearHorizontal),
	"cn1-background-gradient-radial":            int(GradientRadial),
	"cn1-image-scaled":                          1,
	"cn1-image-tile-both":                       2,
	"cn1-image-tile-valign-left":                3,
	"cn1-image-tile-halign-top":                 4,
	"cn1-image-align-top":                       20,
	"cn1-image-align-bottom":                    21,
	"cn1-image-align-left":                      22,
	"cn1-image-align-right":                     23,
	"cn1-image-align-center":                    24,
	"cn1-image-align-top-left":                  25,
	"cn1-image-align-top-right":                 26,
	"cn1-image-align-bottom-left":               27,
	"cn1-image-align-bottom-right":              28,
	"cn1-image-tile-halign-center":              29,
	"cn1-image-tile-halign-bottom":              30,
	"cn1-image-tile-valign-center":              31,
	"cn1-image-tile-valign-right":               32,
	"cn1-image-scaled-fill":                     33,
	"cn1-image-scaled-fit":                      34,
	"cn1-image-border":                          0,
	"cn1-round-border":                          0,
	"cn1-pill-border":                           0,
	"cn1-none":                                  0,
	"none":                                      0,
}

// background type codes used by heuristics
const (
	bgScaled     = 1
	bgTileBoth   = 2
	bgTileVert   = 3
	bgTileHoriz  = 4
	bgScaledFill = 33
	bgScaledFit  = 34
)

// ThemeProperties derives runtime theme values of one element state from
// its flattened style. Keys are bare property names ("bgColor"); absent
// keys mean property is not set. Values depending on generated images
// (bgImage and image border) are left to the caller. Suffix is appended to
// derive target.
func ThemeProperties(t *style.Table, dec Decision, env Env, suffix string) (map[string]resfile.Value, error) {
	d := dec.Descriptor
	raster := dec.Strategy.Raster()
	props := make(map[string]resfile.Value)

	for _, box := range []struct{ key, value, unit string }{
		{"padding", "padding", "padUnit"},
		{"margin", "margin", "marUnit"},
	} {
		v, u, ok, err := insets(t, box.key)
		if err != nil {
			return nil, err
		}
		if ok {
			props[box.value] = resfile.String(v)
			props[box.unit] = resfile.Bytes(u...)
		}
	}

	if v, ok := t.Get("color"); ok {
		if c, ok := v.AsColor(); ok {
			props["fgColor"] = resfile.String(c.Hex())
		}
	}
	if d.HasBg {
		props["bgColor"] = resfile.String(d.Background.Hex())
	}
	if s, ok := transparency(d, dec.Strategy); ok {
		props["transparency"] = resfile.String(s)
	}
	if v, ok := t.Get("text-align"); ok {
		a, err := alignment(v)
		if err != nil {
			return nil, err
		}
		props["align"] = resfile.Int(a)
	}
	f, ok, err := font(t, env)
	if err != nil {
		return nil, err
	}
	if ok {
		props["font"] = resfile.FontValue(f)
	}
	if v, ok := t.Get("text-decoration"); ok {
		code, known := textDecorations[v.Text]
		if v.Kind != style.KindIdent || !known {
			return nil, fmt.Errorf("text-decoration: %w: %s", ErrUnsupportedValue, v)
		}
		props["textDecoration"] = resfile.Int(code)
	}
	if !raster && d.Gradient.Native() {
		props["bgGradient"] = resfile.GradientValue(d.Gradient.Tuple())
	}
	if code, ok, err := backgroundType(d, dec.Strategy); err != nil {
		return nil, err
	} else if ok {
		props["bgType"] = resfile.Int(code)
	}
	if v, ok := t.Get("cn1-derive"); ok && v.Text != "" {
		props["derive"] = resfile.String(v.Text + suffix)
	}
	if v, ok := t.Get("opacity"); ok && !raster {
		if v.Kind != style.KindLength || v.Length.Unit != units.UnitNone {
			return nil, fmt.Errorf("opacity: %w: %s", ErrUnsupportedValue, v)
		}
		props["opacity"] = resfile.String(strconv.Itoa(int(v.Length.Value * 255)))
	}
	if !raster {
		b, err := NativeBorder(d, env)
		if err != nil {
			return nil, err
		}
		if b != nil {
			props["border"] = resfile.BorderValue(b)
		}
	}
	return props, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// insets returns "top,bottom,left,right" and unit bytes in top, left,
// bottom, right order.
func insets(t *style.Table, prefix string) (string, []byte, bool, error) {
	found := false
	for _, side := range style.Sides {
		if _, ok := t.Get(prefix + "-" + side); ok {
			found = true
		}
	}
	if !found {
		return "", nil, false, nil
	}
	var (
		vals [4]float64
		us   [4]byte
	)
	for i, side := range style.Sides {
		v, ok := t.Get(prefix + "-" + side)
		if !ok {
			continue
		}
		if v.Kind != style.KindLength {
			return "", nil, false, fmt.Errorf("%s-%s: length expected, got %s", prefix, side, v)
		}
		switch l := v.Length; l.Unit {
		case units.UnitPx, units.UnitPt, units.UnitNone:
			vals[i], us[i] = math.Round(l.Value), unitPixels
		case units.UnitMm:
			vals[i], us[i] = l.Value, unitMillimeters
		case units.UnitCm:
			vals[i], us[i] = l.Value*10, unitMillimeters
		case units.UnitIn:
			vals[i], us[i] = l.Value*25.4, unitMillimeters
		case units.UnitPercent:
			vals[i], us[i] = l.Value, unitPercent
		default:
			return "", nil, false, fmt.Errorf("%s-%s: %w: %s", prefix, side, units.ErrUnsupportedUnit, l.Unit)
		}
	}
	top, right, bottom, left := 0, 1, 2, 3
	s := strings.Join([]string{
		formatFloat(vals[top]), formatFloat(vals[bottom]), formatFloat(vals[left]), formatFloat(vals[right]),
	}, ",")
	return s, []byte{us[top], us[left], us[bottom], us[right]}, true, nil
}

func alignment(v style.Value) (int, error) {
	switch {
	case v.IsIdent("left"):
		return alignLeft, nil
	case v.IsIdent("right"):
		return alignRight, nil
	case v.IsIdent("center"):
		return alignCenter, nil
	}
	return 0, fmt.Errorf("text-align: %w: %s", ErrUnsupportedValue, v)
}

// transparency returns background alpha, first match wins.
func transparency(d Descriptor, s Strategy) (string, bool) {
	switch {
	case !s.Raster() && d.Gradient.Native():
		return strconv.Itoa(d.Gradient.Alpha()), true
	case d.BgType == "none" && !d.HasBg:
		return "0", true
	case s == StrategyRasterImageBorder:
		return "0", true
	case d.BgNone:
		return "0", true
	case !d.HasBg:
		return "", false
	}
	return strconv.Itoa(d.Background.Alpha255()), true
}

func backgroundType(d Descriptor, s Strategy) (int, bool, error) {
	if d.BgType != "" {
		code, ok := backgroundTypeCodes[d.BgType]
		if !ok {
			return 0, false, fmt.Errorf("cn1-background-type: %w: %s", ErrUnsupportedValue, d.BgType)
		}
		return code, true, nil
	}
	switch {
	case !s.Raster() && d.Gradient.Native():
		return int(d.Gradient.Kind), true, nil
	case s == StrategyRasterBackgroundImage:
		if code, ok := sizeType(d.Size); ok {
			return code, true, nil
		}
		if d.Size == "" {
			return bgScaled, true, nil
		}
	case s != StrategyRasterImageBorder && d.Image != "":
		switch d.Repeat {
		case "", "repeat":
			return bgTileBoth, true, nil
		case "repeat-x":
			return bgTileHoriz, true, nil
		case "repeat-y":
			return bgTileVert, true, nil
		}
		if code, ok := sizeType(d.Size); ok {
			return code, true, nil
		}
		if d.Position != "" {
			return positionType(d.Position), true, nil
		}
	}
	return 0, false, nil
}

func sizeType(size string) (int, bool) {
	switch size {
	case "cover":
		return bgScaledFill, true
	case "contain", "contains":
		return bgScaledFit, true
	}
	f := strings.Fields(size)
	if len(f) == 0 || !strings.HasSuffix(f[0], "%") {
		return 0, false
	}
	pct := func(s string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil || !strings.HasSuffix(s, "%") {
			return 0
		}
		return v
	}
	if pct(f[0]) > 99 && (len(f) == 1 || f[1] == "auto" || pct(f[1]) > 99) {
		return bgScaled, true
	}
	return 0, false
}

func positionType(pos string) int {
	f := append(strings.Fields(pos), "auto")
	x, y := f[0], f[1]
	switch x {
	case "left":
		switch y {
		case "top":
			return backgroundTypeCodes["cn1-image-align-top-left"]
		case "bottom":
			return backgroundTypeCodes["cn1-image-align-bottom-left"]
		}
		return backgroundTypeCodes["cn1-image-align-left"]
	case "right":
		switch y {
		case "top":
			return backgroundTypeCodes["cn1-image-align-top-right"]
		case "bottom":
			return backgroundTypeCodes["cn1-image-align-bottom-right"]
		}
		return backgroundTypeCodes["cn1-image-align-right"]
	}
	switch y {
	case "top":
		return backgroundTypeCodes["cn1-image-align-top"]
	case "bottom":
		return backgroundTypeCodes["cn1-image-align-bottom"]
	}
	return backgroundTypeCodes["cn1-image-align-center"]
}

var systemFamilies = map[string]int{
	"sans-serif": faceSystem,
	"serif":      faceSystem,
	"times":      faceSystem,
	"courier":    faceSystem,
	"arial":      faceSystem,
	"cursive":    faceSystem,
	"fantasy":    faceSystem,
	"monospace":  faceMonospace,
}

func listOf(v style.Value) []style.Value {
	if v.Kind == style.KindList {
		return v.List
	}
	return []style.Value{v}
}

// font builds runtime font descriptor, false when style sets no font
// property.
func font(t *style.Table, env Env) (resfile.Font, bool, error) {
	family, hasFamily := t.Get("font-family")
	size, hasSize := t.Get("font-size")
	fstyle, hasStyle := t.Get("font-style")
	weight, hasWeight := t.Get("font-weight")
	if !hasFamily && !hasSize && !hasStyle && !hasWeight {
		return resfile.Font{}, false, nil
	}
	f := resfile.Font{
		Face:     faceSystem,
		Style:    stylePlain,
		Size:     sizeMedium,
		Native:   "native:MainRegular",
		SizeType: ttfSizeMedium,
	}
	if hasSize {
		for _, v := range listOf(size) {
			if err := fontSize(&f, v); err != nil {
				return f, false, err
			}
		}
	}
	if hasStyle && (fstyle.IsIdent("italic") || fstyle.IsIdent("oblique")) {
		f.Style = styleItalic
		f.Native = "native:ItalicRegular"
	}
	if hasWeight && weight.IsIdent("bold") {
		f.Style |= styleBold
		if f.Style&styleItalic != 0 {
			f.Native = "native:ItalicBold"
		} else {
			f.Native = "native:MainBold"
		}
	}
	if hasFamily {
	families:
		for _, v := range listOf(family) {
			if v.Kind != style.KindIdent && v.Kind != style.KindString {
				continue
			}
			if face, ok := systemFamilies[strings.ToLower(v.Text)]; ok {
				f.Face = face
				break families
			}
			for _, ff := range env.FontFaces {
				if ff.Family == v.Text {
					f.File = ff.Src
					f.Native = ""
					break families
				}
			}
			if strings.HasPrefix(v.Text, "native:") {
				f.Native = v.Text
			}
		}
	}
	return f, true, nil
}

func fontSize(f *resfile.Font, v style.Value) error {
	switch v.Kind {
	case style.KindIdent:
		switch v.Text {
		case "small", "x-small", "xx-small":
			f.Size, f.SizeType = sizeSmall, ttfSizeSmall
		case "large", "x-large", "xx-large":
			f.Size, f.SizeType = sizeLarge, ttfSizeLarge
		case "medium":
		default:
			return fmt.Errorf("font-size: %w: %s", ErrUnsupportedValue, v)
		}
		return nil
	case style.KindLength:
	default:
		return fmt.Errorf("font-size: %w: %s", ErrUnsupportedValue, v)
	}
	l := v.Length
	switch l.Unit {
	case units.UnitPx, units.UnitNone:
		f.SizeType, f.SizeValue = ttfSizePixels, l.Value
	case units.UnitPt:
		f.SizeType, f.SizeValue = ttfSizeMM, l.Value/72*25.4
	case units.UnitMm:
		f.SizeType, f.SizeValue = ttfSizeMM, l.Value
	case units.UnitCm:
		f.SizeType, f.SizeValue = ttfSizeMM, l.Value*10
	case units.UnitIn:
		f.SizeType, f.SizeValue = ttfSizeMM, l.Value*25.4
	case units.UnitPercent:
		scale := l.Value / 100
		switch f.SizeType {
		case ttfSizePixels, ttfSizeMM:
			f.SizeValue *= scale
		case ttfSizeMedium:
			f.SizeType, f.SizeValue = ttfSizeMM, 3*scale
		case ttfSizeSmall:
			f.SizeType, f.SizeValue = ttfSizeMM, 2*scale
		case ttfSizeLarge:
			f.SizeType, f.SizeValue = ttfSizeMM, 4*scale
		}
	default:
		return fmt.Errorf("font-size: %w: %s", units.ErrUnsupportedUnit, l.Unit)
	}
	return nil
}
