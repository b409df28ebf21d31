package style

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"cn1css/css"
)

// Color is 24-bit RGB with alpha in [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

// Opaque reports whether alpha is 1.
func (c Color) Opaque() bool {
	return c.A >= 1
}

// Alpha255 returns alpha scaled to 0..255.
func (c Color) Alpha255() int {
	return int(math.Round(c.A * 255))
}

// Hex returns upper case RRGGBB without prefix.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// RGBA converts to non premultiplied image color.
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(c.Alpha255())}
}

// String returns canonical CSS form: #rrggbb for opaque colors, rgba() otherwise.
func (c Color) String() string {
	if c.Opaque() {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// IsColorName reports whether identifier names a color.
func IsColorName(name string) bool {
	_, ok := namedColor(name)
	return ok
}

func namedColor(name string) (Color, bool) {
	name = strings.ToLower(name)
	if name == "transparent" {
		return Color{}, true
	}
	if c, ok := colornames.Map[name]; ok {
		return Color{R: c.R, G: c.G, B: c.B, A: 1}, true
	}
	return Color{}, false
}

// ParseColor converts hash, identifier, rgb() or rgba() token to Color.
func ParseColor(tok css.Token) (Color, bool) {
	switch tok.Kind {
	case css.Hash:
		return parseHex(tok.Text)
	case css.Ident:
		return namedColor(tok.Text)
	case css.Function:
		if tok.Text != "rgb" && tok.Text != "rgba" {
			return Color{}, false
		}
		return parseRGBFunc(tok)
	}
	return Color{}, false
}

func parseHex(hex string) (Color, bool) {
	expand := func(s string) string {
		var sb strings.Builder
		for _, r := range s {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		return sb.String()
	}
	switch len(hex) {
	case 3, 4:
		hex = expand(hex)
	case 6, 8:
	default:
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	c := Color{A: 1}
	if len(hex) == 8 {
		c.A = float64(v&0xff) / 255
		v >>= 8
	}
	c.R, c.G, c.B = uint8(v>>16), uint8(v>>8), uint8(v)
	return c, true
}

func parseRGBFunc(tok css.Token) (Color, bool) {
	var comps []css.Token
	for _, a := range tok.Args {
		if a.Kind == css.Comma || a.Kind == css.Slash {
			continue
		}
		comps = append(comps, a)
	}
	if len(comps) != 3 && len(comps) != 4 {
		return Color{}, false
	}
	var rgb [3]uint8
	for i := range 3 {
		switch comps[i].Kind {
		case css.Number:
			rgb[i] = clampByte(comps[i].Number)
		case css.Percentage:
			rgb[i] = clampByte(comps[i].Number * 255 / 100)
		default:
			return Color{}, false
		}
	}
	c := Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 1}
	if len(comps) == 4 {
		switch comps[3].Kind {
		case css.Number:
			c.A = math.Max(0, math.Min(1, comps[3].Number))
		case css.Percentage:
			c.A = math.Max(0, math.Min(1, comps[3].Number/100))
		default:
			return Color{}, false
		}
	}
	return c, true
}

func clampByte(f float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(f))))
}
