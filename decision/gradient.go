package decision

import (
	"errors"
	"fmt"
	"math"

	"cn1css/css"
	"cn1css/resfile"
	"cn1css/style"
)

var ErrInvalidGradient = errors.New("gradient cannot be rendered natively")

// GradientKind is runtime gradient type, values are background type codes.
type GradientKind int

const (
	GradientNone             GradientKind = 0
	GradientLinearVertical   GradientKind = 6
	GradientLinearHorizontal GradientKind = 7
	GradientRadial           GradientKind = 8
)

// Gradient is a classified background gradient. Func is empty when style
// has no gradient. Reason is set when gradient cannot be expressed natively,
// in that case only Kind of a linear gradient with recognized direction is
// meaningful. Source is the gradient text as written, it tells apart
// non-native gradients whose parsed fields stay empty.
type Gradient struct {
	Func   string
	Source string
	Kind   GradientKind
	Start  style.Color
	End    style.Color
	X      float64
	Y      float64
	Size   float64
	Reason string
}

// Present reports whether style has a gradient at all.
func (g Gradient) Present() bool {
	return g.Func != ""
}

// Native reports whether gradient maps onto runtime gradient.
func (g Gradient) Native() bool {
	return g.Present() && g.Reason == ""
}

// Err returns ErrInvalidGradient carrying the reason, nil for native gradients.
func (g Gradient) Err() error {
	if g.Reason == "" {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidGradient, g.Func, g.Reason)
}

// Alpha is shared alpha of both stops.
func (g Gradient) Alpha() int {
	return g.Start.Alpha255()
}

// Tuple returns theme value of native gradient.
func (g Gradient) Tuple() resfile.Gradient {
	return resfile.Gradient{
		Start: rgb(g.Start),
		End:   rgb(g.End),
		X:     g.X,
		Y:     g.Y,
		Size:  g.Size,
	}
}

func rgb(c style.Color) int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

// GradientOf returns gradient function value of the style if any.
func GradientOf(t *style.Table) (style.Value, bool) {
	for _, key := range []string{"background", "background-image"} {
		if v, ok := t.Get(key); ok && v.Kind == style.KindFunction {
			if v.Text == "linear-gradient" || v.Text == "radial-gradient" {
				return v, true
			}
		}
	}
	return style.Value{}, false
}

// ClassifyGradient parses gradient function value.
func ClassifyGradient(v style.Value) Gradient {
	g := Gradient{Func: v.Text, Source: v.String(), X: 0.5, Y: 0.5, Size: 1}
	switch v.Text {
	case "linear-gradient":
		g.Reason = g.linear(v.Func.SplitArgs())
	case "radial-gradient":
		g.Reason = g.radial(v.Func.SplitArgs())
	default:
		g.Reason = "not a gradient"
	}
	return g
}

func tokenColor(tok css.Token) (style.Color, bool) {
	v, err := style.FromToken(tok)
	if err != nil {
		return style.Color{}, false
	}
	return v.AsColor()
}

type stop struct {
	color  style.Color
	offset float64
	hasPos bool
}

func parseStop(group []css.Token) (stop, string) {
	if len(group) == 0 || len(group) > 2 {
		return stop{}, "unsupported color stop syntax"
	}
	c, ok := tokenColor(group[0])
	if !ok {
		return stop{}, fmt.Sprintf("expected color, found '%s'", group[0])
	}
	s := stop{color: c}
	if len(group) == 2 {
		switch pos := group[1]; {
		case pos.Kind == css.Percentage:
			s.offset, s.hasPos = pos.Number, true
		case pos.IsLength() && pos.Number == 0:
			s.offset, s.hasPos = 0, true
		default:
			return stop{}, fmt.Sprintf("unsupported color stop position '%s'", pos)
		}
	}
	return s, ""
}

func (g *Gradient) stops(groups [][]css.Token) (first, second stop, reason string) {
	if len(groups) != 2 {
		return first, second, fmt.Sprintf("only two color stops are supported, found %d", len(groups))
	}
	if first, reason = parseStop(groups[0]); reason != "" {
		return
	}
	if second, reason = parseStop(groups[1]); reason != "" {
		return
	}
	if first.hasPos && math.Abs(first.offset) > 0.0001 {
		return first, second, "start color must be at 0%"
	}
	if first.color.Alpha255() != second.color.Alpha255() {
		return first, second, "alphas of start and end colors don't match"
	}
	return first, second, ""
}

// Angle converts angle token to degrees.
func Angle(tok css.Token) (float64, bool) {
	if tok.Kind != css.Dimension {
		return 0, false
	}
	switch tok.Unit {
	case "deg":
		return tok.Number, true
	case "rad":
		return tok.Number * 180 / math.Pi, true
	case "grad":
		return tok.Number * 0.9, true
	case "turn":
		return tok.Number * 360, true
	}
	return 0, false
}

func (g *Gradient) linear(groups [][]css.Token) string {
	kind, reverse := GradientLinearVertical, false
	if len(groups) > 0 && len(groups[0]) > 0 {
		head := groups[0]
		switch deg, isAngle := Angle(head[0]); {
		case head[0].IsIdent("to"):
			if len(head) != 2 {
				return "'to' must be followed by a single side"
			}
			switch {
			case head[1].IsIdent("top"):
				kind, reverse = GradientLinearVertical, true
			case head[1].IsIdent("bottom"):
				kind = GradientLinearVertical
			case head[1].IsIdent("left"):
				kind, reverse = GradientLinearHorizontal, true
			case head[1].IsIdent("right"):
				kind = GradientLinearHorizontal
			default:
				return fmt.Sprintf("unrecognized side '%s', expected top, left, bottom or right", head[1])
			}
			groups = groups[1:]
		case isAngle:
			if len(head) != 1 {
				return "unsupported angle syntax"
			}
			switch near := func(a float64) bool { return math.Abs(deg-a) < 0.0001 }; {
			case near(0):
				kind, reverse = GradientLinearVertical, true
			case near(90):
				kind = GradientLinearHorizontal
			case near(180):
				kind = GradientLinearVertical
			case near(270):
				kind, reverse = GradientLinearHorizontal, true
			default:
				return "only 0, 90, 180 and 270 degrees are supported"
			}
			groups = groups[1:]
		}
	}
	g.Kind = kind
	first, second, reason := g.stops(groups)
	if reason != "" {
		return reason
	}
	if second.hasPos && math.Abs(second.offset-100) > 0.0001 {
		return "end color must be at 100%"
	}
	g.Start, g.End = first.color, second.color
	if reverse {
		g.Start, g.End = g.End, g.Start
	}
	return ""
}

type coord struct {
	x, y float64
	axis byte
}

func keywordCoord(tok css.Token) (coord, bool) {
	switch {
	case tok.IsIdent("center"):
		return coord{x: 0.5, y: 0.5}, true
	case tok.IsIdent("left"):
		return coord{x: 0, axis: 'x'}, true
	case tok.IsIdent("right"):
		return coord{x: 1, axis: 'x'}, true
	case tok.IsIdent("top"):
		return coord{y: 0, axis: 'y'}, true
	case tok.IsIdent("bottom"):
		return coord{y: 1, axis: 'y'}, true
	}
	return coord{}, false
}

func (g *Gradient) position(toks []css.Token) string {
	if len(toks) == 0 || len(toks) > 2 {
		return "invalid radial-gradient position"
	}
	relX, relY := 0.5, 0.5
	var firstAxis byte
	for i, tok := range toks {
		var c coord
		switch {
		case tok.Kind == css.Percentage:
			// second percentage of a pair is vertical unless first one was
			if i == 1 && firstAxis != 'y' {
				c = coord{y: tok.Number / 100, axis: 'y'}
			} else {
				c = coord{x: tok.Number / 100, axis: 'x'}
			}
		default:
			var ok bool
			if c, ok = keywordCoord(tok); !ok {
				return fmt.Sprintf("invalid position coordinate '%s' for radial-gradient", tok)
			}
		}
		switch c.axis {
		case 'x':
			relX = c.x
		case 'y':
			relY = c.y
		default:
			if i == 0 {
				relX, relY = c.x, c.y
			} else if firstAxis == 'x' {
				relY = c.y
			} else {
				relX = c.x
			}
		}
		if i == 0 {
			firstAxis = c.axis
		}
	}
	g.X, g.Y = 1-relX, 1-relY
	return ""
}

func (g *Gradient) radial(groups [][]css.Token) string {
	if len(groups) == 0 || len(groups[0]) == 0 {
		return "no parameters found in radial-gradient"
	}
	if _, isColor := tokenColor(groups[0][0]); !isColor {
		head := groups[0]
		for i := 0; i < len(head); i++ {
			switch tok := head[i]; {
			case tok.IsIdent("circle"):
				if i != 0 {
					return "'circle' must start radial-gradient"
				}
			case tok.IsIdent("closest-side"):
			case tok.IsIdent("at"):
				if reason := g.position(head[i+1:]); reason != "" {
					return reason
				}
				i = len(head)
			default:
				return fmt.Sprintf("unsupported syntax for radial-gradient (%s)", tok)
			}
		}
		groups = groups[1:]
	}
	first, second, reason := g.stops(groups)
	if reason != "" {
		return reason
	}
	if second.hasPos {
		g.Size = second.offset / 100
	}
	g.Kind = GradientRadial
	g.Start, g.End = first.color, second.color
	return ""
}
