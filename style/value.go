// Package style holds typed property values and per element+state property
// tables, expanding CSS shorthands into canonical longhand keys.
package style

import (
	"fmt"
	"strconv"
	"strings"

	"cn1css/css"
	"cn1css/units"
)

// Kind tags a Value.
type Kind int

const (
	KindIdent Kind = iota
	KindLength
	KindColor
	KindString
	KindURL
	KindFunction
	KindSeparator
	KindList
)

// Value is a tagged property value.
type Value struct {
	Kind   Kind
	Text   string // identifier (lower case), string, url, separator
	Length units.Length
	Color  Color
	Func   css.Token // gradients and other functions kept as parsed
	List   []Value
}

func Ident(s string) Value { return Value{Kind: KindIdent, Text: strings.ToLower(s)} }
func Len(v float64, u units.Unit) Value { return Value{Kind: KindLength, Length: units.Length{Value: v, Unit: u}} }
func ColorValue(c Color) Value { return Value{Kind: KindColor, Color: c} }
func List(vs ...Value) Value { return Value{Kind: KindList, List: vs} }

// IsIdent reports whether value is the given identifier.
func (v Value) IsIdent(name string) bool {
	return v.Kind == KindIdent && v.Text == name
}

// IsNone reports whether value is "none".
func (v Value) IsNone() bool {
	return v.IsIdent("none")
}

// IsZeroLength reports whether value is a zero length.
func (v Value) IsZeroLength() bool {
	return v.Kind == KindLength && v.Length.IsZero()
}

func (v Value) isSeparator(s string) bool {
	return v.Kind == KindSeparator && v.Text == s
}

// AsColor returns color of color values and color identifiers.
func (v Value) AsColor() (Color, bool) {
	switch v.Kind {
	case KindColor:
		return v.Color, true
	case KindIdent:
		return namedColor(v.Text)
	}
	return Color{}, false
}

// String returns canonical CSS text of the value, used for checksums and
// capture documents.
func (v Value) String() string {
	switch v.Kind {
	case KindIdent, KindSeparator:
		return v.Text
	case KindLength:
		return strconv.FormatFloat(v.Length.Value, 'f', -1, 64) + v.Length.Unit.Suffix()
	case KindColor:
		return v.Color.String()
	case KindString:
		return strconv.Quote(v.Text)
	case KindURL:
		return "url(" + strconv.Quote(v.Text) + ")"
	case KindFunction:
		return v.Func.String()
	case KindList:
		var sb strings.Builder
		for i, e := range v.List {
			if i > 0 && e.Kind != KindSeparator && !v.List[i-1].isSeparator("/") {
				sb.WriteByte(' ')
			}
			sb.WriteString(e.String())
		}
		return sb.String()
	}
	return ""
}

// FromToken converts a parsed token to Value. Units outside of supported set
// are rejected.
func FromToken(tok css.Token) (Value, error) {
	switch tok.Kind {
	case css.Ident:
		return Ident(tok.Text), nil
	case css.Number:
		return Len(tok.Number, units.UnitNone), nil
	case css.Percentage:
		return Len(tok.Number, units.UnitPercent), nil
	case css.Dimension:
		u, err := units.FromSuffix(tok.Unit)
		if err != nil {
			return Value{}, err
		}
		return Len(tok.Number, u), nil
	case css.Hash:
		c, ok := parseHex(tok.Text)
		if !ok {
			return Value{}, fmt.Errorf("invalid color #%s", tok.Text)
		}
		return ColorValue(c), nil
	case css.String:
		return Value{Kind: KindString, Text: tok.Text}, nil
	case css.URL:
		return Value{Kind: KindURL, Text: tok.Text}, nil
	case css.Function:
		if c, ok := ParseColor(tok); ok {
			return ColorValue(c), nil
		}
		return Value{Kind: KindFunction, Text: tok.Text, Func: tok}, nil
	case css.Comma:
		return Value{Kind: KindSeparator, Text: ","}, nil
	case css.Slash:
		return Value{Kind: KindSeparator, Text: "/"}, nil
	}
	return Value{}, fmt.Errorf("unexpected token '%s'", tok.String())
}

// FromTokens converts declaration values.
func FromTokens(toks []css.Token) ([]Value, error) {
	res := make([]Value, 0, len(toks))
	for _, t := range toks {
		v, err := FromToken(t)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}
