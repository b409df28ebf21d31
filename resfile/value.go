// Package resfile is the theme container: runtime theme values keyed by
// "<id>.<prop>", border objects and density images, persisted as Ion.
package resfile

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ValueKind tags theme Value.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueInt
	ValueBytes
	ValueImage
	ValueFont
	ValueGradient
	ValueBorder
)

// Font is runtime font descriptor. Native (TTF) fonts carry name and size in
// addition to system face/style/size fallback.
type Font struct {
	Face      int     `ion:"face"`
	Style     int     `ion:"style"`
	Size      int     `ion:"size"`
	Native    string  `ion:"native,omitempty"`
	File      string  `ion:"file,omitempty"`
	SizeType  int     `ion:"size_type"`
	SizeValue float64 `ion:"size_value"`
}

func (f *Font) String() string {
	s := fmt.Sprintf("system(%d,%d,%d)", f.Face, f.Style, f.Size)
	if f.Native != "" {
		s += fmt.Sprintf(" %s[%d:%s]", f.Native, f.SizeType, strconv.FormatFloat(f.SizeValue, 'f', -1, 64))
	}
	return s
}

// Gradient is background gradient tuple: start and end RGB, relative center
// and relative size.
type Gradient struct {
	Start int     `ion:"start"`
	End   int     `ion:"end"`
	X     float64 `ion:"x"`
	Y     float64 `ion:"y"`
	Size  float64 `ion:"size"`
}

func (g *Gradient) String() string {
	return fmt.Sprintf("%06X,%06X,%s,%s,%s", g.Start, g.End,
		strconv.FormatFloat(g.X, 'f', -1, 64), strconv.FormatFloat(g.Y, 'f', -1, 64), strconv.FormatFloat(g.Size, 'f', -1, 64))
}

// Value is a single theme property.
type Value struct {
	Kind     ValueKind `ion:"kind"`
	Str      string    `ion:"str,omitempty"`
	Int      int       `ion:"int,omitempty"`
	Bytes    []byte    `ion:"bytes,omitempty"`
	Font     *Font     `ion:"font,omitempty"`
	Gradient *Gradient `ion:"gradient,omitempty"`
	Border   *Border   `ion:"border,omitempty"`
}

func String(s string) Value          { return Value{Kind: ValueString, Str: s} }
func Int(i int) Value                { return Value{Kind: ValueInt, Int: i} }
func Bytes(b ...byte) Value          { return Value{Kind: ValueBytes, Bytes: b} }
func ImageRef(id string) Value       { return Value{Kind: ValueImage, Str: id} }
func FontValue(f Font) Value         { return Value{Kind: ValueFont, Font: &f} }
func GradientValue(g Gradient) Value { return Value{Kind: ValueGradient, Gradient: &g} }
func BorderValue(b *Border) Value    { return Value{Kind: ValueBorder, Border: b} }

// Equal compares values structurally.
func (v Value) Equal(o Value) bool {
	return reflect.DeepEqual(v, o)
}

// String is readable value representation used in logs and dumps.
func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueInt:
		return strconv.Itoa(v.Int)
	case ValueBytes:
		parts := make([]string, len(v.Bytes))
		for i, b := range v.Bytes {
			parts[i] = strconv.Itoa(int(b))
		}
		return strings.Join(parts, ",")
	case ValueImage:
		return "image:" + v.Str
	case ValueFont:
		return v.Font.String()
	case ValueGradient:
		return v.Gradient.String()
	case ValueBorder:
		return v.Border.String()
	}
	return fmt.Sprintf("Value(%d)", v.Kind)
}

// images appends ids of images value refers to.
func (v Value) images(ids []string) []string {
	switch v.Kind {
	case ValueImage:
		return append(ids, v.Str)
	case ValueBorder:
		return v.Border.images(ids)
	}
	return ids
}
