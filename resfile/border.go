package resfile

import (
	"fmt"
	"strconv"
	"strings"
)

// BorderType selects runtime border implementation.
type BorderType int

const (
	BorderEmpty BorderType = iota
	BorderLine
	BorderEtchedLowered
	BorderRound
	BorderRoundRect
	BorderUnderline
	BorderCompound
	BorderImage
)

var borderTypeNames = [...]string{"empty", "line", "etchedLowered", "round", "roundRect", "underline", "compound", "image"}

func (t BorderType) String() string {
	if t < 0 || int(t) >= len(borderTypeNames) {
		return fmt.Sprintf("BorderType(%d)", int(t))
	}
	return borderTypeNames[t]
}

// Shadow of round borders. Offsets are relative to the shadow spread.
type Shadow struct {
	Spread  float64 `ion:"spread"`
	X       float64 `ion:"x"`
	Y       float64 `ion:"y"`
	Blur    float64 `ion:"blur"`
	Opacity int     `ion:"opacity"`
}

// Border is runtime border object. Which fields are meaningful depends on
// Type. Thickness is in pixels unless Millimeters is set, colors are RGB.
type Border struct {
	Type        BorderType `ion:"type"`
	Thickness   float64    `ion:"thickness,omitempty"`
	Millimeters bool       `ion:"mm,omitempty"`
	Color       int        `ion:"color,omitempty"`
	Highlight   int        `ion:"highlight,omitempty"`

	// round border (circle or pill) and round rect
	Rectangle     bool    `ion:"rectangle,omitempty"`
	Opacity       int     `ion:"opacity,omitempty"`
	Stroke        float64 `ion:"stroke,omitempty"`
	StrokeMM      bool    `ion:"stroke_mm,omitempty"`
	StrokeColor   int     `ion:"stroke_color,omitempty"`
	StrokeOpacity int     `ion:"stroke_opacity,omitempty"`
	CornerRadius  float64 `ion:"corner_radius,omitempty"` // millimeters
	TopOnly       bool    `ion:"top_only,omitempty"`
	BottomOnly    bool    `ion:"bottom_only,omitempty"`
	Shadow        *Shadow `ion:"shadow,omitempty"`

	// compound sides: top, bottom, left, right
	Sides []*Border `ion:"sides,omitempty"`
	// image border pieces in runtime order
	Images []string `ion:"images,omitempty"`
}

func thickness(v float64, mm bool) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if mm {
		return s + "mm"
	}
	return s + "px"
}

// String returns "type,param,..." description.
func (b *Border) String() string {
	if b == nil {
		return "nil"
	}
	parts := []string{b.Type.String()}
	switch b.Type {
	case BorderLine, BorderUnderline:
		parts = append(parts, thickness(b.Thickness, b.Millimeters), fmt.Sprintf("#%06X", b.Color))
	case BorderEtchedLowered:
		parts = append(parts, fmt.Sprintf("#%06X", b.Highlight), fmt.Sprintf("#%06X", b.Color))
	case BorderRound, BorderRoundRect:
		if b.Type == BorderRoundRect {
			parts = append(parts, thickness(b.CornerRadius, true))
		} else if b.Rectangle {
			parts = append(parts, "pill")
		}
		parts = append(parts, fmt.Sprintf("#%06X/%d", b.Color, b.Opacity))
		if b.Stroke > 0 {
			parts = append(parts, "stroke "+thickness(b.Stroke, b.StrokeMM), fmt.Sprintf("#%06X/%d", b.StrokeColor, b.StrokeOpacity))
		}
		if b.TopOnly {
			parts = append(parts, "top")
		}
		if b.BottomOnly {
			parts = append(parts, "bottom")
		}
		if b.Shadow != nil {
			parts = append(parts, fmt.Sprintf("shadow %g/%g/%g/%g/%d", b.Shadow.Spread, b.Shadow.X, b.Shadow.Y, b.Shadow.Blur, b.Shadow.Opacity))
		}
	case BorderCompound:
		for _, s := range b.Sides {
			parts = append(parts, "["+s.String()+"]")
		}
	case BorderImage:
		parts = append(parts, b.Images...)
	}
	return strings.Join(parts, ",")
}

func (b *Border) images(ids []string) []string {
	if b == nil {
		return ids
	}
	ids = append(ids, b.Images...)
	for _, s := range b.Sides {
		ids = s.images(ids)
	}
	return ids
}
