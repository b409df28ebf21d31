package style

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"cn1css/css"
	"cn1css/units"
)

// tableFor parses declarations of a single "X { ... }" rule into a table.
func tableFor(t *testing.T, body string) (*Table, error) {
	t.Helper()
	sheet, err := css.NewParser(zap.NewNop()).Parse([]byte("X {" + body + "}"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sheet.Rules))
	}
	tbl := NewTable()
	for _, d := range sheet.Rules[0].Declarations {
		if err := tbl.Apply(d); err != nil {
			return tbl, err
		}
	}
	return tbl, nil
}

func mustTable(t *testing.T, body string) *Table {
	t.Helper()
	tbl, err := tableFor(t, body)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	return tbl
}

func expect(t *testing.T, tbl *Table, want map[string]string) {
	t.Helper()
	for k, w := range want {
		v, ok := tbl.Get(k)
		if !ok {
			t.Errorf("%s is missing", k)
			continue
		}
		if v.String() != w {
			t.Errorf("%s = %q, want %q", k, v.String(), w)
		}
	}
}

func TestApply_SideShorthands(t *testing.T) {
	tests := []struct {
		body string
		want map[string]string
	}{
		{"margin: 1px", map[string]string{"margin-top": "1px", "margin-right": "1px", "margin-bottom": "1px", "margin-left": "1px"}},
		{"padding: 1mm 2mm", map[string]string{"padding-top": "1mm", "padding-right": "2mm", "padding-bottom": "1mm", "padding-left": "2mm"}},
		{"margin: 1px 2px 3px", map[string]string{"margin-top": "1px", "margin-right": "2px", "margin-bottom": "3px", "margin-left": "2px"}},
		{"padding: 1px 2px 3px 4px", map[string]string{"padding-top": "1px", "padding-right": "2px", "padding-bottom": "3px", "padding-left": "4px"}},
		{"border-width: 1px 2px", map[string]string{"border-top-width": "1px", "border-right-width": "2px", "border-bottom-width": "1px", "border-left-width": "2px"}},
		{"border-color: red blue", map[string]string{"border-top-color": "#ff0000", "border-left-color": "#0000ff"}},
		{"border-style-top: dashed", map[string]string{"border-top-style": "dashed"}},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			expect(t, mustTable(t, tt.body), tt.want)
		})
	}
}

func TestApply_Border(t *testing.T) {
	tbl := mustTable(t, "border: 1px solid #000000; border-bottom: 2pt dashed rgba(0, 0, 255, 0.5)")
	expect(t, tbl, map[string]string{
		"border-top-width":    "1px",
		"border-top-style":    "solid",
		"border-top-color":    "#000000",
		"border-left-color":   "#000000",
		"border-bottom-width": "2pt",
		"border-bottom-style": "dashed",
		"border-bottom-color": "rgba(0, 0, 255, 0.5)",
	})

	tbl = mustTable(t, "border: 1px solid cn1-pill-border")
	expect(t, tbl, map[string]string{"cn1-background-type": "cn1-pill-border"})

	tbl = mustTable(t, "border-style: cn1-round-border")
	expect(t, tbl, map[string]string{"cn1-background-type": "cn1-round-border"})
	if _, ok := tbl.Get("border-top-style"); ok {
		t.Error("round border marker must not set side styles")
	}
}

func TestApply_Radius(t *testing.T) {
	tests := []struct {
		body string
		want map[string]string
	}{
		{"border-radius: 10px", map[string]string{
			"cn1-border-top-left-radius-x": "10px", "cn1-border-bottom-right-radius-y": "10px",
		}},
		{"border-radius: 1px 2px", map[string]string{
			"cn1-border-top-left-radius-x": "1px", "cn1-border-top-right-radius-x": "2px",
			"cn1-border-bottom-right-radius-x": "1px", "cn1-border-bottom-left-radius-x": "2px",
		}},
		{"border-radius: 1px 2px 3px", map[string]string{
			"cn1-border-top-left-radius-x": "1px", "cn1-border-top-right-radius-x": "2px",
			"cn1-border-bottom-right-radius-x": "3px", "cn1-border-bottom-left-radius-x": "2px",
		}},
		{"border-radius: 1px 2px 3px 4px / 5px", map[string]string{
			"cn1-border-bottom-left-radius-x": "4px", "cn1-border-bottom-left-radius-y": "5px",
			"cn1-border-top-left-radius-y": "5px",
		}},
		{"border-top-left-radius: 3mm 1mm", map[string]string{
			"cn1-border-top-left-radius-x": "3mm", "cn1-border-top-left-radius-y": "1mm",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			expect(t, mustTable(t, tt.body), tt.want)
		})
	}
}

func TestApply_Shadow(t *testing.T) {
	tbl := mustTable(t, "box-shadow: inset 1px 2px 3px 4px rgba(0, 0, 0, 0.5)")
	expect(t, tbl, map[string]string{
		"cn1-box-shadow-inset":  "inset",
		"cn1-box-shadow-h":      "1px",
		"cn1-box-shadow-v":      "2px",
		"cn1-box-shadow-blur":   "3px",
		"cn1-box-shadow-spread": "4px",
		"cn1-box-shadow-color":  "rgba(0, 0, 0, 0.5)",
	})

	tbl = mustTable(t, "box-shadow: none")
	for _, k := range ShadowKeys {
		if v, _ := tbl.Get(k); !v.IsNone() {
			t.Errorf("%s = %s, want none", k, v)
		}
	}

	if _, err := tableFor(t, "box-shadow: 1px 1px red, 2px 2px blue"); err == nil {
		t.Error("expected error for multiple shadows")
	}
}

func TestApply_Background(t *testing.T) {
	tbl := mustTable(t, `background: cn1-image-scaled url("bg.png") #00ff00`)
	expect(t, tbl, map[string]string{
		"cn1-background-type": "cn1-image-scaled",
		"background-image":    `url("bg.png")`,
		"background-color":    "#00ff00",
	})

	tbl = mustTable(t, "background: linear-gradient(to bottom, #ff0000, #0000ff)")
	v, ok := tbl.Get("background")
	if !ok || v.Kind != KindFunction || v.Text != "linear-gradient" {
		t.Errorf("gradient not stored under background: %+v", v)
	}

	tbl = mustTable(t, "background: none")
	expect(t, tbl, map[string]string{"cn1-background-type": "none", "background-color": "none"})
}

func TestApply_Font(t *testing.T) {
	tbl := mustTable(t, `font: italic bold 3mm/4mm "Roboto", sans-serif`)
	expect(t, tbl, map[string]string{
		"font-style":  "italic",
		"font-weight": "bold",
		"font-size":   "3mm",
		"font-family": `"Roboto", sans-serif`,
	})
}

func TestApply_Aliases(t *testing.T) {
	tbl := mustTable(t, "derive: Button; cn1-border-type: cn1-pill-border")
	expect(t, tbl, map[string]string{"cn1-derive": "Button", "cn1-background-type": "cn1-pill-border"})
}

func TestApply_Errors(t *testing.T) {
	if _, err := tableFor(t, "float: left"); !errors.Is(err, ErrUnsupportedProperty) {
		t.Errorf("float: got %v, want ErrUnsupportedProperty", err)
	}
	if _, err := tableFor(t, "margin: 1em"); !errors.Is(err, units.ErrUnsupportedUnit) {
		t.Errorf("em: got %v, want ErrUnsupportedUnit", err)
	}
	if _, err := tableFor(t, "color: notacolor"); err == nil {
		t.Error("expected invalid color error")
	}
	if _, err := tableFor(t, "margin: 1px 2px 3px 4px 5px"); err == nil {
		t.Error("expected error for five margin values")
	}
	if _, err := tableFor(t, "cn1-background-type: fancy"); err == nil {
		t.Error("expected error for unknown background type")
	}
}

func TestTable_CanonicalString(t *testing.T) {
	a := mustTable(t, "padding: 1px; color: red")
	b := mustTable(t, "color: #ff0000; padding-left: 1px; padding-top: 1px; padding-bottom: 1px; padding-right: 1px")
	if !a.Equal(b) {
		t.Errorf("tables differ:\n%s\n%s", a, b)
	}
	want := "color:#ff0000;padding-bottom:1px;padding-left:1px;padding-right:1px;padding-top:1px;"
	if a.String() != want {
		t.Errorf("String() = %q, want %q", a.String(), want)
	}

	c := a.Clone()
	c.Set("color", Ident("none"))
	if a.Equal(c) {
		t.Error("Clone() must not share storage")
	}
	a.Overlay(c)
	if v, _ := a.Get("color"); !v.IsNone() {
		t.Error("Overlay() did not overwrite")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		tok  css.Token
		want string
		ok   bool
	}{
		{css.Token{Kind: css.Hash, Text: "F00"}, "#ff0000", true},
		{css.Token{Kind: css.Hash, Text: "00ff0000"}, "rgba(0, 255, 0, 0)", true},
		{css.Token{Kind: css.Ident, Text: "transparent"}, "rgba(0, 0, 0, 0)", true},
		{css.Token{Kind: css.Ident, Text: "CornflowerBlue"}, "#6495ed", true},
		{css.Token{Kind: css.Ident, Text: "solid"}, "", false},
		{css.Token{Kind: css.Hash, Text: "12345"}, "", false},
	}
	for _, tt := range tests {
		c, ok := ParseColor(tt.tok)
		if ok != tt.ok {
			t.Errorf("ParseColor(%v) ok = %v, want %v", tt.tok, ok, tt.ok)
			continue
		}
		if ok && c.String() != tt.want {
			t.Errorf("ParseColor(%v) = %s, want %s", tt.tok, c, tt.want)
		}
	}
	if got := (Color{R: 255, A: 1}).Hex(); got != "FF0000" {
		t.Errorf("Hex() = %q", got)
	}
}
