package css_test

import (
	"testing"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"cn1css/css"
)

func mustParse(t *testing.T, input string) *css.Stylesheet {
	t.Helper()
	sheet, err := css.NewParser(zap.NewNop()).Parse([]byte(input), "test.css")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return sheet
}

func TestParser_SimpleRule(t *testing.T) {
	sheet := mustParse(t, `Button { background-color: #ff0000; border: 1px solid #000000; }`)

	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sheet.Rules))
	}
	rule := sheet.Rules[0]
	if len(rule.Selectors) != 1 || rule.Selectors[0] != "Button" {
		t.Fatalf("unexpected selectors %v", rule.Selectors)
	}
	if len(rule.Declarations) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(rule.Declarations))
	}

	bg := rule.Declarations[0]
	if bg.Property != "background-color" || len(bg.Values) != 1 || bg.Values[0].Kind != css.Hash || bg.Values[0].Text != "ff0000" {
		t.Errorf("unexpected background-color declaration %+v", bg)
	}

	border := rule.Declarations[1]
	if len(border.Values) != 3 {
		t.Fatalf("expected 3 border values, got %d", len(border.Values))
	}
	if v := border.Values[0]; v.Kind != css.Dimension || v.Number != 1 || v.Unit != "px" {
		t.Errorf("unexpected width token %+v", v)
	}
	if !border.Values[1].IsIdent("solid") {
		t.Errorf("unexpected style token %+v", border.Values[1])
	}
}

func TestParser_SelectorGroupsAndStates(t *testing.T) {
	sheet := mustParse(t, `Label, Button:pressed , #Device { color: red }`)

	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sheet.Rules))
	}
	want := []string{"Label", "Button:pressed", "#Device"}
	got := sheet.Rules[0].Selectors
	if len(got) != len(want) {
		t.Fatalf("selectors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selector[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if len(sheet.RulesBySelector("Button:pressed")) != 1 {
		t.Error("RulesBySelector did not find grouped selector")
	}
}

func TestParser_Functions(t *testing.T) {
	sheet := mustParse(t, `Title {
		background: linear-gradient(90deg, rgba(255, 0, 0, 0.5) 0%, #00ff00 100%);
		background-image: url("images/bg.png");
		border-radius: 10px / 5px;
		color: blue !important;
	}`)

	decls := sheet.Rules[0].Declarations
	if len(decls) != 4 {
		t.Fatalf("expected 4 declarations, got %d", len(decls))
	}

	grad := decls[0].Values
	if len(grad) != 1 || grad[0].Kind != css.Function || grad[0].Text != "linear-gradient" {
		t.Fatalf("unexpected gradient tokens %+v", grad)
	}
	args := grad[0].SplitArgs()
	if len(args) != 3 {
		t.Fatalf("expected 3 gradient arguments, got %d", len(args))
	}
	if args[1][0].Kind != css.Function || args[1][0].Text != "rgba" || len(args[1][0].SplitArgs()) != 4 {
		t.Errorf("unexpected first stop %+v", args[1])
	}
	if args[1][1].Kind != css.Percentage || args[1][1].Number != 0 {
		t.Errorf("unexpected first stop offset %+v", args[1][1])
	}

	if u := decls[1].Values[0]; u.Kind != css.URL || u.Text != "images/bg.png" {
		t.Errorf("unexpected url token %+v", u)
	}

	radius := decls[2].Values
	if len(radius) != 3 || radius[1].Kind != css.Slash {
		t.Errorf("unexpected radius tokens %+v", radius)
	}
	if s := css.JoinTokens(radius); s != "10px/5px" {
		t.Errorf("JoinTokens() = %q", s)
	}

	if !decls[3].Important || len(decls[3].Values) != 1 {
		t.Errorf("important flag not recognized: %+v", decls[3])
	}
}

func TestParser_AtRules(t *testing.T) {
	sheet := mustParse(t, `@import "base.css";
@font-face { font-family: "Roboto"; src: url(fonts/Roboto.ttf); }
@media screen { Button { color: red } }
Label { color: black }`)

	if len(sheet.Imports) != 1 || sheet.Imports[0] != "base.css" {
		t.Errorf("imports = %v", sheet.Imports)
	}
	if len(sheet.FontFaces) != 1 || sheet.FontFaces[0].Family != "Roboto" || sheet.FontFaces[0].Src != "fonts/Roboto.ttf" {
		t.Errorf("font faces = %+v", sheet.FontFaces)
	}
	if len(sheet.Rules) != 1 || sheet.Rules[0].Selectors[0] != "Label" {
		t.Errorf("media block must be skipped, rules = %+v", sheet.Rules)
	}
	if len(sheet.Warnings) == 0 {
		t.Error("expected warning for skipped @media")
	}
}

func TestParser_Charset(t *testing.T) {
	src := `@charset "iso-8859-1"; Label { font-family: "Caf` + "\xe9" + `"; }`
	sheet, err := css.NewParser(nil).Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sheet.Charset != "iso-8859-1" {
		t.Errorf("Charset = %q", sheet.Charset)
	}
	if got := sheet.Rules[0].Declarations[0].Values[0].Text; got != "Café" {
		t.Errorf("font family = %q, want Café", got)
	}

	encoded, err := charmap.ISO8859_1.NewEncoder().String("Café")
	if err != nil {
		t.Fatal(err)
	}
	out, _, err := css.Decode([]byte(`@charset "latin1";` + encoded))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(out) != `@charset "latin1";Café` {
		t.Errorf("Decode() = %q", out)
	}
}

func TestParser_BOM(t *testing.T) {
	sheet := mustParse(t, "\xef\xbb\xbfLabel { color: red }")
	if len(sheet.Rules) != 1 || sheet.Rules[0].Selectors[0] != "Label" {
		t.Errorf("BOM was not stripped: %+v", sheet.Rules)
	}
}

func TestToken_String(t *testing.T) {
	tests := []struct {
		tok  css.Token
		want string
	}{
		{css.Token{Kind: css.Dimension, Number: 1.5, Unit: "mm"}, "1.5mm"},
		{css.Token{Kind: css.Percentage, Number: 50, Unit: "%"}, "50%"},
		{css.Token{Kind: css.Hash, Text: "fff"}, "#fff"},
		{css.Token{Kind: css.String, Text: "a b"}, `"a b"`},
		{css.Token{Kind: css.Function, Text: "rgb", Args: []css.Token{
			{Kind: css.Number, Number: 1}, {Kind: css.Comma}, {Kind: css.Number, Number: 2}, {Kind: css.Comma}, {Kind: css.Number, Number: 3},
		}}, "rgb(1, 2, 3)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.tok.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParser_ParseInline(t *testing.T) {
	decls, err := css.NewParser(zap.NewNop()).ParseInline([]byte(`width: 20px; background: linear-gradient(90deg, #ff0000, #0000ff); color:red`))
	if err != nil {
		t.Fatalf("ParseInline() error = %v", err)
	}
	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(decls))
	}
	if d := decls[1]; d.Property != "background" || len(d.Values) != 1 || d.Values[0].Kind != css.Function {
		t.Errorf("unexpected background declaration %+v", d)
	}
	if d := decls[2]; d.Property != "color" || d.Values[0].Text != "red" {
		t.Errorf("unexpected color declaration %+v", d)
	}
}
