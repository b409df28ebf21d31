package css

import (
	"strconv"
	"strings"
)

// TokenKind classifies a single component of a declaration value.
type TokenKind int

const (
	Ident TokenKind = iota
	Number
	Dimension
	Percentage
	String
	Hash
	Function
	URL
	Comma
	Slash
	Delim
)

// Token is one component of a declaration value. Function tokens carry their
// arguments (whitespace removed, commas kept) in Args.
type Token struct {
	Kind   TokenKind
	Text   string  // identifier, function name, string or url content, hash without '#'
	Number float64 // numeric part of Number, Dimension and Percentage
	Unit   string  // lower-case unit of Dimension, "%" for Percentage
	Args   []Token
}

// String returns CSS text of the token.
func (t Token) String() string {
	switch t.Kind {
	case Number:
		return formatNumber(t.Number)
	case Dimension, Percentage:
		return formatNumber(t.Number) + t.Unit
	case String:
		return strconv.Quote(t.Text)
	case Hash:
		return "#" + t.Text
	case URL:
		return "url(" + strconv.Quote(t.Text) + ")"
	case Function:
		return t.Text + "(" + JoinTokens(t.Args) + ")"
	case Comma:
		return ","
	case Slash:
		return "/"
	default:
		return t.Text
	}
}

// IsIdent reports whether token is identifier with given (lower case) name.
func (t Token) IsIdent(name string) bool {
	return t.Kind == Ident && strings.EqualFold(t.Text, name)
}

// IsLength reports whether token is a number or dimension.
func (t Token) IsLength() bool {
	return t.Kind == Number || t.Kind == Dimension || t.Kind == Percentage
}

// SplitArgs splits function arguments on top level commas.
func (t Token) SplitArgs() [][]Token {
	var (
		res  [][]Token
		curr []Token
	)
	for _, a := range t.Args {
		if a.Kind == Comma {
			res = append(res, curr)
			curr = nil
			continue
		}
		curr = append(curr, a)
	}
	return append(res, curr)
}

// JoinTokens serializes tokens back into CSS text with canonical spacing.
func JoinTokens(tokens []Token) string {
	var sb strings.Builder
	for i, t := range tokens {
		if i > 0 && t.Kind != Comma && tokens[i-1].Kind != Slash && t.Kind != Slash {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Declaration is a single "property: values" pair.
type Declaration struct {
	Property  string
	Values    []Token
	Important bool
}

// Rule is a ruleset, every selector in a group shares declarations.
type Rule struct {
	Selectors    []string
	Declarations []Declaration
}

// FontFace represents a parsed @font-face rule.
type FontFace struct {
	Family string
	Src    string
	Style  string
	Weight string
}

// Stylesheet is the result of parsing.
type Stylesheet struct {
	Charset   string
	Rules     []Rule
	FontFaces []FontFace
	Imports   []string
	Warnings  []string
}

// RulesBySelector returns all rules listing the given selector.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var res []Rule
	for _, r := range s.Rules {
		for _, sel := range r.Selectors {
			if sel == selector {
				res = append(res, r)
				break
			}
		}
	}
	return res
}
