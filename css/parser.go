package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Parser parses CSS stylesheets into rules with typed declaration values.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

var charsetRe = regexp.MustCompile(`^@charset\s+["']([^"']+)["']\s*;`)

// Decode converts stylesheet bytes to UTF-8 honoring BOM and leading
// @charset rule. Returns detected charset label.
func Decode(data []byte) ([]byte, string, error) {
	label := "utf-8"
	if m := charsetRe.FindSubmatch(data); m != nil {
		label = strings.ToLower(string(m[1]))
	}

	var r io.Reader = bytes.NewReader(data)
	if label == "utf-8" || label == "utf8" {
		r = transform.NewReader(r, xunicode.BOMOverride(xunicode.UTF8.NewDecoder()))
	} else {
		cr, err := charset.NewReaderLabel(label, r)
		if err != nil {
			return nil, label, fmt.Errorf("unsupported stylesheet charset '%s': %w", label, err)
		}
		r = cr
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, label, fmt.Errorf("unable to decode stylesheet as '%s': %w", label, err)
	}
	return out, label, nil
}

// Parse parses CSS text into a Stylesheet. The optional source parameter
// identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) (*Stylesheet, error) {
	name := "stylesheet"
	if len(source) > 0 && source[0] != "" {
		name = source[0]
	}

	text, label, err := Decode(data)
	if err != nil {
		return nil, err
	}
	p.log.Debug("Parsing CSS", zap.String("source", name), zap.Int("bytes", len(data)), zap.String("charset", label))

	sheet := &Stylesheet{Charset: label}
	parser := css.NewParser(parse.NewInput(bytes.NewReader(text)), false)

	var pending strings.Builder
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return sheet, nil

		case css.AtRuleGrammar:
			switch string(data) {
			case "@import":
				if url := extractImportURL(parser.Values()); url != "" {
					sheet.Imports = append(sheet.Imports, url)
				}
			case "@charset":
			default:
				p.warn(sheet, "skipping at-rule "+string(data))
			}

		case css.BeginAtRuleGrammar:
			if string(data) == "@font-face" {
				ff := p.parseFontFace(parser)
				if ff.Family != "" {
					sheet.FontFaces = append(sheet.FontFaces, ff)
				}
				continue
			}
			p.warn(sheet, "skipping at-rule block "+string(data))
			p.skipAtRuleBlock(parser)

		case css.QualifiedRuleGrammar:
			// comma separated selector preceding the last one of the group
			writeSelector(&pending, data, parser.Values())
			pending.WriteByte(',')

		case css.BeginRulesetGrammar:
			writeSelector(&pending, data, parser.Values())
			rule := Rule{Selectors: splitSelectors(pending.String())}
			pending.Reset()
			rule.Declarations = p.parseDeclarations(parser, sheet)
			if len(rule.Selectors) > 0 {
				sheet.Rules = append(sheet.Rules, rule)
			}
		}
	}
}

// ParseInline parses declarations of a style attribute.
func (p *Parser) ParseInline(data []byte) ([]Declaration, error) {
	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), true)
	decls := p.parseDeclarations(parser, &Stylesheet{})
	if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("inline style: %w", err)
	}
	return decls, nil
}

func (p *Parser) warn(sheet *Stylesheet, msg string) {
	sheet.Warnings = append(sheet.Warnings, msg)
	p.log.Debug("CSS warning", zap.String("warning", msg))
}

func writeSelector(sb *strings.Builder, data []byte, values []css.Token) {
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
}

func splitSelectors(s string) []string {
	var selectors []string
	for sel := range strings.SplitSeq(s, ",") {
		if sel = strings.Join(strings.Fields(sel), " "); sel != "" {
			selectors = append(selectors, sel)
		}
	}
	return selectors
}

// extractImportURL extracts the URL from @import tokens.
func extractImportURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			return urlContent(string(t.Data))
		}
	}
	return ""
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarations(parser *css.Parser, sheet *Stylesheet) []Declaration {
	var decls []Declaration
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			values, important := convertValues(parser.Values())
			if len(values) == 0 {
				p.warn(sheet, "empty declaration "+string(data))
				continue
			}
			decls = append(decls, Declaration{
				Property:  string(data),
				Values:    values,
				Important: important,
			})

		case css.CustomPropertyGrammar:
			p.warn(sheet, "skipping custom property "+string(data))
		}
	}
}

// convertValues turns flat tokenizer output into Tokens nesting function
// arguments.
func convertValues(in []css.Token) ([]Token, bool) {
	var important bool
	if n := len(in); n >= 2 {
		// trailing "!important", possibly followed by whitespace
		j := n - 1
		for j >= 0 && in[j].TokenType == css.WhitespaceToken {
			j--
		}
		if j >= 1 && in[j].TokenType == css.IdentToken && strings.EqualFold(string(in[j].Data), "important") &&
			in[j-1].TokenType == css.DelimToken && string(in[j-1].Data) == "!" {
			important = true
			in = in[:j-1]
		}
	}
	out, _ := convertUntilClose(in, 0)
	return out, important
}

func convertUntilClose(in []css.Token, pos int) ([]Token, int) {
	var out []Token
	for pos < len(in) {
		t := in[pos]
		pos++
		s := string(t.Data)

		switch t.TokenType {
		case css.WhitespaceToken, css.CommentToken:
		case css.RightParenthesisToken:
			return out, pos
		case css.IdentToken:
			out = append(out, Token{Kind: Ident, Text: s})
		case css.NumberToken:
			f, _ := strconv.ParseFloat(s, 64)
			out = append(out, Token{Kind: Number, Number: f})
		case css.PercentageToken:
			f, _ := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
			out = append(out, Token{Kind: Percentage, Number: f, Unit: "%"})
		case css.DimensionToken:
			f, unit := parseDimension(s)
			out = append(out, Token{Kind: Dimension, Number: f, Unit: unit})
		case css.StringToken:
			out = append(out, Token{Kind: String, Text: unquote(s)})
		case css.HashToken:
			out = append(out, Token{Kind: Hash, Text: strings.TrimPrefix(s, "#")})
		case css.URLToken:
			out = append(out, Token{Kind: URL, Text: urlContent(s)})
		case css.FunctionToken:
			var args []Token
			args, pos = convertUntilClose(in, pos)
			fn := strings.ToLower(strings.TrimSuffix(s, "("))
			if fn == "url" && len(args) == 1 && args[0].Kind == String {
				out = append(out, Token{Kind: URL, Text: args[0].Text})
				continue
			}
			out = append(out, Token{Kind: Function, Text: fn, Args: args})
		case css.CommaToken:
			out = append(out, Token{Kind: Comma})
		case css.DelimToken:
			if s == "/" {
				out = append(out, Token{Kind: Slash})
				continue
			}
			out = append(out, Token{Kind: Delim, Text: s})
		default:
			out = append(out, Token{Kind: Delim, Text: s})
		}
	}
	return out, pos
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 {
		return 0, ""
	}
	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	return num, strings.ToLower(s[numEnd:])
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseFontFace parses an @font-face block.
func (p *Parser) parseFontFace(parser *css.Parser) FontFace {
	ff := FontFace{}
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return ff

		case css.DeclarationGrammar:
			values, _ := convertValues(parser.Values())
			if len(values) == 0 {
				continue
			}
			switch strings.ToLower(string(data)) {
			case "font-family":
				if values[0].Kind == String || values[0].Kind == Ident {
					ff.Family = values[0].Text
				}
			case "src":
				for _, v := range values {
					if v.Kind == URL {
						ff.Src = v.Text
						break
					}
				}
			case "font-style":
				ff.Style = JoinTokens(values)
			case "font-weight":
				ff.Weight = JoinTokens(values)
			}
		}
	}
}

func urlContent(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 5 && strings.EqualFold(s[:4], "url(") && strings.HasSuffix(s, ")") {
		s = s[4 : len(s)-1]
	}
	return unquote(strings.TrimSpace(s))
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
