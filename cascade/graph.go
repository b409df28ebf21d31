// Package cascade keeps named elements with their state variants and derive
// links and resolves flattened styles.
package cascade

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"cn1css/css"
	"cn1css/style"
	"cn1css/utils/debug"
)

var (
	ErrDeriveCycle    = errors.New("derive cycle")
	ErrUnknownElement = errors.New("unknown element")
)

// ApplyError locates failed declaration.
type ApplyError struct {
	Selector string
	Property string
	Err      error
}

func (e *ApplyError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("%s: %v", e.Selector, e.Err)
	}
	return fmt.Sprintf("%s { %s }: %v", e.Selector, e.Property, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// Element is a named selector target. Variant tables are created on first
// use.
type Element struct {
	name   string
	parent string
	styles [5]*style.Table
}

func (e *Element) Name() string {
	return e.name
}

// Parent returns name of style parent, empty for the root.
func (e *Element) Parent() string {
	return e.parent
}

// Style returns own (not flattened) table of the variant or nil.
func (e *Element) Style(v Variant) *style.Table {
	return e.styles[v]
}

func (e *Element) variant(v Variant) *style.Table {
	if e.styles[v] == nil {
		e.styles[v] = style.NewTable()
	}
	return e.styles[v]
}

// Device holds density bounds from the #Device rule, zero when not set.
type Device struct {
	MinDPI int
	MaxDPI int
	DPI    int
}

// Graph is an arena of elements addressed by name.
type Graph struct {
	log       *zap.Logger
	elements  map[string]*Element
	device    Device
	constants map[string]style.Value
}

func New(log *zap.Logger) *Graph {
	if log == nil {
		log = zap.NewNop()
	}
	return &Graph{
		log:       log.Named("cascade"),
		elements:  map[string]*Element{RootName: {name: RootName}},
		constants: make(map[string]style.Value),
	}
}

func (g *Graph) Device() Device {
	return g.device
}

// Constants returns theme wide constants by name.
func (g *Graph) Constants() map[string]style.Value {
	return g.constants
}

// Element returns element by name.
func (g *Graph) Element(name string) (*Element, bool) {
	e, ok := g.elements[name]
	return e, ok
}

// Ensure returns named element creating it (parented to the root) if necessary.
func (g *Graph) Ensure(name string) *Element {
	if e, ok := g.elements[name]; ok {
		return e
	}
	e := &Element{name: name, parent: RootName}
	g.elements[name] = e
	return e
}

// Names returns all element names except the root in natural order.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.elements))
	for n := range g.elements {
		if n != RootName {
			names = append(names, n)
		}
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// AddSheet applies every rule of the stylesheet. The first failure aborts.
func (g *Graph) AddSheet(sheet *css.Stylesheet) error {
	for _, rule := range sheet.Rules {
		for _, sel := range rule.Selectors {
			for _, decl := range rule.Declarations {
				if err := g.Apply(sel, decl); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Apply resolves selector and applies a single declaration to it.
func (g *Graph) Apply(selector string, decl css.Declaration) error {
	target, err := ParseSelector(selector)
	if err != nil {
		return &ApplyError{Selector: selector, Err: err}
	}
	switch target.Kind {
	case TargetDevice:
		err = g.applyDevice(decl)
	case TargetConstants:
		err = g.applyConstant(decl)
	default:
		err = g.applyElement(target, decl)
	}
	if err != nil {
		return &ApplyError{Selector: selector, Property: decl.Property, Err: err}
	}
	return nil
}

func (g *Graph) applyElement(target Target, decl css.Declaration) error {
	e := g.Ensure(target.Element)
	tbl := e.variant(target.Variant)
	if err := tbl.Apply(decl); err != nil {
		return err
	}
	if target.Variant != VariantDefault || style.CanonicalName(decl.Property) != "cn1-derive" {
		return nil
	}
	v, _ := tbl.Get("cn1-derive")
	return g.derive(e, v.Text)
}

// derive reparents element rejecting links which would close a cycle.
func (g *Graph) derive(e *Element, target string) error {
	if e.name == RootName {
		return fmt.Errorf("%w: root element cannot derive", ErrDeriveCycle)
	}
	for name := target; name != ""; {
		if name == e.name {
			return fmt.Errorf("%w: %s -> %s", ErrDeriveCycle, e.name, target)
		}
		p, ok := g.elements[name]
		if !ok {
			break
		}
		name = p.parent
	}
	g.Ensure(target)
	g.log.Debug("Derive", zap.String("element", e.name), zap.String("parent", target))
	e.parent = target
	return nil
}

func deviceDPI(decl css.Declaration) (int, error) {
	if len(decl.Values) != 1 {
		return 0, fmt.Errorf("single resolution value expected")
	}
	tok := decl.Values[0]
	switch {
	case tok.Kind == css.Number, tok.Kind == css.Dimension && tok.Unit == "dpi":
		if tok.Number <= 0 {
			return 0, fmt.Errorf("resolution must be positive")
		}
		return int(tok.Number), nil
	}
	return 0, fmt.Errorf("resolution in dpi expected, got %s", tok)
}

func (g *Graph) applyDevice(decl css.Declaration) error {
	prop := strings.ToLower(decl.Property)
	var dst *int
	switch prop {
	case "min-resolution":
		dst = &g.device.MinDPI
	case "max-resolution":
		dst = &g.device.MaxDPI
	case "resolution":
		dst = &g.device.DPI
	default:
		return fmt.Errorf("%w: %s", style.ErrUnsupportedProperty, prop)
	}
	dpi, err := deviceDPI(decl)
	if err != nil {
		return err
	}
	*dst = dpi
	return nil
}

func (g *Graph) applyConstant(decl css.Declaration) error {
	vals, err := style.FromTokens(decl.Values)
	if err != nil {
		return err
	}
	if len(vals) != 1 {
		return fmt.Errorf("single constant value expected")
	}
	v := vals[0]
	if strings.HasSuffix(decl.Property, "Image") && v.Kind != style.KindURL {
		return fmt.Errorf("image constant requires url()")
	}
	if v.Kind == style.KindIdent && decl.Values[0].Kind == css.Ident {
		// keep spelling of identifiers, constants are case sensitive
		v.Text = decl.Values[0].Text
	}
	g.constants[decl.Property] = v
	return nil
}

// Flatten merges style of element state over its parent chain: parent
// state first, then own default, then own state. Derive literals of
// ancestors are not inherited.
func (g *Graph) Flatten(name string, v Variant) (*style.Table, error) {
	return g.flatten(name, v, make(map[string]bool))
}

func (g *Graph) flatten(name string, v Variant, visited map[string]bool) (*style.Table, error) {
	e, ok := g.elements[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownElement, name)
	}
	if visited[name] {
		return nil, fmt.Errorf("%w: through %s", ErrDeriveCycle, name)
	}
	visited[name] = true

	res := style.NewTable()
	if e.parent != "" {
		p, err := g.flatten(e.parent, v, visited)
		if err != nil {
			return nil, err
		}
		p.Delete("cn1-derive")
		res = p
	}
	res.Overlay(e.styles[VariantDefault])
	if v != VariantDefault {
		res.Overlay(e.styles[v])
	}
	return res, nil
}

// Derives returns derive targets declared by any variant of the element.
func (g *Graph) Derives(name string) []string {
	e, ok := g.elements[name]
	if !ok {
		return nil
	}
	var res []string
	seen := map[string]bool{}
	for _, tbl := range e.styles {
		if v, ok := tbl.Get("cn1-derive"); ok && v.Text != "" && !seen[v.Text] {
			seen[v.Text] = true
			res = append(res, v.Text)
		}
	}
	if e.parent != "" && e.parent != RootName && !seen[e.parent] {
		res = append(res, e.parent)
	}
	return res
}

// Dump returns indented textual representation of the graph for debugging.
func (g *Graph) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Device: min=%d max=%d dpi=%d", g.device.MinDPI, g.device.MaxDPI, g.device.DPI)
	if len(g.constants) > 0 {
		tw.Line(0, "Constants")
		keys := make([]string, 0, len(g.constants))
		for k := range g.constants {
			keys = append(keys, k)
		}
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			tw.TextBlock(1, k, g.constants[k].String())
		}
	}
	for _, name := range append([]string{RootName}, g.Names()...) {
		e := g.elements[name]
		tw.Line(0, "Element %s (parent %q)", name, e.parent)
		for _, v := range AllVariants {
			if tbl := e.styles[v]; tbl != nil {
				tw.TextBlock(1, v.String(), tbl.String())
			}
		}
	}
	return tw.String()
}
