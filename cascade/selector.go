package cascade

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrUnsupportedSelector = errors.New("unsupported selector")

// TargetKind tells what a selector addresses.
type TargetKind int

const (
	TargetElement TargetKind = iota
	TargetDevice
	TargetConstants
)

// Target is a resolved selector.
type Target struct {
	Kind    TargetKind
	Element string
	Variant Variant
}

// RootName is the implicit element every other element inherits from.
const RootName = "*"

var (
	selectorRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*|\*)(?:[:.]([A-Za-z]+))?$`)

	stateNames = map[string]Variant{
		"unselected": VariantUnselected,
		"unsel":      VariantUnselected,
		"selected":   VariantSelected,
		"sel":        VariantSelected,
		"pressed":    VariantPressed,
		"press":      VariantPressed,
		"disabled":   VariantDisabled,
		"dis":        VariantDisabled,
	}
)

// ParseSelector resolves selector text into element and state. Element names
// are case sensitive, state names are not.
func ParseSelector(sel string) (Target, error) {
	sel = strings.TrimSpace(sel)
	switch {
	case strings.EqualFold(sel, "#Device"):
		return Target{Kind: TargetDevice}, nil
	case strings.EqualFold(sel, "#Constants"):
		return Target{Kind: TargetConstants}, nil
	}

	m := selectorRe.FindStringSubmatch(sel)
	if m == nil {
		return Target{}, fmt.Errorf("%w: '%s'", ErrUnsupportedSelector, sel)
	}
	t := Target{Kind: TargetElement, Element: m[1], Variant: VariantDefault}
	if m[2] != "" {
		v, ok := stateNames[strings.ToLower(m[2])]
		if !ok {
			return Target{}, fmt.Errorf("%w: unknown state '%s' in '%s'", ErrUnsupportedSelector, m[2], sel)
		}
		t.Variant = v
	}
	return t, nil
}
