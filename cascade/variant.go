package cascade

// Variant is an interaction state of an element. Default holds properties
// shared by all states.
//
// ENUM(default, unselected, selected, pressed, disabled)
type Variant int

// StateVariants are variants emitted into the theme, in output order.
var StateVariants = []Variant{VariantUnselected, VariantSelected, VariantPressed, VariantDisabled}

// AllVariants lists every variant in checksum order.
var AllVariants = []Variant{VariantDefault, VariantUnselected, VariantSelected, VariantPressed, VariantDisabled}

// Suffix returns theme id suffix of the state: "" for default and
// unselected, ".sel", ".press" or ".dis" otherwise.
func (x Variant) Suffix() string {
	switch x {
	case VariantSelected:
		return ".sel"
	case VariantPressed:
		return ".press"
	case VariantDisabled:
		return ".dis"
	}
	return ""
}

// ThemeID returns the id under which element properties of this state are
// stored.
func (x Variant) ThemeID(element string) string {
	return element + x.Suffix()
}
