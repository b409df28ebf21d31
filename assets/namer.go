package assets

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
)

// Kind of generated image, available to the name template.
const (
	KindBackground = "background"
	KindBorder     = "border"
	KindConstant   = "constant"
)

// NameValues is what asset name template is expanded with.
type NameValues struct {
	Prefix string
	Index  int
	Kind   string
}

const maxNameAttempts = 1000

// Namer generates unique image ids from a text/template.
type Namer struct {
	tmpl  *template.Template
	index int
	used  map[string]bool
}

func NewNamer(field string) (*Namer, error) {
	tmpl, err := template.New("asset_name_template").Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return nil, fmt.Errorf("unable to parse asset name template: %w", err)
	}
	return &Namer{tmpl: tmpl, used: make(map[string]bool)}, nil
}

// Reserve marks ids already present in the output.
func (n *Namer) Reserve(ids ...string) {
	for _, id := range ids {
		n.used[id] = true
	}
}

// Next returns a new unused id for image of element.
func (n *Namer) Next(element, kind string) (string, error) {
	prefix := slug.Make(element)
	if prefix == "" {
		prefix = "image"
	}
	for range maxNameAttempts {
		n.index++
		buf := new(bytes.Buffer)
		if err := n.tmpl.Execute(buf, NameValues{Prefix: prefix, Index: n.index, Kind: kind}); err != nil {
			return "", fmt.Errorf("unable to expand asset name template: %w", err)
		}
		id := buf.String()
		if id == "" {
			return "", fmt.Errorf("asset name template produced empty name")
		}
		if !n.used[id] {
			n.used[id] = true
			return id, nil
		}
	}
	return "", fmt.Errorf("asset name template does not produce unique names for %s", element)
}
