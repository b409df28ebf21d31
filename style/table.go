package style

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// Table maps canonical property names to values for one element+state.
type Table struct {
	props map[string]Value
}

func NewTable() *Table {
	return &Table{props: make(map[string]Value)}
}

// Set stores value, overwriting any previous one.
func (t *Table) Set(name string, v Value) {
	t.props[name] = v
}

func (t *Table) Get(name string) (Value, bool) {
	if t == nil {
		return Value{}, false
	}
	v, ok := t.props[name]
	return v, ok
}

// Has reports whether property is present and is not "none" or zero length.
func (t *Table) Has(name string) bool {
	v, ok := t.Get(name)
	return ok && !v.IsNone() && !v.IsZeroLength()
}

func (t *Table) Delete(name string) {
	delete(t.props, name)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.props)
}

// Keys returns property names in natural order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, len(t.props))
	for k := range t.props {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	return keys
}

// Clone returns a deep enough copy: values are immutable once stored.
func (t *Table) Clone() *Table {
	c := NewTable()
	if t != nil {
		for k, v := range t.props {
			c.props[k] = v
		}
	}
	return c
}

// Overlay copies all properties of other into t, other wins.
func (t *Table) Overlay(other *Table) {
	if other == nil {
		return
	}
	for k, v := range other.props {
		t.props[k] = v
	}
}

// String is canonical serialization: "name:value;" pairs in natural key order.
func (t *Table) String() string {
	var sb strings.Builder
	for _, k := range t.Keys() {
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(t.props[k].String())
		sb.WriteByte(';')
	}
	return sb.String()
}

// Equal compares canonical serializations.
func (t *Table) Equal(other *Table) bool {
	return t.String() == other.String()
}
