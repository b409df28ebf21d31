package resfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/amazon-ion/ion-go/ion"
	"github.com/google/uuid"
	"github.com/maruel/natural"
	"go.uber.org/multierr"

	"cn1css/assets"
)

var ErrBadContainer = errors.New("malformed theme container")

const formatVersion = 1

// Variant is one encoded density of an image.
type Variant struct {
	Density int    `ion:"density"` // runtime density code
	Format  string `ion:"format"`
	Width   int    `ion:"width"`
	Height  int    `ion:"height"`
	Data    []byte `ion:"data"`
}

// Image is a stored multi density image. Single image has one variant and
// is not scaled by the runtime.
type Image struct {
	ID       string    `ion:"id"`
	Single   bool      `ion:"single"`
	Variants []Variant `ion:"variants"`
}

// FromMulti converts generated image to stored form.
func FromMulti(m *assets.MultiImage) *Image {
	img := &Image{ID: m.ID}
	for _, d := range m.Densities() {
		enc := m.Variants[d]
		img.Variants = append(img.Variants, Variant{
			Density: assets.BucketOf(d).Code,
			Format:  enc.Format,
			Width:   enc.Width,
			Height:  enc.Height,
			Data:    enc.Data,
		})
	}
	return img
}

type entry struct {
	Key   string `ion:"key"`
	Value Value  `ion:"value"`
}

// serialized form, slices keep encoding independent of map order
type document struct {
	Version int      `ion:"version"`
	BuildID string   `ion:"build_id"`
	Theme   string   `ion:"theme"`
	Values  []entry  `ion:"values"`
	Images  []*Image `ion:"images"`
}

// Container holds one theme and its images.
type Container struct {
	Theme   string
	BuildID string
	values  map[string]Value
	images  map[string]*Image
}

func New(theme string) *Container {
	return &Container{
		Theme:  theme,
		values: make(map[string]Value),
		images: make(map[string]*Image),
	}
}

// Key returns theme key of element property for the state id produced by
// Variant.ThemeID: "Button.bgColor", "Button.sel#bgColor".
func Key(stateID, prop string) string {
	if strings.Contains(stateID, ".") {
		return stateID + "#" + prop
	}
	return stateID + "." + prop
}

// ConstantKey returns theme key of a named constant.
func ConstantKey(name string) string {
	return "@" + name
}

// ElementOf returns element name of a theme key, empty for constants.
func ElementOf(key string) string {
	if strings.HasPrefix(key, "@") {
		return ""
	}
	if i := strings.IndexAny(key, ".#"); i >= 0 {
		return key[:i]
	}
	return key
}

func (c *Container) Set(key string, v Value) {
	c.values[key] = v
}

func (c *Container) Get(key string) (Value, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *Container) Delete(key string) {
	delete(c.values, key)
}

// Keys returns theme keys in natural order.
func (c *Container) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	return keys
}

// PruneElement removes every property of the element in all states and
// returns number of removed keys.
func (c *Container) PruneElement(name string) int {
	n := 0
	for k := range c.values {
		if ElementOf(k) == name {
			delete(c.values, k)
			n++
		}
	}
	return n
}

// Elements returns names of elements having properties.
func (c *Container) Elements() []string {
	seen := map[string]bool{}
	var res []string
	for k := range c.values {
		if e := ElementOf(k); e != "" && !seen[e] {
			seen[e] = true
			res = append(res, e)
		}
	}
	sort.Sort(natural.StringSlice(res))
	return res
}

func (c *Container) PutImage(img *Image) {
	c.images[img.ID] = img
}

func (c *Container) Image(id string) (*Image, bool) {
	img, ok := c.images[id]
	return img, ok
}

// ImageIDs returns stored image ids in natural order.
func (c *Container) ImageIDs() []string {
	ids := make([]string, 0, len(c.images))
	for id := range c.images {
		ids = append(ids, id)
	}
	sort.Sort(natural.StringSlice(ids))
	return ids
}

// CollectGarbage removes images not referenced by any theme value or
// border and returns their ids.
func (c *Container) CollectGarbage() []string {
	live := map[string]bool{}
	for _, v := range c.values {
		for _, id := range v.images(nil) {
			live[id] = true
		}
	}
	var dead []string
	for _, id := range c.ImageIDs() {
		if !live[id] {
			delete(c.images, id)
			dead = append(dead, id)
		}
	}
	return dead
}

func (c *Container) document() *document {
	doc := &document{Version: formatVersion, BuildID: c.BuildID, Theme: c.Theme}
	for _, k := range c.Keys() {
		doc.Values = append(doc.Values, entry{Key: k, Value: c.values[k]})
	}
	for _, id := range c.ImageIDs() {
		doc.Images = append(doc.Images, c.images[id])
	}
	return doc
}

// Encode serializes container. Encoding is deterministic.
func (c *Container) Encode() ([]byte, error) {
	data, err := ion.MarshalBinary(c.document())
	if err != nil {
		return nil, fmt.Errorf("unable to encode theme container: %w", err)
	}
	return data, nil
}

// SameContent reports whether containers differ only in build id.
func (c *Container) SameContent(other *Container) bool {
	if other == nil {
		return false
	}
	a, b := c.document(), other.document()
	a.BuildID, b.BuildID = "", ""
	da, errA := ion.MarshalBinary(a)
	db, errB := ion.MarshalBinary(b)
	return errA == nil && errB == nil && bytes.Equal(da, db)
}

// Stamp assigns build id: previous one when content did not change, new
// time ordered one otherwise.
func (c *Container) Stamp(prev *Container) error {
	if c.SameContent(prev) && prev.BuildID != "" {
		c.BuildID = prev.BuildID
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("unable to generate build id: %w", err)
	}
	c.BuildID = id.String()
	return nil
}

// Decode restores container from its encoded form.
func Decode(data []byte) (*Container, error) {
	var doc document
	if err := ion.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadContainer, err)
	}
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadContainer, doc.Version)
	}
	c := New(doc.Theme)
	c.BuildID = doc.BuildID
	for _, e := range doc.Values {
		c.values[e.Key] = e.Value
	}
	for _, img := range doc.Images {
		if img == nil || img.ID == "" {
			return nil, fmt.Errorf("%w: image without id", ErrBadContainer)
		}
		c.images[img.ID] = img
	}
	return c, nil
}

// Load reads container from file.
func Load(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// WriteFile atomically replaces file at path with encoded container.
func (c *Container) WriteFile(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	return WriteAtomic(path, data)
}

// WriteAtomic writes data to a temporary file next to path and renames it
// over path.
func WriteAtomic(path string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(f.Name()))
		}
	}()
	if err = f.Chmod(0o644); err != nil {
		return multierr.Append(err, f.Close())
	}
	if _, err = f.Write(data); err != nil {
		return multierr.Append(fmt.Errorf("unable to write %s: %w", f.Name(), err), f.Close())
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
