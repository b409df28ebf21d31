package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"cn1css/assets"
	"cn1css/css"
	"cn1css/decision"
	"cn1css/style"
)

// Local captures boxes in process: it reads the capture document back and
// paints every box from its inline style.
type Local struct {
	log       *zap.Logger
	parser    *css.Parser
	refWidth  float64
	refHeight float64
}

// NewLocal creates local service. Reference dimensions resolve percentages
// of box size.
func NewLocal(refWidth, refHeight int, log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("render")
	return &Local{
		log:       log,
		parser:    css.NewParser(log),
		refWidth:  float64(refWidth),
		refHeight: float64(refHeight),
	}
}

// Submit builds capture document of the request and paints it
// asynchronously.
func (l *Local) Submit(ctx context.Context, req Request) *Future {
	f := NewFuture()
	go func() {
		doc, err := Document(req)
		if err != nil {
			f.Resolve(nil, err)
			return
		}
		f.Resolve(l.Capture(ctx, doc))
	}()
	return f
}

type capture struct {
	base   string
	dpi    int
	width  int
	height int
	boxes  []Box
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func intAttr(n *html.Node, key string) (int, error) {
	s, ok := attr(n, key)
	if !ok {
		return 0, fmt.Errorf("capture document: missing %s", key)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("capture document: bad %s: %w", key, err)
	}
	return v, nil
}

func readDocument(doc []byte) (*capture, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("unable to parse capture document: %w", err)
	}
	c := &capture{}
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "base":
				c.base, _ = attr(n, "href")
			case "body":
				if c.dpi, err = intAttr(n, "data-dpi"); err != nil {
					return err
				}
				if c.width, err = intAttr(n, "data-width"); err != nil {
					return err
				}
				if c.height, err = intAttr(n, "data-height"); err != nil {
					return err
				}
			case "div":
				if cls, _ := attr(n, "class"); cls == "cn1-box" {
					id, _ := attr(n, "id")
					st, _ := attr(n, "style")
					c.boxes = append(c.boxes, Box{ID: id, Style: st})
				}
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if err := walk(ch); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return c, nil
}

// Capture paints every box of the capture document.
func (l *Local) Capture(ctx context.Context, doc []byte) (*Result, error) {
	c, err := readDocument(doc)
	if err != nil {
		return nil, err
	}
	env := decision.Env{DPI: c.dpi, RefWidth: l.refWidth, RefHeight: l.refHeight}
	res := &Result{Snapshots: make(map[string]image.Image, len(c.boxes))}
	for _, b := range c.boxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tbl, err := l.table(b.Style)
		if err != nil {
			return nil, fmt.Errorf("box %s: %w", b.ID, err)
		}
		bg, err := l.backgroundImage(c.base, tbl)
		if err != nil {
			return nil, fmt.Errorf("box %s: %w", b.ID, err)
		}
		img, err := Paint(tbl, env, c.width, c.height, bg)
		if err != nil {
			return nil, fmt.Errorf("box %s: %w", b.ID, err)
		}
		l.log.Debug("Captured box", zap.String("id", b.ID), zap.Stringer("bounds", img.Bounds()))
		res.Snapshots[b.ID] = img
	}
	return res, nil
}

func (l *Local) table(inline string) (*style.Table, error) {
	decls, err := l.parser.ParseInline([]byte(inline))
	if err != nil {
		return nil, err
	}
	tbl := style.NewTable()
	for _, d := range decls {
		if err := tbl.Apply(d); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// backgroundImage loads url() image of the box, only local files are
// supported.
func (l *Local) backgroundImage(base string, tbl *style.Table) (image.Image, error) {
	v, ok := tbl.Get("background-image")
	if !ok || v.Kind != style.KindURL {
		return nil, nil
	}
	path, err := resolveLocal(base, v.Text)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read background image: %w", err)
	}
	return assets.Decode(data)
}

func resolveLocal(base, ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("bad image url %q: %w", ref, err)
	}
	if !u.IsAbs() && base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("bad base url %q: %w", base, err)
		}
		u = b.ResolveReference(u)
	}
	switch u.Scheme {
	case "file", "":
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		p = strings.TrimPrefix(p, "//")
		if len(p) > 2 && p[0] == '/' && p[2] == ':' {
			// drive letter path
			p = p[1:]
		}
		return filepath.FromSlash(p), nil
	}
	return "", fmt.Errorf("image url %q: only local files are supported", ref)
}

// FileURL returns base url of a directory.
func FileURL(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs) + "/"}
	return u.String()
}
