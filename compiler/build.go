package compiler

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"cn1css/assets"
	"cn1css/cascade"
	"cn1css/config"
	"cn1css/css"
	"cn1css/decision"
	"cn1css/render"
	"cn1css/resfile"
	"cn1css/style"
)

// build is context of a single compilation.
type build struct {
	*Compiler

	input     string
	output    string
	dir       string
	themeName string

	sheet *css.Stylesheet
	graph *cascade.Graph
	theme *resfile.Container
	namer *assets.Namer

	enc      assets.Encoder
	source   config.Density
	targets  []config.Density
	pipeline *assets.Pipeline
	env      decision.Env

	// referenced image (storage options and url) to its id
	loaded map[string]string
	// image id to what it was loaded from
	claimed map[string]string
	// element states waiting for snapshots
	pending []rasterJob
}

type rasterJob struct {
	element string
	id      string
	dec     decision.Decision
	style   string
}

// environment serializes everything besides rules generated values depend on.
func (b *build) environment() string {
	return fmt.Sprintf("source=%s;targets=%v;format=%s;quality=%d;ref=%dx%d;box=%dx%d;names=%s",
		b.source, b.targets,
		b.cfg.Compiler.ImageFormat, b.cfg.Compiler.JPEGQuality,
		b.cfg.Compiler.ReferenceWidth, b.cfg.Compiler.ReferenceHeight,
		b.cfg.Render.Width, b.cfg.Render.Height,
		b.cfg.Compiler.AssetNameTemplate)
}

// element derives theme values of every state of the element. States
// needing raster assets are queued for the render pass.
func (b *build) element(name string) error {
	for _, v := range cascade.StateVariants {
		id := v.ThemeID(name)
		tbl, err := b.graph.Flatten(name, v)
		if err != nil {
			return locate(b.input, id, "", err)
		}
		dec, err := decision.Analyze(tbl)
		if err != nil {
			return locate(b.input, id, "", err)
		}
		if err := dec.Descriptor.Gradient.Err(); err != nil {
			b.log.Warn("Gradient will be rendered as image", zap.String("element", id), zap.Error(err))
		}
		props, err := decision.ThemeProperties(tbl, dec, b.env, v.Suffix())
		if err != nil {
			return locate(b.input, id, "", err)
		}
		for prop, val := range props {
			b.theme.Set(resfile.Key(id, prop), val)
		}

		switch {
		case dec.Strategy.Raster():
			b.pending = append(b.pending, rasterJob{element: name, id: id, dec: dec, style: tbl.String()})
		case dec.Descriptor.Image != "":
			opts, prop, err := b.imageOptionsOf(tbl)
			if err != nil {
				return locate(b.input, id, prop, err)
			}
			ref, err := b.imageRef(name, dec.Descriptor.Image, opts, assets.KindBackground)
			if err != nil {
				return locate(b.input, id, "background-image", err)
			}
			b.theme.Set(resfile.Key(id, "bgImage"), resfile.ImageRef(ref))
		}
		b.log.Debug("Element state decided", zap.String("id", id), zap.Stringer("strategy", dec.Strategy), zap.Int("properties", len(props)))
	}
	return nil
}

// imageOptions are per style overrides of how referenced image is stored.
type imageOptions struct {
	// density image is designed for
	source config.Density
	// explicit image id, generated when empty
	id string
	// store source density only instead of multi density image
	single bool
}

// imageOptionsOf reads cn1-source-dpi, cn1-image-id and cn1-densities of
// the style.
func (b *build) imageOptionsOf(tbl *style.Table) (imageOptions, string, error) {
	opts := imageOptions{source: b.source}
	if v, ok := tbl.Get("cn1-source-dpi"); ok && v.Kind == style.KindLength && v.Length.Value > 0 {
		opts.source = assets.DensityForDPI(int(v.Length.Value))
	}
	if v, ok := tbl.Get("cn1-image-id"); ok {
		if (v.Kind != style.KindIdent && v.Kind != style.KindString) || v.Text == "" {
			return opts, "cn1-image-id", fmt.Errorf("%w: image id expected, got %s", decision.ErrUnsupportedValue, v)
		}
		opts.id = v.Text
	}
	if v, ok := tbl.Get("cn1-densities"); ok {
		if !v.IsNone() {
			return opts, "cn1-densities", fmt.Errorf("%w: only none is supported, got %s", decision.ErrUnsupportedValue, v)
		}
		opts.single = true
	}
	return opts, "", nil
}

// constants stores theme constants, image constants reference loaded images.
func (b *build) constants() error {
	consts := b.graph.Constants()
	names := make([]string, 0, len(consts))
	for name := range consts {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	for _, name := range names {
		v, key := consts[name], resfile.ConstantKey(name)
		if strings.HasSuffix(name, "Image") {
			id, err := b.imageRef(name, v.Text, imageOptions{source: b.source}, assets.KindConstant)
			if err != nil {
				return locate(b.input, "#Constants", name, err)
			}
			b.theme.Set(key, resfile.ImageRef(id))
			continue
		}
		switch v.Kind {
		case style.KindIdent, style.KindString:
			b.theme.Set(key, resfile.String(v.Text))
		default:
			b.theme.Set(key, resfile.String(v.String()))
		}
	}
	return nil
}

// imageRef loads image referenced by url once per storage options and
// returns its id.
func (b *build) imageRef(element, ref string, opts imageOptions, kind string) (string, error) {
	key := fmt.Sprintf("%s %t %s %s", opts.source, opts.single, opts.id, ref)
	if id, ok := b.loaded[key]; ok {
		return id, nil
	}
	path, err := b.localPath(ref)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read image: %w", err)
	}
	img, err := assets.Decode(data)
	if err != nil {
		return "", fmt.Errorf("image %s: %w", ref, err)
	}
	id := opts.id
	if id == "" {
		if id, err = b.namer.Next(element, kind); err != nil {
			return "", err
		}
	} else {
		if owner, ok := b.claimed[id]; ok && owner != key {
			return "", fmt.Errorf("%w: image id %s is already used by another image", decision.ErrUnsupportedValue, id)
		}
		b.namer.Reserve(id)
	}
	b.claimed[id] = key

	pipeline := b.pipeline
	switch {
	case opts.single:
		pipeline = assets.NewPipeline(b.enc, opts.source, []config.Density{opts.source}, b.log)
	case opts.source != b.source:
		pipeline = assets.NewPipeline(b.enc, opts.source, b.targets, b.log)
	}
	m, err := pipeline.Multi(id, img)
	if err != nil {
		return "", err
	}
	stored := resfile.FromMulti(m)
	stored.Single = opts.single
	b.theme.PutImage(stored)
	b.loaded[key] = id
	b.log.Debug("Image loaded", zap.String("url", ref), zap.String("id", id), zap.Stringer("source", opts.source), zap.Bool("single", opts.single))
	return id, nil
}

// localPath resolves image url against stylesheet directory.
func (b *build) localPath(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err == nil && len(u.Scheme) > 1 {
		if u.Scheme != "file" {
			return "", fmt.Errorf("%w: only local images are supported: %s", decision.ErrUnsupportedValue, ref)
		}
		return filepath.FromSlash(u.Path), nil
	}
	p := filepath.FromSlash(ref)
	if filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Join(b.dir, p), nil
}

// rasterize captures snapshots of all queued element states with a single
// render request and produces their images. States with equal descriptors
// share one snapshot and one set of images. Returns number of rendered
// boxes.
func (b *build) rasterize(ctx context.Context) (int, error) {
	if len(b.pending) == 0 {
		return 0, nil
	}
	if b.svc == nil {
		return 0, fmt.Errorf("%s needs raster images but no render service is available", b.pending[0].id)
	}
	req := render.Request{
		BaseURL: render.FileURL(b.dir),
		Width:   b.cfg.Render.Width,
		Height:  b.cfg.Render.Height,
		DPI:     b.env.DPI,
	}
	boxes := make(map[decision.Descriptor]string)
	for _, j := range b.pending {
		if _, ok := boxes[j.dec.Descriptor]; ok {
			continue
		}
		boxes[j.dec.Descriptor] = j.id
		req.Boxes = append(req.Boxes, render.Box{ID: j.id, Style: j.style})
	}

	b.log.Info("Rendering raster assets", zap.Int("states", len(b.pending)), zap.Int("boxes", len(req.Boxes)))
	res, err := b.svc.Submit(ctx, req).Await(b.cfg.Render.Timeout)
	if err != nil {
		return 0, locate(b.input, "", "", err)
	}

	made := make(map[decision.Descriptor]resfile.Value)
	for _, j := range b.pending {
		v, ok := made[j.dec.Descriptor]
		if !ok {
			snap, found := res.Snapshots[boxes[j.dec.Descriptor]]
			if !found {
				return 0, locate(b.input, j.id, "", fmt.Errorf("render service returned no snapshot"))
			}
			if v, err = b.rasterAsset(j, snap); err != nil {
				return 0, locate(b.input, j.id, "", err)
			}
			made[j.dec.Descriptor] = v
		}
		prop := "bgImage"
		if j.dec.Strategy == decision.StrategyRasterImageBorder {
			prop = "border"
		}
		b.theme.Set(resfile.Key(j.id, prop), v)
	}
	return len(req.Boxes), nil
}

func (b *build) rasterAsset(j rasterJob, snap image.Image) (resfile.Value, error) {
	if j.dec.Strategy == decision.StrategyRasterImageBorder {
		bounds := snap.Bounds()
		in, err := decision.ImageBorderInsets(j.dec.Descriptor, b.env, bounds.Dx(), bounds.Dy())
		if err != nil {
			return resfile.Value{}, err
		}
		id, err := b.namer.Next(j.element, assets.KindBorder)
		if err != nil {
			return resfile.Value{}, err
		}
		ib, err := b.pipeline.ImageBorder(id, snap, in)
		if err != nil {
			return resfile.Value{}, err
		}
		border := &resfile.Border{Type: resfile.BorderImage}
		for _, m := range ib.Pieces {
			b.theme.PutImage(resfile.FromMulti(m))
			border.Images = append(border.Images, m.ID)
		}
		b.log.Debug("Image border generated", zap.String("id", j.id), zap.Stringer("insets", in))
		return resfile.BorderValue(border), nil
	}

	id, err := b.namer.Next(j.element, assets.KindBackground)
	if err != nil {
		return resfile.Value{}, err
	}
	m, err := b.pipeline.Multi(id, snap)
	if err != nil {
		return resfile.Value{}, err
	}
	b.theme.PutImage(resfile.FromMulti(m))
	b.log.Debug("Background image generated", zap.String("id", j.id), zap.String("image", id))
	return resfile.ImageRef(id), nil
}
