package assets

import (
	"fmt"
	"image"
	"slices"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"cn1css/config"
)

// Resize scales img to w x h. Downscaling halves the image repeatedly
// while it is at least twice as large as the target and finishes with a
// single high quality pass.
func Resize(img image.Image, w, h int) image.Image {
	w, h = max(w, 1), max(h, 1)
	cw, ch := img.Bounds().Dx(), img.Bounds().Dy()
	if cw == w && ch == h {
		return img
	}
	for cw/2 >= w && ch/2 >= h {
		cw, ch = cw/2, ch/2
		img = imaging.Resize(img, cw, ch, imaging.Linear)
	}
	if cw == w && ch == h {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// MultiImage is one logical image with a bitmap per density.
type MultiImage struct {
	ID       string
	Variants map[config.Density]Encoded
}

// Densities returns densities present in ascending order.
func (m *MultiImage) Densities() []config.Density {
	res := make([]config.Density, 0, len(m.Variants))
	for d := range m.Variants {
		res = append(res, d)
	}
	slices.Sort(res)
	return res
}

// Pipeline produces density variants of generated and referenced images.
type Pipeline struct {
	log     *zap.Logger
	enc     Encoder
	source  config.Density
	targets []config.Density
}

// NewPipeline creates pipeline producing images for all targets. Source is
// the density base bitmaps are supplied at.
func NewPipeline(enc Encoder, source config.Density, targets []config.Density, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if !slices.Contains(targets, source) {
		targets = append(slices.Clone(targets), source)
		slices.Sort(targets)
	}
	return &Pipeline{log: log.Named("assets"), enc: enc, source: source, targets: targets}
}

func (p *Pipeline) Source() config.Density {
	return p.source
}

func (p *Pipeline) Targets() []config.Density {
	return p.targets
}

// Multi scales img designed for the source density to every target density.
func (p *Pipeline) Multi(id string, img image.Image) (*MultiImage, error) {
	m := &MultiImage{ID: id, Variants: make(map[config.Density]Encoded, len(p.targets))}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	for _, d := range p.targets {
		scaled := img
		if d != p.source {
			scaled = Resize(img, ScaleDim(w, p.source, d), ScaleDim(h, p.source, d))
		}
		enc, err := p.enc.Encode(scaled, d)
		if err != nil {
			return nil, fmt.Errorf("image %s, density %s: %w", id, d, err)
		}
		m.Variants[d] = enc
	}
	p.log.Debug("Image variants", zap.String("id", id), zap.Int("width", w), zap.Int("height", h), zap.Int("count", len(m.Variants)))
	return m, nil
}
