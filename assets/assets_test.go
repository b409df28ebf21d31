package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"

	"cn1css/config"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func noisy(w, h int) *image.NRGBA {
	rnd := rand.New(rand.NewSource(1))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), 255})
		}
	}
	return img
}

func TestDensityLadder(t *testing.T) {
	got := InRange(120, 480)
	want := []config.Density{config.DensityLow, config.DensityMedium, config.DensityHigh, config.DensityVeryhigh, config.DensityHd}
	if !slices.Equal(got, want) {
		t.Errorf("InRange(120, 480) = %v, want %v", got, want)
	}
	if got := Targets(120, 160, config.DensityHd); !slices.Equal(got, []config.Density{config.DensityLow, config.DensityMedium, config.DensityHd}) {
		t.Errorf("Targets() = %v", got)
	}
	for dpi, want := range map[int]config.Density{
		50: config.DensityVerylow, 120: config.DensityLow, 200: config.DensityHigh,
		480: config.DensityHd, 600: config.Density2hd, 5000: config.Density4k,
	} {
		if got := DensityForDPI(dpi); got != want {
			t.Errorf("DensityForDPI(%d) = %s, want %s", dpi, got, want)
		}
	}
	if d, ok := DensityForCode(60); !ok || d != config.DensityHd {
		t.Errorf("DensityForCode(60) = %s, %v", d, ok)
	}
	if got := ScaleDim(1080, config.DensityHd, config.DensityMedium); got != 320 {
		t.Errorf("ScaleDim() = %d, want 320", got)
	}
	if got := ScaleDim(1, config.DensityHd, config.DensityVerylow); got != 1 {
		t.Errorf("ScaleDim() = %d, want at least 1", got)
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		tw, th int
	}{
		{"halving", 400, 200, 90, 45},
		{"exact half", 100, 100, 50, 50},
		{"upscale", 10, 10, 25, 30},
		{"same", 7, 9, 7, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resize(solid(tt.w, tt.h, color.White), tt.tw, tt.th)
			if res.Bounds().Dx() != tt.tw || res.Bounds().Dy() != tt.th {
				t.Errorf("Resize() bounds = %v", res.Bounds())
			}
		})
	}
}

func TestEncoder(t *testing.T) {
	enc := Encoder{Format: config.ImageFormatAuto, JPEGQuality: 90}

	t.Run("transparent is png", func(t *testing.T) {
		res, err := enc.Encode(solid(16, 16, color.NRGBA{255, 0, 0, 128}), config.DensityHd)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if res.Format != "png" {
			t.Errorf("format = %s, want png", res.Format)
		}
		if _, err := png.Decode(bytes.NewReader(res.Data)); err != nil {
			t.Errorf("invalid png: %v", err)
		}
	})

	t.Run("flat opaque prefers png", func(t *testing.T) {
		res, err := enc.Encode(solid(64, 64, color.White), config.DensityHd)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if res.Format != "png" {
			t.Errorf("format = %s, want png for flat color", res.Format)
		}
	})

	t.Run("noise prefers jpeg", func(t *testing.T) {
		res, err := enc.Encode(noisy(128, 128), config.DensityHd)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if res.Format != "jpeg" {
			t.Fatalf("format = %s, want jpeg for noise", res.Format)
		}
		if !bytes.Equal(res.Data[2:4], []byte{0xFF, 0xE0}) {
			t.Error("expected JFIF APP0 marker")
		}
	})

	t.Run("forced png", func(t *testing.T) {
		res, err := Encoder{Format: config.ImageFormatPng, JPEGQuality: 90}.Encode(noisy(32, 32), config.DensityHd)
		if err != nil || res.Format != "png" {
			t.Errorf("Encode() = %s, %v", res.Format, err)
		}
	})
}

func TestEnsureJFIF(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04}
	out, added, err := ensureJFIF(data, 480, 480)
	if err != nil || !added {
		t.Fatalf("ensureJFIF() = %v, %v", added, err)
	}
	if !bytes.Equal(out[2:4], []byte{0xFF, 0xE0}) || out[13] != 1 {
		t.Errorf("unexpected segment % x", out[:20])
	}

	data = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	out, added, err = ensureJFIF(data, 480, 480)
	if err != nil || added || !bytes.Equal(out, data) {
		t.Errorf("existing segment modified: %v, %v", added, err)
	}
	if _, _, err := ensureJFIF([]byte{1, 2, 3, 4}, 1, 1); err == nil {
		t.Error("expected error for non jpeg data")
	}
}

func TestDecode(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, solid(3, 2, color.Black)); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if _, err := Decode([]byte("body { color: red }")); err == nil {
		t.Error("expected error for non image data")
	}
}

func TestPipeline_Multi(t *testing.T) {
	p := NewPipeline(Encoder{JPEGQuality: 90}, config.DensityHd, []config.Density{config.DensityMedium, config.DensityVeryhigh}, zap.NewNop())
	m, err := p.Multi("bg", solid(108, 54, color.NRGBA{0, 0, 255, 255}))
	if err != nil {
		t.Fatalf("Multi() error = %v", err)
	}
	if got := m.Densities(); !slices.Equal(got, []config.Density{config.DensityMedium, config.DensityVeryhigh, config.DensityHd}) {
		t.Fatalf("Densities() = %v", got)
	}
	if v := m.Variants[config.DensityHd]; v.Width != 108 || v.Height != 54 {
		t.Errorf("source variant %dx%d", v.Width, v.Height)
	}
	if v := m.Variants[config.DensityMedium]; v.Width != 32 || v.Height != 16 {
		t.Errorf("medium variant %dx%d, want 32x16", v.Width, v.Height)
	}
}

func TestInsets_Clamp(t *testing.T) {
	tests := []struct {
		in   Insets
		w, h int
		want Insets
	}{
		{Insets{13, 13, 13, 13}, 100, 60, Insets{13, 13, 13, 13}},
		{Insets{0, 0, 0, 0}, 100, 60, Insets{1, 1, 1, 1}},
		{Insets{30, 5, 30, 5}, 100, 60, Insets{29, 5, 29, 5}},
		{Insets{2, 60, 2, 40}, 100, 60, Insets{2, 49, 2, 49}},
	}
	for _, tt := range tests {
		got := tt.in.Clamp(tt.w, tt.h)
		if got != tt.want {
			t.Errorf("%v.Clamp(%d, %d) = %v, want %v", tt.in, tt.w, tt.h, got, tt.want)
		}
		if got.Top+got.Bottom >= tt.h || got.Left+got.Right >= tt.w {
			t.Errorf("%v: center is empty", got)
		}
	}
}

func TestSlice(t *testing.T) {
	img := solid(60, 40, color.Black)
	pieces, err := Slice(img, Insets{Top: 13, Right: 13, Bottom: 13, Left: 13})
	if err != nil {
		t.Fatalf("Slice() error = %v", err)
	}
	size := func(p Piece) (int, int) {
		return pieces[p].Bounds().Dx(), pieces[p].Bounds().Dy()
	}
	if w, h := size(PieceTopLeft); w != 13 || h != 13 {
		t.Errorf("top left %dx%d", w, h)
	}
	if w, h := size(PieceTop); w != 34 || h != 13 {
		t.Errorf("top %dx%d", w, h)
	}
	// 14px high center and side edges are left alone, narrow ones grow
	if w, h := size(PieceCenter); w != 34 || h != 14 {
		t.Errorf("center %dx%d", w, h)
	}

	pieces, err = Slice(solid(30, 30, color.Black), Insets{Top: 12, Right: 12, Bottom: 12, Left: 12})
	if err != nil {
		t.Fatalf("Slice() error = %v", err)
	}
	if w, h := size(PieceCenter); w != 20 || h != 20 {
		t.Errorf("small center %dx%d, want 20x20", w, h)
	}
	if w, h := size(PieceTop); w != 20 || h != 12 {
		t.Errorf("small top edge %dx%d, want 20x12", w, h)
	}
	if w, h := size(PieceLeft); w != 12 || h != 20 {
		t.Errorf("small left edge %dx%d, want 12x20", w, h)
	}
	if w, h := size(PieceBottomRight); w != 12 || h != 12 {
		t.Errorf("corners are never scaled: %dx%d", w, h)
	}

	if _, err := Slice(img, Insets{Top: 20, Bottom: 20, Left: 1, Right: 1}); err == nil {
		t.Error("expected error for insets covering the image")
	}
}

func TestSlice_EdgesFollowCenter(t *testing.T) {
	tests := []Insets{
		{Top: 2, Right: 15, Bottom: 3, Left: 20},
		{Top: 12, Right: 1, Bottom: 14, Left: 1},
		{Top: 1, Right: 1, Bottom: 1, Left: 1},
		{Top: 10, Right: 16, Bottom: 10, Left: 16},
	}
	for _, in := range tests {
		pieces, err := Slice(solid(40, 30, color.Black), in)
		if err != nil {
			t.Fatalf("Slice(%s) error = %v", in, err)
		}
		cw, ch := pieces[PieceCenter].Bounds().Dx(), pieces[PieceCenter].Bounds().Dy()
		for _, p := range []Piece{PieceTop, PieceBottom} {
			if w := pieces[p].Bounds().Dx(); w != cw {
				t.Errorf("%s: %s width %d, center %d", in, p.Suffix(), w, cw)
			}
		}
		for _, p := range []Piece{PieceLeft, PieceRight} {
			if h := pieces[p].Bounds().Dy(); h != ch {
				t.Errorf("%s: %s height %d, center %d", in, p.Suffix(), h, ch)
			}
		}
	}
}

func TestPipeline_ImageBorder(t *testing.T) {
	p := NewPipeline(Encoder{JPEGQuality: 90}, config.DensityHd, nil, zap.NewNop())
	b, err := p.ImageBorder("btn", solid(40, 40, color.NRGBA{255, 0, 0, 255}), Insets{5, 5, 5, 5})
	if err != nil {
		t.Fatalf("ImageBorder() error = %v", err)
	}
	for i, m := range b.Pieces {
		if m == nil || !strings.HasPrefix(m.ID, "btn") || !strings.HasSuffix(m.ID, Piece(i).Suffix()) {
			t.Errorf("piece %d = %+v", i, m)
		}
	}
}

func TestNamer(t *testing.T) {
	n, err := NewNamer("{{ .Prefix }}_{{ .Index }}.{{ .Kind | lower }}")
	if err != nil {
		t.Fatalf("NewNamer() error = %v", err)
	}
	n.Reserve("my-button_1.border")
	id, err := n.Next("MyButton", KindBorder)
	if err != nil {
		t.Fatal(err)
	}
	if id != "mybutton_1.border" {
		t.Errorf("Next() = %q", id)
	}

	n, _ = NewNamer("{{ .Prefix }}_{{ .Index }}")
	n.Reserve("tab_1")
	if id, _ := n.Next("Tab", KindBackground); id != "tab_2" {
		t.Errorf("reserved id reused: %q", id)
	}

	n, _ = NewNamer("fixed")
	n.Next("A", KindBackground)
	if _, err := n.Next("A", KindBackground); err == nil {
		t.Error("expected error for constant template")
	}
	if _, err := NewNamer("{{ .Prefix "); err == nil {
		t.Error("expected template parse error")
	}
}
