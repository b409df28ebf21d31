package assets

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Insets are 9-patch slice offsets in pixels.
type Insets struct {
	Top, Right, Bottom, Left int
}

func (in Insets) String() string {
	return fmt.Sprintf("%d %d %d %d", in.Top, in.Right, in.Bottom, in.Left)
}

// Clamp makes every inset at least 1 and keeps stretchable center of
// w x h image non empty.
func (in Insets) Clamp(w, h int) Insets {
	in.Top, in.Right, in.Bottom, in.Left = max(in.Top, 1), max(in.Right, 1), max(in.Bottom, 1), max(in.Left, 1)
	if in.Top+in.Bottom >= h {
		in.Top, in.Bottom = max(h/2-1, 0), max(h/2-1, 0)
	}
	if in.Left+in.Right >= w {
		in.Left, in.Right = max(w/2-1, 0), max(w/2-1, 0)
	}
	return in
}

// Piece identifies one of nine border slices, in runtime image border order.
type Piece int

const (
	PieceTop Piece = iota
	PieceBottom
	PieceLeft
	PieceRight
	PieceTopLeft
	PieceTopRight
	PieceBottomLeft
	PieceBottomRight
	PieceCenter
)

var pieceNames = [...]string{"Top", "Bottom", "Left", "Right", "TopL", "TopR", "BottomL", "BottomR", "Center"}

// Suffix is appended to the border image id to name the piece.
func (p Piece) Suffix() string {
	return pieceNames[p]
}

const (
	minPieceSize     = 10
	upscaledPieceMin = 20
)

// Slice cuts img into nine pieces. Edges narrower than 10px along their
// stretchable axis, and a center smaller than 10px in either dimension,
// are upscaled to at least 20px.
func Slice(img image.Image, in Insets) ([9]image.Image, error) {
	var res [9]image.Image
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if in.Top+in.Bottom >= h || in.Left+in.Right >= w || in.Top < 0 || in.Right < 0 || in.Bottom < 0 || in.Left < 0 {
		return res, fmt.Errorf("insets %s do not fit %dx%d image", in, w, h)
	}

	xs := [4]int{0, in.Left, w - in.Right, w}
	ys := [4]int{0, in.Top, h - in.Bottom, h}
	cell := func(col, row int) image.Image {
		r := image.Rect(xs[col], ys[row], xs[col+1], ys[row+1]).Add(b.Min)
		return imaging.Crop(img, r)
	}

	res[PieceTopLeft] = cell(0, 0)
	res[PieceTop] = stretch(cell(1, 0), true, false)
	res[PieceTopRight] = cell(2, 0)
	res[PieceLeft] = stretch(cell(0, 1), false, true)
	res[PieceCenter] = stretch(cell(1, 1), true, true)
	res[PieceRight] = stretch(cell(2, 1), false, true)
	res[PieceBottomLeft] = cell(0, 2)
	res[PieceBottom] = stretch(cell(1, 2), true, false)
	res[PieceBottomRight] = cell(2, 2)
	return res, nil
}

// stretch upscales piece along its stretchable axes. Each edge spans the
// center along its stretchable axis, so checking pieces one by one gives the
// same result as checking the center only.
func stretch(img image.Image, horizontal, vertical bool) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	nw, nh := w, h
	if horizontal && w < minPieceSize {
		nw = upscaledPieceMin
	}
	if vertical && h < minPieceSize {
		nh = upscaledPieceMin
	}
	if (nw == w && nh == h) || w == 0 || h == 0 {
		return img
	}
	return imaging.Resize(img, nw, nh, imaging.NearestNeighbor)
}

// ImageBorder is a sliced border with density variants of every piece.
type ImageBorder struct {
	Insets Insets
	Pieces [9]*MultiImage
}

// ImageBorder slices img designed for the source density and produces
// variants of every piece named id + piece suffix.
func (p *Pipeline) ImageBorder(id string, img image.Image, in Insets) (*ImageBorder, error) {
	pieces, err := Slice(img, in)
	if err != nil {
		return nil, fmt.Errorf("image border %s: %w", id, err)
	}
	res := &ImageBorder{Insets: in}
	for i, piece := range pieces {
		m, err := p.Multi(id+Piece(i).Suffix(), piece)
		if err != nil {
			return nil, err
		}
		res.Pieces[i] = m
	}
	return res, nil
}
