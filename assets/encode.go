package assets

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"cn1css/config"
)

var ErrUnsupportedImage = errors.New("unsupported image")

// Encoded is a single encoded bitmap.
type Encoded struct {
	Format string // "png" or "jpeg"
	Data   []byte
	Width  int
	Height int
}

// Decode validates and decodes image referenced by the stylesheet.
func Decode(data []byte) (image.Image, error) {
	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return nil, fmt.Errorf("%w: unknown content", ErrUnsupportedImage)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedImage, kind.Extension, err)
	}
	return img, nil
}

// HasAlpha reports whether any pixel of img is not fully opaque.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// Encoder turns bitmaps into theme image data.
type Encoder struct {
	Format      config.ImageFormat
	JPEGQuality int
}

// Encode picks PNG when image has transparency, otherwise the smaller of
// PNG and JPEG unless format is forced.
func (e Encoder) Encode(img image.Image, density config.Density) (Encoded, error) {
	res := Encoded{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}

	if e.Format == config.ImageFormatJpeg && !HasAlpha(img) {
		data, err := e.encodeJPEG(img, density)
		if err != nil {
			return Encoded{}, err
		}
		res.Format, res.Data = "jpeg", data
		return res, nil
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return Encoded{}, fmt.Errorf("unable to encode PNG: %w", err)
	}
	res.Format, res.Data = "png", buf.Bytes()
	if e.Format == config.ImageFormatPng || HasAlpha(img) {
		return res, nil
	}

	data, err := e.encodeJPEG(img, density)
	if err != nil {
		return Encoded{}, err
	}
	if len(data) < len(res.Data) {
		res.Format, res.Data = "jpeg", data
	}
	return res, nil
}

func (e Encoder) encodeJPEG(img image.Image, density config.Density) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(e.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("unable to encode JPEG: %w", err)
	}
	dpi := int16(BucketOf(density).DPI)
	data, _, err := ensureJFIF(buf.Bytes(), dpi, dpi)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ensureJFIF inserts JFIF APP0 segment carrying pixels per inch density
// when encoder did not produce one.
func ensureJFIF(data []byte, xdensity, ydensity int16) ([]byte, bool, error) {
	if len(data) < 4 {
		return nil, false, errors.New("jpeg too small")
	}
	if data[0] != 0xFF || data[1] != 0xD8 {
		return nil, false, errors.New("not a jpeg")
	}

	marker := []byte{0xFF, 0xE0}                             // APP0 segment marker
	jfif := []byte{0x4A, 0x46, 0x49, 0x46, 0x00, 0x01, 0x02} // jfif + version
	if data[2] == marker[0] && data[3] == marker[1] {
		return data, false, nil
	}

	buf := new(bytes.Buffer)
	buf.Write(data[:2])
	buf.Write(marker)
	_ = binary.Write(buf, binary.BigEndian, uint16(0x10)) // length
	buf.Write(jfif)
	_ = binary.Write(buf, binary.BigEndian, uint8(1)) // pixels per inch
	_ = binary.Write(buf, binary.BigEndian, uint16(xdensity))
	_ = binary.Write(buf, binary.BigEndian, uint16(ydensity))
	_ = binary.Write(buf, binary.BigEndian, uint16(0)) // no thumbnail
	buf.Write(data[2:])
	return buf.Bytes(), true, nil
}
