package formats

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// TGA format errors.
var (
	ErrInvalidTGA     = errors.New("invalid TGA data")
	ErrUnsupportedTGA = errors.New("unsupported TGA variant")
	ErrTruncatedTGA   = errors.New("truncated TGA data")
)

const tgaHeaderSize = 18

// TGA image types handled by DecodeTGA.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
	tgaGray         = 3
	tgaGrayRLE      = 11
)

// IsTGA reports whether data looks like a TGA image this package can decode.
// TGA has no magic number, so the header fields are checked instead.
func IsTGA(data []byte) bool {
	if len(data) < tgaHeaderSize || data[1] != 0 {
		return false
	}
	switch data[2] {
	case tgaTrueColor, tgaTrueColorRLE:
		return data[16] == 24 || data[16] == 32
	case tgaGray, tgaGrayRLE:
		return data[16] == 8
	}
	return false
}

// DecodeTGA decodes a TGA image.
// Supports uncompressed and RLE true-color (24/32 bpp) and grayscale
// (8 bpp) images without a color map.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTruncatedTGA
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped images", ErrUnsupportedTGA)
	}
	gray := imageType == tgaGray || imageType == tgaGrayRLE
	switch {
	case imageType == tgaTrueColor || imageType == tgaTrueColorRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("%w: %d bpp true-color", ErrUnsupportedTGA, bpp)
		}
	case gray:
		if bpp != 8 {
			return nil, fmt.Errorf("%w: %d bpp grayscale", ErrUnsupportedTGA, bpp)
		}
	default:
		return nil, fmt.Errorf("%w: image type %d", ErrUnsupportedTGA, imageType)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrInvalidTGA, width, height)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, ErrTruncatedTGA
	}

	d := &tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		width:       width,
		height:      height,
		bytesPerPx:  bpp / 8,
		gray:        gray,
		topToBottom: descriptor&0x20 != 0,
	}

	var err error
	if imageType == tgaTrueColorRLE || imageType == tgaGrayRLE {
		err = d.decodeRLE(data[offset:])
	} else {
		err = d.decodeRaw(data[offset:])
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.RGBA
	width       int
	height      int
	bytesPerPx  int
	gray        bool
	topToBottom bool
}

func (d *tgaDecoder) pixel(p []byte) color.RGBA {
	if d.gray {
		return color.RGBA{R: p[0], G: p[0], B: p[0], A: 255}
	}
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bytesPerPx == 4 {
		c.A = p[3]
	}
	return c
}

// set stores the i-th pixel in file order, flipping rows for
// bottom-to-top images.
func (d *tgaDecoder) set(i int, c color.RGBA) {
	x, y := i%d.width, i/d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
}

func (d *tgaDecoder) decodeRaw(pix []byte) error {
	count := d.width * d.height
	if len(pix) < count*d.bytesPerPx {
		return ErrTruncatedTGA
	}
	for i := 0; i < count; i++ {
		d.set(i, d.pixel(pix[i*d.bytesPerPx:]))
	}
	return nil
}

func (d *tgaDecoder) decodeRLE(pix []byte) error {
	r := bytes.NewReader(pix)
	buf := make([]byte, d.bytesPerPx)
	count := d.width * d.height

	for i := 0; i < count; {
		header, err := r.ReadByte()
		if err != nil {
			return ErrTruncatedTGA
		}
		run := int(header&0x7F) + 1

		if header&0x80 != 0 {
			if _, err := io.ReadFull(r, buf); err != nil {
				return ErrTruncatedTGA
			}
			c := d.pixel(buf)
			for j := 0; j < run && i < count; j++ {
				d.set(i, c)
				i++
			}
			continue
		}

		for j := 0; j < run && i < count; j++ {
			if _, err := io.ReadFull(r, buf); err != nil {
				return ErrTruncatedTGA
			}
			d.set(i, d.pixel(buf))
			i++
		}
	}
	return nil
}
