package loader

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration

	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration

	"github.com/Faultbox/mjscene/pkg/formats"
)

// ErrUnsupportedImage is returned for data that is not a known image
// format.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Decode decodes image data to RGB8 and names the format it found.
// TGA has no signature, so it is tried only when the data is not
// recognised as another type.
func Decode(data []byte) (*Image, string, error) {
	kind, _ := filetype.Match(data)
	if kind != filetype.Unknown {
		if !filetype.IsImage(data) {
			return nil, "", errors.Wrapf(ErrUnsupportedImage, "%s data", kind.MIME.Value)
		}
		img, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", errors.Wrapf(err, "%s", kind.MIME.Value)
		}
		return ToRGB8(img), format, nil
	}

	if formats.IsTGA(data) {
		img, err := formats.DecodeTGA(data)
		if err != nil {
			return nil, "", err
		}
		return ToRGB8(img), "tga", nil
	}
	return nil, "", ErrUnsupportedImage
}

// ToRGB8 converts any image to RGB8, dropping alpha.
func ToRGB8(img image.Image) *Image {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	w, h := b.Dx(), b.Dy()
	out := &Image{Width: w, Height: h, Pix: make([]byte, 0, w*h*3)}
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			out.Pix = append(out.Pix, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return out
}
