package seamcarve

import (
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// decodeImg decodes the source into an image, applying the EXIF orientation if present.
func decodeImg(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "could not decode the source image")
	}
	return img, nil
}

// encodeImg encodes an image to a destination of type io.Writer.
// Files are encoded based on their extension, anything else as JPEG.
func encodeImg(w io.Writer, img image.Image, quality int) error {
	jpegQuality := imaging.JPEGQuality(quality)

	f, ok := w.(*os.File)
	if !ok {
		return imaging.Encode(w, img, imaging.JPEG, jpegQuality)
	}
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case "", ".jpg", ".jpeg":
		return imaging.Encode(w, img, imaging.JPEG, jpegQuality)
	case ".bmp":
		return bmp.Encode(w, img)
	default:
		format, err := imaging.FormatFromExtension(ext)
		if err != nil {
			return errors.Wrapf(err, "unsupported image format %q", ext)
		}
		return imaging.Encode(w, img, format)
	}
}

// toPixelBuffer converts any image type to a RGB pixel buffer with the min point at (0, 0).
// The alpha channel is dropped.
func toPixelBuffer(img image.Image) (*PixelBuffer, error) {
	bounds := img.Bounds()
	minX, minY := bounds.Min.X, bounds.Min.Y
	dx, dy := bounds.Dx(), bounds.Dy()

	pb, err := NewPixelBuffer(dx, dy, RGB)
	if err != nil {
		return nil, err
	}

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < dy; y++ {
			si := src.PixOffset(minX, minY+y)
			for x := 0; x < dx; x++ {
				copy(pb.Pix[pb.Index(y, x, 0):pb.Index(y, x, RGB)], src.Pix[si:si+3])
				si += 4
			}
		}
	case *image.YCbCr:
		for y := 0; y < dy; y++ {
			for x := 0; x < dx; x++ {
				siy := src.YOffset(minX+x, minY+y)
				sic := src.COffset(minX+x, minY+y)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				pb.Set(y, x, 0, r)
				pb.Set(y, x, 1, g)
				pb.Set(y, x, 2, b)
			}
		}
	default:
		for y := 0; y < dy; y++ {
			for x := 0; x < dx; x++ {
				c := color.NRGBAModel.Convert(img.At(minX+x, minY+y)).(color.NRGBA)
				pb.Set(y, x, 0, c.R)
				pb.Set(y, x, 1, c.G)
				pb.Set(y, x, 2, c.B)
			}
		}
	}
	return pb, nil
}

// toImage converts a RGB pixel buffer back to an opaque *image.NRGBA.
func toImage(pb *PixelBuffer) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, pb.Width, pb.Height))
	for y := 0; y < pb.Height; y++ {
		di := dst.PixOffset(0, y)
		for x := 0; x < pb.Width; x++ {
			copy(dst.Pix[di:di+3], pb.Pix[pb.Index(y, x, 0):pb.Index(y, x, RGB)])
			dst.Pix[di+3] = 0xff
			di += 4
		}
	}
	return dst
}
