// Package imageio decodes a source photo from disk into an image.Image
// and encodes the rendered preview back out, adapted from the teacher's
// internal/texture.LoadTexture: same image.Decode dispatch plus
// registered side-effect decoders, generalized from the two MU Online
// container formats (OZJ/OZT) to ordinary PNG/JPEG/WebP/TGA files.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/HugoSmits86/nativewebp"
	_ "github.com/ftrvxmtrx/tga"
)

// Load reads an image file and normalizes it to NRGBA, the format every
// downstream stage samples from.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", path, err)
	}
	return toNRGBA(img), nil
}

// SavePreviewWebP writes img as a lossy WebP preview, the same encoder
// the teacher uses for its rendered item thumbnails.
func SavePreviewWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: create %s: %w", path, err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("imageio: encode %s: %w", path, err)
	}
	return nil
}

// toNRGBA converts any decoded image to NRGBA, filling full opacity for
// formats without an alpha channel.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}

	b := src.Bounds()
	dst := image.NewNRGBA(b)

	switch src.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		draw.Draw(dst, b, src, b.Min, draw.Src)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				i := dst.PixOffset(x, y)
				dst.Pix[i+3] = 255
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
