package renderer

import (
	"bufio"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// Bitmap is a linear RGB floating point image
type Bitmap struct {
	Width  int
	Height int
	Pix    []core.Vec3
}

// NewBitmap creates a black bitmap
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{Width: width, Height: height, Pix: make([]core.Vec3, width*height)}
}

// At returns the color at (x, y)
func (b *Bitmap) At(x, y int) core.Vec3 {
	return b.Pix[y*b.Width+x]
}

// Set stores the color at (x, y)
func (b *Bitmap) Set(x, y int, c core.Vec3) {
	b.Pix[y*b.Width+x] = c
}

// AverageLuminance returns the mean Rec. 709 luminance of the bitmap
func (b *Bitmap) AverageLuminance() float64 {
	if len(b.Pix) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range b.Pix {
		total += c.Luminance()
	}
	return total / float64(len(b.Pix))
}

// toSRGB applies the sRGB transfer curve to a linear value in [0, 1]
func toSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// ToRGBA converts the bitmap to 8-bit sRGB, clamping out-of-range values
func (b *Bitmap) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := b.At(x, y).Clamp(0, 1)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(math.Round(255 * toSRGB(c.X))),
				G: uint8(math.Round(255 * toSRGB(c.Y))),
				B: uint8(math.Round(255 * toSRGB(c.Z))),
				A: 255,
			})
		}
	}
	return img
}

// SavePNG writes the tone-mapped bitmap as an sRGB PNG
func (b *Bitmap) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := png.Encode(w, b.ToRGBA()); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

// ToHDR converts the bitmap to a linear high dynamic range image
func (b *Bitmap) ToHDR() *hdr.RGB {
	img := hdr.NewRGB(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := b.At(x, y)
			img.SetRGB(x, y, hdrcolor.RGB{R: c.X, G: c.Y, B: c.Z})
		}
	}
	return img
}

// SaveHDR writes the bitmap in linear Radiance RGBE format
func (b *Bitmap) SaveHDR(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := rgbe.Encode(w, b.ToHDR()); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

// LoadHDR reads a Radiance RGBE image
func LoadHDR(path string) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	m, err := rgbe.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	img, ok := m.(hdr.Image)
	if !ok {
		return nil, errors.Errorf("%s: not a high dynamic range image", path)
	}

	bounds := img.Bounds()
	bitmap := NewBitmap(bounds.Dx(), bounds.Dy())
	for y := 0; y < bitmap.Height; y++ {
		for x := 0; x < bitmap.Width; x++ {
			r, g, b, _ := img.HDRAt(bounds.Min.X+x, bounds.Min.Y+y).HDRRGBA()
			bitmap.Set(x, y, core.NewVec3(r, g, b))
		}
	}
	return bitmap, nil
}
