package renderer

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// filterResolution is the number of entries in the pre-rasterized filter table
const filterResolution = 32

// Pixel accumulates filtered radiance and the sum of filter weights
type Pixel struct {
	Color  core.Vec3
	Weight float64
}

// ImageBlock is a rectangular region of the image plus a border wide enough
// for the reconstruction filter to spill into. Tile blocks are owned by one
// worker at a time; only Merge is safe for concurrent use.
type ImageBlock struct {
	mu sync.Mutex

	bounds image.Rectangle // Region in image coordinates, excluding the border
	border int
	stride int
	pixels []Pixel

	radius       float64
	lookup       [filterResolution + 1]float64
	lookupFactor float64
	weightsX     []float64
	weightsY     []float64

	invalid int64
}

// NewImageBlock creates an empty block covering bounds. A nil filter means
// one-pixel box reconstruction.
func NewImageBlock(bounds image.Rectangle, filter core.ReconstructionFilter) *ImageBlock {
	if filter == nil {
		filter = NewBoxFilter(0.5)
	}

	b := &ImageBlock{radius: filter.Radius()}
	b.border = int(math.Ceil(b.radius - 0.5))
	for i := 0; i < filterResolution; i++ {
		b.lookup[i] = filter.Eval(b.radius * float64(i) / filterResolution)
	}
	b.lookup[filterResolution] = 0
	b.lookupFactor = filterResolution / b.radius

	span := int(math.Ceil(2*b.radius)) + 1
	b.weightsX = make([]float64, span)
	b.weightsY = make([]float64, span)

	b.Reset(bounds)
	return b
}

// Reset moves the block to new bounds and clears it, reusing storage when it fits
func (b *ImageBlock) Reset(bounds image.Rectangle) {
	b.bounds = bounds
	b.stride = bounds.Dx() + 2*b.border
	n := b.stride * (bounds.Dy() + 2*b.border)
	if cap(b.pixels) >= n {
		b.pixels = b.pixels[:n]
		clear(b.pixels)
	} else {
		b.pixels = make([]Pixel, n)
	}
	b.invalid = 0
}

// Bounds returns the block's region without the border
func (b *ImageBlock) Bounds() image.Rectangle {
	return b.bounds
}

// Border returns the width of the filter border in pixels
func (b *ImageBlock) Border() int {
	return b.border
}

// InvalidSamples returns how many samples Put rejected since the last Reset
func (b *ImageBlock) InvalidSamples() int64 {
	return b.invalid
}

// rows and cols include the border
func (b *ImageBlock) cols() int { return b.stride }
func (b *ImageBlock) rows() int { return b.bounds.Dy() + 2*b.border }

// At returns the accumulated pixel at image coordinates (x, y), which may lie
// in the border
func (b *ImageBlock) At(x, y int) Pixel {
	col := x - b.bounds.Min.X + b.border
	row := y - b.bounds.Min.Y + b.border
	if col < 0 || row < 0 || col >= b.cols() || row >= b.rows() {
		return Pixel{}
	}
	return b.pixels[row*b.stride+col]
}

// Put splats a radiance sample at a continuous image position. Samples with
// NaN, infinite or negative components are rejected and counted.
func (b *ImageBlock) Put(pos core.Vec2, value core.Vec3) bool {
	if !value.IsValid() {
		b.invalid++
		return false
	}

	// Position relative to the top-left corner of the bordered block, shifted
	// so integer coordinates are pixel centers
	x := pos.X - 0.5 - float64(b.bounds.Min.X-b.border)
	y := pos.Y - 0.5 - float64(b.bounds.Min.Y-b.border)

	minX := max(int(math.Ceil(x-b.radius)), 0)
	minY := max(int(math.Ceil(y-b.radius)), 0)
	maxX := min(int(math.Floor(x+b.radius)), b.cols()-1)
	maxY := min(int(math.Floor(y+b.radius)), b.rows()-1)
	if minX > maxX || minY > maxY {
		return true
	}

	for px, i := minX, 0; px <= maxX; px, i = px+1, i+1 {
		b.weightsX[i] = b.lookupWeight(float64(px) - x)
	}
	for py, i := minY, 0; py <= maxY; py, i = py+1, i+1 {
		b.weightsY[i] = b.lookupWeight(float64(py) - y)
	}

	for py, yr := minY, 0; py <= maxY; py, yr = py+1, yr+1 {
		row := b.pixels[py*b.stride:]
		for px, xr := minX, 0; px <= maxX; px, xr = px+1, xr+1 {
			w := b.weightsX[xr] * b.weightsY[yr]
			p := &row[px]
			p.Color = p.Color.Add(value.Multiply(w))
			p.Weight += w
		}
	}
	return true
}

func (b *ImageBlock) lookupWeight(d float64) float64 {
	i := int(math.Abs(d) * b.lookupFactor)
	if i > filterResolution {
		return 0
	}
	return b.lookup[i]
}

// Merge adds another block, border included, at its position in this block.
// It is safe to call from multiple goroutines.
func (b *ImageBlock) Merge(other *ImageBlock) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.invalid += other.invalid

	// Offset of other's bordered origin inside this block's bordered storage
	offX := other.bounds.Min.X - other.border - (b.bounds.Min.X - b.border)
	offY := other.bounds.Min.Y - other.border - (b.bounds.Min.Y - b.border)

	for row := 0; row < other.rows(); row++ {
		dy := row + offY
		if dy < 0 || dy >= b.rows() {
			continue
		}
		src := other.pixels[row*other.stride : (row+1)*other.stride]
		dst := b.pixels[dy*b.stride : (dy+1)*b.stride]
		for col, p := range src {
			dx := col + offX
			if dx < 0 || dx >= b.stride {
				continue
			}
			dst[dx].Color = dst[dx].Color.Add(p.Color)
			dst[dx].Weight += p.Weight
		}
	}
}

// ToBitmap normalizes the block's interior by the accumulated filter weights.
// Pixels that received no weight are black.
func (b *ImageBlock) ToBitmap() *Bitmap {
	b.mu.Lock()
	defer b.mu.Unlock()

	bitmap := NewBitmap(b.bounds.Dx(), b.bounds.Dy())
	for y := 0; y < bitmap.Height; y++ {
		row := b.pixels[(y+b.border)*b.stride:]
		for x := 0; x < bitmap.Width; x++ {
			p := row[x+b.border]
			if p.Weight != 0 {
				bitmap.Set(x, y, p.Color.Multiply(1/p.Weight))
			}
		}
	}
	return bitmap
}

// FromBitmap replaces the block's interior with the bitmap's colors at unit
// weight. The bitmap must match the block's size.
func (b *ImageBlock) FromBitmap(bitmap *Bitmap) error {
	if bitmap.Width != b.bounds.Dx() || bitmap.Height != b.bounds.Dy() {
		return fmt.Errorf("bitmap size %dx%d does not match block size %dx%d",
			bitmap.Width, bitmap.Height, b.bounds.Dx(), b.bounds.Dy())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.pixels)
	for y := 0; y < bitmap.Height; y++ {
		row := b.pixels[(y+b.border)*b.stride:]
		for x := 0; x < bitmap.Width; x++ {
			row[x+b.border] = Pixel{Color: bitmap.At(x, y), Weight: 1}
		}
	}
	return nil
}

func (b *ImageBlock) String() string {
	return fmt.Sprintf("ImageBlock[bounds=%v, border=%d]", b.bounds, b.border)
}
