package renderer

import (
	"fmt"
	"image"
	"strings"
	"sync"
)

// DefaultBlockSize is the edge length of a render tile in pixels
const DefaultBlockSize = 32

// Traversal selects the order in which tiles are handed out
type Traversal int

const (
	// TraversalSpiral starts at the image center and spirals outwards
	TraversalSpiral Traversal = iota
	// TraversalScanline goes left to right, top to bottom
	TraversalScanline
)

func (t Traversal) String() string {
	switch t {
	case TraversalSpiral:
		return "spiral"
	case TraversalScanline:
		return "scanline"
	default:
		return fmt.Sprintf("Traversal(%d)", int(t))
	}
}

// ParseTraversal converts a traversal name to a Traversal
func ParseTraversal(name string) (Traversal, error) {
	switch strings.ToLower(name) {
	case "", "spiral":
		return TraversalSpiral, nil
	case "scanline":
		return TraversalScanline, nil
	default:
		return 0, fmt.Errorf("unknown block traversal %q", name)
	}
}

// Tile is a region of the image handed to one worker
type Tile struct {
	Index  int             // Position in traversal order
	Bounds image.Rectangle // Pixel bounds, clipped to the image
}

type direction int

const (
	dirRight direction = iota
	dirDown
	dirLeft
	dirUp
)

// BlockGenerator hands out the tiles of an image, each exactly once.
// Next is safe for concurrent use.
type BlockGenerator struct {
	mu sync.Mutex

	size      image.Point
	blockSize int
	traversal Traversal

	numBlocks image.Point
	issued    int

	// Spiral state
	block     image.Point
	dir       direction
	stepsLeft int
	numSteps  int
}

// NewBlockGenerator creates a generator for an image of the given size.
// A non-positive blockSize selects DefaultBlockSize.
func NewBlockGenerator(size image.Point, blockSize int, traversal Traversal) *BlockGenerator {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	g := &BlockGenerator{
		size:      size,
		blockSize: blockSize,
		traversal: traversal,
		numBlocks: image.Pt(ceilDiv(size.X, blockSize), ceilDiv(size.Y, blockSize)),
	}
	g.reset()
	return g
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func (g *BlockGenerator) reset() {
	g.issued = 0
	g.block = g.numBlocks.Div(2)
	g.dir = dirRight
	g.stepsLeft = 1
	g.numSteps = 1
}

// BlockCount returns the total number of tiles
func (g *BlockGenerator) BlockCount() int {
	return g.numBlocks.X * g.numBlocks.Y
}

// Remaining returns the number of tiles not yet issued
func (g *BlockGenerator) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.BlockCount() - g.issued
}

// Next claims the next tile. It returns false once every tile has been issued.
func (g *BlockGenerator) Next() (Tile, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.issued >= g.BlockCount() {
		return Tile{}, false
	}

	var pos image.Point
	if g.traversal == TraversalScanline {
		pos = image.Pt(g.issued%g.numBlocks.X, g.issued/g.numBlocks.X)
	} else {
		pos = g.block
	}

	tile := Tile{Index: g.issued, Bounds: g.tileBounds(pos)}
	g.issued++
	if g.traversal == TraversalSpiral && g.issued < g.BlockCount() {
		g.advanceSpiral()
	}
	return tile, true
}

func (g *BlockGenerator) tileBounds(block image.Point) image.Rectangle {
	lo := block.Mul(g.blockSize)
	hi := lo.Add(image.Pt(g.blockSize, g.blockSize))
	return image.Rectangle{Min: lo, Max: hi}.Intersect(image.Rectangle{Max: g.size})
}

// advanceSpiral walks the spiral until it lands on a block inside the grid.
// The arm length grows by one after every horizontal turn.
func (g *BlockGenerator) advanceSpiral() {
	grid := image.Rectangle{Max: g.numBlocks}
	for {
		switch g.dir {
		case dirRight:
			g.block.X++
		case dirDown:
			g.block.Y++
		case dirLeft:
			g.block.X--
		case dirUp:
			g.block.Y--
		}

		g.stepsLeft--
		if g.stepsLeft == 0 {
			g.dir = (g.dir + 1) % 4
			if g.dir == dirLeft || g.dir == dirRight {
				g.numSteps++
			}
			g.stepsLeft = g.numSteps
		}

		if g.block.In(grid) {
			return
		}
	}
}
