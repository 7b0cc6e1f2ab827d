package l2slices

import (
	"image"
	"testing"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/testutil"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// gridMapper is a linear CoordinateMapper: one pixel is one centimetre in
// camera space and colorScale pixels in the color image.
type gridMapper struct {
	colorScale  float64
	colorOffset r2.Vec
	colorW      int
	colorH      int
}

func newGridMapper() *gridMapper {
	return &gridMapper{colorScale: 2, colorW: 100, colorH: 100}
}

func (m *gridMapper) PixelToSpace(p image.Point, depth uint16) r3.Vec {
	return r3.Vec{X: float64(p.X) * 0.01, Y: -float64(p.Y) * 0.01, Z: float64(depth) / 1000}
}

func (m *gridMapper) PixelToColor(p image.Point, depth uint16) r2.Vec {
	return r2.Vec{
		X: float64(p.X)*m.colorScale + m.colorOffset.X,
		Y: float64(p.Y)*m.colorScale + m.colorOffset.Y,
	}
}

func (m *gridMapper) ColorWidth() int  { return m.colorW }
func (m *gridMapper) ColorHeight() int { return m.colorH }

// gridFrame builds a frame from LabelGrid rows with constant depth.
func gridFrame(t *testing.T, depth uint16, rows ...string) *l1frames.Frame {
	t.Helper()
	pix, w, h := testutil.LabelGrid(rows...)
	f, err := l1frames.NewFrame(pix, testutil.FilledDepth(w*h, depth), w, h, 1)
	testutil.AssertNoError(t, err)
	return f
}

func newTestSlicer(t *testing.T) *Slicer {
	t.Helper()
	s, err := NewSlicer(newGridMapper())
	testutil.AssertNoError(t, err)
	return s
}
