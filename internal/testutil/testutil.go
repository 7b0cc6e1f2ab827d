// Package testutil provides shared test fixtures for the body measurement
// packages.
//
// Fixtures are returned as raw buffers so that any layer can use them
// without import cycles.
package testutil

import (
	"fmt"
	"image"
	"strings"
	"testing"
)

// Background is the label value for pixels without a body. It matches
// l1frames.NoBody.
const Background uint8 = 255

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// LabelGrid builds a label buffer from text rows. '.' is background and a
// digit is that label. All rows must have the same length.
//
//	pix, w, h := LabelGrid(
//		"....",
//		"1111",
//	)
func LabelGrid(rows ...string) (pix []uint8, width, height int) {
	if len(rows) == 0 {
		panic("testutil: LabelGrid needs at least one row")
	}
	width = len(rows[0])
	height = len(rows)
	pix = make([]uint8, 0, width*height)
	for y, row := range rows {
		if len(row) != width {
			panic(fmt.Sprintf("testutil: row %d has %d columns, want %d", y, len(row), width))
		}
		for _, c := range row {
			switch {
			case c == '.':
				pix = append(pix, Background)
			case c >= '0' && c <= '9':
				pix = append(pix, uint8(c-'0'))
			default:
				panic(fmt.Sprintf("testutil: unexpected label rune %q", c))
			}
		}
	}
	return pix, width, height
}

// LabelRow builds a single-row label buffer, the common case for run tests.
func LabelRow(row string) []uint8 {
	pix, _, _ := LabelGrid(row)
	return pix
}

// Blank returns a width*height label buffer filled with Background.
func Blank(width, height int) []uint8 {
	pix := make([]uint8, width*height)
	for i := range pix {
		pix[i] = Background
	}
	return pix
}

// FilledDepth returns n depth samples all set to v.
func FilledDepth(n int, v uint16) []uint16 {
	d := make([]uint16, n)
	for i := range d {
		d[i] = v
	}
	return d
}

// PaintRect sets every pixel of r (clipped to the buffer) to label.
func PaintRect(pix []uint8, width int, r image.Rectangle, label uint8) {
	height := len(pix) / width
	r = r.Intersect(image.Rect(0, 0, width, height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			pix[y*width+x] = label
		}
	}
}

// Figure describes the synthetic standing subject painted by Silhouette.
// All rectangles are in pixel coordinates of the label image.
type Figure struct {
	Head  image.Rectangle
	Torso image.Rectangle
	Legs  image.Rectangle
}

// StandardFigure returns a figure centred in a width*height image. The
// torso spans the middle third of the height and a quarter of the width.
func StandardFigure(width, height int) Figure {
	cx := width / 2
	torsoHalf := width / 8
	headHalf := width / 16
	top := height / 8
	headBottom := top + height/8
	torsoBottom := headBottom + height/3
	bottom := height - height/16
	return Figure{
		Head:  image.Rect(cx-headHalf, top, cx+headHalf, headBottom),
		Torso: image.Rect(cx-torsoHalf, headBottom, cx+torsoHalf, torsoBottom),
		Legs:  image.Rect(cx-torsoHalf+1, torsoBottom, cx+torsoHalf-1, bottom),
	}
}

// Silhouette paints f into a fresh width*height buffer using label.
func Silhouette(width, height int, f Figure, label uint8) []uint8 {
	pix := Blank(width, height)
	PaintRect(pix, width, f.Head, label)
	PaintRect(pix, width, f.Torso, label)
	PaintRect(pix, width, f.Legs, label)
	return pix
}

// FormatGrid renders a label buffer back into LabelGrid text, useful in
// failure messages.
func FormatGrid(pix []uint8, width int) string {
	var b strings.Builder
	for i, v := range pix {
		if i > 0 && i%width == 0 {
			b.WriteByte('\n')
		}
		if v == Background {
			b.WriteByte('.')
		} else {
			b.WriteByte('0' + v%10)
		}
	}
	return b.String()
}
