package l2slices

import (
	"image"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
)

// maxExtraMismatches is the number of consecutive mismatched pixels a
// bounded run may cross beyond the single look-ahead pixel. Zero means a
// lone mislabeled pixel is absorbed and two consecutive ones end the run.
const maxExtraMismatches = 0

// ScanOrder is the traversal order of a full-frame scan.
type ScanOrder int

const (
	// RowMajor visits pixels by increasing buffer index: rows top to bottom,
	// each row left to right. The first match is the topmost pixel.
	RowMajor ScanOrder = iota
	// ColumnMajor visits columns left to right, each column top to bottom.
	// The first match is the leftmost pixel.
	ColumnMajor
)

// OrderFor returns the scan order whose extremes bound a slice along axis.
func OrderFor(axis Axis) ScanOrder {
	if axis == Horizontal {
		return ColumnMajor
	}
	return RowMajor
}

// FindExtremes returns the first and last pixels carrying label in the given
// scan order. No tolerance applies: the scans stop at the very first match
// from either end. ok is false when label does not occur at all.
func FindExtremes(img l1frames.LabelImage, label uint8, order ScanOrder) (first, last image.Point, ok bool) {
	n := img.Len()
	if n == 0 {
		return image.Point{}, image.Point{}, false
	}

	var fi, li int
	switch order {
	case ColumnMajor:
		fi, li = scanColumns(img, label)
	default:
		fi, li = scanRows(img, label)
	}
	if li < 0 {
		return image.Point{}, image.Point{}, false
	}
	return img.PointAt(fi), img.PointAt(li), true
}

// scanRows returns the buffer indices of the first and last label pixels in
// row-major order, or -1 for both when absent.
func scanRows(img l1frames.LabelImage, label uint8) (first, last int) {
	first, last = -1, -1
	pix := img.Pix
	for i := 0; i < len(pix); i++ {
		if pix[i] == label {
			first = i
			break
		}
	}
	if first < 0 {
		return -1, -1
	}
	for i := len(pix) - 1; i >= first; i-- {
		if pix[i] == label {
			last = i
			break
		}
	}
	return first, last
}

// scanColumns is scanRows with the roles of x and y swapped.
func scanColumns(img l1frames.LabelImage, label uint8) (first, last int) {
	first, last = -1, -1
	w, h := img.Width, img.Height
	pix := img.Pix

forward:
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if i := y*w + x; pix[i] == label {
				first = i
				break forward
			}
		}
	}
	if first < 0 {
		return -1, -1
	}

backward:
	for x := w - 1; x >= 0; x-- {
		for y := h - 1; y >= 0; y-- {
			if i := y*w + x; pix[i] == label {
				last = i
				break backward
			}
		}
	}
	return first, last
}

// Run is the result of a bounded bidirectional walk from a seed pixel.
type Run struct {
	Seed image.Point
	Axis Axis
	// Before is the number of pixels covered left of (or above) the seed.
	Before int
	// After is the number of pixels covered right of (or below) the seed.
	After int
}

// Len returns the inclusive pixel extent of the run.
func (r Run) Len() int {
	return r.Before + 1 + r.After
}

// Start returns the first pixel of the run.
func (r Run) Start() image.Point {
	if r.Axis == Horizontal {
		return image.Point{X: r.Seed.X - r.Before, Y: r.Seed.Y}
	}
	return image.Point{X: r.Seed.X, Y: r.Seed.Y - r.Before}
}

// End returns the last pixel of the run.
func (r Run) End() image.Point {
	if r.Axis == Horizontal {
		return image.Point{X: r.Seed.X + r.After, Y: r.Seed.Y}
	}
	return image.Point{X: r.Seed.X, Y: r.Seed.Y + r.After}
}

// Clamp caps the run at maxExtent pixels while keeping the seed centred:
// when the run is longer than maxExtent the longer side is cut back to the
// length of the shorter side. The sides are never rescaled proportionally.
// A maxExtent of zero or less disables the cap.
func (r Run) Clamp(maxExtent int) Run {
	if maxExtent <= 0 || r.Len() <= maxExtent {
		return r
	}
	m := min(r.Before, r.After)
	r.Before, r.After = m, m
	return r
}

// WalkRun walks outward from seed along axis in both directions while the
// pixels carry label. The seed itself must carry label; otherwise the
// returned reason is ReasonSeedMismatch (or ReasonSeedOutOfBounds) and the
// run is empty.
//
// A horizontal run never leaves the seed's row and a vertical run never
// leaves its column.
func WalkRun(img l1frames.LabelImage, seed image.Point, label uint8, axis Axis) (Run, Reason) {
	run := Run{Seed: seed, Axis: axis}
	if !img.In(seed) {
		return run, ReasonSeedOutOfBounds
	}
	if img.At(seed) != label {
		return run, ReasonSeedMismatch
	}

	dx, dy := 0, 1
	if axis == Horizontal {
		dx, dy = 1, 0
	}
	run.Before = walk(img, seed, -dx, -dy, label)
	run.After = walk(img, seed, dx, dy, label)
	return run, ReasonOK
}

// walk steps from seed by (dx, dy) and returns the distance to the last
// matching pixel. A mismatch increments the error count, a match resets it,
// and the walk ends once the count exceeds the single look-ahead pixel plus
// maxExtraMismatches, or at the image edge.
func walk(img l1frames.LabelImage, seed image.Point, dx, dy int, label uint8) int {
	length := 0
	errCount := 0
	for step := 1; ; step++ {
		p := image.Point{X: seed.X + step*dx, Y: seed.Y + step*dy}
		if !img.In(p) {
			break
		}
		if img.Pix[p.Y*img.Width+p.X] == label {
			length = step
			errCount = 0
			continue
		}
		errCount++
		if errCount > 1+maxExtraMismatches {
			break
		}
	}
	return length
}
