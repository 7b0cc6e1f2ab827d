package l2slices

import (
	"fmt"
	"image"
	"math"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/body/space"
	"gonum.org/v1/gonum/spatial/r3"
)

// Slicer locates and resolves slices against one coordinate mapper.
type Slicer struct {
	mapper space.CoordinateMapper
}

// NewSlicer creates a Slicer that maps endpoints through mapper.
func NewSlicer(mapper space.CoordinateMapper) (*Slicer, error) {
	if mapper == nil {
		return nil, fmt.Errorf("nil coordinate mapper")
	}
	if mapper.ColorWidth() <= 0 || mapper.ColorHeight() <= 0 {
		return nil, fmt.Errorf("invalid color image size %dx%d", mapper.ColorWidth(), mapper.ColorHeight())
	}
	return &Slicer{mapper: mapper}, nil
}

// FullScan measures the subject's full extent along axis: height for
// Vertical, width for Horizontal. The first pixel found is the seed whose
// cross-axis coordinate both endpoints keep. rec is overwritten.
func (s *Slicer) FullScan(frame *l1frames.Frame, label uint8, axis Axis, rec *Record) {
	first, last, ok := FindExtremes(frame.Label, label, OrderFor(axis))
	if !ok {
		rec.Invalidate(ReasonLabelAbsent)
		return
	}
	s.Resolve(frame, first, last, first, axis, rec)
}

// BoundedRun measures the run through seed along axis, capped at maxExtent
// pixels when maxExtent is positive. rec is overwritten.
func (s *Slicer) BoundedRun(frame *l1frames.Frame, label uint8, seed image.Point, axis Axis, maxExtent int, rec *Record) {
	run, reason := WalkRun(frame.Label, seed, label, axis)
	if reason != ReasonOK {
		rec.Invalidate(reason)
		return
	}
	run = run.Clamp(maxExtent)
	s.Resolve(frame, run.Start(), run.End(), seed, axis, rec)
}

// Resolve converts the located extent start..end into rec. start and end
// must lie inside the frame with start not after end along axis.
//
// Endpoints are mapped to camera space with their own depth samples and the
// diameter is the distance between them. Color endpoints are clamped to the
// color image along axis. Finally the cross-axis coordinate of both pixel and
// color endpoints is replaced by the seed's, so the stored slice is a
// straight segment through the seed.
func (s *Slicer) Resolve(frame *l1frames.Frame, start, end, seed image.Point, axis Axis, rec *Record) {
	depth := frame.Depth
	ds := depth.At(start)
	de := depth.At(end)

	ss := s.mapper.PixelToSpace(start, ds)
	se := s.mapper.PixelToSpace(end, de)

	cs := s.mapper.PixelToColor(start, ds)
	ce := s.mapper.PixelToColor(end, de)
	cSeed := s.mapper.PixelToColor(seed, depth.At(seed))

	cw := float64(s.mapper.ColorWidth() - 1)
	ch := float64(s.mapper.ColorHeight() - 1)

	var pixelLen int
	var colorLen float64
	if axis == Horizontal {
		cs.X = clamp(cs.X, cw)
		ce.X = clamp(ce.X, cw)
		cs.Y = clamp(cSeed.Y, ch)
		ce.Y = cs.Y
		start.Y, end.Y = seed.Y, seed.Y
		pixelLen = end.X - start.X + 1
		colorLen = math.Abs(ce.X - cs.X)
	} else {
		cs.Y = clamp(cs.Y, ch)
		ce.Y = clamp(ce.Y, ch)
		cs.X = clamp(cSeed.X, cw)
		ce.X = cs.X
		start.X, end.X = seed.X, seed.X
		pixelLen = end.Y - start.Y + 1
		colorLen = math.Abs(ce.Y - cs.Y)
	}

	*rec = Record{
		Valid:       true,
		Reason:      ReasonOK,
		Diameter:    Diameter(ss, se),
		PixelLength: pixelLen,
		ColorLength: colorLen,
		Start:       start,
		End:         end,
		ColorStart:  cs,
		ColorEnd:    ce,
		SpaceStart:  ss,
		SpaceEnd:    se,
	}
}

// Diameter returns the Euclidean distance between two camera-space points.
func Diameter(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// clamp limits v to [0, hi]. NaN and -Inf clamp to 0, as does any v when
// hi is negative.
func clamp(v, hi float64) float64 {
	if hi < 0 {
		hi = 0
	}
	if !(v >= 0) {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
