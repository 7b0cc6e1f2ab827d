package l3measure

import (
	"fmt"
	"image"
	"math"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/body/l2slices"
)

// SliceSpec places the seed of a torso slice between two joints.
type SliceSpec struct {
	From l1frames.JointType
	To   l1frames.JointType

	// Fraction interpolates from From (0) to To (1).
	Fraction float64

	Axis l2slices.Axis

	// MaxExtent caps the run in pixels; zero disables the cap.
	MaxExtent int
}

// DefaultSliceSpecs returns the chest, waist, belly and hip slices in
// KindTorso1..KindTorso4 order.
func DefaultSliceSpecs() [TorsoCount]SliceSpec {
	return [TorsoCount]SliceSpec{
		{From: l1frames.JointSpineShoulder, To: l1frames.JointSpineMid, Fraction: 0.33, Axis: l2slices.Horizontal},
		{From: l1frames.JointSpineMid, To: l1frames.JointSpineMid, Axis: l2slices.Horizontal},
		{From: l1frames.JointSpineMid, To: l1frames.JointSpineBase, Fraction: 0.5, Axis: l2slices.Horizontal},
		{From: l1frames.JointSpineBase, To: l1frames.JointSpineBase, Axis: l2slices.Horizontal},
	}
}

// Validate checks the joints and the interpolation fraction.
func (s SliceSpec) Validate() error {
	if s.From < 0 || s.From >= l1frames.JointCount {
		return fmt.Errorf("invalid from joint %d", int(s.From))
	}
	if s.To < 0 || s.To >= l1frames.JointCount {
		return fmt.Errorf("invalid to joint %d", int(s.To))
	}
	if s.Fraction < 0 || s.Fraction > 1 || math.IsNaN(s.Fraction) {
		return fmt.Errorf("fraction must be between 0 and 1, got %f", s.Fraction)
	}
	if s.MaxExtent < 0 {
		return fmt.Errorf("max extent must be non-negative, got %d", s.MaxExtent)
	}
	return nil
}

// Seed returns the depth pixel the slice starts from. ok is false when a
// joint it needs is not tracked.
func (s SliceSpec) Seed(joints l1frames.JointSource, subject l1frames.SubjectID) (image.Point, bool) {
	a, ok := joints.JointPosition(subject, s.From)
	if !ok {
		return image.Point{}, false
	}
	x, y := a.X, a.Y
	if s.To != s.From && s.Fraction != 0 {
		b, ok := joints.JointPosition(subject, s.To)
		if !ok {
			return image.Point{}, false
		}
		x += (b.X - a.X) * s.Fraction
		y += (b.Y - a.Y) * s.Fraction
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return image.Point{}, false
	}
	return image.Point{X: int(math.Round(x)), Y: int(math.Round(y))}, true
}
