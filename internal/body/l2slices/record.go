package l2slices

import (
	"image"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Axis is the image axis a slice extends along.
type Axis int

const (
	// Vertical slices run top to bottom (height).
	Vertical Axis = iota
	// Horizontal slices run left to right (width, torso slices).
	Horizontal
)

// String returns the axis name used in settings.
func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Reason explains why a Record is or is not valid.
type Reason string

const (
	ReasonOK Reason = "ok"
	// ReasonLabelAbsent: the subject's label does not occur in the frame.
	ReasonLabelAbsent Reason = "label_absent"
	// ReasonSeedMismatch: the seed pixel does not carry the subject's label.
	ReasonSeedMismatch Reason = "seed_mismatch"
	// ReasonSeedOutOfBounds: the seed pixel lies outside the frame.
	ReasonSeedOutOfBounds Reason = "seed_out_of_bounds"
	// ReasonNoSeed: the joints needed to place the seed are not tracked.
	ReasonNoSeed Reason = "no_seed"
)

// Record is one resolved slice measurement.
//
// Only Valid and Reason are meaningful when Valid is false; every geometry
// field is then left at its zero value and must not be read as a
// measurement.
type Record struct {
	Valid  bool
	Reason Reason

	// Diameter is the camera-space distance between SpaceStart and SpaceEnd,
	// in the mapper's units.
	Diameter float64

	// PixelLength is the inclusive pixel count from Start to End.
	PixelLength int
	// ColorLength is the distance from ColorStart to ColorEnd along the
	// slice axis, in color-image pixels.
	ColorLength float64

	Start, End           image.Point
	ColorStart, ColorEnd r2.Vec
	SpaceStart, SpaceEnd r3.Vec
}

// Invalidate resets r to an invalid record carrying reason.
func (r *Record) Invalidate(reason Reason) {
	*r = Record{Reason: reason}
}
