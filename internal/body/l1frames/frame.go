package l1frames

import (
	"fmt"
	"image"
)

// SubjectID is the long-lived identifier of a tracked user. It is resolved
// to a per-frame label byte on every pass because segmentation labels are
// not stable between frames.
type SubjectID uint64

// Frame is one depth/label pair published by the sensor.
//
// The frame source publishes a complete frame before handing it out and never
// mutates its buffers afterwards; consumers borrow them read-only for the
// duration of one pass and must not retain them.
type Frame struct {
	Label LabelImage
	Depth DepthImage

	// TimestampNanos increases monotonically with every published frame and
	// doubles as the frame's generation counter.
	TimestampNanos int64
}

// NewFrame wraps label and depth buffers of identical dimensions.
func NewFrame(label []uint8, depth []uint16, width, height int, timestampNanos int64) (*Frame, error) {
	li, err := NewLabelImage(label, width, height)
	if err != nil {
		return nil, err
	}
	di, err := NewDepthImage(depth, width, height)
	if err != nil {
		return nil, err
	}
	return &Frame{Label: li, Depth: di, TimestampNanos: timestampNanos}, nil
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.Label.Width }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.Label.Height }

// Size returns the frame dimensions as a point.
func (f *Frame) Size() image.Point {
	return image.Point{X: f.Label.Width, Y: f.Label.Height}
}

// Validate checks that the label and depth views describe the same raster.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("nil frame")
	}
	if f.Label.Width != f.Depth.Width || f.Label.Height != f.Depth.Height {
		return fmt.Errorf("label %dx%d and depth %dx%d differ",
			f.Label.Width, f.Label.Height, f.Depth.Width, f.Depth.Height)
	}
	if len(f.Label.Pix) != f.Label.Len() || len(f.Depth.Pix) != f.Label.Len() {
		return fmt.Errorf("buffer lengths do not match %dx%d", f.Label.Width, f.Label.Height)
	}
	return nil
}

// FrameSource publishes sensor frames and resolves subjects to labels.
type FrameSource interface {
	// LatestFrame returns the most recently published frame, or nil when the
	// sensor has not produced one yet.
	LatestFrame() *Frame

	// SubjectLabel resolves subject to its label byte in the latest frame.
	// It returns NoBody when the subject is not tracked.
	SubjectLabel(subject SubjectID) uint8
}
