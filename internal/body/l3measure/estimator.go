package l3measure

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/body/l2slices"
	"github.com/banshee-data/bodyslice/internal/body/space"
)

// Status is the outcome of one estimation tick.
type Status string

const (
	// StatusUpdated means the Set was recomputed from a new frame.
	StatusUpdated Status = "updated"
	// StatusStale means the frame was already measured; the Set is unchanged.
	StatusStale Status = "stale_frame"
	// StatusNoSubject means the subject is not tracked; the Set is unchanged.
	StatusNoSubject Status = "no_subject"
	// StatusNoFrame means there is no usable frame; the Set is unchanged.
	StatusNoFrame Status = "no_frame"
)

// OverlaySink draws debug geometry on a buffer owned by the estimator.
type OverlaySink interface {
	// PaintSilhouette fills the pixels carrying label.
	PaintSilhouette(dst draw.Image, labels l1frames.LabelImage, label uint8)
	// DrawLine draws a line between two depth pixels.
	DrawLine(dst draw.Image, from, to image.Point, c color.Color)
}

// KindColors are the overlay line colors, indexed by Kind.
var KindColors = [KindCount]color.RGBA{
	{R: 0xff, G: 0x40, B: 0x40, A: 0xff},
	{R: 0x40, G: 0x80, B: 0xff, A: 0xff},
	{R: 0xff, G: 0xc0, B: 0x20, A: 0xff},
	{R: 0x40, G: 0xe0, B: 0x60, A: 0xff},
	{R: 0xe0, G: 0x40, B: 0xe0, A: 0xff},
	{R: 0x20, G: 0xe0, B: 0xe0, A: 0xff},
}

// Deps bundles the collaborators an Estimator reads from. Frames, Mapper and
// Joints are required; Overlay is optional.
type Deps struct {
	Frames  l1frames.FrameSource
	Mapper  space.CoordinateMapper
	Joints  l1frames.JointSource
	Overlay OverlaySink
}

// Config selects what the Estimator measures.
type Config struct {
	// Kinds lists the enabled measurements. Empty enables all of them.
	Kinds []Kind
	// Slices seeds KindTorso1..KindTorso4.
	Slices [TorsoCount]SliceSpec
}

// DefaultConfig enables every kind with the default torso slices.
func DefaultConfig() Config {
	return Config{Slices: DefaultSliceSpecs()}
}

// Stats counts tick outcomes since construction.
type Stats struct {
	Updated   uint64
	Stale     uint64
	NoSubject uint64
	NoFrame   uint64
}

// Estimator measures one subject per tick.
//
// Tick, Update and the Set accessors are not safe for concurrent use. The
// caller runs passes from a single goroutine and reads the Set between them.
type Estimator struct {
	frames  l1frames.FrameSource
	joints  l1frames.JointSource
	overlay OverlaySink
	slicer  *l2slices.Slicer

	slices [TorsoCount]SliceSpec
	gate   l1frames.Gate
	set    Set
	stats  Stats
	canvas *image.RGBA
}

// NewEstimator wires an Estimator to its collaborators.
func NewEstimator(deps Deps, cfg Config) (*Estimator, error) {
	if deps.Frames == nil {
		return nil, fmt.Errorf("nil frame source")
	}
	if deps.Joints == nil {
		return nil, fmt.Errorf("nil joint source")
	}
	slicer, err := l2slices.NewSlicer(deps.Mapper)
	if err != nil {
		return nil, err
	}
	for _, k := range cfg.Kinds {
		if k < 0 || k >= KindCount {
			return nil, fmt.Errorf("invalid measurement kind %d", int(k))
		}
	}
	for i, s := range cfg.Slices {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("slice %s: %w", KindTorso1+Kind(i), err)
		}
	}
	return &Estimator{
		frames:  deps.Frames,
		joints:  deps.Joints,
		overlay: deps.Overlay,
		slicer:  slicer,
		slices:  cfg.Slices,
		set:     NewSet(cfg.Kinds...),
	}, nil
}

// Tick measures subject against the frame source's latest frame.
func (e *Estimator) Tick(subject l1frames.SubjectID) Status {
	frame := e.frames.LatestFrame()
	if frame == nil {
		return e.Update(subject, l1frames.NoBody, nil)
	}
	return e.Update(subject, e.frames.SubjectLabel(subject), frame)
}

// Update measures subject, carrying label, in frame. The frame timestamp is
// the generation checked against the previous pass: a frame already
// measured returns StatusStale without touching the Set.
func (e *Estimator) Update(subject l1frames.SubjectID, label uint8, frame *l1frames.Frame) Status {
	if frame != nil {
		if err := frame.Validate(); err != nil {
			debugf("estimator: rejecting frame ts=%d: %v", frame.TimestampNanos, err)
			e.stats.NoFrame++
			return StatusNoFrame
		}
	}

	switch e.gate.Admit(frame, label) {
	case l1frames.AdmitNoFrame:
		e.stats.NoFrame++
		return StatusNoFrame
	case l1frames.AdmitStale:
		e.stats.Stale++
		return StatusStale
	case l1frames.AdmitNoSubject:
		e.stats.NoSubject++
		return StatusNoSubject
	}

	e.measure(subject, label, frame)
	e.stats.Updated++
	if e.overlay != nil {
		e.drawOverlay(frame, label)
	}
	if debugLogger != nil {
		e.logPass(subject, label)
	}
	return StatusUpdated
}

func (e *Estimator) measure(subject l1frames.SubjectID, label uint8, frame *l1frames.Frame) {
	s := &e.set
	s.TimestampNanos = frame.TimestampNanos

	for k := Kind(0); k < KindCount; k++ {
		if !s.enabled[k] {
			continue
		}
		rec := s.slot(k)
		if !k.IsTorso() {
			e.slicer.FullScan(frame, label, k.ScanAxis(), rec)
			continue
		}
		spec := e.slices[k.torsoIndex()]
		seed, ok := spec.Seed(e.joints, subject)
		if !ok {
			rec.Invalidate(l2slices.ReasonNoSeed)
			continue
		}
		e.slicer.BoundedRun(frame, label, seed, spec.Axis, spec.MaxExtent, rec)
	}
}

func (e *Estimator) drawOverlay(frame *l1frames.Frame, label uint8) {
	size := frame.Size()
	if e.canvas == nil || e.canvas.Rect.Dx() != size.X || e.canvas.Rect.Dy() != size.Y {
		e.canvas = image.NewRGBA(image.Rectangle{Max: size})
	} else {
		draw.Draw(e.canvas, e.canvas.Rect, image.Transparent, image.Point{}, draw.Src)
	}

	e.overlay.PaintSilhouette(e.canvas, frame.Label, label)
	for k := Kind(0); k < KindCount; k++ {
		if e.set.Valid(k) {
			rec := e.set.records[k]
			e.overlay.DrawLine(e.canvas, rec.Start, rec.End, KindColors[k])
		}
	}
}

func (e *Estimator) logPass(subject l1frames.SubjectID, label uint8) {
	msg := fmt.Sprintf("estimator: subject=%d label=%d ts=%d", subject, label, e.set.TimestampNanos)
	for _, k := range e.set.Kinds() {
		rec := e.set.records[k]
		if rec.Valid {
			msg += fmt.Sprintf(" %s=%.3f/%dpx", k, rec.Diameter, rec.PixelLength)
		} else {
			msg += fmt.Sprintf(" %s=%s", k, rec.Reason)
		}
	}
	debugf("%s", msg)
}

// Set returns the current measurements. The pointer stays valid for the
// Estimator's lifetime and is updated in place by every pass.
func (e *Estimator) Set() *Set {
	return &e.set
}

// Snapshot returns a copy of the current measurements.
func (e *Estimator) Snapshot() Set {
	return e.set
}

// Overlay returns the debug overlay of the last updated pass, or nil when no
// overlay sink is configured or no pass has run.
func (e *Estimator) Overlay() *image.RGBA {
	return e.canvas
}

// Stats returns the tick outcome counters.
func (e *Estimator) Stats() Stats {
	return e.stats
}

// Reset forgets the last measured frame so the next tick measures again.
// The Set keeps its values.
func (e *Estimator) Reset() {
	e.gate.Reset()
}
