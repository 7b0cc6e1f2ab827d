package l3measure

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/testutil"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	figureW = 64
	figureH = 64
	subject = l1frames.SubjectID(7001)
)

type linearMapper struct{}

func (linearMapper) PixelToSpace(p image.Point, depth uint16) r3.Vec {
	return r3.Vec{X: float64(p.X) * 0.01, Y: -float64(p.Y) * 0.01, Z: float64(depth) / 1000}
}

func (linearMapper) PixelToColor(p image.Point, depth uint16) r2.Vec {
	return r2.Vec{X: float64(p.X) * 3, Y: float64(p.Y) * 3}
}

func (linearMapper) ColorWidth() int  { return figureW * 3 }
func (linearMapper) ColorHeight() int { return figureH * 3 }

type fakeFrames struct {
	frame  *l1frames.Frame
	labels map[l1frames.SubjectID]uint8
}

func (f *fakeFrames) LatestFrame() *l1frames.Frame { return f.frame }

func (f *fakeFrames) SubjectLabel(id l1frames.SubjectID) uint8 {
	if l, ok := f.labels[id]; ok {
		return l
	}
	return l1frames.NoBody
}

type fakeJoints map[l1frames.JointType]r3.Vec

func (j fakeJoints) JointPosition(_ l1frames.SubjectID, joint l1frames.JointType) (r3.Vec, bool) {
	p, ok := j[joint]
	return p, ok
}

// spineJoints places the spine on the standard figure's centre line.
func spineJoints() fakeJoints {
	return fakeJoints{
		l1frames.JointSpineShoulder: {X: 32, Y: 16, Z: 2000},
		l1frames.JointSpineMid:      {X: 32, Y: 26, Z: 2000},
		l1frames.JointSpineBase:     {X: 32, Y: 36, Z: 2000},
	}
}

type line struct {
	From, To image.Point
	Color    color.Color
}

type recordingSink struct {
	silhouettes int
	lines       []line
	canvases    []draw.Image
}

func (s *recordingSink) PaintSilhouette(dst draw.Image, _ l1frames.LabelImage, _ uint8) {
	s.silhouettes++
	s.canvases = append(s.canvases, dst)
}

func (s *recordingSink) DrawLine(_ draw.Image, from, to image.Point, c color.Color) {
	s.lines = append(s.lines, line{From: from, To: to, Color: c})
}

// figureFrame renders the standard figure for label at timestamp ts.
func figureFrame(t *testing.T, label uint8, ts int64) *l1frames.Frame {
	t.Helper()
	pix := testutil.Silhouette(figureW, figureH, testutil.StandardFigure(figureW, figureH), label)
	f, err := l1frames.NewFrame(pix, testutil.FilledDepth(figureW*figureH, 2000), figureW, figureH, ts)
	require.NoError(t, err)
	return f
}

func newTestEstimator(t *testing.T, frames *fakeFrames, joints fakeJoints, cfg Config, sink OverlaySink) *Estimator {
	t.Helper()
	e, err := NewEstimator(Deps{Frames: frames, Mapper: linearMapper{}, Joints: joints, Overlay: sink}, cfg)
	require.NoError(t, err)
	return e
}
