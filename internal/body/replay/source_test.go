package replay

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// writeSession records n frames of a 16x12 figure moving one pixel right
// per frame. Subject 7 is tracked in every frame, subject 9 only in the
// first.
func writeSession(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	const w, h = 16, 12

	s := &Session{Width: w, Height: h}
	for i := 0; i < n; i++ {
		pix := testutil.Blank(w, h)
		testutil.PaintRect(pix, w, image.Rect(4+i, 2, 9+i, 10), 3)
		depth := testutil.FilledDepth(w*h, uint16(1000+i))
		depth[0] = 0xfedc

		li, err := l1frames.NewLabelImage(pix, w, h)
		require.NoError(t, err)
		di, err := l1frames.NewDepthImage(depth, w, h)
		require.NoError(t, err)

		entry := FrameEntry{
			TimestampNanos: int64(1000 * (i + 1)),
			Label:          fmt.Sprintf("label_%03d.png", i),
			Depth:          fmt.Sprintf("depth_%03d.png", i),
			Bodies: map[string]Body{
				"7": {Label: 3, Joints: map[string][3]float64{
					"spine_mid":  {float64(6 + i), 5, 1000},
					"spine_base": {float64(6 + i), 8.5, 1000},
				}},
			},
		}
		if i == 0 {
			entry.Bodies["9"] = Body{Label: 4}
		}
		require.NoError(t, WriteLabels(filepath.Join(dir, entry.Label), li))
		require.NoError(t, WriteDepth(filepath.Join(dir, entry.Depth), di))
		s.Frames = append(s.Frames, entry)
	}
	require.NoError(t, WriteSession(dir, s))
	return dir
}

func TestSource_Playback(t *testing.T) {
	dir := writeSession(t, 3)
	src, err := Open(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, src.Len())
	assert.Equal(t, -1, src.Position())
	assert.Nil(t, src.LatestFrame())
	assert.Equal(t, l1frames.NoBody, src.SubjectLabel(7))
	assert.Equal(t, []l1frames.SubjectID{7, 9}, src.Subjects())

	for i := 0; i < 3; i++ {
		ok, err := src.Advance()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, i, src.Position())

		f := src.LatestFrame()
		require.NotNil(t, f)
		assert.Equal(t, int64(1000*(i+1)), f.TimestampNanos)
		assert.Equal(t, image.Pt(16, 12), f.Size())
		assert.Equal(t, uint8(3), f.Label.At(image.Pt(4+i, 2)))
		assert.Equal(t, l1frames.NoBody, f.Label.At(image.Pt(3+i, 2)))
		assert.Equal(t, uint16(1000+i), f.Depth.At(image.Pt(5, 5)))
		assert.Equal(t, uint16(0xfedc), f.Depth.At(image.Pt(0, 0)))

		assert.Equal(t, uint8(3), src.SubjectLabel(7))
		p, ok := src.JointPosition(7, l1frames.JointSpineBase)
		require.True(t, ok)
		assert.Equal(t, r3.Vec{X: float64(6 + i), Y: 8.5, Z: 1000}, p)
		_, ok = src.JointPosition(7, l1frames.JointHead)
		assert.False(t, ok)
	}

	// Subject 9 left after the first frame.
	assert.Equal(t, l1frames.NoBody, src.SubjectLabel(9))

	ok, err := src.Advance()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(3000), src.LatestFrame().TimestampNanos, "last frame stays current")

	src.Rewind()
	assert.Nil(t, src.LatestFrame())
	ok, err = src.Advance()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1000), src.LatestFrame().TimestampNanos)
}

func TestSource_FramesAreNotReused(t *testing.T) {
	src, err := Open(writeSession(t, 2))
	require.NoError(t, err)

	_, err = src.Advance()
	require.NoError(t, err)
	first := src.LatestFrame()
	before := append([]uint8(nil), first.Label.Pix...)

	_, err = src.Advance()
	require.NoError(t, err)
	assert.NotSame(t, first, src.LatestFrame())
	if diff := cmp.Diff(before, first.Label.Pix); diff != "" {
		t.Errorf("published frame changed (-before +after):\n%s", diff)
	}
}

func TestReadLabels_ConvertsNonGray(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rgba.png")
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.Gray{Y: 3})
	img.Set(1, 0, color.Gray{Y: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	pix, err := ReadLabels(path, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{3, 255}, pix)

	_, err = ReadLabels(path, 3, 1)
	assert.Error(t, err, "size mismatch")

	_, err = ReadDepth(path, 2, 1)
	assert.Error(t, err, "depth must be 16-bit")
}

func TestOpen_Errors(t *testing.T) {
	t.Run("missing manifest", func(t *testing.T) {
		_, err := Open(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("malformed manifest", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("{"), 0o644))
		_, err := Open(dir)
		assert.Error(t, err)
	})

	t.Run("missing image", func(t *testing.T) {
		dir := writeSession(t, 1)
		require.NoError(t, os.Remove(filepath.Join(dir, "depth_000.png")))
		src, err := Open(dir)
		require.NoError(t, err)
		_, err = src.Advance()
		assert.Error(t, err)
		assert.Nil(t, src.LatestFrame())
	})
}

func TestSession_Validate(t *testing.T) {
	valid := func() *Session {
		return &Session{Width: 2, Height: 2, Frames: []FrameEntry{
			{TimestampNanos: 1, Label: "l", Depth: "d"},
			{TimestampNanos: 2, Label: "l", Depth: "d", Bodies: map[string]Body{
				"5": {Label: 1, Joints: map[string][3]float64{"head": {1, 1, 1}}},
			}},
		}}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(s *Session)
	}{
		{"zero size", func(s *Session) { s.Width = 0 }},
		{"missing path", func(s *Session) { s.Frames[0].Depth = "" }},
		{"timestamps not increasing", func(s *Session) { s.Frames[1].TimestampNanos = 1 }},
		{"bad subject id", func(s *Session) { s.Frames[1].Bodies["x"] = Body{Label: 1} }},
		{"background label", func(s *Session) { s.Frames[1].Bodies["6"] = Body{Label: 255} }},
		{"unknown joint", func(s *Session) {
			s.Frames[1].Bodies["5"] = Body{Label: 1, Joints: map[string][3]float64{"tail": {}}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestFormatSubjectID(t *testing.T) {
	id, err := parseSubjectID(FormatSubjectID(72057594037927936))
	require.NoError(t, err)
	assert.Equal(t, l1frames.SubjectID(72057594037927936), id)
}

func TestSource_RejectsEscapingFramePaths(t *testing.T) {
	dir := writeSession(t, 1)
	s, err := ReadSession(dir)
	require.NoError(t, err)
	s.Frames[0].Depth = "../depth_000.png"
	require.NoError(t, WriteSession(dir, s))

	src, err := Open(dir)
	require.NoError(t, err)
	ok, err := src.Advance()
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 0 depth")
	assert.Nil(t, src.LatestFrame())
}
