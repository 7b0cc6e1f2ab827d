package testutil

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	// Verify nil error doesn't cause issues
	AssertNoError(t, nil)
}

func TestLabelGrid(t *testing.T) {
	t.Parallel()

	pix, w, h := LabelGrid(
		"..1.",
		"2...",
	)
	require.Equal(t, 4, w)
	require.Equal(t, 2, h)
	assert.Equal(t, []uint8{255, 255, 1, 255, 2, 255, 255, 255}, pix)
	assert.Equal(t, "..1.\n2...", FormatGrid(pix, w))
}

func TestLabelGrid_RaggedRowsPanic(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { LabelGrid("...", "..") })
	assert.Panics(t, func() { LabelGrid("x") })
}

func TestPaintRect_ClipsToBuffer(t *testing.T) {
	t.Parallel()

	pix := Blank(3, 2)
	PaintRect(pix, 3, image.Rect(2, -1, 10, 1), 4)
	assert.Equal(t, "..4\n...", FormatGrid(pix, 3))
}

func TestSilhouette(t *testing.T) {
	t.Parallel()

	f := StandardFigure(64, 48)
	pix := Silhouette(64, 48, f, 3)

	require.Len(t, pix, 64*48)
	c := f.Torso.Min.Add(f.Torso.Size().Div(2))
	assert.Equal(t, uint8(3), pix[c.Y*64+c.X])
	assert.Equal(t, Background, pix[0])
	assert.True(t, f.Head.Max.Y == f.Torso.Min.Y, "head sits on the torso")
	assert.True(t, f.Torso.Max.Y == f.Legs.Min.Y, "legs hang from the torso")
}

func TestFilledDepth(t *testing.T) {
	t.Parallel()

	d := FilledDepth(3, 1500)
	assert.Equal(t, []uint16{1500, 1500, 1500}, d)
}
