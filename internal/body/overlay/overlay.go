// Package overlay draws measurement debug geometry onto RGBA buffers.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var (
	// SubjectColor fills the measured subject's pixels.
	SubjectColor = color.RGBA{R: 0x30, G: 0x30, B: 0x60, A: 0xff}
	// OtherColor fills pixels of other tracked bodies.
	OtherColor = color.RGBA{R: 0x38, G: 0x38, B: 0x38, A: 0xff}
	// CaptionColor is the default text color.
	CaptionColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// LineSink rasterises anti-aliased lines. The zero value draws one pixel
// wide lines. A LineSink is not safe for concurrent use.
type LineSink struct {
	// Width is the stroke width in pixels.
	Width float32

	rast *vector.Rasterizer
}

// NewLineSink returns a sink drawing lines of the given width.
func NewLineSink(width float32) *LineSink {
	return &LineSink{Width: width}
}

// DrawLine strokes the segment between the centres of pixels from and to,
// including both end pixels.
func (s *LineSink) DrawLine(dst draw.Image, from, to image.Point, c color.Color) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	w := s.Width
	if w <= 0 {
		w = 1
	}

	if s.rast == nil {
		s.rast = vector.NewRasterizer(b.Dx(), b.Dy())
	} else {
		s.rast.Reset(b.Dx(), b.Dy())
	}
	s.rast.DrawOp = draw.Over

	// Pixel centres relative to the destination origin.
	ax := float32(from.X-b.Min.X) + 0.5
	ay := float32(from.Y-b.Min.Y) + 0.5
	bx := float32(to.X-b.Min.X) + 0.5
	by := float32(to.Y-b.Min.Y) + 0.5

	dx, dy := bx-ax, by-ay
	length := float32(math.Hypot(float64(dx), float64(dy)))
	half := w / 2
	var ux, uy float32 = 1, 0
	if length > 0 {
		ux, uy = dx/length, dy/length
	}
	// e extends the stroke past each end, n is the half-width normal.
	ex, ey := ux*half, uy*half
	nx, ny := -uy*half, ux*half

	s.rast.MoveTo(ax-ex+nx, ay-ey+ny)
	s.rast.LineTo(bx+ex+nx, by+ey+ny)
	s.rast.LineTo(bx+ex-nx, by+ey-ny)
	s.rast.LineTo(ax-ex-nx, ay-ey-ny)
	s.rast.ClosePath()
	s.rast.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// PaintSilhouette fills the pixels of label with SubjectColor and the
// pixels of every other body with OtherColor. Background pixels are left
// as they are.
func (s *LineSink) PaintSilhouette(dst draw.Image, labels l1frames.LabelImage, label uint8) {
	PaintLabels(dst, labels, label)
}

// PaintLabels is the LineSink-independent form of PaintSilhouette.
func PaintLabels(dst draw.Image, labels l1frames.LabelImage, label uint8) {
	r := dst.Bounds().Intersect(labels.Bounds())
	if rgba, ok := dst.(*image.RGBA); ok {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := labels.Pix[y*labels.Width : (y+1)*labels.Width]
			for x := r.Min.X; x < r.Max.X; x++ {
				v := row[x]
				if v == l1frames.NoBody {
					continue
				}
				c := OtherColor
				if v == label {
					c = SubjectColor
				}
				rgba.SetRGBA(x, y, c)
			}
		}
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			switch v := labels.At(image.Point{X: x, Y: y}); {
			case v == l1frames.NoBody:
			case v == label:
				dst.Set(x, y, SubjectColor)
			default:
				dst.Set(x, y, OtherColor)
			}
		}
	}
}

// Caption writes text with its baseline's left end at dot.
func Caption(dst draw.Image, text string, dot image.Point, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot: fixed.Point26_6{
			X: fixed.I(dot.X),
			Y: fixed.I(dot.Y),
		},
	}
	d.DrawString(text)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}
	return nil
}

// SaveFrame writes img to dir as overlay_<timestamp>.png and returns the
// path.
func SaveFrame(dir string, timestampNanos int64, img image.Image) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("overlay_%019d.png", timestampNanos))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create overlay file: %w", err)
	}
	if err := WritePNG(f, img); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close overlay file: %w", err)
	}
	return path, nil
}
