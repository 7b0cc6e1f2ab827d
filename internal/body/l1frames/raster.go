package l1frames

import (
	"fmt"
	"image"
)

// NoBody is the label value for pixels that belong to no tracked subject.
const NoBody uint8 = 255

// LabelImage is a read-only row-major view over a body-index buffer, one
// byte per pixel. Values 0-254 identify a subject; NoBody marks background.
type LabelImage struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewLabelImage wraps pix without copying it. pix must hold exactly
// width*height bytes.
func NewLabelImage(pix []uint8, width, height int) (LabelImage, error) {
	if width <= 0 || height <= 0 {
		return LabelImage{}, fmt.Errorf("invalid label image size %dx%d", width, height)
	}
	if len(pix) != width*height {
		return LabelImage{}, fmt.Errorf("label buffer has %d bytes, want %d", len(pix), width*height)
	}
	return LabelImage{Pix: pix, Width: width, Height: height}, nil
}

// Bounds returns the image rectangle, always anchored at the origin.
func (m LabelImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// In reports whether p addresses a pixel inside the image.
func (m LabelImage) In(p image.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Width && p.Y < m.Height
}

// Len returns the number of pixels in the image.
func (m LabelImage) Len() int {
	return m.Width * m.Height
}

// Index returns the row-major buffer index of p. The caller must check In.
func (m LabelImage) Index(p image.Point) int {
	return p.Y*m.Width + p.X
}

// PointAt is the inverse of Index.
func (m LabelImage) PointAt(i int) image.Point {
	return image.Point{X: i % m.Width, Y: i / m.Width}
}

// At returns the label at p, or NoBody when p is outside the image.
func (m LabelImage) At(p image.Point) uint8 {
	if !m.In(p) {
		return NoBody
	}
	return m.Pix[p.Y*m.Width+p.X]
}

// DepthImage is a read-only row-major view over a depth buffer in sensor
// units (millimetres for the supported sensors). Zero means no reading.
type DepthImage struct {
	Pix    []uint16
	Width  int
	Height int
}

// NewDepthImage wraps pix without copying it. pix must hold exactly
// width*height samples.
func NewDepthImage(pix []uint16, width, height int) (DepthImage, error) {
	if width <= 0 || height <= 0 {
		return DepthImage{}, fmt.Errorf("invalid depth image size %dx%d", width, height)
	}
	if len(pix) != width*height {
		return DepthImage{}, fmt.Errorf("depth buffer has %d samples, want %d", len(pix), width*height)
	}
	return DepthImage{Pix: pix, Width: width, Height: height}, nil
}

// In reports whether p addresses a pixel inside the image.
func (m DepthImage) In(p image.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Width && p.Y < m.Height
}

// At returns the depth sample at p, or 0 when p is outside the image.
func (m DepthImage) At(p image.Point) uint16 {
	if !m.In(p) {
		return 0
	}
	return m.Pix[p.Y*m.Width+p.X]
}
