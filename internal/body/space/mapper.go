// Package space converts depth-image pixels into camera space and into the
// color camera's image plane.
//
// Coordinate convention: camera space is metres with X to the sensor's
// right, Y up and Z pointing away from the sensor. Image coordinates grow
// right and down.
package space

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// CoordinateMapper maps depth-image pixels into camera space and into
// color-image coordinates. Implementations are pure: results depend only on
// the arguments and the device calibration.
type CoordinateMapper interface {
	// PixelToSpace maps pixel p with depth sample depth to camera space.
	PixelToSpace(p image.Point, depth uint16) r3.Vec

	// PixelToColor maps pixel p with depth sample depth to the color image.
	// The result may lie outside the color image.
	PixelToColor(p image.Point, depth uint16) r2.Vec

	// ColorWidth returns the color image width in pixels.
	ColorWidth() int

	// ColorHeight returns the color image height in pixels.
	ColorHeight() int
}

// Intrinsics is a pinhole camera model in pixels.
type Intrinsics struct {
	Width  int
	Height int
	FX, FY float64
	CX, CY float64
}

// PinholeConfig calibrates a Pinhole mapper.
type PinholeConfig struct {
	Depth Intrinsics
	Color Intrinsics

	// DepthToColor is a 4x4 row-major rigid transform from the depth
	// camera's space into the color camera's space.
	DepthToColor [16]float64

	// DepthScale converts depth samples to metres (0.001 for millimetres).
	DepthScale float64
}

// Identity is the 4x4 row-major identity transform.
var Identity = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Translation returns a row-major transform that shifts points by (x, y, z).
func Translation(x, y, z float64) [16]float64 {
	t := Identity
	t[3], t[7], t[11] = x, y, z
	return t
}

// DefaultPinholeConfig returns a calibration close to a 512x424 time-of-flight
// depth camera paired with a 1920x1080 color camera mounted 52 mm to its left.
func DefaultPinholeConfig() PinholeConfig {
	return PinholeConfig{
		Depth:        Intrinsics{Width: 512, Height: 424, FX: 365.5, FY: 365.5, CX: 256, CY: 212},
		Color:        Intrinsics{Width: 1920, Height: 1080, FX: 1081.4, FY: 1081.4, CX: 959.5, CY: 539.5},
		DepthToColor: Translation(0.052, 0, 0),
		DepthScale:   0.001,
	}
}

// Pinhole is a CoordinateMapper for an ideal, distortion-free camera pair.
type Pinhole struct {
	cfg PinholeConfig
}

// NewPinhole creates a Pinhole mapper. Zero focal lengths or scale fall back
// to DefaultPinholeConfig values.
func NewPinhole(cfg PinholeConfig) *Pinhole {
	def := DefaultPinholeConfig()
	if cfg.Depth.FX == 0 || cfg.Depth.FY == 0 {
		cfg.Depth = def.Depth
	}
	if cfg.Color.FX == 0 || cfg.Color.FY == 0 {
		cfg.Color = def.Color
	}
	if cfg.DepthScale == 0 {
		cfg.DepthScale = def.DepthScale
	}
	if cfg.DepthToColor == ([16]float64{}) {
		cfg.DepthToColor = Identity
	}
	return &Pinhole{cfg: cfg}
}

// Config returns the mapper's calibration.
func (m *Pinhole) Config() PinholeConfig {
	return m.cfg
}

// PixelToSpace back-projects p at the given depth. A zero depth has no
// position and maps to the origin.
func (m *Pinhole) PixelToSpace(p image.Point, depth uint16) r3.Vec {
	if depth == 0 {
		return r3.Vec{}
	}
	in := m.cfg.Depth
	z := float64(depth) * m.cfg.DepthScale
	return r3.Vec{
		X: (float64(p.X) - in.CX) * z / in.FX,
		Y: (in.CY - float64(p.Y)) * z / in.FY,
		Z: z,
	}
}

// PixelToColor projects p into the color image. A zero depth, or a point
// behind the color camera, maps to negative infinity on both axes.
func (m *Pinhole) PixelToColor(p image.Point, depth uint16) r2.Vec {
	invalid := r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	if depth == 0 {
		return invalid
	}
	c := ApplyTransform(m.PixelToSpace(p, depth), m.cfg.DepthToColor)
	if c.Z <= 0 {
		return invalid
	}
	in := m.cfg.Color
	return r2.Vec{
		X: in.CX + c.X*in.FX/c.Z,
		Y: in.CY - c.Y*in.FY/c.Z,
	}
}

// ColorWidth returns the color image width.
func (m *Pinhole) ColorWidth() int { return m.cfg.Color.Width }

// ColorHeight returns the color image height.
func (m *Pinhole) ColorHeight() int { return m.cfg.Color.Height }

// ApplyTransform applies a 4x4 row-major transform T to v.
func ApplyTransform(v r3.Vec, T [16]float64) r3.Vec {
	return r3.Vec{
		X: T[0]*v.X + T[1]*v.Y + T[2]*v.Z + T[3],
		Y: T[4]*v.X + T[5]*v.Y + T[6]*v.Z + T[7],
		Z: T[8]*v.X + T[9]*v.Y + T[10]*v.Z + T[11],
	}
}
