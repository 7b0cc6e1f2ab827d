package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/banshee-data/bodyslice/internal/body/l3measure"
	"github.com/banshee-data/bodyslice/internal/units"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SeriesPlotter writes diameter-over-time PNG plots of a finished run.
type SeriesPlotter struct {
	outputDir string
	units     string
}

// NewSeriesPlotter creates a plotter writing into outputDir in the given
// length unit.
func NewSeriesPlotter(outputDir, unit string) *SeriesPlotter {
	if !units.IsValid(unit) {
		unit = units.Centimetres
	}
	return &SeriesPlotter{outputDir: outputDir, units: unit}
}

// GeneratePlots writes one plot per enabled kind plus an overview of all
// kinds, and returns the number of files written.
func (sp *SeriesPlotter) GeneratePlots(sets []l3measure.Set) (int, error) {
	if len(sets) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(sp.outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	kinds := sets[len(sets)-1].Kinds()
	colors := generateColors(len(kinds))
	first := sets[0].TimestampNanos

	all := sp.newPlot("Body Measurements")
	count := 0
	for i, k := range kinds {
		pts := make(plotter.XYs, 0, len(sets))
		for j := range sets {
			if d, ok := sets[j].Diameter(k); ok {
				pts = append(pts, plotter.XY{
					X: float64(sets[j].TimestampNanos-first) / 1e9,
					Y: units.ConvertLength(d, sp.units),
				})
			}
		}
		if len(pts) == 0 {
			continue
		}

		single := sp.newPlot(fmt.Sprintf("%s diameter", k))
		for _, p := range []*plot.Plot{single, all} {
			l, err := plotter.NewLine(pts)
			if err != nil {
				return count, err
			}
			l.Color = colors[i]
			l.Width = vg.Points(1)
			p.Add(l)
			p.Legend.Add(k.String(), l)
		}

		file := filepath.Join(sp.outputDir, fmt.Sprintf("diameter_%s.png", k))
		if err := single.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
			return count, fmt.Errorf("save %s plot: %w", k, err)
		}
		count++
	}
	if count == 0 {
		return 0, nil
	}

	if err := all.Save(14*vg.Inch, 6*vg.Inch, filepath.Join(sp.outputDir, "diameters.png")); err != nil {
		return count, fmt.Errorf("save overview plot: %w", err)
	}
	return count + 1, nil
}

func (sp *SeriesPlotter) newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = fmt.Sprintf("Diameter (%s)", sp.units)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p
}

// generateColors creates a palette of n distinct colors.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
