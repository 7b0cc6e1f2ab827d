package monitor

import (
	"github.com/banshee-data/bodyslice/internal/body/l2slices"
	"github.com/banshee-data/bodyslice/internal/body/l3measure"
	"github.com/banshee-data/bodyslice/internal/units"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// KindSummary aggregates one measurement kind over a run of sets.
type KindSummary struct {
	Kind   string  `json:"kind"`
	Passes int     `json:"passes"`
	Valid  int     `json:"valid"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Summarize aggregates the valid diameters of every kind enabled in sets,
// converted to unit.
func Summarize(sets []l3measure.Set, unit string) []KindSummary {
	if len(sets) == 0 {
		return nil
	}
	kinds := sets[len(sets)-1].Kinds()
	out := make([]KindSummary, 0, len(kinds))
	values := make([]float64, 0, len(sets))
	for _, k := range kinds {
		values = values[:0]
		s := KindSummary{Kind: k.String()}
		for i := range sets {
			if !sets[i].Enabled(k) {
				continue
			}
			s.Passes++
			if d, ok := sets[i].Diameter(k); ok {
				values = append(values, units.ConvertLength(d, unit))
			}
		}
		s.Valid = len(values)
		switch len(values) {
		case 0:
		case 1:
			s.Mean, s.Min, s.Max, s.Median = values[0], values[0], values[0], values[0]
		default:
			s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
			s.Min = floats.Min(values)
			s.Max = floats.Max(values)
			sorted := append([]float64(nil), values...)
			floats.Argsort(sorted, make([]int, len(sorted)))
			s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		}
		out = append(out, s)
	}
	return out
}

// RecordJSON is the wire form of one record.
type RecordJSON struct {
	Kind        string      `json:"kind"`
	Valid       bool        `json:"valid"`
	Reason      string      `json:"reason"`
	Diameter    *float64    `json:"diameter,omitempty"`
	PixelLength int         `json:"pixel_length,omitempty"`
	ColorLength float64     `json:"color_length,omitempty"`
	Start       *[2]int     `json:"start,omitempty"`
	End         *[2]int     `json:"end,omitempty"`
	ColorStart  *[2]float64 `json:"color_start,omitempty"`
	ColorEnd    *[2]float64 `json:"color_end,omitempty"`
}

// SetJSON is the wire form of a set.
type SetJSON struct {
	TimestampNanos int64        `json:"timestamp_ns"`
	Units          string       `json:"units"`
	Records        []RecordJSON `json:"records"`
}

// NewRecordJSON converts rec, expressing the diameter in unit.
func NewRecordJSON(k l3measure.Kind, rec l2slices.Record, unit string) RecordJSON {
	out := RecordJSON{Kind: k.String(), Valid: rec.Valid, Reason: string(rec.Reason)}
	if !rec.Valid {
		return out
	}
	d := units.ConvertLength(rec.Diameter, unit)
	out.Diameter = &d
	out.PixelLength = rec.PixelLength
	out.ColorLength = rec.ColorLength
	out.Start = &[2]int{rec.Start.X, rec.Start.Y}
	out.End = &[2]int{rec.End.X, rec.End.Y}
	out.ColorStart = &[2]float64{rec.ColorStart.X, rec.ColorStart.Y}
	out.ColorEnd = &[2]float64{rec.ColorEnd.X, rec.ColorEnd.Y}
	return out
}

// NewSetJSON converts every enabled record of set.
func NewSetJSON(set *l3measure.Set, unit string) SetJSON {
	kinds := set.Kinds()
	out := SetJSON{TimestampNanos: set.TimestampNanos, Units: unit, Records: make([]RecordJSON, 0, len(kinds))}
	for _, k := range kinds {
		out.Records = append(out.Records, NewRecordJSON(k, set.Record(k), unit))
	}
	return out
}
