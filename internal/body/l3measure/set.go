package l3measure

import "github.com/banshee-data/bodyslice/internal/body/l2slices"

// Set holds the latest record for every measurement kind.
//
// A Set is sized once and updated in place by the estimation pass. Between
// passes it keeps the values of the last pass that ran; a skipped tick
// leaves it untouched. Set is a plain value, so assigning it takes a
// snapshot.
type Set struct {
	// TimestampNanos is the frame timestamp of the pass that produced the
	// records, or zero before the first pass.
	TimestampNanos int64

	enabled [KindCount]bool
	records [KindCount]l2slices.Record
}

// NewSet returns a Set computing kinds. An empty list enables every kind.
func NewSet(kinds ...Kind) Set {
	var s Set
	if len(kinds) == 0 {
		kinds = AllKinds()
	}
	for _, k := range kinds {
		if k >= 0 && k < KindCount {
			s.enabled[k] = true
		}
	}
	return s
}

// Enabled reports whether k is computed by this Set.
func (s *Set) Enabled(k Kind) bool {
	return k >= 0 && k < KindCount && s.enabled[k]
}

// Kinds returns the enabled kinds in index order.
func (s *Set) Kinds() []Kind {
	out := make([]Kind, 0, KindCount)
	for k := Kind(0); k < KindCount; k++ {
		if s.enabled[k] {
			out = append(out, k)
		}
	}
	return out
}

// Record returns the record for k. Disabled and unknown kinds return an
// invalid zero record.
func (s *Set) Record(k Kind) l2slices.Record {
	if !s.Enabled(k) {
		return l2slices.Record{}
	}
	return s.records[k]
}

// Valid reports whether k currently holds a measurement.
func (s *Set) Valid(k Kind) bool {
	return s.Enabled(k) && s.records[k].Valid
}

// Diameter returns the diameter for k and whether it is valid.
func (s *Set) Diameter(k Kind) (float64, bool) {
	if !s.Valid(k) {
		return 0, false
	}
	return s.records[k].Diameter, true
}

// slot returns the in-place record for k. Callers check Enabled first.
func (s *Set) slot(k Kind) *l2slices.Record {
	return &s.records[k]
}

// SetRecord replaces the record for k. Disabled kinds are ignored.
func (s *Set) SetRecord(k Kind, rec l2slices.Record) {
	if s.Enabled(k) {
		s.records[k] = rec
	}
}
