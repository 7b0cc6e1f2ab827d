package l3measure

import (
	"fmt"

	"github.com/banshee-data/bodyslice/internal/body/l2slices"
)

// Kind identifies one measurement in a Set.
type Kind int

const (
	KindHeight Kind = iota
	KindWidth
	KindTorso1
	KindTorso2
	KindTorso3
	KindTorso4

	// KindCount is the number of measurement kinds.
	KindCount
)

// TorsoCount is the number of torso slice kinds.
const TorsoCount = int(KindCount - KindTorso1)

var kindNames = [KindCount]string{"height", "width", "torso_1", "torso_2", "torso_3", "torso_4"}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown measurement kind %q", name)
}

// AllKinds returns every kind in index order.
func AllKinds() []Kind {
	out := make([]Kind, KindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// IsTorso reports whether k is one of the seeded torso slices.
func (k Kind) IsTorso() bool {
	return k >= KindTorso1 && k < KindCount
}

// torsoIndex returns the position of k among the torso kinds.
func (k Kind) torsoIndex() int {
	return int(k - KindTorso1)
}

// ScanAxis returns the axis the full-frame kinds measure along. Torso kinds
// take their axis from their SliceSpec.
func (k Kind) ScanAxis() l2slices.Axis {
	if k == KindWidth {
		return l2slices.Horizontal
	}
	return l2slices.Vertical
}
