package l3measure

import (
	"testing"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/body/l2slices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestKind_StringRoundTrip(t *testing.T) {
	for _, k := range AllKinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	assert.Equal(t, "torso_3", KindTorso3.String())
	assert.Equal(t, "kind(9)", Kind(9).String())

	_, err := ParseKind("neck")
	assert.Error(t, err)
}

func TestKind_Classification(t *testing.T) {
	assert.False(t, KindHeight.IsTorso())
	assert.False(t, KindWidth.IsTorso())
	assert.True(t, KindTorso1.IsTorso())
	assert.True(t, KindTorso4.IsTorso())
	assert.Equal(t, l2slices.Vertical, KindHeight.ScanAxis())
	assert.Equal(t, l2slices.Horizontal, KindWidth.ScanAxis())
	assert.Equal(t, 4, TorsoCount)
}

func TestNewSet(t *testing.T) {
	all := NewSet()
	assert.Equal(t, AllKinds(), all.Kinds())

	some := NewSet(KindWidth, KindTorso2, Kind(-1), KindCount)
	assert.Equal(t, []Kind{KindWidth, KindTorso2}, some.Kinds())
	assert.False(t, some.Enabled(KindHeight))
	assert.False(t, some.Enabled(KindCount))

	_, ok := some.Diameter(KindWidth)
	assert.False(t, ok, "a fresh set holds no measurement")
	assert.Equal(t, l2slices.Record{}, some.Record(KindHeight))
}

func TestSet_IsAValue(t *testing.T) {
	s := NewSet()
	s.slot(KindHeight).Valid = true
	s.slot(KindHeight).Diameter = 1.8

	snap := s
	s.slot(KindHeight).Diameter = 1.2

	d, ok := snap.Diameter(KindHeight)
	require.True(t, ok)
	assert.Equal(t, 1.8, d)
}

func TestSliceSpec_Seed(t *testing.T) {
	joints := spineJoints()

	tests := []struct {
		name   string
		spec   SliceSpec
		want   [2]int
		wantOK bool
	}{
		{"chest interpolates", DefaultSliceSpecs()[0], [2]int{32, 19}, true},
		{"waist sits on the joint", DefaultSliceSpecs()[1], [2]int{32, 26}, true},
		{"belly halfway", DefaultSliceSpecs()[2], [2]int{32, 31}, true},
		{"hips on spine base", DefaultSliceSpecs()[3], [2]int{32, 36}, true},
		{"missing from joint", SliceSpec{From: l1frames.JointHead, To: l1frames.JointSpineMid, Fraction: 0.5}, [2]int{}, false},
		{"missing to joint", SliceSpec{From: l1frames.JointSpineMid, To: l1frames.JointHipLeft, Fraction: 0.5}, [2]int{}, false},
		{"missing to joint unused at fraction zero", SliceSpec{From: l1frames.JointSpineMid, To: l1frames.JointHipLeft}, [2]int{32, 26}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := tt.spec.Seed(joints, subject)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, [2]int{p.X, p.Y})
			}
		})
	}
}

func TestSliceSpec_SeedRounds(t *testing.T) {
	joints := fakeJoints{l1frames.JointSpineMid: r3.Vec{X: 10.5, Y: 3.49}}
	p, ok := SliceSpec{From: l1frames.JointSpineMid, To: l1frames.JointSpineMid}.Seed(joints, subject)
	require.True(t, ok)
	assert.Equal(t, 11, p.X)
	assert.Equal(t, 3, p.Y)
}

func TestSliceSpec_Validate(t *testing.T) {
	for i, s := range DefaultSliceSpecs() {
		assert.NoError(t, s.Validate(), "default slice %d", i)
	}
	assert.Error(t, SliceSpec{From: l1frames.JointCount}.Validate())
	assert.Error(t, SliceSpec{To: -1}.Validate())
	assert.Error(t, SliceSpec{Fraction: 1.5}.Validate())
	assert.Error(t, SliceSpec{MaxExtent: -2}.Validate())
}
