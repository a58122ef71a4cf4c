package animation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/fogleman/ease"

	"github.com/matt-g-everett/ledanim/easing"
	"github.com/matt-g-everett/ledanim/util"
)

var (
	ErrNoKeyframes    = errors.New("no keyframes")
	ErrDeltaRange     = errors.New("keyframe delta outside [0, 1]")
	ErrUninterpolable = errors.New("property has no value at any keyframe")
	ErrNonFinite      = errors.New("property value must be finite")
)

// RawKeyframe is a keyframe as supplied by a caller. A nil prop value means
// the value is derived from neighbouring keyframes.
type RawKeyframe struct {
	Delta  float64             `yaml:"delta" json:"delta"`
	Props  map[string]*float64 `yaml:"props" json:"props"`
	Easing string              `yaml:"easing,omitempty" json:"easing,omitempty"`
}

// Keyframe is a densified keyframe: every animated property has a value.
type Keyframe struct {
	ID     string             `json:"id"`
	Delta  float64            `json:"delta"`
	Props  map[string]float64 `json:"props"`
	Easing string             `json:"easing"`

	curve ease.Function
}

// Ease applies the keyframe's curve to t.
func (k *Keyframe) Ease(t float64) float64 {
	if k.curve == nil {
		return easing.Default(t)
	}
	return k.curve(t)
}

// V returns a pointer to x, for building RawKeyframe props in code.
func V(x float64) *float64 {
	return &x
}

var keyframeSeq uint64

func nextKeyframeID() string {
	return "kf-" + strconv.FormatUint(atomic.AddUint64(&keyframeSeq, 1), 10)
}

// Densify sorts raw by delta and fills every missing property value so that
// each returned keyframe carries the full property set.
func Densify(raw []RawKeyframe) ([]Keyframe, error) {
	if len(raw) == 0 {
		return nil, ErrNoKeyframes
	}

	sorted := make([]RawKeyframe, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Delta < sorted[j].Delta
	})

	names := make(map[string]struct{})
	for i, k := range sorted {
		if math.IsNaN(k.Delta) || k.Delta < 0 || k.Delta > 1 {
			return nil, fmt.Errorf("keyframe %d: %w: %v", i, ErrDeltaRange, k.Delta)
		}
		for name := range k.Props {
			names[name] = struct{}{}
		}
	}

	out := make([]Keyframe, len(sorted))
	for i, k := range sorted {
		name, err := easing.Canonical(k.Easing)
		if err != nil {
			return nil, fmt.Errorf("keyframe %d: %w", i, err)
		}
		curve, _ := easing.Lookup(name)
		out[i] = Keyframe{
			ID:     nextKeyframeID(),
			Delta:  k.Delta,
			Props:  make(map[string]float64, len(names)),
			Easing: name,
			curve:  curve,
		}
	}

	column := make([]*float64, len(sorted))
	for name := range names {
		for i, k := range sorted {
			column[i] = k.Props[name]
		}
		filled, err := fillGaps(column)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		for i, v := range filled {
			out[i].Props[name] = v
		}
	}

	return out, nil
}

// fillGaps resolves nil entries by index distance: interior gaps are
// interpolated between the nearest defined neighbours, leading gaps take the
// first defined value and trailing gaps the last one.
func fillGaps(values []*float64) ([]float64, error) {
	filled := make([]float64, len(values))
	prev := -1
	for i := range values {
		if values[i] != nil {
			if v := *values[i]; math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %v at keyframe %d", ErrNonFinite, v, i)
			}
			filled[i] = *values[i]
			prev = i
			continue
		}

		next := -1
		for j := i + 1; j < len(values); j++ {
			if values[j] != nil {
				next = j
				break
			}
		}

		switch {
		case prev == -1 && next == -1:
			return nil, ErrUninterpolable
		case prev == -1:
			filled[i] = *values[next]
		case next == -1:
			filled[i] = *values[prev]
		default:
			t := float64(i-prev) / float64(next-prev)
			filled[i] = util.Lerp(*values[prev], *values[next], t)
		}
	}
	return filled, nil
}
