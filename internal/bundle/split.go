package bundle

import (
	"fmt"
	"math"
)

// DefaultSplitRatio is the fraction of the magnitude bound targeted by
// each slice of a split.
const DefaultSplitRatio = 0.75

// Split covers the bundle with sub-bundles whose direction magnitudes
// are all bounded by ratio*maxMagnitude. Directions within the bound
// are kept as they are; every offending direction interval is walked in
// slices of ratio*maxMagnitude, and the cartesian combination of slices
// yields the output bundles. All outputs share the original directions,
// template and assumptions, and their union is the original bundle.
//
// A ratio outside (0, 1] falls back to DefaultSplitRatio. A
// non-positive maxMagnitude gives a zero slice width and can never
// terminate, so it panics like the constructors do on malformed input.
func (b *Bundle) Split(maxMagnitude, ratio float64) []*Bundle {
	if maxMagnitude <= 0 {
		panic(fmt.Sprintf("bundle: split magnitude bound must be positive, got %g", maxMagnitude))
	}
	if ratio <= 0 || ratio > 1 {
		ratio = DefaultSplitRatio
	}

	result := make([]*Bundle, 0, 1)
	plus := b.offsetPlus.Clone()
	minus := b.offsetMinus.Clone()
	b.splitRecursive(&result, plus, minus, 0, maxMagnitude, ratio)
	return result
}

func (b *Bundle) splitRecursive(result *[]*Bundle, plus, minus []float64,
	idx int, maxMagnitude, ratio float64) {

	if idx == b.Size() {
		*result = append(*result, NewWithAssumptions(
			b.directions,
			append([]float64(nil), plus...),
			append([]float64(nil), minus...),
			b.template, b.assumeDirs, b.assumeOffsets))
		return
	}

	if b.Magnitude(idx) <= ratio*maxMagnitude {
		plus[idx] = b.offsetPlus[idx]
		minus[idx] = b.offsetMinus[idx]
		b.splitRecursive(result, plus, minus, idx+1, maxMagnitude, ratio)
		return
	}

	// slice the interval [-offsetMinus, offsetPlus] of this direction
	step := ratio * maxMagnitude * b.directions[idx].Norm()
	lower := -b.offsetMinus[idx]
	for {
		upper := math.Min(lower+step, b.offsetPlus[idx])
		plus[idx] = upper
		minus[idx] = -lower
		b.splitRecursive(result, plus, minus, idx+1, maxMagnitude, ratio)
		if upper >= b.offsetPlus[idx] {
			return
		}
		lower = upper
	}
}
