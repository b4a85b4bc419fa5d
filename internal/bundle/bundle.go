package bundle

import (
	"fmt"
	"math"

	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/polytope"
)

// Bundle is an intersection of parallelotopes sharing one direction
// set. Directions are index-addressable in insertion order; the
// template matrix selects, per row, the d directions forming one
// parallelotope basis. The denoted set is
//
//	{x : dir_i.x <= offsetPlus_i  and  -dir_i.x <= offsetMinus_i, for all i}
//
// optionally intersected with assumption constraints.
type Bundle struct {
	directions  geom.Matrix
	offsetPlus  geom.Vector
	offsetMinus geom.Vector
	template    [][]int

	// pairwise orthogonal proximity, cached at construction
	proximity geom.Matrix

	// assumption constraints: assumeDirs[i].x <= assumeOffsets[i]
	assumeDirs    geom.Matrix
	assumeOffsets geom.Vector
}

// New builds a bundle and validates its shape. Malformed input is a
// programming or input-file defect with no recovery contract, so New
// panics instead of returning an error.
func New(directions geom.Matrix, offsetPlus, offsetMinus geom.Vector, template [][]int) *Bundle {
	return NewWithAssumptions(directions, offsetPlus, offsetMinus, template, nil, nil)
}

// NewWithAssumptions is New plus extra constraint rows restricting the
// denoted set; assumptions are applied by intersection and take no part
// in the template.
func NewWithAssumptions(directions geom.Matrix, offsetPlus, offsetMinus geom.Vector,
	template [][]int, assumeDirs geom.Matrix, assumeOffsets geom.Vector) *Bundle {

	if len(directions) == 0 {
		panic("bundle: directions must be non-empty")
	}
	dim := len(directions[0])
	for i, dir := range directions {
		if len(dir) != dim {
			panic(fmt.Sprintf("bundle: direction %d has %d entries, expected %d", i, len(dir), dim))
		}
	}
	if len(offsetPlus) != len(directions) {
		panic(fmt.Sprintf("bundle: %d directions but %d upper offsets", len(directions), len(offsetPlus)))
	}
	if len(offsetMinus) != len(directions) {
		panic(fmt.Sprintf("bundle: %d directions but %d lower offsets", len(directions), len(offsetMinus)))
	}
	if len(template) == 0 {
		panic("bundle: template must be non-empty")
	}
	for i, row := range template {
		if len(row) != dim {
			panic(fmt.Sprintf("bundle: template row %d has %d entries, expected %d", i, len(row), dim))
		}
		for _, idx := range row {
			if idx < 0 || idx >= len(directions) {
				panic(fmt.Sprintf("bundle: template row %d references direction %d, have %d", i, idx, len(directions)))
			}
		}
		if geom.IsSingular(gatherRows(directions, row)) {
			panic(fmt.Sprintf("bundle: template row %d directions are not linearly independent", i))
		}
	}
	if len(assumeDirs) != len(assumeOffsets) {
		panic(fmt.Sprintf("bundle: %d assumption directions but %d offsets", len(assumeDirs), len(assumeOffsets)))
	}

	b := &Bundle{
		directions:    directions.Clone(),
		offsetPlus:    offsetPlus.Clone(),
		offsetMinus:   offsetMinus.Clone(),
		template:      cloneTemplate(template),
		assumeDirs:    assumeDirs.Clone(),
		assumeOffsets: assumeOffsets.Clone(),
	}
	b.proximity = proximityMatrix(b.directions)
	return b
}

func gatherRows(directions geom.Matrix, row []int) geom.Matrix {
	basis := make(geom.Matrix, len(row))
	for j, idx := range row {
		basis[j] = directions[idx]
	}
	return basis
}

func cloneTemplate(template [][]int) [][]int {
	c := make([][]int, len(template))
	for i, row := range template {
		c[i] = append([]int(nil), row...)
	}
	return c
}

func proximityMatrix(directions geom.Matrix) geom.Matrix {
	n := len(directions)
	theta := make(geom.Matrix, n)
	for i := range theta {
		theta[i] = make(geom.Vector, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			prox := geom.OrthProx(directions[i], directions[j])
			theta[i][j] = prox
			theta[j][i] = prox
		}
	}
	return theta
}

// Dim is the state dimension.
func (b *Bundle) Dim() int { return len(b.directions[0]) }

// Size is the number of directions.
func (b *Bundle) Size() int { return len(b.directions) }

// NumTemplates is the number of template rows (parallelotopes).
func (b *Bundle) NumTemplates() int { return len(b.template) }

func (b *Bundle) Directions() geom.Matrix  { return b.directions }
func (b *Bundle) Template() [][]int        { return b.template }
func (b *Bundle) OffsetPlus() geom.Vector  { return b.offsetPlus }
func (b *Bundle) OffsetMinus() geom.Vector { return b.offsetMinus }
func (b *Bundle) Proximity() geom.Matrix   { return b.proximity }

// Polytope converts the bundle to its doubled half-space system
// [directions; -directions] with offsets [offsetPlus; offsetMinus],
// plus any assumption rows. The conversion is lossless on the denoted
// point set.
func (b *Bundle) Polytope() *polytope.Polytope {
	n := b.Size()
	a := make(geom.Matrix, 0, 2*n+len(b.assumeDirs))
	off := make(geom.Vector, 0, 2*n+len(b.assumeDirs))
	for i, dir := range b.directions {
		a = append(a, dir.Clone())
		off = append(off, b.offsetPlus[i])
	}
	for i, dir := range b.directions {
		a = append(a, dir.Neg())
		off = append(off, b.offsetMinus[i])
	}
	for i, dir := range b.assumeDirs {
		a = append(a, dir.Clone())
		off = append(off, b.assumeOffsets[i])
	}
	poly, err := polytope.New(a, off)
	if err != nil {
		panic("bundle: malformed half-space system: " + err.Error())
	}
	return poly
}

// Parallelotope derives the i-th parallelotope of the bundle from
// template row i. Panics when i is out of range; a singular row basis
// surfaces as ErrSingularBasis.
func (b *Bundle) Parallelotope(i int) (*Parallelotope, error) {
	if i < 0 || i >= len(b.template) {
		panic(fmt.Sprintf("bundle: template index %d out of range [0, %d)", i, len(b.template)))
	}
	row := b.template[i]
	basis := make(geom.Matrix, 0, len(row))
	upper := make(geom.Vector, 0, len(row))
	lower := make(geom.Vector, 0, len(row))
	for _, idx := range row {
		basis = append(basis, b.directions[idx])
		upper = append(upper, b.offsetPlus[idx])
		lower = append(lower, b.offsetMinus[idx])
	}
	return NewParallelotope(basis, lower, upper)
}

// Canonical tightens every offset against the bundle's own polytope so
// that each constraint touches the boundary of the denoted set. The set
// itself is unchanged, as are directions and template. An empty bundle
// surfaces polytope.ErrEmpty.
func (b *Bundle) Canonical() (*Bundle, error) {
	poly := b.Polytope()
	plus := make(geom.Vector, b.Size())
	minus := make(geom.Vector, b.Size())
	for i, dir := range b.directions {
		var err error
		if plus[i], err = poly.Maximize(dir); err != nil {
			return nil, err
		}
		if minus[i], err = poly.Maximize(dir.Neg()); err != nil {
			return nil, err
		}
	}
	return NewWithAssumptions(b.directions, plus, minus, b.template, b.assumeDirs, b.assumeOffsets), nil
}

// Magnitude is the span of direction i over the bundle, normalized by
// the direction norm.
func (b *Bundle) Magnitude(i int) float64 {
	return math.Abs(b.offsetPlus[i]+b.offsetMinus[i]) / b.directions[i].Norm()
}

// MaxMagnitude is the largest direction magnitude of the bundle.
func (b *Bundle) MaxMagnitude() float64 {
	maxMag := 0.0
	for i := range b.directions {
		if m := b.Magnitude(i); m > maxMag {
			maxMag = m
		}
	}
	return maxMag
}
