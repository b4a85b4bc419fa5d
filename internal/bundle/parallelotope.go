package bundle

import (
	"math"

	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/polytope"
	"github.com/san-kum/reachset/internal/sym"
)

// Parallelotope is a basis-aligned region defined by d linearly
// independent directions and an offset pair per direction:
//
//	{x : dir_i.x <= upper_i  and  -dir_i.x <= lower_i}
//
// It is a view derived from one bundle template row, recomputed on
// demand and never cached inside the bundle.
type Parallelotope struct {
	dim        int
	directions geom.Matrix
	lowerBound geom.Vector
	upperBound geom.Vector

	baseVertex geom.Vector
	lengths    geom.Vector
	versors    geom.Matrix
}

// NewParallelotope solves the linear systems pinning down the vertex
// representation: the base vertex is the point where every lower facet
// is tight, and each versor points from there to the vertex where the
// corresponding upper facet is tight instead. Fails with
// ErrSingularBasis when the directions do not form a basis.
func NewParallelotope(directions geom.Matrix, lowerBound, upperBound geom.Vector) (*Parallelotope, error) {
	dim := len(directions)

	base, err := geom.SolveSystem(directions, lowerBound.Neg())
	if err != nil {
		return nil, ErrSingularBasis
	}

	lengths := make(geom.Vector, dim)
	versors := make(geom.Matrix, dim)
	rhs := lowerBound.Neg()
	for i := 0; i < dim; i++ {
		saved := rhs[i]
		rhs[i] = upperBound[i]
		vertex, err := geom.SolveSystem(directions, rhs)
		rhs[i] = saved
		if err != nil {
			return nil, ErrSingularBasis
		}

		edge := make(geom.Vector, dim)
		for j := range edge {
			edge[j] = vertex[j] - base[j]
		}
		lengths[i] = edge.Norm()
		if lengths[i] > 0 {
			versors[i] = edge.Scale(1 / lengths[i])
		} else {
			// degenerate dimension: keep a zero versor, the generator
			// function skips it
			versors[i] = make(geom.Vector, dim)
		}
	}

	return &Parallelotope{
		dim:        dim,
		directions: directions.Clone(),
		lowerBound: lowerBound.Clone(),
		upperBound: upperBound.Clone(),
		baseVertex: base,
		lengths:    lengths,
		versors:    versors,
	}, nil
}

func (p *Parallelotope) Dim() int                { return p.dim }
func (p *Parallelotope) BaseVertex() geom.Vector { return p.baseVertex }
func (p *Parallelotope) Lengths() geom.Vector    { return p.lengths }
func (p *Parallelotope) Versors() geom.Matrix    { return p.versors }
func (p *Parallelotope) Directions() geom.Matrix { return p.directions }
func (p *Parallelotope) LowerBound() geom.Vector { return p.lowerBound }
func (p *Parallelotope) UpperBound() geom.Vector { return p.upperBound }

// Polytope is the doubled half-space system of the parallelotope.
func (p *Parallelotope) Polytope() *polytope.Polytope {
	a := make(geom.Matrix, 0, 2*p.dim)
	b := make(geom.Vector, 0, 2*p.dim)
	for i, dir := range p.directions {
		a = append(a, dir.Clone())
		b = append(b, p.upperBound[i])
	}
	for i, dir := range p.directions {
		a = append(a, dir.Neg())
		b = append(b, p.lowerBound[i])
	}
	poly, err := polytope.New(a, b)
	if err != nil {
		panic("bundle: parallelotope produced malformed polytope: " + err.Error())
	}
	return poly
}

// GeneratorFunction is the affine map from alpha in [0,1]^d onto the
// parallelotope:
//
//	g(alpha) = q + sum_i alpha_i * lengths_i * versors_i
//
// with q the base vertex. Zero-length generators are skipped so that
// degenerate parallelotopes stay well defined.
func (p *Parallelotope) GeneratorFunction(alpha []sym.Symbol) []sym.Expression {
	gen := make([]sym.Expression, p.dim)
	for j := range gen {
		gen[j] = sym.Constant(p.baseVertex[j])
	}
	for i := 0; i < p.dim; i++ {
		if p.lengths[i] == 0 {
			continue
		}
		scaled := p.versors[i].Scale(p.lengths[i])
		for j := range gen {
			if scaled[j] != 0 {
				gen[j] = gen[j].Add(sym.Var(alpha[i]).Scale(scaled[j]))
			}
		}
	}
	return gen
}

// Magnitude is the edge span of the parallelotope along generator i,
// normalized by the direction norm.
func (p *Parallelotope) Magnitude(i int) float64 {
	return math.Abs(p.upperBound[i]+p.lowerBound[i]) / p.directions[i].Norm()
}
