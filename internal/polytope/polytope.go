package polytope

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/san-kum/reachset/internal/geom"
)

var (
	// ErrEmpty indicates an infeasible half-space system: the polytope
	// denotes the empty set. In a reachability run this is a legitimate
	// terminal outcome.
	ErrEmpty = errors.New("polytope: empty set (infeasible system)")

	// ErrUnbounded indicates the optimized functional is unbounded over
	// the polytope, which points at malformed input directions.
	ErrUnbounded = errors.New("polytope: unbounded optimization")
)

// Polytope is the point set {x : A x <= B}.
type Polytope struct {
	A geom.Matrix
	B geom.Vector
}

// New validates row sizes and builds a polytope.
func New(a geom.Matrix, b geom.Vector) (*Polytope, error) {
	if len(a) == 0 {
		return nil, fmt.Errorf("polytope: no constraints")
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("polytope: %d constraint rows but %d offsets", len(a), len(b))
	}
	dim := len(a[0])
	for i, row := range a {
		if len(row) != dim {
			return nil, fmt.Errorf("polytope: row %d has %d entries, expected %d", i, len(row), dim)
		}
	}
	return &Polytope{A: a.Clone(), B: b.Clone()}, nil
}

func (p *Polytope) Dim() int {
	return len(p.A[0])
}

func (p *Polytope) NumConstraints() int {
	return len(p.A)
}

func (p *Polytope) constraintMatrix() *mat.Dense {
	rows, cols := len(p.A), p.Dim()
	g := mat.NewDense(rows, cols, nil)
	for i, row := range p.A {
		for j, v := range row {
			g.Set(i, j, v)
		}
	}
	return g
}

// Maximize solves max dir.x over the polytope.
func (p *Polytope) Maximize(dir geom.Vector) (float64, error) {
	if len(dir) != p.Dim() {
		return 0, fmt.Errorf("polytope: objective has %d entries, expected %d", len(dir), p.Dim())
	}
	c := dir.Neg()
	cNew, aNew, bNew := lp.Convert(c, p.constraintMatrix(), p.B, nil, nil)
	opt, _, err := lp.Simplex(cNew, aNew, bNew, 0, nil)
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return 0, ErrEmpty
		case errors.Is(err, lp.ErrUnbounded):
			return 0, ErrUnbounded
		default:
			return 0, fmt.Errorf("polytope: simplex failed: %w", err)
		}
	}
	return -opt, nil
}

// Minimize solves min dir.x over the polytope.
func (p *Polytope) Minimize(dir geom.Vector) (float64, error) {
	opt, err := p.Maximize(dir.Neg())
	if err != nil {
		return 0, err
	}
	return -opt, nil
}

// MaximizeAffine solves max c0 + c.x over the polytope.
func (p *Polytope) MaximizeAffine(c0 float64, c geom.Vector) (float64, error) {
	opt, err := p.Maximize(c)
	if err != nil {
		return 0, err
	}
	return c0 + opt, nil
}

// IsEmpty reports whether the system is infeasible.
func (p *Polytope) IsEmpty() (bool, error) {
	_, err := p.Maximize(make(geom.Vector, p.Dim()))
	if errors.Is(err, ErrEmpty) {
		return true, nil
	}
	return false, err
}

// Contains reports whether other is included in p, up to tol, by
// comparing support functions along p's constraint directions.
func (p *Polytope) Contains(other *Polytope, tol float64) (bool, error) {
	for i, row := range p.A {
		support, err := other.Maximize(row)
		if errors.Is(err, ErrEmpty) {
			return true, nil // the empty set is contained everywhere
		}
		if errors.Is(err, ErrUnbounded) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if support > p.B[i]+tol {
			return false, nil
		}
	}
	return true, nil
}

// Intersect stacks the constraints of p and other.
func (p *Polytope) Intersect(other *Polytope) (*Polytope, error) {
	if p.Dim() != other.Dim() {
		return nil, fmt.Errorf("polytope: dimension mismatch %d vs %d", p.Dim(), other.Dim())
	}
	a := append(p.A.Clone(), other.A.Clone()...)
	b := append(p.B.Clone(), other.B.Clone()...)
	return New(a, b)
}

// BoundingBox computes per-axis interval bounds of the polytope.
func (p *Polytope) BoundingBox() (lo, hi geom.Vector, err error) {
	dim := p.Dim()
	lo = make(geom.Vector, dim)
	hi = make(geom.Vector, dim)
	for i := 0; i < dim; i++ {
		axis := make(geom.Vector, dim)
		axis[i] = 1
		if hi[i], err = p.Maximize(axis); err != nil {
			return nil, nil, err
		}
		if lo[i], err = p.Minimize(axis); err != nil {
			return nil, nil, err
		}
	}
	return lo, hi, nil
}

// BoxVolume is the volume of the bounding box of the polytope; a cheap
// over-estimate used only for reporting.
func (p *Polytope) BoxVolume() (float64, error) {
	lo, hi, err := p.BoundingBox()
	if err != nil {
		return 0, err
	}
	vol := 1.0
	for i := range lo {
		vol *= math.Max(hi[i]-lo[i], 0)
	}
	return vol, nil
}
