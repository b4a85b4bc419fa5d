package bundle

import (
	"errors"
	"fmt"

	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/polytope"
	"github.com/san-kum/reachset/internal/sym"
)

// MaxCoeffs carries the two bounds extracted from one direction's
// Bernstein coefficient list: P bounds the coefficients from above, M
// bounds their negations from above. P becomes the new upper offset and
// M the new lower offset of the direction.
type MaxCoeffs struct {
	P float64
	M float64
}

// MaxCoeffFinder bounds a single symbolic Bernstein coefficient. It is
// the seam across which the exact and the parametric transform are
// selected.
type MaxCoeffFinder interface {
	// UpperBound bounds the coefficient from above.
	UpperBound(coeff sym.Expression) (float64, error)

	// LowerBoundComplement bounds the negated coefficient from above.
	LowerBoundComplement(coeff sym.Expression) (float64, error)
}

// FindMaxCoeffs folds a coefficient list into the componentwise maximum
// of both bounds.
func FindMaxCoeffs(finder MaxCoeffFinder, coeffs []sym.Expression) (MaxCoeffs, error) {
	if len(coeffs) == 0 {
		return MaxCoeffs{}, fmt.Errorf("bundle: no Bernstein coefficients to bound")
	}

	result := MaxCoeffs{}
	for i, coeff := range coeffs {
		p, err := finder.UpperBound(coeff)
		if err != nil {
			return MaxCoeffs{}, err
		}
		m, err := finder.LowerBoundComplement(coeff)
		if err != nil {
			return MaxCoeffs{}, err
		}
		if i == 0 || p > result.P {
			result.P = p
		}
		if i == 0 || m > result.M {
			result.M = m
		}
	}
	return result, nil
}

// plainMaxCoeffFinder evaluates coefficients that are already numeric.
type plainMaxCoeffFinder struct{}

// NewMaxCoeffFinder returns the plain finder used by the exact
// transform: coefficients must contain no free symbols.
func NewMaxCoeffFinder() MaxCoeffFinder {
	return plainMaxCoeffFinder{}
}

func (plainMaxCoeffFinder) UpperBound(coeff sym.Expression) (float64, error) {
	value, err := coeff.Eval()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotClosed, coeff)
	}
	return value, nil
}

func (plainMaxCoeffFinder) LowerBoundComplement(coeff sym.Expression) (float64, error) {
	value, err := coeff.Eval()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotClosed, coeff)
	}
	// keep exact zeros positive: -0 offsets poison later comparisons
	if value == 0 {
		return 0, nil
	}
	return -value, nil
}

// paramMaxCoeffFinder maximizes coefficients still containing parameter
// symbols over the admissible parameter polytope.
type paramMaxCoeffFinder struct {
	params   []sym.Symbol
	paramSet *polytope.Polytope
}

// NewParamMaxCoeffFinder returns the parametric finder: every
// coefficient must be affine in params and is maximized over paramSet
// via LP, so the resulting offsets are sound for every admissible
// parameter value.
func NewParamMaxCoeffFinder(params []sym.Symbol, paramSet *polytope.Polytope) MaxCoeffFinder {
	return &paramMaxCoeffFinder{params: params, paramSet: paramSet}
}

func (f *paramMaxCoeffFinder) maximize(coeff sym.Expression) (float64, error) {
	c0, coeffs, err := coeff.Linear(f.params)
	if err != nil {
		if errors.Is(err, sym.ErrNotAffine) {
			return 0, fmt.Errorf("%w: %s", ErrNonAffineParam, coeff)
		}
		return 0, err
	}
	return f.paramSet.MaximizeAffine(c0, geom.Vector(coeffs))
}

func (f *paramMaxCoeffFinder) UpperBound(coeff sym.Expression) (float64, error) {
	return f.maximize(coeff)
}

func (f *paramMaxCoeffFinder) LowerBoundComplement(coeff sym.Expression) (float64, error) {
	return f.maximize(coeff.Neg())
}
