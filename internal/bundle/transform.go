package bundle

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/polytope"
	"github.com/san-kum/reachset/internal/sym"
)

// Mode selects how many template rows constrain each output direction.
type Mode int

const (
	// OFO (one-for-one) bounds each direction only through the template
	// rows it belongs to, then canonicalizes the result.
	OFO Mode = iota

	// AFO (all-for-one) bounds every direction through every template
	// row and keeps the minimum: tighter, at O(rows x directions)
	// Bernstein computations instead of O(rows x dim).
	AFO
)

func (m Mode) String() string {
	switch m {
	case OFO:
		return "OFO"
	case AFO:
		return "AFO"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// minCell is a per-direction running minimum shared across the
// row-transform tasks. The fold is a commutative, associative minimum,
// so the final offsets do not depend on task completion order.
type minCell struct {
	mu    sync.RWMutex
	value float64
}

func newMinCells(n int) []minCell {
	cells := make([]minCell, n)
	for i := range cells {
		cells[i].value = math.MaxFloat64
	}
	return cells
}

func (c *minCell) update(v float64) {
	c.mu.Lock()
	if v < c.value {
		c.value = v
	}
	c.mu.Unlock()
}

func (c *minCell) read() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Transform computes a bundle over the same directions and template
// whose offsets bound the image of the current bundle under the
// polynomial dynamics f (one polynomial per state variable, over vars).
func (b *Bundle) Transform(vars []sym.Symbol, f []sym.Expression, mode Mode) (*Bundle, error) {
	return b.TransformWith(vars, f, NewMaxCoeffFinder(), mode)
}

// TransformParam is Transform for parametric dynamics: the offsets are
// sound for every parameter value admitted by paramSet.
func (b *Bundle) TransformParam(vars, params []sym.Symbol, f []sym.Expression,
	paramSet *polytope.Polytope, mode Mode) (*Bundle, error) {
	return b.TransformWith(vars, f, NewParamMaxCoeffFinder(params, paramSet), mode)
}

// TransformWith runs the transform with an explicit coefficient finder.
// Template rows are processed by a bounded worker pool; per-direction
// bounds fold into shared minimum cells.
func (b *Bundle) TransformWith(vars []sym.Symbol, f []sym.Expression,
	finder MaxCoeffFinder, mode Mode) (*Bundle, error) {

	if len(f) != b.Dim() {
		return nil, fmt.Errorf("bundle: %d dynamics polynomials for dimension %d", len(f), b.Dim())
	}
	if len(vars) != b.Dim() {
		return nil, fmt.Errorf("bundle: %d variables for dimension %d", len(vars), b.Dim())
	}

	alpha := make([]sym.Symbol, b.Dim())
	for i := range alpha {
		alpha[i] = sym.Symbol(fmt.Sprintf("alpha_%d", i))
	}

	plusCells := newMinCells(b.Size())
	minusCells := newMinCells(b.Size())

	rows := b.NumTemplates()
	workers := runtime.NumCPU()
	if workers > rows {
		workers = rows
	}
	slots := make(chan struct{}, workers)
	errs := make([]error, rows)

	var wg sync.WaitGroup
	for row := 0; row < rows; row++ {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()
			errs[row] = b.boundThroughRow(row, alpha, vars, f, finder, mode, plusCells, minusCells)
		}(row)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	plus := make(geom.Vector, b.Size())
	minus := make(geom.Vector, b.Size())
	for i := range plusCells {
		plus[i] = plusCells[i].read()
		minus[i] = minusCells[i].read()
	}

	result := NewWithAssumptions(b.directions, plus, minus, b.template, b.assumeDirs, b.assumeOffsets)
	if mode == OFO {
		// OFO offsets may be redundant against each other; push them tight
		return result.Canonical()
	}
	return result, nil
}

// boundThroughRow bounds one template row's contribution: build the
// row's parallelotope, compose the dynamics with its generator
// function, and fold Bernstein bounds for every direction the mode
// assigns to this row into the shared minimum cells.
func (b *Bundle) boundThroughRow(row int, alpha, vars []sym.Symbol, f []sym.Expression,
	finder MaxCoeffFinder, mode Mode, plusCells, minusCells []minCell) error {

	p, err := b.Parallelotope(row)
	if err != nil {
		return fmt.Errorf("template row %d: %w", row, err)
	}

	subs := make(map[sym.Symbol]sym.Expression, len(vars))
	for k, gen := range p.GeneratorFunction(alpha) {
		subs[vars[k]] = gen
	}
	composed := make([]sym.Expression, len(f))
	for k := range f {
		composed[k] = f[k].Replace(subs)
	}

	var dirIndices []int
	if mode == OFO {
		dirIndices = b.template[row]
	} else {
		dirIndices = make([]int, b.Size())
		for i := range dirIndices {
			dirIndices[i] = i
		}
	}

	for _, dirIdx := range dirIndices {
		projected := projectOnto(b.directions[dirIdx], composed)
		coeffs := sym.BernsteinCoeffs(alpha, projected)
		bounds, err := FindMaxCoeffs(finder, coeffs)
		if err != nil {
			return fmt.Errorf("template row %d, direction %d: %w", row, dirIdx, err)
		}
		plusCells[dirIdx].update(bounds.P)
		minusCells[dirIdx].update(bounds.M)
	}
	return nil
}

// projectOnto is the scalar polynomial dir . composed.
func projectOnto(dir geom.Vector, composed []sym.Expression) sym.Expression {
	result := sym.Zero()
	for k, c := range dir {
		if c != 0 {
			result = result.Add(composed[k].Scale(c))
		}
	}
	return result
}
