package bundle

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/polytope"
	"github.com/san-kum/reachset/internal/sym"
)

var xyVars = []sym.Symbol{"x", "y"}

func identityDynamics() []sym.Expression {
	return []sym.Expression{sym.Var("x"), sym.Var("y")}
}

func TestTransformIdentity(t *testing.T) {
	b := boxBundle(1)
	for _, mode := range []Mode{OFO, AFO} {
		res, err := b.Transform(xyVars, identityDynamics(), mode)
		if err != nil {
			t.Fatalf("%v transform failed: %v", mode, err)
		}
		for i := range b.OffsetPlus() {
			if math.Abs(res.OffsetPlus()[i]-1) > 1e-9 {
				t.Errorf("%v: upper offset %d is %f, expected 1", mode, i, res.OffsetPlus()[i])
			}
			if math.Abs(res.OffsetMinus()[i]-1) > 1e-9 {
				t.Errorf("%v: lower offset %d is %f, expected 1", mode, i, res.OffsetMinus()[i])
			}
		}
	}
}

func TestTransformStretch(t *testing.T) {
	// next(x) = 2x, next(y) = y maps [-1,1]^2 onto [-2,2]x[-1,1].
	b := boxBundle(1)
	f := []sym.Expression{sym.Var("x").Scale(2), sym.Var("y")}
	for _, mode := range []Mode{OFO, AFO} {
		res, err := b.Transform(xyVars, f, mode)
		if err != nil {
			t.Fatalf("%v transform failed: %v", mode, err)
		}
		wantPlus := geom.Vector{2, 1}
		for i := range wantPlus {
			if math.Abs(res.OffsetPlus()[i]-wantPlus[i]) > 1e-9 {
				t.Errorf("%v: upper offset %d is %f, expected %f", mode, i, res.OffsetPlus()[i], wantPlus[i])
			}
			if math.Abs(res.OffsetMinus()[i]-wantPlus[i]) > 1e-9 {
				t.Errorf("%v: lower offset %d is %f, expected %f", mode, i, res.OffsetMinus()[i], wantPlus[i])
			}
		}
	}
}

func TestTransformNonlinearSound(t *testing.T) {
	// next(x) = x^2, next(y) = y over [-1,1]^2: true x-image is [0,1],
	// the Bernstein bound may be conservative but must cover it.
	b := boxBundle(1)
	f := []sym.Expression{sym.Var("x").Pow(2), sym.Var("y")}
	res, err := b.Transform(xyVars, f, AFO)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if res.OffsetPlus()[0] < 1-1e-9 {
		t.Errorf("upper x offset %f fails to cover 1", res.OffsetPlus()[0])
	}
	if res.OffsetMinus()[0] < -1e-9 {
		t.Errorf("lower x offset %f fails to cover 0", res.OffsetMinus()[0])
	}
}

func TestAFOAtLeastAsTightAsOFO(t *testing.T) {
	// Bundle with a diagonal direction so AFO's cross-row minimum can
	// bite; mildly nonlinear dynamics.
	b := New(
		geom.Matrix{{1, 0}, {0, 1}, {1, 1}},
		geom.Vector{1, 1, 1.5},
		geom.Vector{1, 1, 1.5},
		[][]int{{0, 1}, {0, 2}},
	)
	f := []sym.Expression{
		sym.Var("x").Add(sym.Var("y").Pow(2).Scale(0.2)),
		sym.Var("y").Scale(0.9),
	}

	ofo, err := b.Transform(xyVars, f, OFO)
	if err != nil {
		t.Fatalf("OFO transform failed: %v", err)
	}
	afo, err := b.Transform(xyVars, f, AFO)
	if err != nil {
		t.Fatalf("AFO transform failed: %v", err)
	}

	ok, err := ofo.Polytope().Contains(afo.Polytope(), 1e-9)
	if err != nil {
		t.Fatalf("containment failed: %v", err)
	}
	if !ok {
		t.Error("AFO result escapes OFO result")
	}
}

func TestTransformPreservesShape(t *testing.T) {
	b := boxBundle(1)
	res, err := b.Transform(xyVars, identityDynamics(), AFO)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if res.Size() != b.Size() || res.NumTemplates() != b.NumTemplates() {
		t.Error("transform changed direction or template count")
	}
	for i, row := range res.Template() {
		for j, idx := range row {
			if idx != b.Template()[i][j] {
				t.Error("transform changed template")
			}
		}
	}
	// input bundle untouched
	if b.OffsetPlus()[0] != 1 {
		t.Error("transform mutated its receiver")
	}
}

func TestTransformDimensionMismatch(t *testing.T) {
	b := boxBundle(1)
	if _, err := b.Transform(xyVars, []sym.Expression{sym.Var("x")}, AFO); err == nil {
		t.Error("expected dynamics arity error")
	}
	if _, err := b.Transform([]sym.Symbol{"x"}, identityDynamics(), AFO); err == nil {
		t.Error("expected variable arity error")
	}
}

func paramBox(lo, hi float64) *polytope.Polytope {
	p, err := polytope.New(geom.Matrix{{1}, {-1}}, geom.Vector{hi, -lo})
	if err != nil {
		panic(err)
	}
	return p
}

func TestTransformParamSingleton(t *testing.T) {
	// next(x) = p*x with p pinned to 2 must match the plain transform
	// with the parameter substituted.
	b := boxBundle(1)
	f := []sym.Expression{sym.Var("p").Mul(sym.Var("x")), sym.Var("y")}

	res, err := b.TransformParam(xyVars, []sym.Symbol{"p"}, f, paramBox(2, 2), AFO)
	if err != nil {
		t.Fatalf("parametric transform failed: %v", err)
	}

	plain, err := b.Transform(xyVars, []sym.Expression{sym.Var("x").Scale(2), sym.Var("y")}, AFO)
	if err != nil {
		t.Fatalf("plain transform failed: %v", err)
	}

	for i := range plain.OffsetPlus() {
		if math.Abs(res.OffsetPlus()[i]-plain.OffsetPlus()[i]) > 1e-9 {
			t.Errorf("upper offset %d: parametric %f vs plain %f", i, res.OffsetPlus()[i], plain.OffsetPlus()[i])
		}
		if math.Abs(res.OffsetMinus()[i]-plain.OffsetMinus()[i]) > 1e-9 {
			t.Errorf("lower offset %d: parametric %f vs plain %f", i, res.OffsetMinus()[i], plain.OffsetMinus()[i])
		}
	}
}

func TestTransformParamInterval(t *testing.T) {
	// p in [1, 2]: the image of [-1,1] under p*x must cover [-2,2].
	b := boxBundle(1)
	f := []sym.Expression{sym.Var("p").Mul(sym.Var("x")), sym.Var("y")}

	res, err := b.TransformParam(xyVars, []sym.Symbol{"p"}, f, paramBox(1, 2), AFO)
	if err != nil {
		t.Fatalf("parametric transform failed: %v", err)
	}
	if math.Abs(res.OffsetPlus()[0]-2) > 1e-9 || math.Abs(res.OffsetMinus()[0]-2) > 1e-9 {
		t.Errorf("expected x image [-2,2], got [-%f,%f]", res.OffsetMinus()[0], res.OffsetPlus()[0])
	}
}

func TestTransformParamNonAffine(t *testing.T) {
	b := boxBundle(1)
	f := []sym.Expression{sym.Var("p").Pow(2).Mul(sym.Var("x")), sym.Var("y")}
	_, err := b.TransformParam(xyVars, []sym.Symbol{"p"}, f, paramBox(1, 2), AFO)
	if !errors.Is(err, ErrNonAffineParam) {
		t.Errorf("expected ErrNonAffineParam, got %v", err)
	}
}

func TestPlainFinderRejectsOpenCoefficients(t *testing.T) {
	finder := NewMaxCoeffFinder()
	_, err := finder.UpperBound(sym.Var("p"))
	if !errors.Is(err, ErrNotClosed) {
		t.Errorf("expected ErrNotClosed, got %v", err)
	}
}

func TestLowerBoundComplementAvoidsNegativeZero(t *testing.T) {
	finder := NewMaxCoeffFinder()
	m, err := finder.LowerBoundComplement(sym.Zero())
	if err != nil {
		t.Fatalf("bound failed: %v", err)
	}
	if math.Signbit(m) {
		t.Error("expected +0, got -0")
	}
}

func TestMinCellFold(t *testing.T) {
	cells := newMinCells(1)
	cells[0].update(3)
	cells[0].update(1)
	cells[0].update(2)
	if cells[0].read() != 1 {
		t.Errorf("expected running minimum 1, got %f", cells[0].read())
	}
}
