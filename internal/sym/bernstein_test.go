package sym

import (
	"math"
	"testing"
)

func evalAll(t *testing.T, coeffs []Expression) []float64 {
	t.Helper()
	values := make([]float64, len(coeffs))
	for i, c := range coeffs {
		v, err := c.Eval()
		if err != nil {
			t.Fatalf("coefficient %d not closed: %v", i, err)
		}
		values[i] = v
	}
	return values
}

func TestBernsteinLinearExact(t *testing.T) {
	// 2a - 1 over [0,1]: Bernstein coefficients are the endpoint values.
	a := Symbol("a")
	coeffs := BernsteinCoeffs([]Symbol{a}, Var(a).Scale(2).Sub(Constant(1)))

	values := evalAll(t, coeffs)
	if len(values) != 2 {
		t.Fatalf("expected 2 coefficients, got %d", len(values))
	}
	if math.Abs(values[0]+1) > 1e-12 || math.Abs(values[1]-1) > 1e-12 {
		t.Errorf("expected [-1 1], got %v", values)
	}
}

func TestBernsteinQuadraticBounds(t *testing.T) {
	// a^2 on [0,1] has Bernstein coefficients [0, 0, 1]: conservative
	// lower bound 0 (tight) and upper bound 1 (tight at the boundary).
	a := Symbol("a")
	values := evalAll(t, BernsteinCoeffs([]Symbol{a}, Var(a).Pow(2)))
	expected := []float64{0, 0, 1}
	if len(values) != len(expected) {
		t.Fatalf("expected %d coefficients, got %d", len(expected), len(values))
	}
	for i := range expected {
		if math.Abs(values[i]-expected[i]) > 1e-12 {
			t.Errorf("coefficient %d: expected %f, got %f", i, expected[i], values[i])
		}
	}
}

func TestBernsteinBoundsEnvelope(t *testing.T) {
	// Bernstein coefficients must bracket sampled values of the
	// polynomial over the box.
	a1, a2 := Symbol("a1"), Symbol("a2")
	e := Var(a1).Mul(Var(a2)).Scale(3).Sub(Var(a1).Pow(2)).Add(Constant(0.5))

	values := evalAll(t, BernsteinCoeffs([]Symbol{a1, a2}, e))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	for _, x := range []float64{0, 0.25, 0.5, 0.75, 1} {
		for _, y := range []float64{0, 0.25, 0.5, 0.75, 1} {
			v, err := e.Replace(map[Symbol]Expression{
				a1: Constant(x),
				a2: Constant(y),
			}).Eval()
			if err != nil {
				t.Fatalf("eval failed: %v", err)
			}
			if v < lo-1e-12 || v > hi+1e-12 {
				t.Errorf("value %f at (%f,%f) escapes Bernstein envelope [%f, %f]", v, x, y, lo, hi)
			}
		}
	}
}

func TestBernsteinParametric(t *testing.T) {
	// p*a stays affine in p within every Bernstein coefficient.
	a, p := Symbol("a"), Symbol("p")
	coeffs := BernsteinCoeffs([]Symbol{a}, Var(p).Mul(Var(a)))

	if len(coeffs) != 2 {
		t.Fatalf("expected 2 coefficients, got %d", len(coeffs))
	}
	c0, lin, err := coeffs[1].Linear([]Symbol{p})
	if err != nil {
		t.Fatalf("expected affine coefficient, got %v", err)
	}
	if c0 != 0 || math.Abs(lin[0]-1) > 1e-12 {
		t.Errorf("expected coefficient p, got %f + %f*p", c0, lin[0])
	}
}

func TestBinomial(t *testing.T) {
	cases := []struct {
		n, k int
		want float64
	}{
		{4, 2, 6}, {5, 0, 1}, {5, 5, 1}, {6, 3, 20}, {3, 5, 0},
	}
	for _, c := range cases {
		if got := binomial(c.n, c.k); got != c.want {
			t.Errorf("binomial(%d,%d): expected %f, got %f", c.n, c.k, c.want, got)
		}
	}
}
