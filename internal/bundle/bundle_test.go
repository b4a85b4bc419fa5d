package bundle

import (
	"math"
	"testing"

	"github.com/san-kum/reachset/internal/geom"
)

// boxBundle is the square [-r, r]^2 with axis directions and a single
// template row.
func boxBundle(r float64) *Bundle {
	return New(
		geom.Matrix{{1, 0}, {0, 1}},
		geom.Vector{r, r},
		geom.Vector{r, r},
		[][]int{{0, 1}},
	)
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestNewValidation(t *testing.T) {
	expectPanic(t, "empty directions", func() {
		New(geom.Matrix{}, geom.Vector{}, geom.Vector{}, [][]int{{0}})
	})
	expectPanic(t, "offset length mismatch", func() {
		New(geom.Matrix{{1, 0}, {0, 1}}, geom.Vector{1}, geom.Vector{1, 1}, [][]int{{0, 1}})
	})
	expectPanic(t, "empty template", func() {
		New(geom.Matrix{{1, 0}, {0, 1}}, geom.Vector{1, 1}, geom.Vector{1, 1}, [][]int{})
	})
	expectPanic(t, "narrow template row", func() {
		New(geom.Matrix{{1, 0}, {0, 1}}, geom.Vector{1, 1}, geom.Vector{1, 1}, [][]int{{0}})
	})
	expectPanic(t, "template index out of range", func() {
		New(geom.Matrix{{1, 0}, {0, 1}}, geom.Vector{1, 1}, geom.Vector{1, 1}, [][]int{{0, 2}})
	})
	expectPanic(t, "dependent row directions", func() {
		New(geom.Matrix{{1, 0}, {2, 0}}, geom.Vector{1, 1}, geom.Vector{1, 1}, [][]int{{0, 1}})
	})
}

func TestProximityMatrix(t *testing.T) {
	b := New(
		geom.Matrix{{1, 0}, {0, 1}, {1, 1}},
		geom.Vector{1, 1, 2},
		geom.Vector{1, 1, 2},
		[][]int{{0, 1}},
	)
	theta := b.Proximity()
	for i := 0; i < 3; i++ {
		if theta[i][i] != 0 {
			t.Errorf("diagonal entry %d must be 0, got %f", i, theta[i][i])
		}
		for j := 0; j < 3; j++ {
			if theta[i][j] != theta[j][i] {
				t.Errorf("proximity not symmetric at (%d,%d)", i, j)
			}
		}
	}
	if math.Abs(theta[0][1]) > 1e-12 {
		t.Errorf("axis pair must be orthogonal, got %f", theta[0][1])
	}
	if math.Abs(theta[0][2]-math.Pi/4) > 1e-12 {
		t.Errorf("expected pi/4 for diagonal pair, got %f", theta[0][2])
	}
}

func TestPolytopeConversion(t *testing.T) {
	b := boxBundle(1)
	poly := b.Polytope()
	if poly.NumConstraints() != 4 {
		t.Fatalf("expected doubled system with 4 rows, got %d", poly.NumConstraints())
	}
	lo, hi, err := poly.BoundingBox()
	if err != nil {
		t.Fatalf("bounding box failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if math.Abs(lo[i]+1) > 1e-9 || math.Abs(hi[i]-1) > 1e-9 {
			t.Errorf("axis %d: expected [-1,1], got [%f,%f]", i, lo[i], hi[i])
		}
	}
}

func TestAssumptionsRestrict(t *testing.T) {
	b := NewWithAssumptions(
		geom.Matrix{{1, 0}, {0, 1}},
		geom.Vector{1, 1},
		geom.Vector{1, 1},
		[][]int{{0, 1}},
		geom.Matrix{{1, 0}},
		geom.Vector{0},
	)
	_, hi, err := b.Polytope().BoundingBox()
	if err != nil {
		t.Fatalf("bounding box failed: %v", err)
	}
	if math.Abs(hi[0]) > 1e-9 {
		t.Errorf("assumption x <= 0 ignored: upper x bound %f", hi[0])
	}
}

func TestParallelotopeContainedInBundle(t *testing.T) {
	// Box plus diagonal direction; each template row's parallelotope
	// must contain the bundle polytope (the bundle is the intersection).
	b := New(
		geom.Matrix{{1, 0}, {0, 1}, {1, 1}},
		geom.Vector{1, 1, 1.5},
		geom.Vector{1, 1, 1.5},
		[][]int{{0, 1}, {0, 2}},
	)
	bundlePoly := b.Polytope()
	for i := 0; i < b.NumTemplates(); i++ {
		p, err := b.Parallelotope(i)
		if err != nil {
			t.Fatalf("parallelotope %d failed: %v", i, err)
		}
		ok, err := p.Polytope().Contains(bundlePoly, 1e-9)
		if err != nil {
			t.Fatalf("containment check failed: %v", err)
		}
		if !ok {
			t.Errorf("bundle polytope escapes parallelotope %d", i)
		}
	}
}

func TestParallelotopeOutOfRange(t *testing.T) {
	b := boxBundle(1)
	expectPanic(t, "row index", func() { b.Parallelotope(5) })
}

func TestParallelotopeVertexForm(t *testing.T) {
	b := boxBundle(1)
	p, err := b.Parallelotope(0)
	if err != nil {
		t.Fatalf("parallelotope failed: %v", err)
	}
	base := p.BaseVertex()
	if math.Abs(base[0]+1) > 1e-9 || math.Abs(base[1]+1) > 1e-9 {
		t.Errorf("expected base vertex (-1,-1), got %v", base)
	}
	for i, l := range p.Lengths() {
		if math.Abs(l-2) > 1e-9 {
			t.Errorf("length %d: expected 2, got %f", i, l)
		}
	}
}

func TestCanonicalTightensAndIsIdempotent(t *testing.T) {
	// Redundant diagonal offset: the box [-1,1]^2 caps x+y at 2, the
	// declared 5 is slack and canonicalization must pull it in.
	b := New(
		geom.Matrix{{1, 0}, {0, 1}, {1, 1}},
		geom.Vector{1, 1, 5},
		geom.Vector{1, 1, 5},
		[][]int{{0, 1}},
	)

	canon, err := b.Canonical()
	if err != nil {
		t.Fatalf("canonical failed: %v", err)
	}
	if math.Abs(canon.OffsetPlus()[2]-2) > 1e-9 {
		t.Errorf("expected tight diagonal offset 2, got %f", canon.OffsetPlus()[2])
	}

	again, err := canon.Canonical()
	if err != nil {
		t.Fatalf("second canonical failed: %v", err)
	}
	for i := range canon.OffsetPlus() {
		if math.Abs(canon.OffsetPlus()[i]-again.OffsetPlus()[i]) > 1e-9 {
			t.Errorf("canonical not idempotent on upper offset %d", i)
		}
		if math.Abs(canon.OffsetMinus()[i]-again.OffsetMinus()[i]) > 1e-9 {
			t.Errorf("canonical not idempotent on lower offset %d", i)
		}
	}
}

func TestSplitCoversAndBounds(t *testing.T) {
	b := boxBundle(1) // every direction spans 2

	pieces := b.Split(1, 0.5) // target magnitude 0.5, so 4 slices per axis
	if len(pieces) != 16 {
		t.Fatalf("expected 16 pieces, got %d", len(pieces))
	}

	original := b.Polytope()
	loUnion := geom.Vector{math.Inf(1), math.Inf(1)}
	hiUnion := geom.Vector{math.Inf(-1), math.Inf(-1)}
	for _, piece := range pieces {
		for i := 0; i < piece.Size(); i++ {
			if m := piece.Magnitude(i); m > 0.5+1e-9 {
				t.Errorf("piece magnitude %f exceeds bound", m)
			}
		}
		ok, err := original.Contains(piece.Polytope(), 1e-9)
		if err != nil {
			t.Fatalf("containment failed: %v", err)
		}
		if !ok {
			t.Error("split piece escapes the original bundle")
		}
		lo, hi, err := piece.Polytope().BoundingBox()
		if err != nil {
			t.Fatalf("bounding box failed: %v", err)
		}
		for i := range lo {
			loUnion[i] = math.Min(loUnion[i], lo[i])
			hiUnion[i] = math.Max(hiUnion[i], hi[i])
		}
	}
	for i := range loUnion {
		if math.Abs(loUnion[i]+1) > 1e-9 || math.Abs(hiUnion[i]-1) > 1e-9 {
			t.Errorf("axis %d union is [%f,%f], expected [-1,1]", i, loUnion[i], hiUnion[i])
		}
	}
}

func TestSplitRejectsNonPositiveBound(t *testing.T) {
	b := boxBundle(1)
	expectPanic(t, "zero bound", func() { b.Split(0, 0.5) })
	expectPanic(t, "negative bound", func() { b.Split(-1, 0.5) })
}

func TestSplitNoopWithinBound(t *testing.T) {
	b := boxBundle(1)
	pieces := b.Split(10, DefaultSplitRatio)
	if len(pieces) != 1 {
		t.Fatalf("expected a single piece, got %d", len(pieces))
	}
	for i := range b.OffsetPlus() {
		if pieces[0].OffsetPlus()[i] != b.OffsetPlus()[i] ||
			pieces[0].OffsetMinus()[i] != b.OffsetMinus()[i] {
			t.Error("no-op split changed offsets")
		}
	}
}

func TestDecomposeNeverWorse(t *testing.T) {
	// Template uses the near-parallel diagonal pair; plenty of room to
	// improve toward the orthogonal axis pair.
	b := New(
		geom.Matrix{{1, 0}, {0, 1}, {1, 0.1}},
		geom.Vector{1, 1, 1.2},
		geom.Vector{1, 1, 1.2},
		[][]int{{0, 2}},
	)
	dists := b.offsetDistances()
	before := b.templateScore(b.Template(), dists, 0.5)

	improved := b.Decompose(0.5, 200)
	after := improved.templateScore(improved.Template(), dists, 0.5)

	if after > before+1e-12 {
		t.Errorf("decompose made the score worse: %f -> %f", before, after)
	}
	for i := range b.OffsetPlus() {
		if improved.OffsetPlus()[i] != b.OffsetPlus()[i] {
			t.Error("decompose changed offsets")
		}
	}
}

func TestDecomposeRejectsDegenerateRows(t *testing.T) {
	b := New(
		geom.Matrix{{1, 0}, {0, 1}, {2, 0}},
		geom.Vector{1, 1, 2},
		geom.Vector{1, 1, 2},
		[][]int{{0, 1}},
	)
	if b.templateIsValid([][]int{{0, 2}}) {
		t.Error("singular row accepted")
	}
	if b.templateIsValid([][]int{{0, 1}, {1, 0}}) {
		t.Error("permuted duplicate row accepted")
	}
	if !b.templateIsValid([][]int{{0, 1}, {1, 2}}) {
		t.Error("valid template rejected")
	}
}
