package reach

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/reachset/internal/bundle"
	"github.com/san-kum/reachset/internal/dynamics"
	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/polytope"
)

// ErrSetBecameEmpty indicates the reachable set collapsed to the empty
// set; a legitimate terminal outcome, reported with the step at which
// it happened.
var ErrSetBecameEmpty = errors.New("reach: reachable set became empty")

// Options tunes a reachability run.
type Options struct {
	// Steps is the number of transform steps.
	Steps int

	// Mode selects bundle.OFO or bundle.AFO.
	Mode bundle.Mode

	// MaxMagnitude bounds direction magnitudes; bundles exceeding it
	// are split. Zero disables splitting.
	MaxMagnitude float64

	// SplitRatio is the per-slice fraction of MaxMagnitude; zero uses
	// bundle.DefaultSplitRatio.
	SplitRatio float64

	// DecompWeight and DecompIterations enable template re-optimization
	// between steps when DecompIterations > 0.
	DecompWeight     float64
	DecompIterations int

	// MaxBundles aborts runs whose split fan-out explodes. Zero means
	// the DefaultMaxBundles cap.
	MaxBundles int
}

const DefaultMaxBundles = 256

// StepResult is one flowpipe snapshot: the union of the bundles alive
// after one step.
type StepResult struct {
	Step    int
	Bundles []*bundle.Bundle

	// BoxLo/BoxHi bound the union, per state variable.
	BoxLo geom.Vector
	BoxHi geom.Vector
}

// Flowpipe is the sequence of per-step reachable-set snapshots,
// step 0 being the initial set.
type Flowpipe struct {
	Vars  []string
	Steps []StepResult
}

// Reach runs reachability for non-parametric dynamics.
func Reach(ctx context.Context, sys *dynamics.System, init *bundle.Bundle, opts Options) (*Flowpipe, error) {
	return run(ctx, sys, init, opts, func(b *bundle.Bundle) (*bundle.Bundle, error) {
		return b.Transform(sys.Vars, sys.Polynomials, opts.Mode)
	})
}

// ReachParam runs reachability for parametric dynamics over an
// admissible parameter polytope; the resulting flowpipe is sound for
// every admissible parameter value.
func ReachParam(ctx context.Context, sys *dynamics.System, init *bundle.Bundle,
	paramSet *polytope.Polytope, opts Options) (*Flowpipe, error) {
	if len(sys.Params) == 0 {
		return nil, fmt.Errorf("reach: parametric run without parameters")
	}
	if paramSet.Dim() != len(sys.Params) {
		return nil, fmt.Errorf("reach: parameter polytope has dimension %d, expected %d",
			paramSet.Dim(), len(sys.Params))
	}
	return run(ctx, sys, init, opts, func(b *bundle.Bundle) (*bundle.Bundle, error) {
		return b.TransformParam(sys.Vars, sys.Params, sys.Polynomials, paramSet, opts.Mode)
	})
}

func run(ctx context.Context, sys *dynamics.System, init *bundle.Bundle, opts Options,
	step func(*bundle.Bundle) (*bundle.Bundle, error)) (*Flowpipe, error) {

	if opts.Steps <= 0 {
		return nil, fmt.Errorf("reach: steps must be positive, got %d", opts.Steps)
	}
	if init.Dim() != sys.Dim() {
		return nil, fmt.Errorf("reach: initial bundle dimension %d, system dimension %d",
			init.Dim(), sys.Dim())
	}
	maxBundles := opts.MaxBundles
	if maxBundles <= 0 {
		maxBundles = DefaultMaxBundles
	}

	vars := make([]string, len(sys.Vars))
	for i, v := range sys.Vars {
		vars[i] = string(v)
	}
	pipe := &Flowpipe{Vars: vars}

	// The magnitude bound holds for every bundle ever transformed, the
	// initial set included, so split it up front (ratio 1: the bound
	// itself is the slice target here).
	current := []*bundle.Bundle{init}
	if opts.MaxMagnitude > 0 {
		current = init.Split(opts.MaxMagnitude, 1.0)
		if len(current) > maxBundles {
			return pipe, fmt.Errorf("reach: initial split produced %d bundles, cap is %d", len(current), maxBundles)
		}
	}
	snapshot, err := snapshotOf(0, current)
	if err != nil {
		return pipe, err
	}
	pipe.Steps = append(pipe.Steps, snapshot)

	for i := 1; i <= opts.Steps; i++ {
		select {
		case <-ctx.Done():
			return pipe, ctx.Err()
		default:
		}

		next := make([]*bundle.Bundle, 0, len(current))
		for _, b := range current {
			img, err := step(b)
			if err != nil {
				if errors.Is(err, polytope.ErrEmpty) {
					return pipe, fmt.Errorf("%w at step %d", ErrSetBecameEmpty, i)
				}
				return pipe, fmt.Errorf("reach: step %d: %w", i, err)
			}
			if opts.DecompIterations > 0 {
				img = img.Decompose(opts.DecompWeight, opts.DecompIterations)
			}
			if opts.MaxMagnitude > 0 {
				next = append(next, img.Split(opts.MaxMagnitude, opts.SplitRatio)...)
			} else {
				next = append(next, img)
			}
		}
		if len(next) > maxBundles {
			return pipe, fmt.Errorf("reach: step %d produced %d bundles, cap is %d", i, len(next), maxBundles)
		}

		current = next
		snapshot, err := snapshotOf(i, current)
		if err != nil {
			if errors.Is(err, polytope.ErrEmpty) {
				return pipe, fmt.Errorf("%w at step %d", ErrSetBecameEmpty, i)
			}
			return pipe, err
		}
		pipe.Steps = append(pipe.Steps, snapshot)
	}

	return pipe, nil
}

func snapshotOf(step int, bundles []*bundle.Bundle) (StepResult, error) {
	dim := bundles[0].Dim()
	lo := make(geom.Vector, dim)
	hi := make(geom.Vector, dim)
	for i := range lo {
		lo[i] = math.Inf(1)
		hi[i] = math.Inf(-1)
	}
	for _, b := range bundles {
		blo, bhi, err := b.Polytope().BoundingBox()
		if err != nil {
			return StepResult{}, err
		}
		for i := range lo {
			lo[i] = math.Min(lo[i], blo[i])
			hi[i] = math.Max(hi[i], bhi[i])
		}
	}
	return StepResult{Step: step, Bundles: bundles, BoxLo: lo, BoxHi: hi}, nil
}

// Bounds extracts one variable's interval bounds across all steps,
// ready for plotting.
func (f *Flowpipe) Bounds(varIdx int) (lo, hi []float64) {
	lo = make([]float64, len(f.Steps))
	hi = make([]float64, len(f.Steps))
	for i, s := range f.Steps {
		lo[i] = s.BoxLo[varIdx]
		hi[i] = s.BoxHi[varIdx]
	}
	return lo, hi
}
