package models

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/reachset/internal/reach"
)

func TestRegistryResolvesAllModels(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.List() {
		m, err := r.Get(name)
		if err != nil {
			t.Fatalf("get %s failed: %v", name, err)
		}
		if m.System.Dim() != m.Initial.Dim() {
			t.Errorf("%s: system dimension %d but initial bundle dimension %d",
				name, m.System.Dim(), m.Initial.Dim())
		}
		if m.ParamSet == nil && m.System.IsParametric() {
			t.Errorf("%s: parametric system without parameter polytope", name)
		}
		if m.Defaults.Steps <= 0 {
			t.Errorf("%s: no default step count", name)
		}
	}
}

func TestRegistryUnknownModel(t *testing.T) {
	if _, err := NewRegistry().Get("nope"); err == nil {
		t.Error("expected unknown-model error")
	}
}

func TestModelsRunOneStep(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.List() {
		m, err := r.Get(name)
		if err != nil {
			t.Fatalf("get %s failed: %v", name, err)
		}

		opts := m.Defaults
		opts.Steps = 1

		var pipe *reach.Flowpipe
		if m.ParamSet != nil {
			pipe, err = reach.ReachParam(context.Background(), m.System, m.Initial, m.ParamSet, opts)
		} else {
			pipe, err = reach.Reach(context.Background(), m.System, m.Initial, opts)
		}
		if err != nil {
			t.Fatalf("%s: one-step reach failed: %v", name, err)
		}
		if len(pipe.Steps) != 2 {
			t.Fatalf("%s: expected 2 snapshots, got %d", name, len(pipe.Steps))
		}
		for _, s := range pipe.Steps {
			for i := range s.BoxLo {
				if math.IsNaN(s.BoxLo[i]) || math.IsNaN(s.BoxHi[i]) || s.BoxLo[i] > s.BoxHi[i]+1e-9 {
					t.Errorf("%s: bad bounds at step %d axis %d: [%f, %f]",
						name, s.Step, i, s.BoxLo[i], s.BoxHi[i])
				}
			}
		}
	}
}

func TestSIRConservesPopulation(t *testing.T) {
	m := NewSIR()
	pipe, err := reach.Reach(context.Background(), m.System, m.Initial, reach.Options{
		Steps: 5, Mode: m.Defaults.Mode,
	})
	if err != nil {
		t.Fatalf("reach failed: %v", err)
	}
	// s+i+r is invariant under the dynamics; the over-approximation may
	// widen but must keep covering the invariant total ~0.99.
	final := pipe.Steps[len(pipe.Steps)-1]
	total := 0.0
	for i := range final.BoxHi {
		total += final.BoxHi[i]
	}
	if total < 0.98 {
		t.Errorf("upper bounds sum %f cannot cover the invariant total", total)
	}
}
