// Package dynamics defines polynomial discrete-time systems: one update
// polynomial per state variable, optionally over a set of parameters.
package dynamics

import (
	"fmt"

	"github.com/san-kum/reachset/internal/sym"
)

// System is a discrete-time dynamical system x' = f(x, p) with
// polynomial f.
type System struct {
	Vars        []sym.Symbol
	Params      []sym.Symbol
	Polynomials []sym.Expression
}

// New validates that the system is square and that each polynomial only
// uses declared variables and parameters.
func New(vars, params []sym.Symbol, polynomials []sym.Expression) (*System, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("dynamics: no state variables")
	}
	if len(polynomials) != len(vars) {
		return nil, fmt.Errorf("dynamics: %d polynomials for %d variables", len(polynomials), len(vars))
	}

	declared := make(map[sym.Symbol]bool, len(vars)+len(params))
	for _, v := range vars {
		if declared[v] {
			return nil, fmt.Errorf("dynamics: variable %q declared twice", v)
		}
		declared[v] = true
	}
	for _, p := range params {
		if declared[p] {
			return nil, fmt.Errorf("dynamics: symbol %q declared twice", p)
		}
		declared[p] = true
	}

	for i, poly := range polynomials {
		for _, s := range poly.Symbols() {
			if !declared[s] {
				return nil, fmt.Errorf("dynamics: polynomial %d uses undeclared symbol %q", i, s)
			}
		}
	}

	return &System{Vars: vars, Params: params, Polynomials: polynomials}, nil
}

// Dim is the state dimension.
func (s *System) Dim() int { return len(s.Vars) }

// IsParametric reports whether any parameter symbol actually occurs in
// the dynamics.
func (s *System) IsParametric() bool {
	used := make(map[sym.Symbol]bool)
	for _, poly := range s.Polynomials {
		for _, symb := range poly.Symbols() {
			used[symb] = true
		}
	}
	for _, p := range s.Params {
		if used[p] {
			return true
		}
	}
	return false
}

// Substitute pins parameters to fixed values, returning a
// non-parametric system.
func (s *System) Substitute(values map[sym.Symbol]float64) (*System, error) {
	subs := make(map[sym.Symbol]sym.Expression, len(values))
	for p, v := range values {
		subs[p] = sym.Constant(v)
	}
	polys := make([]sym.Expression, len(s.Polynomials))
	for i, poly := range s.Polynomials {
		polys[i] = poly.Replace(subs)
	}
	return New(s.Vars, nil, polys)
}
