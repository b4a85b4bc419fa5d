package sym

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrFreeSymbols indicates numeric evaluation of an expression that
	// still contains symbols.
	ErrFreeSymbols = errors.New("sym: expression has free symbols")

	// ErrNotAffine indicates an affine decomposition of an expression
	// with degree above one in the requested symbols.
	ErrNotAffine = errors.New("sym: expression is not affine in the given symbols")
)

// Symbol is a named indeterminate.
type Symbol string

type term struct {
	coeff  float64
	powers map[Symbol]int
}

func (t term) key() string {
	if len(t.powers) == 0 {
		return ""
	}
	syms := make([]string, 0, len(t.powers))
	for s := range t.powers {
		syms = append(syms, string(s))
	}
	sort.Strings(syms)
	var b strings.Builder
	for _, s := range syms {
		fmt.Fprintf(&b, "%s^%d;", s, t.powers[Symbol(s)])
	}
	return b.String()
}

func (t term) clone() term {
	p := make(map[Symbol]int, len(t.powers))
	for s, e := range t.powers {
		p[s] = e
	}
	return term{coeff: t.coeff, powers: p}
}

// Expression is a sparse multivariate polynomial with float64
// coefficients.
type Expression struct {
	terms map[string]term
}

// Zero returns the zero polynomial.
func Zero() Expression {
	return Expression{terms: map[string]term{}}
}

// Constant returns the constant polynomial c.
func Constant(c float64) Expression {
	e := Zero()
	e.addTerm(term{coeff: c, powers: map[Symbol]int{}})
	return e
}

// Var returns the degree-one monomial s.
func Var(s Symbol) Expression {
	e := Zero()
	e.addTerm(term{coeff: 1, powers: map[Symbol]int{s: 1}})
	return e
}

// Term returns coeff * prod(s^powers[s]). Zero exponents are dropped.
func Term(coeff float64, powers map[Symbol]int) Expression {
	p := make(map[Symbol]int, len(powers))
	for s, exp := range powers {
		if exp > 0 {
			p[s] = exp
		}
	}
	e := Zero()
	e.addTerm(term{coeff: coeff, powers: p})
	return e
}

func (e *Expression) addTerm(t term) {
	if t.coeff == 0 {
		return
	}
	k := t.key()
	if existing, ok := e.terms[k]; ok {
		existing.coeff += t.coeff
		if existing.coeff == 0 {
			delete(e.terms, k)
		} else {
			e.terms[k] = existing
		}
		return
	}
	e.terms[k] = t.clone()
}

func (e Expression) Add(other Expression) Expression {
	result := Zero()
	for _, t := range e.terms {
		result.addTerm(t)
	}
	for _, t := range other.terms {
		result.addTerm(t)
	}
	return result
}

func (e Expression) Sub(other Expression) Expression {
	return e.Add(other.Neg())
}

func (e Expression) Neg() Expression {
	return e.Scale(-1)
}

func (e Expression) Scale(factor float64) Expression {
	result := Zero()
	for _, t := range e.terms {
		result.addTerm(term{coeff: t.coeff * factor, powers: t.powers})
	}
	return result
}

func (e Expression) Mul(other Expression) Expression {
	result := Zero()
	for _, t1 := range e.terms {
		for _, t2 := range other.terms {
			powers := make(map[Symbol]int, len(t1.powers)+len(t2.powers))
			for s, exp := range t1.powers {
				powers[s] = exp
			}
			for s, exp := range t2.powers {
				powers[s] += exp
			}
			result.addTerm(term{coeff: t1.coeff * t2.coeff, powers: powers})
		}
	}
	return result
}

func (e Expression) Pow(n int) Expression {
	result := Constant(1)
	for i := 0; i < n; i++ {
		result = result.Mul(e)
	}
	return result
}

// IsZero reports whether e is the zero polynomial.
func (e Expression) IsZero() bool {
	return len(e.terms) == 0
}

// Symbols returns the symbols occurring in e, sorted by name.
func (e Expression) Symbols() []Symbol {
	seen := map[Symbol]bool{}
	for _, t := range e.terms {
		for s := range t.powers {
			seen[s] = true
		}
	}
	syms := make([]Symbol, 0, len(seen))
	for s := range seen {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

// DegreeIn returns the maximal exponent of s across the terms of e.
func (e Expression) DegreeIn(s Symbol) int {
	deg := 0
	for _, t := range e.terms {
		if exp := t.powers[s]; exp > deg {
			deg = exp
		}
	}
	return deg
}

// Replace substitutes expressions for symbols and expands the result.
func (e Expression) Replace(subs map[Symbol]Expression) Expression {
	result := Zero()
	for _, t := range e.terms {
		factor := Constant(t.coeff)
		for s, exp := range t.powers {
			if repl, ok := subs[s]; ok {
				factor = factor.Mul(repl.Pow(exp))
			} else {
				factor = factor.Mul(Var(s).Pow(exp))
			}
		}
		result = result.Add(factor)
	}
	return result
}

// Eval evaluates a closed expression. It fails with ErrFreeSymbols when
// symbols remain.
func (e Expression) Eval() (float64, error) {
	sum := 0.0
	for _, t := range e.terms {
		if len(t.powers) > 0 {
			return 0, ErrFreeSymbols
		}
		sum += t.coeff
	}
	return sum, nil
}

// Linear decomposes an expression affine in syms into a constant part
// and one coefficient per symbol. Symbols outside syms or exponents
// above one make the decomposition fail with ErrNotAffine.
func (e Expression) Linear(syms []Symbol) (float64, []float64, error) {
	index := make(map[Symbol]int, len(syms))
	for i, s := range syms {
		index[s] = i
	}
	c0 := 0.0
	coeffs := make([]float64, len(syms))
	for _, t := range e.terms {
		switch len(t.powers) {
		case 0:
			c0 += t.coeff
		case 1:
			for s, exp := range t.powers {
				i, ok := index[s]
				if !ok || exp > 1 {
					return 0, nil, ErrNotAffine
				}
				coeffs[i] += t.coeff
			}
		default:
			return 0, nil, ErrNotAffine
		}
	}
	return c0, coeffs, nil
}

// String renders the polynomial with terms in key order, for debugging
// and error messages.
func (e Expression) String() string {
	if e.IsZero() {
		return "0"
	}
	keys := make([]string, 0, len(e.terms))
	for k := range e.terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		t := e.terms[k]
		if k == "" {
			parts = append(parts, fmt.Sprintf("%g", t.coeff))
			continue
		}
		mono := strings.ReplaceAll(k, "^1;", ";")
		mono = strings.TrimSuffix(strings.ReplaceAll(mono, ";", "*"), "*")
		parts = append(parts, fmt.Sprintf("%g*%s", t.coeff, mono))
	}
	return strings.Join(parts, " + ")
}
