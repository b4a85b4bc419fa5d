package models

import (
	"github.com/san-kum/reachset/internal/bundle"
	"github.com/san-kum/reachset/internal/dynamics"
	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/polytope"
	"github.com/san-kum/reachset/internal/reach"
	"github.com/san-kum/reachset/internal/sym"
)

// SIR epidemic model, explicit-Euler discretized:
//
//	s' = s - beta*s*i*dt
//	i' = i + (beta*s*i - gamma*i)*dt
//	r' = r + gamma*i*dt
//
// Initial set: s in [0.79, 0.80], i in [0.19, 0.20], r = 0.
const (
	sirBeta  = 0.34
	sirGamma = 0.05
	sirDt    = 0.5
)

func sirPolynomials(beta sym.Expression) []sym.Expression {
	s, i, r := sym.Var("s"), sym.Var("i"), sym.Var("r")
	infect := beta.Mul(s).Mul(i).Scale(sirDt)
	recover := i.Scale(sirGamma * sirDt)

	return []sym.Expression{
		s.Sub(infect),
		i.Add(infect).Sub(recover),
		r.Add(recover),
	}
}

func sirInitial() *bundle.Bundle {
	return bundle.New(
		geom.Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		geom.Vector{0.80, 0.20, 0},
		geom.Vector{-0.79, -0.19, 0},
		[][]int{{0, 1, 2}},
	)
}

func NewSIR() *Model {
	sys, err := dynamics.New(
		[]sym.Symbol{"s", "i", "r"}, nil,
		sirPolynomials(sym.Constant(sirBeta)),
	)
	if err != nil {
		panic(err)
	}
	return &Model{
		Name:        "sir",
		Description: "SIR epidemic (fixed contact rate)",
		System:      sys,
		Initial:     sirInitial(),
		Defaults: reach.Options{
			Steps: 30,
			Mode:  bundle.AFO,
		},
	}
}

// NewSIRParam is the SIR model with the contact rate as an uncertain
// parameter beta in [0.33, 0.35]; the dynamics stay affine in beta, as
// the parametric transform requires.
func NewSIRParam() *Model {
	sys, err := dynamics.New(
		[]sym.Symbol{"s", "i", "r"},
		[]sym.Symbol{"beta"},
		sirPolynomials(sym.Var("beta")),
	)
	if err != nil {
		panic(err)
	}
	paramSet, err := polytope.New(geom.Matrix{{1}, {-1}}, geom.Vector{0.35, -0.33})
	if err != nil {
		panic(err)
	}
	return &Model{
		Name:        "sir-param",
		Description: "SIR epidemic (uncertain contact rate)",
		System:      sys,
		Initial:     sirInitial(),
		ParamSet:    paramSet,
		Defaults: reach.Options{
			Steps: 30,
			Mode:  bundle.AFO,
		},
	}
}
