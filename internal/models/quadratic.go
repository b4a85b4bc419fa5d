package models

import (
	"github.com/san-kum/reachset/internal/bundle"
	"github.com/san-kum/reachset/internal/dynamics"
	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/reach"
	"github.com/san-kum/reachset/internal/sym"
)

// Logistic-style quadratic map x' = a*x*(1 - x), the smallest
// interesting nonlinear benchmark.
func NewQuadratic() *Model {
	const a = 3.0
	x := sym.Var("x")

	sys, err := dynamics.New(
		[]sym.Symbol{"x"}, nil,
		[]sym.Expression{x.Mul(sym.Constant(1).Sub(x)).Scale(a)},
	)
	if err != nil {
		panic(err)
	}

	// x in [0.45, 0.55]
	initial := bundle.New(
		geom.Matrix{{1}},
		geom.Vector{0.55},
		geom.Vector{-0.45},
		[][]int{{0}},
	)

	return &Model{
		Name:        "quadratic",
		Description: "logistic quadratic map",
		System:      sys,
		Initial:     initial,
		Defaults: reach.Options{
			Steps: 10,
			Mode:  bundle.OFO,
		},
	}
}
