package models

import (
	"github.com/san-kum/reachset/internal/bundle"
	"github.com/san-kum/reachset/internal/dynamics"
	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/reach"
	"github.com/san-kum/reachset/internal/sym"
)

// Lotka-Volterra predator-prey dynamics, explicit-Euler discretized:
//
//	x' = x + (a*x - b*x*y)*dt
//	y' = y + (c*x*y - d*y)*dt
func NewLotkaVolterra() *Model {
	const (
		a, b = 1.5, 1.0
		c, d = 1.0, 3.0
		dt   = 0.02
	)
	x, y := sym.Var("x"), sym.Var("y")

	sys, err := dynamics.New(
		[]sym.Symbol{"x", "y"}, nil,
		[]sym.Expression{
			x.Add(x.Scale(a).Sub(x.Mul(y).Scale(b)).Scale(dt)),
			y.Add(x.Mul(y).Scale(c).Sub(y.Scale(d)).Scale(dt)),
		},
	)
	if err != nil {
		panic(err)
	}

	// box around (1, 1) plus the diagonal direction for a tighter bundle
	initial := bundle.New(
		geom.Matrix{{1, 0}, {0, 1}, {1, 1}},
		geom.Vector{1.05, 1.05, 2.10},
		geom.Vector{-0.95, -0.95, -1.90},
		[][]int{{0, 1}, {0, 2}, {1, 2}},
	)

	return &Model{
		Name:        "lotka",
		Description: "Lotka-Volterra predator-prey",
		System:      sys,
		Initial:     initial,
		Defaults: reach.Options{
			Steps: 50,
			Mode:  bundle.AFO,
		},
	}
}
