package models

import (
	"github.com/san-kum/reachset/internal/bundle"
	"github.com/san-kum/reachset/internal/dynamics"
	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/reach"
	"github.com/san-kum/reachset/internal/sym"
)

// Rossler attractor, explicit-Euler discretized:
//
//	x' = x + (-y - z)*dt
//	y' = y + (x + a*y)*dt
//	z' = z + (b + z*(x - c))*dt
func NewRossler() *Model {
	const (
		a, b, c = 0.1, 0.1, 14.0
		dt      = 0.025
	)
	x, y, z := sym.Var("x"), sym.Var("y"), sym.Var("z")

	sys, err := dynamics.New(
		[]sym.Symbol{"x", "y", "z"}, nil,
		[]sym.Expression{
			x.Add(y.Neg().Sub(z).Scale(dt)),
			y.Add(x.Add(y.Scale(a)).Scale(dt)),
			z.Add(sym.Constant(b).Add(z.Mul(x.Sub(sym.Constant(c)))).Scale(dt)),
		},
	)
	if err != nil {
		panic(err)
	}

	initial := bundle.New(
		geom.Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		geom.Vector{0.1, 4.9, 0.1},
		geom.Vector{0.1, -4.8, 0.1},
		[][]int{{0, 1, 2}},
	)

	return &Model{
		Name:        "rossler",
		Description: "Rossler attractor",
		System:      sys,
		Initial:     initial,
		Defaults: reach.Options{
			Steps:        25,
			Mode:         bundle.AFO,
			MaxMagnitude: 1.0,
		},
	}
}
