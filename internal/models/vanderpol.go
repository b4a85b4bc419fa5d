package models

import (
	"github.com/san-kum/reachset/internal/bundle"
	"github.com/san-kum/reachset/internal/dynamics"
	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/reach"
	"github.com/san-kum/reachset/internal/sym"
)

// Van der Pol oscillator, explicit-Euler discretized:
//
//	x' = x + y*dt
//	y' = y + (mu*(1 - x^2)*y - x)*dt
func NewVanDerPol() *Model {
	const (
		mu = 1.0
		dt = 0.02
	)
	x, y := sym.Var("x"), sym.Var("y")

	damping := sym.Constant(1).Sub(x.Pow(2)).Mul(y).Scale(mu)

	sys, err := dynamics.New(
		[]sym.Symbol{"x", "y"}, nil,
		[]sym.Expression{
			x.Add(y.Scale(dt)),
			y.Add(damping.Sub(x).Scale(dt)),
		},
	)
	if err != nil {
		panic(err)
	}

	initial := bundle.New(
		geom.Matrix{{1, 0}, {0, 1}},
		geom.Vector{2.05, 0.05},
		geom.Vector{-1.95, 0.05},
		[][]int{{0, 1}},
	)

	return &Model{
		Name:        "vanderpol",
		Description: "Van der Pol oscillator",
		System:      sys,
		Initial:     initial,
		Defaults: reach.Options{
			Steps:        50,
			Mode:         bundle.AFO,
			MaxMagnitude: 0.5,
		},
	}
}
