// Package models provides ready-made reachability problems: classic
// polynomial systems with their initial bundles and sensible run
// defaults.
//
//   - [NewSIR]: discretized SIR epidemic
//   - [NewSIRParam]: SIR with an uncertain contact rate
//   - [NewLotkaVolterra]: discretized predator-prey dynamics
//   - [NewVanDerPol]: discretized Van der Pol oscillator
//   - [NewRossler]: discretized Rossler attractor
//   - [NewQuadratic]: one-dimensional logistic map
//
// Use [Registry] to resolve models by name from the CLI.
package models
