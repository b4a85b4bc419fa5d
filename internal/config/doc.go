// Package config loads and saves reachability problems as YAML files.
//
// A problem file declares the dynamical system (variables, parameters,
// polynomials as term lists), the initial bundle (directions, offsets,
// template), optional assumptions and parameter polytope, and the run
// options. Build turns a validated problem into the runtime objects.
package config
