package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/reachset/internal/bundle"
	"github.com/san-kum/reachset/internal/dynamics"
	"github.com/san-kum/reachset/internal/polytope"
	"github.com/san-kum/reachset/internal/reach"
)

// Model packages a system, its initial set, and run defaults.
type Model struct {
	Name        string
	Description string
	System      *dynamics.System
	Initial     *bundle.Bundle

	// ParamSet is the admissible parameter polytope; nil for
	// non-parametric models.
	ParamSet *polytope.Polytope

	Defaults reach.Options
}

// Registry resolves models by name.
type Registry struct {
	models map[string]func() *Model
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]func() *Model)}

	r.models["sir"] = NewSIR
	r.models["sir-param"] = NewSIRParam
	r.models["lotka"] = NewLotkaVolterra
	r.models["vanderpol"] = NewVanDerPol
	r.models["rossler"] = NewRossler
	r.models["quadratic"] = NewQuadratic

	return r
}

func (r *Registry) Get(name string) (*Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
