package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/reachset/internal/bundle"
	"github.com/san-kum/reachset/internal/dynamics"
	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/polytope"
	"github.com/san-kum/reachset/internal/reach"
	"github.com/san-kum/reachset/internal/sym"
)

const (
	DefaultSteps      = 20
	DefaultMode       = "afo"
	DefaultSplitRatio = 0.75
)

// TermConfig is one monomial: coeff * prod(var^power).
type TermConfig struct {
	Coeff  float64        `yaml:"coeff"`
	Powers map[string]int `yaml:"powers,omitempty"`
}

// PolytopeConfig is a constraint system A*x <= b.
type PolytopeConfig struct {
	A [][]float64 `yaml:"a"`
	B []float64   `yaml:"b"`
}

type BundleConfig struct {
	Directions  [][]float64 `yaml:"directions"`
	OffsetPlus  []float64   `yaml:"offset_plus"`
	OffsetMinus []float64   `yaml:"offset_minus"`
	Template    [][]int     `yaml:"template"`

	AssumeDirections [][]float64 `yaml:"assume_directions,omitempty"`
	AssumeOffsets    []float64   `yaml:"assume_offsets,omitempty"`
}

type OptionsConfig struct {
	Steps            int     `yaml:"steps"`
	Mode             string  `yaml:"mode"`
	MaxMagnitude     float64 `yaml:"max_magnitude,omitempty"`
	SplitRatio       float64 `yaml:"split_ratio,omitempty"`
	DecompWeight     float64 `yaml:"decomp_weight,omitempty"`
	DecompIterations int     `yaml:"decomp_iterations,omitempty"`
	MaxBundles       int     `yaml:"max_bundles,omitempty"`
}

// Problem is the on-disk form of a reachability run.
type Problem struct {
	Name     string                  `yaml:"name"`
	Vars     []string                `yaml:"vars"`
	Params   []string                `yaml:"params,omitempty"`
	Dynamics map[string][]TermConfig `yaml:"dynamics"`
	Initial  BundleConfig            `yaml:"initial"`
	ParamSet *PolytopeConfig         `yaml:"param_set,omitempty"`
	Options  OptionsConfig           `yaml:"options"`
}

func DefaultProblem() *Problem {
	return &Problem{
		Options: OptionsConfig{
			Steps:      DefaultSteps,
			Mode:       DefaultMode,
			SplitRatio: DefaultSplitRatio,
		},
	}
}

func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := DefaultProblem()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

func Save(path string, p *Problem) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ParseMode maps the config spelling onto a transform mode.
func ParseMode(s string) (bundle.Mode, error) {
	switch strings.ToLower(s) {
	case "ofo", "":
		return bundle.OFO, nil
	case "afo":
		return bundle.AFO, nil
	default:
		return 0, fmt.Errorf("config: unknown transform mode %q", s)
	}
}

// Validate checks the structural consistency of the problem before any
// runtime object is built.
func (p *Problem) Validate() error {
	n := len(p.Vars)
	if n == 0 {
		return fmt.Errorf("config: no variables declared")
	}
	if len(p.Dynamics) != n {
		return fmt.Errorf("config: %d variables but %d dynamics entries", n, len(p.Dynamics))
	}
	for _, v := range p.Vars {
		terms, ok := p.Dynamics[v]
		if !ok {
			return fmt.Errorf("config: no dynamics for variable %q", v)
		}
		for i, t := range terms {
			for name, pow := range t.Powers {
				if pow < 0 {
					return fmt.Errorf("config: dynamics for %q, term %d: negative power %d on %q (polynomials only)",
						v, i, pow, name)
				}
			}
		}
	}

	init := p.Initial
	if len(init.Directions) == 0 {
		return fmt.Errorf("config: initial bundle has no directions")
	}
	for i, d := range init.Directions {
		if len(d) != n {
			return fmt.Errorf("config: direction %d has %d entries, want %d", i, len(d), n)
		}
	}
	if len(init.OffsetPlus) != len(init.Directions) || len(init.OffsetMinus) != len(init.Directions) {
		return fmt.Errorf("config: offsets must match the %d directions", len(init.Directions))
	}
	if len(init.Template) == 0 {
		return fmt.Errorf("config: initial bundle has no template rows")
	}
	for i, row := range init.Template {
		if len(row) != n {
			return fmt.Errorf("config: template row %d has %d indices, want %d", i, len(row), n)
		}
		for _, idx := range row {
			if idx < 0 || idx >= len(init.Directions) {
				return fmt.Errorf("config: template row %d references direction %d", i, idx)
			}
		}
	}
	if len(init.AssumeDirections) != len(init.AssumeOffsets) {
		return fmt.Errorf("config: %d assumption directions but %d offsets",
			len(init.AssumeDirections), len(init.AssumeOffsets))
	}

	if len(p.Params) > 0 {
		if p.ParamSet == nil {
			return fmt.Errorf("config: parameters declared without a param_set polytope")
		}
		if len(p.ParamSet.A) != len(p.ParamSet.B) {
			return fmt.Errorf("config: param_set has %d rows but %d offsets",
				len(p.ParamSet.A), len(p.ParamSet.B))
		}
		for i, row := range p.ParamSet.A {
			if len(row) != len(p.Params) {
				return fmt.Errorf("config: param_set row %d has %d entries, want %d",
					i, len(row), len(p.Params))
			}
		}
	}

	if _, err := ParseMode(p.Options.Mode); err != nil {
		return err
	}
	if p.Options.Steps <= 0 {
		return fmt.Errorf("config: steps must be positive")
	}
	return nil
}

// Build turns the problem into runtime objects. The returned polytope is
// nil for non-parametric problems.
func (p *Problem) Build() (*dynamics.System, *bundle.Bundle, *polytope.Polytope, reach.Options, error) {
	var opts reach.Options
	if err := p.Validate(); err != nil {
		return nil, nil, nil, opts, err
	}

	vars := make([]sym.Symbol, len(p.Vars))
	for i, v := range p.Vars {
		vars[i] = sym.Symbol(v)
	}
	params := make([]sym.Symbol, len(p.Params))
	for i, v := range p.Params {
		params[i] = sym.Symbol(v)
	}

	polys := make([]sym.Expression, len(vars))
	for i, v := range p.Vars {
		polys[i] = buildExpression(p.Dynamics[v])
	}

	sys, err := dynamics.New(vars, params, polys)
	if err != nil {
		return nil, nil, nil, opts, err
	}

	init, err := buildBundle(p.Initial)
	if err != nil {
		return nil, nil, nil, opts, err
	}

	var paramSet *polytope.Polytope
	if p.ParamSet != nil {
		paramSet, err = polytope.New(matrixOf(p.ParamSet.A), geom.Vector(p.ParamSet.B).Clone())
		if err != nil {
			return nil, nil, nil, opts, err
		}
	}

	mode, err := ParseMode(p.Options.Mode)
	if err != nil {
		return nil, nil, nil, opts, err
	}
	opts = reach.Options{
		Steps:            p.Options.Steps,
		Mode:             mode,
		MaxMagnitude:     p.Options.MaxMagnitude,
		SplitRatio:       p.Options.SplitRatio,
		DecompWeight:     p.Options.DecompWeight,
		DecompIterations: p.Options.DecompIterations,
		MaxBundles:       p.Options.MaxBundles,
	}
	return sys, init, paramSet, opts, nil
}

func buildExpression(terms []TermConfig) sym.Expression {
	e := sym.Zero()
	for _, t := range terms {
		powers := make(map[sym.Symbol]int, len(t.Powers))
		for name, p := range t.Powers {
			powers[sym.Symbol(name)] = p
		}
		e = e.Add(sym.Term(t.Coeff, powers))
	}
	return e
}

// buildBundle recovers the constructor panics into errors so a bad file
// cannot take the process down.
func buildBundle(c BundleConfig) (b *bundle.Bundle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("config: invalid initial bundle: %v", r)
		}
	}()
	var assumeDirs geom.Matrix
	if len(c.AssumeDirections) > 0 {
		assumeDirs = matrixOf(c.AssumeDirections)
	}
	b = bundle.NewWithAssumptions(
		matrixOf(c.Directions),
		geom.Vector(c.OffsetPlus).Clone(),
		geom.Vector(c.OffsetMinus).Clone(),
		cloneTemplate(c.Template),
		assumeDirs,
		geom.Vector(c.AssumeOffsets).Clone(),
	)
	return b, nil
}

func matrixOf(rows [][]float64) geom.Matrix {
	m := make(geom.Matrix, len(rows))
	for i, r := range rows {
		m[i] = geom.Vector(r).Clone()
	}
	return m
}

func cloneTemplate(t [][]int) [][]int {
	out := make([][]int, len(t))
	for i, row := range t {
		out[i] = append([]int(nil), row...)
	}
	return out
}
