// Package bundle implements parallelotope bundles, the geometric
// abstraction at the heart of the reachability engine.
//
// A [Bundle] is a set of directions with upper and lower offsets plus a
// template matrix selecting which direction subsets form parallelotopes;
// the denoted set is the intersection of those parallelotopes. The
// package provides:
//
//   - [Bundle.Parallelotope]: the derived view for one template row
//   - [Bundle.Canonical]: offset tightening against the bundle's own polytope
//   - [Bundle.Split]: covering by sub-bundles with bounded magnitude
//   - [Bundle.Decompose]: randomized local search over templates
//   - [Bundle.Transform]: Bernstein-coefficient image computation under
//     polynomial dynamics, data-parallel across template rows
//
// Bundles are immutable after construction; every operation returns a
// new value.
package bundle
