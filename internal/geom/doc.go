// Package geom provides the small linear-algebra vocabulary shared by
// the bundle and polytope packages:
//
//   - [Vector], [Matrix]: dense float64 rows
//   - [Angle], [OrthProx]: angular proximity between directions
//   - [Rank], [SolveSystem]: factorization queries on small dense systems
//   - permutation and membership helpers over index rows
//
// All operations are value-oriented; none mutate their receivers.
package geom
