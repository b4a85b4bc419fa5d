// Package polytope represents convex half-space systems {x : A x <= b}
// and the linear-programming queries the reachability core needs over
// them: support-function optimization, emptiness, containment,
// intersection, and axis-aligned bounding boxes.
//
// Optimization is backed by gonum's simplex implementation. The three
// solver outcomes surface as: a value with nil error (optimum
// available), [ErrEmpty] (infeasible system), or [ErrUnbounded].
package polytope
