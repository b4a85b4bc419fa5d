// Package sym implements the symbolic polynomial algebra needed by the
// reachability core: sparse multivariate polynomials over named symbols,
// substitution, numeric evaluation, affine decomposition, and conversion
// of a polynomial to its Bernstein coefficients over the unit box.
//
// Expressions are immutable; every operation returns a new value.
package sym
