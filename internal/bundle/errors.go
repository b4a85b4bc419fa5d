package bundle

import "errors"

// Domain errors for bundle operations.
var (
	// ErrSingularBasis indicates a template row whose directions do not
	// form an invertible basis.
	ErrSingularBasis = errors.New("bundle: template row directions are not a basis")

	// ErrNotClosed indicates a Bernstein coefficient that still holds
	// free symbols where a numeric value was required.
	ErrNotClosed = errors.New("bundle: coefficient is not closed (free symbols remain)")

	// ErrNonAffineParam indicates dynamics that are not affine in the
	// declared parameters, which the LP-based parametric bound cannot
	// handle.
	ErrNonAffineParam = errors.New("bundle: coefficient is not affine in the parameters")
)
