package reserve

import "errors"

var (
	// ErrInvalidReservePercentage indicates a base or computed reserve above 10000 bps.
	ErrInvalidReservePercentage = errors.New("reserve: invalid reserve percentage")

	// ErrInvalidBondRating indicates a bond rating ordinal outside [1, 10].
	ErrInvalidBondRating = errors.New("reserve: invalid bond rating")

	// ErrInvalidReserveRatio indicates a zero bond reserve denominator.
	ErrInvalidReserveRatio = errors.New("reserve: invalid bond reserve ratio")
)
