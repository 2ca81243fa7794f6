// Package reserve holds the integer arithmetic behind sovereign coin
// collateral: the rating-adjusted reserve requirement and the interest
// rate passed through from bond holdings.
package reserve

import "fmt"

const (
	// BasisPointMax is 100% expressed in basis points.
	BasisPointMax = 10_000

	// MinBondRating and MaxBondRating bound the rating ordinal (1 safest, 10 riskiest).
	MinBondRating = 1
	MaxBondRating = 10
)

// ValidRating reports whether ordinal is a known bond rating.
func ValidRating(ordinal uint8) bool {
	return ordinal >= MinBondRating && ordinal <= MaxBondRating
}

// CalculateRequiredReserve returns the fiat reserve requirement in basis
// points for a coin backed by a bond of the given rating ordinal:
//
//	adjustment = (ordinal-1) * numerator * 10000 / denominator
//	reserve    = baseBps + adjustment / 10000
//
// Both divisions truncate, in that order.
func CalculateRequiredReserve(baseBps uint16, ordinal, numerator, denominator uint8) (uint16, error) {
	if baseBps > BasisPointMax {
		return 0, fmt.Errorf("%w: base %d bps", ErrInvalidReservePercentage, baseBps)
	}
	if !ValidRating(ordinal) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBondRating, ordinal)
	}
	if denominator == 0 {
		return 0, ErrInvalidReserveRatio
	}

	adjustment := uint64(ordinal-1) * uint64(numerator) * BasisPointMax / uint64(denominator)
	total := uint64(baseBps) + adjustment/BasisPointMax
	if total > BasisPointMax {
		return 0, fmt.Errorf("%w: computed %d bps", ErrInvalidReservePercentage, total)
	}
	return uint16(total), nil
}
