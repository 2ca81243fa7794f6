package yield

import "errors"

var (
	// ErrInvalidYieldDistribution indicates the shares do not sum to 10000 bps.
	ErrInvalidYieldDistribution = errors.New("yield: invalid yield distribution, shares must sum to 10000 bps")

	// ErrZeroAmount indicates there is nothing to distribute.
	ErrZeroAmount = errors.New("yield: zero amount")

	// ErrNoShares indicates the share list is empty.
	ErrNoShares = errors.New("yield: no shares")
)
