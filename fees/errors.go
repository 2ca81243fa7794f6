package fees

import "errors"

var (
	// ErrInvalidTransferFee indicates a transfer fee above 10000 bps.
	ErrInvalidTransferFee = errors.New("fees: invalid transfer fee")

	// ErrNoTokenAccountsToHarvest indicates no supplied account belongs to the mint.
	ErrNoTokenAccountsToHarvest = errors.New("fees: no token accounts to harvest")
)
