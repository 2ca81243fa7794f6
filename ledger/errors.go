package ledger

import "errors"

var (
	// ErrMintExists indicates a mint already exists at the address.
	ErrMintExists = errors.New("ledger: mint already exists")

	// ErrMintNotFound indicates the mint does not exist.
	ErrMintNotFound = errors.New("ledger: mint not found")

	// ErrAccountExists indicates a different token account already occupies the address.
	ErrAccountExists = errors.New("ledger: token account already exists")

	// ErrAccountNotFound indicates the token account does not exist.
	ErrAccountNotFound = errors.New("ledger: token account not found")

	// ErrMintMismatch indicates a token account belongs to a different mint.
	ErrMintMismatch = errors.New("ledger: token account mint mismatch")

	// ErrInsufficientFunds indicates a balance too small for the debit.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrOwnerMismatch indicates the signer is not the account owner or mint authority.
	ErrOwnerMismatch = errors.New("ledger: owner or authority mismatch")

	// ErrNoInterestExtension indicates the mint lacks the interest-accrual extension.
	ErrNoInterestExtension = errors.New("ledger: mint has no interest-bearing extension")

	// ErrNoTransferFeeExtension indicates the mint lacks the fee-withholding extension.
	ErrNoTransferFeeExtension = errors.New("ledger: mint has no transfer fee extension")

	// ErrMetadataExists indicates metadata was already published for the mint.
	ErrMetadataExists = errors.New("ledger: metadata already registered")

	// ErrMetadataNotFound indicates no metadata was published for the mint.
	ErrMetadataNotFound = errors.New("ledger: metadata not found")

	// ErrOverflow indicates an amount would exceed 64 bits.
	ErrOverflow = errors.New("ledger: amount overflow")
)
