package coin

import "errors"

var (
	// ErrNameTooLong indicates the name exceeds MaxNameLen bytes.
	ErrNameTooLong = errors.New("coin: name too long")

	// ErrSymbolTooLong indicates the symbol exceeds MaxSymbolLen bytes.
	ErrSymbolTooLong = errors.New("coin: symbol too long")

	// ErrURITooLong indicates the URI exceeds MaxURILen bytes.
	ErrURITooLong = errors.New("coin: uri too long")

	// ErrInvalidSymbol indicates an empty symbol or one containing a zero byte.
	ErrInvalidSymbol = errors.New("coin: invalid symbol")

	// ErrInvalidText indicates a name or URI containing a zero byte.
	ErrInvalidText = errors.New("coin: text contains zero byte")

	// ErrInvalidPhase indicates a transition attempted out of order.
	ErrInvalidPhase = errors.New("coin: invalid setup phase")

	// ErrMintAlreadySet indicates the mint was already configured.
	ErrMintAlreadySet = errors.New("coin: mint already set")

	// ErrMintNotSet indicates an operation that needs a configured mint.
	ErrMintNotSet = errors.New("coin: mint not set")

	// ErrFiatReserveAlreadySet indicates the fiat reserve was already linked.
	ErrFiatReserveAlreadySet = errors.New("coin: fiat reserve already set")

	// ErrBondHoldingAlreadySet indicates the bond holding was already linked.
	ErrBondHoldingAlreadySet = errors.New("coin: bond holding already set")

	// ErrBondHoldingNotSet indicates an operation that needs a linked bond holding.
	ErrBondHoldingNotSet = errors.New("coin: bond holding not set")

	// ErrNotInterestBearing indicates a rate change on a plain mint.
	ErrNotInterestBearing = errors.New("coin: coin is not interest bearing")
)
