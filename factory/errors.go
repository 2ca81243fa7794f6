package factory

import (
	"errors"

	"github.com/bitfsorg/libsovereign-go/reserve"
	"github.com/bitfsorg/libsovereign-go/yield"
)

var (
	// ErrFiatCurrencyTooLong indicates a currency code longer than MaxFiatCurrencyLen.
	ErrFiatCurrencyTooLong = errors.New("factory: fiat currency code too long")

	// ErrInvalidFiatCurrency indicates an empty currency code or one containing a zero byte.
	ErrInvalidFiatCurrency = errors.New("factory: invalid fiat currency")

	// ErrMaxBondMappingsReached indicates the registry is full.
	ErrMaxBondMappingsReached = errors.New("factory: maximum bond mappings reached")

	// ErrNoBondMappingForCurrency indicates no active mapping matches the currency.
	ErrNoBondMappingForCurrency = errors.New("factory: no bond mapping for currency")

	// ErrInvalidBondRating indicates a rating outside [1, 10].
	ErrInvalidBondRating = reserve.ErrInvalidBondRating

	// ErrInvalidReservePercentage indicates a minimum fiat reserve above 10000 bps.
	ErrInvalidReservePercentage = reserve.ErrInvalidReservePercentage

	// ErrInvalidReserveRatio indicates a zero bond reserve denominator.
	ErrInvalidReserveRatio = reserve.ErrInvalidReserveRatio

	// ErrInvalidYieldDistribution indicates yield shares not summing to 10000 bps.
	ErrInvalidYieldDistribution = yield.ErrInvalidYieldDistribution
)
