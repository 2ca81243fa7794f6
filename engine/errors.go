package engine

import (
	"context"
	"errors"

	"github.com/bitfsorg/libsovereign-go/coin"
	"github.com/bitfsorg/libsovereign-go/factory"
	"github.com/bitfsorg/libsovereign-go/fees"
	"github.com/bitfsorg/libsovereign-go/ledger"
)

var (
	// ErrUnauthorized indicates the caller lacks the required authority.
	ErrUnauthorized = errors.New("engine: unauthorized")

	// ErrInvalidBondMint indicates the supplied bond mint differs from the registry mapping.
	ErrInvalidBondMint = errors.New("engine: invalid bond mint")

	// ErrInvalidProtocolVault indicates the supplied vault is not the registered protocol vault.
	ErrInvalidProtocolVault = errors.New("engine: invalid protocol vault")

	// ErrFactoryExists indicates the factory was already initialized.
	ErrFactoryExists = errors.New("engine: factory already initialized")

	// ErrFactoryNotInitialized indicates no factory exists yet.
	ErrFactoryNotInitialized = errors.New("engine: factory not initialized")

	// ErrCoinExists indicates a coin with the same authority and symbol exists.
	ErrCoinExists = errors.New("engine: sovereign coin already exists")

	// ErrCoinNotFound indicates the coin does not exist.
	ErrCoinNotFound = errors.New("engine: sovereign coin not found")

	// ErrFeeOperatorExists indicates the operator already holds a capability.
	ErrFeeOperatorExists = errors.New("engine: fee operator already exists")

	// ErrFeeOperatorNotFound indicates the capability does not exist or was closed.
	ErrFeeOperatorNotFound = errors.New("engine: fee operator not found")

	// ErrGlobalReserveExists indicates the global fiat reserve was already set up.
	ErrGlobalReserveExists = errors.New("engine: global fiat reserve already set up")

	// ErrGlobalReserveNotSet indicates a coin asked for the global reserve before it exists.
	ErrGlobalReserveNotSet = errors.New("engine: global fiat reserve not set up")

	// ErrTransferFeeNotSupported indicates the coin's mint has no fee-withholding extension.
	ErrTransferFeeNotSupported = errors.New("engine: mint does not support transfer fees")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrUnauthorized, "Unauthorized"},
	{factory.ErrInvalidBondRating, "InvalidBondRating"},
	{factory.ErrFiatCurrencyTooLong, "FiatCurrencyTooLong"},
	{factory.ErrInvalidFiatCurrency, "InvalidFiatCurrency"},
	{coin.ErrNameTooLong, "NameTooLong"},
	{coin.ErrSymbolTooLong, "SymbolTooLong"},
	{coin.ErrURITooLong, "UriTooLong"},
	{coin.ErrInvalidSymbol, "InvalidSymbol"},
	{coin.ErrInvalidText, "InvalidText"},
	{factory.ErrInvalidReservePercentage, "InvalidReservePercentage"},
	{factory.ErrInvalidReserveRatio, "InvalidReserveRatio"},
	{factory.ErrInvalidYieldDistribution, "InvalidYieldDistribution"},
	{factory.ErrMaxBondMappingsReached, "MaxBondMappingsReached"},
	{factory.ErrNoBondMappingForCurrency, "NoBondMappingForCurrency"},
	{ErrInvalidBondMint, "InvalidBondMint"},
	{ErrInvalidProtocolVault, "InvalidProtocolVault"},
	{fees.ErrNoTokenAccountsToHarvest, "NoTokenAccountsToHarvest"},
	{fees.ErrInvalidTransferFee, "InvalidTransferFee"},
	{coin.ErrInvalidPhase, "InvalidPhase"},
	{coin.ErrMintAlreadySet, "MintAlreadySet"},
	{coin.ErrMintNotSet, "MintNotSet"},
	{coin.ErrFiatReserveAlreadySet, "FiatReserveAlreadySet"},
	{coin.ErrBondHoldingAlreadySet, "BondHoldingAlreadySet"},
	{coin.ErrBondHoldingNotSet, "BondHoldingNotSet"},
	{coin.ErrNotInterestBearing, "NotInterestBearing"},
	{ErrFactoryExists, "FactoryAlreadyInitialized"},
	{ErrFactoryNotInitialized, "FactoryNotInitialized"},
	{ErrCoinExists, "SovereignCoinExists"},
	{ErrCoinNotFound, "SovereignCoinNotFound"},
	{ErrFeeOperatorExists, "FeeOperatorExists"},
	{ErrFeeOperatorNotFound, "FeeOperatorNotFound"},
	{ErrGlobalReserveExists, "GlobalFiatReserveExists"},
	{ErrGlobalReserveNotSet, "GlobalFiatReserveNotSet"},
	{ErrTransferFeeNotSupported, "TransferFeeNotSupported"},
	{ledger.ErrInsufficientFunds, "InsufficientFunds"},
	{ledger.ErrMintNotFound, "MintNotFound"},
	{ledger.ErrAccountNotFound, "AccountNotFound"},
	{ledger.ErrAccountExists, "AccountExists"},
	{ledger.ErrMintMismatch, "MintMismatch"},
	{ledger.ErrOverflow, "Overflow"},
	{context.Canceled, "Canceled"},
	{context.DeadlineExceeded, "DeadlineExceeded"},
}

// Code returns the stable tag for err, "" for nil and "Internal" for
// errors outside the taxonomy.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "Internal"
}
