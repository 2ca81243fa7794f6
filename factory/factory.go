// Package factory defines the singleton Factory record: global reserve
// parameters, yield shares, fee configuration, counters and the bond
// mapping registry.
package factory

import (
	"fmt"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/reserve"
	"github.com/bitfsorg/libsovereign-go/yield"
)

const (
	// MaxBondMappings is the registry capacity.
	MaxBondMappings = 6

	// MaxFiatCurrencyLen bounds registered currency codes.
	MaxFiatCurrencyLen = 3

	fiatCurrencySize = 8
)

// Params are the arguments of factory initialization.
type Params struct {
	MinFiatReserveBps    uint16
	BondReserveNumerator uint8
	BondReserveDenom     uint8
	YieldShareProtocol   uint16
	YieldShareIssuer     uint16
	YieldShareHolders    uint16
}

// Validate checks the initialization invariants.
func (p Params) Validate() error {
	if err := yield.ValidateShares(yield.Shares(p.YieldShareProtocol, p.YieldShareIssuer, p.YieldShareHolders)); err != nil {
		return err
	}
	if p.MinFiatReserveBps > reserve.BasisPointMax {
		return fmt.Errorf("%w: %d bps", ErrInvalidReservePercentage, p.MinFiatReserveBps)
	}
	if p.BondReserveDenom == 0 {
		return ErrInvalidReserveRatio
	}
	return nil
}

// Factory is the global configuration and registry record.
type Factory struct {
	Authority account.Address
	Treasury  account.Address

	MinFiatReserveBps    uint16
	BondReserveNumerator uint8
	BondReserveDenom     uint8

	YieldShareProtocol uint16
	YieldShareIssuer   uint16
	YieldShareHolders  uint16

	MintFeeBps         uint16
	BurnFeeBps         uint16
	TransferFeeBps     uint16
	MaximumTransferFee uint64
	ProtocolVault      account.Address

	GlobalFiatReserve account.Address
	GlobalFiatMint    account.Address

	TotalSovereignCoins uint64
	TotalSupplyAllCoins uint64

	BondRatingOrdinals [reserve.MaxBondRating]uint8
	BondMappingsCount  uint8
	BondMappings       [MaxBondMappings]BondMapping
}

// New creates a factory owned by authority. The authority also becomes
// the treasury; fees start at zero.
func New(authority account.Address, p Params) (*Factory, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	f := &Factory{
		Authority:            authority,
		Treasury:             authority,
		MinFiatReserveBps:    p.MinFiatReserveBps,
		BondReserveNumerator: p.BondReserveNumerator,
		BondReserveDenom:     p.BondReserveDenom,
		YieldShareProtocol:   p.YieldShareProtocol,
		YieldShareIssuer:     p.YieldShareIssuer,
		YieldShareHolders:    p.YieldShareHolders,
	}
	for i := range f.BondRatingOrdinals {
		f.BondRatingOrdinals[i] = uint8(i + 1)
	}
	return f, nil
}

// IsAuthority reports whether id administers the factory.
func (f *Factory) IsAuthority(id account.Address) bool {
	return f.Authority == id
}

// RequiredReserve computes the reserve requirement for a bond rating
// under the factory's current parameters.
func (f *Factory) RequiredReserve(rating uint8) (uint16, error) {
	return reserve.CalculateRequiredReserve(f.MinFiatReserveBps, rating, f.BondReserveNumerator, f.BondReserveDenom)
}

// YieldShares returns the protocol/issuer/holders share list.
func (f *Factory) YieldShares() []yield.Share {
	return yield.Shares(f.YieldShareProtocol, f.YieldShareIssuer, f.YieldShareHolders)
}

// SetTransferFee records the global transfer fee configuration.
func (f *Factory) SetTransferFee(bps uint16, maxFee uint64) {
	f.TransferFeeBps = bps
	f.MaximumTransferFee = maxFee
}

// RecordFinalizedCoin bumps the coin counter after a coin completes setup.
func (f *Factory) RecordFinalizedCoin(supply uint64) {
	f.TotalSovereignCoins++
	f.TotalSupplyAllCoins += supply
}
