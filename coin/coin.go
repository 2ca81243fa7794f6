// Package coin defines the Sovereign Coin record and its provisioning
// state machine. Every setter transitions exactly once; the phase field
// records progress explicitly.
package coin

import (
	"fmt"
	"strings"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/factory"
)

// Decimals is the precision of every sovereign coin mint.
const Decimals = 6

// Params are the issuer-supplied arguments of coin initialization.
type Params struct {
	Name         string
	Symbol       string
	URI          string
	FiatCurrency string
}

// Validate checks text bounds. Text is stored zero-padded, so no field
// may contain a zero byte.
func (p Params) Validate() error {
	if strings.IndexByte(p.Symbol, 0) >= 0 {
		return fmt.Errorf("%w: contains a zero byte", ErrInvalidSymbol)
	}
	if strings.IndexByte(p.Name, 0) >= 0 || strings.IndexByte(p.URI, 0) >= 0 {
		return ErrInvalidText
	}
	if len(p.Name) > MaxNameLen {
		return fmt.Errorf("%w: %d bytes, max %d", ErrNameTooLong, len(p.Name), MaxNameLen)
	}
	if len(p.Symbol) == 0 {
		return ErrInvalidSymbol
	}
	if len(p.Symbol) > MaxSymbolLen {
		return fmt.Errorf("%w: %d bytes, max %d", ErrSymbolTooLong, len(p.Symbol), MaxSymbolLen)
	}
	if len(p.URI) > MaxURILen {
		return fmt.Errorf("%w: %d bytes, max %d", ErrURITooLong, len(p.URI), MaxURILen)
	}
	return factory.ValidateFiatCurrency(p.FiatCurrency)
}

// Coin is a sovereign coin record.
type Coin struct {
	Authority account.Address
	Factory   account.Address

	Name               [MaxNameLen]byte
	Symbol             [MaxSymbolLen]byte
	URI                [MaxURILen]byte
	TargetFiatCurrency [fiatCurrencyLn]byte
	Decimals           uint8

	BondMint           account.Address
	BondRating         uint8
	RequiredReserveBps uint16

	Mint              account.Address
	FiatReserve       account.Address
	BondHolding       account.Address
	UsesGlobalReserve bool

	TotalSupply uint64
	FiatAmount  uint64
	BondAmount  uint64

	IsInterestBearing bool
	InterestRate      int16
	HasTransferFee    bool

	Phase Phase
}

// New creates a draft coin backed by mapping. requiredReserveBps is
// computed by the caller once and never recomputed.
func New(authority, factoryAddr account.Address, p Params, mapping factory.BondMapping, requiredReserveBps uint16) (*Coin, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c := &Coin{
		Authority:          authority,
		Factory:            factoryAddr,
		Decimals:           Decimals,
		BondMint:           mapping.BondMint,
		BondRating:         mapping.BondRating,
		RequiredReserveBps: requiredReserveBps,
		Phase:              PhaseDraft,
	}
	padText(c.Name[:], p.Name)
	padText(c.Symbol[:], p.Symbol)
	padText(c.URI[:], p.URI)
	padText(c.TargetFiatCurrency[:], p.FiatCurrency)
	return c, nil
}

// NameString returns the name without padding.
func (c *Coin) NameString() string { return trimText(c.Name[:]) }

// SymbolString returns the symbol without padding.
func (c *Coin) SymbolString() string { return trimText(c.Symbol[:]) }

// URIString returns the metadata URI without padding.
func (c *Coin) URIString() string { return trimText(c.URI[:]) }

// Currency returns the target fiat currency code without padding.
func (c *Coin) Currency() string { return trimText(c.TargetFiatCurrency[:]) }

// IsAuthority reports whether id issued the coin.
func (c *Coin) IsAuthority(id account.Address) bool { return c.Authority == id }

// MintOptions describe the mint assigned by ConfigureMint.
type MintOptions struct {
	// InterestRate, when non-nil, marks the mint interest bearing with
	// the given initial rate in bps.
	InterestRate *int16
	// TransferFee marks the mint as carrying the fee-withholding extension.
	TransferFee bool
}

// ConfigureMint assigns the coin's mint. Plain and interest-bearing
// setup are mutually exclusive: whichever runs first wins.
func (c *Coin) ConfigureMint(mint account.Address, opts MintOptions) error {
	if c.Phase != PhaseDraft || !c.Mint.IsZero() {
		return ErrMintAlreadySet
	}
	c.Mint = mint
	c.HasTransferFee = opts.TransferFee
	if opts.InterestRate != nil {
		c.IsInterestBearing = true
		c.InterestRate = *opts.InterestRate
	}
	c.Phase = PhaseMintConfigured
	return nil
}

// LinkFiatReserve attaches the fiat reserve account. global marks the
// factory's shared reserve rather than a coin-local account.
func (c *Coin) LinkFiatReserve(reserveAcct account.Address, global bool) error {
	if !c.FiatReserve.IsZero() {
		return ErrFiatReserveAlreadySet
	}
	if c.Phase != PhaseMintConfigured {
		return fmt.Errorf("%w: link fiat reserve in %s", ErrInvalidPhase, c.Phase)
	}
	c.FiatReserve = reserveAcct
	c.UsesGlobalReserve = global
	c.advanceIfLinked()
	return nil
}

// LinkBondHolding attaches the coin-specific bond holding account.
func (c *Coin) LinkBondHolding(holding account.Address) error {
	if !c.BondHolding.IsZero() {
		return ErrBondHoldingAlreadySet
	}
	if c.Phase != PhaseMintConfigured {
		return fmt.Errorf("%w: link bond holding in %s", ErrInvalidPhase, c.Phase)
	}
	c.BondHolding = holding
	c.advanceIfLinked()
	return nil
}

func (c *Coin) advanceIfLinked() {
	if !c.FiatReserve.IsZero() && !c.BondHolding.IsZero() {
		c.Phase = PhaseAccountsLinked
	}
}

// CanFinalize reports whether Finalize would succeed.
func (c *Coin) CanFinalize() error {
	if c.Mint.IsZero() {
		return ErrMintNotSet
	}
	if c.Phase != PhaseAccountsLinked {
		return fmt.Errorf("%w: finalize in %s", ErrInvalidPhase, c.Phase)
	}
	return nil
}

// Finalize completes provisioning.
func (c *Coin) Finalize() error {
	if err := c.CanFinalize(); err != nil {
		return err
	}
	c.Phase = PhaseFinalized
	return nil
}

// SetInterestRate replaces the current rate of an interest-bearing coin.
func (c *Coin) SetInterestRate(rate int16) error {
	if !c.IsInterestBearing {
		return ErrNotInterestBearing
	}
	c.InterestRate = rate
	return nil
}
