package engine

import (
	"context"
	"errors"
	"strconv"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/coin"
	"github.com/bitfsorg/libsovereign-go/ledger"
	"github.com/bitfsorg/libsovereign-go/reserve"
	"github.com/bitfsorg/libsovereign-go/store"
)

// InitSovereignCoin creates a coin owned by caller. The coin's bond mint
// and rating come from the registry entry for its fiat currency, and its
// required reserve is frozen at creation.
func (e *Engine) InitSovereignCoin(ctx context.Context, caller account.Address, p coin.Params, bondMint account.Address) (account.Address, error) {
	addr := e.deriver.SovereignCoin(caller, p.Symbol)
	err := e.run(ctx, "init_sovereign_coin", func(_ *ledger.Tx, tx store.Tx) (*Event, error) {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		f, err := loadFactory(tx)
		if err != nil {
			return nil, err
		}
		mapping, err := f.LookupBondMapping(p.FiatCurrency)
		if err != nil {
			return nil, err
		}
		if mapping.BondMint != bondMint {
			return nil, ErrInvalidBondMint
		}
		required, err := f.RequiredReserve(mapping.BondRating)
		if err != nil {
			return nil, err
		}

		c, err := coin.New(caller, e.deriver.Factory(), p, mapping, required)
		if err != nil {
			return nil, err
		}
		if err := tx.CreateCoin(addr, c); err != nil {
			if errors.Is(err, store.ErrExists) {
				return nil, ErrCoinExists
			}
			return nil, err
		}
		return e.event(KindSovereignCoinInitialized,
			"coin", addr.String(),
			"authority", caller.String(),
			"symbol", p.Symbol,
			"fiat_currency", p.FiatCurrency,
			"bond_rating", strconv.Itoa(int(mapping.BondRating)),
			"required_reserve_bps", strconv.Itoa(int(required)),
		), nil
	})
	if err != nil {
		return account.Address{}, err
	}
	return addr, nil
}

// MintOption adjusts mint setup.
type MintOption func(*coin.MintOptions)

// WithTransferFee adds the fee-withholding extension to the mint.
func WithTransferFee() MintOption {
	return func(o *coin.MintOptions) {
		o.TransferFee = true
	}
}

// SetupMint assigns the coin a plain mint.
func (e *Engine) SetupMint(ctx context.Context, caller, coinAddr account.Address, opts ...MintOption) (account.Address, error) {
	var mo coin.MintOptions
	for _, opt := range opts {
		opt(&mo)
	}
	return e.setupMint(ctx, "setup_mint", caller, coinAddr, mo)
}

// SetupInterestBearingMint assigns the coin a mint with the
// interest-accrual extension at initialRateBps.
func (e *Engine) SetupInterestBearingMint(ctx context.Context, caller, coinAddr account.Address, initialRateBps int16, opts ...MintOption) (account.Address, error) {
	mo := coin.MintOptions{InterestRate: &initialRateBps}
	for _, opt := range opts {
		opt(&mo)
	}
	return e.setupMint(ctx, "setup_interest_bearing_mint", caller, coinAddr, mo)
}

func (e *Engine) setupMint(ctx context.Context, op string, caller, coinAddr account.Address, mo coin.MintOptions) (account.Address, error) {
	mint := e.deriver.Mint(coinAddr)
	err := e.run(ctx, op, func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		c, err := loadOwnedCoin(tx, coinAddr, caller)
		if err != nil {
			return nil, err
		}
		if err := c.ConfigureMint(mint, mo); err != nil {
			return nil, err
		}
		spec := ledger.MintSpec{
			Decimals:      coin.Decimals,
			MintAuthority: e.deriver.Factory(),
			InterestRate:  mo.InterestRate,
			TransferFee:   mo.TransferFee,
		}
		if err := lt.CreateMint(mint, spec); err != nil {
			return nil, err
		}
		if err := tx.PutCoin(coinAddr, c); err != nil {
			return nil, err
		}
		return e.event(KindMintConfigured,
			"coin", coinAddr.String(),
			"mint", mint.String(),
			"interest_bearing", strconv.FormatBool(c.IsInterestBearing),
			"transfer_fee", strconv.FormatBool(c.HasTransferFee),
		), nil
	})
	if err != nil {
		return account.Address{}, err
	}
	return mint, nil
}

// TokenAccounts selects the coin's fiat reserve.
type TokenAccounts struct {
	// FiatMint is the reference fiat asset for a coin-local reserve.
	FiatMint account.Address
	// UseGlobalReserve links the factory's global fiat reserve instead.
	UseGlobalReserve bool
}

// SetupTokenAccounts attaches the coin's fiat reserve.
func (e *Engine) SetupTokenAccounts(ctx context.Context, caller, coinAddr account.Address, ta TokenAccounts) (account.Address, error) {
	var out account.Address
	err := e.run(ctx, "setup_token_accounts", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		c, err := loadOwnedCoin(tx, coinAddr, caller)
		if err != nil {
			return nil, err
		}

		var reserveAcct account.Address
		if ta.UseGlobalReserve {
			f, err := loadFactory(tx)
			if err != nil {
				return nil, err
			}
			if f.GlobalFiatReserve.IsZero() {
				return nil, ErrGlobalReserveNotSet
			}
			reserveAcct = f.GlobalFiatReserve
		} else {
			reserveAcct = e.deriver.TokenAccount(coinAddr, ta.FiatMint)
		}

		if err := c.LinkFiatReserve(reserveAcct, ta.UseGlobalReserve); err != nil {
			return nil, err
		}
		if !ta.UseGlobalReserve {
			if err := lt.CreateAccount(reserveAcct, coinAddr, ta.FiatMint); err != nil {
				return nil, err
			}
		}
		if err := tx.PutCoin(coinAddr, c); err != nil {
			return nil, err
		}
		out = reserveAcct
		return e.event(KindTokenAccountsLinked,
			"coin", coinAddr.String(),
			"fiat_reserve", reserveAcct.String(),
			"global", strconv.FormatBool(ta.UseGlobalReserve),
		), nil
	})
	return out, err
}

// SetupBondHolding attaches the coin's own account of its bond mint.
func (e *Engine) SetupBondHolding(ctx context.Context, caller, coinAddr account.Address) (account.Address, error) {
	var out account.Address
	err := e.run(ctx, "setup_bond_holding", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		c, err := loadOwnedCoin(tx, coinAddr, caller)
		if err != nil {
			return nil, err
		}
		holding := e.deriver.TokenAccount(coinAddr, c.BondMint)
		if err := c.LinkBondHolding(holding); err != nil {
			return nil, err
		}
		if err := lt.CreateAccount(holding, coinAddr, c.BondMint); err != nil {
			return nil, err
		}
		if err := tx.PutCoin(coinAddr, c); err != nil {
			return nil, err
		}
		out = holding
		return e.event(KindBondHoldingLinked,
			"coin", coinAddr.String(),
			"bond_holding", holding.String(),
		), nil
	})
	return out, err
}

// FinalizeSetup publishes the coin's metadata for its mint and counts
// the coin on the factory. It succeeds once per coin.
func (e *Engine) FinalizeSetup(ctx context.Context, caller, coinAddr account.Address) error {
	err := e.run(ctx, "finalize_setup", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		c, err := loadOwnedCoin(tx, coinAddr, caller)
		if err != nil {
			return nil, err
		}
		f, err := loadFactory(tx)
		if err != nil {
			return nil, err
		}
		if err := c.Finalize(); err != nil {
			return nil, err
		}
		md := ledger.Metadata{
			Name:            c.NameString(),
			Symbol:          c.SymbolString(),
			URI:             c.URIString(),
			UpdateAuthority: e.deriver.Factory(),
		}
		if err := lt.PutMetadata(c.Mint, md); err != nil {
			return nil, err
		}
		f.RecordFinalizedCoin(c.TotalSupply)
		if err := tx.PutFactory(f); err != nil {
			return nil, err
		}
		if err := tx.PutCoin(coinAddr, c); err != nil {
			return nil, err
		}
		return e.event(KindSetupFinalized,
			"coin", coinAddr.String(),
			"mint", c.Mint.String(),
			"total_sovereign_coins", strconv.FormatUint(f.TotalSovereignCoins, 10),
		), nil
	})
	if err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.IncrementCoinsCreated()
	}
	return nil
}

// UpdateInterestRate sets the rate of an interest-bearing coin. A nil
// manualRateBps derives the rate from the bond mint's own rate and the
// coin's bond holding using reserve.SovereignInterestRate.
func (e *Engine) UpdateInterestRate(ctx context.Context, caller, coinAddr account.Address, manualRateBps *int16) (int16, error) {
	var rate int16
	err := e.run(ctx, "update_interest_rate", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		if _, err := loadAdminFactory(tx, caller); err != nil {
			return nil, err
		}
		c, err := loadCoin(tx, coinAddr)
		if err != nil {
			return nil, err
		}
		if !c.IsInterestBearing {
			return nil, coin.ErrNotInterestBearing
		}

		source := "manual"
		if manualRateBps != nil {
			rate = *manualRateBps
		} else {
			source = "bond"
			rate, err = e.bondDerivedRate(lt, c)
			if err != nil {
				return nil, err
			}
		}

		if err := c.SetInterestRate(rate); err != nil {
			return nil, err
		}
		if err := lt.SetInterestRate(c.Mint, rate, e.deriver.Factory()); err != nil {
			return nil, err
		}
		if err := tx.PutCoin(coinAddr, c); err != nil {
			return nil, err
		}
		return e.event(KindInterestRateUpdated,
			"coin", coinAddr.String(),
			"rate_bps", strconv.Itoa(int(rate)),
			"source", source,
		), nil
	})
	return rate, err
}

func (e *Engine) bondDerivedRate(lt *ledger.Tx, c *coin.Coin) (int16, error) {
	if c.BondHolding.IsZero() {
		return 0, coin.ErrBondHoldingNotSet
	}
	bondMint, err := lt.Mint(c.BondMint)
	if err != nil {
		return 0, err
	}
	var bondRate int16
	if bondMint.InterestBearing != nil {
		bondRate = bondMint.InterestBearing.Rate
	}
	holding, err := lt.Balance(c.BondHolding)
	if err != nil {
		return 0, err
	}
	return reserve.SovereignInterestRate(bondRate, holding, bondMint.Decimals), nil
}
