package engine

import (
	"context"
	"errors"
	"strconv"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/factory"
	"github.com/bitfsorg/libsovereign-go/ledger"
	"github.com/bitfsorg/libsovereign-go/store"
)

// InitializeFactory creates the singleton factory with caller as authority
// and treasury.
func (e *Engine) InitializeFactory(ctx context.Context, caller account.Address, p factory.Params) (*factory.Factory, error) {
	var out *factory.Factory
	err := e.run(ctx, "initialize_factory", func(_ *ledger.Tx, tx store.Tx) (*Event, error) {
		f, err := factory.New(caller, p)
		if err != nil {
			return nil, err
		}
		if err := tx.CreateFactory(f); err != nil {
			if errors.Is(err, store.ErrExists) {
				return nil, ErrFactoryExists
			}
			return nil, err
		}
		out = f
		return e.event(KindFactoryInitialized,
			"authority", caller.String(),
			"min_fiat_reserve_bps", strconv.Itoa(int(p.MinFiatReserveBps)),
		), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterBondMaps appends a currency to bond mapping. Re-registering a
// currency appends another entry; lookups use the first active match.
func (e *Engine) RegisterBondMaps(ctx context.Context, caller account.Address, fiatCurrency string, bondMint account.Address, bondRating uint8) (factory.BondMapping, error) {
	var out factory.BondMapping
	err := e.run(ctx, "register_bond_maps", func(_ *ledger.Tx, tx store.Tx) (*Event, error) {
		f, err := loadAdminFactory(tx, caller)
		if err != nil {
			return nil, err
		}
		m, err := f.RegisterBondMapping(fiatCurrency, bondMint, bondRating)
		if err != nil {
			return nil, err
		}
		if err := tx.PutFactory(f); err != nil {
			return nil, err
		}
		out = m
		return e.event(KindBondMappingRegistered,
			"fiat_currency", fiatCurrency,
			"bond_mint", bondMint.String(),
			"bond_rating", strconv.Itoa(int(bondRating)),
		), nil
	})
	if err != nil {
		return factory.BondMapping{}, err
	}
	if e.metrics != nil {
		e.metrics.IncrementBondMappings()
	}
	return out, nil
}

// SetupGlobalFiatReserve opens the shared fiat reserve, a factory-owned
// account of fiatMint that coins may link instead of a reserve of their own.
func (e *Engine) SetupGlobalFiatReserve(ctx context.Context, caller, fiatMint account.Address) (account.Address, error) {
	var out account.Address
	err := e.run(ctx, "setup_global_fiat_reserve", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		f, err := loadAdminFactory(tx, caller)
		if err != nil {
			return nil, err
		}
		if !f.GlobalFiatReserve.IsZero() {
			return nil, ErrGlobalReserveExists
		}
		factoryAddr := e.deriver.Factory()
		reserveAcct := e.deriver.TokenAccount(factoryAddr, fiatMint)
		if err := lt.CreateAccount(reserveAcct, factoryAddr, fiatMint); err != nil {
			return nil, err
		}
		f.GlobalFiatReserve = reserveAcct
		f.GlobalFiatMint = fiatMint
		if err := tx.PutFactory(f); err != nil {
			return nil, err
		}
		out = reserveAcct
		return e.event(KindGlobalFiatReserveCreated,
			"fiat_mint", fiatMint.String(),
			"reserve", reserveAcct.String(),
		), nil
	})
	return out, err
}
