package engine

import (
	"context"
	"errors"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/coin"
	"github.com/bitfsorg/libsovereign-go/factory"
	"github.com/bitfsorg/libsovereign-go/fees"
	"github.com/bitfsorg/libsovereign-go/ledger"
	"github.com/bitfsorg/libsovereign-go/store"
	"github.com/bitfsorg/libsovereign-go/yield"
)

// Factory returns the factory record.
func (e *Engine) Factory(ctx context.Context) (*factory.Factory, error) {
	var out *factory.Factory
	err := e.view(ctx, func(_ *ledger.Tx, tx store.Tx) error {
		var err error
		out, err = loadFactory(tx)
		return err
	})
	return out, err
}

// Coin returns the coin at addr.
func (e *Engine) Coin(ctx context.Context, addr account.Address) (*coin.Coin, error) {
	var out *coin.Coin
	err := e.view(ctx, func(_ *ledger.Tx, tx store.Tx) error {
		var err error
		out, err = loadCoin(tx, addr)
		return err
	})
	return out, err
}

// Coins lists every coin.
func (e *Engine) Coins(ctx context.Context) ([]store.CoinRecord, error) {
	var out []store.CoinRecord
	err := e.view(ctx, func(_ *ledger.Tx, tx store.Tx) error {
		var err error
		out, err = tx.Coins()
		return err
	})
	return out, err
}

// FeeOperator returns the capability at addr.
func (e *Engine) FeeOperator(ctx context.Context, addr account.Address) (*fees.FeeOperator, error) {
	var out *fees.FeeOperator
	err := e.view(ctx, func(_ *ledger.Tx, tx store.Tx) error {
		op, err := tx.FeeOperator(addr)
		if errors.Is(err, store.ErrNotFound) {
			return ErrFeeOperatorNotFound
		}
		out = op
		return err
	})
	return out, err
}

// YieldSplit previews how amount of yield divides across protocol, issuer
// and holders under the factory's yield shares.
func (e *Engine) YieldSplit(ctx context.Context, amount uint64) ([]yield.Distribution, error) {
	f, err := e.Factory(ctx)
	if err != nil {
		return nil, err
	}
	return yield.Distribute(amount, f.YieldShares())
}

// FeeMints lists the mints of coins carrying the fee-withholding extension.
func (e *Engine) FeeMints(ctx context.Context) ([]account.Address, error) {
	coins, err := e.Coins(ctx)
	if err != nil {
		return nil, err
	}
	var out []account.Address
	for _, rec := range coins {
		if rec.Coin.HasTransferFee && !rec.Coin.Mint.IsZero() {
			out = append(out, rec.Coin.Mint)
		}
	}
	return out, nil
}

// HarvestableAccounts lists the token accounts of mint.
func (e *Engine) HarvestableAccounts(ctx context.Context, mint account.Address) ([]account.Address, error) {
	var out []account.Address
	err := e.view(ctx, func(lt *ledger.Tx, _ store.Tx) error {
		var err error
		out, err = fees.HarvestTargets(mint, lt.Holdings())
		return err
	})
	return out, err
}
