package engine

import (
	"context"
	"errors"
	"strconv"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/coin"
	"github.com/bitfsorg/libsovereign-go/fees"
	"github.com/bitfsorg/libsovereign-go/ledger"
	"github.com/bitfsorg/libsovereign-go/store"
)

// --- Transfer fee configuration ---

// InitializeTransferFee opens the factory-owned fee vault for the coin's
// mint and sets the fee parameters. The first vault opened becomes the
// factory's protocol vault. Parameters are factory-wide and overwritten
// by each call.
func (e *Engine) InitializeTransferFee(ctx context.Context, caller, coinAddr account.Address, bps uint16, maxFee uint64) (account.Address, error) {
	var vault account.Address
	err := e.run(ctx, "initialize_transfer_fee", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		f, err := loadAdminFactory(tx, caller)
		if err != nil {
			return nil, err
		}
		if err := fees.ValidateTransferFee(bps, maxFee); err != nil {
			return nil, err
		}
		c, err := loadCoin(tx, coinAddr)
		if err != nil {
			return nil, err
		}
		if c.Mint.IsZero() {
			return nil, coin.ErrMintNotSet
		}
		if !c.HasTransferFee {
			return nil, ErrTransferFeeNotSupported
		}

		factoryAddr := e.deriver.Factory()
		vault = e.deriver.TokenAccount(factoryAddr, c.Mint)
		if err := lt.CreateAccount(vault, factoryAddr, c.Mint); err != nil {
			return nil, err
		}
		if err := e.applyTransferFee(lt, c.Mint, bps, maxFee); err != nil {
			return nil, err
		}
		f.SetTransferFee(bps, maxFee)
		if f.ProtocolVault.IsZero() {
			f.ProtocolVault = vault
		}
		if err := tx.PutFactory(f); err != nil {
			return nil, err
		}
		return e.event(KindTransferFeeInitialized,
			"mint", c.Mint.String(),
			"vault", vault.String(),
			"bps", strconv.Itoa(int(bps)),
			"max_fee", strconv.FormatUint(maxFee, 10),
		), nil
	})
	if err != nil {
		return account.Address{}, err
	}
	return vault, nil
}

// UpdateTransferFee changes the fee parameters on the factory and on the
// coin's mint.
func (e *Engine) UpdateTransferFee(ctx context.Context, caller, coinAddr account.Address, bps uint16, maxFee uint64) error {
	return e.run(ctx, "update_transfer_fee", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		f, err := loadAdminFactory(tx, caller)
		if err != nil {
			return nil, err
		}
		if err := fees.ValidateTransferFee(bps, maxFee); err != nil {
			return nil, err
		}
		c, err := loadCoin(tx, coinAddr)
		if err != nil {
			return nil, err
		}
		if c.Mint.IsZero() {
			return nil, coin.ErrMintNotSet
		}
		if err := e.applyTransferFee(lt, c.Mint, bps, maxFee); err != nil {
			return nil, err
		}
		f.SetTransferFee(bps, maxFee)
		if err := tx.PutFactory(f); err != nil {
			return nil, err
		}
		return e.event(KindTransferFeeUpdated,
			"mint", c.Mint.String(),
			"bps", strconv.Itoa(int(bps)),
			"max_fee", strconv.FormatUint(maxFee, 10),
		), nil
	})
}

func (e *Engine) applyTransferFee(lt *ledger.Tx, mint account.Address, bps uint16, maxFee uint64) error {
	err := lt.SetTransferFee(mint, bps, maxFee, e.deriver.Factory())
	if errors.Is(err, ledger.ErrNoTransferFeeExtension) {
		return ErrTransferFeeNotSupported
	}
	return err
}

// --- Fee operator capability ---

// CreateFeeOperator grants operator the harvest and withdraw capability.
// The storage deposit is debited from caller.
func (e *Engine) CreateFeeOperator(ctx context.Context, caller, operator account.Address) (account.Address, error) {
	addr := e.deriver.FeeOperator(operator)
	err := e.run(ctx, "create_fee_operator", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		if _, err := loadAdminFactory(tx, caller); err != nil {
			return nil, err
		}
		op := fees.NewFeeOperator(operator)
		if err := tx.CreateFeeOperator(addr, op); err != nil {
			if errors.Is(err, store.ErrExists) {
				return nil, ErrFeeOperatorExists
			}
			return nil, err
		}
		if err := lt.Debit(caller, op.Deposit); err != nil {
			return nil, err
		}
		return e.event(KindFeeOperatorCreated,
			"fee_operator", addr.String(),
			"operator", operator.String(),
		), nil
	})
	if err != nil {
		return account.Address{}, err
	}
	return addr, nil
}

// CloseFeeOperator revokes the capability at addr and refunds its storage
// deposit to receiver. Returns the refunded amount.
func (e *Engine) CloseFeeOperator(ctx context.Context, caller, addr, receiver account.Address) (uint64, error) {
	var refund uint64
	err := e.run(ctx, "close_fee_operator", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		if _, err := loadAdminFactory(tx, caller); err != nil {
			return nil, err
		}
		op, err := tx.FeeOperator(addr)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrFeeOperatorNotFound
		}
		if err != nil {
			return nil, err
		}
		if err := tx.DeleteFeeOperator(addr); err != nil {
			return nil, err
		}
		if err := lt.Credit(receiver, op.Deposit); err != nil {
			return nil, err
		}
		refund = op.Deposit
		return e.event(KindFeeOperatorClosed,
			"fee_operator", addr.String(),
			"operator", op.Operator.String(),
			"receiver", receiver.String(),
			"refund", strconv.FormatUint(op.Deposit, 10),
		), nil
	})
	return refund, err
}

// --- Harvest and withdraw ---

// HarvestFees sweeps fees withheld in accounts into mint. Either every
// account is swept or none is.
func (e *Engine) HarvestFees(ctx context.Context, caller, capability, mint account.Address, accounts []account.Address) (uint64, error) {
	var total uint64
	err := e.run(ctx, "harvest_fees", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		if _, err := loadCapability(tx, capability, caller); err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return nil, fees.ErrNoTokenAccountsToHarvest
		}
		var err error
		total, err = lt.HarvestWithheld(mint, accounts)
		if errors.Is(err, ledger.ErrNoTransferFeeExtension) {
			return nil, ErrTransferFeeNotSupported
		}
		if err != nil {
			return nil, err
		}
		return e.event(KindFeesHarvested,
			"mint", mint.String(),
			"accounts", strconv.Itoa(len(accounts)),
			"amount", strconv.FormatUint(total, 10),
		), nil
	})
	if err != nil {
		return 0, err
	}
	if e.metrics != nil {
		e.metrics.AddFeesHarvested(total)
	}
	return total, nil
}

// WithdrawFees moves the fees harvested into mint to its protocol vault.
// vault must be the factory-owned vault opened for mint.
func (e *Engine) WithdrawFees(ctx context.Context, caller, capability, mint, vault account.Address) (uint64, error) {
	var amount uint64
	err := e.run(ctx, "withdraw_fees", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		if _, err := loadCapability(tx, capability, caller); err != nil {
			return nil, err
		}
		f, err := loadFactory(tx)
		if err != nil {
			return nil, err
		}
		if f.ProtocolVault.IsZero() || vault != e.ProtocolVaultFor(mint) {
			return nil, ErrInvalidProtocolVault
		}
		amount, err = lt.WithdrawWithheld(mint, vault, e.deriver.Factory())
		if errors.Is(err, ledger.ErrNoTransferFeeExtension) {
			return nil, ErrTransferFeeNotSupported
		}
		if err != nil {
			return nil, err
		}
		return e.event(KindFeesWithdrawn,
			"mint", mint.String(),
			"vault", vault.String(),
			"amount", strconv.FormatUint(amount, 10),
		), nil
	})
	if err != nil {
		return 0, err
	}
	if e.metrics != nil {
		e.metrics.AddFeesWithdrawn(amount)
	}
	return amount, nil
}

// WithdrawFromProtocolAccount transfers amount out of the protocol vault
// to destination. vault must equal the factory's protocol vault.
func (e *Engine) WithdrawFromProtocolAccount(ctx context.Context, caller, capability, vault, destination account.Address, amount uint64) error {
	return e.run(ctx, "withdraw_from_protocol_account", func(lt *ledger.Tx, tx store.Tx) (*Event, error) {
		if _, err := loadCapability(tx, capability, caller); err != nil {
			return nil, err
		}
		f, err := loadFactory(tx)
		if err != nil {
			return nil, err
		}
		if f.ProtocolVault.IsZero() || vault != f.ProtocolVault {
			return nil, ErrInvalidProtocolVault
		}
		fee, err := lt.Transfer(vault, destination, amount, e.deriver.Factory())
		if err != nil {
			return nil, err
		}
		return e.event(KindProtocolWithdrawal,
			"vault", vault.String(),
			"destination", destination.String(),
			"amount", strconv.FormatUint(amount, 10),
			"fee", strconv.FormatUint(fee, 10),
		), nil
	})
}
