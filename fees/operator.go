// Package fees holds the fee operator capability and the pure checks
// behind transfer fee configuration and harvesting.
package fees

import (
	"fmt"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/reserve"
)

const (
	// OperatorRecordSize is the stored size of a fee operator record:
	// discriminator(8) + operator(32) + bump(1) + reserved(128).
	OperatorRecordSize = 8 + 32 + 1 + 128

	// StorageDeposit is charged to the admin when a capability is
	// created and refunded to the receiver when it is closed.
	StorageDeposit = (128 + OperatorRecordSize) * 6960
)

// FeeOperator is a revocable capability letting one identity harvest and
// withdraw transfer fees without holding factory authority.
type FeeOperator struct {
	Operator account.Address
	Deposit  uint64
}

// NewFeeOperator binds a capability to operator.
func NewFeeOperator(operator account.Address) *FeeOperator {
	return &FeeOperator{Operator: operator, Deposit: StorageDeposit}
}

// Permits reports whether caller may act under this capability.
func (op *FeeOperator) Permits(caller account.Address) bool {
	return op != nil && op.Operator == caller
}

// ValidateTransferFee checks a transfer fee configuration.
func ValidateTransferFee(bps uint16, maxFee uint64) error {
	if bps > reserve.BasisPointMax {
		return fmt.Errorf("%w: %d bps exceeds %d", ErrInvalidTransferFee, bps, reserve.BasisPointMax)
	}
	return nil
}

// HoldingAccount is a token account and the mint it holds.
type HoldingAccount struct {
	Address account.Address
	Mint    account.Address
}

// HarvestTargets keeps the accounts that hold mint, in order. Accounts of
// other mints are dropped; an empty result is an error.
func HarvestTargets(mint account.Address, accounts []HoldingAccount) ([]account.Address, error) {
	out := make([]account.Address, 0, len(accounts))
	for _, a := range accounts {
		if a.Mint == mint {
			out = append(out, a.Address)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoTokenAccountsToHarvest
	}
	return out, nil
}
