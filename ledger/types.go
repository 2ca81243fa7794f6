package ledger

import (
	"math/bits"

	"github.com/bitfsorg/libsovereign-go/account"
)

// Mint is a token mint with optional extensions.
type Mint struct {
	Decimals      uint8           `json:"decimals"`
	MintAuthority account.Address `json:"mint_authority"`
	Supply        uint64          `json:"supply"`

	InterestBearing *InterestConfig    `json:"interest_bearing,omitempty"`
	TransferFee     *TransferFeeConfig `json:"transfer_fee,omitempty"`
}

// InterestConfig is the interest-accrual extension.
type InterestConfig struct {
	Rate          int16           `json:"rate"` // bps
	RateAuthority account.Address `json:"rate_authority"`
}

// TransferFeeConfig is the fee-withholding extension. Fees withheld on
// transfers sit in destination accounts until harvested into the mint.
type TransferFeeConfig struct {
	Bps               uint16          `json:"bps"`
	MaximumFee        uint64          `json:"maximum_fee"`
	ConfigAuthority   account.Address `json:"config_authority"`
	WithdrawAuthority account.Address `json:"withdraw_authority"`
	Withheld          uint64          `json:"withheld"` // harvested, not yet withdrawn
}

// Fee returns the fee withheld from a transfer of amount: the bps share
// rounded up, capped at MaximumFee.
func (c *TransferFeeConfig) Fee(amount uint64) uint64 {
	if c == nil || c.Bps == 0 || amount == 0 {
		return 0
	}
	hi, lo := bits.Mul64(amount, uint64(c.Bps))
	lo, carry := bits.Add64(lo, 9_999, 0)
	hi += carry
	if hi >= 10_000 {
		return c.MaximumFee
	}
	fee, _ := bits.Div64(hi, lo, 10_000)
	if fee > c.MaximumFee {
		fee = c.MaximumFee
	}
	return fee
}

// MintSpec describes a mint to create.
type MintSpec struct {
	Decimals      uint8
	MintAuthority account.Address

	// InterestRate enables the interest-accrual extension when non-nil.
	InterestRate *int16

	// TransferFee enables the fee-withholding extension when true, with
	// the mint authority as config and withdraw authority.
	TransferFee bool
}

// TokenAccount holds a balance of one mint.
type TokenAccount struct {
	Owner    account.Address `json:"owner"`
	Mint     account.Address `json:"mint"`
	Amount   uint64          `json:"amount"`
	Withheld uint64          `json:"withheld"`
}

// Metadata is the descriptive record published for a mint.
type Metadata struct {
	Name            string          `json:"name"`
	Symbol          string          `json:"symbol"`
	URI             string          `json:"uri"`
	UpdateAuthority account.Address `json:"update_authority"`
}

func (m *Mint) clone() *Mint {
	cp := *m
	if m.InterestBearing != nil {
		ib := *m.InterestBearing
		cp.InterestBearing = &ib
	}
	if m.TransferFee != nil {
		tf := *m.TransferFee
		cp.TransferFee = &tf
	}
	return &cp
}
