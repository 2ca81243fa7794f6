package ledger

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/fees"
)

// Tx is a view of the ledger inside Atomic or View.
type Tx struct {
	st *state
}

// Snapshot encodes the working state, including writes made so far in
// this transaction.
func (t *Tx) Snapshot() ([]byte, error) {
	return t.st.marshal()
}

// --- Native balances ---

// NativeBalance returns the native balance of owner.
func (t *Tx) NativeBalance(owner account.Address) uint64 {
	return t.st.Native[owner]
}

// Credit adds amount to owner's native balance.
func (t *Tx) Credit(owner account.Address, amount uint64) error {
	cur := t.st.Native[owner]
	if cur+amount < cur {
		return ErrOverflow
	}
	t.st.Native[owner] = cur + amount
	return nil
}

// Debit removes amount from owner's native balance.
func (t *Tx) Debit(owner account.Address, amount uint64) error {
	cur := t.st.Native[owner]
	if cur < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, cur, amount)
	}
	t.st.Native[owner] = cur - amount
	return nil
}

// --- Mints ---

// CreateMint creates a mint at addr.
func (t *Tx) CreateMint(addr account.Address, spec MintSpec) error {
	if _, ok := t.st.Mints[addr]; ok {
		return fmt.Errorf("%w: %s", ErrMintExists, addr)
	}
	m := &Mint{Decimals: spec.Decimals, MintAuthority: spec.MintAuthority}
	if spec.InterestRate != nil {
		m.InterestBearing = &InterestConfig{Rate: *spec.InterestRate, RateAuthority: spec.MintAuthority}
	}
	if spec.TransferFee {
		m.TransferFee = &TransferFeeConfig{
			ConfigAuthority:   spec.MintAuthority,
			WithdrawAuthority: spec.MintAuthority,
		}
	}
	t.st.Mints[addr] = m
	return nil
}

// Mint returns a copy of the mint at addr.
func (t *Tx) Mint(addr account.Address) (Mint, error) {
	m, err := t.mint(addr)
	if err != nil {
		return Mint{}, err
	}
	return *m.clone(), nil
}

func (t *Tx) mint(addr account.Address) (*Mint, error) {
	m, ok := t.st.Mints[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, addr)
	}
	return m, nil
}

// MintTo issues amount of mint into dest. authority must be the mint authority.
func (t *Tx) MintTo(mint, dest account.Address, amount uint64, authority account.Address) error {
	m, err := t.mint(mint)
	if err != nil {
		return err
	}
	if m.MintAuthority != authority {
		return fmt.Errorf("%w: mint authority", ErrOwnerMismatch)
	}
	acct, err := t.accountFor(dest, mint)
	if err != nil {
		return err
	}
	if m.Supply+amount < m.Supply || acct.Amount+amount < acct.Amount {
		return ErrOverflow
	}
	m.Supply += amount
	acct.Amount += amount
	return nil
}

// InterestRate returns the current rate of an interest-bearing mint.
func (t *Tx) InterestRate(mint account.Address) (int16, error) {
	m, err := t.mint(mint)
	if err != nil {
		return 0, err
	}
	if m.InterestBearing == nil {
		return 0, ErrNoInterestExtension
	}
	return m.InterestBearing.Rate, nil
}

// SetInterestRate updates the rate of an interest-bearing mint.
func (t *Tx) SetInterestRate(mint account.Address, rate int16, authority account.Address) error {
	m, err := t.mint(mint)
	if err != nil {
		return err
	}
	if m.InterestBearing == nil {
		return ErrNoInterestExtension
	}
	if m.InterestBearing.RateAuthority != authority {
		return fmt.Errorf("%w: rate authority", ErrOwnerMismatch)
	}
	m.InterestBearing.Rate = rate
	return nil
}

// SetTransferFee updates the fee-withholding parameters of mint.
func (t *Tx) SetTransferFee(mint account.Address, bps uint16, maxFee uint64, authority account.Address) error {
	m, err := t.mint(mint)
	if err != nil {
		return err
	}
	if m.TransferFee == nil {
		return ErrNoTransferFeeExtension
	}
	if m.TransferFee.ConfigAuthority != authority {
		return fmt.Errorf("%w: transfer fee config authority", ErrOwnerMismatch)
	}
	m.TransferFee.Bps = bps
	m.TransferFee.MaximumFee = maxFee
	return nil
}

// --- Token accounts ---

// CreateAccount opens a token account at addr. Re-creating an identical
// account is a no-op.
func (t *Tx) CreateAccount(addr, owner, mint account.Address) error {
	if _, err := t.mint(mint); err != nil {
		return err
	}
	if existing, ok := t.st.Accounts[addr]; ok {
		if existing.Owner == owner && existing.Mint == mint {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	t.st.Accounts[addr] = &TokenAccount{Owner: owner, Mint: mint}
	return nil
}

// Account returns a copy of the token account at addr.
func (t *Tx) Account(addr account.Address) (TokenAccount, error) {
	a, ok := t.st.Accounts[addr]
	if !ok {
		return TokenAccount{}, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return *a, nil
}

// Balance returns the spendable amount of the token account at addr.
func (t *Tx) Balance(addr account.Address) (uint64, error) {
	a, err := t.Account(addr)
	if err != nil {
		return 0, err
	}
	return a.Amount, nil
}

// Holdings lists every token account with its mint, in address order.
func (t *Tx) Holdings() []fees.HoldingAccount {
	out := make([]fees.HoldingAccount, 0, len(t.st.Accounts))
	for addr, a := range t.st.Accounts {
		out = append(out, fees.HoldingAccount{Address: addr, Mint: a.Mint})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Address[:], out[j].Address[:]) < 0
	})
	return out
}

func (t *Tx) accountFor(addr, mint account.Address) (*TokenAccount, error) {
	a, ok := t.st.Accounts[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if a.Mint != mint {
		return nil, fmt.Errorf("%w: %s", ErrMintMismatch, addr)
	}
	return a, nil
}

// Transfer moves amount from src to dst, both of the same mint. If the
// mint withholds fees, the fee stays withheld in dst. Returns the fee.
func (t *Tx) Transfer(src, dst account.Address, amount uint64, owner account.Address) (uint64, error) {
	from, ok := t.st.Accounts[src]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, src)
	}
	if from.Owner != owner {
		return 0, fmt.Errorf("%w: %s", ErrOwnerMismatch, src)
	}
	to, err := t.accountFor(dst, from.Mint)
	if err != nil {
		return 0, err
	}
	if from.Amount < amount {
		return 0, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, from.Amount, amount)
	}
	m, err := t.mint(from.Mint)
	if err != nil {
		return 0, err
	}

	fee := m.TransferFee.Fee(amount)
	net := amount - fee
	if to.Amount+net < to.Amount || to.Withheld+fee < to.Withheld {
		return 0, ErrOverflow
	}
	from.Amount -= amount
	to.Amount += net
	to.Withheld += fee
	return fee, nil
}

// --- Withheld fees ---

// HarvestWithheld moves fees withheld in accounts into the mint. Every
// account must exist and belong to mint, or nothing is moved.
func (t *Tx) HarvestWithheld(mint account.Address, accounts []account.Address) (uint64, error) {
	m, err := t.mint(mint)
	if err != nil {
		return 0, err
	}
	if m.TransferFee == nil {
		return 0, ErrNoTransferFeeExtension
	}

	targets := make([]*TokenAccount, 0, len(accounts))
	var total uint64
	for _, addr := range accounts {
		a, err := t.accountFor(addr, mint)
		if err != nil {
			return 0, err
		}
		if total+a.Withheld < total {
			return 0, ErrOverflow
		}
		total += a.Withheld
		targets = append(targets, a)
	}
	if m.TransferFee.Withheld+total < m.TransferFee.Withheld {
		return 0, ErrOverflow
	}

	for _, a := range targets {
		a.Withheld = 0
	}
	m.TransferFee.Withheld += total
	return total, nil
}

// WithdrawWithheld moves the fees harvested into mint to dest. authority
// must be the mint's withdraw authority.
func (t *Tx) WithdrawWithheld(mint, dest, authority account.Address) (uint64, error) {
	m, err := t.mint(mint)
	if err != nil {
		return 0, err
	}
	if m.TransferFee == nil {
		return 0, ErrNoTransferFeeExtension
	}
	if m.TransferFee.WithdrawAuthority != authority {
		return 0, fmt.Errorf("%w: withdraw authority", ErrOwnerMismatch)
	}
	to, err := t.accountFor(dest, mint)
	if err != nil {
		return 0, err
	}

	amount := m.TransferFee.Withheld
	if to.Amount+amount < to.Amount {
		return 0, ErrOverflow
	}
	to.Amount += amount
	m.TransferFee.Withheld = 0
	return amount, nil
}

// --- Metadata registry ---

// PutMetadata publishes metadata for mint. Each mint is registered once.
func (t *Tx) PutMetadata(mint account.Address, md Metadata) error {
	if _, err := t.mint(mint); err != nil {
		return err
	}
	if _, ok := t.st.Metadata[mint]; ok {
		return fmt.Errorf("%w: %s", ErrMetadataExists, mint)
	}
	t.st.Metadata[mint] = &md
	return nil
}

// Metadata returns the metadata published for mint.
func (t *Tx) Metadata(mint account.Address) (Metadata, error) {
	md, ok := t.st.Metadata[mint]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %s", ErrMetadataNotFound, mint)
	}
	return *md, nil
}
