package account

import (
	"encoding/hex"
	"fmt"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

// AddressSize is the length of an address in bytes.
const AddressSize = 32

// Address identifies an identity, a record, a mint or a token account.
type Address [AddressSize]byte

// Zero is the unset address.
var Zero Address

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == Zero }

// String returns the lowercase hex form of the address.
func (a Address) String() string { return hex.EncodeToString(a[:]) }

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressSize)
	copy(b, a[:])
	return b
}

// MarshalText encodes the address as hex, so addresses work as JSON keys.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a hex address.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress decodes a 64-character hex string.
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if len(b) != AddressSize {
		return a, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, AddressSize, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Seed prefixes for derived records.
var (
	SeedFactory       = []byte("factory")
	SeedSovereignCoin = []byte("sovereign_coin")
	SeedFeeOperator   = []byte("fee_operator")
	SeedMint          = []byte("mint")
	SeedTokenAccount  = []byte("token_account")
)

// Deriver computes record addresses from seed tuples within one network.
// The same seeds derive different addresses on different networks.
type Deriver struct {
	domain []byte
}

// NewDeriver returns a Deriver scoped to the named network.
func NewDeriver(network string) Deriver {
	return Deriver{domain: []byte("sovereign/" + network)}
}

// Derive hashes the domain and each length-prefixed seed into an address.
func (d Deriver) Derive(seeds ...[]byte) Address {
	buf := make([]byte, 0, len(d.domain)+64*len(seeds))
	buf = append(buf, byte(len(d.domain)))
	buf = append(buf, d.domain...)
	for _, s := range seeds {
		buf = append(buf, byte(len(s)))
		buf = append(buf, s...)
	}
	var a Address
	copy(a[:], bsvhash.Sha256(buf))
	return a
}

// Factory returns the singleton factory address.
func (d Deriver) Factory() Address {
	return d.Derive(SeedFactory)
}

// SovereignCoin returns the address of the coin issued by authority under symbol.
func (d Deriver) SovereignCoin(authority Address, symbol string) Address {
	return d.Derive(SeedSovereignCoin, authority[:], []byte(symbol))
}

// FeeOperator returns the capability address bound to operator.
func (d Deriver) FeeOperator(operator Address) Address {
	return d.Derive(SeedFeeOperator, operator[:])
}

// Mint returns the mint address assigned to a sovereign coin.
func (d Deriver) Mint(coin Address) Address {
	return d.Derive(SeedMint, coin[:])
}

// TokenAccount returns the associated token account of owner for mint.
func (d Deriver) TokenAccount(owner, mint Address) Address {
	return d.Derive(SeedTokenAccount, owner[:], mint[:])
}
