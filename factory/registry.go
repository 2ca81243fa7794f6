package factory

import (
	"fmt"
	"strings"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/reserve"
)

// BondMapping maps a fiat currency code to an approved bond mint.
type BondMapping struct {
	Active       bool
	FiatCurrency [fiatCurrencySize]byte
	BondMint     account.Address
	BondRating   uint8
}

// Currency returns the mapping's currency code without padding.
func (m BondMapping) Currency() string {
	return trimPadding(m.FiatCurrency[:])
}

// ValidateFiatCurrency checks a currency code for registration.
func ValidateFiatCurrency(code string) error {
	if len(code) == 0 {
		return ErrInvalidFiatCurrency
	}
	if strings.IndexByte(code, 0) >= 0 {
		return fmt.Errorf("%w: contains a zero byte", ErrInvalidFiatCurrency)
	}
	if len(code) > MaxFiatCurrencyLen {
		return fmt.Errorf("%w: %q has %d bytes, max %d", ErrFiatCurrencyTooLong, code, len(code), MaxFiatCurrencyLen)
	}
	return nil
}

// RegisterBondMapping appends an active mapping. Registration is not
// idempotent: registering the same currency twice stores two entries and
// lookups keep returning the first.
func (f *Factory) RegisterBondMapping(code string, bondMint account.Address, rating uint8) (BondMapping, error) {
	if !reserve.ValidRating(rating) {
		return BondMapping{}, fmt.Errorf("%w: %d", ErrInvalidBondRating, rating)
	}
	if err := ValidateFiatCurrency(code); err != nil {
		return BondMapping{}, err
	}
	if int(f.BondMappingsCount) >= MaxBondMappings {
		return BondMapping{}, ErrMaxBondMappingsReached
	}

	m := BondMapping{Active: true, BondMint: bondMint, BondRating: rating}
	copy(m.FiatCurrency[:], code)
	f.BondMappings[f.BondMappingsCount] = m
	f.BondMappingsCount++
	return m, nil
}

// LookupBondMapping returns the first active mapping for code, scanning
// in insertion order.
func (f *Factory) LookupBondMapping(code string) (BondMapping, error) {
	for i := 0; i < int(f.BondMappingsCount); i++ {
		m := f.BondMappings[i]
		if m.Active && m.Currency() == code {
			return m, nil
		}
	}
	return BondMapping{}, fmt.Errorf("%w: %q", ErrNoBondMappingForCurrency, code)
}

// Mappings returns the registered mappings in insertion order.
func (f *Factory) Mappings() []BondMapping {
	out := make([]BondMapping, f.BondMappingsCount)
	copy(out, f.BondMappings[:f.BondMappingsCount])
	return out
}

func trimPadding(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
