package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libsovereign-go/account"
)

func makeAddr(seed byte) account.Address {
	var a account.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

func defaultParams() Params {
	return Params{
		MinFiatReserveBps:    2000,
		BondReserveNumerator: 30,
		BondReserveDenom:     9,
		YieldShareProtocol:   1000,
		YieldShareIssuer:     2000,
		YieldShareHolders:    7000,
	}
}

func newFactory(t *testing.T) *Factory {
	t.Helper()
	f, err := New(makeAddr(0xAA), defaultParams())
	require.NoError(t, err)
	return f
}

// --- Initialization tests ---

func TestNew(t *testing.T) {
	f := newFactory(t)

	assert.Equal(t, makeAddr(0xAA), f.Authority)
	assert.Equal(t, makeAddr(0xAA), f.Treasury)
	assert.Equal(t, uint16(2000), f.MinFiatReserveBps)
	assert.Equal(t, uint8(30), f.BondReserveNumerator)
	assert.Equal(t, uint8(9), f.BondReserveDenom)
	assert.Zero(t, f.MintFeeBps)
	assert.Zero(t, f.BurnFeeBps)
	assert.Zero(t, f.TransferFeeBps)
	assert.Zero(t, f.TotalSovereignCoins)
	assert.True(t, f.ProtocolVault.IsZero())
	assert.Equal(t, [10]uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, f.BondRatingOrdinals)
}

func TestNew_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Params)
		wantErr error
	}{
		{"yield shares short", func(p *Params) { p.YieldShareHolders = 6999 }, ErrInvalidYieldDistribution},
		{"yield shares over", func(p *Params) { p.YieldShareProtocol = 1001 }, ErrInvalidYieldDistribution},
		{"reserve above max", func(p *Params) { p.MinFiatReserveBps = 10001 }, ErrInvalidReservePercentage},
		{"zero denominator", func(p *Params) { p.BondReserveDenom = 0 }, ErrInvalidReserveRatio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultParams()
			tt.modify(&p)
			_, err := New(makeAddr(1), p)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// --- Registry tests ---

func TestRegisterBondMapping(t *testing.T) {
	f := newFactory(t)

	m, err := f.RegisterBondMapping("USD", makeAddr(0x01), 1)
	require.NoError(t, err)
	assert.True(t, m.Active)
	assert.Equal(t, "USD", m.Currency())
	assert.Equal(t, uint8(1), f.BondMappingsCount)

	_, err = f.RegisterBondMapping("EUR", makeAddr(0x02), 3)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), f.BondMappingsCount)

	got, err := f.LookupBondMapping("EUR")
	require.NoError(t, err)
	assert.Equal(t, makeAddr(0x02), got.BondMint)
	assert.Equal(t, uint8(3), got.BondRating)
}

func TestRegisterBondMapping_Errors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		rating  uint8
		wantErr error
	}{
		{"rating zero", "USD", 0, ErrInvalidBondRating},
		{"rating eleven", "USD", 11, ErrInvalidBondRating},
		{"four characters", "USDX", 1, ErrFiatCurrencyTooLong},
		{"long code", "DOLLARS", 5, ErrFiatCurrencyTooLong},
		{"empty code", "", 5, ErrInvalidFiatCurrency},
		{"zero byte", "US\x00", 5, ErrInvalidFiatCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFactory(t)
			_, err := f.RegisterBondMapping(tt.code, makeAddr(1), tt.rating)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.BondMappingsCount)
		})
	}
}

func TestRegisterBondMapping_Capacity(t *testing.T) {
	f := newFactory(t)
	for i := 0; i < MaxBondMappings; i++ {
		_, err := f.RegisterBondMapping("USD", makeAddr(byte(i)), 1)
		require.NoError(t, err)
	}
	_, err := f.RegisterBondMapping("EUR", makeAddr(0xEE), 1)
	assert.ErrorIs(t, err, ErrMaxBondMappingsReached)
	assert.Equal(t, uint8(MaxBondMappings), f.BondMappingsCount)
}

func TestLookupBondMapping_FirstMatchWins(t *testing.T) {
	f := newFactory(t)
	_, err := f.RegisterBondMapping("MXN", makeAddr(0x10), 2)
	require.NoError(t, err)
	_, err = f.RegisterBondMapping("MXN", makeAddr(0x20), 7)
	require.NoError(t, err)

	m, err := f.LookupBondMapping("MXN")
	require.NoError(t, err)
	assert.Equal(t, makeAddr(0x10), m.BondMint)
	assert.Len(t, f.Mappings(), 2)
}

func TestLookupBondMapping_SkipsInactive(t *testing.T) {
	f := newFactory(t)
	_, err := f.RegisterBondMapping("MXN", makeAddr(0x10), 2)
	require.NoError(t, err)
	_, err = f.RegisterBondMapping("MXN", makeAddr(0x20), 7)
	require.NoError(t, err)
	f.BondMappings[0].Active = false

	m, err := f.LookupBondMapping("MXN")
	require.NoError(t, err)
	assert.Equal(t, makeAddr(0x20), m.BondMint)
}

func TestLookupBondMapping_NotFound(t *testing.T) {
	f := newFactory(t)
	_, err := f.RegisterBondMapping("USD", makeAddr(0x10), 2)
	require.NoError(t, err)

	_, err = f.LookupBondMapping("US")
	assert.ErrorIs(t, err, ErrNoBondMappingForCurrency)
	_, err = f.LookupBondMapping("GBP")
	assert.ErrorIs(t, err, ErrNoBondMappingForCurrency)
}

func TestRequiredReserve(t *testing.T) {
	f := newFactory(t)

	got, err := f.RequiredReserve(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(2000), got)

	got, err = f.RequiredReserve(3)
	require.NoError(t, err)
	assert.Equal(t, uint16(2006), got)
}

func TestRecordFinalizedCoin(t *testing.T) {
	f := newFactory(t)
	f.RecordFinalizedCoin(0)
	f.RecordFinalizedCoin(0)
	assert.Equal(t, uint64(2), f.TotalSovereignCoins)
}
