package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libsovereign-go/factory"
)

// --- InitializeFactory tests ---

func TestInitializeFactory(t *testing.T) {
	f := newFixture(t)
	fac, err := f.eng.InitializeFactory(f.ctx, admin, defaultParams)
	require.NoError(t, err)

	assert.Equal(t, admin, fac.Authority)
	assert.Equal(t, admin, fac.Treasury)
	assert.Zero(t, fac.MintFeeBps)
	assert.Zero(t, fac.BurnFeeBps)
	assert.Zero(t, fac.TransferFeeBps)
	assert.True(t, fac.ProtocolVault.IsZero())
	assert.Equal(t, [10]uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, fac.BondRatingOrdinals)
	assert.Equal(t, []Kind{KindFactoryInitialized}, f.sink.Kinds())
}

func TestInitializeFactory_Twice(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.InitializeFactory(f.ctx, admin, defaultParams)
	require.NoError(t, err)

	_, err = f.eng.InitializeFactory(f.ctx, stranger, defaultParams)
	assert.ErrorIs(t, err, ErrFactoryExists)
	assert.Equal(t, admin, f.factory().Authority)
}

func TestInitializeFactory_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *factory.Params)
		code   string
	}{
		{"yield shares short", func(p *factory.Params) { p.YieldShareHolders = 6999 }, "InvalidYieldDistribution"},
		{"reserve above 100%", func(p *factory.Params) { p.MinFiatReserveBps = 10_001 }, "InvalidReservePercentage"},
		{"zero denominator", func(p *factory.Params) { p.BondReserveDenom = 0 }, "InvalidReserveRatio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := defaultParams
			tt.mutate(&p)
			_, err := f.eng.InitializeFactory(f.ctx, admin, p)
			assert.Equal(t, tt.code, Code(err))

			_, err = f.eng.Factory(f.ctx)
			assert.ErrorIs(t, err, ErrFactoryNotInitialized)
		})
	}
}

// --- RegisterBondMaps tests ---

func TestRegisterBondMaps(t *testing.T) {
	f := newFixture(t).withRegistry()
	fac := f.factory()
	require.Equal(t, uint8(2), fac.BondMappingsCount)
	assert.Equal(t, "USD", fac.BondMappings[0].Currency())
	assert.Equal(t, usdBond, fac.BondMappings[0].BondMint)
	assert.Equal(t, uint8(3), fac.BondMappings[1].BondRating)
	assert.True(t, fac.BondMappings[1].Active)
}

func TestRegisterBondMaps_Unauthorized(t *testing.T) {
	f := newFixture(t).withRegistry()
	before := f.factory()

	_, err := f.eng.RegisterBondMaps(f.ctx, stranger, "GBP", usdBond, 2)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Unauthorized", Code(err))
	assert.Equal(t, before, f.factory())
}

func TestRegisterBondMaps_Validation(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		rating   uint8
		code     string
	}{
		{"rating zero", "GBP", 0, "InvalidBondRating"},
		{"rating eleven", "GBP", 11, "InvalidBondRating"},
		{"currency too long", "USDT", 1, "FiatCurrencyTooLong"},
		{"empty currency", "", 1, "InvalidFiatCurrency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t).withRegistry()
			_, err := f.eng.RegisterBondMaps(f.ctx, admin, tt.currency, usdBond, tt.rating)
			assert.Equal(t, tt.code, Code(err))
			assert.Equal(t, uint8(2), f.factory().BondMappingsCount)
		})
	}
}

func TestRegisterBondMaps_Capacity(t *testing.T) {
	f := newFixture(t).withRegistry()
	for _, code := range []string{"GBP", "JPY", "CHF", "MXN"} {
		_, err := f.eng.RegisterBondMaps(f.ctx, admin, code, usdBond, 2)
		require.NoError(t, err)
	}
	require.Equal(t, uint8(factory.MaxBondMappings), f.factory().BondMappingsCount)

	_, err := f.eng.RegisterBondMaps(f.ctx, admin, "BRL", usdBond, 2)
	assert.ErrorIs(t, err, factory.ErrMaxBondMappingsReached)
}

func TestRegisterBondMaps_DuplicateFirstMatchWins(t *testing.T) {
	f := newFixture(t).withRegistry()
	_, err := f.eng.RegisterBondMaps(f.ctx, admin, "USD", eurBond, 9)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), f.factory().BondMappingsCount)

	_, err = f.eng.InitSovereignCoin(f.ctx, issuer, usdParams("USDX"), eurBond)
	assert.ErrorIs(t, err, ErrInvalidBondMint)

	addr, err := f.eng.InitSovereignCoin(f.ctx, issuer, usdParams("USDX"), usdBond)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), f.coin(addr).BondRating)
}

func TestRegisterBondMaps_NoFactory(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.RegisterBondMaps(f.ctx, admin, "USD", usdBond, 1)
	assert.ErrorIs(t, err, ErrFactoryNotInitialized)
}

// --- SetupGlobalFiatReserve tests ---

func TestSetupGlobalFiatReserve(t *testing.T) {
	f := newFixture(t).withRegistry()

	_, err := f.eng.SetupGlobalFiatReserve(f.ctx, stranger, fiatMint)
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err := f.eng.SetupGlobalFiatReserve(f.ctx, admin, fiatMint)
	require.NoError(t, err)
	assert.Equal(t, f.eng.TokenAccountAddress(f.eng.FactoryAddress(), fiatMint), res)

	fac := f.factory()
	assert.Equal(t, res, fac.GlobalFiatReserve)
	assert.Equal(t, fiatMint, fac.GlobalFiatMint)
	assert.Zero(t, f.balance(res))

	_, err = f.eng.SetupGlobalFiatReserve(f.ctx, admin, fiatMint)
	assert.ErrorIs(t, err, ErrGlobalReserveExists)
}

func TestSetupGlobalFiatReserve_UnknownMint(t *testing.T) {
	f := newFixture(t).withRegistry()
	_, err := f.eng.SetupGlobalFiatReserve(f.ctx, admin, makeAddr(0x99))
	assert.Equal(t, "MintNotFound", Code(err))
	assert.True(t, f.factory().GlobalFiatReserve.IsZero())
}
