package engine

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/coin"
	"github.com/bitfsorg/libsovereign-go/factory"
	"github.com/bitfsorg/libsovereign-go/fees"
	"github.com/bitfsorg/libsovereign-go/ledger"
	"github.com/bitfsorg/libsovereign-go/metrics"
	"github.com/bitfsorg/libsovereign-go/store"
)

func makeAddr(seed byte) account.Address {
	var a account.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

var (
	admin    = makeAddr(1)
	issuer   = makeAddr(2)
	operator = makeAddr(3)
	receiver = makeAddr(4)
	stranger = makeAddr(5)

	usdBond  = makeAddr(0x40)
	eurBond  = makeAddr(0x41)
	fiatMint = makeAddr(0x50)
)

const bondRateBps = 800

var defaultParams = factory.Params{
	MinFiatReserveBps:    2000,
	BondReserveNumerator: 30,
	BondReserveDenom:     9,
	YieldShareProtocol:   1000,
	YieldShareIssuer:     2000,
	YieldShareHolders:    7000,
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	eng     *Engine
	store   store.Store
	ledger  *ledger.Ledger
	sink    *MemorySink
	metrics *metrics.Metrics
}

// newFixture builds an engine over a MemStore with bond and fiat mints in
// the ledger and native funds for admin. No factory exists yet.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, store.NewMemStore())
}

func newFixtureWithStore(t *testing.T, st store.Store) *fixture {
	t.Helper()
	l := ledger.New()
	rate := int16(bondRateBps)
	require.NoError(t, l.Atomic(func(tx *ledger.Tx) error {
		if err := tx.CreateMint(usdBond, ledger.MintSpec{Decimals: 6, MintAuthority: admin, InterestRate: &rate}); err != nil {
			return err
		}
		if err := tx.CreateMint(eurBond, ledger.MintSpec{Decimals: 6, MintAuthority: admin}); err != nil {
			return err
		}
		if err := tx.CreateMint(fiatMint, ledger.MintSpec{Decimals: 6, MintAuthority: admin}); err != nil {
			return err
		}
		return tx.Credit(admin, 10*fees.StorageDeposit)
	}))

	sink := &MemorySink{}
	m := metrics.New(prometheus.NewRegistry())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	eng := New(st, l,
		WithEventSink(sink),
		WithMetrics(m),
		WithNetwork("localnet"),
		WithClock(func() time.Time { return fixed }),
	)
	return &fixture{t: t, ctx: context.Background(), eng: eng, store: st, ledger: l, sink: sink, metrics: m}
}

// withRegistry initializes the factory and registers USD (rating 1) and
// EUR (rating 3).
func (f *fixture) withRegistry() *fixture {
	f.t.Helper()
	_, err := f.eng.InitializeFactory(f.ctx, admin, defaultParams)
	require.NoError(f.t, err)
	_, err = f.eng.RegisterBondMaps(f.ctx, admin, "USD", usdBond, 1)
	require.NoError(f.t, err)
	_, err = f.eng.RegisterBondMaps(f.ctx, admin, "EUR", eurBond, 3)
	require.NoError(f.t, err)
	return f
}

func usdParams(symbol string) coin.Params {
	return coin.Params{Name: "Sovereign Dollar", Symbol: symbol, URI: "https://example.com/usd.json", FiatCurrency: "USD"}
}

// provision runs every setup phase for a USD coin and returns its address
// and mint.
func (f *fixture) provision(symbol string, opts ...MintOption) (account.Address, account.Address) {
	f.t.Helper()
	addr, err := f.eng.InitSovereignCoin(f.ctx, issuer, usdParams(symbol), usdBond)
	require.NoError(f.t, err)
	mint, err := f.eng.SetupInterestBearingMint(f.ctx, issuer, addr, 100, opts...)
	require.NoError(f.t, err)
	_, err = f.eng.SetupTokenAccounts(f.ctx, issuer, addr, TokenAccounts{FiatMint: fiatMint})
	require.NoError(f.t, err)
	_, err = f.eng.SetupBondHolding(f.ctx, issuer, addr)
	require.NoError(f.t, err)
	require.NoError(f.t, f.eng.FinalizeSetup(f.ctx, issuer, addr))
	return addr, mint
}

func (f *fixture) factory() *factory.Factory {
	f.t.Helper()
	fac, err := f.eng.Factory(f.ctx)
	require.NoError(f.t, err)
	return fac
}

func (f *fixture) coin(addr account.Address) *coin.Coin {
	f.t.Helper()
	c, err := f.eng.Coin(f.ctx, addr)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) ledgerTx(fn func(tx *ledger.Tx) error) {
	f.t.Helper()
	require.NoError(f.t, f.ledger.Atomic(fn))
}

func (f *fixture) balance(addr account.Address) uint64 {
	f.t.Helper()
	var bal uint64
	require.NoError(f.t, f.ledger.View(func(tx *ledger.Tx) error {
		var err error
		bal, err = tx.Balance(addr)
		return err
	}))
	return bal
}

func (f *fixture) native(addr account.Address) uint64 {
	f.t.Helper()
	var bal uint64
	require.NoError(f.t, f.ledger.View(func(tx *ledger.Tx) error {
		bal = tx.NativeBalance(addr)
		return nil
	}))
	return bal
}
