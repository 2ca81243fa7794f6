package harvester

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/coin"
	"github.com/bitfsorg/libsovereign-go/engine"
	"github.com/bitfsorg/libsovereign-go/factory"
	"github.com/bitfsorg/libsovereign-go/fees"
	"github.com/bitfsorg/libsovereign-go/ledger"
	"github.com/bitfsorg/libsovereign-go/store"
)

func makeAddr(seed byte) account.Address {
	var a account.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

// --- fake engine ---

type fakeEngine struct {
	mu         sync.Mutex
	mints      []account.Address
	accounts   map[account.Address][]account.Address
	harvestErr map[account.Address]error
	harvested  []account.Address
	withdrawn  []account.Address
	runs       atomic.Int32
}

func (f *fakeEngine) FeeMints(context.Context) ([]account.Address, error) {
	f.runs.Add(1)
	return f.mints, nil
}

func (f *fakeEngine) HarvestableAccounts(_ context.Context, mint account.Address) ([]account.Address, error) {
	accts, ok := f.accounts[mint]
	if !ok {
		return nil, fees.ErrNoTokenAccountsToHarvest
	}
	return accts, nil
}

func (f *fakeEngine) HarvestFees(_ context.Context, _, _, mint account.Address, accounts []account.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.harvestErr[mint]; err != nil {
		return 0, err
	}
	f.harvested = append(f.harvested, mint)
	return uint64(10 * len(accounts)), nil
}

func (f *fakeEngine) WithdrawFees(_ context.Context, _, _, mint, vault account.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if vault != f.ProtocolVaultFor(mint) {
		return 0, engine.ErrInvalidProtocolVault
	}
	f.withdrawn = append(f.withdrawn, mint)
	return 7, nil
}

func (f *fakeEngine) ProtocolVaultFor(mint account.Address) account.Address {
	v := mint
	v[0] ^= 0xff
	return v
}

// --- RunOnce tests ---

func TestRunOnce_SweepsAndSkips(t *testing.T) {
	m1, m2, m3 := makeAddr(1), makeAddr(2), makeAddr(3)
	fe := &fakeEngine{
		mints:      []account.Address{m1, m2, m3},
		accounts:   map[account.Address][]account.Address{m1: {makeAddr(10), makeAddr(11)}, m3: {makeAddr(12)}},
		harvestErr: map[account.Address]error{m3: engine.ErrUnauthorized},
	}
	h := New(fe, makeAddr(20), makeAddr(21))

	rep, err := h.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Mints: 3, Harvested: 20, Withdrawn: 7, Failures: 1}, rep)
	assert.Equal(t, []account.Address{m1}, fe.harvested)
	assert.Equal(t, []account.Address{m1}, fe.withdrawn)
}

func TestRunOnce_FixedMints(t *testing.T) {
	m1, m2 := makeAddr(1), makeAddr(2)
	fe := &fakeEngine{
		mints:    []account.Address{m1, m2},
		accounts: map[account.Address][]account.Address{m1: {makeAddr(10)}, m2: {makeAddr(11)}},
	}
	h := New(fe, makeAddr(20), makeAddr(21), WithMints(m2))

	rep, err := h.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Mints)
	assert.Equal(t, []account.Address{m2}, fe.harvested)
	assert.Zero(t, fe.runs.Load())
}

func TestRunOnce_Canceled(t *testing.T) {
	fe := &fakeEngine{mints: []account.Address{makeAddr(1)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fe, makeAddr(20), makeAddr(21)).RunOnce(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

// --- Schedule tests ---

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("@every 1h"))
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.ErrorIs(t, ValidateSchedule("every hour"), ErrInvalidSchedule)
	assert.ErrorIs(t, ValidateSchedule(""), ErrInvalidSchedule)
}

func TestStartStop(t *testing.T) {
	fe := &fakeEngine{}
	var sweeps atomic.Int32
	h := New(fe, makeAddr(20), makeAddr(21), WithSweepHook(func(Report) { sweeps.Add(1) }))

	assert.ErrorIs(t, h.Start(context.Background(), "nope"), ErrInvalidSchedule)

	require.NoError(t, h.Start(context.Background(), "@every 1s"))
	assert.ErrorIs(t, h.Start(context.Background(), "@every 1s"), ErrAlreadyStarted)

	require.Eventually(t, func() bool { return sweeps.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	assert.Positive(t, fe.runs.Load())
	h.Stop()
	h.Stop()
}

// --- Against a real engine ---

func TestRunOnce_Engine(t *testing.T) {
	ctx := context.Background()
	admin, issuer, operator := makeAddr(1), makeAddr(2), makeAddr(3)
	alice, bob := makeAddr(4), makeAddr(5)
	bond, fiat := makeAddr(0x40), makeAddr(0x50)

	l := ledger.New()
	require.NoError(t, l.Atomic(func(tx *ledger.Tx) error {
		if err := tx.CreateMint(bond, ledger.MintSpec{Decimals: 6, MintAuthority: admin}); err != nil {
			return err
		}
		if err := tx.CreateMint(fiat, ledger.MintSpec{Decimals: 6, MintAuthority: admin}); err != nil {
			return err
		}
		return tx.Credit(admin, fees.StorageDeposit)
	}))
	eng := engine.New(store.NewMemStore(), l)

	_, err := eng.InitializeFactory(ctx, admin, factory.Params{
		MinFiatReserveBps: 2000, BondReserveNumerator: 1, BondReserveDenom: 1,
		YieldShareProtocol: 10_000,
	})
	require.NoError(t, err)
	_, err = eng.RegisterBondMaps(ctx, admin, "USD", bond, 1)
	require.NoError(t, err)
	coinAddr, err := eng.InitSovereignCoin(ctx, issuer, coin.Params{Name: "Dollar", Symbol: "USDS", FiatCurrency: "USD"}, bond)
	require.NoError(t, err)
	mint, err := eng.SetupMint(ctx, issuer, coinAddr, engine.WithTransferFee())
	require.NoError(t, err)
	vault, err := eng.InitializeTransferFee(ctx, admin, coinAddr, 200, 1_000)
	require.NoError(t, err)
	capability, err := eng.CreateFeeOperator(ctx, admin, operator)
	require.NoError(t, err)

	aliceAcc, bobAcc := eng.TokenAccountAddress(alice, mint), eng.TokenAccountAddress(bob, mint)
	require.NoError(t, l.Atomic(func(tx *ledger.Tx) error {
		if err := tx.CreateAccount(aliceAcc, alice, mint); err != nil {
			return err
		}
		if err := tx.CreateAccount(bobAcc, bob, mint); err != nil {
			return err
		}
		if err := tx.MintTo(mint, aliceAcc, 50_000, eng.FactoryAddress()); err != nil {
			return err
		}
		_, err := tx.Transfer(aliceAcc, bobAcc, 10_000, alice)
		return err
	}))

	h := New(eng, operator, capability)
	rep, err := h.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Mints: 1, Harvested: 200, Withdrawn: 200}, rep)

	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		bal, err := tx.Balance(vault)
		assert.Equal(t, uint64(200), bal)
		return err
	}))

	// nothing left to move on the second sweep
	rep, err = h.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Mints: 1}, rep)
}
