package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/coin"
	"github.com/bitfsorg/libsovereign-go/factory"
	"github.com/bitfsorg/libsovereign-go/fees"
)

func tempBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := OpenBoltStore(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func makeAddr(seed byte) account.Address {
	var a account.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

func testFactory(t *testing.T) *factory.Factory {
	t.Helper()
	f, err := factory.New(makeAddr(1), factory.Params{
		MinFiatReserveBps:    2000,
		BondReserveNumerator: 3,
		BondReserveDenom:     10,
		YieldShareProtocol:   1000,
		YieldShareIssuer:     2000,
		YieldShareHolders:    7000,
	})
	require.NoError(t, err)
	return f
}

func testCoin(t *testing.T, symbol string) *coin.Coin {
	t.Helper()
	c, err := coin.New(makeAddr(2), makeAddr(1), coin.Params{
		Name: "Test " + symbol, Symbol: symbol, URI: "https://example.com", FiatCurrency: "USD",
	}, factory.BondMapping{Active: true, BondMint: makeAddr(9), BondRating: 1}, 2000)
	require.NoError(t, err)
	return c
}

// backends runs fn once per Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("mem", func(t *testing.T) { fn(t, NewMemStore()) })
	t.Run("bolt", func(t *testing.T) { fn(t, tempBoltStore(t)) })
}

// --- Factory tests ---

func TestFactory_CreateAndGet(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		f := testFactory(t)
		_, err := f.RegisterBondMapping("USD", makeAddr(9), 1)
		require.NoError(t, err)

		require.NoError(t, s.Update(func(tx Tx) error { return tx.CreateFactory(f) }))

		var got *factory.Factory
		require.NoError(t, s.View(func(tx Tx) error {
			var err error
			got, err = tx.Factory()
			return err
		}))
		assert.Equal(t, f.Authority, got.Authority)
		assert.Equal(t, uint8(1), got.BondMappingsCount)
		assert.Equal(t, "USD", got.BondMappings[0].Currency())
		assert.Equal(t, f.BondRatingOrdinals, got.BondRatingOrdinals)
	})
}

func TestFactory_CreateTwice(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Update(func(tx Tx) error { return tx.CreateFactory(testFactory(t)) }))
		err := s.Update(func(tx Tx) error { return tx.CreateFactory(testFactory(t)) })
		assert.ErrorIs(t, err, ErrExists)
	})
}

func TestFactory_NotFound(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		err := s.View(func(tx Tx) error {
			_, err := tx.Factory()
			return err
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFactory_NilParam(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		err := s.Update(func(tx Tx) error { return tx.PutFactory(nil) })
		assert.ErrorIs(t, err, ErrNilParam)
	})
}

// --- Coin tests ---

func TestCoin_CreatePutList(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		usd := testCoin(t, "USDS")
		eur := testCoin(t, "EURS")

		require.NoError(t, s.Update(func(tx Tx) error {
			if err := tx.CreateCoin(makeAddr(0x20), usd); err != nil {
				return err
			}
			return tx.CreateCoin(makeAddr(0x10), eur)
		}))

		usd.Mint = makeAddr(0x30)
		require.NoError(t, s.Update(func(tx Tx) error { return tx.PutCoin(makeAddr(0x20), usd) }))

		var list []CoinRecord
		require.NoError(t, s.View(func(tx Tx) error {
			var err error
			list, err = tx.Coins()
			return err
		}))
		require.Len(t, list, 2)
		assert.Equal(t, makeAddr(0x10), list[0].Address)
		assert.Equal(t, "EURS", list[0].Coin.SymbolString())
		assert.Equal(t, makeAddr(0x30), list[1].Coin.Mint)
	})
}

func TestCoin_Duplicate(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Update(func(tx Tx) error { return tx.CreateCoin(makeAddr(3), testCoin(t, "A")) }))
		err := s.Update(func(tx Tx) error { return tx.CreateCoin(makeAddr(3), testCoin(t, "A")) })
		assert.ErrorIs(t, err, ErrExists)
	})
}

func TestCoin_PutMissing(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		err := s.Update(func(tx Tx) error { return tx.PutCoin(makeAddr(3), testCoin(t, "A")) })
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// --- FeeOperator tests ---

func TestFeeOperator_Lifecycle(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		addr := makeAddr(5)
		require.NoError(t, s.Update(func(tx Tx) error {
			return tx.CreateFeeOperator(addr, fees.NewFeeOperator(makeAddr(6)))
		}))

		require.NoError(t, s.View(func(tx Tx) error {
			op, err := tx.FeeOperator(addr)
			if err != nil {
				return err
			}
			assert.True(t, op.Permits(makeAddr(6)))
			assert.Equal(t, uint64(fees.StorageDeposit), op.Deposit)
			return nil
		}))

		require.NoError(t, s.Update(func(tx Tx) error { return tx.DeleteFeeOperator(addr) }))

		err := s.View(func(tx Tx) error {
			_, err := tx.FeeOperator(addr)
			return err
		})
		assert.ErrorIs(t, err, ErrNotFound)

		err = s.Update(func(tx Tx) error { return tx.DeleteFeeOperator(addr) })
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// --- Transaction tests ---

func TestUpdate_RollbackOnError(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		boom := errors.New("boom")
		err := s.Update(func(tx Tx) error {
			if err := tx.CreateFactory(testFactory(t)); err != nil {
				return err
			}
			if err := tx.CreateCoin(makeAddr(3), testCoin(t, "A")); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		require.NoError(t, s.View(func(tx Tx) error {
			_, err := tx.Factory()
			assert.ErrorIs(t, err, ErrNotFound)
			list, err := tx.Coins()
			assert.NoError(t, err)
			assert.Empty(t, list)
			return nil
		}))
	})
}

func TestUpdate_ReadYourWrites(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Update(func(tx Tx) error {
			if err := tx.CreateCoin(makeAddr(3), testCoin(t, "A")); err != nil {
				return err
			}
			c, err := tx.Coin(makeAddr(3))
			if err != nil {
				return err
			}
			assert.Equal(t, "A", c.SymbolString())
			return nil
		}))
	})
}

func TestView_RejectsWrites(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		err := s.View(func(tx Tx) error { return tx.CreateFactory(testFactory(t)) })
		assert.ErrorIs(t, err, ErrReadOnly)
	})
}

func TestMemStore_DeleteHiddenFromList(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Update(func(tx Tx) error {
		return tx.CreateFeeOperator(makeAddr(1), fees.NewFeeOperator(makeAddr(2)))
	}))
	require.NoError(t, s.Update(func(tx Tx) error {
		if err := tx.DeleteFeeOperator(makeAddr(1)); err != nil {
			return err
		}
		_, err := tx.FeeOperator(makeAddr(1))
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sovereign.db")
	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Update(func(tx Tx) error { return tx.CreateFactory(testFactory(t)) }))
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.View(func(tx Tx) error {
		f, err := tx.Factory()
		if err != nil {
			return err
		}
		assert.Equal(t, makeAddr(1), f.Authority)
		return nil
	}))
}

func TestLedgerSnapshot(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		require.NoError(t, s.View(func(tx Tx) error {
			_, err := tx.LedgerSnapshot()
			assert.ErrorIs(t, err, ErrNotFound)
			return nil
		}))

		require.NoError(t, s.Update(func(tx Tx) error { return tx.PutLedgerSnapshot([]byte(`{"v":1}`)) }))
		err := s.Update(func(tx Tx) error {
			require.NoError(t, tx.PutLedgerSnapshot([]byte(`{"v":2}`)))
			return errors.New("abort")
		})
		require.Error(t, err)

		require.NoError(t, s.View(func(tx Tx) error {
			data, err := tx.LedgerSnapshot()
			require.NoError(t, err)
			assert.JSONEq(t, `{"v":1}`, string(data))
			return nil
		}))

		err = s.Update(func(tx Tx) error { return tx.PutLedgerSnapshot(nil) })
		assert.ErrorIs(t, err, ErrNilParam)
	})
}
