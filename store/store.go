// Package store persists factory, coin and fee operator records together
// with the token ledger snapshot they refer to. Every mutation happens
// inside an Update transaction that either commits all of its writes or
// none of them.
package store

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/coin"
	"github.com/bitfsorg/libsovereign-go/factory"
	"github.com/bitfsorg/libsovereign-go/fees"
)

var (
	bucketFactory      = []byte("factory")
	bucketCoins        = []byte("coins")
	bucketFeeOperators = []byte("fee_operators")
	bucketLedger       = []byte("ledger")

	allBuckets = [][]byte{bucketFactory, bucketCoins, bucketFeeOperators, bucketLedger}

	factoryKey  = []byte("factory")
	snapshotKey = []byte("snapshot")
)

// Store runs record transactions.
type Store interface {
	// Update runs fn in a read-write transaction, committing only if fn returns nil.
	Update(fn func(Tx) error) error

	// View runs fn in a read-only transaction.
	View(fn func(Tx) error) error

	// Close releases the underlying resources.
	Close() error
}

// Tx reads and writes records within one transaction.
type Tx interface {
	// Factory returns the singleton factory, or ErrNotFound.
	Factory() (*factory.Factory, error)
	// CreateFactory stores the factory, or fails with ErrExists.
	CreateFactory(f *factory.Factory) error
	// PutFactory overwrites the factory.
	PutFactory(f *factory.Factory) error

	// Coin returns the coin at addr, or ErrNotFound.
	Coin(addr account.Address) (*coin.Coin, error)
	// CreateCoin stores a new coin, or fails with ErrExists.
	CreateCoin(addr account.Address, c *coin.Coin) error
	// PutCoin overwrites an existing coin.
	PutCoin(addr account.Address, c *coin.Coin) error
	// Coins lists all coins in address order.
	Coins() ([]CoinRecord, error)

	// FeeOperator returns the capability at addr, or ErrNotFound.
	FeeOperator(addr account.Address) (*fees.FeeOperator, error)
	// CreateFeeOperator stores a new capability, or fails with ErrExists.
	CreateFeeOperator(addr account.Address, op *fees.FeeOperator) error
	// DeleteFeeOperator removes a capability, or fails with ErrNotFound.
	DeleteFeeOperator(addr account.Address) error

	// LedgerSnapshot returns the stored ledger snapshot, or ErrNotFound.
	LedgerSnapshot() ([]byte, error)
	// PutLedgerSnapshot replaces the ledger snapshot.
	PutLedgerSnapshot(data []byte) error
}

// CoinRecord pairs a coin with its address.
type CoinRecord struct {
	Address account.Address
	Coin    *coin.Coin
}

// kv is the bucketed key-value surface both backends provide.
type kv interface {
	get(bucket, key []byte) []byte
	put(bucket, key, value []byte) error
	del(bucket, key []byte) error
	forEach(bucket []byte, fn func(k, v []byte) error) error
}

// recordTx implements Tx over any kv backend.
type recordTx struct {
	kv kv
}

// Compile-time interface check.
var _ Tx = (*recordTx)(nil)

func (t *recordTx) Factory() (*factory.Factory, error) {
	var f factory.Factory
	if err := t.load(bucketFactory, factoryKey, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (t *recordTx) CreateFactory(f *factory.Factory) error {
	if f == nil {
		return fmt.Errorf("%w: factory", ErrNilParam)
	}
	return t.create(bucketFactory, factoryKey, f)
}

func (t *recordTx) PutFactory(f *factory.Factory) error {
	if f == nil {
		return fmt.Errorf("%w: factory", ErrNilParam)
	}
	return t.store(bucketFactory, factoryKey, f)
}

func (t *recordTx) Coin(addr account.Address) (*coin.Coin, error) {
	var c coin.Coin
	if err := t.load(bucketCoins, addr[:], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *recordTx) CreateCoin(addr account.Address, c *coin.Coin) error {
	if c == nil {
		return fmt.Errorf("%w: coin", ErrNilParam)
	}
	return t.create(bucketCoins, addr[:], c)
}

func (t *recordTx) PutCoin(addr account.Address, c *coin.Coin) error {
	if c == nil {
		return fmt.Errorf("%w: coin", ErrNilParam)
	}
	if t.kv.get(bucketCoins, addr[:]) == nil {
		return ErrNotFound
	}
	return t.store(bucketCoins, addr[:], c)
}

func (t *recordTx) Coins() ([]CoinRecord, error) {
	var out []CoinRecord
	err := t.kv.forEach(bucketCoins, func(k, v []byte) error {
		var c coin.Coin
		if err := decodeGob(v, &c); err != nil {
			return fmt.Errorf("store: decode coin: %w", err)
		}
		var addr account.Address
		copy(addr[:], k)
		out = append(out, CoinRecord{Address: addr, Coin: &c})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *recordTx) FeeOperator(addr account.Address) (*fees.FeeOperator, error) {
	var op fees.FeeOperator
	if err := t.load(bucketFeeOperators, addr[:], &op); err != nil {
		return nil, err
	}
	return &op, nil
}

func (t *recordTx) CreateFeeOperator(addr account.Address, op *fees.FeeOperator) error {
	if op == nil {
		return fmt.Errorf("%w: fee operator", ErrNilParam)
	}
	return t.create(bucketFeeOperators, addr[:], op)
}

func (t *recordTx) DeleteFeeOperator(addr account.Address) error {
	if t.kv.get(bucketFeeOperators, addr[:]) == nil {
		return ErrNotFound
	}
	return t.kv.del(bucketFeeOperators, addr[:])
}

func (t *recordTx) LedgerSnapshot() ([]byte, error) {
	data := t.kv.get(bucketLedger, snapshotKey)
	if data == nil {
		return nil, ErrNotFound
	}
	return data, nil
}

func (t *recordTx) PutLedgerSnapshot(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: ledger snapshot", ErrNilParam)
	}
	return t.kv.put(bucketLedger, snapshotKey, data)
}

func (t *recordTx) load(bucket, key []byte, v interface{}) error {
	data := t.kv.get(bucket, key)
	if data == nil {
		return ErrNotFound
	}
	if err := decodeGob(data, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", bucket, err)
	}
	return nil
}

func (t *recordTx) create(bucket, key []byte, v interface{}) error {
	if t.kv.get(bucket, key) != nil {
		return ErrExists
	}
	return t.store(bucket, key, v)
}

func (t *recordTx) store(bucket, key []byte, v interface{}) error {
	data, err := encodeGob(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", bucket, err)
	}
	return t.kv.put(bucket, key, data)
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
