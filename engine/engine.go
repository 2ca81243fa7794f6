// Package engine exposes every caller-facing sovereign coin operation:
// factory setup, bond registry, coin provisioning, interest and transfer
// fee administration, and the fee operator capability.
//
// Each operation commits its record and ledger changes together or not
// at all, then emits one Event.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/coin"
	"github.com/bitfsorg/libsovereign-go/factory"
	"github.com/bitfsorg/libsovereign-go/fees"
	"github.com/bitfsorg/libsovereign-go/ledger"
	"github.com/bitfsorg/libsovereign-go/metrics"
	"github.com/bitfsorg/libsovereign-go/store"
)

// DefaultNetwork scopes address derivation when no network is configured.
const DefaultNetwork = "mainnet"

// Engine runs sovereign coin operations against a record store and a ledger.
type Engine struct {
	store   store.Store
	ledger  *ledger.Ledger
	deriver account.Deriver
	logger  *slog.Logger
	metrics *metrics.Metrics
	sink    EventSink
	now     func() time.Time
}

type Option func(e *Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithEventSink(sink EventSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithNetwork scopes derived addresses to network.
func WithNetwork(network string) Option {
	return func(e *Engine) {
		e.deriver = account.NewDeriver(network)
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New constructs an Engine.
func New(st store.Store, l *ledger.Ledger, opts ...Option) *Engine {
	e := &Engine{
		store:   st,
		ledger:  l,
		deriver: account.NewDeriver(DefaultNetwork),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.sink == nil {
		e.sink = LogSink{Logger: e.logger}
	}
	return e
}

// Ledger returns the underlying ledger.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

// FactoryAddress returns the derived factory address.
func (e *Engine) FactoryAddress() account.Address { return e.deriver.Factory() }

// CoinAddress returns the address of the coin issued by authority under symbol.
func (e *Engine) CoinAddress(authority account.Address, symbol string) account.Address {
	return e.deriver.SovereignCoin(authority, symbol)
}

// FeeOperatorAddress returns the capability address for operator.
func (e *Engine) FeeOperatorAddress(operator account.Address) account.Address {
	return e.deriver.FeeOperator(operator)
}

// ProtocolVaultFor returns the factory-owned fee vault for mint.
func (e *Engine) ProtocolVaultFor(mint account.Address) account.Address {
	return e.deriver.TokenAccount(e.deriver.Factory(), mint)
}

// TokenAccountAddress returns the token account of owner for mint.
func (e *Engine) TokenAccountAddress(owner, mint account.Address) account.Address {
	return e.deriver.TokenAccount(owner, mint)
}

// opFunc mutates records and ledger inside one transaction and returns
// the event to emit on commit.
type opFunc func(lt *ledger.Tx, tx store.Tx) (*Event, error)

// run executes fn atomically across the ledger and the record store.
func (e *Engine) run(ctx context.Context, op string, fn opFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	var ev *Event
	err := e.ledger.Atomic(func(lt *ledger.Tx) error {
		return e.store.Update(func(tx store.Tx) error {
			var err error
			if ev, err = fn(lt, tx); err != nil {
				return err
			}
			return putSnapshot(lt, tx)
		})
	})

	code := Code(err)
	if e.metrics != nil {
		e.metrics.ObserveOperation(op, code, time.Since(start))
	}
	if err != nil {
		e.logger.WarnContext(ctx, "operation failed", "op", op, "code", code, "error", err)
		return err
	}

	e.logger.DebugContext(ctx, "operation applied", "op", op)
	if ev != nil {
		if serr := e.sink.Emit(ctx, *ev); serr != nil {
			e.logger.ErrorContext(ctx, "emit event", "op", op, "kind", string(ev.Kind), "error", serr)
		}
	}
	return nil
}

// putSnapshot stores the ledger's working state in the record
// transaction, so records and balances commit together.
func putSnapshot(lt *ledger.Tx, tx store.Tx) error {
	data, err := lt.Snapshot()
	if err != nil {
		return err
	}
	if err := tx.PutLedgerSnapshot(data); err != nil {
		return fmt.Errorf("engine: store ledger snapshot: %w", err)
	}
	return nil
}

// LoadLedger restores the ledger snapshot held in st, or an empty ledger
// when st has none yet.
func LoadLedger(st store.Store) (*ledger.Ledger, error) {
	var data []byte
	err := st.View(func(tx store.Tx) error {
		var err error
		data, err = tx.LedgerSnapshot()
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return ledger.Restore(data)
}

// UpdateLedger applies fn to the ledger directly, persisting the result
// like any other operation. It serves ledger administration outside the
// coin lifecycle, such as seeding balances on development networks.
func (e *Engine) UpdateLedger(ctx context.Context, op string, fn func(lt *ledger.Tx) error) error {
	return e.run(ctx, op, func(lt *ledger.Tx, _ store.Tx) (*Event, error) {
		return nil, fn(lt)
	})
}

// view runs fn against committed state without mutating it.
func (e *Engine) view(ctx context.Context, fn func(lt *ledger.Tx, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.ledger.View(func(lt *ledger.Tx) error {
		return e.store.View(func(tx store.Tx) error {
			return fn(lt, tx)
		})
	})
}

func (e *Engine) event(kind Kind, kv ...string) *Event {
	return newEvent(kind, e.now(), kv...)
}

func loadFactory(tx store.Tx) (*factory.Factory, error) {
	f, err := tx.Factory()
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrFactoryNotInitialized
	}
	return f, err
}

// loadAdminFactory loads the factory and requires caller to be its authority.
func loadAdminFactory(tx store.Tx, caller account.Address) (*factory.Factory, error) {
	f, err := loadFactory(tx)
	if err != nil {
		return nil, err
	}
	if !f.IsAuthority(caller) {
		return nil, ErrUnauthorized
	}
	return f, nil
}

func loadCoin(tx store.Tx, addr account.Address) (*coin.Coin, error) {
	c, err := tx.Coin(addr)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCoinNotFound
	}
	return c, err
}

// loadOwnedCoin loads a coin and requires caller to be its authority.
func loadOwnedCoin(tx store.Tx, addr, caller account.Address) (*coin.Coin, error) {
	c, err := loadCoin(tx, addr)
	if err != nil {
		return nil, err
	}
	if !c.IsAuthority(caller) {
		return nil, ErrUnauthorized
	}
	return c, nil
}

// loadCapability loads a fee operator and requires caller to be its operator.
func loadCapability(tx store.Tx, addr, caller account.Address) (*fees.FeeOperator, error) {
	op, err := tx.FeeOperator(addr)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrFeeOperatorNotFound
	}
	if err != nil {
		return nil, err
	}
	if !op.Permits(caller) {
		return nil, ErrUnauthorized
	}
	return op, nil
}
