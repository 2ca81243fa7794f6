// Package ledger implements the token service and metadata registry the
// sovereign coin engine builds on: mints with interest-accrual and
// fee-withholding extensions, token accounts, native balances and
// per-mint metadata. State is held in memory; Snapshot and Restore move
// it in and out as JSON.
package ledger

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bitfsorg/libsovereign-go/account"
)

// state is the full ledger contents.
type state struct {
	Mints    map[account.Address]*Mint         `json:"mints"`
	Accounts map[account.Address]*TokenAccount `json:"accounts"`
	Native   map[account.Address]uint64        `json:"native"`
	Metadata map[account.Address]*Metadata     `json:"metadata"`
}

func newState() *state {
	return &state{
		Mints:    make(map[account.Address]*Mint),
		Accounts: make(map[account.Address]*TokenAccount),
		Native:   make(map[account.Address]uint64),
		Metadata: make(map[account.Address]*Metadata),
	}
}

func (s *state) fill() {
	if s.Mints == nil {
		s.Mints = make(map[account.Address]*Mint)
	}
	if s.Accounts == nil {
		s.Accounts = make(map[account.Address]*TokenAccount)
	}
	if s.Native == nil {
		s.Native = make(map[account.Address]uint64)
	}
	if s.Metadata == nil {
		s.Metadata = make(map[account.Address]*Metadata)
	}
}

func (s *state) clone() *state {
	cp := &state{
		Mints:    make(map[account.Address]*Mint, len(s.Mints)),
		Accounts: make(map[account.Address]*TokenAccount, len(s.Accounts)),
		Native:   make(map[account.Address]uint64, len(s.Native)),
		Metadata: make(map[account.Address]*Metadata, len(s.Metadata)),
	}
	for k, v := range s.Mints {
		cp.Mints[k] = v.clone()
	}
	for k, v := range s.Accounts {
		a := *v
		cp.Accounts[k] = &a
	}
	for k, v := range s.Native {
		cp.Native[k] = v
	}
	for k, v := range s.Metadata {
		m := *v
		cp.Metadata[k] = &m
	}
	return cp
}

// Ledger is a transactional token ledger. Atomic applies a batch of
// operations all at once or not at all.
type Ledger struct {
	mu sync.Mutex
	st *state
}

// New creates an empty in-memory ledger.
func New() *Ledger {
	return &Ledger{st: newState()}
}

// Restore rebuilds a ledger from a Snapshot. Empty data yields an empty
// ledger.
func Restore(data []byte) (*Ledger, error) {
	st := newState()
	if len(data) > 0 {
		if err := json.Unmarshal(data, st); err != nil {
			return nil, fmt.Errorf("ledger: parse snapshot: %w", err)
		}
		st.fill()
	}
	return &Ledger{st: st}, nil
}

// Snapshot encodes the committed state.
func (l *Ledger) Snapshot() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.marshal()
}

func (s *state) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ledger: marshal state: %w", err)
	}
	return data, nil
}

// Atomic runs fn against a working copy and commits it only when fn
// returns nil.
func (l *Ledger) Atomic(fn func(*Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	work := l.st.clone()
	if err := fn(&Tx{st: work}); err != nil {
		return err
	}
	l.st = work
	return nil
}

// View runs fn against a throwaway copy; writes are discarded.
func (l *Ledger) View(fn func(*Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(&Tx{st: l.st.clone()})
}
