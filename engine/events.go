package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind names an engine event.
type Kind string

const (
	KindFactoryInitialized       Kind = "FactoryInitialized"
	KindBondMappingRegistered    Kind = "BondMappingRegistered"
	KindGlobalFiatReserveCreated Kind = "GlobalFiatReserveCreated"
	KindSovereignCoinInitialized Kind = "SovereignCoinInitialized"
	KindMintConfigured           Kind = "MintConfigured"
	KindTokenAccountsLinked      Kind = "TokenAccountsLinked"
	KindBondHoldingLinked        Kind = "BondHoldingLinked"
	KindSetupFinalized           Kind = "SetupFinalized"
	KindInterestRateUpdated      Kind = "InterestRateUpdated"
	KindTransferFeeInitialized   Kind = "TransferFeeInitialized"
	KindTransferFeeUpdated       Kind = "TransferFeeUpdated"
	KindFeeOperatorCreated       Kind = "FeeOperatorCreated"
	KindFeeOperatorClosed        Kind = "FeeOperatorClosed"
	KindFeesHarvested            Kind = "FeesHarvested"
	KindFeesWithdrawn            Kind = "FeesWithdrawn"
	KindProtocolWithdrawal       Kind = "ProtocolWithdrawal"
)

// Event records one successful state change.
type Event struct {
	ID    uuid.UUID
	Kind  Kind
	Time  time.Time
	Attrs map[string]string
}

// EventSink receives events after their operation commits.
type EventSink interface {
	Emit(ctx context.Context, ev Event) error
}

// LogSink writes events to a slog logger.
type LogSink struct {
	Logger *slog.Logger
}

// Emit logs ev at info level.
func (s LogSink) Emit(ctx context.Context, ev Event) error {
	args := make([]any, 0, 2*len(ev.Attrs)+2)
	args = append(args, "event_id", ev.ID.String())
	for k, v := range ev.Attrs {
		args = append(args, k, v)
	}
	s.Logger.InfoContext(ctx, string(ev.Kind), args...)
	return nil
}

// MemorySink keeps events in memory.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends ev.
func (s *MemorySink) Emit(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Kinds returns the kinds of the recorded events in order.
func (s *MemorySink) Kinds() []Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Kind, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Kind
	}
	return out
}

func newEvent(kind Kind, at time.Time, kv ...string) *Event {
	attrs := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs[kv[i]] = kv[i+1]
	}
	return &Event{ID: uuid.New(), Kind: kind, Time: at, Attrs: attrs}
}
