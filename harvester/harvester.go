// Package harvester periodically sweeps withheld transfer fees on behalf
// of a fee operator: for each fee-bearing mint it harvests every holder
// account into the mint and withdraws the pool into the protocol vault.
package harvester

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/fees"
)

// Engine is the subset of engine.Engine the harvester drives.
type Engine interface {
	FeeMints(ctx context.Context) ([]account.Address, error)
	HarvestableAccounts(ctx context.Context, mint account.Address) ([]account.Address, error)
	HarvestFees(ctx context.Context, caller, capability, mint account.Address, accounts []account.Address) (uint64, error)
	WithdrawFees(ctx context.Context, caller, capability, mint, vault account.Address) (uint64, error)
	ProtocolVaultFor(mint account.Address) account.Address
}

// Report summarizes one sweep.
type Report struct {
	Mints     int
	Harvested uint64
	Withdrawn uint64
	Failures  int
}

// Harvester runs fee sweeps as one operator.
type Harvester struct {
	eng        Engine
	operator   account.Address
	capability account.Address
	mints      []account.Address
	logger     *slog.Logger
	onSweep    func(Report)

	mu   sync.Mutex
	cron *cron.Cron
}

type Option func(h *Harvester)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Harvester) {
		h.logger = logger
	}
}

// WithMints restricts sweeps to mints instead of every fee-bearing mint.
func WithMints(mints ...account.Address) Option {
	return func(h *Harvester) {
		h.mints = append([]account.Address(nil), mints...)
	}
}

// WithSweepHook calls fn after every scheduled sweep.
func WithSweepHook(fn func(Report)) Option {
	return func(h *Harvester) {
		h.onSweep = fn
	}
}

// New constructs a Harvester acting as operator through capability.
func New(eng Engine, operator, capability account.Address, opts ...Option) *Harvester {
	h := &Harvester{eng: eng, operator: operator, capability: capability}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h
}

// RunOnce sweeps every target mint. A failure on one mint is logged and
// counted; the sweep moves on to the next mint.
func (h *Harvester) RunOnce(ctx context.Context) (Report, error) {
	var rep Report
	mints := h.mints
	if len(mints) == 0 {
		var err error
		mints, err = h.eng.FeeMints(ctx)
		if err != nil {
			return rep, fmt.Errorf("harvester: list fee mints: %w", err)
		}
	}

	for _, mint := range mints {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Mints++
		harvested, withdrawn, err := h.sweep(ctx, mint)
		rep.Harvested += harvested
		rep.Withdrawn += withdrawn
		if err != nil {
			rep.Failures++
			h.logger.WarnContext(ctx, "fee sweep failed", "mint", mint.String(), "error", err)
			continue
		}
		h.logger.InfoContext(ctx, "fee sweep",
			"mint", mint.String(),
			"harvested", harvested,
			"withdrawn", withdrawn,
		)
	}
	return rep, nil
}

func (h *Harvester) sweep(ctx context.Context, mint account.Address) (uint64, uint64, error) {
	accounts, err := h.eng.HarvestableAccounts(ctx, mint)
	if errors.Is(err, fees.ErrNoTokenAccountsToHarvest) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	harvested, err := h.eng.HarvestFees(ctx, h.operator, h.capability, mint, accounts)
	if err != nil {
		return 0, 0, fmt.Errorf("harvest: %w", err)
	}
	withdrawn, err := h.eng.WithdrawFees(ctx, h.operator, h.capability, mint, h.eng.ProtocolVaultFor(mint))
	if err != nil {
		return harvested, 0, fmt.Errorf("withdraw: %w", err)
	}
	return harvested, withdrawn, nil
}

// Start schedules RunOnce on schedule, a standard cron expression or
// descriptor such as "@every 1h". Sweeps run until Stop or until ctx is done.
func (h *Harvester) Start(ctx context.Context, schedule string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cron != nil {
		return ErrAlreadyStarted
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		rep, err := h.RunOnce(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "scheduled sweep", "error", err)
		}
		if h.onSweep != nil {
			h.onSweep(rep)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, schedule, err)
	}
	c.Start()
	h.cron = c
	h.logger.Info("harvester started", "schedule", schedule, "operator", h.operator.String())
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (h *Harvester) Stop() {
	h.mu.Lock()
	c := h.cron
	h.cron = nil
	h.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	h.logger.Info("harvester stopped")
}

// ValidateSchedule reports whether schedule parses as a standard cron spec.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, schedule, err)
	}
	return nil
}
