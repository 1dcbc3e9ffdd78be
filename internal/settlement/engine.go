// Package settlement applies a payment from one user to another across every
// group the two share.
//
// A settlement moves through these states, each logged:
//
//	VALIDATING -> LOCKING -> ALLOCATING -> PERSISTING -> COMPLETED
//	                                 (any) -> FAILED
//
// Locks for every shared group are taken before the transaction begins. The
// payment is allocated to groups in directory order, and the reduced edges,
// the settlement header and its details commit together or not at all.
// Conflicts are retried under a bounded policy, each attempt starting again
// from validation.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitledger/internal/lock"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/retry"
	"github.com/mmynk/splitledger/internal/storage"
)

type state string

const (
	stateValidating state = "VALIDATING"
	stateLocking    state = "LOCKING"
	stateAllocating state = "ALLOCATING"
	statePersisting state = "PERSISTING"
	stateCompleted  state = "COMPLETED"
	stateFailed     state = "FAILED"
)

// Request asks to move Amount from Payer to Receiver.
type Request struct {
	PayerID     string
	ReceiverID  string
	Amount      money.Money
	Description string
}

// Engine settles balances.
type Engine struct {
	store  storage.Store
	locker lock.Locker
	policy retry.Policy
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRetryPolicy overrides the default of three attempts 100ms apart.
func WithRetryPolicy(p retry.Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithClock overrides the settlement timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an Engine. A nil locker falls back to an in-process one.
func NewEngine(store storage.Store, locker lock.Locker, opts ...Option) *Engine {
	if locker == nil {
		locker = lock.NewMemoryLocker(0)
	}
	e := &Engine{
		store:  store,
		locker: locker,
		policy: retry.DefaultPolicy(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Settle applies the payment and returns the persisted settlement with its
// details.
func (e *Engine) Settle(ctx context.Context, req Request) (*models.Settlement, error) {
	start := time.Now()
	log := slog.With(
		"payer_id", req.PayerID,
		"receiver_id", req.ReceiverID,
		"amount", req.Amount.String(),
	)
	log.Info("Processing settlement")

	settlement, err := e.settle(ctx, log, req)
	if err != nil {
		transition(log, stateFailed, "error", err)
		metrics.ObserveSettlement(resultOf(err), time.Since(start))
		return nil, err
	}

	transition(log, stateCompleted, "settlement_id", settlement.ID, "groups", len(settlement.Details))
	metrics.ObserveSettlement(metrics.ResultSuccess, time.Since(start))
	metrics.AddSettledAmount(settlement.Amount.Decimal().InexactFloat64())
	return settlement, nil
}

// settle runs the whole attempt, validation included, under the retry
// policy so that a retried attempt sees the current directory.
func (e *Engine) settle(ctx context.Context, log *slog.Logger, req Request) (*models.Settlement, error) {
	req.Amount = req.Amount.Round()

	var result *models.Settlement
	err := e.policy.Do(ctx, isTransient, func(attempt int) error {
		metrics.IncSettlementAttempt()
		s, err := e.attempt(ctx, log, req, attempt)
		if err != nil {
			if isTransient(err) {
				log.Warn("Concurrent modification during settlement, will retry", "attempt", attempt, "error", err)
			}
			return err
		}
		result = s
		return nil
	})

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return nil, fmt.Errorf("%w: %w", models.ErrConcurrentSettlement, exhausted.Last)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) attempt(ctx context.Context, log *slog.Logger, req Request, attempt int) (*models.Settlement, error) {
	transition(log, stateValidating, "attempt", attempt)
	if err := e.validate(ctx, req); err != nil {
		return nil, err
	}

	groups, err := e.store.CommonGroups(ctx, req.PayerID, req.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to find common groups: %w", err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: users are not members of any common groups", models.ErrInvalidSettlement)
	}

	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = lock.PairKey(g.ID, req.PayerID, req.ReceiverID)
	}

	transition(log, stateLocking, "attempt", attempt, "groups", len(groups))
	release, err := lock.AcquireAll(ctx, e.locker, keys)
	if err != nil {
		log.Warn("Failed to acquire settlement locks", "attempt", attempt, "error", err)
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	var result *models.Settlement
	err = e.store.InTx(ctx, func(tx storage.Tx) error {
		s, err := e.allocate(ctx, tx, log, groups, req)
		if err != nil {
			return err
		}
		result = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// allocate runs inside the transaction with every pair lock held.
func (e *Engine) allocate(ctx context.Context, tx storage.Tx, log *slog.Logger, groups []*models.Group, req Request) (*models.Settlement, error) {
	owed := make([]*models.BalanceEdge, len(groups))
	totalOwed := money.Zero
	for i, g := range groups {
		edges, err := tx.LockPair(ctx, g.ID, req.PayerID, req.ReceiverID)
		if err != nil {
			return nil, err
		}
		for j := range edges {
			if edges[j].DebtorID == req.PayerID && edges[j].CreditorID == req.ReceiverID {
				owed[i] = &edges[j]
				totalOwed = totalOwed.Add(edges[j].Amount)
			}
		}
	}

	if !totalOwed.IsPositive() {
		return nil, fmt.Errorf("%w: payer %s owes receiver %s nothing", models.ErrInsufficientBalance, req.PayerID, req.ReceiverID)
	}
	if req.Amount.GreaterThan(totalOwed) {
		return nil, fmt.Errorf("%w: requested %s, owed %s", models.ErrExcessSettlement, req.Amount, totalOwed)
	}

	transition(log, stateAllocating, "total_owed", totalOwed.String())

	settlement := &models.Settlement{
		PayerID:     req.PayerID,
		ReceiverID:  req.ReceiverID,
		Amount:      req.Amount,
		Description: req.Description,
		Status:      models.SettlementCompleted,
		SettledAt:   e.now(),
	}

	remaining := req.Amount
	for i, g := range groups {
		if !remaining.IsPositive() {
			break
		}
		edge := owed[i]
		if edge == nil || !edge.Amount.IsPositive() {
			continue
		}

		before := edge.Amount
		portion := remaining.Min(before)
		after := before.Sub(portion)

		// Zero edges stay for audit; reports skip them.
		edge.Amount = after
		if err := tx.UpdateEdge(ctx, edge); err != nil {
			return nil, err
		}

		settlement.Details = append(settlement.Details, models.SettlementDetail{
			GroupID:       g.ID,
			AmountSettled: portion,
			BalanceBefore: before,
			BalanceAfter:  after,
		})
		remaining = remaining.Sub(portion)

		log.Debug("Settlement applied to group",
			"group_id", g.ID,
			"group_name", g.Name,
			"settled", portion.String(),
			"balance_before", before.String(),
			"balance_after", after.String())
	}

	transition(log, statePersisting, "details", len(settlement.Details))
	if err := tx.CreateSettlement(ctx, settlement); err != nil {
		return nil, err
	}
	return settlement, nil
}

func (e *Engine) validate(ctx context.Context, req Request) error {
	if req.PayerID == "" {
		return fmt.Errorf("%w: payer id is required", models.ErrInvalidSettlement)
	}
	if req.ReceiverID == "" {
		return fmt.Errorf("%w: receiver id is required", models.ErrInvalidSettlement)
	}
	if req.PayerID == req.ReceiverID {
		return fmt.Errorf("%w: payer and receiver cannot be the same", models.ErrInvalidSettlement)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: settlement amount must be greater than zero", models.ErrInvalidSettlement)
	}

	for _, id := range []string{req.PayerID, req.ReceiverID} {
		if _, err := e.store.GetUser(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: %w: %s", models.ErrInvalidSettlement, models.ErrUserNotFound, id)
			}
			return err
		}
	}
	return nil
}

func transition(log *slog.Logger, s state, args ...any) {
	log.Debug("Settlement state", append([]any{"state", string(s)}, args...)...)
}

func isTransient(err error) bool {
	return errors.Is(err, storage.ErrConflict) || errors.Is(err, lock.ErrNotAcquired)
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, models.ErrConcurrentSettlement):
		return metrics.ResultConflict
	case errors.Is(err, models.ErrInvalidSettlement),
		errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrExcessSettlement):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
