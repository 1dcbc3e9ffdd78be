// Package ledger maintains the pairwise per-group balance edges.
//
// Every mutation nets against the opposite direction so that, for any group
// and pair of users, at most one edge exists. Mutations run inside a single
// storage transaction while holding the pair locks for every edge they touch.
package ledger

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

// dustThreshold is the smallest amount Simplify keeps.
var dustThreshold = money.MustParse("0.01")

// Ledger applies debts to the balance edges.
type Ledger struct {
	store  storage.Store
	locker lock.Locker
	policy retry.Policy
	now    func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithRetryPolicy overrides the conflict retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(l *Ledger) {
		l.policy = p
	}
}

// WithClock overrides the expense timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New creates a Ledger. A nil locker falls back to an in-process one.
func New(store storage.Store, locker lock.Locker, opts ...Option) *Ledger {
	if locker == nil {
		locker = lock.NewMemoryLocker(0)
	}
	l := &Ledger{
		store:  store,
		locker: locker,
		policy: retry.DefaultPolicy(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ApplyDebt records that debtor owes creditor amount in a group, netting
// against any opposite balance. The amount is rounded to cents first; a zero
// result or debtor == creditor is a no-op. Both users must belong to the group.
func (l *Ledger) ApplyDebt(ctx context.Context, groupID, debtorID, creditorID string, amount money.Money) error {
	amount = amount.Round()
	if amount.IsZero() || debtorID == creditorID {
		return nil
	}
	if groupID == "" || debtorID == "" || creditorID == "" {
		return fmt.Errorf("%w: group, debtor and creditor are required", models.ErrInvalidExpense)
	}
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return lookupError(err, models.ErrGroupNotFound)
	}
	for _, id := range []string{debtorID, creditorID} {
		if err := requireMember(group, id); err != nil {
			return err
		}
	}

	keys := []string{lock.PairKey(groupID, debtorID, creditorID)}
	return l.mutate(ctx, "apply_debt", keys, func(tx storage.Tx) error {
		return applyDebt(ctx, tx, groupID, debtorID, creditorID, amount)
	})
}

// UpdateBalancesForExpense validates an expense, computes its split, records
// the expense with its shares and a debt from every non-payer participant to
// the payer, all in one transaction. It returns the recorded expense.
func (l *Ledger) UpdateBalancesForExpense(ctx context.Context, expense models.Expense) (*models.Expense, error) {
	slog.Info("Updating balances for expense",
		"group_id", expense.GroupID,
		"paid_by", expense.PaidByUserID,
		"amount", expense.TotalAmount.String(),
		"split", expense.Kind)

	shares, debts, err := l.prepareExpense(ctx, expense)
	if err != nil {
		metrics.IncBalanceUpdate("expense", metrics.ResultRejected)
		return nil, err
	}

	recorded := expense
	recorded.ID = ""
	recorded.Shares = shares
	recorded.CreatedAt = l.now()
	recorded.ReversedAt = time.Time{}

	err = l.applyAll(ctx, "expense", expense.GroupID, debts, func(tx storage.Tx) error {
		return tx.CreateExpense(ctx, &recorded)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Balance update completed for expense",
		"expense_id", recorded.ID,
		"group_id", expense.GroupID,
		"debts", len(debts))
	return &recorded, nil
}

// ReverseExpense undoes a recorded expense: each non-payer share is applied
// from the payer to the participant, netting as usual, and the expense is
// marked reversed. An expense can be reversed once.
func (l *Ledger) ReverseExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	slog.Info("Reversing balances for expense", "expense_id", expenseID)

	expense, err := l.GetExpense(ctx, expenseID)
	if err != nil {
		metrics.IncBalanceUpdate("reverse", metrics.ResultRejected)
		return nil, err
	}
	if expense.Reversed() {
		metrics.IncBalanceUpdate("reverse", metrics.ResultRejected)
		return nil, fmt.Errorf("%w: %s", models.ErrExpenseReversed, expenseID)
	}

	var reversed []debt
	for _, s := range expense.Shares {
		if s.UserID == expense.PaidByUserID {
			continue
		}
		reversed = append(reversed, debt{debtorID: expense.PaidByUserID, creditorID: s.UserID, amount: s.Share})
	}

	at := l.now()
	err = l.applyAll(ctx, "reverse", expense.GroupID, reversed, func(tx storage.Tx) error {
		err := tx.MarkExpenseReversed(ctx, expense.ID, at)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", models.ErrExpenseReversed, expense.ID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	expense.ReversedAt = at
	slog.Info("Expense reversed", "expense_id", expense.ID, "group_id", expense.GroupID, "debts", len(reversed))
	return expense, nil
}

// Simplify removes every edge in the group whose amount is below 0.01 and
// returns how many were removed.
func (l *Ledger) Simplify(ctx context.Context, groupID string) (int, error) {
	slog.Info("Simplifying balances for group", "group_id", groupID)

	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return 0, lookupError(err, models.ErrGroupNotFound)
	}

	// Edges can outlive membership, so the pairs to lock come from the edges.
	snapshot, err := l.store.ListGroupEdges(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to list group edges: %w", err)
	}
	keys := make([]string, 0, len(snapshot))
	locked := make(map[string]bool, len(snapshot))
	for _, e := range snapshot {
		if !e.Amount.LessThan(dustThreshold) {
			continue
		}
		key := lock.PairKey(groupID, e.DebtorID, e.CreditorID)
		keys = append(keys, key)
		locked[key] = true
	}

	removed := 0
	err = l.mutate(ctx, "simplify", keys, func(tx storage.Tx) error {
		removed = 0
		edges, err := tx.ListGroupEdges(ctx, groupID)
		if err != nil {
			return err
		}
		for i := range edges {
			edge := &edges[i]
			if !edge.Amount.LessThan(dustThreshold) {
				continue
			}
			// Dust that appeared after the snapshot waits for the next run.
			if !locked[lock.PairKey(groupID, edge.DebtorID, edge.CreditorID)] {
				continue
			}
			slog.Debug("Removing small balance",
				"group_id", groupID,
				"debtor_id", edge.DebtorID,
				"creditor_id", edge.CreditorID,
				"amount", edge.Amount.String())
			if err := tx.DeleteEdge(ctx, edge); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.AddEdgesSimplified(removed)
	return removed, nil
}

type debt struct {
	debtorID   string
	creditorID string
	amount     money.Money
}

// applyAll runs record and then every debt in one transaction under the
// pair locks of the debts.
func (l *Ledger) applyAll(ctx context.Context, op, groupID string, debts []debt, record func(tx storage.Tx) error) error {
	keys := make([]string, len(debts))
	for i, d := range debts {
		keys[i] = lock.PairKey(groupID, d.debtorID, d.creditorID)
	}

	return l.mutate(ctx, op, keys, func(tx storage.Tx) error {
		if record != nil {
			if err := record(tx); err != nil {
				return err
			}
		}
		for _, d := range debts {
			if err := applyDebt(ctx, tx, groupID, d.debtorID, d.creditorID, d.amount); err != nil {
				return err
			}
		}
		return nil
	})
}

// mutate runs fn in a transaction under the given pair locks, retrying the
// whole unit on conflicts.
func (l *Ledger) mutate(ctx context.Context, op string, keys []string, fn func(tx storage.Tx) error) error {
	err := l.policy.Do(ctx, isTransient, func(attempt int) error {
		release, err := lock.AcquireAll(ctx, l.locker, keys)
		if err != nil {
			slog.Warn("Failed to acquire pair locks", "operation", op, "attempt", attempt, "error", err)
			return err
		}
		defer release(context.WithoutCancel(ctx))

		err = l.store.InTx(ctx, fn)
		if err != nil && isTransient(err) {
			slog.Warn("Ledger update conflicted", "operation", op, "attempt", attempt, "error", err)
		}
		return err
	})

	var exhausted *retry.ExhaustedError
	switch {
	case err == nil:
		metrics.IncBalanceUpdate(op, metrics.ResultSuccess)
		return nil
	case errors.As(err, &exhausted):
		metrics.IncBalanceUpdate(op, metrics.ResultConflict)
		return fmt.Errorf("%w: %w", models.ErrConcurrentUpdate, exhausted.Last)
	case errors.Is(err, models.ErrExpenseReversed):
		metrics.IncBalanceUpdate(op, metrics.ResultRejected)
		return err
	default:
		metrics.IncBalanceUpdate(op, metrics.ResultError)
		return err
	}
}

func isTransient(err error) bool {
	return errors.Is(err, storage.ErrConflict) || errors.Is(err, lock.ErrNotAcquired)
}

// lookupError maps a storage miss to the domain sentinel.
func lookupError(err, notFound error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %w", notFound, err)
	}
	return err
}
