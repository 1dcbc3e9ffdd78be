package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// prepareExpense validates the request against the directory and returns the
// computed split together with the debts owed to the payer. Shares of the
// payer produce no debt.
func (l *Ledger) prepareExpense(ctx context.Context, expense models.Expense) ([]models.UserShare, []debt, error) {
	if expense.GroupID == "" {
		return nil, nil, fmt.Errorf("%w: group id is required", models.ErrInvalidExpense)
	}
	if expense.PaidByUserID == "" {
		return nil, nil, fmt.Errorf("%w: paid by user id is required", models.ErrInvalidExpense)
	}
	if expense.Kind == "" {
		return nil, nil, fmt.Errorf("%w: split kind is required", models.ErrInvalidExpense)
	}

	group, err := l.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, nil, lookupError(err, models.ErrGroupNotFound)
	}
	if err := l.requireUser(ctx, expense.PaidByUserID); err != nil {
		return nil, nil, err
	}
	if err := requireMember(group, expense.PaidByUserID); err != nil {
		return nil, nil, err
	}

	shares, err := calculator.ComputeSplits(expense.TotalAmount, expense.Kind, expense.ParticipantIDs, expense.Shares)
	if err != nil {
		return nil, nil, err
	}

	debts := make([]debt, 0, len(shares))
	for _, s := range shares {
		if s.UserID == expense.PaidByUserID {
			continue
		}
		if err := l.requireUser(ctx, s.UserID); err != nil {
			return nil, nil, err
		}
		if err := requireMember(group, s.UserID); err != nil {
			return nil, nil, err
		}
		debts = append(debts, debt{debtorID: s.UserID, creditorID: expense.PaidByUserID, amount: s.Share})
	}
	return shares, debts, nil
}

// GetExpense loads a recorded expense with its shares.
func (l *Ledger) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	if expenseID == "" {
		return nil, fmt.Errorf("%w: expense id is required", models.ErrInvalidExpense)
	}
	expense, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, lookupError(err, models.ErrExpenseNotFound)
	}
	return expense, nil
}

// ListGroupExpenses returns the group's expenses, newest first, reversed
// ones included.
func (l *Ledger) ListGroupExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, lookupError(err, models.ErrGroupNotFound)
	}
	return l.store.ListExpensesForGroup(ctx, groupID)
}

// ListUserExpenses returns expenses the user paid or took part in, newest
// first.
func (l *Ledger) ListUserExpenses(ctx context.Context, userID string) ([]*models.Expense, error) {
	if err := l.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return l.store.ListExpensesForUser(ctx, userID)
}

func (l *Ledger) requireUser(ctx context.Context, userID string) error {
	_, err := l.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", models.ErrUserNotFound, userID)
	}
	return err
}

func requireMember(group *models.Group, userID string) error {
	if !group.HasMember(userID) {
		return fmt.Errorf("%w: %w: user %s, group %s", models.ErrInvalidExpense, models.ErrNotGroupMember, userID, group.ID)
	}
	return nil
}
