package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = "id, group_id, paid_by_user_id, total_amount, split_type, description, created_at, reversed_at"

// CreateExpense inserts the expense and its shares within the transaction.
func (t *tx) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := t.store.exec(ctx, t.tx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.GroupID, e.PaidByUserID, e.TotalAmount, string(e.Kind), e.Description,
		toUnixNano(e.CreatedAt), toUnixNano(e.ReversedAt),
	)
	if t.store.dialect.unique(err) {
		return fmt.Errorf("expense %s already exists: %w", e.ID, storage.ErrConflict)
	}
	if err != nil {
		return t.store.classify(fmt.Errorf("failed to insert expense: %w", err))
	}

	for i, share := range e.Shares {
		_, err = t.store.exec(ctx, t.tx,
			"INSERT INTO expense_shares (expense_id, user_id, share, position) VALUES (?, ?, ?, ?)",
			e.ID, share.UserID, share.Share, i,
		)
		if err != nil {
			return t.store.classify(fmt.Errorf("failed to insert expense share: %w", err))
		}
	}
	return nil
}

// MarkExpenseReversed sets reversed_at on an expense that has not been
// reversed yet.
func (t *tx) MarkExpenseReversed(ctx context.Context, expenseID string, at time.Time) error {
	result, err := t.store.exec(ctx, t.tx,
		"UPDATE expenses SET reversed_at = ? WHERE id = ? AND reversed_at = 0",
		toUnixNano(at), expenseID,
	)
	if err != nil {
		return t.store.classify(fmt.Errorf("failed to mark expense reversed: %w", err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("unreversed expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its shares.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.queryRow(ctx, s.db,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?",
		expenseID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadShares(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesForGroup returns the group's expenses, newest first.
func (s *Store) ListExpensesForGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE group_id = ?
		ORDER BY created_at DESC, id`
	return s.listExpenses(ctx, query, groupID)
}

// ListExpensesForUser returns expenses the user paid or shares in.
func (s *Store) ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE paid_by_user_id = ?
		   OR id IN (SELECT expense_id FROM expense_shares WHERE user_id = ?)
		ORDER BY created_at DESC, id`
	return s.listExpenses(ctx, query, userID, userID)
}

func (s *Store) listExpenses(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadShares(ctx, expense); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// loadShares fills Shares and, for EQUAL splits, ParticipantIDs.
func (s *Store) loadShares(ctx context.Context, e *models.Expense) error {
	rows, err := s.query(ctx, s.db, `
		SELECT user_id, share
		FROM expense_shares
		WHERE expense_id = ?
		ORDER BY position`,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	e.Shares = nil
	for rows.Next() {
		var share models.UserShare
		if err := rows.Scan(&share.UserID, &share.Share); err != nil {
			return fmt.Errorf("failed to scan expense share: %w", err)
		}
		e.Shares = append(e.Shares, share)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense shares: %w", err)
	}

	if e.Kind == models.SplitEqual {
		e.ParticipantIDs = make([]string, len(e.Shares))
		for i, share := range e.Shares {
			e.ParticipantIDs[i] = share.UserID
		}
	}
	return nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	var kind string
	var createdAt, reversedAt int64
	if err := row.Scan(&e.ID, &e.GroupID, &e.PaidByUserID, &e.TotalAmount, &kind, &e.Description, &createdAt, &reversedAt); err != nil {
		return nil, err
	}
	e.Kind = models.SplitKind(kind)
	e.CreatedAt = fromUnixNano(createdAt)
	e.ReversedAt = fromUnixNano(reversedAt)
	return e, nil
}
