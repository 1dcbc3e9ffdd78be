package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const edgeColumns = "group_id, debtor_id, creditor_id, amount, version, updated_at"

// tx implements storage.Tx over a *sql.Tx.
type tx struct {
	tx    *sql.Tx
	store *Store
}

// Ensure tx implements storage.Tx
var _ storage.Tx = (*tx)(nil)

// LockPair reads both directions of a pair under the dialect's row lock.
func (t *tx) LockPair(ctx context.Context, groupID, userA, userB string) ([]models.BalanceEdge, error) {
	query := `SELECT ` + edgeColumns + `
		FROM balance_edges
		WHERE group_id = ?
		  AND ((debtor_id = ? AND creditor_id = ?) OR (debtor_id = ? AND creditor_id = ?))
		ORDER BY debtor_id` + t.store.dialect.LockClause

	edges, err := t.store.scanEdges(ctx, t.tx, query, groupID, userA, userB, userB, userA)
	if err != nil {
		return nil, t.store.classify(fmt.Errorf("failed to lock pair: %w", err))
	}
	return edges, nil
}

// GetEdge reads one direction of a pair.
func (t *tx) GetEdge(ctx context.Context, groupID, debtorID, creditorID string) (*models.BalanceEdge, error) {
	query := `SELECT ` + edgeColumns + `
		FROM balance_edges
		WHERE group_id = ? AND debtor_id = ? AND creditor_id = ?` + t.store.dialect.LockClause

	edges, err := t.store.scanEdges(ctx, t.tx, query, groupID, debtorID, creditorID)
	if err != nil {
		return nil, t.store.classify(fmt.Errorf("failed to get edge: %w", err))
	}
	if len(edges) == 0 {
		return nil, fmt.Errorf("edge %s->%s in group %s: %w", debtorID, creditorID, groupID, storage.ErrNotFound)
	}
	return &edges[0], nil
}

// CreateEdge inserts a new edge at version 1.
func (t *tx) CreateEdge(ctx context.Context, edge *models.BalanceEdge) error {
	edge.Version = 1
	edge.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO balance_edges (` + edgeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := t.store.exec(ctx, t.tx, query,
		edge.GroupID, edge.DebtorID, edge.CreditorID, edge.Amount, edge.Version, toUnixNano(edge.UpdatedAt),
	)
	if t.store.dialect.unique(err) {
		return fmt.Errorf("edge %s->%s created concurrently: %w", edge.DebtorID, edge.CreditorID, storage.ErrConflict)
	}
	if err != nil {
		return t.store.classify(fmt.Errorf("failed to insert edge: %w", err))
	}
	return nil
}

// UpdateEdge writes the new amount under an optimistic version check.
func (t *tx) UpdateEdge(ctx context.Context, edge *models.BalanceEdge) error {
	now := time.Now().UTC()
	query := `
		UPDATE balance_edges
		SET amount = ?, version = version + 1, updated_at = ?
		WHERE group_id = ? AND debtor_id = ? AND creditor_id = ? AND version = ?
	`
	res, err := t.store.exec(ctx, t.tx, query,
		edge.Amount, toUnixNano(now), edge.GroupID, edge.DebtorID, edge.CreditorID, edge.Version,
	)
	if err != nil {
		return t.store.classify(fmt.Errorf("failed to update edge: %w", err))
	}
	if err := checkVersioned(res, edge); err != nil {
		return err
	}

	edge.Version++
	edge.UpdatedAt = now
	return nil
}

// DeleteEdge removes the edge under an optimistic version check.
func (t *tx) DeleteEdge(ctx context.Context, edge *models.BalanceEdge) error {
	query := `
		DELETE FROM balance_edges
		WHERE group_id = ? AND debtor_id = ? AND creditor_id = ? AND version = ?
	`
	res, err := t.store.exec(ctx, t.tx, query, edge.GroupID, edge.DebtorID, edge.CreditorID, edge.Version)
	if err != nil {
		return t.store.classify(fmt.Errorf("failed to delete edge: %w", err))
	}
	return checkVersioned(res, edge)
}

// ListGroupEdges returns every edge of the group under the row lock.
func (t *tx) ListGroupEdges(ctx context.Context, groupID string) ([]models.BalanceEdge, error) {
	query := `SELECT ` + edgeColumns + `
		FROM balance_edges
		WHERE group_id = ?
		ORDER BY debtor_id, creditor_id` + t.store.dialect.LockClause

	edges, err := t.store.scanEdges(ctx, t.tx, query, groupID)
	if err != nil {
		return nil, t.store.classify(fmt.Errorf("failed to list group edges: %w", err))
	}
	return edges, nil
}

// ListEdgesForUser returns the user's edges without taking locks.
func (s *Store) ListEdgesForUser(ctx context.Context, userID string) ([]models.BalanceEdge, error) {
	query := `SELECT ` + edgeColumns + `
		FROM balance_edges
		WHERE debtor_id = ? OR creditor_id = ?
		ORDER BY group_id, debtor_id, creditor_id`

	edges, err := s.scanEdges(ctx, s.db, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user edges: %w", err)
	}
	return edges, nil
}

// ListGroupEdges returns a group's edges without taking locks.
func (s *Store) ListGroupEdges(ctx context.Context, groupID string) ([]models.BalanceEdge, error) {
	query := `SELECT ` + edgeColumns + `
		FROM balance_edges
		WHERE group_id = ?
		ORDER BY debtor_id, creditor_id`

	edges, err := s.scanEdges(ctx, s.db, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group edges: %w", err)
	}
	return edges, nil
}

// CountOpenEdges counts edges with a positive amount. Amounts are compared
// as decimals in Go since SQLite stores them as text.
func (s *Store) CountOpenEdges(ctx context.Context) (int, error) {
	rows, err := s.query(ctx, s.db, "SELECT amount FROM balance_edges")
	if err != nil {
		return 0, fmt.Errorf("failed to count edges: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var edge models.BalanceEdge
		if err := rows.Scan(&edge.Amount); err != nil {
			return 0, fmt.Errorf("failed to scan amount: %w", err)
		}
		if edge.Amount.IsPositive() {
			count++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate edges: %w", err)
	}
	return count, nil
}

func (s *Store) scanEdges(ctx context.Context, q queryer, query string, args ...any) ([]models.BalanceEdge, error) {
	rows, err := s.query(ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []models.BalanceEdge
	for rows.Next() {
		var e models.BalanceEdge
		var updatedAt int64
		if err := rows.Scan(&e.GroupID, &e.DebtorID, &e.CreditorID, &e.Amount, &e.Version, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.UpdatedAt = fromUnixNano(updatedAt)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edges: %w", err)
	}
	return edges, nil
}

func checkVersioned(res sql.Result, edge *models.BalanceEdge) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("edge %s->%s in group %s changed since version %d: %w",
			edge.DebtorID, edge.CreditorID, edge.GroupID, edge.Version, storage.ErrConflict)
	}
	return nil
}
