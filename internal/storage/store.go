// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write lost a race: a stale version,
	// a duplicate key created concurrently, a serialization failure or a
	// busy database. Callers may retry the whole transaction.
	ErrConflict = errors.New("write conflict")
)

// Directory is the user and group lookup the ledger depends on.
type Directory interface {
	// CreateUser persists a new user. The ID and CreatedAt fields are
	// populated by the store when empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser returns ErrNotFound for unknown ids.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// CreateGroup persists a group together with its members.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns ErrNotFound for unknown ids.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// AddGroupMembers appends users to a group. Existing members are ignored.
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error

	// CommonGroups lists the groups containing both users, ordered by
	// (CreatedAt, ID).
	CommonGroups(ctx context.Context, userA, userB string) ([]*models.Group, error)
}

// Store is the ledger's persistence layer. Reads outside InTx take no locks.
//
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the ledger or settlement layers.
type Store interface {
	Directory

	// InTx runs fn inside a single transaction. The transaction commits when
	// fn returns nil and rolls back otherwise. Serialization failures are
	// reported as ErrConflict.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// ListEdgesForUser returns every edge where the user is debtor or creditor.
	ListEdgesForUser(ctx context.Context, userID string) ([]models.BalanceEdge, error)

	// ListGroupEdges returns every edge of a group.
	ListGroupEdges(ctx context.Context, groupID string) ([]models.BalanceEdge, error)

	// CountOpenEdges counts edges with a positive amount.
	CountOpenEdges(ctx context.Context) (int, error)

	// GetSettlement loads a settlement with its details.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsForUser returns settlements where the user is payer or
	// receiver, newest first.
	ListSettlementsForUser(ctx context.Context, userID string) ([]*models.Settlement, error)

	// ListSettlementsBetween returns settlements between two users in either
	// direction, newest first.
	ListSettlementsBetween(ctx context.Context, userA, userB string) ([]*models.Settlement, error)

	// GetExpense loads an expense with its recorded shares.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesForGroup returns a group's expenses, newest first.
	ListExpensesForGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListExpensesForUser returns expenses the user paid or has a share in,
	// newest first.
	ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}

// Tx is the set of operations available inside InTx.
type Tx interface {
	// LockPair returns the edges between two users in a group, in either
	// direction, locking them for the rest of the transaction.
	LockPair(ctx context.Context, groupID, userA, userB string) ([]models.BalanceEdge, error)

	// GetEdge returns ErrNotFound when no edge exists in that direction.
	GetEdge(ctx context.Context, groupID, debtorID, creditorID string) (*models.BalanceEdge, error)

	// CreateEdge inserts a new edge at version 1. A concurrent insert of the
	// same key yields ErrConflict.
	CreateEdge(ctx context.Context, edge *models.BalanceEdge) error

	// UpdateEdge writes edge.Amount if the stored version still equals
	// edge.Version, then bumps edge.Version. A stale version yields ErrConflict.
	UpdateEdge(ctx context.Context, edge *models.BalanceEdge) error

	// DeleteEdge removes the edge under the same version check as UpdateEdge.
	DeleteEdge(ctx context.Context, edge *models.BalanceEdge) error

	// ListGroupEdges returns every edge of a group, locking them.
	ListGroupEdges(ctx context.Context, groupID string) ([]models.BalanceEdge, error)

	// CreateExpense inserts the expense and its shares in order. Empty IDs
	// are generated.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// MarkExpenseReversed stamps an expense as reversed. It returns
	// ErrNotFound when no unreversed expense has that id.
	MarkExpenseReversed(ctx context.Context, expenseID string, at time.Time) error

	// CreateSettlement inserts the settlement header and its details in order.
	// Empty IDs are generated.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
}
