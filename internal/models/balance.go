package models

import (
	"time"

	"github.com/mmynk/splitledger/internal/money"
)

// BalanceEdge records that Debtor owes Creditor Amount inside one group.
//
// For any group and unordered user pair at most one direction exists. An edge
// with a non-positive amount is deleted by the ledger; the only exception is a
// settlement paying an edge down to zero, which keeps the row for audit.
type BalanceEdge struct {
	GroupID    string
	DebtorID   string
	CreditorID string
	Amount     money.Money

	// Version increases on every write and guards against lost updates.
	Version int64

	UpdatedAt time.Time
}

// Involves reports whether the edge connects the two users in either direction.
func (e *BalanceEdge) Involves(a, b string) bool {
	return (e.DebtorID == a && e.CreditorID == b) || (e.DebtorID == b && e.CreditorID == a)
}

// CounterpartyBalance is what the user owes one counterparty in one group.
// Positive means the user owes the counterparty; negative means the
// counterparty owes the user.
type CounterpartyBalance struct {
	UserID string
	Amount money.Money
}

// GroupBalance is the per-group breakdown of a user's position.
type GroupBalance struct {
	GroupID        string
	GroupName      string
	Counterparties []CounterpartyBalance
}

// UserBalance aggregates a user's position across every group.
type UserBalance struct {
	UserID   string
	UserName string

	// TotalOwed is what the user owes others.
	TotalOwed money.Money

	// TotalOwedBy is what others owe the user.
	TotalOwedBy money.Money

	// NetBalance is TotalOwed - TotalOwedBy.
	NetBalance money.Money

	Groups []GroupBalance
}
