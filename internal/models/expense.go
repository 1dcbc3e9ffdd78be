package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/money"
)

// SplitKind selects how an expense total is divided.
type SplitKind string

const (
	SplitEqual   SplitKind = "EQUAL"
	SplitUnequal SplitKind = "UNEQUAL"
)

// ParseSplitKind accepts EQUAL or UNEQUAL in any case.
func ParseSplitKind(s string) (SplitKind, error) {
	switch kind := SplitKind(strings.ToUpper(strings.TrimSpace(s))); kind {
	case SplitEqual, SplitUnequal:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: unknown split kind %q", ErrInvalidSplit, s)
	}
}

// UserShare is one user's portion of an expense.
type UserShare struct {
	UserID string
	Share  money.Money
}

// Expense is a shared cost and the input to a balance update.
// ParticipantIDs is used for EQUAL splits, Shares for UNEQUAL splits. Once
// recorded, Shares holds the computed split for either kind, payer included.
type Expense struct {
	ID             string
	GroupID        string
	PaidByUserID   string
	TotalAmount    money.Money
	Kind           SplitKind
	ParticipantIDs []string
	Shares         []UserShare
	Description    string
	CreatedAt      time.Time

	// ReversedAt is zero while the expense's debts stand.
	ReversedAt time.Time
}

// Reversed reports whether the expense's debts have been undone.
func (e *Expense) Reversed() bool {
	return !e.ReversedAt.IsZero()
}
