package models

import (
	"time"

	"github.com/mmynk/splitledger/internal/money"
)

// SettlementStatus is the lifecycle state of a persisted settlement.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "PENDING"
	SettlementCompleted SettlementStatus = "COMPLETED"
	SettlementFailed    SettlementStatus = "FAILED"
)

// Settlement is a payment from Payer to Receiver distributed across every
// group the two share. Immutable after creation except for Status.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// PayerID is the user paying down their debt.
	PayerID string

	// ReceiverID is the creditor being paid.
	ReceiverID string

	// Amount is the total paid.
	Amount money.Money

	// Description is an optional free-text note.
	Description string

	Status SettlementStatus

	SettledAt time.Time

	// Details holds one row per group touched, in allocation order.
	Details []SettlementDetail
}

// SettlementDetail is the append-only audit row for one group touched by a
// settlement.
type SettlementDetail struct {
	ID            string
	SettlementID  string
	GroupID       string
	AmountSettled money.Money
	BalanceBefore money.Money
	BalanceAfter  money.Money
}
