package models

import "errors"

// Sentinel errors shared by the ledger, settlement and reporting layers.
// Callers wrap them with context and classify with errors.Is.
var (
	// Client errors, never retried.
	ErrInvalidSplit      = errors.New("invalid split")
	ErrInvalidExpense    = errors.New("invalid expense")
	ErrInvalidSettlement = errors.New("invalid settlement")
	ErrNotGroupMember    = errors.New("user is not part of the group")

	// Business-rule rejections.
	ErrInsufficientBalance = errors.New("no outstanding balance between users")
	ErrExcessSettlement    = errors.New("excess settlement amount not supported")
	ErrExpenseReversed     = errors.New("expense already reversed")

	// Transient failures surfaced after the retry budget is spent.
	ErrConcurrentSettlement = errors.New("concurrent settlement detected, please retry")
	ErrConcurrentUpdate     = errors.New("concurrent balance update detected, please retry")

	// Collaborator lookups.
	ErrUserNotFound       = errors.New("user not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrExpenseNotFound    = errors.New("expense not found")
)
