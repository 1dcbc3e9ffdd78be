// Package ledgerv1 holds the wire messages of the splitledger.v1 API.
// Amounts travel as decimal strings such as "12.50".
package ledgerv1

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserShare struct {
	UserID string `json:"userId"`
	Share  string `json:"share"`
}

// Expense describes a shared cost. ParticipantIDs drives EQUAL splits, Shares
// drives UNEQUAL splits. ID, CreatedAt and ReversedAt are set by the server;
// on recorded expenses Shares holds the computed split.
type Expense struct {
	ID             string       `json:"id,omitempty"`
	GroupID        string       `json:"groupId"`
	PaidByUserID   string       `json:"paidByUserId"`
	TotalAmount    string       `json:"totalAmount"`
	SplitType      string       `json:"splitType"`
	ParticipantIDs []string     `json:"participantIds,omitempty"`
	Shares         []*UserShare `json:"shares,omitempty"`
	Description    string       `json:"description,omitempty"`
	CreatedAt      *time.Time   `json:"createdAt,omitempty"`
	ReversedAt     *time.Time   `json:"reversedAt,omitempty"`
}

// Balance is one open edge: Debtor owes Creditor Amount in Group.
type Balance struct {
	GroupID    string    `json:"groupId"`
	DebtorID   string    `json:"debtorId"`
	CreditorID string    `json:"creditorId"`
	Amount     string    `json:"amount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CounterpartyBalance is positive when the user owes UserID and negative when
// UserID owes the user.
type CounterpartyBalance struct {
	UserID string `json:"userId"`
	Amount string `json:"amount"`
}

type GroupBalance struct {
	GroupID        string                 `json:"groupId"`
	GroupName      string                 `json:"groupName"`
	Counterparties []*CounterpartyBalance `json:"counterparties"`
}

type UserBalance struct {
	UserID      string          `json:"userId"`
	UserName    string          `json:"userName"`
	TotalOwed   string          `json:"totalOwed"`
	TotalOwedBy string          `json:"totalOwedBy"`
	NetBalance  string          `json:"netBalance"`
	Groups      []*GroupBalance `json:"groups"`
}

type SettlementDetail struct {
	ID            string `json:"id"`
	GroupID       string `json:"groupId"`
	AmountSettled string `json:"amountSettled"`
	BalanceBefore string `json:"balanceBefore"`
	BalanceAfter  string `json:"balanceAfter"`
}

type Settlement struct {
	ID          string              `json:"id"`
	PayerID     string              `json:"payerId"`
	ReceiverID  string              `json:"receiverId"`
	Amount      string              `json:"amount"`
	Description string              `json:"description,omitempty"`
	Status      string              `json:"status"`
	SettledAt   time.Time           `json:"settledAt"`
	Details     []*SettlementDetail `json:"details"`
}

// LedgerService

type UpdateBalancesForExpenseRequest struct {
	Expense *Expense `json:"expense"`
}

type UpdateBalancesForExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ReverseExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type ReverseExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// ListExpensesRequest lists a group's expenses or a user's. Exactly one of
// GroupID and UserID is set.
type ListExpensesRequest struct {
	GroupID string `json:"groupId,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type SettleBalanceRequest struct {
	PayerID     string `json:"payerId"`
	ReceiverID  string `json:"receiverId"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type SettleBalanceResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type GetUserBalanceRequest struct {
	UserID string `json:"userId"`
}

type GetUserBalanceResponse struct {
	Balance *UserBalance `json:"balance"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances []*Balance `json:"balances"`
}

type SimplifyBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type SimplifyBalancesResponse struct {
	Removed int32 `json:"removed"`
}

// ListSettlementsRequest lists the user's settlements. When CounterpartyID is
// set only settlements between the two users are returned.
type ListSettlementsRequest struct {
	UserID         string `json:"userId"`
	CounterpartyID string `json:"counterpartyId,omitempty"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type GetSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type GetSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

// DirectoryService

type CreateUserRequest struct {
	// ID is optional; one is generated when empty.
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type CreateUserResponse struct {
	User *User `json:"user"`
}

type GetUserRequest struct {
	UserID string `json:"userId"`
}

type GetUserResponse struct {
	User *User `json:"user"`
}

type CreateGroupRequest struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type AddGroupMembersRequest struct {
	GroupID string   `json:"groupId"`
	UserIDs []string `json:"userIds"`
}

type AddGroupMembersResponse struct {
	Group *Group `json:"group"`
}
