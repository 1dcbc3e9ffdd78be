package service

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/ledgerv1"
)

func parseAmount(field, s string) (money.Money, error) {
	if s == "" {
		return money.Zero, fmt.Errorf("%s is required", field)
	}
	m, err := money.Parse(s)
	if err != nil {
		return money.Zero, fmt.Errorf("%s: %w", field, err)
	}
	return m, nil
}

func expenseFromProto(e *ledgerv1.Expense) (models.Expense, error) {
	if e == nil {
		return models.Expense{}, fmt.Errorf("%w: expense is required", models.ErrInvalidExpense)
	}

	total, err := parseAmount("total_amount", e.TotalAmount)
	if err != nil {
		return models.Expense{}, fmt.Errorf("%w: %w", models.ErrInvalidExpense, err)
	}
	kind, err := models.ParseSplitKind(e.SplitType)
	if err != nil {
		return models.Expense{}, err
	}

	shares := make([]models.UserShare, 0, len(e.Shares))
	for _, s := range e.Shares {
		if s == nil {
			continue
		}
		amount, err := parseAmount("share for "+s.UserID, s.Share)
		if err != nil {
			return models.Expense{}, fmt.Errorf("%w: %w", models.ErrInvalidSplit, err)
		}
		shares = append(shares, models.UserShare{UserID: s.UserID, Share: amount})
	}

	return models.Expense{
		GroupID:        e.GroupID,
		PaidByUserID:   e.PaidByUserID,
		TotalAmount:    total,
		Kind:           kind,
		ParticipantIDs: e.ParticipantIDs,
		Shares:         shares,
		Description:    e.Description,
	}, nil
}

func expenseToProto(e *models.Expense) *ledgerv1.Expense {
	shares := make([]*ledgerv1.UserShare, len(e.Shares))
	for i, sh := range e.Shares {
		shares[i] = &ledgerv1.UserShare{UserID: sh.UserID, Share: sh.Share.String()}
	}
	out := &ledgerv1.Expense{
		ID:             e.ID,
		GroupID:        e.GroupID,
		PaidByUserID:   e.PaidByUserID,
		TotalAmount:    e.TotalAmount.String(),
		SplitType:      string(e.Kind),
		ParticipantIDs: e.ParticipantIDs,
		Shares:         shares,
		Description:    e.Description,
	}
	if !e.CreatedAt.IsZero() {
		createdAt := e.CreatedAt
		out.CreatedAt = &createdAt
	}
	if e.Reversed() {
		reversedAt := e.ReversedAt
		out.ReversedAt = &reversedAt
	}
	return out
}

func userToProto(u *models.User) *ledgerv1.User {
	return &ledgerv1.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func groupToProto(g *models.Group) *ledgerv1.Group {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return &ledgerv1.Group{
		ID:        g.ID,
		Name:      g.Name,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func balanceToProto(e models.BalanceEdge) *ledgerv1.Balance {
	return &ledgerv1.Balance{
		GroupID:    e.GroupID,
		DebtorID:   e.DebtorID,
		CreditorID: e.CreditorID,
		Amount:     e.Amount.String(),
		UpdatedAt:  e.UpdatedAt,
	}
}

func userBalanceToProto(b *models.UserBalance) *ledgerv1.UserBalance {
	groups := make([]*ledgerv1.GroupBalance, len(b.Groups))
	for i, g := range b.Groups {
		cps := make([]*ledgerv1.CounterpartyBalance, len(g.Counterparties))
		for j, cp := range g.Counterparties {
			cps[j] = &ledgerv1.CounterpartyBalance{UserID: cp.UserID, Amount: cp.Amount.String()}
		}
		groups[i] = &ledgerv1.GroupBalance{GroupID: g.GroupID, GroupName: g.GroupName, Counterparties: cps}
	}
	return &ledgerv1.UserBalance{
		UserID:      b.UserID,
		UserName:    b.UserName,
		TotalOwed:   b.TotalOwed.String(),
		TotalOwedBy: b.TotalOwedBy.String(),
		NetBalance:  b.NetBalance.String(),
		Groups:      groups,
	}
}

func settlementToProto(s *models.Settlement) *ledgerv1.Settlement {
	details := make([]*ledgerv1.SettlementDetail, len(s.Details))
	for i, d := range s.Details {
		details[i] = &ledgerv1.SettlementDetail{
			ID:            d.ID,
			GroupID:       d.GroupID,
			AmountSettled: d.AmountSettled.String(),
			BalanceBefore: d.BalanceBefore.String(),
			BalanceAfter:  d.BalanceAfter.String(),
		}
	}
	return &ledgerv1.Settlement{
		ID:          s.ID,
		PayerID:     s.PayerID,
		ReceiverID:  s.ReceiverID,
		Amount:      s.Amount.String(),
		Description: s.Description,
		Status:      string(s.Status),
		SettledAt:   s.SettledAt,
		Details:     details,
	}
}
