package calculator

import (
	"sort"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// SummarizeUserBalance aggregates the edges touching userID into a
// UserBalance.
//
// Algorithm:
// - Edges with a non-positive amount are ignored (settled edges kept for audit)
// - Debtor side adds to TotalOwed, creditor side adds to TotalOwedBy
// - Net = TotalOwed - TotalOwedBy
// - Groups are returned sorted by ID, counterparties in edge order
//
// groupNames maps group IDs to display names and may be nil.
func SummarizeUserBalance(userID string, edges []models.BalanceEdge, groupNames map[string]string) models.UserBalance {
	result := models.UserBalance{
		UserID:      userID,
		TotalOwed:   money.Zero,
		TotalOwedBy: money.Zero,
	}

	byGroup := make(map[string]*models.GroupBalance)
	for _, edge := range edges {
		if !edge.Amount.IsPositive() {
			continue
		}

		var cp models.CounterpartyBalance
		switch userID {
		case edge.DebtorID:
			result.TotalOwed = result.TotalOwed.Add(edge.Amount)
			cp = models.CounterpartyBalance{UserID: edge.CreditorID, Amount: edge.Amount}
		case edge.CreditorID:
			result.TotalOwedBy = result.TotalOwedBy.Add(edge.Amount)
			cp = models.CounterpartyBalance{UserID: edge.DebtorID, Amount: edge.Amount.Neg()}
		default:
			continue
		}

		gb, ok := byGroup[edge.GroupID]
		if !ok {
			gb = &models.GroupBalance{GroupID: edge.GroupID, GroupName: groupNames[edge.GroupID]}
			byGroup[edge.GroupID] = gb
		}
		gb.Counterparties = append(gb.Counterparties, cp)
	}

	result.NetBalance = result.TotalOwed.Sub(result.TotalOwedBy)

	for _, gb := range byGroup {
		result.Groups = append(result.Groups, *gb)
	}
	sort.Slice(result.Groups, func(i, j int) bool {
		return result.Groups[i].GroupID < result.Groups[j].GroupID
	})

	return result
}
