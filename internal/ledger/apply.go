package ledger

import (
	"context"
	"log/slog"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// applyDebt is the netting rule. It must run inside a transaction that holds
// the pair lock for (groupID, debtorID, creditorID). Amounts are compared
// after rounding to cents, so a sub-cent debt never produces a zero edge.
//
//   - Opposite edge E exists (creditor owes debtor):
//     amount > E: delete E, debtor now owes creditor amount - E
//     amount < E: E shrinks to E - amount
//     amount = E: delete E
//   - Otherwise the direct edge grows by amount. It is deleted if the result
//     is not positive, and only created for a positive amount.
func applyDebt(ctx context.Context, tx storage.Tx, groupID, debtorID, creditorID string, amount money.Money) error {
	amount = amount.Round()
	if amount.IsZero() || debtorID == creditorID {
		return nil
	}

	edges, err := tx.LockPair(ctx, groupID, debtorID, creditorID)
	if err != nil {
		return err
	}

	var direct, opposite *models.BalanceEdge
	for i := range edges {
		if edges[i].DebtorID == debtorID {
			direct = &edges[i]
		} else {
			opposite = &edges[i]
		}
	}

	if opposite != nil {
		return netAgainstOpposite(ctx, tx, opposite, direct, amount)
	}
	return addToDirect(ctx, tx, groupID, debtorID, creditorID, direct, amount)
}

func netAgainstOpposite(ctx context.Context, tx storage.Tx, opposite, direct *models.BalanceEdge, amount money.Money) error {
	existing := opposite.Amount.Round()

	switch amount.Cmp(existing) {
	case 1:
		if err := tx.DeleteEdge(ctx, opposite); err != nil {
			return err
		}
		remaining := amount.Sub(existing)
		slog.Debug("Opposite balance cleared",
			"group_id", opposite.GroupID,
			"debtor_id", opposite.CreditorID,
			"creditor_id", opposite.DebtorID,
			"remaining", remaining.String())

		if direct != nil {
			direct.Amount = direct.Amount.Add(remaining)
			return tx.UpdateEdge(ctx, direct)
		}
		return tx.CreateEdge(ctx, &models.BalanceEdge{
			GroupID:    opposite.GroupID,
			DebtorID:   opposite.CreditorID,
			CreditorID: opposite.DebtorID,
			Amount:     remaining,
		})

	case -1:
		opposite.Amount = existing.Sub(amount)
		slog.Debug("Opposite balance reduced",
			"group_id", opposite.GroupID,
			"from", existing.String(),
			"to", opposite.Amount.String())
		return tx.UpdateEdge(ctx, opposite)

	default:
		slog.Debug("Opposite balance exactly cancelled", "group_id", opposite.GroupID)
		return tx.DeleteEdge(ctx, opposite)
	}
}

func addToDirect(ctx context.Context, tx storage.Tx, groupID, debtorID, creditorID string, direct *models.BalanceEdge, amount money.Money) error {
	if direct == nil {
		if !amount.IsPositive() {
			return nil
		}
		slog.Debug("New balance created",
			"group_id", groupID,
			"debtor_id", debtorID,
			"creditor_id", creditorID,
			"amount", amount.String())
		return tx.CreateEdge(ctx, &models.BalanceEdge{
			GroupID:    groupID,
			DebtorID:   debtorID,
			CreditorID: creditorID,
			Amount:     amount,
		})
	}

	old := direct.Amount.Round()
	direct.Amount = old.Add(amount)
	if !direct.Amount.IsPositive() {
		slog.Debug("Balance became zero or negative, deleted", "group_id", groupID, "was", old.String())
		return tx.DeleteEdge(ctx, direct)
	}

	slog.Debug("Balance updated", "group_id", groupID, "from", old.String(), "to", direct.Amount.String())
	return tx.UpdateEdge(ctx, direct)
}
