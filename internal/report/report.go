// Package report builds read-only balance views. Reads take no locks and may
// observe a balance that a concurrent settlement is about to change.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Reporter answers balance queries.
type Reporter struct {
	store storage.Store
}

// New creates a Reporter.
func New(store storage.Store) *Reporter {
	return &Reporter{store: store}
}

// GetUserBalance aggregates every open edge touching the user.
func (r *Reporter) GetUserBalance(ctx context.Context, userID string) (*models.UserBalance, error) {
	slog.Debug("Calculating user balance", "user_id", userID)

	user, err := r.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", models.ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, err
	}

	edges, err := r.store.ListEdgesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	for _, e := range edges {
		if !e.Amount.IsPositive() {
			continue
		}
		if _, ok := names[e.GroupID]; ok {
			continue
		}
		group, err := r.store.GetGroup(ctx, e.GroupID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			names[e.GroupID] = ""
		case err != nil:
			return nil, err
		default:
			names[e.GroupID] = group.Name
		}
	}

	balance := calculator.SummarizeUserBalance(userID, edges, names)
	balance.UserName = user.Name

	slog.Debug("User balance calculated",
		"user_id", userID,
		"total_owed", balance.TotalOwed.String(),
		"total_owed_by", balance.TotalOwedBy.String(),
		"groups", len(balance.Groups))
	return &balance, nil
}

// GetGroupBalances lists the group's open edges ordered by debtor, then
// creditor.
func (r *Reporter) GetGroupBalances(ctx context.Context, groupID string) ([]models.BalanceEdge, error) {
	if _, err := r.store.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrGroupNotFound, groupID)
		}
		return nil, err
	}

	edges, err := r.store.ListGroupEdges(ctx, groupID)
	if err != nil {
		return nil, err
	}

	open := make([]models.BalanceEdge, 0, len(edges))
	for _, e := range edges {
		if e.Amount.IsPositive() {
			open = append(open, e)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if open[i].DebtorID != open[j].DebtorID {
			return open[i].DebtorID < open[j].DebtorID
		}
		return open[i].CreditorID < open[j].CreditorID
	})
	return open, nil
}
