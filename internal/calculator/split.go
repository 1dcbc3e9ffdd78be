package calculator

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// ComputeSplits computes how much each participant owes for an expense.
// The result preserves input order.
//
// The total and any supplied shares must be whole cents.
//
// EQUAL: every participant (payer included) owes total / len(participants),
// rounded HALF_UP to two places. The shares are rounded independently, so they
// need not add back up to the total.
//
// UNEQUAL: shares are supplied by the caller; they must be positive and sum
// exactly to the total.
func ComputeSplits(total money.Money, kind models.SplitKind, participants []string, shares []models.UserShare) ([]models.UserShare, error) {
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total amount must be greater than zero", models.ErrInvalidSplit)
	}
	if total.HasSubCents() {
		return nil, fmt.Errorf("%w: total amount %s has more than two decimal places", models.ErrInvalidSplit, total)
	}

	switch kind {
	case models.SplitEqual:
		return equalSplit(total, participants)
	case models.SplitUnequal:
		return unequalSplit(total, shares)
	default:
		return nil, fmt.Errorf("%w: unknown split kind %q", models.ErrInvalidSplit, kind)
	}
}

func equalSplit(total money.Money, participants []string) ([]models.UserShare, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", models.ErrInvalidSplit)
	}
	if err := checkUnique(participants); err != nil {
		return nil, err
	}

	perPerson := total.DivN(len(participants))
	splits := make([]models.UserShare, len(participants))
	for i, p := range participants {
		splits[i] = models.UserShare{UserID: p, Share: perPerson}
	}
	return splits, nil
}

func unequalSplit(total money.Money, shares []models.UserShare) ([]models.UserShare, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: user shares are required for unequal split", models.ErrInvalidSplit)
	}

	ids := make([]string, len(shares))
	sum := money.Zero
	for i, s := range shares {
		if s.UserID == "" {
			return nil, fmt.Errorf("%w: share %d has no user", models.ErrInvalidSplit, i)
		}
		if !s.Share.IsPositive() {
			return nil, fmt.Errorf("%w: share for user %s must be positive", models.ErrInvalidSplit, s.UserID)
		}
		if s.Share.HasSubCents() {
			return nil, fmt.Errorf("%w: share %s for user %s has more than two decimal places", models.ErrInvalidSplit, s.Share, s.UserID)
		}
		ids[i] = s.UserID
		sum = sum.Add(s.Share)
	}
	if err := checkUnique(ids); err != nil {
		return nil, err
	}

	// Exact comparison: 29.995 against 30.00 is a mismatch.
	if sum.Cmp(total) != 0 {
		return nil, fmt.Errorf("%w: shares sum to %s, expected %s", models.ErrInvalidSplit, sum, total)
	}

	return append([]models.UserShare(nil), shares...), nil
}

func checkUnique(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty participant id", models.ErrInvalidSplit)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate participant %s", models.ErrInvalidSplit, id)
		}
		seen[id] = true
	}
	return nil
}
