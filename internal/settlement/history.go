package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ListSettlements returns every settlement the user paid or received, newest
// first, with details.
func (e *Engine) ListSettlements(ctx context.Context, userID string) ([]*models.Settlement, error) {
	slog.Info("Fetching settlements for user", "user_id", userID)

	if err := e.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return e.store.ListSettlementsForUser(ctx, userID)
}

// ListSettlementsBetween returns settlements between two users in either
// direction, newest first.
func (e *Engine) ListSettlementsBetween(ctx context.Context, userA, userB string) ([]*models.Settlement, error) {
	for _, id := range []string{userA, userB} {
		if err := e.requireUser(ctx, id); err != nil {
			return nil, err
		}
	}
	return e.store.ListSettlementsBetween(ctx, userA, userB)
}

// GetSettlement loads one settlement with its details.
func (e *Engine) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	s, err := e.store.GetSettlement(ctx, settlementID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", models.ErrSettlementNotFound, settlementID)
	}
	return s, err
}

func (e *Engine) requireUser(ctx context.Context, userID string) error {
	_, err := e.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", models.ErrUserNotFound, userID)
	}
	return err
}
