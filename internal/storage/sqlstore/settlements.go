package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const settlementColumns = "id, payer_id, receiver_id, amount, description, status, settled_at"

// CreateSettlement inserts the header and details within the transaction.
func (t *tx) CreateSettlement(ctx context.Context, s *models.Settlement) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.SettledAt.IsZero() {
		s.SettledAt = time.Now().UTC()
	}

	_, err := t.store.exec(ctx, t.tx,
		"INSERT INTO settlements ("+settlementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.ID, s.PayerID, s.ReceiverID, s.Amount, s.Description, string(s.Status), toUnixNano(s.SettledAt),
	)
	if err != nil {
		return t.store.classify(fmt.Errorf("failed to insert settlement: %w", err))
	}

	for i := range s.Details {
		d := &s.Details[i]
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		d.SettlementID = s.ID

		_, err = t.store.exec(ctx, t.tx, `
			INSERT INTO settlement_details
			    (id, settlement_id, group_id, amount_settled, balance_before, balance_after, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.SettlementID, d.GroupID, d.AmountSettled, d.BalanceBefore, d.BalanceAfter, i,
		)
		if err != nil {
			return t.store.classify(fmt.Errorf("failed to insert settlement detail: %w", err))
		}
	}

	return nil
}

// GetSettlement retrieves a settlement by ID, including its details.
func (s *Store) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.queryRow(ctx, s.db,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?",
		settlementID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	if settlement.Details, err = s.loadDetails(ctx, settlement.ID); err != nil {
		return nil, err
	}
	return settlement, nil
}

// ListSettlementsForUser returns settlements the user paid or received.
func (s *Store) ListSettlementsForUser(ctx context.Context, userID string) ([]*models.Settlement, error) {
	query := `SELECT ` + settlementColumns + `
		FROM settlements
		WHERE payer_id = ? OR receiver_id = ?
		ORDER BY settled_at DESC, id`
	return s.listSettlements(ctx, query, userID, userID)
}

// ListSettlementsBetween returns settlements between two users in either direction.
func (s *Store) ListSettlementsBetween(ctx context.Context, userA, userB string) ([]*models.Settlement, error) {
	query := `SELECT ` + settlementColumns + `
		FROM settlements
		WHERE (payer_id = ? AND receiver_id = ?) OR (payer_id = ? AND receiver_id = ?)
		ORDER BY settled_at DESC, id`
	return s.listSettlements(ctx, query, userA, userB, userB, userA)
}

func (s *Store) listSettlements(ctx context.Context, query string, args ...any) ([]*models.Settlement, error) {
	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	for _, settlement := range settlements {
		if settlement.Details, err = s.loadDetails(ctx, settlement.ID); err != nil {
			return nil, err
		}
	}
	return settlements, nil
}

func (s *Store) loadDetails(ctx context.Context, settlementID string) ([]models.SettlementDetail, error) {
	rows, err := s.query(ctx, s.db, `
		SELECT id, settlement_id, group_id, amount_settled, balance_before, balance_after
		FROM settlement_details
		WHERE settlement_id = ?
		ORDER BY position`,
		settlementID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement details: %w", err)
	}
	defer rows.Close()

	var details []models.SettlementDetail
	for rows.Next() {
		var d models.SettlementDetail
		if err := rows.Scan(&d.ID, &d.SettlementID, &d.GroupID, &d.AmountSettled, &d.BalanceBefore, &d.BalanceAfter); err != nil {
			return nil, fmt.Errorf("failed to scan settlement detail: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement details: %w", err)
	}
	return details, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	s := &models.Settlement{}
	var status string
	var settledAt int64
	if err := row.Scan(&s.ID, &s.PayerID, &s.ReceiverID, &s.Amount, &s.Description, &status, &settledAt); err != nil {
		return nil, err
	}
	s.Status = models.SettlementStatus(status)
	s.SettledAt = fromUnixNano(settledAt)
	return s, nil
}
