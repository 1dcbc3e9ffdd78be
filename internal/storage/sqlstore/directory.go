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

// CreateUser inserts a new user into the database.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, name, email, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.exec(ctx, s.db, query, user.ID, user.Name, user.Email, toUnixNano(user.CreatedAt))
	if s.dialect.unique(err) {
		return fmt.Errorf("user %s already exists: %w", user.ID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by their ID.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, name, email, created_at
		FROM users
		WHERE id = ?
	`

	user := &models.User{}
	var createdAt int64
	err := s.queryRow(ctx, s.db, query, userID).Scan(&user.ID, &user.Name, &user.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt = fromUnixNano(createdAt)
	return user, nil
}

// CreateGroup persists a group and its members in one transaction.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = s.exec(ctx, tx,
		"INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)",
		group.ID, group.Name, toUnixNano(group.CreatedAt),
	)
	if s.dialect.unique(err) {
		return fmt.Errorf("group %s already exists: %w", group.ID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if err := s.insertMembers(ctx, tx, group.ID, 0, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var createdAt int64
	err := s.queryRow(ctx, s.db,
		"SELECT id, name, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.CreatedAt = fromUnixNano(createdAt)

	group.Members, err = s.loadMembers(ctx, s.db, groupID)
	if err != nil {
		return nil, err
	}
	return group, nil
}

// AddGroupMembers appends users to an existing group.
func (s *Store) AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = s.queryRow(ctx, tx, "SELECT COUNT(*) FROM groups WHERE id = ?", groupID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check group: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}

	var next int
	err = s.queryRow(ctx, tx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM group_members WHERE group_id = ?",
		groupID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to read member position: %w", err)
	}

	if err := s.insertMembers(ctx, tx, groupID, next, userIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CommonGroups lists groups containing both users, oldest first.
func (s *Store) CommonGroups(ctx context.Context, userA, userB string) ([]*models.Group, error) {
	query := `
		SELECT g.id, g.name, g.created_at
		FROM groups g
		JOIN group_members a ON a.group_id = g.id AND a.user_id = ?
		JOIN group_members b ON b.group_id = g.id AND b.user_id = ?
		ORDER BY g.created_at, g.id
	`
	rows, err := s.query(ctx, s.db, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("failed to query common groups: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		g := &models.Group{}
		var createdAt int64
		if err := rows.Scan(&g.ID, &g.Name, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		g.CreatedAt = fromUnixNano(createdAt)
		groups = append(groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	// Members are loaded after the cursor is closed; SQLite runs on one connection.
	for _, g := range groups {
		if g.Members, err = s.loadMembers(ctx, s.db, g.ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (s *Store) insertMembers(ctx context.Context, q queryer, groupID string, start int, userIDs []string) error {
	query := `
		INSERT INTO group_members (group_id, user_id, position)
		VALUES (?, ?, ?)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`
	for i, userID := range userIDs {
		if _, err := s.exec(ctx, q, query, groupID, userID, start+i); err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}
	return nil
}

func (s *Store) loadMembers(ctx context.Context, q queryer, groupID string) ([]string, error) {
	rows, err := s.query(ctx, q,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}
