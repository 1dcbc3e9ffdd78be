package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/ledgerv1"
	"github.com/mmynk/splitledger/pkg/ledgerv1/ledgerv1connect"
)

// DirectoryService implements the Connect DirectoryService
type DirectoryService struct {
	ledgerv1connect.UnimplementedDirectoryServiceHandler
	store storage.Directory
}

// NewDirectoryService creates a new DirectoryService with the given storage backend.
func NewDirectoryService(store storage.Directory) *DirectoryService {
	return &DirectoryService{store: store}
}

// CreateUser registers a user.
func (s *DirectoryService) CreateUser(ctx context.Context, req *connect.Request[ledgerv1.CreateUserRequest]) (*connect.Response[ledgerv1.CreateUserResponse], error) {
	slog.Info("CreateUser request received", "id", req.Msg.ID, "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("CreateUser", errors.New("name required"))
	}

	user := &models.User{
		ID:    req.Msg.ID,
		Name:  name,
		Email: strings.TrimSpace(req.Msg.Email),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, toConnectError("CreateUser", err)
	}

	slog.Info("User created", "user_id", user.ID)

	return connect.NewResponse(&ledgerv1.CreateUserResponse{User: userToProto(user)}), nil
}

// GetUser retrieves a user by ID.
func (s *DirectoryService) GetUser(ctx context.Context, req *connect.Request[ledgerv1.GetUserRequest]) (*connect.Response[ledgerv1.GetUserResponse], error) {
	slog.Info("GetUser request received", "user_id", req.Msg.UserID)

	user, err := s.store.GetUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError("GetUser", err)
	}

	return connect.NewResponse(&ledgerv1.GetUserResponse{User: userToProto(user)}), nil
}

// CreateGroup creates a new group. Every member must already exist.
func (s *DirectoryService) CreateGroup(ctx context.Context, req *connect.Request[ledgerv1.CreateGroupRequest]) (*connect.Response[ledgerv1.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("CreateGroup", errors.New("name required"))
	}
	if err := s.requireUsers(ctx, req.Msg.Members); err != nil {
		return nil, toConnectError("CreateGroup", err)
	}

	group := &models.Group{
		ID:      req.Msg.ID,
		Name:    name,
		Members: req.Msg.Members,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, toConnectError("CreateGroup", err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&ledgerv1.CreateGroupResponse{Group: groupToProto(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *DirectoryService) GetGroup(ctx context.Context, req *connect.Request[ledgerv1.GetGroupRequest]) (*connect.Response[ledgerv1.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetGroup", err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&ledgerv1.GetGroupResponse{Group: groupToProto(group)}), nil
}

// AddGroupMembers appends users to a group and returns the updated group.
func (s *DirectoryService) AddGroupMembers(ctx context.Context, req *connect.Request[ledgerv1.AddGroupMembersRequest]) (*connect.Response[ledgerv1.AddGroupMembersResponse], error) {
	slog.Info("AddGroupMembers request received",
		"group_id", req.Msg.GroupID,
		"new_members", req.Msg.UserIDs,
	)

	if len(req.Msg.UserIDs) == 0 {
		return nil, invalidArgument("AddGroupMembers", errors.New("user_ids required"))
	}
	if _, err := s.store.GetGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, toConnectError("AddGroupMembers", err)
	}
	if err := s.requireUsers(ctx, req.Msg.UserIDs); err != nil {
		return nil, toConnectError("AddGroupMembers", err)
	}

	if err := s.store.AddGroupMembers(ctx, req.Msg.GroupID, req.Msg.UserIDs); err != nil {
		return nil, toConnectError("AddGroupMembers", err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("AddGroupMembers", err)
	}

	return connect.NewResponse(&ledgerv1.AddGroupMembersResponse{Group: groupToProto(group)}), nil
}

func (s *DirectoryService) requireUsers(ctx context.Context, userIDs []string) error {
	for _, id := range userIDs {
		_, err := s.store.GetUser(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", models.ErrUserNotFound, id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
