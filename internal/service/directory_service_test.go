package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/ledgerv1"
)

func TestCreateUser(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	resp, err := c.directory.CreateUser(ctx, connect.NewRequest(&ledgerv1.CreateUserRequest{
		Name:  "  Alice ",
		Email: "alice@example.com",
	}))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	user := resp.Msg.User
	if user.ID == "" {
		t.Error("expected generated ID")
	}
	if user.Name != "Alice" {
		t.Errorf("expected trimmed name Alice, got %q", user.Name)
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := c.directory.GetUser(ctx, connect.NewRequest(&ledgerv1.GetUserRequest{UserID: user.ID}))
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Msg.User.Email != "alice@example.com" {
		t.Errorf("expected email to round trip, got %q", got.Msg.User.Email)
	}
}

func TestCreateUser_Errors(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	_, err := c.directory.CreateUser(ctx, connect.NewRequest(&ledgerv1.CreateUserRequest{Name: " "}))
	assertCode(t, err, connect.CodeInvalidArgument)

	if _, err := c.directory.CreateUser(ctx, connect.NewRequest(&ledgerv1.CreateUserRequest{ID: "alice", Name: "Alice"})); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	_, err = c.directory.CreateUser(ctx, connect.NewRequest(&ledgerv1.CreateUserRequest{ID: "alice", Name: "Alice again"}))
	assertCode(t, err, connect.CodeAlreadyExists)

	_, err = c.directory.GetUser(ctx, connect.NewRequest(&ledgerv1.GetUserRequest{UserID: "nobody"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestGroups(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	seedDirectory(t, c, "g1", "alice", "bob")
	ctx := context.Background()

	if _, err := c.directory.CreateUser(ctx, connect.NewRequest(&ledgerv1.CreateUserRequest{ID: "carol", Name: "Carol"})); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	resp, err := c.directory.AddGroupMembers(ctx, connect.NewRequest(&ledgerv1.AddGroupMembersRequest{
		GroupID: "g1",
		UserIDs: []string{"bob", "carol"},
	}))
	if err != nil {
		t.Fatalf("AddGroupMembers failed: %v", err)
	}
	members := resp.Msg.Group.Members
	if len(members) != 3 || members[2] != "carol" {
		t.Errorf("expected [alice bob carol], got %v", members)
	}

	got, err := c.directory.GetGroup(ctx, connect.NewRequest(&ledgerv1.GetGroupRequest{GroupID: "g1"}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Msg.Group.Name != "Group g1" {
		t.Errorf("unexpected group name %q", got.Msg.Group.Name)
	}
}

func TestGroups_Errors(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	seedDirectory(t, c, "g1", "alice")
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{
			name: "create without name",
			call: func() error {
				_, err := c.directory.CreateGroup(ctx, connect.NewRequest(&ledgerv1.CreateGroupRequest{Members: []string{"alice"}}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "create with unknown member",
			call: func() error {
				_, err := c.directory.CreateGroup(ctx, connect.NewRequest(&ledgerv1.CreateGroupRequest{Name: "Trip", Members: []string{"alice", "ghost"}}))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "get unknown group",
			call: func() error {
				_, err := c.directory.GetGroup(ctx, connect.NewRequest(&ledgerv1.GetGroupRequest{GroupID: "nope"}))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "add to unknown group",
			call: func() error {
				_, err := c.directory.AddGroupMembers(ctx, connect.NewRequest(&ledgerv1.AddGroupMembersRequest{GroupID: "nope", UserIDs: []string{"alice"}}))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "add nobody",
			call: func() error {
				_, err := c.directory.AddGroupMembers(ctx, connect.NewRequest(&ledgerv1.AddGroupMembersRequest{GroupID: "g1"}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, tt.call(), tt.want)
		})
	}
}
