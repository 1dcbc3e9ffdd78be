package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/lock"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/report"
	"github.com/mmynk/splitledger/internal/settlement"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/ledgerv1"
	"github.com/mmynk/splitledger/pkg/ledgerv1/ledgerv1connect"
)

// testAuthInterceptor returns a Connect interceptor that sets a test user ID in the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			return next(middleware.WithUserID(ctx, "alice"), req)
		}
	}
}

type testClients struct {
	ledger    ledgerv1connect.LedgerServiceClient
	directory ledgerv1connect.DirectoryServiceClient
	store     *sqlite.SQLiteStore
}

// setupTestServer serves both services over a temp SQLite database.
func setupTestServer(t *testing.T, interceptors ...connect.Interceptor) (*testClients, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	if len(interceptors) == 0 {
		interceptors = []connect.Interceptor{testAuthInterceptor()}
	}
	opts := connect.WithInterceptors(append(interceptors, middleware.LoggingInterceptor())...)

	locker := lock.NewMemoryLocker(time.Second)
	ledgerSvc := NewLedgerService(
		ledger.New(store, locker),
		settlement.NewEngine(store, locker),
		report.New(store),
	)
	ledgerPath, ledgerHandler := ledgerv1connect.NewLedgerServiceHandler(ledgerSvc, opts)
	dirPath, dirHandler := ledgerv1connect.NewDirectoryServiceHandler(NewDirectoryService(store), opts)

	mux := http.NewServeMux()
	mux.Handle(ledgerPath, ledgerHandler)
	mux.Handle(dirPath, dirHandler)

	server := httptest.NewServer(mux)

	clients := &testClients{
		ledger:    ledgerv1connect.NewLedgerServiceClient(http.DefaultClient, server.URL),
		directory: ledgerv1connect.NewDirectoryServiceClient(http.DefaultClient, server.URL),
		store:     store,
	}

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return clients, cleanup
}

// seedDirectory creates users and a group through the RPC surface.
func seedDirectory(t *testing.T, c *testClients, groupID string, users ...string) {
	t.Helper()
	ctx := context.Background()

	for _, u := range users {
		_, err := c.directory.CreateUser(ctx, connect.NewRequest(&ledgerv1.CreateUserRequest{ID: u, Name: u}))
		if err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", u, err)
		}
	}
	_, err := c.directory.CreateGroup(ctx, connect.NewRequest(&ledgerv1.CreateGroupRequest{
		ID:      groupID,
		Name:    "Group " + groupID,
		Members: users,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{models.ErrInvalidSplit, connect.CodeInvalidArgument},
		{models.ErrInvalidExpense, connect.CodeInvalidArgument},
		{models.ErrInvalidSettlement, connect.CodeInvalidArgument},
		{models.ErrUserNotFound, connect.CodeNotFound},
		{models.ErrGroupNotFound, connect.CodeNotFound},
		{models.ErrSettlementNotFound, connect.CodeNotFound},
		{models.ErrExpenseNotFound, connect.CodeNotFound},
		{fmt.Errorf("%w: %w", models.ErrInvalidExpense, models.ErrNotGroupMember), connect.CodeInvalidArgument},
		{models.ErrExpenseReversed, connect.CodeFailedPrecondition},
		{models.ErrInsufficientBalance, connect.CodeFailedPrecondition},
		{models.ErrExcessSettlement, connect.CodeFailedPrecondition},
		{models.ErrConcurrentSettlement, connect.CodeAborted},
		{models.ErrConcurrentUpdate, connect.CodeAborted},
		{context.DeadlineExceeded, connect.CodeDeadlineExceeded},
		{errors.New("disk on fire"), connect.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := codeOf(tt.err); got != tt.want {
				t.Errorf("codeOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	c, cleanup := setupTestServer(t, middleware.RequireAuth(jwtManager))
	defer cleanup()
	ctx := context.Background()

	_, err := c.directory.GetUser(ctx, connect.NewRequest(&ledgerv1.GetUserRequest{UserID: "alice"}))
	assertCode(t, err, connect.CodeUnauthenticated)

	req := connect.NewRequest(&ledgerv1.GetUserRequest{UserID: "alice"})
	req.Header().Set("Authorization", "Basic abc")
	_, err = c.directory.GetUser(ctx, req)
	assertCode(t, err, connect.CodeUnauthenticated)

	token, err := jwtManager.Generate(&models.User{ID: "alice"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	create := connect.NewRequest(&ledgerv1.CreateUserRequest{ID: "alice", Name: "Alice"})
	create.Header().Set("Authorization", "Bearer "+token)
	if _, err := c.directory.CreateUser(ctx, create); err != nil {
		t.Fatalf("authenticated CreateUser failed: %v", err)
	}
}
