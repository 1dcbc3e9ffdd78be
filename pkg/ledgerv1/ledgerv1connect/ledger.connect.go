package ledgerv1connect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/ledgerv1"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Procedure paths, relative to the server root.
const (
	LedgerServiceUpdateBalancesForExpenseProcedure = "/splitledger.v1.LedgerService/UpdateBalancesForExpense"
	LedgerServiceReverseExpenseProcedure           = "/splitledger.v1.LedgerService/ReverseExpense"
	LedgerServiceSettleBalanceProcedure            = "/splitledger.v1.LedgerService/SettleBalance"
	LedgerServiceGetUserBalanceProcedure           = "/splitledger.v1.LedgerService/GetUserBalance"
	LedgerServiceGetGroupBalancesProcedure         = "/splitledger.v1.LedgerService/GetGroupBalances"
	LedgerServiceSimplifyBalancesProcedure         = "/splitledger.v1.LedgerService/SimplifyBalances"
	LedgerServiceListSettlementsProcedure          = "/splitledger.v1.LedgerService/ListSettlements"
	LedgerServiceGetSettlementProcedure            = "/splitledger.v1.LedgerService/GetSettlement"
	LedgerServiceGetExpenseProcedure               = "/splitledger.v1.LedgerService/GetExpense"
	LedgerServiceListExpensesProcedure             = "/splitledger.v1.LedgerService/ListExpenses"
)

// LedgerServiceClient is a client for the splitledger.v1.LedgerService service.
type LedgerServiceClient interface {
	UpdateBalancesForExpense(context.Context, *connect.Request[ledgerv1.UpdateBalancesForExpenseRequest]) (*connect.Response[ledgerv1.UpdateBalancesForExpenseResponse], error)
	ReverseExpense(context.Context, *connect.Request[ledgerv1.ReverseExpenseRequest]) (*connect.Response[ledgerv1.ReverseExpenseResponse], error)
	SettleBalance(context.Context, *connect.Request[ledgerv1.SettleBalanceRequest]) (*connect.Response[ledgerv1.SettleBalanceResponse], error)
	GetUserBalance(context.Context, *connect.Request[ledgerv1.GetUserBalanceRequest]) (*connect.Response[ledgerv1.GetUserBalanceResponse], error)
	GetGroupBalances(context.Context, *connect.Request[ledgerv1.GetGroupBalancesRequest]) (*connect.Response[ledgerv1.GetGroupBalancesResponse], error)
	SimplifyBalances(context.Context, *connect.Request[ledgerv1.SimplifyBalancesRequest]) (*connect.Response[ledgerv1.SimplifyBalancesResponse], error)
	ListSettlements(context.Context, *connect.Request[ledgerv1.ListSettlementsRequest]) (*connect.Response[ledgerv1.ListSettlementsResponse], error)
	GetSettlement(context.Context, *connect.Request[ledgerv1.GetSettlementRequest]) (*connect.Response[ledgerv1.GetSettlementResponse], error)
	GetExpense(context.Context, *connect.Request[ledgerv1.GetExpenseRequest]) (*connect.Response[ledgerv1.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ledgerv1.ListExpensesRequest]) (*connect.Response[ledgerv1.ListExpensesResponse], error)
}

// NewLedgerServiceClient constructs a client for the splitledger.v1.LedgerService service.
// Messages are encoded as JSON; baseURL is the server root, e.g.
// http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &ledgerServiceClient{
		updateBalancesForExpense: connect.NewClient[ledgerv1.UpdateBalancesForExpenseRequest, ledgerv1.UpdateBalancesForExpenseResponse](
			httpClient,
			baseURL+LedgerServiceUpdateBalancesForExpenseProcedure,
			opts...,
		),
		reverseExpense: connect.NewClient[ledgerv1.ReverseExpenseRequest, ledgerv1.ReverseExpenseResponse](
			httpClient,
			baseURL+LedgerServiceReverseExpenseProcedure,
			opts...,
		),
		settleBalance: connect.NewClient[ledgerv1.SettleBalanceRequest, ledgerv1.SettleBalanceResponse](
			httpClient,
			baseURL+LedgerServiceSettleBalanceProcedure,
			opts...,
		),
		getUserBalance: connect.NewClient[ledgerv1.GetUserBalanceRequest, ledgerv1.GetUserBalanceResponse](
			httpClient,
			baseURL+LedgerServiceGetUserBalanceProcedure,
			opts...,
		),
		getGroupBalances: connect.NewClient[ledgerv1.GetGroupBalancesRequest, ledgerv1.GetGroupBalancesResponse](
			httpClient,
			baseURL+LedgerServiceGetGroupBalancesProcedure,
			opts...,
		),
		simplifyBalances: connect.NewClient[ledgerv1.SimplifyBalancesRequest, ledgerv1.SimplifyBalancesResponse](
			httpClient,
			baseURL+LedgerServiceSimplifyBalancesProcedure,
			opts...,
		),
		listSettlements: connect.NewClient[ledgerv1.ListSettlementsRequest, ledgerv1.ListSettlementsResponse](
			httpClient,
			baseURL+LedgerServiceListSettlementsProcedure,
			opts...,
		),
		getSettlement: connect.NewClient[ledgerv1.GetSettlementRequest, ledgerv1.GetSettlementResponse](
			httpClient,
			baseURL+LedgerServiceGetSettlementProcedure,
			opts...,
		),
		getExpense: connect.NewClient[ledgerv1.GetExpenseRequest, ledgerv1.GetExpenseResponse](
			httpClient,
			baseURL+LedgerServiceGetExpenseProcedure,
			opts...,
		),
		listExpenses: connect.NewClient[ledgerv1.ListExpensesRequest, ledgerv1.ListExpensesResponse](
			httpClient,
			baseURL+LedgerServiceListExpensesProcedure,
			opts...,
		),
	}
}

type ledgerServiceClient struct {
	updateBalancesForExpense *connect.Client[ledgerv1.UpdateBalancesForExpenseRequest, ledgerv1.UpdateBalancesForExpenseResponse]
	reverseExpense           *connect.Client[ledgerv1.ReverseExpenseRequest, ledgerv1.ReverseExpenseResponse]
	settleBalance            *connect.Client[ledgerv1.SettleBalanceRequest, ledgerv1.SettleBalanceResponse]
	getUserBalance           *connect.Client[ledgerv1.GetUserBalanceRequest, ledgerv1.GetUserBalanceResponse]
	getGroupBalances         *connect.Client[ledgerv1.GetGroupBalancesRequest, ledgerv1.GetGroupBalancesResponse]
	simplifyBalances         *connect.Client[ledgerv1.SimplifyBalancesRequest, ledgerv1.SimplifyBalancesResponse]
	listSettlements          *connect.Client[ledgerv1.ListSettlementsRequest, ledgerv1.ListSettlementsResponse]
	getSettlement            *connect.Client[ledgerv1.GetSettlementRequest, ledgerv1.GetSettlementResponse]
	getExpense               *connect.Client[ledgerv1.GetExpenseRequest, ledgerv1.GetExpenseResponse]
	listExpenses             *connect.Client[ledgerv1.ListExpensesRequest, ledgerv1.ListExpensesResponse]
}

func (c *ledgerServiceClient) UpdateBalancesForExpense(ctx context.Context, req *connect.Request[ledgerv1.UpdateBalancesForExpenseRequest]) (*connect.Response[ledgerv1.UpdateBalancesForExpenseResponse], error) {
	return c.updateBalancesForExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ReverseExpense(ctx context.Context, req *connect.Request[ledgerv1.ReverseExpenseRequest]) (*connect.Response[ledgerv1.ReverseExpenseResponse], error) {
	return c.reverseExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SettleBalance(ctx context.Context, req *connect.Request[ledgerv1.SettleBalanceRequest]) (*connect.Response[ledgerv1.SettleBalanceResponse], error) {
	return c.settleBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetUserBalance(ctx context.Context, req *connect.Request[ledgerv1.GetUserBalanceRequest]) (*connect.Response[ledgerv1.GetUserBalanceResponse], error) {
	return c.getUserBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[ledgerv1.GetGroupBalancesRequest]) (*connect.Response[ledgerv1.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SimplifyBalances(ctx context.Context, req *connect.Request[ledgerv1.SimplifyBalancesRequest]) (*connect.Response[ledgerv1.SimplifyBalancesResponse], error) {
	return c.simplifyBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ledgerv1.ListSettlementsRequest]) (*connect.Response[ledgerv1.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetSettlement(ctx context.Context, req *connect.Request[ledgerv1.GetSettlementRequest]) (*connect.Response[ledgerv1.GetSettlementResponse], error) {
	return c.getSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetExpense(ctx context.Context, req *connect.Request[ledgerv1.GetExpenseRequest]) (*connect.Response[ledgerv1.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ledgerv1.ListExpensesRequest]) (*connect.Response[ledgerv1.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by the server side of the splitledger.v1.LedgerService service.
// LedgerService mutates and reports pairwise balances and settles debts.
type LedgerServiceHandler interface {
	UpdateBalancesForExpense(context.Context, *connect.Request[ledgerv1.UpdateBalancesForExpenseRequest]) (*connect.Response[ledgerv1.UpdateBalancesForExpenseResponse], error)
	ReverseExpense(context.Context, *connect.Request[ledgerv1.ReverseExpenseRequest]) (*connect.Response[ledgerv1.ReverseExpenseResponse], error)
	SettleBalance(context.Context, *connect.Request[ledgerv1.SettleBalanceRequest]) (*connect.Response[ledgerv1.SettleBalanceResponse], error)
	GetUserBalance(context.Context, *connect.Request[ledgerv1.GetUserBalanceRequest]) (*connect.Response[ledgerv1.GetUserBalanceResponse], error)
	GetGroupBalances(context.Context, *connect.Request[ledgerv1.GetGroupBalancesRequest]) (*connect.Response[ledgerv1.GetGroupBalancesResponse], error)
	SimplifyBalances(context.Context, *connect.Request[ledgerv1.SimplifyBalancesRequest]) (*connect.Response[ledgerv1.SimplifyBalancesResponse], error)
	ListSettlements(context.Context, *connect.Request[ledgerv1.ListSettlementsRequest]) (*connect.Response[ledgerv1.ListSettlementsResponse], error)
	GetSettlement(context.Context, *connect.Request[ledgerv1.GetSettlementRequest]) (*connect.Response[ledgerv1.GetSettlementResponse], error)
	GetExpense(context.Context, *connect.Request[ledgerv1.GetExpenseRequest]) (*connect.Response[ledgerv1.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ledgerv1.ListExpensesRequest]) (*connect.Response[ledgerv1.ListExpensesResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	updateBalancesForExpenseHandler := connect.NewUnaryHandler(
		LedgerServiceUpdateBalancesForExpenseProcedure,
		svc.UpdateBalancesForExpense,
		opts...,
	)
	reverseExpenseHandler := connect.NewUnaryHandler(
		LedgerServiceReverseExpenseProcedure,
		svc.ReverseExpense,
		opts...,
	)
	settleBalanceHandler := connect.NewUnaryHandler(
		LedgerServiceSettleBalanceProcedure,
		svc.SettleBalance,
		opts...,
	)
	getUserBalanceHandler := connect.NewUnaryHandler(
		LedgerServiceGetUserBalanceProcedure,
		svc.GetUserBalance,
		opts...,
	)
	getGroupBalancesHandler := connect.NewUnaryHandler(
		LedgerServiceGetGroupBalancesProcedure,
		svc.GetGroupBalances,
		opts...,
	)
	simplifyBalancesHandler := connect.NewUnaryHandler(
		LedgerServiceSimplifyBalancesProcedure,
		svc.SimplifyBalances,
		opts...,
	)
	listSettlementsHandler := connect.NewUnaryHandler(
		LedgerServiceListSettlementsProcedure,
		svc.ListSettlements,
		opts...,
	)
	getSettlementHandler := connect.NewUnaryHandler(
		LedgerServiceGetSettlementProcedure,
		svc.GetSettlement,
		opts...,
	)
	getExpenseHandler := connect.NewUnaryHandler(
		LedgerServiceGetExpenseProcedure,
		svc.GetExpense,
		opts...,
	)
	listExpensesHandler := connect.NewUnaryHandler(
		LedgerServiceListExpensesProcedure,
		svc.ListExpenses,
		opts...,
	)
	return "/splitledger.v1.LedgerService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceUpdateBalancesForExpenseProcedure:
			updateBalancesForExpenseHandler.ServeHTTP(w, r)
		case LedgerServiceReverseExpenseProcedure:
			reverseExpenseHandler.ServeHTTP(w, r)
		case LedgerServiceSettleBalanceProcedure:
			settleBalanceHandler.ServeHTTP(w, r)
		case LedgerServiceGetUserBalanceProcedure:
			getUserBalanceHandler.ServeHTTP(w, r)
		case LedgerServiceGetGroupBalancesProcedure:
			getGroupBalancesHandler.ServeHTTP(w, r)
		case LedgerServiceSimplifyBalancesProcedure:
			simplifyBalancesHandler.ServeHTTP(w, r)
		case LedgerServiceListSettlementsProcedure:
			listSettlementsHandler.ServeHTTP(w, r)
		case LedgerServiceGetSettlementProcedure:
			getSettlementHandler.ServeHTTP(w, r)
		case LedgerServiceGetExpenseProcedure:
			getExpenseHandler.ServeHTTP(w, r)
		case LedgerServiceListExpensesProcedure:
			listExpensesHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) UpdateBalancesForExpense(context.Context, *connect.Request[ledgerv1.UpdateBalancesForExpenseRequest]) (*connect.Response[ledgerv1.UpdateBalancesForExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.UpdateBalancesForExpense is not implemented"))
}

func (UnimplementedLedgerServiceHandler) ReverseExpense(context.Context, *connect.Request[ledgerv1.ReverseExpenseRequest]) (*connect.Response[ledgerv1.ReverseExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.ReverseExpense is not implemented"))
}

func (UnimplementedLedgerServiceHandler) SettleBalance(context.Context, *connect.Request[ledgerv1.SettleBalanceRequest]) (*connect.Response[ledgerv1.SettleBalanceResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.SettleBalance is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetUserBalance(context.Context, *connect.Request[ledgerv1.GetUserBalanceRequest]) (*connect.Response[ledgerv1.GetUserBalanceResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.GetUserBalance is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetGroupBalances(context.Context, *connect.Request[ledgerv1.GetGroupBalancesRequest]) (*connect.Response[ledgerv1.GetGroupBalancesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.GetGroupBalances is not implemented"))
}

func (UnimplementedLedgerServiceHandler) SimplifyBalances(context.Context, *connect.Request[ledgerv1.SimplifyBalancesRequest]) (*connect.Response[ledgerv1.SimplifyBalancesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.SimplifyBalances is not implemented"))
}

func (UnimplementedLedgerServiceHandler) ListSettlements(context.Context, *connect.Request[ledgerv1.ListSettlementsRequest]) (*connect.Response[ledgerv1.ListSettlementsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.ListSettlements is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetSettlement(context.Context, *connect.Request[ledgerv1.GetSettlementRequest]) (*connect.Response[ledgerv1.GetSettlementResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.GetSettlement is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetExpense(context.Context, *connect.Request[ledgerv1.GetExpenseRequest]) (*connect.Response[ledgerv1.GetExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.GetExpense is not implemented"))
}

func (UnimplementedLedgerServiceHandler) ListExpenses(context.Context, *connect.Request[ledgerv1.ListExpensesRequest]) (*connect.Response[ledgerv1.ListExpensesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.ListExpenses is not implemented"))
}
