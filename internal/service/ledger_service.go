package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/report"
	"github.com/mmynk/splitledger/internal/settlement"
	"github.com/mmynk/splitledger/pkg/ledgerv1"
	"github.com/mmynk/splitledger/pkg/ledgerv1/ledgerv1connect"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	ledgerv1connect.UnimplementedLedgerServiceHandler
	ledger   *ledger.Ledger
	engine   *settlement.Engine
	reporter *report.Reporter
}

// NewLedgerService wires the ledger, settlement engine and reporter behind
// the RPC surface.
func NewLedgerService(l *ledger.Ledger, engine *settlement.Engine, reporter *report.Reporter) *LedgerService {
	return &LedgerService{ledger: l, engine: engine, reporter: reporter}
}

// UpdateBalancesForExpense records the debts created by an expense.
func (s *LedgerService) UpdateBalancesForExpense(ctx context.Context, req *connect.Request[ledgerv1.UpdateBalancesForExpenseRequest]) (*connect.Response[ledgerv1.UpdateBalancesForExpenseResponse], error) {
	expense, err := expenseFromProto(req.Msg.Expense)
	if err != nil {
		return nil, invalidArgument("UpdateBalancesForExpense", err)
	}

	slog.Info("UpdateBalancesForExpense request received",
		"group_id", expense.GroupID,
		"paid_by", expense.PaidByUserID,
		"amount", expense.TotalAmount.String(),
		"split_type", expense.Kind,
		"caller", middleware.GetUserID(ctx),
	)

	recorded, err := s.ledger.UpdateBalancesForExpense(ctx, expense)
	if err != nil {
		return nil, toConnectError("UpdateBalancesForExpense", err)
	}

	return connect.NewResponse(&ledgerv1.UpdateBalancesForExpenseResponse{
		Expense: expenseToProto(recorded),
	}), nil
}

// ReverseExpense undoes the debts of a recorded expense.
func (s *LedgerService) ReverseExpense(ctx context.Context, req *connect.Request[ledgerv1.ReverseExpenseRequest]) (*connect.Response[ledgerv1.ReverseExpenseResponse], error) {
	slog.Info("ReverseExpense request received",
		"expense_id", req.Msg.ExpenseID,
		"caller", middleware.GetUserID(ctx),
	)

	if req.Msg.ExpenseID == "" {
		return nil, invalidArgument("ReverseExpense", errors.New("expense_id required"))
	}

	reversed, err := s.ledger.ReverseExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError("ReverseExpense", err)
	}

	return connect.NewResponse(&ledgerv1.ReverseExpenseResponse{
		Expense: expenseToProto(reversed),
	}), nil
}

// GetExpense loads one recorded expense with its shares.
func (s *LedgerService) GetExpense(ctx context.Context, req *connect.Request[ledgerv1.GetExpenseRequest]) (*connect.Response[ledgerv1.GetExpenseResponse], error) {
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	if req.Msg.ExpenseID == "" {
		return nil, invalidArgument("GetExpense", errors.New("expense_id required"))
	}

	expense, err := s.ledger.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError("GetExpense", err)
	}

	return connect.NewResponse(&ledgerv1.GetExpenseResponse{Expense: expenseToProto(expense)}), nil
}

// ListExpenses returns a group's or a user's expenses, newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[ledgerv1.ListExpensesRequest]) (*connect.Response[ledgerv1.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received",
		"group_id", req.Msg.GroupID,
		"user_id", req.Msg.UserID,
	)

	var (
		found []*models.Expense
		err   error
	)
	switch {
	case req.Msg.GroupID != "" && req.Msg.UserID != "":
		return nil, invalidArgument("ListExpenses", errors.New("only one of group_id and user_id may be set"))
	case req.Msg.GroupID != "":
		found, err = s.ledger.ListGroupExpenses(ctx, req.Msg.GroupID)
	case req.Msg.UserID != "":
		found, err = s.ledger.ListUserExpenses(ctx, req.Msg.UserID)
	default:
		return nil, invalidArgument("ListExpenses", errors.New("group_id or user_id required"))
	}
	if err != nil {
		return nil, toConnectError("ListExpenses", err)
	}

	expenses := make([]*ledgerv1.Expense, len(found))
	for i, e := range found {
		expenses[i] = expenseToProto(e)
	}

	slog.Info("ListExpenses successful", "count", len(expenses))

	return connect.NewResponse(&ledgerv1.ListExpensesResponse{Expenses: expenses}), nil
}

// SettleBalance applies a payment across every group the two users share.
func (s *LedgerService) SettleBalance(ctx context.Context, req *connect.Request[ledgerv1.SettleBalanceRequest]) (*connect.Response[ledgerv1.SettleBalanceResponse], error) {
	slog.Info("SettleBalance request received",
		"payer_id", req.Msg.PayerID,
		"receiver_id", req.Msg.ReceiverID,
		"amount", req.Msg.Amount,
		"caller", middleware.GetUserID(ctx),
	)

	amount, err := parseAmount("amount", req.Msg.Amount)
	if err != nil {
		return nil, invalidArgument("SettleBalance", err)
	}

	result, err := s.engine.Settle(ctx, settlement.Request{
		PayerID:     req.Msg.PayerID,
		ReceiverID:  req.Msg.ReceiverID,
		Amount:      amount,
		Description: req.Msg.Description,
	})
	if err != nil {
		return nil, toConnectError("SettleBalance", err)
	}

	slog.Info("Settlement completed", "settlement_id", result.ID, "groups", len(result.Details))

	return connect.NewResponse(&ledgerv1.SettleBalanceResponse{
		Settlement: settlementToProto(result),
	}), nil
}

// GetUserBalance returns the user's aggregated position.
func (s *LedgerService) GetUserBalance(ctx context.Context, req *connect.Request[ledgerv1.GetUserBalanceRequest]) (*connect.Response[ledgerv1.GetUserBalanceResponse], error) {
	slog.Info("GetUserBalance request received", "user_id", req.Msg.UserID)

	if req.Msg.UserID == "" {
		return nil, invalidArgument("GetUserBalance", errors.New("user_id required"))
	}

	balance, err := s.reporter.GetUserBalance(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError("GetUserBalance", err)
	}

	return connect.NewResponse(&ledgerv1.GetUserBalanceResponse{
		Balance: userBalanceToProto(balance),
	}), nil
}

// GetGroupBalances lists the open edges of a group.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[ledgerv1.GetGroupBalancesRequest]) (*connect.Response[ledgerv1.GetGroupBalancesResponse], error) {
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	if req.Msg.GroupID == "" {
		return nil, invalidArgument("GetGroupBalances", errors.New("group_id required"))
	}

	edges, err := s.reporter.GetGroupBalances(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetGroupBalances", err)
	}

	balances := make([]*ledgerv1.Balance, len(edges))
	for i, e := range edges {
		balances[i] = balanceToProto(e)
	}

	slog.Info("GetGroupBalances successful", "group_id", req.Msg.GroupID, "count", len(balances))

	return connect.NewResponse(&ledgerv1.GetGroupBalancesResponse{Balances: balances}), nil
}

// SimplifyBalances removes sub-cent residue edges from a group.
func (s *LedgerService) SimplifyBalances(ctx context.Context, req *connect.Request[ledgerv1.SimplifyBalancesRequest]) (*connect.Response[ledgerv1.SimplifyBalancesResponse], error) {
	slog.Info("SimplifyBalances request received", "group_id", req.Msg.GroupID)

	if req.Msg.GroupID == "" {
		return nil, invalidArgument("SimplifyBalances", errors.New("group_id required"))
	}

	removed, err := s.ledger.Simplify(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("SimplifyBalances", err)
	}

	return connect.NewResponse(&ledgerv1.SimplifyBalancesResponse{Removed: int32(removed)}), nil
}

// ListSettlements returns the user's settlement history, newest first.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[ledgerv1.ListSettlementsRequest]) (*connect.Response[ledgerv1.ListSettlementsResponse], error) {
	slog.Info("ListSettlements request received",
		"user_id", req.Msg.UserID,
		"counterparty_id", req.Msg.CounterpartyID,
	)

	if req.Msg.UserID == "" {
		return nil, invalidArgument("ListSettlements", errors.New("user_id required"))
	}

	var (
		found []*models.Settlement
		err   error
	)
	if req.Msg.CounterpartyID != "" {
		found, err = s.engine.ListSettlementsBetween(ctx, req.Msg.UserID, req.Msg.CounterpartyID)
	} else {
		found, err = s.engine.ListSettlements(ctx, req.Msg.UserID)
	}
	if err != nil {
		return nil, toConnectError("ListSettlements", err)
	}

	settlements := make([]*ledgerv1.Settlement, len(found))
	for i, st := range found {
		settlements[i] = settlementToProto(st)
	}

	return connect.NewResponse(&ledgerv1.ListSettlementsResponse{Settlements: settlements}), nil
}

// GetSettlement loads one settlement with its per-group details.
func (s *LedgerService) GetSettlement(ctx context.Context, req *connect.Request[ledgerv1.GetSettlementRequest]) (*connect.Response[ledgerv1.GetSettlementResponse], error) {
	slog.Info("GetSettlement request received", "settlement_id", req.Msg.SettlementID)

	if req.Msg.SettlementID == "" {
		return nil, invalidArgument("GetSettlement", errors.New("settlement_id required"))
	}

	found, err := s.engine.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, toConnectError("GetSettlement", err)
	}

	return connect.NewResponse(&ledgerv1.GetSettlementResponse{Settlement: settlementToProto(found)}), nil
}
