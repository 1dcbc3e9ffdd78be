// Package models defines the core domain models for splitledger.
//
// # Ledger Models
//
//   - BalanceEdge: a directed debt between two users inside one group
//   - Settlement / SettlementDetail: a payment and its per-group audit trail
//   - UserBalance: the aggregated read model returned by reporting
//
// # Directory Models
//
//   - User and Group are owned by the directory collaborator. The ledger only
//     references them by ID and reads value snapshots on demand.
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships are expressed with ID strings, never
// live object graphs.
// 2. **Exact money**: every amount is a money.Money, never a float.
// 3. **Typed failures**: errors.go holds the sentinel errors every layer wraps.
package models
