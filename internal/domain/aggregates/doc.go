// Package aggregates defines the write boundaries of the marketplace.
//
// Each aggregate owns one atomic transaction per write method. Balance-affecting
// writes go through LedgerAggregate only; session, account and rating aggregates
// compose the ledger inside their own transaction instead of opening a nested one.
package aggregates
