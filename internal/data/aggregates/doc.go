// Package aggregates implements the transactional write boundaries declared in
// internal/domain/aggregates on top of the table repos.
//
// Every write method runs through executeWrite: one transaction, errors mapped to
// *domainagg.Error, and an operation/status observation on the configured Hooks.
package aggregates
