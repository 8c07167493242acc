package service

import "context"

// StoreTx runs fn against task and ledger stores bound to one atomic unit.
// The postgres runner in cmd/server opens a transaction and hands fn
// transaction-bound stores; MemoryTx hands fn the shared in-memory stores.
//
// The only callers are the operations that must keep the ledger and the
// task projection consistent.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(tasks TaskStore, updates UpdateStore) error) error
}

// MemoryTx satisfies StoreTx without transactional isolation. In-memory
// stores never fail partway, so passing them through preserves the
// append-plus-projection pairing the callers rely on.
type MemoryTx struct {
	Tasks   TaskStore
	Updates UpdateStore
}

func (m MemoryTx) RunInTx(_ context.Context, fn func(tasks TaskStore, updates UpdateStore) error) error {
	return fn(m.Tasks, m.Updates)
}
