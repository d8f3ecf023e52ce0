// Package repokit holds the seams repos bind to
package repokit

import "datemerge/internal/platform/store"

type (
	// Queryer is the read and write surface a repo binds to
	Queryer = store.RowQuerier

	// TxRunner runs fn in a transaction
	TxRunner = store.TxRunner
)

// Binder binds a domain repo to a Queryer, either the pool or an open tx
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a function to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind panics on a nil Queryer, then binds
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}
