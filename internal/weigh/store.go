package weigh

import (
	"context"
	"time"
)

// Store is the persistence boundary the weigh service depends on. A real
// implementation (package weighpg) backs it with Postgres inside a
// serializable transaction per call; package weighmem backs it with an
// in-memory map for tests, following the interface-plus-memory-backend
// split other_examples/.../timeoff/generic/store.go.go documents for its
// own Store/TxStore pair.
type Store interface {
	// WithTx runs fn inside one serializable transaction. Any error
	// returned by fn rolls the transaction back; fn's error is returned
	// unwrapped so callers can type-switch on the discriminated errs kinds
	// it raised.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
}

// Tx is the set of operations available inside one Store.WithTx call.
type Tx interface {
	// LatestForTruck returns the most recent transaction recorded for
	// truck, or nil if none exists.
	LatestForTruck(ctx context.Context, truck string) (*Transaction, error)

	// LatestGlobal returns the single most recent transaction across all
	// trucks, or nil if the log is empty.
	LatestGlobal(ctx context.Context) (*Transaction, error)

	// DeleteTransaction removes the row with the given id (forced
	// overwrite only).
	DeleteTransaction(ctx context.Context, id int64) error

	// InsertTransaction inserts t and returns its assigned id.
	InsertTransaction(ctx context.Context, t *Transaction) (int64, error)

	// UpdateInRow back-fills truckTara and neto on the paired "in" row.
	UpdateInRow(ctx context.Context, id int64, truckTara int, neto *int) error

	// GetTransaction fetches a single row by id.
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)

	// ListTransactions returns rows in [from, to] whose direction is in
	// dirs, ordered by id.
	ListTransactions(ctx context.Context, from, to time.Time, dirs []Direction) ([]Transaction, error)

	// TruckInSessionIDs returns ids of "in" rows for truck within
	// [from, to].
	TruckInSessionIDs(ctx context.Context, truck string, from, to time.Time) ([]int64, error)

	// ContainerSessionIDs returns ids of rows with direction in
	// {in, none} whose containers include id, within [from, to].
	ContainerSessionIDs(ctx context.Context, containerID string, from, to time.Time) ([]int64, error)

	// LastTruckTara returns the last known non-null truckTara recorded
	// for truck, or nil if none.
	LastTruckTara(ctx context.Context, truck string) (*int, error)

	// TruckKnown reports whether id has ever appeared as a truck.
	TruckKnown(ctx context.Context, id string) (bool, error)

	// ContainerKnownInTransactions reports whether id has ever appeared
	// inside any transaction's containers list.
	ContainerKnownInTransactions(ctx context.Context, id string) (bool, error)

	// GetContainer fetches a container's registration, or nil if
	// unregistered.
	GetContainer(ctx context.Context, id string) (*ContainerRegistration, error)

	// RegisterContainers upserts regs (last-writer-wins per id).
	RegisterContainers(ctx context.Context, regs []ContainerRegistration) error

	// UnknownContainers returns the sorted set of container ids
	// referenced by any transaction but absent from the registry.
	UnknownContainers(ctx context.Context) ([]string, error)

	// PendingNeto returns rows with neto IS NULL and direction in
	// {out, none}, for deferred reconciliation.
	PendingNeto(ctx context.Context) ([]Transaction, error)

	// UpdateNeto sets neto on the row with the given id.
	UpdateNeto(ctx context.Context, id int64, neto int) error

	// OutRowForInSession returns the "out" row paired with the "in"
	// session id, if one has been recorded, else nil.
	OutRowForInSession(ctx context.Context, inSessionID int64, truck string) (*Transaction, error)
}
