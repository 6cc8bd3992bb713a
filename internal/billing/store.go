package billing

import "context"

// Store is the persistence boundary the billing service depends on,
// following the same WithTx-scoped-Tx shape as weigh.Store.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
}

// Tx is the set of operations available inside one Store.WithTx call.
type Tx interface {
	// CreateProvider inserts a new provider and returns its assigned id.
	CreateProvider(ctx context.Context, name string) (int64, error)

	// ProviderByName looks up a provider by its unique name, or nil.
	ProviderByName(ctx context.Context, name string) (*Provider, error)

	// ProviderByID fetches a provider by id, or nil.
	ProviderByID(ctx context.Context, id int64) (*Provider, error)

	// RenameProvider updates a provider's name.
	RenameProvider(ctx context.Context, id int64, name string) error

	// CreateTruck registers truckID under providerID.
	CreateTruck(ctx context.Context, truckID string, providerID int64) error

	// TruckByID fetches a truck ownership row, or nil.
	TruckByID(ctx context.Context, truckID string) (*TruckOwnership, error)

	// ReassignTruck updates truckID's owning provider.
	ReassignTruck(ctx context.Context, truckID string, providerID int64) error

	// TrucksForProvider lists the truck ids owned by providerID.
	TrucksForProvider(ctx context.Context, providerID int64) ([]string, error)

	// ReplaceRates atomically replaces the entire rate table.
	ReplaceRates(ctx context.Context, rates []Rate) error

	// Rates returns the full current rate table.
	Rates(ctx context.Context) ([]Rate, error)
}
