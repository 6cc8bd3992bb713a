// Package billingmem is an in-memory billing.Store used by service tests.
package billingmem

import (
	"context"
	"sync"

	"weighstation/internal/billing"
)

// Store is a concurrency-safe, process-local billing.Store.
type Store struct {
	mu        sync.Mutex
	nextID    int64
	providers map[int64]billing.Provider
	trucks    map[string]billing.TruckOwnership
	rates     []billing.Rate
}

func New() *Store {
	return &Store{
		providers: map[int64]billing.Provider{},
		trucks:    map[string]billing.TruckOwnership{},
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx billing.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, &tx{s: s})
}

type tx struct {
	s *Store
}

func (t *tx) CreateProvider(ctx context.Context, name string) (int64, error) {
	t.s.nextID++
	id := t.s.nextID
	t.s.providers[id] = billing.Provider{ID: id, Name: name}
	return id, nil
}

func (t *tx) ProviderByName(ctx context.Context, name string) (*billing.Provider, error) {
	for _, p := range t.s.providers {
		if p.Name == name {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *tx) ProviderByID(ctx context.Context, id int64) (*billing.Provider, error) {
	p, ok := t.s.providers[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (t *tx) RenameProvider(ctx context.Context, id int64, name string) error {
	p, ok := t.s.providers[id]
	if !ok {
		return nil
	}
	p.Name = name
	t.s.providers[id] = p
	return nil
}

func (t *tx) CreateTruck(ctx context.Context, truckID string, providerID int64) error {
	t.s.trucks[truckID] = billing.TruckOwnership{TruckID: truckID, ProviderID: providerID}
	return nil
}

func (t *tx) TruckByID(ctx context.Context, truckID string) (*billing.TruckOwnership, error) {
	to, ok := t.s.trucks[truckID]
	if !ok {
		return nil, nil
	}
	cp := to
	return &cp, nil
}

func (t *tx) ReassignTruck(ctx context.Context, truckID string, providerID int64) error {
	to, ok := t.s.trucks[truckID]
	if !ok {
		return nil
	}
	to.ProviderID = providerID
	t.s.trucks[truckID] = to
	return nil
}

func (t *tx) TrucksForProvider(ctx context.Context, providerID int64) ([]string, error) {
	var out []string
	for id, to := range t.s.trucks {
		if to.ProviderID == providerID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (t *tx) ReplaceRates(ctx context.Context, rates []billing.Rate) error {
	t.s.rates = append([]billing.Rate(nil), rates...)
	return nil
}

func (t *tx) Rates(ctx context.Context) ([]billing.Rate, error) {
	return append([]billing.Rate(nil), t.s.rates...), nil
}
