// Package weighmem is an in-memory weigh.Store used by service tests,
// following the interface-plus-memory-backend split other_examples's
// generic/store.go.go documents for its own Store/TxStore pair.
package weighmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"weighstation/internal/weigh"
)

// Store is a concurrency-safe, process-local weigh.Store.
type Store struct {
	mu         sync.Mutex
	nextID     int64
	rows       map[int64]weigh.Transaction
	containers map[string]weigh.ContainerRegistration
}

func New() *Store {
	return &Store{
		rows:       map[int64]weigh.Transaction{},
		containers: map[string]weigh.ContainerRegistration{},
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx weigh.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make(map[int64]weigh.Transaction, len(s.rows))
	for id, r := range s.rows {
		rows[id] = r
	}
	containers := make(map[string]weigh.ContainerRegistration, len(s.containers))
	for id, c := range s.containers {
		containers[id] = c
	}
	if err := fn(ctx, &tx{s: s}); err != nil {
		s.rows = rows
		s.containers = containers
		return err
	}
	return nil
}

type tx struct {
	s *Store
}

func (t *tx) LatestForTruck(ctx context.Context, truck string) (*weigh.Transaction, error) {
	var best *weigh.Transaction
	for _, r := range t.s.rows {
		r := r
		if r.Truck != truck {
			continue
		}
		if best == nil || r.ID > best.ID {
			best = &r
		}
	}
	return best, nil
}

func (t *tx) LatestGlobal(ctx context.Context) (*weigh.Transaction, error) {
	var best *weigh.Transaction
	for _, r := range t.s.rows {
		r := r
		if best == nil || r.ID > best.ID {
			best = &r
		}
	}
	return best, nil
}

func (t *tx) DeleteTransaction(ctx context.Context, id int64) error {
	delete(t.s.rows, id)
	return nil
}

func (t *tx) InsertTransaction(ctx context.Context, row *weigh.Transaction) (int64, error) {
	t.s.nextID++
	id := t.s.nextID
	stored := *row
	stored.ID = id
	if stored.Session == 0 {
		stored.Session = id
	}
	stored.Containers = append([]string(nil), row.Containers...)
	t.s.rows[id] = stored
	return id, nil
}

func (t *tx) UpdateInRow(ctx context.Context, id int64, truckTara int, neto *int) error {
	row, ok := t.s.rows[id]
	if !ok {
		return nil
	}
	tt := truckTara
	row.TruckTara = &tt
	row.Neto = cloneIntPtr(neto)
	t.s.rows[id] = row
	return nil
}

func (t *tx) GetTransaction(ctx context.Context, id int64) (*weigh.Transaction, error) {
	row, ok := t.s.rows[id]
	if !ok {
		return nil, nil
	}
	cp := row
	return &cp, nil
}

func (t *tx) ListTransactions(ctx context.Context, from, to time.Time, dirs []weigh.Direction) ([]weigh.Transaction, error) {
	allowed := map[weigh.Direction]bool{}
	for _, d := range dirs {
		allowed[d] = true
	}
	var out []weigh.Transaction
	for _, r := range t.s.rows {
		if !allowed[r.Direction] {
			continue
		}
		if r.DateTime.Before(from) || r.DateTime.After(to) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) TruckInSessionIDs(ctx context.Context, truck string, from, to time.Time) ([]int64, error) {
	var out []int64
	for _, r := range t.s.rows {
		if r.Truck != truck || r.Direction != weigh.DirIn {
			continue
		}
		if r.DateTime.Before(from) || r.DateTime.After(to) {
			continue
		}
		out = append(out, r.ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (t *tx) ContainerSessionIDs(ctx context.Context, containerID string, from, to time.Time) ([]int64, error) {
	var out []int64
	for _, r := range t.s.rows {
		if r.Direction != weigh.DirIn && r.Direction != weigh.DirNone {
			continue
		}
		if r.DateTime.Before(from) || r.DateTime.After(to) {
			continue
		}
		if weigh.ContainsContainer(r.Containers, containerID) {
			out = append(out, r.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (t *tx) LastTruckTara(ctx context.Context, truck string) (*int, error) {
	var best *weigh.Transaction
	for _, r := range t.s.rows {
		r := r
		if r.Truck != truck || r.TruckTara == nil {
			continue
		}
		if best == nil || r.ID > best.ID {
			best = &r
		}
	}
	if best == nil {
		return nil, nil
	}
	return cloneIntPtr(best.TruckTara), nil
}

func (t *tx) TruckKnown(ctx context.Context, id string) (bool, error) {
	for _, r := range t.s.rows {
		if r.Truck == id {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) ContainerKnownInTransactions(ctx context.Context, id string) (bool, error) {
	for _, r := range t.s.rows {
		if weigh.ContainsContainer(r.Containers, id) {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) GetContainer(ctx context.Context, id string) (*weigh.ContainerRegistration, error) {
	reg, ok := t.s.containers[id]
	if !ok {
		return nil, nil
	}
	cp := reg
	return &cp, nil
}

func (t *tx) RegisterContainers(ctx context.Context, regs []weigh.ContainerRegistration) error {
	for _, reg := range regs {
		t.s.containers[reg.ContainerID] = reg
	}
	return nil
}

func (t *tx) UnknownContainers(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	for _, r := range t.s.rows {
		for _, id := range r.Containers {
			seen[id] = true
		}
	}
	var unknown []string
	for id := range seen {
		if _, ok := t.s.containers[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	return unknown, nil
}

func (t *tx) PendingNeto(ctx context.Context) ([]weigh.Transaction, error) {
	var out []weigh.Transaction
	for _, r := range t.s.rows {
		if r.Neto != nil {
			continue
		}
		if r.Direction != weigh.DirOut && r.Direction != weigh.DirNone {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) UpdateNeto(ctx context.Context, id int64, neto int) error {
	row, ok := t.s.rows[id]
	if !ok {
		return nil
	}
	v := neto
	row.Neto = &v
	t.s.rows[id] = row
	return nil
}

func (t *tx) OutRowForInSession(ctx context.Context, inSessionID int64, truck string) (*weigh.Transaction, error) {
	var best *weigh.Transaction
	for _, r := range t.s.rows {
		r := r
		if r.Session != inSessionID || r.Truck != truck || r.Direction != weigh.DirOut {
			continue
		}
		if best == nil || r.ID > best.ID {
			best = &r
		}
	}
	return best, nil
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
