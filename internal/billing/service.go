package billing

import (
	"context"
	"time"

	"weighstation/internal/clock"
	"weighstation/internal/errs"
	"weighstation/internal/weighclient"
)

// Service implements the billing aggregator's operations on top of a Store
// and a weighclient.Client to the sister weigh engine.
type Service struct {
	store Store
	weigh *weighclient.Client
}

func NewService(store Store, weigh *weighclient.Client) *Service {
	return &Service{store: store, weigh: weigh}
}

// Ping reports whether the underlying store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// CreateProvider inserts a new provider; 409 on duplicate name.
func (s *Service) CreateProvider(ctx context.Context, name string) (*Provider, error) {
	if name == "" {
		return nil, errs.NewValidation("provider name is required")
	}
	var out *Provider
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		existing, err := tx.ProviderByName(ctx, name)
		if err != nil {
			return errs.NewStorage("lookup provider by name", err)
		}
		if existing != nil {
			return errs.NewConflict("provider %q already exists", name)
		}
		id, err := tx.CreateProvider(ctx, name)
		if err != nil {
			return errs.NewStorage("create provider", err)
		}
		out = &Provider{ID: id, Name: name}
		return nil
	})
	return out, err
}

// RenameProvider updates a provider's name; 404 if absent, 400 on collision.
func (s *Service) RenameProvider(ctx context.Context, id int64, name string) error {
	if name == "" {
		return errs.NewValidation("provider name is required")
	}
	return s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		provider, err := tx.ProviderByID(ctx, id)
		if err != nil {
			return errs.NewStorage("lookup provider", err)
		}
		if provider == nil {
			return errs.NewNotFound("provider %d not found", id)
		}
		collision, err := tx.ProviderByName(ctx, name)
		if err != nil {
			return errs.NewStorage("lookup provider by name", err)
		}
		if collision != nil && collision.ID != id {
			return errs.NewValidation("provider name %q already in use", name)
		}
		if err := tx.RenameProvider(ctx, id, name); err != nil {
			return errs.NewStorage("rename provider", err)
		}
		return nil
	})
}

// RegisterTruck links truckID to providerID; 404 missing provider, 400 duplicate truck.
func (s *Service) RegisterTruck(ctx context.Context, truckID string, providerID int64) error {
	if truckID == "" {
		return errs.NewValidation("truck id is required")
	}
	return s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		provider, err := tx.ProviderByID(ctx, providerID)
		if err != nil {
			return errs.NewStorage("lookup provider", err)
		}
		if provider == nil {
			return errs.NewNotFound("provider %d not found", providerID)
		}
		existing, err := tx.TruckByID(ctx, truckID)
		if err != nil {
			return errs.NewStorage("lookup truck", err)
		}
		if existing != nil {
			return errs.NewValidation("truck %q already registered", truckID)
		}
		if err := tx.CreateTruck(ctx, truckID, providerID); err != nil {
			return errs.NewStorage("create truck", err)
		}
		return nil
	})
}

// ReassignTruck moves truckID to a different provider; 404 on either missing.
func (s *Service) ReassignTruck(ctx context.Context, truckID string, providerID int64) error {
	return s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		truck, err := tx.TruckByID(ctx, truckID)
		if err != nil {
			return errs.NewStorage("lookup truck", err)
		}
		if truck == nil {
			return errs.NewNotFound("truck %q not found", truckID)
		}
		provider, err := tx.ProviderByID(ctx, providerID)
		if err != nil {
			return errs.NewStorage("lookup provider", err)
		}
		if provider == nil {
			return errs.NewNotFound("provider %d not found", providerID)
		}
		if err := tx.ReassignTruck(ctx, truckID, providerID); err != nil {
			return errs.NewStorage("reassign truck", err)
		}
		return nil
	})
}

// ReplaceRates wholly replaces the rate table with rates, atomically.
func (s *Service) ReplaceRates(ctx context.Context, rates []Rate) error {
	return s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.ReplaceRates(ctx, rates); err != nil {
			return errs.NewStorage("replace rates", err)
		}
		return nil
	})
}

// CurrentRates returns the full current rate table.
func (s *Service) CurrentRates(ctx context.Context) ([]Rate, error) {
	var out []Rate
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		rates, err := tx.Rates(ctx)
		if err != nil {
			return errs.NewStorage("list rates", err)
		}
		out = rates
		return nil
	})
	return out, err
}

// ProductLine is one row of an assembled bill.
type ProductLine struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
	Amount  int    `json:"amount"`
	Rate    int    `json:"rate"`
	Pay     int    `json:"pay"`
}

// Bill is the response of GET /bill/{providerId}.
type Bill struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	From         time.Time     `json:"-"`
	To           time.Time     `json:"-"`
	TruckCount   int           `json:"truckCount"`
	SessionCount int           `json:"sessionCount"`
	Products     []ProductLine `json:"products"`
	Total        int           `json:"total"`
}

type sessionAmount struct {
	id      int64
	amount  int
	produce string
}

// BuildBill assembles a provider's bill for [from, to] by fanning out to the
// weigh engine. Any per-truck or per-session upstream failure contributes
// nothing to the bill rather than failing the whole request (spec's
// partial-failure policy for aggregation).
func (s *Service) BuildBill(ctx context.Context, providerID int64, from, to time.Time) (*Bill, error) {
	var provider *Provider
	var trucks []string
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		p, err := tx.ProviderByID(ctx, providerID)
		if err != nil {
			return errs.NewStorage("lookup provider", err)
		}
		if p == nil {
			return errs.NewNotFound("provider %d not found", providerID)
		}
		provider = p
		ts, err := tx.TrucksForProvider(ctx, providerID)
		if err != nil {
			return errs.NewStorage("list trucks for provider", err)
		}
		trucks = ts
		return nil
	})
	if err != nil {
		return nil, err
	}

	sessionIDs := map[int64]bool{}
	for _, truck := range trucks {
		resp := s.weigh.Item(ctx, truck, from, to)
		if resp.Status != weighclient.StatusOk {
			continue
		}
		for _, id := range resp.Item.Sessions {
			sessionIDs[id] = true
		}
	}

	var amounts []sessionAmount
	for id := range sessionIDs {
		resp := s.weigh.Session(ctx, id)
		if resp.Status != weighclient.StatusOk {
			continue
		}
		neto, numeric := numericNeto(resp.Session.Neto)
		if !numeric {
			continue
		}
		amounts = append(amounts, sessionAmount{id: id, amount: neto})
	}

	produceByID := map[int64]string{}
	weightResp := s.weigh.WeightRows(ctx, from, to)
	if weightResp.Status == weighclient.StatusOk {
		for _, row := range weightResp.Rows {
			produceByID[row.ID] = row.Produce
		}
	}
	for i, a := range amounts {
		produce, ok := produceByID[a.id]
		if !ok {
			produce = "unknown"
		}
		amounts[i].produce = produce
	}

	rates, err := s.CurrentRates(ctx)
	if err != nil {
		return nil, err
	}
	rateFor := buildRateIndex(rates, providerID)

	buckets := map[string]*ProductLine{}
	var order []string
	for _, a := range amounts {
		line, ok := buckets[a.produce]
		if !ok {
			line = &ProductLine{Product: a.produce, Rate: rateFor(a.produce)}
			buckets[a.produce] = line
			order = append(order, a.produce)
		}
		line.Count++
		line.Amount += a.amount
		line.Pay += a.amount * line.Rate
	}

	products := make([]ProductLine, 0, len(order))
	total := 0
	for _, p := range order {
		line := *buckets[p]
		products = append(products, line)
		total += line.Pay
	}

	return &Bill{
		ID:           provider.ID,
		Name:         provider.Name,
		From:         from,
		To:           to,
		TruckCount:   len(trucks),
		SessionCount: len(amounts),
		Products:     products,
		Total:        total,
	}, nil
}

func buildRateIndex(rates []Rate, providerID int64) func(product string) int {
	global := map[string]int{}
	scoped := map[string]int{}
	for _, r := range rates {
		if r.Scope == nil {
			global[r.Product] = r.Rate
			continue
		}
		if *r.Scope == providerID {
			scoped[r.Product] = r.Rate
		}
	}
	return func(product string) int {
		if rate, ok := scoped[product]; ok {
			return rate
		}
		if rate, ok := global[product]; ok {
			return rate
		}
		return 0
	}
}

// numericNeto reports whether v (decoded from JSON as "na" or a number)
// carries a resolved numeric neto.
func numericNeto(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// DefaultFrom is the start of the current month at local midnight, the
// bill-assembly window default when `from` is omitted.
func DefaultFrom(now time.Time) time.Time {
	return clock.StartOfMonth(now)
}
