package weigh

import (
	"context"
	"sort"
	"time"

	"weighstation/internal/errs"
)

// Service implements the weigh engine's operations on top of a Store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// RecordRequest is the raw weight-ingest request, as decoded from JSON.
type RecordRequest struct {
	Direction  string
	Weight     int
	Unit       string
	Truck      string
	Containers []string
	Force      bool
	Produce    string
}

// RecordResult is the response of a successful weight-ingest call. Which
// fields are populated depends on Direction.
type RecordResult struct {
	ID            int64
	Truck         string
	Container     string
	Bruto         int
	TruckTara     *int
	Neto          *int
	ContainerTara *int
}

// RecordWeight validates req and applies the direction-specific state
// machine transition (spec §4.1) inside one serializable transaction.
func (s *Service) RecordWeight(ctx context.Context, req RecordRequest) (*RecordResult, error) {
	dir := Direction(req.Direction)
	if dir != DirIn && dir != DirOut && dir != DirNone {
		return nil, errs.NewValidation("unknown direction %q", req.Direction)
	}
	unit := Unit(req.Unit)
	if unit != UnitKG && unit != UnitLBS {
		return nil, errs.NewValidation("unknown unit %q", req.Unit)
	}
	if req.Weight <= 0 {
		return nil, errs.NewValidation("weight must be positive")
	}
	produce := req.Produce
	if produce == "" {
		produce = "na"
	}
	containers := CanonicalContainers(req.Containers)
	bruto := ToKG(req.Weight, unit)

	switch dir {
	case DirIn:
		if req.Truck == "" {
			return nil, errs.NewValidation("truck is required for direction=in")
		}
	case DirOut:
		if req.Truck == "" {
			return nil, errs.NewValidation("truck is required for direction=out")
		}
	case DirNone:
		if req.Truck != "" && req.Truck != "na" {
			return nil, errs.NewValidation("truck must be absent for direction=none")
		}
	}

	var result *RecordResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		switch dir {
		case DirIn:
			result, err = recordIn(ctx, tx, req.Truck, bruto, containers, req.Force, produce)
		case DirOut:
			result, err = recordOut(ctx, tx, req.Truck, bruto, containers, req.Force, produce)
		case DirNone:
			result, err = recordNone(ctx, tx, bruto, containers, produce)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func recordIn(ctx context.Context, tx Tx, truck string, bruto int, containers []string, force bool, produce string) (*RecordResult, error) {
	prev, err := tx.LatestForTruck(ctx, truck)
	if err != nil {
		return nil, errs.NewStorage("lookup latest for truck", err)
	}
	if prev != nil && prev.Direction == DirIn {
		if !force {
			return nil, errs.NewConflict("truck %s already has an open in-session %d", truck, prev.ID)
		}
		if err := tx.DeleteTransaction(ctx, prev.ID); err != nil {
			return nil, errs.NewStorage("delete prior in row", err)
		}
	}

	row := &Transaction{
		DateTime:   time.Now(),
		Direction:  DirIn,
		Truck:      truck,
		Containers: containers,
		Bruto:      bruto,
		Produce:    produce,
	}
	id, err := tx.InsertTransaction(ctx, row)
	if err != nil {
		return nil, errs.NewStorage("insert in row", err)
	}
	return &RecordResult{ID: id, Truck: truck, Bruto: bruto}, nil
}

func recordOut(ctx context.Context, tx Tx, truck string, truckTara int, requestedContainers []string, force bool, produce string) (*RecordResult, error) {
	prev, err := tx.LatestForTruck(ctx, truck)
	if err != nil {
		return nil, errs.NewStorage("lookup latest for truck", err)
	}
	if prev == nil {
		return nil, errs.NewNotFound("no open in-session for truck %s", truck)
	}

	var sessionID int64
	var containersIn []string
	var brutoIn int
	var produceIn string

	switch prev.Direction {
	case DirIn:
		sessionID = prev.ID
		containersIn = prev.Containers
		brutoIn = prev.Bruto
		produceIn = prev.Produce
	case DirOut:
		if !force {
			return nil, errs.NewConflict("truck %s already has a closed session %d", truck, prev.Session)
		}
		if err := tx.DeleteTransaction(ctx, prev.ID); err != nil {
			return nil, errs.NewStorage("delete prior out row", err)
		}
		sessionID = prev.Session
		inRow, err := tx.GetTransaction(ctx, sessionID)
		if err != nil {
			return nil, errs.NewStorage("fetch paired in row", err)
		}
		if inRow == nil {
			return nil, errs.NewStorage("paired in row missing", nil)
		}
		containersIn = inRow.Containers
		brutoIn = inRow.Bruto
		produceIn = inRow.Produce
	default:
		return nil, errs.NewConflict("truck %s has no open in-session", truck)
	}

	if len(requestedContainers) > 0 && !ContainersEqual(requestedContainers, containersIn) {
		return nil, errs.NewValidation("containers %v do not match in-session containers %v", requestedContainers, containersIn)
	}
	containers := containersIn

	sum, allKnown, err := tareSum(ctx, tx, containers)
	if err != nil {
		return nil, errs.NewStorage("sum container tares", err)
	}
	var neto *int
	if allKnown {
		n := brutoIn - truckTara - sum
		neto = &n
	}

	if err := tx.UpdateInRow(ctx, sessionID, truckTara, neto); err != nil {
		return nil, errs.NewStorage("back-fill in row", err)
	}

	outRow := &Transaction{
		Session:    sessionID,
		DateTime:   time.Now(),
		Direction:  DirOut,
		Truck:      truck,
		Containers: containers,
		Bruto:      brutoIn,
		TruckTara:  &truckTara,
		Neto:       neto,
		Produce:    produceIn,
	}
	if _, err := tx.InsertTransaction(ctx, outRow); err != nil {
		return nil, errs.NewStorage("insert out row", err)
	}

	return &RecordResult{ID: sessionID, Truck: truck, Bruto: brutoIn, TruckTara: &truckTara, Neto: neto}, nil
}

func recordNone(ctx context.Context, tx Tx, bruto int, containers []string, produce string) (*RecordResult, error) {
	prev, err := tx.LatestGlobal(ctx)
	if err != nil {
		return nil, errs.NewStorage("lookup latest global", err)
	}
	if prev != nil && prev.Direction == DirIn {
		return nil, errs.NewConflict("cannot record a standalone weighing while truck %s has an open in-session", prev.Truck)
	}

	zero := 0
	sum, allKnown, err := tareSum(ctx, tx, containers)
	if err != nil {
		return nil, errs.NewStorage("sum container tares", err)
	}
	var neto *int
	if allKnown {
		n := bruto - sum
		neto = &n
	}

	row := &Transaction{
		DateTime:   time.Now(),
		Direction:  DirNone,
		Containers: containers,
		Bruto:      bruto,
		TruckTara:  &zero,
		Neto:       neto,
		Produce:    produce,
	}
	id, err := tx.InsertTransaction(ctx, row)
	if err != nil {
		return nil, errs.NewStorage("insert none row", err)
	}

	var containerTara *int
	if allKnown {
		containerTara = &sum
	}
	return &RecordResult{ID: id, Container: JoinContainers(containers), Bruto: bruto, Neto: neto, ContainerTara: containerTara}, nil
}

// tareSum sums the registered tare (in kg) of every container in ids,
// reporting allKnown=false if any is unregistered.
func tareSum(ctx context.Context, tx Tx, ids []string) (sum int, allKnown bool, err error) {
	allKnown = true
	for _, id := range ids {
		reg, err := tx.GetContainer(ctx, id)
		if err != nil {
			return 0, false, err
		}
		if reg == nil {
			allKnown = false
			continue
		}
		sum += reg.WeightKG()
	}
	return sum, allKnown, nil
}

// WeightRow is the projection GET /weight returns.
type WeightRow struct {
	ID         int64
	Direction  Direction
	Bruto      int
	Neto       *int
	Produce    string
	Containers []string
}

// ListWeights returns transactions in [from, to] restricted to dirs, one
// row per record (spec.md §9's chosen projection, not GROUP_CONCAT).
func (s *Service) ListWeights(ctx context.Context, from, to time.Time, dirs []Direction) ([]WeightRow, error) {
	var out []WeightRow
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		rows, err := tx.ListTransactions(ctx, from, to, dirs)
		if err != nil {
			return errs.NewStorage("list transactions", err)
		}
		out = make([]WeightRow, 0, len(rows))
		for _, r := range rows {
			out = append(out, WeightRow{
				ID:         r.ID,
				Direction:  r.Direction,
				Bruto:      r.Bruto,
				Neto:       r.Neto,
				Produce:    r.Produce,
				Containers: r.Containers,
			})
		}
		return nil
	})
	return out, err
}

// ItemResult is the response of GET /item/{id}.
type ItemResult struct {
	ID       string
	Tara     *int
	Sessions []int64
}

// GetItem classifies id as a truck or a container and returns its history.
func (s *Service) GetItem(ctx context.Context, id string, from, to time.Time) (*ItemResult, error) {
	var out *ItemResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		truckKnown, err := tx.TruckKnown(ctx, id)
		if err != nil {
			return errs.NewStorage("check truck known", err)
		}
		if truckKnown {
			sessions, err := tx.TruckInSessionIDs(ctx, id, from, to)
			if err != nil {
				return errs.NewStorage("list truck sessions", err)
			}
			tara, err := tx.LastTruckTara(ctx, id)
			if err != nil {
				return errs.NewStorage("last truck tara", err)
			}
			out = &ItemResult{ID: id, Tara: tara, Sessions: sessions}
			return nil
		}

		canonical := CanonicalContainerID(id)
		reg, err := tx.GetContainer(ctx, canonical)
		if err != nil {
			return errs.NewStorage("get container", err)
		}
		knownInTx, err := tx.ContainerKnownInTransactions(ctx, canonical)
		if err != nil {
			return errs.NewStorage("check container known", err)
		}
		if reg == nil && !knownInTx {
			return errs.NewNotFound("unknown item %q", id)
		}
		sessions, err := tx.ContainerSessionIDs(ctx, canonical, from, to)
		if err != nil {
			return errs.NewStorage("list container sessions", err)
		}
		var tara *int
		if reg != nil {
			kg := reg.WeightKG()
			tara = &kg
		}
		out = &ItemResult{ID: id, Tara: tara, Sessions: sessions}
		return nil
	})
	return out, err
}

// SessionResult is the response of GET /session/{id}.
type SessionResult struct {
	ID            int64
	Truck         string
	Container     string
	Bruto         int
	TruckTara     *int
	Neto          *int
	ContainerTara *int
	IsContainer   bool
}

// GetSession resolves the stored row identified by id.
func (s *Service) GetSession(ctx context.Context, id int64) (*SessionResult, error) {
	var out *SessionResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		row, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return errs.NewStorage("get transaction", err)
		}
		if row == nil {
			return errs.NewNotFound("session %d not found", id)
		}
		switch row.Direction {
		case DirIn:
			res := &SessionResult{ID: row.ID, Truck: row.Truck, Bruto: row.Bruto}
			outRow, err := tx.OutRowForInSession(ctx, row.ID, row.Truck)
			if err != nil {
				return errs.NewStorage("find paired out row", err)
			}
			if outRow != nil {
				res.TruckTara = outRow.TruckTara
				res.Neto = outRow.Neto
			}
			out = res
		case DirNone:
			res := &SessionResult{ID: row.ID, Container: JoinContainers(row.Containers), Bruto: row.Bruto, Neto: row.Neto, IsContainer: true}
			if row.Neto != nil {
				ct := row.Bruto - *row.Neto
				res.ContainerTara = &ct
			}
			out = res
		case DirOut:
			out = &SessionResult{ID: row.Session, Truck: row.Truck, Bruto: row.Bruto, TruckTara: row.TruckTara, Neto: row.Neto}
		}
		return nil
	})
	return out, err
}

// GetUnknown returns the sorted set of container ids referenced by any
// transaction but absent from the registry.
func (s *Service) GetUnknown(ctx context.Context) ([]string, error) {
	var out []string
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		ids, err := tx.UnknownContainers(ctx)
		if err != nil {
			return errs.NewStorage("unknown containers", err)
		}
		sort.Strings(ids)
		out = ids
		return nil
	})
	return out, err
}

// Ping verifies storage reachability for GET /health.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
