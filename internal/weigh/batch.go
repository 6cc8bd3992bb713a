package weigh

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"weighstation/internal/errs"
)

// TareRecord is one parsed line of a container-tare batch file.
type TareRecord struct {
	ContainerID string
	Weight      int
	Unit        Unit
}

// ParseCSV reads a CSV batch with a header row including an id column, a
// weight column, and a unit column (values "kg" or "lbs").
func ParseCSV(r io.Reader) ([]TareRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, errs.NewValidation("bad batch file: %v", err)
	}
	idCol, weightCol, unitCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "id":
			idCol = i
		case "weight":
			weightCol = i
		case "unit":
			unitCol = i
		}
	}
	if idCol < 0 || weightCol < 0 || unitCol < 0 {
		return nil, errs.NewValidation("batch CSV must have id, weight, and unit columns")
	}

	var out []TareRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.NewValidation("bad batch file: %v", err)
		}
		rec, err := parseTareFields(row[idCol], row[weightCol], row[unitCol])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseJSON reads a JSON array of {id, weight, unit} objects.
func ParseJSON(r io.Reader) ([]TareRecord, error) {
	var raw []struct {
		ID     string `json:"id"`
		Weight int    `json:"weight"`
		Unit   string `json:"unit"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errs.NewValidation("bad batch file: %v", err)
	}
	out := make([]TareRecord, 0, len(raw))
	for _, e := range raw {
		rec, err := parseTareFields(e.ID, strconv.Itoa(e.Weight), e.Unit)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseTareFields(rawID, rawWeight, rawUnit string) (TareRecord, error) {
	id := CanonicalContainerID(rawID)
	if id == "" {
		return TareRecord{}, errs.NewValidation("batch record missing container id")
	}
	weight, err := strconv.Atoi(strings.TrimSpace(rawWeight))
	if err != nil {
		return TareRecord{}, errs.NewValidation("batch record %s: bad weight %q", id, rawWeight)
	}
	unit := Unit(strings.ToLower(strings.TrimSpace(rawUnit)))
	if unit != UnitKG && unit != UnitLBS {
		return TareRecord{}, errs.NewValidation("batch record %s: bad unit %q", id, rawUnit)
	}
	return TareRecord{ContainerID: id, Weight: weight, Unit: unit}, nil
}

// BatchIngest registers every record, then retro-computes neto (spec §4.2)
// for transactions left unresolved by prior ingests, now that some of their
// referenced containers may have become known.
func (s *Service) BatchIngest(ctx context.Context, recs []TareRecord) (int, error) {
	if len(recs) == 0 {
		return 0, errs.NewValidation("batch file contained no records")
	}
	applied := 0
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		regs := make([]ContainerRegistration, len(recs))
		for i, r := range recs {
			regs[i] = ContainerRegistration{ContainerID: CanonicalContainerID(r.ContainerID), Weight: r.Weight, Unit: r.Unit}
		}
		if err := tx.RegisterContainers(ctx, regs); err != nil {
			return errs.NewStorage("register containers", err)
		}

		pending, err := tx.PendingNeto(ctx)
		if err != nil {
			return errs.NewStorage("list pending neto rows", err)
		}
		for _, row := range pending {
			sum, allKnown, err := tareSum(ctx, tx, row.Containers)
			if err != nil {
				return errs.NewStorage("sum container tares", err)
			}
			if !allKnown {
				continue
			}
			tara := 0
			if row.TruckTara != nil {
				tara = *row.TruckTara
			}
			neto := row.Bruto - tara - sum
			if err := tx.UpdateNeto(ctx, row.ID, neto); err != nil {
				return errs.NewStorage("update neto", err)
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}
