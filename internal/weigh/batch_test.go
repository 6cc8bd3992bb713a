package weigh_test

import (
	"strings"
	"testing"

	"weighstation/internal/weigh"
)

func TestParseCSV(t *testing.T) {
	const body = "id,weight,unit\n c-10 ,500,kg\nc-11,1100,lbs\n"
	recs, err := weigh.ParseCSV(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].ContainerID != "C-10" || recs[0].Weight != 500 || recs[0].Unit != weigh.UnitKG {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].ContainerID != "C-11" || recs[1].Unit != weigh.UnitLBS {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
}

func TestParseCSVMissingColumn(t *testing.T) {
	const body = "id,weight\nc-1,100\n"
	if _, err := weigh.ParseCSV(strings.NewReader(body)); err == nil {
		t.Fatalf("expected error for missing unit column")
	}
}

func TestParseJSON(t *testing.T) {
	const body = `[{"id":"c-20","weight":300,"unit":"kg"}]`
	recs, err := weigh.ParseJSON(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 1 || recs[0].ContainerID != "C-20" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestParseJSONBadUnit(t *testing.T) {
	const body = `[{"id":"c-1","weight":1,"unit":"stone"}]`
	if _, err := weigh.ParseJSON(strings.NewReader(body)); err == nil {
		t.Fatalf("expected error for bad unit")
	}
}
