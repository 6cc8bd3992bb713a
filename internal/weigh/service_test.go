package weigh_test

import (
	"context"
	"errors"
	"testing"

	"weighstation/internal/errs"
	"weighstation/internal/weigh"
	"weighstation/internal/weigh/weighmem"
)

func newService() *weigh.Service {
	return weigh.NewService(weighmem.New())
}

func TestSimpleInOutCycle(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	in, err := svc.RecordWeight(ctx, weigh.RecordRequest{
		Direction: "in", Weight: 15000, Unit: "kg", Truck: "T-1", Containers: []string{"c-1"},
	})
	if err != nil {
		t.Fatalf("record in: %v", err)
	}
	if in.ID == 0 {
		t.Fatalf("expected non-zero session id")
	}

	if _, err := svc.RecordWeight(ctx, weigh.RecordRequest{
		Direction: "none", Weight: 500, Unit: "kg",
	}); err == nil {
		t.Fatalf("expected none-direction rejected while truck has an open in-session")
	}

	if err := registerContainer(ctx, svc, "c-1", 1000); err != nil {
		t.Fatalf("register container: %v", err)
	}

	out, err := svc.RecordWeight(ctx, weigh.RecordRequest{
		Direction: "out", Weight: 5000, Unit: "kg", Truck: "T-1",
	})
	if err != nil {
		t.Fatalf("record out: %v", err)
	}
	if out.ID != in.ID {
		t.Fatalf("expected out to report the in-session id %d, got %d", in.ID, out.ID)
	}
	if out.Neto == nil || *out.Neto != 15000-5000-1000 {
		t.Fatalf("unexpected neto: %+v", out.Neto)
	}
}

func TestInConflictWithoutForce(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.RecordWeight(ctx, weigh.RecordRequest{Direction: "in", Weight: 100, Unit: "kg", Truck: "T-2"}); err != nil {
		t.Fatalf("first in: %v", err)
	}
	_, err := svc.RecordWeight(ctx, weigh.RecordRequest{Direction: "in", Weight: 200, Unit: "kg", Truck: "T-2"})
	var conflict *errs.Conflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestForcedInOverwrite(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	first, err := svc.RecordWeight(ctx, weigh.RecordRequest{Direction: "in", Weight: 100, Unit: "kg", Truck: "T-3"})
	if err != nil {
		t.Fatalf("first in: %v", err)
	}
	second, err := svc.RecordWeight(ctx, weigh.RecordRequest{Direction: "in", Weight: 200, Unit: "kg", Truck: "T-3", Force: true})
	if err != nil {
		t.Fatalf("forced in: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected forced overwrite to mint a new session id")
	}
	if second.Bruto != 200 {
		t.Fatalf("expected forced overwrite to take the new weight, got %d", second.Bruto)
	}
}

func TestForcedOutOverwritePreservesInSessionID(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	in, err := svc.RecordWeight(ctx, weigh.RecordRequest{Direction: "in", Weight: 1000, Unit: "kg", Truck: "T-4"})
	if err != nil {
		t.Fatalf("in: %v", err)
	}
	firstOut, err := svc.RecordWeight(ctx, weigh.RecordRequest{Direction: "out", Weight: 400, Unit: "kg", Truck: "T-4"})
	if err != nil {
		t.Fatalf("first out: %v", err)
	}
	if firstOut.ID != in.ID {
		t.Fatalf("first out should report in-session id %d, got %d", in.ID, firstOut.ID)
	}

	_, err = svc.RecordWeight(ctx, weigh.RecordRequest{Direction: "out", Weight: 450, Unit: "kg", Truck: "T-4"})
	var conflict *errs.Conflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict without force, got %v", err)
	}

	secondOut, err := svc.RecordWeight(ctx, weigh.RecordRequest{Direction: "out", Weight: 450, Unit: "kg", Truck: "T-4", Force: true})
	if err != nil {
		t.Fatalf("forced out: %v", err)
	}
	if secondOut.ID != in.ID {
		t.Fatalf("forced out-overwrite must still report the paired in-session id %d, got %d", in.ID, secondOut.ID)
	}
	if secondOut.TruckTara == nil || *secondOut.TruckTara != 450 {
		t.Fatalf("expected truckTara 450 after overwrite, got %+v", secondOut.TruckTara)
	}
}

func TestOutWithoutOpenInSessionIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	_, err := svc.RecordWeight(ctx, weigh.RecordRequest{Direction: "out", Weight: 100, Unit: "kg", Truck: "ghost"})
	var nf *errs.NotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestDeferredNetoReconciliationViaBatchIngest(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.RecordWeight(ctx, weigh.RecordRequest{
		Direction: "in", Weight: 10000, Unit: "kg", Truck: "T-5", Containers: []string{"unk-1"},
	}); err != nil {
		t.Fatalf("in: %v", err)
	}
	out, err := svc.RecordWeight(ctx, weigh.RecordRequest{Direction: "out", Weight: 3000, Unit: "kg", Truck: "T-5"})
	if err != nil {
		t.Fatalf("out: %v", err)
	}
	if out.Neto != nil {
		t.Fatalf("expected neto=na before the container is registered, got %d", *out.Neto)
	}

	applied, err := svc.BatchIngest(ctx, []weigh.TareRecord{{ContainerID: "unk-1", Weight: 500, Unit: weigh.UnitKG}})
	if err != nil {
		t.Fatalf("batch ingest: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected one row reconciled, got %d", applied)
	}

	session, err := svc.GetSession(ctx, out.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.Neto == nil || *session.Neto != 10000-3000-500 {
		t.Fatalf("expected reconciled neto, got %+v", session.Neto)
	}
}

func TestStandaloneWeighing(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	if err := registerContainer(ctx, svc, "solo-1", 200); err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := svc.RecordWeight(ctx, weigh.RecordRequest{
		Direction: "none", Weight: 1200, Unit: "kg", Containers: []string{"solo-1"},
	})
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	if res.ContainerTara == nil || *res.ContainerTara != 200 {
		t.Fatalf("unexpected container tara: %+v", res.ContainerTara)
	}
	if res.Neto == nil || *res.Neto != 1000 {
		t.Fatalf("unexpected neto: %+v", res.Neto)
	}
}

func registerContainer(ctx context.Context, svc *weigh.Service, id string, weightKG int) error {
	_, err := svc.BatchIngest(ctx, []weigh.TareRecord{{ContainerID: id, Weight: weightKG, Unit: weigh.UnitKG}})
	return err
}
