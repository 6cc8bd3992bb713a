package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"weighstation/internal/billing"
	"weighstation/internal/billing/billingmem"
	"weighstation/internal/errs"
	"weighstation/internal/weighclient"
)

func newService() *billing.Service {
	return billing.NewService(billingmem.New(), weighclient.New("http://unused.invalid", time.Second))
}

func TestCreateProviderDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	if _, err := svc.CreateProvider(ctx, "acme"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.CreateProvider(ctx, "acme")
	var conflict *errs.Conflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRenameProviderMissing(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	err := svc.RenameProvider(ctx, 999, "new-name")
	var nf *errs.NotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRegisterTruckRequiresKnownProvider(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	err := svc.RegisterTruck(ctx, "T-1", 999)
	var nf *errs.NotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRegisterTruckDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	provider, err := svc.CreateProvider(ctx, "acme")
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if err := svc.RegisterTruck(ctx, "T-1", provider.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	err = svc.RegisterTruck(ctx, "T-1", provider.ID)
	var val *errs.Validation
	if !errors.As(err, &val) {
		t.Fatalf("expected validation error on duplicate truck, got %v", err)
	}
}

func TestReplaceRatesWhollyReplacesTable(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	if err := svc.ReplaceRates(ctx, []billing.Rate{{Product: "tomato", Rate: 5}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := svc.ReplaceRates(ctx, []billing.Rate{{Product: "potato", Rate: 3}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	rates, err := svc.CurrentRates(ctx)
	if err != nil {
		t.Fatalf("current rates: %v", err)
	}
	if len(rates) != 1 || rates[0].Product != "potato" {
		t.Fatalf("expected only potato to remain, got %+v", rates)
	}
}
