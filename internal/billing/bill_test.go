package billing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"weighstation/internal/billing"
	"weighstation/internal/billing/billingmem"
	"weighstation/internal/weighclient"
)

// TestBuildBillAssemblesProducts mirrors the spec's bill-assembly scenario:
// provider P owns truck T-1; session S has neto=6000, produce "tomato";
// the rate table charges 5/unit globally.
func TestBuildBillAssemblesProducts(t *testing.T) {
	weigh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/item/"):
			json.NewEncoder(w).Encode(map[string]any{"id": "T-1", "tara": 9000, "sessions": []int64{1}})
		case r.URL.Path == "/session/1":
			json.NewEncoder(w).Encode(map[string]any{"id": 1, "truck": "T-1", "bruto": 15000, "neto": 6000, "produce": "tomato"})
		case r.URL.Path == "/weight":
			json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "produce": "tomato"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer weigh.Close()

	ctx := context.Background()
	store := billingmem.New()
	svc := billing.NewService(store, weighclient.New(weigh.URL, 5*time.Second))

	provider, err := svc.CreateProvider(ctx, "P")
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if err := svc.RegisterTruck(ctx, "T-1", provider.ID); err != nil {
		t.Fatalf("register truck: %v", err)
	}
	if err := svc.ReplaceRates(ctx, []billing.Rate{{Product: "tomato", Rate: 5}}); err != nil {
		t.Fatalf("replace rates: %v", err)
	}

	bill, err := svc.BuildBill(ctx, provider.ID, time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("build bill: %v", err)
	}
	if bill.Total != 30000 {
		t.Fatalf("expected total 30000, got %d", bill.Total)
	}
	if len(bill.Products) != 1 || bill.Products[0].Product != "tomato" || bill.Products[0].Count != 1 {
		t.Fatalf("unexpected products: %+v", bill.Products)
	}
	if bill.Products[0].Pay != 30000 {
		t.Fatalf("unexpected pay: %+v", bill.Products[0])
	}
}
