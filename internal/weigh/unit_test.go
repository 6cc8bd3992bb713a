package weigh_test

import (
	"testing"

	"weighstation/internal/weigh"
)

func TestToKGPassthrough(t *testing.T) {
	if got := weigh.ToKG(500, weigh.UnitKG); got != 500 {
		t.Fatalf("got %d", got)
	}
}

func TestToKGFromLBSUsesHistoricalFactor(t *testing.T) {
	// 1000 lbs * 0.454 = 454, not the more precise 453.6.
	if got := weigh.ToKG(1000, weigh.UnitLBS); got != 454 {
		t.Fatalf("got %d", got)
	}
}
