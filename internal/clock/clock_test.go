package clock

import (
	"testing"
	"time"
)

func TestParseFormatRoundTrip(t *testing.T) {
	in := "20260115093000"
	tm, err := Parse(in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := Format(tm); got != in {
		t.Fatalf("round trip mismatch: got %q want %q", got, in)
	}
}

func TestParseBad(t *testing.T) {
	if _, err := Parse("not-a-date"); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestParseOrDefault(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	got, err := ParseOrDefault("", fallback)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(fallback) {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestStartOfMonth(t *testing.T) {
	t0 := time.Date(2026, 7, 30, 14, 22, 0, 0, time.Local)
	som := StartOfMonth(t0)
	if som.Day() != 1 || som.Hour() != 0 || som.Month() != time.July {
		t.Fatalf("unexpected start of month: %v", som)
	}
}
