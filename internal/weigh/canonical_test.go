package weigh_test

import (
	"reflect"
	"testing"

	"weighstation/internal/weigh"
)

func TestCanonicalContainerID(t *testing.T) {
	if got := weigh.CanonicalContainerID("  c-1 "); got != "C-1" {
		t.Fatalf("got %q", got)
	}
}

func TestCanonicalContainersDropsEmpties(t *testing.T) {
	got := weigh.CanonicalContainers([]string{" c-1", "", "  ", "c-2 "})
	want := []string{"C-1", "C-2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestJoinSplitContainersRoundTrip(t *testing.T) {
	ids := []string{"C-1", "C-2", "C-3"}
	joined := weigh.JoinContainers(ids)
	if joined != "C-1,C-2,C-3" {
		t.Fatalf("unexpected joined form %q", joined)
	}
	if got := weigh.SplitContainers(joined); !reflect.DeepEqual(got, ids) {
		t.Fatalf("got %v want %v", got, ids)
	}
}

func TestSplitContainersEmpty(t *testing.T) {
	if got := weigh.SplitContainers(""); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestContainersEqualIgnoresCaseAndWhitespace(t *testing.T) {
	if !weigh.ContainersEqual([]string{" c-1", "c-2 "}, []string{"C-1", "C-2"}) {
		t.Fatalf("expected equal")
	}
}

func TestContainsContainer(t *testing.T) {
	if !weigh.ContainsContainer([]string{"C-1", "C-2"}, "c-2") {
		t.Fatalf("expected contains")
	}
	if weigh.ContainsContainer([]string{"C-1"}, "c-3") {
		t.Fatalf("expected not contains")
	}
}
