package salad

import (
	"math/rand"
	"testing"
)

func TestReachable(t *testing.T) {
	g := explosionGraph("g1")

	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"self", "g1-explosion", "g1-explosion", true},
		{"direct neighbor", "g1-explosion", "g1-victim", true},
		{"two hops", "g1-victim", "g1-place", true},
		{"three hops", "g1-victim", "g1-city", true},
		{"unknown target", "g1-explosion", "g1-nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reachable(g, tt.from, tt.to); got != tt.want {
				t.Errorf("Reachable(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestReachableDisconnected(t *testing.T) {
	g := explosionGraph("g1")
	addNode(g, "g1-island", "Entity")
	addTyping(g, "g1-t-island", "g1-island", "LOC")

	if Reachable(g, "g1-explosion", "g1-island") {
		t.Error("expected island node to be unreachable")
	}
}

func TestReachableSymmetric(t *testing.T) {
	g := explosionGraph("g1")
	ids := []string{"g1-explosion", "g1-victim", "g1-place", "g1-city"}
	for _, a := range ids {
		for _, b := range ids {
			if Reachable(g, a, b) != Reachable(g, b, a) {
				t.Errorf("Reachable not symmetric for %s, %s", a, b)
			}
		}
	}
}

func TestLocalQuerySet(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := explosionGraph("g1")

	query := LocalQuerySet(rng, g, "g1-explosion", 2)

	for _, want := range []string{"g1-s-hurt", "g1-s-at", "g1-t-explosion", "g1-t-victim", "g1-t-place"} {
		if !query.Contains(want) {
			t.Errorf("query set missing %s", want)
		}
	}
	if query.Contains("g1-s-in") || query.Contains("g1-t-city") {
		t.Error("query set includes statements beyond the root neighborhood")
	}
}

func TestLocalQuerySetSubsamplesNeighbors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := explosionGraph("g1")

	query := LocalQuerySet(rng, g, "g1-explosion", 1)

	// With one sampled neighbor the set holds the root typing, the
	// neighbor typing and the connecting statement.
	if len(query) != 3 {
		t.Fatalf("expected 3 statements with one sampled neighbor, got %d: %v", len(query), query.Slice())
	}
	if !query.Contains("g1-t-explosion") {
		t.Error("query set missing root typing statement")
	}
}

func TestLocalQuerySetNoNeighbors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := explosionGraph("g1")
	addNode(g, "g1-island", "Entity")
	addTyping(g, "g1-t-island", "g1-island", "LOC")

	if query := LocalQuerySet(rng, g, "g1-island", 2); len(query) != 0 {
		t.Errorf("expected empty query set for isolated node, got %v", query.Slice())
	}
}
