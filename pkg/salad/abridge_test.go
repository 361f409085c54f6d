package salad

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"saladgen/pkg/common"
)

// mixedExplosion produces one assembled, unabridged mixture from the
// three-graph explosion corpus.
func mixedExplosion(t *testing.T) *common.Mixture {
	t.Helper()
	corpus := explosionCorpus()
	pool := corpus.NewPool([]string{"g1", "g2", "g3"})
	rng := rand.New(rand.NewSource(1))

	asm := NewAssembler(pool, explosionParams(), rng, make(map[string]struct{}))
	mixtures, err := asm.CreateMixtures(context.Background())
	if err != nil {
		t.Fatalf("CreateMixtures failed: %v", err)
	}
	return mixtures[0]
}

func TestAbridgeHopZeroKeepsOnlyMergePoints(t *testing.T) {
	mixture := mixedExplosion(t)
	g := mixture.Graph

	if err := Abridge(g, mixture.TargetGraphID, 3, 0); err != nil {
		t.Fatalf("Abridge failed: %v", err)
	}

	// The merged event and the merged entity both carry statements from
	// all three sources, so both survive as merge points. There are no
	// Relation nodes in this fixture, so everything else is pruned.
	wantEres := common.NewIDSet(
		mixture.TargetGraphID+"-explosion",
		mixture.TargetGraphID+"-place",
	)
	if len(g.Eres) != len(wantEres) {
		t.Fatalf("retained %d nodes, want %d: %v", len(g.Eres), len(wantEres), g.Eres)
	}
	for id := range wantEres {
		if _, ok := g.Eres[id]; !ok {
			t.Errorf("merge point %s pruned", id)
		}
	}

	for stmtID, stmt := range g.Stmts {
		if !stmt.IsTyping() {
			t.Errorf("non-typing statement %s survived hop-zero abridging", stmtID)
		}
	}
}

func TestAbridgeHopZeroExpandsAdjacentRelations(t *testing.T) {
	mixture := mixedExplosion(t)
	g := mixture.Graph
	target := mixture.TargetGraphID

	// Attach a Relation between the merged event and a fresh entity.
	addNode(g, "rel", common.CategoryRelation)
	g.Eres["rel"].GraphID = target
	addNode(g, "sponsor", common.CategoryEntity)
	g.Eres["sponsor"].GraphID = target
	relTyping := addTyping(g, "t-rel", "rel", "Sponsorship")
	relTyping.GraphID = target
	sponsorTyping := addTyping(g, "t-sponsor", "sponsor", "ORG")
	sponsorTyping.GraphID = target
	relEdge1 := addEdge(g, "s-rel-evt", "rel", target+"-explosion", "event")
	relEdge1.GraphID = target
	relEdge2 := addEdge(g, "s-rel-sponsor", "rel", "sponsor", "sponsor")
	relEdge2.GraphID = target

	if err := Abridge(g, target, 3, 0); err != nil {
		t.Fatalf("Abridge failed: %v", err)
	}

	for _, id := range []string{"rel", "sponsor", target + "-explosion"} {
		if _, ok := g.Eres[id]; !ok {
			t.Errorf("node %s missing after abridging", id)
		}
	}
	for _, stmtID := range []string{"s-rel-evt", "s-rel-sponsor", "t-rel", "t-sponsor"} {
		if _, ok := g.Stmts[stmtID]; !ok {
			t.Errorf("relation statement %s pruned", stmtID)
		}
	}
	// The victim entities hang off the merged event without a relation,
	// so hop zero still prunes them.
	if _, ok := g.Eres["g1-victim"]; ok {
		t.Error("non-relation neighbor survived hop-zero abridging")
	}
}

func TestAbridgeHopOneKeepsMergeNeighborhood(t *testing.T) {
	mixture := mixedExplosion(t)
	g := mixture.Graph
	target := mixture.TargetGraphID

	if err := Abridge(g, target, 3, 1); err != nil {
		t.Fatalf("Abridge failed: %v", err)
	}

	// One hop out from the merged event and entity reaches every
	// victim and city node.
	for _, graphID := range []string{"g1", "g2", "g3"} {
		if _, ok := g.Eres[graphID+"-victim"]; !ok {
			t.Errorf("%s-victim missing at hop radius 1", graphID)
		}
		if _, ok := g.Eres[graphID+"-city"]; !ok {
			t.Errorf("%s-city missing at hop radius 1", graphID)
		}
	}
	if err := g.Validate(); err != nil {
		t.Errorf("abridged graph invalid: %v", err)
	}
}

func TestAbridgeRetainedNodesWithinRadius(t *testing.T) {
	mixture := mixedExplosion(t)
	g := mixture.Graph
	hops := 1

	if err := Abridge(g, mixture.TargetGraphID, 3, hops); err != nil {
		t.Fatalf("Abridge failed: %v", err)
	}

	mergeIDs := mergePointIDs(g, 3)
	if len(mergeIDs) == 0 {
		t.Fatal("no merge points after abridging")
	}
	for id, ere := range g.Eres {
		if mergeIDs.Contains(id) || ere.Category == common.CategoryRelation {
			continue
		}
		within := false
		for mergeID := range mergeIDs {
			if hopDistance(g, mergeID, id, hops) {
				within = true
				break
			}
		}
		if !within {
			t.Errorf("node %s outside hop radius %d", id, hops)
		}
	}
}

// hopDistance reports whether to is within hops steps of from.
func hopDistance(g *common.Graph, from, to string, hops int) bool {
	frontier := common.NewIDSet(from)
	seen := frontier.Clone()
	for i := 0; i < hops; i++ {
		next := common.NewIDSet()
		for id := range frontier {
			next.Update(g.Eres[id].NeighborEreIDs)
		}
		for id := range seen {
			next.Discard(id)
		}
		seen.Update(next)
		frontier = next
	}
	return seen.Contains(to)
}

func TestAbridgeSingleTypingPerNode(t *testing.T) {
	mixture := mixedExplosion(t)
	g := mixture.Graph

	if err := Abridge(g, mixture.TargetGraphID, 3, 2); err != nil {
		t.Fatalf("Abridge failed: %v", err)
	}

	for id, ere := range g.Eres {
		typing := 0
		for stmtID := range ere.StmtIDs {
			if g.Stmts[stmtID].IsTyping() {
				typing++
			}
		}
		if typing != 1 {
			t.Errorf("node %s has %d typing statements, want 1", id, typing)
		}
	}
}

func TestAbridgeReportsInvariantViolation(t *testing.T) {
	mixture := mixedExplosion(t)
	g := mixture.Graph

	// A node without any typing statement cannot satisfy the abridged
	// graph's postconditions.
	addNode(g, "untyped", common.CategoryEntity)
	addEdge(g, "s-untyped", mixture.TargetGraphID+"-explosion", "untyped", "related")

	err := Abridge(g, mixture.TargetGraphID, 3, 1)
	if !errors.Is(err, common.ErrInvariantViolation) {
		t.Errorf("expected ErrInvariantViolation, got %v", err)
	}
}
