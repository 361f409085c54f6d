package salad

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"saladgen/pkg/common"
)

func TestCreateMixturesExplosionScenario(t *testing.T) {
	corpus := explosionCorpus()
	pool := corpus.NewPool([]string{"g1", "g2", "g3"})
	rng := rand.New(rand.NewSource(1))

	asm := NewAssembler(pool, explosionParams(), rng, make(map[string]struct{}))
	mixtures, err := asm.CreateMixtures(context.Background())
	if err != nil {
		t.Fatalf("CreateMixtures failed: %v", err)
	}
	if len(mixtures) == 0 {
		t.Fatal("expected at least one mixture")
	}

	explosionIDs := common.NewIDSet("g1-explosion", "g2-explosion", "g3-explosion")
	for _, mixture := range mixtures {
		if !explosionIDs.Contains(mixture.OriginID) {
			t.Errorf("origin %s is not one of the shared event nodes", mixture.OriginID)
		}
		if len(mixture.QueryStmtIDs) == 0 {
			t.Error("mixture has an empty query set")
		}
		if len(mixture.SourceGraphIDs) != 3 {
			t.Errorf("mixture built from %d sources, want 3", len(mixture.SourceGraphIDs))
		}
		if err := mixture.Graph.Validate(); err != nil {
			t.Errorf("mixture %s invalid: %v", mixture.Name(), err)
		}
	}
}

func TestCreateMixturesMergePointSpansAllSources(t *testing.T) {
	corpus := explosionCorpus()
	pool := corpus.NewPool([]string{"g1", "g2", "g3"})
	rng := rand.New(rand.NewSource(1))

	asm := NewAssembler(pool, explosionParams(), rng, make(map[string]struct{}))
	mixtures, err := asm.CreateMixtures(context.Background())
	if err != nil {
		t.Fatalf("CreateMixtures failed: %v", err)
	}

	mixture := mixtures[0]
	merged, ok := mixture.Graph.Eres[mixture.TargetGraphID+"-explosion"]
	if !ok {
		t.Fatal("merged event node missing from mixture")
	}

	graphs := common.NewIDSet()
	for stmtID := range merged.StmtIDs {
		graphs.Add(mixture.Graph.Stmts[stmtID].GraphID)
	}
	if len(graphs) != 3 {
		t.Errorf("merge point carries statements from %d graphs, want 3", len(graphs))
	}
}

func TestCreateMixturesResolvesDuplicateTyping(t *testing.T) {
	corpus := explosionCorpus()
	pool := corpus.NewPool([]string{"g1", "g2", "g3"})
	rng := rand.New(rand.NewSource(1))

	asm := NewAssembler(pool, explosionParams(), rng, make(map[string]struct{}))
	mixtures, err := asm.CreateMixtures(context.Background())
	if err != nil {
		t.Fatalf("CreateMixtures failed: %v", err)
	}

	// All three sources contribute a Conflict.Attack typing statement
	// for the merged event; only the target's survives.
	for _, mixture := range mixtures {
		merged := mixture.Graph.Eres[mixture.TargetGraphID+"-explosion"]
		typing := make([]string, 0, 1)
		for stmtID := range merged.StmtIDs {
			if mixture.Graph.Stmts[stmtID].IsTyping() {
				typing = append(typing, stmtID)
			}
		}
		if len(typing) != 1 {
			t.Fatalf("merged node carries %d typing statements, want 1", len(typing))
		}
		if got := mixture.Graph.Stmts[typing[0]].GraphID; got != mixture.TargetGraphID {
			t.Errorf("surviving typing statement from %s, want target %s", got, mixture.TargetGraphID)
		}
	}
}

func TestCreateMixturesNovelty(t *testing.T) {
	corpus := explosionCorpus()
	pool := corpus.NewPool([]string{"g1", "g2", "g3"})
	rng := rand.New(rand.NewSource(1))
	used := make(map[string]struct{})

	asm := NewAssembler(pool, explosionParams(), rng, used)
	mixtures, err := asm.CreateMixtures(context.Background())
	if err != nil {
		t.Fatalf("CreateMixtures failed: %v", err)
	}

	seen := make(map[string]struct{})
	for _, mixture := range mixtures {
		key := PairKey(mixture.SourceGraphIDs, mixture.TargetGraphID)
		if _, dup := seen[key]; dup {
			t.Errorf("duplicate source/target pair %s", key)
		}
		seen[key] = struct{}{}
	}

	// The only source combination is exhausted, so the next attempt
	// must report that no novel sample exists.
	if _, err := asm.CreateMixtures(context.Background()); !errors.Is(err, ErrNoEligibleSample) {
		t.Errorf("expected ErrNoEligibleSample after exhausting pairs, got %v", err)
	}
}

func TestCreateMixturesRespectsContext(t *testing.T) {
	corpus := explosionCorpus()
	pool := corpus.NewPool([]string{"g1", "g2", "g3"})
	rng := rand.New(rand.NewSource(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	asm := NewAssembler(pool, explosionParams(), rng, make(map[string]struct{}))
	if _, err := asm.CreateMixtures(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPairKeyIgnoresSourceOrder(t *testing.T) {
	a := PairKey([]string{"g1", "g2", "g3"}, "g2")
	b := PairKey([]string{"g3", "g1", "g2"}, "g2")
	if a != b {
		t.Errorf("pair keys differ: %s vs %s", a, b)
	}
	if c := PairKey([]string{"g1", "g2", "g3"}, "g1"); c == a {
		t.Error("pair keys must distinguish targets")
	}
}
