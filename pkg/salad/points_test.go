package salad

import (
	"testing"

	"saladgen/pkg/common"
	"saladgen/pkg/index"
)

func explosionSelectInput(corpus *index.Corpus, maxSum float64) SelectInput {
	pool := corpus.NewPool([]string{"g1", "g2", "g3"})
	return SelectInput{
		GraphIDs:      []string{"g1", "g2", "g3"},
		Names:         pool.EventNames,
		SrcToName:     pool.EventSrcToName,
		Types:         corpus.EventTypes,
		TwoStep:       corpus.TwoStep,
		MaxTwoStepSum: maxSum,
		OwnerOf:       corpus.GraphIDOf,
	}
}

func TestSelectMergePoints(t *testing.T) {
	corpus := explosionCorpus()

	points := SelectMergePoints(explosionSelectInput(corpus, 60))

	if len(points) != 1 {
		t.Fatalf("expected 1 merge point, got %d", len(points))
	}
	point := points[0]
	if point.Name != "Explosion" {
		t.Errorf("merge point name = %s, want Explosion", point.Name)
	}
	if len(point.Candidates) != 3 {
		t.Fatalf("expected one candidate per graph, got %d", len(point.Candidates))
	}
	for i, graphID := range []string{"g1", "g2", "g3"} {
		if point.Candidates[i].GraphID != graphID {
			t.Errorf("candidate %d from graph %s, want %s", i, point.Candidates[i].GraphID, graphID)
		}
		if point.Candidates[i].EreID != graphID+"-explosion" {
			t.Errorf("candidate %d = %s, want %s-explosion", i, point.Candidates[i].EreID, graphID)
		}
	}
	if point.TwoStepSum != 12 {
		t.Errorf("combined connectedness = %v, want 12", point.TwoStepSum)
	}
}

func TestSelectMergePointsConnectednessCap(t *testing.T) {
	corpus := explosionCorpus()

	if points := SelectMergePoints(explosionSelectInput(corpus, 10)); len(points) != 0 {
		t.Errorf("expected cap to reject the only combination, got %d points", len(points))
	}
}

func TestSelectMergePointsRequiresSharedType(t *testing.T) {
	corpus := explosionCorpus()
	corpus.EventTypes["g2-explosion"] = common.NewIDSet("Movement.Transport")

	if points := SelectMergePoints(explosionSelectInput(corpus, 60)); len(points) != 0 {
		t.Errorf("expected type mismatch to reject the point, got %d points", len(points))
	}
}

func TestSelectMergePointsMissingFromOneGraph(t *testing.T) {
	corpus := explosionCorpus()
	corpus.EventNames["Explosion"].Discard("g3-explosion")

	if points := SelectMergePoints(explosionSelectInput(corpus, 60)); len(points) != 0 {
		t.Errorf("expected name absent from one graph to yield no points, got %d", len(points))
	}
}

func TestSelectMergePointsNodeDisjoint(t *testing.T) {
	corpus := explosionCorpus()
	// A second name backed by the same nodes must lose the greedy pass.
	corpus.EventNames["Blast"] = common.NewIDSet("g1-explosion", "g2-explosion", "g3-explosion")

	points := SelectMergePoints(explosionSelectInput(corpus, 60))

	if len(points) != 1 {
		t.Fatalf("expected exactly 1 node-disjoint point, got %d", len(points))
	}
}

func TestSelectMergePointsPicksBestCombination(t *testing.T) {
	corpus := explosionCorpus()
	// Offer a second, better-connected candidate in g1.
	g1 := corpus.Graphs["g1"]
	addNode(g1, "g1-explosion2", common.CategoryEvent)
	addTyping(g1, "g1-t-explosion2", "g1-explosion2", "Conflict.Attack")
	addEdge(g1, "g1-s-hurt2", "g1-explosion2", "g1-victim", "hurt")
	corpus.AddGraph(g1)
	corpus.EventNames["Explosion"].Add("g1-explosion2")
	corpus.EventTypes["g1-explosion2"] = common.NewIDSet("Conflict.Attack")
	corpus.TwoStep["g1-explosion2"] = 9

	points := SelectMergePoints(explosionSelectInput(corpus, 60))

	if len(points) != 1 {
		t.Fatalf("expected 1 merge point, got %d", len(points))
	}
	if got := points[0].Candidates[0].EreID; got != "g1-explosion2" {
		t.Errorf("selected candidate %s, want the better-connected g1-explosion2", got)
	}
}
