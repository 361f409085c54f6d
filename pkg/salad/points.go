package salad

import (
	"sort"
	"strings"

	"saladgen/pkg/common"
)

// MergeCandidate is one graph's node backing a merge point.
type MergeCandidate struct {
	GraphID string
	EreID   string
	TwoStep float64
}

// MergePoint is a shared name with one merge candidate per source
// graph, aligned with the sample's graph order.
type MergePoint struct {
	Name       string
	Candidates []MergeCandidate
	TwoStepSum float64
}

// SelectInput carries the pool-derived lookups SelectMergePoints works
// over for one node category.
type SelectInput struct {
	// GraphIDs is the sampled source graphs, in sample order.
	GraphIDs []string

	// Names maps a canonical name to the candidate node ids carrying it.
	Names map[string]common.IDSet

	// SrcToName maps a graph id to the names it contributes candidates
	// for.
	SrcToName map[string]common.IDSet

	// Types maps a node id to its ontology type labels.
	Types map[string]common.IDSet

	// TwoStep holds the two-step connectedness score per node id.
	TwoStep map[string]float64

	// MaxTwoStepSum caps a combination's summed score. Zero disables
	// the cap.
	MaxTwoStepSum float64

	// OwnerOf resolves a node id to its source graph.
	OwnerOf func(ereID string) (string, bool)
}

// SelectMergePoints finds the names shared by every sampled graph and
// greedily picks node-disjoint merge points for them, best-connected
// first. A merge point needs one candidate per graph, all candidates
// sharing at least one ontology type, and no candidate reused across
// points. The result is ordered by descending combined connectedness.
func SelectMergePoints(in SelectInput) []MergePoint {
	shared := sharedNames(in.GraphIDs, in.SrcToName)
	if len(shared) == 0 {
		return nil
	}

	points := make([]MergePoint, 0, len(shared))
	for _, name := range shared {
		perGraph := make([][]string, len(in.GraphIDs))
		for i, graphID := range in.GraphIDs {
			for _, ereID := range in.Names[name].Slice() {
				if owner, ok := in.OwnerOf(ereID); ok && owner == graphID {
					perGraph[i] = append(perGraph[i], ereID)
				}
			}
		}
		if best, ok := bestCombination(perGraph, in.GraphIDs, in.TwoStep, in.MaxTwoStepSum); ok {
			best.Name = name
			points = append(points, best)
		}
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].TwoStepSum != points[j].TwoStepSum {
			return points[i].TwoStepSum > points[j].TwoStepSum
		}
		return points[i].Name < points[j].Name
	})

	seen := common.NewIDSet()
	selected := make([]MergePoint, 0, len(points))
	for _, point := range points {
		if reusesNode(point, seen) || !candidatesShareType(point, in.Types) {
			continue
		}
		for _, cand := range point.Candidates {
			seen.Add(cand.EreID)
		}
		selected = append(selected, point)
	}
	return selected
}

// sharedNames intersects the per-graph name sets, sorted for
// deterministic downstream ordering.
func sharedNames(graphIDs []string, srcToName map[string]common.IDSet) []string {
	var shared common.IDSet
	for _, graphID := range graphIDs {
		names, ok := srcToName[graphID]
		if !ok {
			return nil
		}
		if shared == nil {
			shared = names.Clone()
			continue
		}
		shared = shared.Intersect(names)
	}
	if shared == nil {
		return nil
	}
	return shared.Slice()
}

// bestCombination picks, over the Cartesian product of per-graph
// candidates, the combination with the highest summed two-step score
// under the cap. Ties break on the lexicographically smallest joined
// node ids so repeated runs agree.
func bestCombination(perGraph [][]string, graphIDs []string, twoStep map[string]float64, maxSum float64) (MergePoint, bool) {
	for _, cands := range perGraph {
		if len(cands) == 0 {
			return MergePoint{}, false
		}
	}

	var (
		best    MergePoint
		bestKey string
		found   bool
		combo   = make([]string, len(perGraph))
	)

	var walk func(depth int, sum float64)
	walk = func(depth int, sum float64) {
		if depth == len(perGraph) {
			if maxSum > 0 && sum > maxSum {
				return
			}
			key := strings.Join(combo, "|")
			if found && (sum < best.TwoStepSum || (sum == best.TwoStepSum && key >= bestKey)) {
				return
			}
			cands := make([]MergeCandidate, len(combo))
			for i, ereID := range combo {
				cands[i] = MergeCandidate{GraphID: graphIDs[i], EreID: ereID, TwoStep: twoStep[ereID]}
			}
			best = MergePoint{Candidates: cands, TwoStepSum: sum}
			bestKey = key
			found = true
			return
		}
		for _, ereID := range perGraph[depth] {
			combo[depth] = ereID
			walk(depth+1, sum+twoStep[ereID])
		}
	}
	walk(0, 0)

	return best, found
}

func reusesNode(point MergePoint, seen common.IDSet) bool {
	for _, cand := range point.Candidates {
		if seen.Contains(cand.EreID) {
			return true
		}
	}
	return false
}

// candidatesShareType reports whether all candidates of a point share
// at least one ontology type. Candidates missing from the type map
// never qualify.
func candidatesShareType(point MergePoint, types map[string]common.IDSet) bool {
	var shared common.IDSet
	for _, cand := range point.Candidates {
		labels, ok := types[cand.EreID]
		if !ok || len(labels) == 0 {
			return false
		}
		if shared == nil {
			shared = labels.Clone()
			continue
		}
		shared = shared.Intersect(labels)
		if len(shared) == 0 {
			return false
		}
	}
	return len(shared) > 0
}
