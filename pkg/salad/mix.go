package salad

import (
	"context"
	"math/rand"
	"sort"
	"strings"

	"saladgen/pkg/common"
	"saladgen/pkg/index"
)

// Assembler produces graph salads from one split pool. It is not safe
// for concurrent use; parallel runs need separate assemblers sharing a
// synchronized used-pairs set.
type Assembler struct {
	pool    *index.Pool
	params  Params
	rng     *rand.Rand
	used    map[string]struct{}
	mixable []string
}

// NewAssembler builds an assembler over pool. The used set records
// already-generated source/target combinations and is shared across
// splits so a run never emits the same salad twice.
func NewAssembler(pool *index.Pool, params Params, rng *rand.Rand, used map[string]struct{}) *Assembler {
	return &Assembler{
		pool:    pool,
		params:  params,
		rng:     rng,
		used:    used,
		mixable: pool.MixableEventNames(params.NumSources),
	}
}

// PairKey identifies a source-graph combination with a designated
// target. Source order is irrelevant so the key sorts it away.
func PairKey(sourceGraphIDs []string, targetGraphID string) string {
	sorted := append([]string(nil), sourceGraphIDs...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",") + "|" + targetGraphID
}

// targetCandidate is a sampled source graph eligible to serve as the
// target: every merge point is reachable from the first one inside it.
type targetCandidate struct {
	index   int
	graphID string
	score   float64
}

// CreateMixtures runs one sampling attempt to completion: it draws
// event names until a sample of source graphs yields enough merge
// points and at least one novel target, then assembles one mixture per
// novel target. It returns ErrNoEligibleSample once the attempt budget
// is spent.
func (a *Assembler) CreateMixtures(ctx context.Context) ([]*common.Mixture, error) {
	if len(a.mixable) == 0 {
		return nil, ErrNoEligibleSample
	}

	for attempt := 0; attempt < a.params.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := a.mixable[a.rng.Intn(len(a.mixable))]
		candidates := a.pool.EventNames[name].Slice()
		if len(candidates) < a.params.NumSources {
			continue
		}
		sampleGraphs, ok := a.sampleSourceGraphs(candidates)
		if !ok {
			continue
		}

		eventPoints := SelectMergePoints(SelectInput{
			GraphIDs:      sampleGraphs,
			Names:         a.pool.EventNames,
			SrcToName:     a.pool.EventSrcToName,
			Types:         a.pool.Corpus.EventTypes,
			TwoStep:       a.pool.Corpus.TwoStep,
			MaxTwoStepSum: a.params.MaxTwoStepSum,
			OwnerOf:       a.pool.Corpus.GraphIDOf,
		})
		if len(eventPoints) < a.params.NumSharedEres {
			continue
		}
		eventPoints = eventPoints[:a.params.NumSharedEres]

		entityPoints := SelectMergePoints(SelectInput{
			GraphIDs:      sampleGraphs,
			Names:         a.pool.EntityNames,
			SrcToName:     a.pool.EntitySrcToName,
			Types:         a.pool.Corpus.EntityTypes,
			TwoStep:       a.pool.Corpus.TwoStep,
			MaxTwoStepSum: a.params.MaxTwoStepSum,
			OwnerOf:       a.pool.Corpus.GraphIDOf,
		})

		targets := a.possibleTargets(sampleGraphs, eventPoints)
		novel := targets[:0:0]
		for _, target := range targets {
			if _, done := a.used[PairKey(sampleGraphs, target.graphID)]; !done {
				novel = append(novel, target)
			}
		}
		if len(novel) == 0 {
			continue
		}

		mixtures := make([]*common.Mixture, 0, len(novel))
		for _, target := range novel {
			mixture := a.assemble(sampleGraphs, eventPoints, entityPoints, target)
			a.used[PairKey(sampleGraphs, target.graphID)] = struct{}{}
			mixtures = append(mixtures, mixture)
		}
		return mixtures, nil
	}

	return nil, ErrNoEligibleSample
}

// sampleSourceGraphs draws NumSources candidate nodes and resolves
// their owning graphs, requiring the graphs to be distinct and inside
// the pool.
func (a *Assembler) sampleSourceGraphs(candidates []string) ([]string, bool) {
	picked := append([]string(nil), candidates...)
	a.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	picked = picked[:a.params.NumSources]

	graphs := make([]string, 0, len(picked))
	distinct := common.NewIDSet()
	for _, ereID := range picked {
		graphID, ok := a.pool.Corpus.GraphIDOf(ereID)
		if !ok {
			return nil, false
		}
		if _, inPool := a.pool.Graphs[graphID]; !inPool {
			return nil, false
		}
		distinct.Add(graphID)
		graphs = append(graphs, graphID)
	}
	return graphs, len(distinct) == a.params.NumSources
}

// possibleTargets keeps the sampled graphs in which every merge point
// is reachable from the first one, carrying the summed connectedness
// of the target-side candidates.
func (a *Assembler) possibleTargets(sampleGraphs []string, eventPoints []MergePoint) []targetCandidate {
	targets := make([]targetCandidate, 0, len(sampleGraphs))
	for i, graphID := range sampleGraphs {
		graph := a.pool.Graphs[graphID]
		rootID := eventPoints[0].Candidates[i].EreID
		score := eventPoints[0].Candidates[i].TwoStep
		ok := true
		for _, point := range eventPoints[1:] {
			if !Reachable(graph, rootID, point.Candidates[i].EreID) {
				ok = false
				break
			}
			score += point.Candidates[i].TwoStep
		}
		if ok {
			targets = append(targets, targetCandidate{index: i, graphID: graphID, score: score})
		}
	}
	return targets
}

// assemble builds one mixture for the given target: merges every source
// copy at the event points and the reachable entity points, then unions
// the per-copy neighborhoods of the merge points into a single graph
// and resolves duplicate typing statements in the target's favor.
func (a *Assembler) assemble(sampleGraphs []string, eventPoints, entityPoints []MergePoint, target targetCandidate) *common.Mixture {
	copies := make([]*common.Graph, len(sampleGraphs))
	for i, graphID := range sampleGraphs {
		copies[i] = a.pool.Graphs[graphID].Clone()
	}

	originPoint := a.rng.Intn(len(eventPoints))
	var queryStmtIDs common.IDSet

	for pointIter, point := range eventPoints {
		targetEre := copies[target.index].Eres[point.Candidates[target.index].EreID]
		if pointIter == originPoint {
			queryStmtIDs = LocalQuerySet(a.rng, copies[target.index], targetEre.ID, 2)
		}
		for graphIter := range copies {
			if graphIter != target.index {
				ReplaceEre(copies[graphIter], point.Candidates[graphIter].EreID, targetEre)
			}
		}
	}

	mergeIDs := common.NewIDSet()
	for _, point := range eventPoints {
		mergeIDs.Add(point.Candidates[target.index].EreID)
	}

	// Entity merge points must be reachable from the first event merge
	// point inside the target graph; the rest stay unmerged.
	rootID := eventPoints[0].Candidates[target.index].EreID
	for _, point := range entityPoints {
		if !Reachable(a.pool.Graphs[target.graphID], rootID, point.Candidates[target.index].EreID) {
			continue
		}
		targetEre := copies[target.index].Eres[point.Candidates[target.index].EreID]
		for graphIter := range copies {
			if graphIter != target.index {
				ReplaceEre(copies[graphIter], point.Candidates[graphIter].EreID, targetEre)
			}
		}
		mergeIDs.Add(targetEre.ID)
	}

	mixed := common.NewGraph(strings.Join(sampleGraphs, "-") + "_target-" + target.graphID)
	for _, id := range mergeIDs.Slice() {
		mixed.Eres[id] = copies[target.index].Eres[id].Clone()
	}

	for _, copyGraph := range copies {
		a.mergeNeighborhood(mixed, copyGraph, mergeIDs)
	}

	resolveDuplicateTyping(mixed, mergeIDs, target.graphID)

	return &common.Mixture{
		OriginID:       eventPoints[originPoint].Candidates[target.index].EreID,
		QueryStmtIDs:   queryStmtIDs,
		Graph:          mixed,
		TargetGraphID:  target.graphID,
		SourceGraphIDs: append([]string(nil), sampleGraphs...),
	}
}

// mergeNeighborhood BFS-expands one merged source copy outward from the
// merge points, moving every reached node and every statement touching
// a visited node into the mixed graph. Merge-point nodes accumulate
// their neighbor and statement sets across copies instead of being
// overwritten.
func (a *Assembler) mergeNeighborhood(mixed, copyGraph *common.Graph, mergeIDs common.IDSet) {
	stmtsToMove := common.NewIDSet()
	eresToMove := common.NewIDSet()
	seen := mergeIDs.Clone()
	frontier := common.NewIDSet()

	for id := range mergeIDs {
		node := copyGraph.Eres[id]
		stmtsToMove.Update(node.StmtIDs)
		for nid := range node.NeighborEreIDs {
			if !mergeIDs.Contains(nid) {
				frontier.Add(nid)
			}
		}
	}

	for len(frontier) > 0 {
		next := common.NewIDSet()
		for id := range frontier {
			seen.Add(id)
			eresToMove.Add(id)
			node := copyGraph.Eres[id]
			stmtsToMove.Update(node.StmtIDs)
			next.Update(node.NeighborEreIDs)
		}
		for id := range seen {
			next.Discard(id)
		}
		frontier = next
	}

	for id := range eresToMove {
		mixed.Eres[id] = copyGraph.Eres[id]
	}
	for id := range stmtsToMove {
		mixed.Stmts[id] = copyGraph.Stmts[id]
	}
	for id := range mergeIDs {
		mixed.Eres[id].NeighborEreIDs.Update(copyGraph.Eres[id].NeighborEreIDs)
		mixed.Eres[id].StmtIDs.Update(copyGraph.Eres[id].StmtIDs)
	}
}

// resolveDuplicateTyping drops duplicate typing statements accumulated
// on merge points. When the target graph contributed one of the
// duplicates, every non-target duplicate goes; otherwise the statement
// with the smallest id wins.
func resolveDuplicateTyping(mixed *common.Graph, mergeIDs common.IDSet, targetGraphID string) {
	for id := range mergeIDs {
		node := mixed.Eres[id]
		byLabel := make(map[string]common.IDSet)
		for stmtID := range node.StmtIDs {
			stmt := mixed.Stmts[stmtID]
			if stmt.IsTyping() {
				if byLabel[stmt.LabelText()] == nil {
					byLabel[stmt.LabelText()] = common.NewIDSet()
				}
				byLabel[stmt.LabelText()].Add(stmtID)
			}
		}
		for _, stmtIDs := range byLabel {
			if len(stmtIDs) < 2 {
				continue
			}
			fromTarget := false
			for stmtID := range stmtIDs {
				if mixed.Stmts[stmtID].GraphID == targetGraphID {
					fromTarget = true
					break
				}
			}
			ordered := stmtIDs.Slice()
			for i, stmtID := range ordered {
				if fromTarget {
					if mixed.Stmts[stmtID].GraphID == targetGraphID {
						continue
					}
				} else if i == 0 {
					continue
				}
				node.StmtIDs.Discard(stmtID)
				delete(mixed.Stmts, stmtID)
			}
		}
	}
}
