package salad

import (
	"fmt"

	"saladgen/pkg/common"
)

// Abridge crops a mixed graph to a hop radius around its merge points.
// Merge points are the nodes carrying statements from all numSources
// contributing graphs. The crop keeps the nodes within hops steps of a
// merge point, the statements incident to nodes strictly inside that
// radius, every typing statement of a kept node, and unconditionally
// expands Relation nodes on or adjacent to the kept set so no relation
// survives with a truncated neighborhood. Hop zero keeps only the merge
// points themselves plus those expansions.
//
// The graph is repaired and re-tightened in place. Abridge verifies the
// structural invariants of the result and returns an error wrapping
// common.ErrInvariantViolation when they do not hold.
func Abridge(g *common.Graph, targetGraphID string, numSources, hops int) error {
	recomputeAdjacency(g)
	dropForeignTyping(g, targetGraphID)

	mergeIDs := mergePointIDs(g, numSources)

	seen := common.NewIDSet()
	frontier := mergeIDs.Clone()
	for i := 0; i < hops && len(frontier) > 0; i++ {
		seen.Update(frontier)
		next := common.NewIDSet()
		for id := range frontier {
			next.Update(g.Eres[id].NeighborEreIDs)
		}
		for id := range seen {
			next.Discard(id)
		}
		frontier = next
	}

	keepStmts := common.NewIDSet()
	for id := range seen {
		keepStmts.Update(g.Eres[id].StmtIDs)
	}
	seen.Update(frontier)

	// Relations on the boundary would otherwise lose arguments, so any
	// Relation kept or touching a kept node pulls in all of its own
	// statements and endpoints.
	relations := common.NewIDSet()
	for id := range seen {
		if g.Eres[id].Category == common.CategoryRelation {
			relations.Add(id)
		}
		for nid := range g.Eres[id].NeighborEreIDs {
			if g.Eres[nid].Category == common.CategoryRelation {
				relations.Add(nid)
			}
		}
	}
	for id := range relations {
		seen.Add(id)
		keepStmts.Update(g.Eres[id].StmtIDs)
		seen.Update(g.Eres[id].NeighborEreIDs)
	}

	for id := range seen {
		for stmtID := range g.Eres[id].StmtIDs {
			if g.Stmts[stmtID].IsTyping() {
				keepStmts.Add(stmtID)
			}
		}
	}

	for id := range g.Eres {
		if !seen.Contains(id) {
			delete(g.Eres, id)
		}
	}
	for stmtID := range g.Stmts {
		if !keepStmts.Contains(stmtID) {
			delete(g.Stmts, stmtID)
		}
	}

	for _, ere := range g.Eres {
		for stmtID := range ere.StmtIDs {
			if !keepStmts.Contains(stmtID) {
				ere.StmtIDs.Discard(stmtID)
			}
		}
	}
	recomputeNeighbors(g)

	return verifyAbridged(g)
}

// recomputeAdjacency rebuilds every node's statement and neighbor sets
// from the statement table, repairing any drift left by assembly.
func recomputeAdjacency(g *common.Graph) {
	for _, ere := range g.Eres {
		ere.StmtIDs = common.NewIDSet()
	}
	for stmtID, stmt := range g.Stmts {
		if head, ok := g.Eres[stmt.HeadID]; ok {
			head.StmtIDs.Add(stmtID)
		}
		if tail, ok := g.Eres[stmt.TailID]; ok {
			tail.StmtIDs.Add(stmtID)
		}
	}
	recomputeNeighbors(g)
}

func recomputeNeighbors(g *common.Graph) {
	for ereID, ere := range g.Eres {
		neighbors := common.NewIDSet()
		for stmtID := range ere.StmtIDs {
			stmt := g.Stmts[stmtID]
			if stmt.IsTyping() {
				continue
			}
			if stmt.HeadID != ereID {
				neighbors.Add(stmt.HeadID)
			}
			if stmt.TailID != ereID {
				neighbors.Add(stmt.TailID)
			}
		}
		ere.NeighborEreIDs = neighbors
	}
}

// dropForeignTyping removes, from any node still carrying more than one
// typing statement, the typing statements contributed by graphs other
// than the designated target graph.
func dropForeignTyping(g *common.Graph, targetGraphID string) {
	for _, ere := range g.Eres {
		typing := make([]string, 0, 2)
		for stmtID := range ere.StmtIDs {
			if g.Stmts[stmtID].IsTyping() {
				typing = append(typing, stmtID)
			}
		}
		if len(typing) < 2 {
			continue
		}
		for _, stmtID := range typing {
			if g.Stmts[stmtID].GraphID != targetGraphID {
				ere.StmtIDs.Discard(stmtID)
				delete(g.Stmts, stmtID)
			}
		}
	}
}

// mergePointIDs returns the nodes whose statements span all numSources
// contributing graphs.
func mergePointIDs(g *common.Graph, numSources int) common.IDSet {
	points := common.NewIDSet()
	for ereID, ere := range g.Eres {
		graphs := common.NewIDSet()
		for stmtID := range ere.StmtIDs {
			graphs.Add(g.Stmts[stmtID].GraphID)
		}
		if len(graphs) >= numSources {
			points.Add(ereID)
		}
	}
	return points
}

// verifyAbridged checks the abridged graph end to end: structural
// consistency plus exactly one typing statement per node, owned by the
// node's origin graph.
func verifyAbridged(g *common.Graph) error {
	if err := g.Validate(); err != nil {
		return err
	}
	for ereID, ere := range g.Eres {
		typing := make([]string, 0, 1)
		for stmtID := range ere.StmtIDs {
			if g.Stmts[stmtID].IsTyping() {
				typing = append(typing, stmtID)
			}
		}
		if len(typing) != 1 {
			return fmt.Errorf("%w: node %s has %d typing statements after abridging", common.ErrInvariantViolation, ereID, len(typing))
		}
		if g.Stmts[typing[0]].GraphID != ere.GraphID {
			return fmt.Errorf("%w: node %s typing statement from graph %s", common.ErrInvariantViolation, ereID, g.Stmts[typing[0]].GraphID)
		}
	}
	return nil
}
