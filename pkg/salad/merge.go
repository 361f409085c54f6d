package salad

import "saladgen/pkg/common"

// ReplaceEre substitutes the node sourceID in g with a copy of target,
// rewiring every incident statement and the neighbor sets of the far
// endpoints. The inserted copy keeps the source node's adjacency but
// the target's identity, category, and provenance. Calling it with
// sourceID equal to target's id leaves the graph unchanged.
func ReplaceEre(g *common.Graph, sourceID string, target *common.Ere) {
	src, ok := g.Eres[sourceID]
	if !ok {
		return
	}

	inserted := target.Clone()
	inserted.NeighborEreIDs = src.NeighborEreIDs.Clone()
	inserted.StmtIDs = src.StmtIDs.Clone()
	delete(g.Eres, sourceID)
	g.Eres[inserted.ID] = inserted

	for stmtID := range inserted.StmtIDs {
		stmt := g.Stmts[stmtID]
		if stmt.TailID == sourceID {
			stmt.TailID = inserted.ID
			head := g.Eres[stmt.HeadID]
			head.NeighborEreIDs.Discard(sourceID)
			head.NeighborEreIDs.Add(inserted.ID)
		}
		if stmt.HeadID == sourceID {
			stmt.HeadID = inserted.ID
			if !stmt.IsTyping() {
				tail := g.Eres[stmt.TailID]
				tail.NeighborEreIDs.Discard(sourceID)
				tail.NeighborEreIDs.Add(inserted.ID)
			}
		}
	}
}
