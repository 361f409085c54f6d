package salad

import (
	"math/rand"

	"saladgen/pkg/common"
)

// Reachable reports whether toID can be reached from fromID by
// traversing neighbor links in g. A node is always reachable from
// itself.
func Reachable(g *common.Graph, fromID, toID string) bool {
	if fromID == toID {
		return true
	}
	seen := common.NewIDSet(fromID)
	frontier := []string{fromID}
	for len(frontier) > 0 {
		next := common.NewIDSet()
		for _, id := range frontier {
			ere, ok := g.Eres[id]
			if !ok {
				continue
			}
			for nid := range ere.NeighborEreIDs {
				if !seen.Contains(nid) {
					next.Add(nid)
				}
			}
		}
		if next.Contains(toID) {
			return true
		}
		seen.Update(next)
		frontier = next.Slice()
	}
	return false
}

// LocalQuerySet collects the statement ids forming the local query
// neighborhood of rootID: for up to maxNeighbors randomly chosen
// neighbors, the statements connecting the root to that neighbor, the
// root's typing statements, and the neighbor's typing statements. A
// root without neighbors yields an empty set.
func LocalQuerySet(rng *rand.Rand, g *common.Graph, rootID string, maxNeighbors int) common.IDSet {
	out := common.NewIDSet()
	root, ok := g.Eres[rootID]
	if !ok {
		return out
	}
	neighborIDs := root.NeighborEreIDs.Slice()
	if len(neighborIDs) > maxNeighbors {
		rng.Shuffle(len(neighborIDs), func(i, j int) {
			neighborIDs[i], neighborIDs[j] = neighborIDs[j], neighborIDs[i]
		})
		neighborIDs = neighborIDs[:maxNeighbors]
	}
	for _, nid := range neighborIDs {
		for sid := range root.StmtIDs {
			stmt := g.Stmts[sid]
			if stmt.IsTyping() || stmt.HeadID == nid || stmt.TailID == nid {
				out.Add(sid)
			}
		}
		for sid := range g.Eres[nid].StmtIDs {
			if g.Stmts[sid].IsTyping() {
				out.Add(sid)
			}
		}
	}
	return out
}
