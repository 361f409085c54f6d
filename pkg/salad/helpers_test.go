package salad

import (
	"strings"

	"saladgen/pkg/common"
	"saladgen/pkg/index"
)

// addNode inserts a node with empty adjacency sets.
func addNode(g *common.Graph, id string, category common.Category) *common.Ere {
	ere := &common.Ere{
		ID:             id,
		Category:       category,
		GraphID:        g.ID,
		NeighborEreIDs: common.NewIDSet(),
		StmtIDs:        common.NewIDSet(),
	}
	g.Eres[id] = ere
	return ere
}

// addTyping attaches a typing statement to a node. The statement's
// provenance defaults to the node's graph.
func addTyping(g *common.Graph, id, headID, label string) *common.Stmt {
	stmt := &common.Stmt{
		ID:      id,
		HeadID:  headID,
		Label:   strings.Fields(label),
		GraphID: g.Eres[headID].GraphID,
	}
	g.Stmts[id] = stmt
	g.Eres[headID].StmtIDs.Add(id)
	return stmt
}

// addEdge connects two nodes with a binary statement and keeps the
// adjacency bookkeeping consistent.
func addEdge(g *common.Graph, id, headID, tailID, label string) *common.Stmt {
	stmt := &common.Stmt{
		ID:      id,
		HeadID:  headID,
		TailID:  tailID,
		Label:   strings.Fields(label),
		GraphID: g.Eres[headID].GraphID,
	}
	g.Stmts[id] = stmt
	g.Eres[headID].StmtIDs.Add(id)
	g.Eres[tailID].StmtIDs.Add(id)
	g.Eres[headID].NeighborEreIDs.Add(tailID)
	g.Eres[tailID].NeighborEreIDs.Add(headID)
	return stmt
}

// explosionGraph builds one single-document graph of the shape used
// across the engine tests:
//
//	victim -- hurt -- explosion -- at -- place -- in -- city
//
// where explosion is an Event and the rest are Entities, every node
// carrying one typing statement.
func explosionGraph(graphID string) *common.Graph {
	g := common.NewGraph(graphID)
	addNode(g, graphID+"-explosion", common.CategoryEvent)
	addNode(g, graphID+"-victim", common.CategoryEntity)
	addNode(g, graphID+"-place", common.CategoryEntity)
	addNode(g, graphID+"-city", common.CategoryEntity)
	addTyping(g, graphID+"-t-explosion", graphID+"-explosion", "Conflict.Attack")
	addTyping(g, graphID+"-t-victim", graphID+"-victim", "PER")
	addTyping(g, graphID+"-t-place", graphID+"-place", "LOC")
	addTyping(g, graphID+"-t-city", graphID+"-city", "GPE")
	addEdge(g, graphID+"-s-hurt", graphID+"-explosion", graphID+"-victim", "hurt")
	addEdge(g, graphID+"-s-at", graphID+"-explosion", graphID+"-place", "at")
	addEdge(g, graphID+"-s-in", graphID+"-place", graphID+"-city", "in")
	return g
}

// explosionCorpus assembles three explosion graphs into a corpus with
// fully populated lookup tables: the event name "Explosion" and entity
// name "Marketplace" are shared across all three graphs.
func explosionCorpus() *index.Corpus {
	corpus := index.NewCorpus()
	for _, graphID := range []string{"g1", "g2", "g3"} {
		g := explosionGraph(graphID)
		corpus.AddGraph(g)

		corpus.EventTypes[graphID+"-explosion"] = common.NewIDSet("Conflict.Attack")
		corpus.EntityTypes[graphID+"-victim"] = common.NewIDSet("PER")
		corpus.EntityTypes[graphID+"-place"] = common.NewIDSet("LOC")

		for _, ereID := range []string{graphID + "-explosion", graphID + "-victim", graphID + "-place"} {
			corpus.OneStep[ereID] = 2
			corpus.TwoStep[ereID] = 4
		}
	}
	corpus.EventNames["Explosion"] = common.NewIDSet("g1-explosion", "g2-explosion", "g3-explosion")
	corpus.EntityNames["Marketplace"] = common.NewIDSet("g1-place", "g2-place", "g3-place")
	return corpus
}

func explosionParams() Params {
	params := DefaultParams()
	params.NumSources = 3
	params.NumSharedEres = 1
	params.MaxAttempts = 100
	return params
}
