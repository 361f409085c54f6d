package index

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"saladgen/pkg/common"
)

// SplitPools holds the train/validation/test partitions of the source
// graph pool. Each pool carries its own filtered name indexes so a
// generation run never mixes graphs across splits.
type SplitPools struct {
	Train *Pool
	Val   *Pool
	Test  *Pool
}

// Split partitions the corpus graphs into train/test/val pools using
// ceil semantics on the fractions; whatever remains after the train and
// test draws becomes validation. Fractions that demand more graphs than
// exist are a configuration error.
func (c *Corpus) Split(rng *rand.Rand, percTrain, percTest float64) (*SplitPools, error) {
	if percTrain < 0 || percTest < 0 || percTrain+percTest > 1 {
		return nil, fmt.Errorf("invalid split fractions: train=%v test=%v", percTrain, percTest)
	}

	graphIDs := make([]string, 0, len(c.Graphs))
	for id := range c.Graphs {
		graphIDs = append(graphIDs, id)
	}
	sort.Strings(graphIDs)

	numTrain := int(math.Ceil(percTrain * float64(len(graphIDs))))
	numTest := int(math.Ceil(percTest * float64(len(graphIDs))))
	if numTrain+numTest > len(graphIDs) {
		return nil, fmt.Errorf("split requires %d graphs but only %d available", numTrain+numTest, len(graphIDs))
	}

	rng.Shuffle(len(graphIDs), func(i, j int) {
		graphIDs[i], graphIDs[j] = graphIDs[j], graphIDs[i]
	})

	train := graphIDs[:numTrain]
	test := graphIDs[numTrain : numTrain+numTest]
	val := graphIDs[numTrain+numTest:]

	return &SplitPools{
		Train: c.NewPool(train),
		Val:   c.NewPool(val),
		Test:  c.NewPool(test),
	}, nil
}

// Pool is a per-split view of the corpus: the subset of graphs plus
// name indexes restricted to nodes those graphs own.
type Pool struct {
	Corpus *Corpus
	Graphs map[string]*common.Graph

	EventNames  map[string]common.IDSet
	EntityNames map[string]common.IDSet

	// per-graph sets of names the graph contributes candidates for
	EventSrcToName  map[string]common.IDSet
	EntitySrcToName map[string]common.IDSet
}

// NewPool builds the restricted view for the given graph ids.
func (c *Corpus) NewPool(graphIDs []string) *Pool {
	pool := &Pool{
		Corpus:          c,
		Graphs:          make(map[string]*common.Graph, len(graphIDs)),
		EventNames:      make(map[string]common.IDSet),
		EntityNames:     make(map[string]common.IDSet),
		EventSrcToName:  make(map[string]common.IDSet),
		EntitySrcToName: make(map[string]common.IDSet),
	}
	for _, id := range graphIDs {
		if graph, ok := c.Graphs[id]; ok {
			pool.Graphs[id] = graph
		}
	}

	pool.EventNames = c.filterNames(c.EventNames, pool.Graphs)
	pool.EntityNames = c.filterNames(c.EntityNames, pool.Graphs)

	for name, ereIDs := range pool.EventNames {
		for ereID := range ereIDs {
			graphID := c.owner[ereID]
			if pool.EventSrcToName[graphID] == nil {
				pool.EventSrcToName[graphID] = make(common.IDSet)
			}
			pool.EventSrcToName[graphID].Add(name)
		}
	}
	for name, ereIDs := range pool.EntityNames {
		for ereID := range ereIDs {
			graphID := c.owner[ereID]
			if pool.EntitySrcToName[graphID] == nil {
				pool.EntitySrcToName[graphID] = make(common.IDSet)
			}
			pool.EntitySrcToName[graphID].Add(name)
		}
	}

	return pool
}

func (c *Corpus) filterNames(names map[string]common.IDSet, graphs map[string]*common.Graph) map[string]common.IDSet {
	filtered := make(map[string]common.IDSet, len(names))
	for name, ereIDs := range names {
		kept := make(common.IDSet)
		for ereID := range ereIDs {
			if graphID, ok := c.owner[ereID]; ok {
				if _, inPool := graphs[graphID]; inPool {
					kept.Add(ereID)
				}
			}
		}
		if len(kept) > 0 {
			filtered[name] = kept
		}
	}
	return filtered
}

// MixableEventNames returns, sorted, the event names whose candidate
// nodes span at least numSources distinct graphs in this pool.
func (p *Pool) MixableEventNames(numSources int) []string {
	mixable := make([]string, 0)
	for name, ereIDs := range p.EventNames {
		graphs := make(common.IDSet)
		for ereID := range ereIDs {
			if graphID, ok := p.Corpus.GraphIDOf(ereID); ok {
				graphs.Add(graphID)
			}
		}
		if len(graphs) >= numSources {
			mixable = append(mixable, name)
		}
	}
	sort.Strings(mixable)
	return mixable
}
