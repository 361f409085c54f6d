package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"saladgen/pkg/common"
	"saladgen/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const parallelGraphLoads = 8

// Corpus bundles the single-document graph pool with the precomputed
// lookup tables the mixing engine consumes: name maps per node
// category, ontology type maps, and connectedness scores. The tables
// are built once by the upstream graph-construction pipeline and
// treated as read-only here.
type Corpus struct {
	Graphs map[string]*common.Graph

	EventNames  map[string]common.IDSet
	EntityNames map[string]common.IDSet

	EventTypes  map[string]common.IDSet
	EntityTypes map[string]common.IDSet

	OneStep map[string]float64
	TwoStep map[string]float64

	// owner maps each ere id to its source graph id, built while
	// loading so node ids stay opaque.
	owner map[string]string
}

// GraphIDOf returns the source graph owning the given ere id.
func (c *Corpus) GraphIDOf(ereID string) (string, bool) {
	id, ok := c.owner[ereID]
	return id, ok
}

// NewCorpus returns an empty corpus. Graphs are registered through
// AddGraph; the lookup tables are filled by the loader or the caller.
func NewCorpus() *Corpus {
	return &Corpus{
		Graphs:      make(map[string]*common.Graph),
		EventNames:  make(map[string]common.IDSet),
		EntityNames: make(map[string]common.IDSet),
		EventTypes:  make(map[string]common.IDSet),
		EntityTypes: make(map[string]common.IDSet),
		OneStep:     make(map[string]float64),
		TwoStep:     make(map[string]float64),
		owner:       make(map[string]string),
	}
}

// AddGraph registers a graph and records node ownership.
func (c *Corpus) AddGraph(g *common.Graph) {
	c.Graphs[g.ID] = g
	for ereID := range g.Eres {
		c.owner[ereID] = g.ID
	}
}

// LoadCorpus reads a corpus directory: single-document graphs under
// graphs/*.json plus the six index files produced alongside them.
// Missing inputs or an empty graph pool are startup errors.
func LoadCorpus(ctx context.Context, dir string) (*Corpus, error) {
	corpus := NewCorpus()

	graphDir := filepath.Join(dir, "graphs")
	entries, err := os.ReadDir(graphDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph folder: %w", err)
	}

	logger.Info("[Index] Loading graphs", "dir", graphDir, "files", len(entries))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelGraphLoads)
	mutex := sync.Mutex{}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := entry.Name()
		eg.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			graph, err := loadGraphFile(filepath.Join(graphDir, name))
			if err != nil {
				return err
			}

			mutex.Lock()
			defer mutex.Unlock()
			corpus.AddGraph(graph)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load graphs: %w", err)
	}
	if len(corpus.Graphs) == 0 {
		return nil, fmt.Errorf("no graphs found in %s", graphDir)
	}

	if err := readJSONFile(filepath.Join(dir, "event_names.json"), &corpus.EventNames); err != nil {
		return nil, err
	}
	if err := readJSONFile(filepath.Join(dir, "entity_names.json"), &corpus.EntityNames); err != nil {
		return nil, err
	}
	if err := readJSONFile(filepath.Join(dir, "event_types.json"), &corpus.EventTypes); err != nil {
		return nil, err
	}
	if err := readJSONFile(filepath.Join(dir, "entity_types.json"), &corpus.EntityTypes); err != nil {
		return nil, err
	}
	if err := readJSONFile(filepath.Join(dir, "connectedness_one_step.json"), &corpus.OneStep); err != nil {
		return nil, err
	}
	if err := readJSONFile(filepath.Join(dir, "connectedness_two_step.json"), &corpus.TwoStep); err != nil {
		return nil, err
	}

	logger.Info("[Index] Corpus loaded",
		"graphs", len(corpus.Graphs),
		"event_names", len(corpus.EventNames),
		"entity_names", len(corpus.EntityNames),
	)

	return corpus, nil
}

func loadGraphFile(path string) (*common.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file %s: %w", path, err)
	}
	graph := common.NewGraph("")
	if err := json.Unmarshal(data, graph); err != nil {
		return nil, fmt.Errorf("failed to parse graph file %s: %w", path, err)
	}
	if graph.ID == "" {
		graph.ID = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return graph, nil
}

func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read index file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse index file %s: %w", path, err)
	}
	return nil
}

// FilterMergeCandidates prunes a name map down to nodes eligible to
// anchor a merge point: the node must carry at least one non-typing
// statement headed by an Event node, and must meet the configured
// minimum one-step and two-step connectedness scores. Names left with
// no candidates are dropped.
func (c *Corpus) FilterMergeCandidates(names map[string]common.IDSet, minOneStep, minTwoStep float64) {
	for name, ereIDs := range names {
		for ereID := range ereIDs.Clone() {
			graphID, ok := c.owner[ereID]
			if !ok {
				ereIDs.Discard(ereID)
				continue
			}
			graph := c.Graphs[graphID]
			ere := graph.Eres[ereID]

			eventStmts := 0
			for stmtID := range ere.StmtIDs {
				stmt := graph.Stmts[stmtID]
				if stmt.IsTyping() {
					continue
				}
				if head, ok := graph.Eres[stmt.HeadID]; ok && head.Category == common.CategoryEvent {
					eventStmts++
				}
			}

			if eventStmts < 1 || c.OneStep[ereID] < minOneStep || c.TwoStep[ereID] < minTwoStep {
				ereIDs.Discard(ereID)
			}
		}
		if len(ereIDs) == 0 {
			delete(names, name)
		}
	}
}
