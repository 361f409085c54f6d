package common

// Category classifies a node in a single-document knowledge graph.
type Category string

const (
	CategoryEntity   Category = "Entity"
	CategoryRelation Category = "Relation"
	CategoryEvent    Category = "Event"
)

// Ere represents an entity, relation, or event node in a knowledge graph.
// Node ids are unique across the whole corpus; GraphID records the
// single-document graph the node originated from and is preserved
// through merges for provenance.
//
// NeighborEreIDs and StmtIDs are derived adjacency bookkeeping: the
// neighbor set is exactly the distinct non-self endpoints reachable
// through StmtIDs, and StmtIDs is exactly the set of statements whose
// head or tail is this node. Both must hold after every graph mutation.
type Ere struct {
	ID             string   `json:"id"`
	Category       Category `json:"category"`
	GraphID        string   `json:"graph_id"`
	NeighborEreIDs IDSet    `json:"neighbor_ere_ids"`
	StmtIDs        IDSet    `json:"stmt_ids"`
}

// Clone returns a deep copy of the node.
func (e *Ere) Clone() *Ere {
	return &Ere{
		ID:             e.ID,
		Category:       e.Category,
		GraphID:        e.GraphID,
		NeighborEreIDs: e.NeighborEreIDs.Clone(),
		StmtIDs:        e.StmtIDs.Clone(),
	}
}

// Stmt represents a statement edge. A binary statement connects HeadID
// to TailID; a typing statement asserts the head node's ontology type
// and has an empty TailID. Label holds the predicate tokens (for typing
// statements, the type tokens). GraphID records the contributing
// single-document graph.
type Stmt struct {
	ID      string   `json:"id"`
	HeadID  string   `json:"head_id"`
	TailID  string   `json:"tail_id,omitempty"`
	Label   []string `json:"label"`
	GraphID string   `json:"graph_id"`
}

// IsTyping reports whether the statement is a unary typing assertion.
func (s *Stmt) IsTyping() bool {
	return s.TailID == ""
}

// LabelText returns the label tokens joined by single spaces. It is the
// key used when resolving duplicate typing statements.
func (s *Stmt) LabelText() string {
	text := ""
	for i, token := range s.Label {
		if i > 0 {
			text += " "
		}
		text += token
	}
	return text
}

// Clone returns a deep copy of the statement.
func (s *Stmt) Clone() *Stmt {
	label := make([]string, len(s.Label))
	copy(label, s.Label)
	return &Stmt{
		ID:      s.ID,
		HeadID:  s.HeadID,
		TailID:  s.TailID,
		Label:   label,
		GraphID: s.GraphID,
	}
}

// Graph is the owning container for a knowledge graph: one table of
// nodes and one table of statements, both keyed by id. All references
// between nodes and statements are id lookups into these tables.
type Graph struct {
	ID    string           `json:"id"`
	Eres  map[string]*Ere  `json:"eres"`
	Stmts map[string]*Stmt `json:"stmts"`
}

// NewGraph creates an empty graph with the given id.
func NewGraph(id string) *Graph {
	return &Graph{
		ID:    id,
		Eres:  make(map[string]*Ere),
		Stmts: make(map[string]*Stmt),
	}
}

// Clone returns a deep copy of the graph. Mixture assembly mutates
// private copies so the shared source-graph pool is never touched.
func (g *Graph) Clone() *Graph {
	clone := &Graph{
		ID:    g.ID,
		Eres:  make(map[string]*Ere, len(g.Eres)),
		Stmts: make(map[string]*Stmt, len(g.Stmts)),
	}
	for id, ere := range g.Eres {
		clone.Eres[id] = ere.Clone()
	}
	for id, stmt := range g.Stmts {
		clone.Stmts[id] = stmt.Clone()
	}
	return clone
}

// Mixture is the produced graph-salad artifact: the merged graph, the
// merge-point node chosen as the query root, the seed statement set,
// and the source graph designated as the extraction target.
type Mixture struct {
	OriginID       string   `json:"origin_id"`
	QueryStmtIDs   IDSet    `json:"query_stmt_ids"`
	Graph          *Graph   `json:"graph"`
	TargetGraphID  string   `json:"target_graph_id"`
	SourceGraphIDs []string `json:"source_graph_ids"`
}

// Name returns the artifact identifier combining the contributing
// source graphs and the designated target graph.
func (m *Mixture) Name() string {
	name := ""
	for i, id := range m.SourceGraphIDs {
		if i > 0 {
			name += "-"
		}
		name += id
	}
	return name + "_target-" + m.TargetGraphID
}
