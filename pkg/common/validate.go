package common

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation marks a structural defect inside a graph:
// a dangling reference, asymmetric adjacency bookkeeping, or a node
// carrying the wrong typing statements. It indicates a bug in merge or
// abridge logic, not a data problem, and callers must treat it as fatal.
var ErrInvariantViolation = errors.New("graph invariant violation")

// Validate checks the structural invariants of the graph: every
// referenced id resolves, statement endpoints and node bookkeeping are
// symmetric, and no node lists itself as a neighbor.
func (g *Graph) Validate() error {
	for stmtID, stmt := range g.Stmts {
		head, ok := g.Eres[stmt.HeadID]
		if !ok {
			return fmt.Errorf("%w: stmt %s head %s missing", ErrInvariantViolation, stmtID, stmt.HeadID)
		}
		if !head.StmtIDs.Contains(stmtID) {
			return fmt.Errorf("%w: stmt %s not in head %s stmt set", ErrInvariantViolation, stmtID, stmt.HeadID)
		}
		if stmt.IsTyping() {
			continue
		}
		tail, ok := g.Eres[stmt.TailID]
		if !ok {
			return fmt.Errorf("%w: stmt %s tail %s missing", ErrInvariantViolation, stmtID, stmt.TailID)
		}
		if !tail.StmtIDs.Contains(stmtID) {
			return fmt.Errorf("%w: stmt %s not in tail %s stmt set", ErrInvariantViolation, stmtID, stmt.TailID)
		}
		if stmt.HeadID != stmt.TailID {
			if !head.NeighborEreIDs.Contains(stmt.TailID) || !tail.NeighborEreIDs.Contains(stmt.HeadID) {
				return fmt.Errorf("%w: stmt %s endpoints not mutual neighbors", ErrInvariantViolation, stmtID)
			}
		}
	}

	for ereID, ere := range g.Eres {
		if ere.NeighborEreIDs.Contains(ereID) {
			return fmt.Errorf("%w: ere %s is its own neighbor", ErrInvariantViolation, ereID)
		}

		neighbors := make(IDSet)
		for stmtID := range ere.StmtIDs {
			stmt, ok := g.Stmts[stmtID]
			if !ok {
				return fmt.Errorf("%w: ere %s references missing stmt %s", ErrInvariantViolation, ereID, stmtID)
			}
			if stmt.HeadID != ereID && stmt.TailID != ereID {
				return fmt.Errorf("%w: ere %s lists stmt %s which does not touch it", ErrInvariantViolation, ereID, stmtID)
			}
			if stmt.HeadID != ereID {
				neighbors.Add(stmt.HeadID)
			}
			if !stmt.IsTyping() && stmt.TailID != ereID {
				neighbors.Add(stmt.TailID)
			}
		}
		if len(neighbors) != len(ere.NeighborEreIDs) {
			return fmt.Errorf("%w: ere %s neighbor set out of sync", ErrInvariantViolation, ereID)
		}
		for id := range neighbors {
			if !ere.NeighborEreIDs.Contains(id) {
				return fmt.Errorf("%w: ere %s missing neighbor %s", ErrInvariantViolation, ereID, id)
			}
		}

		for stmtID, stmt := range g.Stmts {
			touches := stmt.HeadID == ereID || stmt.TailID == ereID
			if touches && !ere.StmtIDs.Contains(stmtID) {
				return fmt.Errorf("%w: ere %s missing stmt %s", ErrInvariantViolation, ereID, stmtID)
			}
		}
	}

	return nil
}
