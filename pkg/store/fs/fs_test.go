package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"saladgen/pkg/common"
)

func testMixture() *common.Mixture {
	g := common.NewGraph("mix")
	g.Eres["e1"] = &common.Ere{
		ID:             "e1",
		Category:       common.CategoryEvent,
		GraphID:        "g1",
		NeighborEreIDs: common.NewIDSet(),
		StmtIDs:        common.NewIDSet("t1"),
	}
	g.Stmts["t1"] = &common.Stmt{ID: "t1", HeadID: "e1", Label: []string{"Conflict.Attack"}, GraphID: "g1"}
	return &common.Mixture{
		OriginID:       "e1",
		QueryStmtIDs:   common.NewIDSet("t1"),
		Graph:          g,
		TargetGraphID:  "g1",
		SourceGraphIDs: []string{"g1", "g2", "g3"},
	}
}

func TestNewMixtureStoreCreatesSplitFolders(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewMixtureStore(dir); err != nil {
		t.Fatalf("NewMixtureStore failed: %v", err)
	}
	for _, split := range common.Splits() {
		if _, err := os.Stat(filepath.Join(dir, string(split))); err != nil {
			t.Errorf("missing split folder %s: %v", split, err)
		}
	}
}

func TestSaveMixtureRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewMixtureStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	mixture := testMixture()
	if err := s.SaveMixture(context.Background(), common.SplitTrain, mixture); err != nil {
		t.Fatalf("SaveMixture failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Train", mixture.Name()+".json"))
	if err != nil {
		t.Fatalf("mixture file missing: %v", err)
	}

	var loaded common.Mixture
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("mixture file unreadable: %v", err)
	}
	if loaded.OriginID != "e1" || loaded.TargetGraphID != "g1" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if len(loaded.Graph.Eres) != 1 {
		t.Errorf("round trip lost graph nodes: %d", len(loaded.Graph.Eres))
	}
}

func TestSaveMixtureCanceledContext(t *testing.T) {
	s, err := NewMixtureStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.SaveMixture(ctx, common.SplitTrain, testMixture()); err == nil {
		t.Error("expected error for canceled context")
	}
}
