package salad

import (
	"context"
	"testing"

	"saladgen/pkg/common"
)

type captureWriter struct {
	saved map[common.Split][]*common.Mixture
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{saved: make(map[common.Split][]*common.Mixture)}
}

func (w *captureWriter) SaveMixture(ctx context.Context, split common.Split, mixture *common.Mixture) error {
	w.saved[split] = append(w.saved[split], mixture)
	return nil
}

func explosionGenerateConfig(dataSize int) GenerateConfig {
	return GenerateConfig{
		Params:    explosionParams(),
		DataSize:  dataSize,
		PercTrain: 1,
		PercTest:  0,
		Seed:      1,
	}
}

func TestGeneratorRun(t *testing.T) {
	writer := newCaptureWriter()
	gen := NewGenerator(explosionCorpus(), writer, explosionGenerateConfig(2))

	produced, err := gen.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if produced != 2 {
		t.Errorf("produced %d mixtures, want 2", produced)
	}
	if got := len(writer.saved[common.SplitTrain]); got != 2 {
		t.Errorf("train split holds %d mixtures, want 2", got)
	}

	for _, mixture := range writer.saved[common.SplitTrain] {
		if err := mixture.Graph.Validate(); err != nil {
			t.Errorf("persisted mixture %s invalid: %v", mixture.Name(), err)
		}
		if len(mixture.QueryStmtIDs) == 0 {
			t.Errorf("persisted mixture %s has empty query", mixture.Name())
		}
	}
}

func TestGeneratorRunNeverRepeatsPairs(t *testing.T) {
	writer := newCaptureWriter()
	gen := NewGenerator(explosionCorpus(), writer, explosionGenerateConfig(3))

	if _, err := gen.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	seen := make(map[string]struct{})
	for _, mixtures := range writer.saved {
		for _, mixture := range mixtures {
			key := PairKey(mixture.SourceGraphIDs, mixture.TargetGraphID)
			if _, dup := seen[key]; dup {
				t.Errorf("pair %s generated twice", key)
			}
			seen[key] = struct{}{}
		}
	}
}

func TestGeneratorRunReportsExhaustion(t *testing.T) {
	// Four mixtures requested but only three source/target pairs exist.
	writer := newCaptureWriter()
	gen := NewGenerator(explosionCorpus(), writer, explosionGenerateConfig(4))

	produced, err := gen.Run(context.Background())
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if produced != 3 {
		t.Errorf("produced %d mixtures before exhaustion, want 3", produced)
	}
}

func TestGeneratorRunProgressCallback(t *testing.T) {
	writer := newCaptureWriter()
	gen := NewGenerator(explosionCorpus(), writer, explosionGenerateConfig(2))

	var calls []int
	gen.OnProgress = func(produced int) { calls = append(calls, produced) }

	if _, err := gen.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("progress calls = %v, want [1 2]", calls)
	}
}

func TestGeneratorRunInvalidSplit(t *testing.T) {
	cfg := explosionGenerateConfig(1)
	cfg.PercTrain = 0.9
	cfg.PercTest = 0.9

	gen := NewGenerator(explosionCorpus(), newCaptureWriter(), cfg)
	if _, err := gen.Run(context.Background()); err == nil {
		t.Error("expected error for fractions exceeding 1")
	}
}
