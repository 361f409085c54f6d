package salad

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"saladgen/pkg/common"
	"saladgen/pkg/index"
	"saladgen/pkg/logger"
)

// MixtureWriter receives finished mixtures, partition by partition.
type MixtureWriter interface {
	SaveMixture(ctx context.Context, split common.Split, mixture *common.Mixture) error
}

// GenerateConfig bundles the run-level settings around the per-mixture
// Params.
type GenerateConfig struct {
	Params Params `json:"params"`

	// DataSize is the total number of mixtures to produce across all
	// partitions.
	DataSize int `json:"data_size"`

	// PercTrain and PercTest partition both the source graphs and the
	// produced mixtures; the remainder becomes validation data.
	PercTrain float64 `json:"perc_train"`
	PercTest  float64 `json:"perc_test"`

	// Seed initializes the run's random source. Equal seeds over equal
	// corpora reproduce the same mixtures.
	Seed int64 `json:"seed"`

	// ProgressEvery logs a progress line each time this many mixtures
	// have been produced. Zero disables progress logging.
	ProgressEvery int `json:"progress_every,omitempty"`
}

// Generator drives a full generation run over one corpus.
type Generator struct {
	corpus *index.Corpus
	writer MixtureWriter
	config GenerateConfig

	// OnProgress, when set, is called after every accepted mixture with
	// the running total.
	OnProgress func(produced int)
}

// NewGenerator builds a generator writing to the given sink.
func NewGenerator(corpus *index.Corpus, writer MixtureWriter, config GenerateConfig) *Generator {
	return &Generator{corpus: corpus, writer: writer, config: config}
}

// Run produces the configured number of mixtures and returns how many
// were written. The corpus is partitioned up front; mixtures are then
// generated train-first, switching pools when the running count crosses
// the partition cut points. Candidate mixtures are dropped when their
// query set is empty, their serialized graph exceeds the size cap, or
// the target graph contributes no statements beyond the query itself.
func (g *Generator) Run(ctx context.Context) (int, error) {
	cfg := g.config
	rng := rand.New(rand.NewSource(cfg.Seed))

	g.corpus.FilterMergeCandidates(g.corpus.EventNames, cfg.Params.MinOneStep, cfg.Params.MinTwoStep)
	g.corpus.FilterMergeCandidates(g.corpus.EntityNames, cfg.Params.MinOneStep, cfg.Params.MinTwoStep)

	pools, err := g.corpus.Split(rng, cfg.PercTrain, cfg.PercTest)
	if err != nil {
		return 0, err
	}

	logger.Info("[Generator] Starting run",
		"data_size", cfg.DataSize,
		"train_graphs", len(pools.Train.Graphs),
		"val_graphs", len(pools.Val.Graphs),
		"test_graphs", len(pools.Test.Graphs),
	)

	trainCut := cfg.PercTrain * float64(cfg.DataSize)
	valCut := trainCut + (1-(cfg.PercTrain+cfg.PercTest))*float64(cfg.DataSize)

	used := make(map[string]struct{})
	assemblers := map[common.Split]*Assembler{
		common.SplitTrain: NewAssembler(pools.Train, cfg.Params, rng, used),
		common.SplitVal:   NewAssembler(pools.Val, cfg.Params, rng, used),
		common.SplitTest:  NewAssembler(pools.Test, cfg.Params, rng, used),
	}
	splitFor := func(counter int) common.Split {
		switch {
		case float64(counter) < trainCut:
			return common.SplitTrain
		case float64(counter) < valCut:
			return common.SplitVal
		default:
			return common.SplitTest
		}
	}

	start := time.Now()
	counter := 0
	for counter < cfg.DataSize {
		mixtures, err := assemblers[splitFor(counter)].CreateMixtures(ctx)
		if err != nil {
			return counter, err
		}

		for _, mixture := range mixtures {
			if counter >= cfg.DataSize {
				break
			}
			keep, err := g.finalize(mixture)
			if err != nil {
				return counter, err
			}
			if !keep {
				continue
			}

			if err := g.writer.SaveMixture(ctx, splitFor(counter), mixture); err != nil {
				return counter, fmt.Errorf("failed to store mixture %s: %w", mixture.Name(), err)
			}
			counter++
			if g.OnProgress != nil {
				g.OnProgress(counter)
			}
			if cfg.ProgressEvery > 0 && counter%cfg.ProgressEvery == 0 {
				logger.Info("[Generator] Progress", "produced", counter, "elapsed", time.Since(start).Round(time.Millisecond))
				start = time.Now()
			}
		}
	}

	logger.Info("[Generator] Run complete", "produced", counter)
	return counter, nil
}

// finalize abridges a candidate mixture when configured and applies the
// rejection policy. Invariant violations coming out of the abridger are
// fatal.
func (g *Generator) finalize(mixture *common.Mixture) (bool, error) {
	cfg := g.config

	if cfg.Params.AbridgeHops >= 0 {
		err := Abridge(mixture.Graph, mixture.TargetGraphID, cfg.Params.NumSources, cfg.Params.AbridgeHops)
		if err != nil {
			return false, err
		}
	}

	if len(mixture.QueryStmtIDs) == 0 {
		logger.Debug("[Generator] Rejected mixture with empty query", "name", mixture.Name())
		return false, nil
	}

	if cfg.Params.MaxSizeKB > 0 {
		data, err := json.Marshal(mixture.Graph)
		if err != nil {
			return false, fmt.Errorf("failed to serialize mixture %s: %w", mixture.Name(), err)
		}
		if len(data) >= cfg.Params.MaxSizeKB*1024 {
			logger.Debug("[Generator] Rejected oversized mixture", "name", mixture.Name(), "bytes", len(data))
			return false, nil
		}
	}

	novel := 0
	for stmtID, stmt := range mixture.Graph.Stmts {
		if stmt.GraphID == mixture.TargetGraphID && !mixture.QueryStmtIDs.Contains(stmtID) {
			novel++
		}
	}
	if novel == 0 {
		logger.Debug("[Generator] Rejected mixture without extractable target content", "name", mixture.Name())
		return false, nil
	}

	return true, nil
}
