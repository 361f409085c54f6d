package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"saladgen/internal/util"
	"saladgen/pkg/index"
	"saladgen/pkg/logger"
	"saladgen/pkg/logger/console"
	"saladgen/pkg/salad"
	fsstore "saladgen/pkg/store/fs"
	pgxstore "saladgen/pkg/store/pgx"
)

// Flags override the environment, the environment overrides the
// defaults.
func main() {
	util.LoadEnv()

	defaults := salad.DefaultParams()

	corpusDir := flag.String("corpus", util.GetEnvString("CORPUS_DIR", ""), "corpus directory holding graphs/ and the index files")
	outDir := flag.String("out", util.GetEnvString("OUT_DIR", "mixtures"), "output directory for the Train/Val/Test folders")
	storeKind := flag.String("store", util.GetEnvString("STORE", "fs"), "mixture store adapter: fs or pg")
	dataSize := flag.Int("size", util.GetEnvInt("DATA_SIZE", 1000), "total number of mixtures to produce")
	percTrain := flag.Float64("train", util.GetEnvFloat("PERC_TRAIN", 0.9), "fraction of graphs and mixtures used for training")
	percTest := flag.Float64("test", util.GetEnvFloat("PERC_TEST", 0.05), "fraction of graphs and mixtures used for testing")
	seed := flag.Int64("seed", int64(util.GetEnvInt("SEED", 0)), "random seed, 0 derives one from the clock")

	numSources := flag.Int("sources", util.GetEnvInt("NUM_SOURCES", defaults.NumSources), "number of source graphs per mixture")
	numShared := flag.Int("shared", util.GetEnvInt("NUM_SHARED_ERES", defaults.NumSharedEres), "number of shared event merge points per mixture")
	hops := flag.Int("hops", util.GetEnvInt("ABRIDGE_HOPS", defaults.AbridgeHops), "abridge radius around merge points, negative disables abridging")
	maxSizeKB := flag.Int("max-kb", util.GetEnvInt("MAX_SIZE_KB", defaults.MaxSizeKB), "reject mixtures whose serialized size exceeds this many KB")
	minOneStep := flag.Float64("min-one-step", util.GetEnvFloat("MIN_CONNECTEDNESS_ONE_STEP", defaults.MinOneStep), "minimum one-step connectedness for merge candidates")
	minTwoStep := flag.Float64("min-two-step", util.GetEnvFloat("MIN_CONNECTEDNESS_TWO_STEP", defaults.MinTwoStep), "minimum two-step connectedness for merge candidates")
	maxTwoStep := flag.Float64("max-two-step", util.GetEnvFloat("MAX_CONNECTEDNESS_TWO_STEP", defaults.MaxTwoStepSum), "maximum summed two-step connectedness per merge point")
	maxAttempts := flag.Int("attempts", util.GetEnvInt("MAX_ATTEMPTS", defaults.MaxAttempts), "sampling attempts before a partition counts as exhausted")
	flag.Parse()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if *corpusDir == "" {
		logger.Fatal("Missing -corpus directory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runSeed := *seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}

	corpus, err := index.LoadCorpus(ctx, *corpusDir)
	if err != nil {
		logger.Fatal("Failed to load corpus", "dir", *corpusDir, "err", err)
	}

	var writer salad.MixtureWriter
	switch *storeKind {
	case "fs":
		writer, err = fsstore.NewMixtureStore(*outDir)
		if err != nil {
			logger.Fatal("Failed to prepare output directory", "dir", *outDir, "err", err)
		}
	case "pg":
		if err := pgxstore.Migrate(util.GetEnv("DATABASE_URL")); err != nil {
			logger.Fatal("Failed to run migrations", "err", err)
		}
		conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		defer conn.Close()
		writer = pgxstore.NewStore(conn)
	default:
		logger.Fatal("Unknown store adapter", "store", *storeKind)
	}

	generator := salad.NewGenerator(corpus, writer, salad.GenerateConfig{
		Params: salad.Params{
			NumSources:    *numSources,
			NumSharedEres: *numShared,
			AbridgeHops:   *hops,
			MaxSizeKB:     *maxSizeKB,
			MinOneStep:    *minOneStep,
			MinTwoStep:    *minTwoStep,
			MaxTwoStepSum: *maxTwoStep,
			MaxAttempts:   *maxAttempts,
		},
		DataSize:      *dataSize,
		PercTrain:     *percTrain,
		PercTest:      *percTest,
		Seed:          runSeed,
		ProgressEvery: 100,
	})

	start := time.Now()
	produced, err := generator.Run(ctx)
	if err != nil {
		logger.Error("Generation stopped early", "produced", produced, "requested", *dataSize, "err", err)
		os.Exit(1)
	}

	logger.Info(
		"Generation finished",
		"produced", produced,
		"store", *storeKind,
		"seed", runSeed,
		"duration", time.Since(start).Round(time.Second).String(),
	)
}
