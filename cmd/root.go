// cmd/root.go
package cmd

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/paulmure/hogmild-sim/netflix"
	"github.com/paulmure/hogmild-sim/sim"
	"github.com/paulmure/hogmild-sim/train"
)

var (
	simulationOnly bool
	numSamples     int
	dataset        string
	dataPath       string
	nMovies        int
	logLevel       string
	timingPreset   string

	nWeightBanks int
	nWorkers     int
	nFolders     int
	fifoDepth    int
	sendDelay    int
	networkDelay int
	receiveDelay int
	gradientII   int
	gradientLat  int
	foldII       int
	foldLat      int

	alpha0            float64
	decayRate         float64
	maxEpoch          int
	stoppingCriterion float64
	nFeatures         int
	mu, lamXF, lamYF, lamXB, lamYB float64
	rngSeed           int64
)

var rootCmd = &cobra.Command{
	Use:   "hogmild-sim",
	Short: "Discrete-event simulator and staleness-aware trainer for Hogwild-style SGD",
	RunE:  run,
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildConfig() sim.Config {
	cfg := sim.Config{
		NWeightBanks:    nWeightBanks,
		NWorkers:        nWorkers,
		NFolders:        nFolders,
		FifoDepth:       fifoDepth,
		SendDelay:       sim.Tick(sendDelay),
		NetworkDelay:    sim.Tick(networkDelay),
		ReceiveDelay:    sim.Tick(receiveDelay),
		GradientII:      sim.Tick(gradientII),
		GradientLatency: sim.Tick(gradientLat),
		FoldII:          sim.Tick(foldII),
		FoldLatency:     sim.Tick(foldLat),
	}
	if timingPreset != "" {
		var err error
		cfg, err = sim.LoadPreset("configs/timing_presets.yaml", timingPreset, cfg)
		if err != nil {
			logrus.Fatalf("loading timing preset %q: %v", timingPreset, err)
		}
	}
	return cfg
}

func run(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	cfg := buildConfig()

	if simulationOnly {
		cycles, _, err := sim.Run(cfg, numSamples, logrus.StandardLogger())
		if err != nil {
			return err
		}
		fmt.Println(cycles)
		return nil
	}

	if dataset != "netflix" {
		return fmt.Errorf("unknown dataset %q (only \"netflix\" is supported)", dataset)
	}

	matrix, err := netflix.Load(dataPath, nMovies, logrus.StandardLogger())
	if err != nil {
		return err
	}
	logrus.Infof("loaded matrix: %d rows, %d cols, %d entries", matrix.NRows(), matrix.NCols(), matrix.Nnz())

	cycles, updateLog, err := sim.Run(cfg, matrix.Nnz(), logrus.StandardLogger())
	if err != nil {
		return err
	}
	fmt.Println(cycles)

	hp := train.HyperParams{
		NFeatures: nFeatures,
		Mu:        mu,
		LamXF:     lamXF,
		LamYF:     lamYF,
		LamXB:     lamXB,
		LamYB:     lamYB,
	}
	weights := train.NewWeights(matrix.NRows(), matrix.NCols(), hp, rand.New(rand.NewSource(rngSeed)))
	trainer := train.NewTrainer(matrix, weights, alpha0, decayRate, maxEpoch, stoppingCriterion)

	for _, loss := range trainer.Train(updateLog) {
		fmt.Println(loss)
	}
	return nil
}

func init() {
	flags := rootCmd.Flags()

	flags.BoolVar(&simulationOnly, "simulation", false, "run only the timing simulator and print cycle count")
	flags.IntVar(&numSamples, "num-samples", 128, "number of samples in simulation-only mode")
	flags.StringVar(&dataset, "dataset", "netflix", "selector for the data loader (only \"netflix\" is supported)")
	flags.StringVar(&dataPath, "data-path", "data/netflix/training_set", "directory holding the dataset's per-movie rating files")
	flags.IntVar(&nMovies, "n-movies", 100, "number of movies to load from the dataset")
	flags.StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&timingPreset, "timing-preset", "", "name of a named timing preset in configs/timing_presets.yaml to overlay on the flag-supplied Config")

	flags.IntVar(&nWeightBanks, "n-weight-banks", 8, "number of weight banks")
	flags.IntVar(&nWorkers, "n-workers", 8, "number of workers")
	flags.IntVar(&nFolders, "n-folders", 8, "max updates folded per tick")
	flags.IntVar(&fifoDepth, "fifo-depth", 8, "capacity of each sample/update FIFO")
	flags.IntVar(&sendDelay, "send-delay", 4, "ticks to send a sample or update onto the wire")
	flags.IntVar(&networkDelay, "network-delay", 8, "ticks for a packet to cross the network")
	flags.IntVar(&receiveDelay, "receive-delay", 4, "ticks to receive a sample or update off the wire")
	flags.IntVar(&gradientII, "gradient-ii", 8, "initiation interval of the gradient unit")
	flags.IntVar(&gradientLat, "gradient-latency", 32, "latency of the gradient unit")
	flags.IntVar(&foldII, "fold-ii", 8, "initiation interval of the fold unit")
	flags.IntVar(&foldLat, "fold-latency", 32, "latency of the fold unit")

	flags.Float64Var(&alpha0, "alpha-0", 0.1, "initial learning rate")
	flags.Float64Var(&decayRate, "decay-rate", 5.0, "learning-rate decay rate")
	flags.IntVar(&maxEpoch, "max-epoch", 1000, "maximum number of training epochs")
	flags.Float64Var(&stoppingCriterion, "stopping-criterion", 0.001, "relative loss-delta threshold to stop training early")
	flags.IntVar(&nFeatures, "n-features", 10, "rank of the factorization")
	flags.Float64Var(&mu, "mu", 1.0, "model hyperparameter mu")
	flags.Float64Var(&lamXF, "lam-xf", 1.0, "L2 regularization weight for X")
	flags.Float64Var(&lamYF, "lam-yf", 1.0, "L2 regularization weight for Y")
	flags.Float64Var(&lamXB, "lam-xb", 1.0, "L2 regularization weight for Xb")
	flags.Float64Var(&lamYB, "lam-yb", 1.0, "L2 regularization weight for Yb")
	flags.Int64Var(&rngSeed, "rng-seed", 4102000, "RNG seed for weight initialization")
}
