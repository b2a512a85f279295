// train fits a fully connected network to a CSV dataset.
//
// Usage:
//
//	train -data=data.csv -labels=4 -layout=8,1 -optimizer=adam -rate=0.05 -out=model.json
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/FlavioCFOliveira/ffnet/ffnet"
)

var (
	dataFile   = flag.String("data", "", "CSV dataset (required)")
	labels     = flag.String("labels", "", "Comma-separated target column indices (required)")
	header     = flag.Bool("header", true, "CSV has a header row")
	layout     = flag.String("layout", "8,1", "Hidden and output layer sizes, comma-separated")
	activation = flag.String("activation", "sigmoid", "Activation of every layer")
	optimizer  = flag.String("optimizer", "adam", "Optimizer: sgd, momentum, adagrad, rmsprop, adam")
	rate       = flag.Float64("rate", 0.05, "Learning rate")
	epochs     = flag.Int("epochs", 10000, "Maximum training epochs")
	batchSize  = flag.Int("batch", 0, "Batch size; 0 trains online")
	epsilon    = flag.Float64("epsilon", 0.001, "Stop when training loss drops below this")
	ratio      = flag.Float64("split", 0.8, "Fraction of samples used for training")
	seed       = flag.Int64("seed", 42, "Random seed")
	output     = flag.String("out", "", "Output network file (JSON)")
	progress   = flag.String("progress", "", "Write per-epoch loss to this CSV file")
	verbose    = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("train failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	if *dataFile == "" || *labels == "" {
		flag.Usage()
		return fmt.Errorf("-data and -labels are required")
	}
	labelCols, err := parseInts(*labels)
	if err != nil {
		return fmt.Errorf("parse -labels: %w", err)
	}
	sizes, err := parseInts(*layout)
	if err != nil {
		return fmt.Errorf("parse -layout: %w", err)
	}
	act, ok := ffnet.LookupActivation(*activation)
	if !ok {
		return fmt.Errorf("unknown activation %q", *activation)
	}

	samples, err := ffnet.LoadCSV(*dataFile, labelCols, *header)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	ffnet.Normalize(samples)

	r := rand.New(rand.NewSource(*seed))
	r.Shuffle(len(samples), func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })
	trainSet, testSet := ffnet.Split(samples, *ratio)
	if len(trainSet) == 0 {
		return fmt.Errorf("split %.2f leaves no training samples", *ratio)
	}

	network, err := ffnet.NewMultiLayerPerceptron(append([]int{len(samples[0].X)}, sizes...), act)
	if err != nil {
		return err
	}
	if network.OutputSize() != len(labelCols) {
		return fmt.Errorf("output layer has %d neurons for %d label columns", network.OutputSize(), len(labelCols))
	}
	network.Init(ffnet.Uniform(r, -1, 1), nil)

	cfg := ffnet.Config{Rate: *rate, Rand: r, Logger: logger}
	if *progress != "" {
		cfg.Callbacks = append(cfg.Callbacks, ffnet.CSVLogger(*progress, false))
	}
	if *verbose {
		cfg.Callbacks = append(cfg.Callbacks, ffnet.Logger(*epochs/10+1))
	}
	o, ok := ffnet.NewOptimizer(*optimizer, cfg)
	if !ok {
		return fmt.Errorf("unknown optimizer %q", *optimizer)
	}

	fmt.Printf("Samples: %d train, %d test\n", len(trainSet), len(testSet))
	fmt.Printf("Network: %s\n", *layout)
	fmt.Printf("Optimizer: %s with learning rate %g\n", o.Name(), o.Rate())

	var success bool
	if *batchSize > 0 {
		success = o.BatchTrain(network, trainSet, *epochs, *epsilon, *batchSize)
	} else {
		success = o.Train(network, trainSet, *epochs, *epsilon)
	}

	fmt.Printf("Converged: %v\n", success)
	fmt.Printf("Train loss: %.6f\n", network.TotalLoss(trainSet))
	if len(testSet) > 0 {
		fmt.Printf("Test loss:  %.6f\n", network.TotalLoss(testSet))
	}

	if *output != "" {
		if err := network.Save(*output); err != nil {
			return fmt.Errorf("save network: %w", err)
		}
		fmt.Printf("Network saved to %s\n", *output)
	}
	return nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
