// xor trains a 2-3-1 sigmoid network on XOR with a chosen optimizer.
//
// Usage:
//
//	xor -optimizer=momentum -rate=0.5 -iter=100000 -epsilon=0.01 -out=xor.json
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"github.com/FlavioCFOliveira/ffnet/ffnet"
)

var (
	optimizer = flag.String("optimizer", "momentum", "Optimizer: sgd, momentum, adagrad, rmsprop, adam")
	rate      = flag.Float64("rate", 0.5, "Learning rate")
	maxIter   = flag.Int("iter", 100000, "Maximum training iterations")
	epsilon   = flag.Float64("epsilon", 0.01, "Stop when total loss drops below this")
	seed      = flag.Int64("seed", 42, "Random seed")
	output    = flag.String("out", "", "Output network file (JSON)")
	verbose   = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger); err != nil {
		logger.Error("xor failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	samples := []ffnet.Sample{
		{X: []float64{0, 0}, Y: []float64{0}},
		{X: []float64{0, 1}, Y: []float64{1}},
		{X: []float64{1, 0}, Y: []float64{1}},
		{X: []float64{1, 1}, Y: []float64{0}},
	}

	r := rand.New(rand.NewSource(*seed))
	network, err := ffnet.NewMultiLayerPerceptron([]int{2, 3, 1}, ffnet.Sigmoid)
	if err != nil {
		return err
	}
	network.Init(ffnet.Uniform(r, -1, 1), nil)

	cfg := ffnet.Config{Rate: *rate, Rand: r, Logger: logger}
	if *verbose {
		cfg.Callbacks = []ffnet.Callback{ffnet.Logger(1000)}
	}
	o, ok := ffnet.NewOptimizer(*optimizer, cfg)
	if !ok {
		return fmt.Errorf("unknown optimizer %q", *optimizer)
	}

	fmt.Printf("Network architecture: 2-3-1 (sigmoid)\n")
	fmt.Printf("Optimizer: %s with learning rate %g\n", o.Name(), o.Rate())

	success := o.Train(network, samples, *maxIter, *epsilon)
	fmt.Printf("Converged: %v, total loss: %.6f\n", success, network.TotalLoss(samples))

	fmt.Println("\nTesting trained network:")
	for _, s := range samples {
		fmt.Printf("Input: %v, Predicted: %.4f, Target: %v\n", s.X, network.Output(s.X)[0], s.Y[0])
	}

	if *output == "" {
		return nil
	}
	if err := network.Save(*output); err != nil {
		return fmt.Errorf("save network: %w", err)
	}
	loaded, err := ffnet.Load(*output)
	if err != nil {
		return fmt.Errorf("load network: %w", err)
	}
	for _, s := range samples {
		if math.Abs(network.Output(s.X)[0]-loaded.Output(s.X)[0]) > 1e-12 {
			return fmt.Errorf("reloaded network differs on %v", s.X)
		}
	}
	fmt.Printf("\nNetwork saved to %s\n", *output)
	return nil
}
