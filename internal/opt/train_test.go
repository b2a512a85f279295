package opt

import (
	"bytes"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/FlavioCFOliveira/ffnet/internal/activations"
	"github.com/FlavioCFOliveira/ffnet/internal/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	andSamples = []net.Sample{
		{X: []float64{0, 0}, Y: []float64{0}},
		{X: []float64{0, 1}, Y: []float64{0}},
		{X: []float64{1, 0}, Y: []float64{0}},
		{X: []float64{1, 1}, Y: []float64{1}},
	}
	orSamples = []net.Sample{
		{X: []float64{0, 0}, Y: []float64{0}},
		{X: []float64{0, 1}, Y: []float64{1}},
		{X: []float64{1, 0}, Y: []float64{1}},
		{X: []float64{1, 1}, Y: []float64{1}},
	}
	xorSamples = []net.Sample{
		{X: []float64{0, 0}, Y: []float64{0}},
		{X: []float64{0, 1}, Y: []float64{1}},
		{X: []float64{1, 0}, Y: []float64{1}},
		{X: []float64{1, 1}, Y: []float64{0}},
	}
)

// allOptimizers returns one optimizer of each kind sharing r.
func allOptimizers(r *rand.Rand) []Optimizer {
	return []Optimizer{
		NewSGD(Config{Rand: r}),
		NewMomentum(MomentumConfig{Config: Config{Rand: r}}),
		NewAdaGrad(AdaGradConfig{Config: Config{Rand: r}}),
		NewRMSProp(RMSPropConfig{Config: Config{Rand: r}}),
		NewAdam(AdamConfig{Config: Config{Rand: r, Rate: 0.1}}),
	}
}

// factories builds optimizers of one kind from a config.
var factories = map[string]func(Config) Optimizer{
	"sgd":      func(c Config) Optimizer { return NewSGD(c) },
	"momentum": func(c Config) Optimizer { return NewMomentum(MomentumConfig{Config: c}) },
	"adagrad":  func(c Config) Optimizer { return NewAdaGrad(AdaGradConfig{Config: c}) },
	"rmsprop":  func(c Config) Optimizer { return NewRMSProp(RMSPropConfig{Config: c}) },
	"adam":     func(c Config) Optimizer { return NewAdam(AdamConfig{Config: c}) },
}

// trainWithRetry trains fresh networks from a few seeds and returns the
// first that converges.
func trainWithRetry(t *testing.T, layout []int, lo, hi float64, train func(n *net.Network, r *rand.Rand) bool) *net.Network {
	t.Helper()
	for seed := int64(1); seed <= 3; seed++ {
		r := rand.New(rand.NewSource(seed))
		n := newNetwork(t, layout, activations.Sigmoid, r, lo, hi)
		if train(n, r) {
			return n
		}
		t.Logf("seed %d did not converge", seed)
	}
	t.Fatal("training did not converge")
	return nil
}

// TestTrainLogicGates tests online convergence on AND and OR.
func TestTrainLogicGates(t *testing.T) {
	rates := map[string]float64{"momentum": 0.5, "adagrad": 0.5, "rmsprop": 0.5, "adam": 0.1}
	gates := map[string][]net.Sample{"and": andSamples, "or": orSamples}

	for name, rate := range rates {
		for gate, samples := range gates {
			t.Run(name+"/"+gate, func(t *testing.T) {
				n := trainWithRetry(t, []int{2, 1}, 0.5, 1, func(n *net.Network, r *rand.Rand) bool {
					o := factories[name](Config{Rate: rate, Rand: r})
					return o.Train(n, samples, 10000, 0.01)
				})
				assert.Less(t, n.TotalLoss(samples), 0.01)
			})
		}
	}
}

// TestTrainXOR tests that a hidden layer learns XOR.
func TestTrainXOR(t *testing.T) {
	for _, name := range []string{"sgd", "momentum"} {
		t.Run(name, func(t *testing.T) {
			n := trainWithRetry(t, []int{2, 3, 1}, -1, 1, func(n *net.Network, r *rand.Rand) bool {
				return factories[name](Config{Rand: r}).Train(n, xorSamples, 100000, 0.01)
			})
			assert.Less(t, n.Output([]float64{0, 0})[0], 0.3)
			assert.Less(t, n.Output([]float64{1, 1})[0], 0.3)
			assert.Greater(t, n.Output([]float64{0, 1})[0], 0.7)
			assert.Greater(t, n.Output([]float64{1, 0})[0], 0.7)
		})
	}
}

// TestBatchTrain tests batch convergence on AND.
func TestBatchTrain(t *testing.T) {
	for _, batchSize := range []int{0, 2} {
		for _, name := range []string{"sgd", "momentum", "rmsprop"} {
			n := trainWithRetry(t, []int{2, 1}, 0.5, 1, func(n *net.Network, r *rand.Rand) bool {
				return factories[name](Config{Rand: r}).BatchTrain(n, andSamples, 10000, 0.01, batchSize)
			})
			assert.Less(t, n.TotalLoss(andSamples), 0.01, "%s batch %d", name, batchSize)
		}
	}
}

// TestTrainReportsFailure tests the budget exit.
func TestTrainReportsFailure(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	n := newNetwork(t, []int{2, 1}, activations.Sigmoid, r, 0.5, 1)
	o := NewSGD(Config{Rand: r})

	assert.False(t, o.Train(n, xorSamples, 50, 0.01))
	assert.False(t, o.BatchTrain(n, xorSamples, 50, 0.01, 2))
	assert.False(t, o.Train(n, andSamples, 0, 1))
}

// TestTrainStopsAtEpsilon tests that the loss check runs after every step.
func TestTrainStopsAtEpsilon(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	n := newNetwork(t, []int{2, 1}, activations.Sigmoid, r, 0.5, 1)
	rec := &recordCallback{}
	o := NewSGD(Config{Rand: r, Callbacks: []Callback{rec}})

	// Any loss is below this epsilon, so one step is enough.
	assert.True(t, o.Train(n, andSamples, 100, 10))
	assert.Equal(t, []int{1}, rec.epochs)
}

// TestTrainLeavesNoState tests that a session always cleans up.
func TestTrainLeavesNoState(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for _, o := range allOptimizers(r) {
		n := newNetwork(t, []int{2, 2, 1}, activations.Sigmoid, r, -1, 1)
		o.Train(n, andSamples, 20, 0)
		assert.Panics(t, func() { o.LearnSample(n, andSamples[0]) }, o.Name())

		o.BatchTrain(n, andSamples, 20, 0, 2)
		assert.Panics(t, func() { o.LearnSample(n, andSamples[0]) }, o.Name())
	}

	a := NewAdam(AdamConfig{Config: Config{Rand: r}})
	n := newNetwork(t, []int{2, 1}, activations.Sigmoid, r, -1, 1)
	a.Train(n, andSamples, 10, 0)
	assert.Nil(t, a.m)
	assert.Nil(t, a.v)
	assert.Nil(t, a.acc)
}

// TestTrainTwiceEqualsFreshSessions tests that no state survives between
// sessions of one optimizer.
func TestTrainTwiceEqualsFreshSessions(t *testing.T) {
	for name, newOpt := range factories {
		t.Run(name, func(t *testing.T) {
			init := rand.New(rand.NewSource(4))
			n1 := newNetwork(t, []int{2, 3, 1}, activations.Sigmoid, init, -1, 1)
			n2 := n1.Clone()

			// epsilon 0 runs the full budget, so both paths draw the same samples.
			o := newOpt(Config{Rand: rand.New(rand.NewSource(9)), Rate: 0.1})
			o.Train(n1, xorSamples, 200, 0)
			o.BatchTrain(n1, xorSamples, 50, 0, 2)
			o.Train(n1, xorSamples, 200, 0)

			r := rand.New(rand.NewSource(9))
			newOpt(Config{Rand: r, Rate: 0.1}).Train(n2, xorSamples, 200, 0)
			newOpt(Config{Rand: r, Rate: 0.1}).BatchTrain(n2, xorSamples, 50, 0, 2)
			newOpt(Config{Rand: r, Rate: 0.1}).Train(n2, xorSamples, 200, 0)

			assert.Equal(t, params(n2), params(n1))
		})
	}
}

// TestAdamStepResetsPerSession tests the step counter lifecycle.
func TestAdamStepResetsPerSession(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	n := newNetwork(t, []int{2, 1}, activations.Sigmoid, r, -1, 1)
	o := NewAdam(AdamConfig{Config: Config{Rand: r}})

	o.PrepareNetwork(n)
	assert.Equal(t, 1, o.Step())
	o.LearnSample(n, andSamples[0])
	o.LearnSample(n, andSamples[1])
	o.LearnSample(n, andSamples[2])
	assert.Equal(t, 4, o.Step())
	o.LearnBatch(n, andSamples)
	assert.Equal(t, 5, o.Step())
	o.CleanNetwork(n)

	o.Train(n, andSamples, 7, 0)
	assert.Equal(t, 8, o.Step())

	// Batch sessions count batches, whatever their size.
	o.BatchTrain(n, andSamples, 3, 0, 2)
	assert.Equal(t, 4, o.Step())
	o.BatchTrain(n, andSamples, 3, 0, 0)
	assert.Equal(t, 4, o.Step())

	o.PrepareNetwork(n)
	assert.Equal(t, 1, o.Step())
	o.CleanNetwork(n)
}

// TestSessionLogging tests the structured session records.
func TestSessionLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := rand.New(rand.NewSource(1))
	n := newNetwork(t, []int{2, 1}, activations.Sigmoid, r, -1, 1)
	o := NewMomentum(MomentumConfig{Config: Config{Rand: r, Logger: logger}})
	o.Train(n, andSamples, 3, 0)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `msg="training started"`)
	assert.Contains(t, lines[0], "optimizer=momentum")
	assert.Contains(t, lines[0], "mode=online")
	assert.Contains(t, lines[1], `msg="training finished"`)
	assert.Contains(t, lines[1], "steps=3")
	assert.Contains(t, lines[1], "success=false")

	session := func(line string) string {
		i := strings.Index(line, "session=")
		require.GreaterOrEqual(t, i, 0)
		return strings.Fields(line[i:])[0]
	}
	assert.Equal(t, session(lines[0]), session(lines[1]))
	assert.Len(t, session(lines[0]), len("session=")+36)
}
