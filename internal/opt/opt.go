// Package opt provides the optimizers that train a network. All of them
// share one backpropagation driver and differ only in how a raw neuron
// gradient becomes a weight update.
package opt

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/FlavioCFOliveira/ffnet/internal/layer"
	"github.com/FlavioCFOliveira/ffnet/internal/net"
	"gonum.org/v1/gonum/floats"
)

// DefaultRate is the learning rate used when Config.Rate is zero.
const DefaultRate = 0.5

// Optimizer trains a network with gradient descent.
//
// A training session runs PrepareNetwork, any number of LearnSample or
// LearnBatch calls, then CleanNetwork. Train and BatchTrain run a whole
// session. Optimizer state lives in the optimizer, never in the network.
type Optimizer interface {
	// PrepareNetwork allocates per-neuron state for n and resets session
	// counters.
	PrepareNetwork(n *net.Network)

	// CleanNetwork drops all per-neuron state.
	CleanNetwork(n *net.Network)

	// AdjustNeuron turns the raw gradient of one neuron into an update and
	// applies it. The last gradient entry belongs to the bias.
	AdjustNeuron(layerIdx, neuronIdx int, nr *layer.Neuron, gradient []float64)

	// LearnSample performs one online step on a single sample.
	LearnSample(n *net.Network, s net.Sample)

	// LearnBatch sums gradients over batch and applies them once.
	LearnBatch(n *net.Network, batch []net.Sample)

	// Train runs online steps on randomly drawn samples until the total
	// loss drops below epsilon or maxIter steps are done.
	Train(n *net.Network, samples []net.Sample, maxIter int, epsilon float64) bool

	// BatchTrain runs batch steps until the total loss drops below epsilon
	// or maxEpoch batches are done.
	BatchTrain(n *net.Network, samples []net.Sample, maxEpoch int, epsilon float64, batchSize int) bool

	Rate() float64
	SetRate(rate float64)
	Name() string
}

// Config holds the settings shared by every optimizer. Zero values select
// defaults.
type Config struct {
	// Rate is the learning rate (default: DefaultRate).
	Rate float64

	// Rand draws training samples and batches (default: seeded from the clock).
	Rand *rand.Rand

	// Logger receives session logs (default: discarded).
	Logger *slog.Logger

	// Callbacks are notified after every step of Train and BatchTrain.
	Callbacks []Callback
}

// Gradient returns the raw gradient of a neuron whose inputs were prev
// and whose error gradient is eg: prev[i]*eg for every weight, followed
// by eg for the bias.
func Gradient(prev []float64, eg float64) []float64 {
	g := make([]float64, len(prev)+1)
	floats.ScaleTo(g[:len(prev)], eg, prev)
	g[len(prev)] = eg
	return g
}

// rule is the update rule of one optimizer variant.
type rule interface {
	Name() string

	// prepare allocates the rule's state for n.
	prepare(n *net.Network)

	// clean drops the rule's state.
	clean()

	// beginStep runs once before the neuron updates of each applied step.
	beginStep()

	// delta writes the update for gradient g of neuron (li, ni) into d.
	delta(li, ni int, rate float64, g, d []float64)
}

// table holds per-neuron state indexed by [layer][neuron]. Each entry has
// one slot per weight and a trailing bias slot. Layer 0 has no entries.
type table [][][]float64

func newTable(n *net.Network) table {
	t := make(table, len(n.Layers()))
	n.ForEachNeuron(func(li, ni int, nr *layer.Neuron) {
		if t[li] == nil {
			t[li] = make([][]float64, n.Layers()[li].Size())
		}
		t[li][ni] = make([]float64, nr.Size()+1)
	})
	return t
}

func (t table) zero() {
	for _, l := range t {
		for _, s := range l {
			clear(s)
		}
	}
}

// adjustable is implemented by layers that hold trainable neurons.
type adjustable interface {
	Adjust(layerIdx int, gradients [][]float64, a layer.NeuronAdjuster)
}

// trainer is the backpropagation driver shared by all variants.
type trainer struct {
	rule      rule
	rate      float64
	rng       *rand.Rand
	logger    *slog.Logger
	callbacks []Callback

	prepared   bool
	accumulate bool
	acc        table

	// Scratch buffer for one neuron's update.
	buf []float64
}

func (t *trainer) init(cfg Config, r rule) {
	t.rule = r
	t.rate = cfg.Rate
	if t.rate == 0 {
		t.rate = DefaultRate
	}
	t.rng = cfg.Rand
	if t.rng == nil {
		t.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	t.logger = cfg.Logger
	if t.logger == nil {
		t.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t.callbacks = cfg.Callbacks
}

// Rate returns the learning rate.
func (t *trainer) Rate() float64 { return t.rate }

// SetRate changes the learning rate, including mid-session.
func (t *trainer) SetRate(rate float64) { t.rate = rate }

// PrepareNetwork allocates the rule state and batch accumulators for n.
// Any state from an earlier session is discarded.
func (t *trainer) PrepareNetwork(n *net.Network) {
	t.rule.prepare(n)
	t.acc = newTable(n)
	t.accumulate = false
	t.prepared = true
}

// CleanNetwork drops all state allocated by PrepareNetwork.
func (t *trainer) CleanNetwork(n *net.Network) {
	t.rule.clean()
	t.acc = nil
	t.accumulate = false
	t.prepared = false
}

// AdjustNeuron applies the rule's update for gradient to nr.
func (t *trainer) AdjustNeuron(layerIdx, neuronIdx int, nr *layer.Neuron, gradient []float64) {
	t.mustBePrepared()
	if len(gradient) != nr.Size()+1 {
		panic(fmt.Sprintf("opt: gradient has %d values for a neuron with %d weights", len(gradient), nr.Size()))
	}
	if cap(t.buf) < len(gradient) {
		t.buf = make([]float64, len(gradient))
	}
	d := t.buf[:len(gradient)]
	t.rule.delta(layerIdx, neuronIdx, t.rate, gradient, d)
	nr.Adjust(d[:nr.Size()], d[nr.Size()])
}

// LearnSample performs one online step on s.
func (t *trainer) LearnSample(n *net.Network, s net.Sample) {
	t.mustBePrepared()
	t.rule.beginStep()
	t.learn(n, s)
}

// LearnBatch sums the gradients of every sample in batch, then applies
// each neuron's sum once.
func (t *trainer) LearnBatch(n *net.Network, batch []net.Sample) {
	t.mustBePrepared()
	if len(batch) == 0 {
		panic("opt: empty batch")
	}

	t.acc.zero()
	t.accumulate = true
	for _, s := range batch {
		t.learn(n, s)
	}
	t.accumulate = false

	t.rule.beginStep()
	n.ForEachNeuron(func(li, ni int, nr *layer.Neuron) {
		t.AdjustNeuron(li, ni, nr, t.acc[li][ni])
	})
}

func (t *trainer) learn(n *net.Network, s net.Sample) {
	n.Activate(s.X)
	err := n.OutputError(s.Y)
	for idx := len(n.Layers()) - 1; idx > 0; idx-- {
		err = t.updateLayer(n, idx, err)
	}
}

// updateLayer backpropagates err through layer idx and returns the error
// for layer idx-1. The returned error uses the weights as they were before
// this layer's update.
func (t *trainer) updateLayer(n *net.Network, idx int, err []float64) []float64 {
	l := n.Layers()[idx]
	eg := l.ErrorGradient(err)
	back := l.BackpropagateError(eg)

	prev := n.Layers()[idx-1].State()
	grads := make([][]float64, len(eg))
	for j := range eg {
		grads[j] = Gradient(prev, eg[j])
	}

	if t.accumulate {
		for j, g := range grads {
			floats.Add(t.acc[idx][j], g)
		}
		return back
	}

	a, ok := l.(adjustable)
	if !ok {
		panic(fmt.Sprintf("opt: layer %d (%s) has no trainable neurons", idx, l.Kind()))
	}
	a.Adjust(idx, grads, t)
	return back
}

func (t *trainer) mustBePrepared() {
	if !t.prepared {
		panic("opt: learning outside a training session; call PrepareNetwork first")
	}
}

var (
	_ layer.NeuronAdjuster = (*trainer)(nil)

	_ Optimizer = (*SGD)(nil)
	_ Optimizer = (*Momentum)(nil)
	_ Optimizer = (*AdaGrad)(nil)
	_ Optimizer = (*RMSProp)(nil)
	_ Optimizer = (*Adam)(nil)

	_ sessionLogger = (*ModelCheckpoint)(nil)
	_ sessionLogger = (*CSVLogger)(nil)
)
