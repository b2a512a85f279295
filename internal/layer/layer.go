// Package layer provides neurons and the fully connected layers built from them.
package layer

import (
	"fmt"
	"strings"

	"github.com/FlavioCFOliveira/ffnet/internal/activations"
	"github.com/FlavioCFOliveira/ffnet/internal/initializer"
	"gonum.org/v1/gonum/floats"
)

// Layer kinds as written into persisted networks.
const (
	InputKind          = "InputLayer"
	FullyConnectedKind = "FullyConnectedLayer"
)

// Layer is a stage of a feedforward network.
//
// The set of implementations is closed: *Input and *FullyConnected.
type Layer interface {
	// Kind names the layer type.
	Kind() string

	// Size is the number of values the layer produces.
	Size() int

	// InputSize is the number of values the layer consumes.
	InputSize() int

	// Neurons returns the layer's neurons in index order.
	Neurons() []*Neuron

	// Activate computes the layer output, caching per-neuron state.
	// The result becomes the layer state.
	Activate(x []float64) []float64

	// Output computes the layer output without caching.
	Output(x []float64) []float64

	// State returns the vector produced by the last Activate call.
	State() []float64

	// ErrorGradient maps the error on each output to the neuron's local
	// error gradient.
	ErrorGradient(err []float64) []float64

	// BackpropagateError projects error gradients through the transpose
	// of the weight matrix, producing one value per layer input.
	BackpropagateError(errorGradient []float64) []float64

	// Init seeds weights and biases.
	Init(weightInit, biasInit initializer.Initializer)
}

// NeuronAdjuster turns a raw neuron gradient into a weight update.
// Optimizers implement it; layers hold no update-rule logic.
type NeuronAdjuster interface {
	AdjustNeuron(layerIdx, neuronIdx int, n *Neuron, gradient []float64)
}

// Input is the pass-through first stage of a network. It has no neurons;
// its size is the feature count.
type Input struct {
	size  int
	state []float64
}

// NewInput creates an input stage for size features.
func NewInput(size int) *Input {
	return &Input{size: size}
}

// Kind returns InputKind.
func (l *Input) Kind() string { return InputKind }

// Size returns the feature count.
func (l *Input) Size() int { return l.size }

// InputSize is always 0.
func (l *Input) InputSize() int { return 0 }

// Neurons returns nil.
func (l *Input) Neurons() []*Neuron { return nil }

// Activate stores a copy of x as the layer state.
func (l *Input) Activate(x []float64) []float64 {
	l.check(x)
	if cap(l.state) < len(x) {
		l.state = make([]float64, len(x))
	}
	l.state = l.state[:len(x)]
	copy(l.state, x)
	return l.state
}

// Output returns x.
func (l *Input) Output(x []float64) []float64 {
	l.check(x)
	return x
}

func (l *Input) check(x []float64) {
	if len(x) != l.size {
		panic(fmt.Sprintf("layer: input layer expects %d features, got %d", l.size, len(x)))
	}
}

// State returns the last activated input.
func (l *Input) State() []float64 { return l.state }

// ErrorGradient panics: the input stage has nothing to train.
func (l *Input) ErrorGradient(err []float64) []float64 {
	panic("layer: input layer has no trainable neurons")
}

// BackpropagateError returns an empty vector.
func (l *Input) BackpropagateError(errorGradient []float64) []float64 {
	return []float64{}
}

// Init is a no-op.
func (l *Input) Init(weightInit, biasInit initializer.Initializer) {}

func (l *Input) String() string {
	return fmt.Sprintf("%s(%d)", InputKind, l.size)
}

// FullyConnected connects every input to every neuron.
type FullyConnected struct {
	inputSize int
	neurons   []*Neuron
	act       activations.Activation

	state []float64
}

// NewFullyConnected creates a layer of size neurons, each with inputSize
// zero weights.
func NewFullyConnected(inputSize, size int, act activations.Activation) *FullyConnected {
	l := &FullyConnected{
		inputSize: inputSize,
		neurons:   make([]*Neuron, size),
		act:       act,
		state:     make([]float64, size),
	}
	for i := range l.neurons {
		l.neurons[i] = NewNeuron(inputSize, &l.act)
	}
	return l
}

// Kind returns FullyConnectedKind.
func (l *FullyConnected) Kind() string { return FullyConnectedKind }

// Size returns the neuron count.
func (l *FullyConnected) Size() int { return len(l.neurons) }

// InputSize returns the number of inputs of each neuron.
func (l *FullyConnected) InputSize() int { return l.inputSize }

// Neurons returns the neuron slice directly.
func (l *FullyConnected) Neurons() []*Neuron { return l.neurons }

// Activation returns the activation shared by the layer's neurons.
func (l *FullyConnected) Activation() activations.Activation { return l.act }

// Activate feeds x to every neuron and stores the outputs as state.
func (l *FullyConnected) Activate(x []float64) []float64 {
	for i, n := range l.neurons {
		l.state[i] = n.Activate(x)
	}
	return l.state
}

// Output computes neuron outputs without caching.
func (l *FullyConnected) Output(x []float64) []float64 {
	y := make([]float64, len(l.neurons))
	for i, n := range l.neurons {
		y[i] = n.Output(x)
	}
	return y
}

// State returns the outputs of the last Activate call.
func (l *FullyConnected) State() []float64 { return l.state }

// ErrorGradient computes neurons[i].ErrorGradient(err[i]) for every neuron.
func (l *FullyConnected) ErrorGradient(err []float64) []float64 {
	if len(err) != len(l.neurons) {
		panic(fmt.Sprintf("layer: error has %d values for %d neurons", len(err), len(l.neurons)))
	}
	eg := make([]float64, len(l.neurons))
	for i, n := range l.neurons {
		eg[i] = n.ErrorGradient(err[i])
	}
	return eg
}

// BackpropagateError computes back[k] = sum_j eg[j] * neurons[j].w[k].
func (l *FullyConnected) BackpropagateError(errorGradient []float64) []float64 {
	if len(errorGradient) != len(l.neurons) {
		panic(fmt.Sprintf("layer: error gradient has %d values for %d neurons", len(errorGradient), len(l.neurons)))
	}
	back := make([]float64, l.inputSize)
	for j, n := range l.neurons {
		floats.AddScaled(back, errorGradient[j], n.weights)
	}
	return back
}

// Adjust hands each neuron and its gradient to a.
func (l *FullyConnected) Adjust(layerIdx int, gradients [][]float64, a NeuronAdjuster) {
	if len(gradients) != len(l.neurons) {
		panic(fmt.Sprintf("layer: %d gradients for %d neurons", len(gradients), len(l.neurons)))
	}
	for j, n := range l.neurons {
		a.AdjustNeuron(layerIdx, j, n, gradients[j])
	}
}

// Init seeds every neuron.
func (l *FullyConnected) Init(weightInit, biasInit initializer.Initializer) {
	for _, n := range l.neurons {
		n.Init(weightInit, biasInit)
	}
}

func (l *FullyConnected) String() string {
	parts := make([]string, len(l.neurons))
	for i, n := range l.neurons {
		parts[i] = n.String()
	}
	return fmt.Sprintf("%s(%s)", FullyConnectedKind, strings.Join(parts, ", "))
}
