// Package net provides the feedforward network built from layers.
package net

import (
	"fmt"
	"strings"

	"github.com/FlavioCFOliveira/ffnet/internal/activations"
	"github.com/FlavioCFOliveira/ffnet/internal/initializer"
	"github.com/FlavioCFOliveira/ffnet/internal/layer"
	"github.com/FlavioCFOliveira/ffnet/internal/loss"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidLayout is returned when layers do not form a valid network.
var ErrInvalidLayout = errors.New("invalid network layout")

// Sample is one training example.
type Sample struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Network is an ordered stack of layers. The first layer is always an
// *layer.Input stage and every following layer consumes the previous
// layer's output.
type Network struct {
	layers []layer.Layer
	act    activations.Activation
	loss   loss.Quadratic

	// Reusable buffer for the output error.
	errBuf []float64
}

// LayerActivation overrides the activation of the layer at index Layer
// (counting the input stage as 0).
type LayerActivation struct {
	Layer      int
	Activation activations.Activation
}

// New creates a network from explicit layers. The first layer must be an
// input stage and sizes must chain.
func New(act activations.Activation, layers ...layer.Layer) (*Network, error) {
	if len(layers) < 2 {
		return nil, errors.Wrapf(ErrInvalidLayout, "need at least 2 layers, got %d", len(layers))
	}
	if _, ok := layers[0].(*layer.Input); !ok {
		return nil, errors.Wrapf(ErrInvalidLayout, "first layer is %s, want %s", layers[0].Kind(), layer.InputKind)
	}
	for i, l := range layers {
		if l.Size() <= 0 {
			return nil, errors.Wrapf(ErrInvalidLayout, "layer %d has size %d", i, l.Size())
		}
	}
	for i := 1; i < len(layers); i++ {
		if _, ok := layers[i].(*layer.Input); ok {
			return nil, errors.Wrapf(ErrInvalidLayout, "layer %d is a second input stage", i)
		}
		if layers[i].InputSize() != layers[i-1].Size() {
			return nil, errors.Wrapf(ErrInvalidLayout, "layer %d expects %d inputs, previous layer has %d",
				i, layers[i].InputSize(), layers[i-1].Size())
		}
	}
	return &Network{layers: layers, act: act}, nil
}

// NewMultiLayerPerceptron builds a fully connected network from a layout.
// layout[0] is the number of input features; each further entry adds a
// fully connected layer of that many neurons using act, unless an
// override names that layer.
func NewMultiLayerPerceptron(layout []int, act activations.Activation, overrides ...LayerActivation) (*Network, error) {
	if len(layout) < 2 {
		return nil, errors.Wrapf(ErrInvalidLayout, "layout needs at least 2 entries, got %v", layout)
	}
	for i, size := range layout {
		if size <= 0 {
			return nil, errors.Wrapf(ErrInvalidLayout, "layout entry %d is %d", i, size)
		}
	}

	perLayer := make(map[int]activations.Activation, len(overrides))
	for _, o := range overrides {
		if o.Layer < 1 || o.Layer >= len(layout) {
			return nil, errors.Wrapf(ErrInvalidLayout, "activation override for layer %d out of range", o.Layer)
		}
		perLayer[o.Layer] = o.Activation
	}

	layers := []layer.Layer{layer.NewInput(layout[0])}
	for i := 1; i < len(layout); i++ {
		a, ok := perLayer[i]
		if !ok {
			a = act
		}
		layers = append(layers, layer.NewFullyConnected(layout[i-1], layout[i], a))
	}
	return New(act, layers...)
}

// Init seeds all weights and biases. A nil biasInit reuses weightInit.
func (n *Network) Init(weightInit, biasInit initializer.Initializer) {
	for _, l := range n.layers {
		l.Init(weightInit, biasInit)
	}
}

// Activate runs a forward pass, caching per-neuron state for a following
// backward pass, and returns the output layer state.
func (n *Network) Activate(x []float64) []float64 {
	curr := n.layers[0].Activate(x)
	for i := 1; i < len(n.layers); i++ {
		curr = n.layers[i].Activate(curr)
	}
	return curr
}

// Output computes the network output without touching any cache.
func (n *Network) Output(x []float64) []float64 {
	curr := x
	for _, l := range n.layers {
		curr = l.Output(curr)
	}
	return curr
}

// Feed returns the output of every layer for x, input stage first.
func (n *Network) Feed(x []float64) [][]float64 {
	outs := make([][]float64, len(n.layers))
	curr := x
	for i, l := range n.layers {
		curr = l.Output(curr)
		outs[i] = curr
	}
	return outs
}

// Error returns y - output(x) for the sample.
func (n *Network) Error(s Sample) []float64 {
	return n.loss.Error(n.Output(s.X), s.Y)
}

// Loss returns half the sum of squared errors for the sample.
func (n *Network) Loss(s Sample) float64 {
	return n.loss.Forward(n.Output(s.X), s.Y)
}

// TotalLoss returns the mean Loss over samples, or 0 for no samples.
func (n *Network) TotalLoss(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	losses := make([]float64, len(samples))
	for i, s := range samples {
		losses[i] = n.Loss(s)
	}
	return stat.Mean(losses, nil)
}

// OutputError writes y - state of the output layer into a reusable buffer.
// It must follow Activate for the same sample.
func (n *Network) OutputError(y []float64) []float64 {
	out := n.OutputLayer().State()
	if cap(n.errBuf) < len(out) {
		n.errBuf = make([]float64, len(out))
	}
	n.errBuf = n.errBuf[:len(out)]
	n.loss.ErrorInPlace(out, y, n.errBuf)
	return n.errBuf
}

// ForEachNeuron calls f for every neuron of every non-input layer, in
// layer-then-index order. Optimizers key their state by this order.
func (n *Network) ForEachNeuron(f func(layerIdx, neuronIdx int, nr *layer.Neuron)) {
	for i := 1; i < len(n.layers); i++ {
		neurons := n.layers[i].Neurons()
		for j := 0; j < len(neurons); j++ {
			f(i, j, neurons[j])
		}
	}
}

// Layers returns the network's layers slice.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// InputLayer returns the input stage.
func (n *Network) InputLayer() layer.Layer {
	return n.layers[0]
}

// OutputLayer returns the last layer.
func (n *Network) OutputLayer() layer.Layer {
	return n.layers[len(n.layers)-1]
}

// InputSize returns the number of input features.
func (n *Network) InputSize() int {
	return n.layers[0].Size()
}

// OutputSize returns the number of outputs.
func (n *Network) OutputSize() int {
	return n.OutputLayer().Size()
}

// Activation returns the network-wide activation.
func (n *Network) Activation() activations.Activation {
	return n.act
}

// Clone returns a deep copy of the network's structure and parameters.
// Forward caches are not copied.
func (n *Network) Clone() *Network {
	layers := make([]layer.Layer, len(n.layers))
	for i, l := range n.layers {
		switch l := l.(type) {
		case *layer.Input:
			layers[i] = layer.NewInput(l.Size())
		case *layer.FullyConnected:
			c := layer.NewFullyConnected(l.InputSize(), l.Size(), l.Activation())
			for j, nr := range l.Neurons() {
				copy(c.Neurons()[j].Weights(), nr.Weights())
				c.Neurons()[j].SetBias(nr.Bias())
			}
			layers[i] = c
		}
	}
	return &Network{layers: layers, act: n.act}
}

func (n *Network) String() string {
	parts := make([]string, len(n.layers))
	for i, l := range n.layers {
		parts[i] = fmt.Sprint(l)
	}
	return fmt.Sprintf("Network(%s)", strings.Join(parts, ", "))
}
