package layer

import (
	"fmt"
	"strings"

	"github.com/FlavioCFOliveira/ffnet/internal/activations"
	"github.com/FlavioCFOliveira/ffnet/internal/initializer"
	"gonum.org/v1/gonum/floats"
)

// Neuron is a weighted-sum unit followed by an activation function.
//
// The weight vector length is fixed at construction. Activate caches the
// weighted sum and the activation value; ErrorGradient reads that cache, so
// a forward pass must immediately precede the backward pass.
type Neuron struct {
	weights []float64
	bias    float64
	act     *activations.Activation

	// Cache of the last Activate call.
	net   float64
	value float64
}

// NewNeuron creates a neuron with inputSize zero weights and a zero bias.
func NewNeuron(inputSize int, act *activations.Activation) *Neuron {
	if act == nil {
		panic("layer: neuron requires an activation")
	}
	return &Neuron{
		weights: make([]float64, inputSize),
		act:     act,
	}
}

// Init fills weights from weightInit and the bias from biasInit.
// A nil biasInit reuses weightInit.
func (n *Neuron) Init(weightInit, biasInit initializer.Initializer) {
	if biasInit == nil {
		biasInit = weightInit
	}
	for i := range n.weights {
		n.weights[i] = weightInit()
	}
	n.bias = biasInit()
}

// Activate computes the neuron output and caches net and activation value.
func (n *Neuron) Activate(x []float64) float64 {
	n.net = n.sum(x)
	n.value = n.act.Forward(n.net)
	return n.value
}

// Output computes the neuron output without touching the cache.
func (n *Neuron) Output(x []float64) float64 {
	return n.act.Forward(n.sum(x))
}

func (n *Neuron) sum(x []float64) float64 {
	if len(x) != len(n.weights) {
		panic(fmt.Sprintf("layer: neuron expects %d inputs, got %d", len(n.weights), len(x)))
	}
	return n.bias + floats.Dot(n.weights, x)
}

// ErrorGradient scales the error e by the activation slope at the cached
// operating point.
func (n *Neuron) ErrorGradient(e float64) float64 {
	return e * n.act.Backward(n.net, n.value)
}

// Adjust adds dw to the weights and db to the bias.
func (n *Neuron) Adjust(dw []float64, db float64) {
	if len(dw) != len(n.weights) {
		panic(fmt.Sprintf("layer: neuron has %d weights, got %d deltas", len(n.weights), len(dw)))
	}
	floats.Add(n.weights, dw)
	n.bias += db
}

// Size returns the number of inputs (and weights).
func (n *Neuron) Size() int {
	return len(n.weights)
}

// Weights returns the weight slice directly.
func (n *Neuron) Weights() []float64 {
	return n.weights
}

// Bias returns the bias.
func (n *Neuron) Bias() float64 {
	return n.bias
}

// SetBias sets the bias.
func (n *Neuron) SetBias(b float64) {
	n.bias = b
}

// Activation returns the activation descriptor used by this neuron.
func (n *Neuron) Activation() *activations.Activation {
	return n.act
}

// Value returns the activation cached by the last Activate call.
func (n *Neuron) Value() float64 {
	return n.value
}

func (n *Neuron) String() string {
	w := make([]string, len(n.weights))
	for i, v := range n.weights {
		w[i] = fmt.Sprintf("%.3f", v)
	}
	return fmt.Sprintf("Neuron[%s ; %.3f]", strings.Join(w, ","), n.bias)
}
