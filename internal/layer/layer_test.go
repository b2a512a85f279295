// Package layer provides comprehensive unit tests for neurons and layers.
package layer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/FlavioCFOliveira/ffnet/internal/activations"
	"github.com/FlavioCFOliveira/ffnet/internal/initializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures AdjustNeuron calls.
type recorder struct {
	calls [][2]int
	grads [][]float64
}

func (r *recorder) AdjustNeuron(layerIdx, neuronIdx int, n *Neuron, g []float64) {
	r.calls = append(r.calls, [2]int{layerIdx, neuronIdx})
	r.grads = append(r.grads, g)
}

func newIdentityLayer(weights [][]float64, biases []float64) *FullyConnected {
	l := NewFullyConnected(len(weights[0]), len(weights), activations.Identity)
	for i, n := range l.Neurons() {
		copy(n.Weights(), weights[i])
		n.SetBias(biases[i])
	}
	return l
}

// TestNeuronConstruction tests zero initialization and weight count.
func TestNeuronConstruction(t *testing.T) {
	n := NewNeuron(8, &activations.Sigmoid)
	assert.Equal(t, 8, n.Size())
	assert.Equal(t, make([]float64, 8), n.Weights())
	assert.Equal(t, 0.0, n.Bias())
	assert.Equal(t, activations.SigmoidID, n.Activation().ID)
}

// TestNeuronInit tests weight and bias initializers.
func TestNeuronInit(t *testing.T) {
	n := NewNeuron(1000, &activations.Identity)
	n.Init(initializer.Uniform(rand.New(rand.NewSource(1)), 3, 5), initializer.Constant(7))
	for _, w := range n.Weights() {
		assert.GreaterOrEqual(t, w, 3.0)
		assert.LessOrEqual(t, w, 5.0)
	}
	assert.Equal(t, 7.0, n.Bias())

	// Bias falls back to the weight initializer.
	m := NewNeuron(2, &activations.Identity)
	m.Init(initializer.Constant(87), nil)
	assert.Equal(t, []float64{87, 87}, m.Weights())
	assert.Equal(t, 87.0, m.Bias())
}

// TestNeuronOutput tests the identity neuron weighted sum.
func TestNeuronOutput(t *testing.T) {
	n := NewNeuron(3, &activations.Identity)
	copy(n.Weights(), []float64{1, 2, 3})
	n.SetBias(5)
	assert.Equal(t, 43.0, n.Output([]float64{5, 6, 7}))

	copy(n.Weights(), []float64{0, 3, -1})
	n.SetBias(7)
	assert.Equal(t, 8.0, n.Output([]float64{1, 1, 2}))
}

// TestNeuronOutputMatchesWeightedSum checks bias + sum(w*x) on random data.
func TestNeuronOutputMatchesWeightedSum(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for trial := 0; trial < 20; trial++ {
		size := 1 + r.Intn(10)
		n := NewNeuron(size, &activations.Identity)
		n.Init(initializer.Uniform(r, -2, 2), nil)

		x := make([]float64, size)
		want := n.Bias()
		for i := range x {
			x[i] = r.Float64()*4 - 2
			want += n.Weights()[i] * x[i]
		}
		assert.InDelta(t, want, n.Output(x), 1e-12)
		assert.InDelta(t, want, n.Activate(x), 1e-12)
	}
}

// TestNeuronSigmoidOutput tests that the sum passes through the activation.
func TestNeuronSigmoidOutput(t *testing.T) {
	n := NewNeuron(1, &activations.Sigmoid)
	n.Weights()[0] = 1
	assert.Equal(t, 0.5, n.Output([]float64{0}))
	assert.InDelta(t, activations.Sigmoid.Forward(5), n.Output([]float64{5}), 1e-12)
	assert.InDelta(t, activations.Sigmoid.Forward(-2), n.Output([]float64{-2}), 1e-12)
}

// TestNeuronActivateCaches tests that Activate caches and Output does not.
func TestNeuronActivateCaches(t *testing.T) {
	n := NewNeuron(1, &activations.Sigmoid)
	n.Weights()[0] = 2

	y := n.Activate([]float64{1})
	assert.Equal(t, y, n.Value())

	n.Output([]float64{-3})
	assert.Equal(t, y, n.Value(), "Output must not touch the cache")

	// sigmoid'(2) = y(1-y)
	assert.InDelta(t, 0.5*y*(1-y), n.ErrorGradient(0.5), 1e-12)
}

// TestNeuronAdjust tests weight and bias deltas.
func TestNeuronAdjust(t *testing.T) {
	n := NewNeuron(2, &activations.Identity)
	n.Adjust([]float64{0.5, -1}, 2)
	n.Adjust([]float64{0.5, 0}, -0.5)
	assert.Equal(t, []float64{1, -1}, n.Weights())
	assert.Equal(t, 1.5, n.Bias())
}

// TestNeuronLengthMismatchPanics tests fail-fast contract checks.
func TestNeuronLengthMismatchPanics(t *testing.T) {
	n := NewNeuron(2, &activations.Identity)
	assert.Panics(t, func() { n.Activate([]float64{1}) })
	assert.Panics(t, func() { n.Output([]float64{1, 2, 3}) })
	assert.Panics(t, func() { n.Adjust([]float64{1}, 0) })
	assert.Panics(t, func() { NewNeuron(2, nil) })
}

// TestNeuronString tests the debug representation.
func TestNeuronString(t *testing.T) {
	n := NewNeuron(2, &activations.Identity)
	copy(n.Weights(), []float64{1, -0.25})
	n.SetBias(0.5)
	assert.Equal(t, "Neuron[1.000,-0.250 ; 0.500]", n.String())
}

// TestInputLayer tests the pass-through stage.
func TestInputLayer(t *testing.T) {
	in := NewInput(3)
	assert.Equal(t, InputKind, in.Kind())
	assert.Equal(t, 3, in.Size())
	assert.Equal(t, 0, in.InputSize())
	assert.Empty(t, in.Neurons())

	x := []float64{1, 2, 3}
	state := in.Activate(x)
	assert.Equal(t, x, state)
	x[0] = 99
	assert.Equal(t, 1.0, in.State()[0], "state must be a copy")

	assert.Equal(t, x, in.Output(x))
	assert.Empty(t, in.BackpropagateError([]float64{1}))
	assert.Panics(t, func() { in.ErrorGradient([]float64{1}) })
	assert.Panics(t, func() { in.Activate([]float64{1}) })
	assert.Equal(t, "InputLayer(3)", in.String())
}

// TestFullyConnectedActivate tests forward pass and state.
func TestFullyConnectedActivate(t *testing.T) {
	l := NewFullyConnected(2, 2, activations.Tanh)
	copy(l.Neurons()[0].Weights(), []float64{1, 0})
	copy(l.Neurons()[1].Weights(), []float64{0, 1})

	out := l.Activate([]float64{1, 2})
	require.Len(t, out, 2)
	assert.InDelta(t, math.Tanh(1), out[0], 1e-12)
	assert.InDelta(t, math.Tanh(2), out[1], 1e-12)
	assert.Equal(t, out, l.State())

	ro := l.Output([]float64{2, 1})
	assert.InDelta(t, math.Tanh(2), ro[0], 1e-12)
	assert.InDelta(t, math.Tanh(1), l.State()[0], 1e-12, "Output must not change state")
}

// TestFullyConnectedSharesInputSize tests the layer invariant.
func TestFullyConnectedSharesInputSize(t *testing.T) {
	l := NewFullyConnected(4, 3, activations.Sigmoid)
	assert.Equal(t, FullyConnectedKind, l.Kind())
	assert.Equal(t, 3, l.Size())
	assert.Equal(t, 4, l.InputSize())
	for _, n := range l.Neurons() {
		assert.Equal(t, 4, n.Size())
		assert.Equal(t, activations.SigmoidID, n.Activation().ID)
	}
}

// TestFullyConnectedErrorGradient tests elementwise error gradients.
func TestFullyConnectedErrorGradient(t *testing.T) {
	l := newIdentityLayer([][]float64{{1, 1}, {2, -1}}, []float64{0, 0})
	l.Activate([]float64{1, 1})
	assert.Equal(t, []float64{0.5, -2}, l.ErrorGradient([]float64{0.5, -2}))
	assert.Panics(t, func() { l.ErrorGradient([]float64{1}) })
}

// TestFullyConnectedBackpropagateError tests the transpose projection.
func TestFullyConnectedBackpropagateError(t *testing.T) {
	// W = [[1 2 3]
	//      [4 5 6]]
	l := newIdentityLayer([][]float64{{1, 2, 3}, {4, 5, 6}}, []float64{0, 0})

	back := l.BackpropagateError([]float64{1, -1})
	assert.Equal(t, []float64{1 - 4, 2 - 5, 3 - 6}, back)

	back = l.BackpropagateError([]float64{0.5, 2})
	assert.InDeltaSlice(t, []float64{0.5 + 8, 1 + 10, 1.5 + 12}, back, 1e-12)

	assert.Panics(t, func() { l.BackpropagateError([]float64{1}) })
}

// TestFullyConnectedAdjustDelegates tests that Adjust defers to the adjuster.
func TestFullyConnectedAdjustDelegates(t *testing.T) {
	l := NewFullyConnected(1, 3, activations.Identity)
	rec := &recorder{}
	grads := [][]float64{{1, 2}, {3, 4}, {5, 6}}

	l.Adjust(2, grads, rec)

	assert.Equal(t, [][2]int{{2, 0}, {2, 1}, {2, 2}}, rec.calls)
	assert.Equal(t, grads, rec.grads)
	for _, n := range l.Neurons() {
		assert.Equal(t, []float64{0}, n.Weights(), "layer must not apply updates itself")
	}
	assert.Panics(t, func() { l.Adjust(1, grads[:1], rec) })
}

// TestFullyConnectedInit tests seeding every neuron.
func TestFullyConnectedInit(t *testing.T) {
	l := NewFullyConnected(2, 3, activations.Identity)
	l.Init(initializer.Constant(0.25), initializer.Constant(-1))
	for _, n := range l.Neurons() {
		assert.Equal(t, []float64{0.25, 0.25}, n.Weights())
		assert.Equal(t, -1.0, n.Bias())
	}
	assert.Contains(t, l.String(), "FullyConnectedLayer(Neuron[0.250,0.250 ; -1.000]")
}
