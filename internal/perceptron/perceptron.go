// Package perceptron provides a single heaviside neuron trained with the
// classic perceptron learning rule.
package perceptron

import (
	"fmt"
	"math/rand"

	"github.com/FlavioCFOliveira/ffnet/internal/activations"
	"github.com/FlavioCFOliveira/ffnet/internal/initializer"
	"github.com/FlavioCFOliveira/ffnet/internal/layer"
	"github.com/FlavioCFOliveira/ffnet/internal/loss"
	"github.com/FlavioCFOliveira/ffnet/internal/net"
	"gonum.org/v1/gonum/stat"
)

// Perceptron is a binary linear classifier.
type Perceptron struct {
	neuron *layer.Neuron
	loss   loss.Absolute
}

// New creates a perceptron with weights and bias drawn uniformly from
// [-1, 1].
func New(inputSize int, r *rand.Rand) *Perceptron {
	nr := layer.NewNeuron(inputSize, &activations.Heaviside)
	nr.Init(initializer.Uniform(r, -1, 1), nil)
	return &Perceptron{neuron: nr}
}

// Output returns 0 or 1.
func (p *Perceptron) Output(x []float64) float64 {
	return p.neuron.Output(x)
}

// Learn applies w += e*x, b += e for one sample, where e = y - output(x).
func (p *Perceptron) Learn(s net.Sample) {
	checkTarget(s)
	e := s.Y[0] - p.Output(s.X)
	if e == 0 {
		return
	}
	dw := make([]float64, len(s.X))
	for i, x := range s.X {
		dw[i] = e * x
	}
	p.neuron.Adjust(dw, e)
}

// Train sweeps samples in order, at most maxEpoch times, until every
// sample is classified correctly. It reports whether that happened.
func (p *Perceptron) Train(samples []net.Sample, maxEpoch int) bool {
	if len(samples) == 0 {
		panic("perceptron: no training samples")
	}
	for epoch := 0; epoch < maxEpoch; epoch++ {
		for _, s := range samples {
			p.Learn(s)
		}
		if p.TotalLoss(samples) == 0 {
			return true
		}
	}
	return false
}

// TotalLoss returns the mean absolute error over samples, or 0 for none.
func (p *Perceptron) TotalLoss(samples []net.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	errs := make([]float64, len(samples))
	for i, s := range samples {
		checkTarget(s)
		errs[i] = p.loss.Forward([]float64{p.Output(s.X)}, s.Y)
	}
	return stat.Mean(errs, nil)
}

// Neuron returns the underlying neuron.
func (p *Perceptron) Neuron() *layer.Neuron {
	return p.neuron
}

func (p *Perceptron) String() string {
	return fmt.Sprintf("Perceptron(%s)", p.neuron)
}

func checkTarget(s net.Sample) {
	if len(s.Y) != 1 {
		panic(fmt.Sprintf("perceptron: sample needs 1 target, got %d", len(s.Y)))
	}
}
