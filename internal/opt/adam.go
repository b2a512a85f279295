package opt

import (
	"math"

	"github.com/FlavioCFOliveira/ffnet/internal/net"
)

// AdamConfig configures an Adam optimizer.
type AdamConfig struct {
	Config

	// Betas are the decay rates of the first and second moment estimates
	// (default: [0.9, 0.999]).
	Betas [2]float64

	// Eps keeps the denominator away from zero (default: DefaultEpsilon).
	Eps float64
}

// Adam keeps bias-corrected first and second moment estimates:
//
//	m[i] = b1*m[i] + (1-b1)*g[i]
//	v[i] = b2*v[i] + (1-b2)*g[i]^2
//	w[i] += (m[i]/bias1)*rate/(sqrt(v[i]/bias2)+eps)
//
// with bias1 = 1-b1^t and bias2 = 1-b2^t. The step counter t starts at 1
// in every session and advances once per applied step: once per sample in
// LearnSample and Train, once per batch (not per sample in it) in
// LearnBatch and BatchTrain, since a batch applies one summed gradient.
type Adam struct {
	trainer
	beta1, beta2 float64
	eps          float64

	m, v         table
	t            int
	bias1, bias2 float64
}

// NewAdam creates an Adam optimizer.
func NewAdam(cfg AdamConfig) *Adam {
	if cfg.Betas[0] == 0 {
		cfg.Betas[0] = 0.9
	}
	if cfg.Betas[1] == 0 {
		cfg.Betas[1] = 0.999
	}
	if cfg.Eps == 0 {
		cfg.Eps = DefaultEpsilon
	}
	o := &Adam{beta1: cfg.Betas[0], beta2: cfg.Betas[1], eps: cfg.Eps}
	o.init(cfg.Config, o)
	return o
}

// Name returns "adam".
func (o *Adam) Name() string { return "adam" }

// Step returns the step counter of the current session.
func (o *Adam) Step() int { return o.t }

func (o *Adam) prepare(n *net.Network) {
	o.m = newTable(n)
	o.v = newTable(n)
	o.t = 1
	o.bias1 = 1 - o.beta1
	o.bias2 = 1 - o.beta2
}

func (o *Adam) clean() {
	o.m = nil
	o.v = nil
}

func (o *Adam) beginStep() {
	o.bias1 = 1 - math.Pow(o.beta1, float64(o.t))
	o.bias2 = 1 - math.Pow(o.beta2, float64(o.t))
	o.t++
}

func (o *Adam) delta(li, ni int, rate float64, g, d []float64) {
	m, v := o.m[li][ni], o.v[li][ni]
	for i, gi := range g {
		m[i] = o.beta1*m[i] + (1-o.beta1)*gi
		v[i] = o.beta2*v[i] + (1-o.beta2)*gi*gi
		d[i] = (m[i] / o.bias1) * rate / (math.Sqrt(v[i]/o.bias2) + o.eps)
	}
}
