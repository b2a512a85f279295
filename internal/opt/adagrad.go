package opt

import (
	"math"

	"github.com/FlavioCFOliveira/ffnet/internal/net"
)

// DefaultEpsilon is the denominator floor used when a config leaves it zero.
const DefaultEpsilon = 1e-6

// AdaGradConfig configures an AdaGrad optimizer.
type AdaGradConfig struct {
	Config

	// Eps keeps the denominator away from zero (default: DefaultEpsilon).
	Eps float64
}

// AdaGrad scales each step by the accumulated squared gradients:
//
//	gw[i] += g[i]^2
//	w[i]  += g[i]*rate/sqrt(gw[i]+eps)
type AdaGrad struct {
	trainer
	eps float64
	gw  table
}

// NewAdaGrad creates an AdaGrad optimizer.
func NewAdaGrad(cfg AdaGradConfig) *AdaGrad {
	if cfg.Eps == 0 {
		cfg.Eps = DefaultEpsilon
	}
	o := &AdaGrad{eps: cfg.Eps}
	o.init(cfg.Config, o)
	return o
}

// Name returns "adagrad".
func (o *AdaGrad) Name() string { return "adagrad" }

func (o *AdaGrad) prepare(n *net.Network) { o.gw = newTable(n) }
func (o *AdaGrad) clean()                 { o.gw = nil }
func (o *AdaGrad) beginStep()             {}

func (o *AdaGrad) delta(li, ni int, rate float64, g, d []float64) {
	gw := o.gw[li][ni]
	for i, gi := range g {
		gw[i] += gi * gi
		d[i] = gi * rate / math.Sqrt(gw[i]+o.eps)
	}
}
