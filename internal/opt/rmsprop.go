package opt

import (
	"math"

	"github.com/FlavioCFOliveira/ffnet/internal/net"
)

// DefaultDecay is the RMSProp decay used when RMSPropConfig.Decay is zero.
const DefaultDecay = 0.9

// RMSPropConfig configures an RMSProp optimizer.
type RMSPropConfig struct {
	Config

	// Decay weights the running average of squared gradients
	// (default: DefaultDecay).
	Decay float64

	// Eps keeps the denominator away from zero (default: DefaultEpsilon).
	Eps float64
}

// RMSProp scales each step by a running average of squared gradients:
//
//	gw[i] = decay*gw[i] + (1-decay)*g[i]^2
//	w[i] += g[i]*rate/sqrt(gw[i]+eps)
type RMSProp struct {
	trainer
	decay float64
	eps   float64
	gw    table
}

// NewRMSProp creates an RMSProp optimizer.
func NewRMSProp(cfg RMSPropConfig) *RMSProp {
	if cfg.Decay == 0 {
		cfg.Decay = DefaultDecay
	}
	if cfg.Eps == 0 {
		cfg.Eps = DefaultEpsilon
	}
	o := &RMSProp{decay: cfg.Decay, eps: cfg.Eps}
	o.init(cfg.Config, o)
	return o
}

// Name returns "rmsprop".
func (o *RMSProp) Name() string { return "rmsprop" }

func (o *RMSProp) prepare(n *net.Network) { o.gw = newTable(n) }
func (o *RMSProp) clean()                 { o.gw = nil }
func (o *RMSProp) beginStep()             {}

func (o *RMSProp) delta(li, ni int, rate float64, g, d []float64) {
	gw := o.gw[li][ni]
	for i, gi := range g {
		gw[i] = o.decay*gw[i] + (1-o.decay)*gi*gi
		d[i] = gi * rate / math.Sqrt(gw[i]+o.eps)
	}
}
