package opt

import (
	"github.com/FlavioCFOliveira/ffnet/internal/net"
	"gonum.org/v1/gonum/floats"
)

// DefaultMomentum is the momentum used when MomentumConfig.Momentum is zero.
const DefaultMomentum = 0.5

// MomentumConfig configures a Momentum optimizer.
type MomentumConfig struct {
	Config

	// Momentum is the fraction of the previous update carried into the
	// next one (default: DefaultMomentum).
	Momentum float64
}

// Momentum is gradient descent with momentum:
//
//	dw[i] = rate*g[i] + mu*dw[i]
//	w[i] += dw[i]
type Momentum struct {
	trainer
	mu float64
	dw table
}

// NewMomentum creates a momentum optimizer.
func NewMomentum(cfg MomentumConfig) *Momentum {
	if cfg.Momentum == 0 {
		cfg.Momentum = DefaultMomentum
	}
	o := &Momentum{mu: cfg.Momentum}
	o.init(cfg.Config, o)
	return o
}

// Name returns "momentum".
func (o *Momentum) Name() string { return "momentum" }

// Momentum returns the momentum coefficient.
func (o *Momentum) Momentum() float64 { return o.mu }

func (o *Momentum) prepare(n *net.Network) { o.dw = newTable(n) }
func (o *Momentum) clean()                 { o.dw = nil }
func (o *Momentum) beginStep()             {}

func (o *Momentum) delta(li, ni int, rate float64, g, d []float64) {
	dw := o.dw[li][ni]
	floats.Scale(o.mu, dw)
	floats.AddScaled(dw, rate, g)
	copy(d, dw)
}
