package opt

import (
	"github.com/FlavioCFOliveira/ffnet/internal/net"
	"gonum.org/v1/gonum/floats"
)

// SGD is plain stochastic gradient descent: w[i] += rate*g[i].
type SGD struct {
	trainer
}

// NewSGD creates a plain gradient descent optimizer.
func NewSGD(cfg Config) *SGD {
	o := &SGD{}
	o.init(cfg, o)
	return o
}

// Name returns "sgd".
func (o *SGD) Name() string { return "sgd" }

func (o *SGD) prepare(n *net.Network) {}
func (o *SGD) clean()                 {}
func (o *SGD) beginStep()             {}

func (o *SGD) delta(li, ni int, rate float64, g, d []float64) {
	floats.ScaleTo(d, rate, g)
}
