// Package activations provides the activation function catalog used by neurons.
//
// An Activation is a plain descriptor value: a forward map, its derivative
// and the identifier written into persisted networks.
package activations

import "math"

// ID identifies an activation function in persisted networks and logs.
type ID string

// Known activation identifiers.
const (
	IdentityID  ID = "identity"
	SigmoidID   ID = "sigmoid"
	HeavisideID ID = "heaviside"
	ReLUID      ID = "relu"
	TanhID      ID = "tanh"
	AtanID      ID = "atan"
	SoftsignID  ID = "softsign"
)

// Activation is an activation function with derivative.
type Activation struct {
	ID ID

	// Forward computes f(net).
	Forward func(net float64) float64

	// Backward computes f'(net). The activation value f(net) is passed
	// alongside so functions like sigmoid and tanh avoid recomputing it.
	Backward func(net, value float64) float64
}

// String returns the activation identifier.
func (a Activation) String() string {
	return string(a.ID)
}

// Identity passes the weighted sum through unchanged.
var Identity = Activation{
	ID:       IdentityID,
	Forward:  func(x float64) float64 { return x },
	Backward: func(_, _ float64) float64 { return 1 },
}

// Sigmoid is the logistic function 1 / (1 + e^-x).
var Sigmoid = Activation{
	ID:      SigmoidID,
	Forward: sigmoid,
	// y * (1 - y)
	Backward: func(_, y float64) float64 { return y * (1 - y) },
}

// Heaviside is the unit step. Its derivative is zero everywhere, so it is
// only useful with the perceptron learning rule.
var Heaviside = Activation{
	ID: HeavisideID,
	Forward: func(x float64) float64 {
		if x < 0 {
			return 0
		}
		return 1
	},
	Backward: func(_, _ float64) float64 { return 0 },
}

// ReLU is max(0, x).
var ReLU = Activation{
	ID: ReLUID,
	Forward: func(x float64) float64 {
		if x > 0 {
			return x
		}
		return 0
	},
	Backward: func(x, _ float64) float64 {
		if x > 0 {
			return 1
		}
		return 0
	},
}

// Tanh is the hyperbolic tangent.
var Tanh = Activation{
	ID:       TanhID,
	Forward:  math.Tanh,
	Backward: func(_, y float64) float64 { return 1 - y*y },
}

// Atan is the arc tangent.
var Atan = Activation{
	ID:       AtanID,
	Forward:  math.Atan,
	Backward: func(x, _ float64) float64 { return 1 / (1 + x*x) },
}

// Softsign is x / (1 + |x|).
var Softsign = Activation{
	ID:      SoftsignID,
	Forward: func(x float64) float64 { return x / (1 + math.Abs(x)) },
	Backward: func(x, _ float64) float64 {
		d := 1 + math.Abs(x)
		return 1 / (d * d)
	},
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

var catalog = map[ID]Activation{
	IdentityID:  Identity,
	SigmoidID:   Sigmoid,
	HeavisideID: Heaviside,
	ReLUID:      ReLU,
	TanhID:      Tanh,
	AtanID:      Atan,
	SoftsignID:  Softsign,
}

// Lookup returns the catalog activation registered under id.
func Lookup(id ID) (Activation, bool) {
	a, ok := catalog[id]
	return a, ok
}

// Softmax normalizes x into a probability distribution.
// The input is left untouched; a new slice is returned.
func Softmax(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}

	// Find max for numerical stability
	maxVal := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > maxVal {
			maxVal = x[i]
		}
	}

	out := make([]float64, len(x))
	sum := 0.0
	for i := range x {
		out[i] = math.Exp(x[i] - maxVal)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
