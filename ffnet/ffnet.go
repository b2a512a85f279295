// Package ffnet is the public entry point: feedforward networks, their
// persisted form, and the optimizers that train them.
package ffnet

import (
	"math/rand"

	"github.com/FlavioCFOliveira/ffnet/internal/activations"
	"github.com/FlavioCFOliveira/ffnet/internal/initializer"
	"github.com/FlavioCFOliveira/ffnet/internal/net"
	"github.com/FlavioCFOliveira/ffnet/internal/opt"
	"github.com/FlavioCFOliveira/ffnet/internal/perceptron"
)

// Re-export common types and functions for easier access
type (
	Network         = net.Network
	Sample          = net.Sample
	LayerActivation = net.LayerActivation
	Activation      = activations.Activation
	Initializer     = initializer.Initializer
	Optimizer       = opt.Optimizer
	Config          = opt.Config
	Callback        = opt.Callback
	Perceptron      = perceptron.Perceptron
)

// Errors
var (
	ErrInvalidLayout     = net.ErrInvalidLayout
	ErrUnknownActivation = net.ErrUnknownActivation
	ErrMalformedModel    = net.ErrMalformedModel
)

// Network creation
func NewMultiLayerPerceptron(layout []int, act Activation, overrides ...LayerActivation) (*Network, error) {
	return net.NewMultiLayerPerceptron(layout, act, overrides...)
}

// Activations
var (
	Identity  = activations.Identity
	Sigmoid   = activations.Sigmoid
	Heaviside = activations.Heaviside
	ReLU      = activations.ReLU
	Tanh      = activations.Tanh
	Atan      = activations.Atan
	Softsign  = activations.Softsign
)

// LookupActivation finds an activation by its persisted ID.
func LookupActivation(id string) (Activation, bool) {
	return activations.Lookup(activations.ID(id))
}

// Initializers
func Constant(v float64) Initializer {
	return initializer.Constant(v)
}

func Uniform(r *rand.Rand, min, max float64) Initializer {
	return initializer.Uniform(r, min, max)
}

func Normal(r *rand.Rand, mean, sigma float64) Initializer {
	return initializer.Normal(r, mean, sigma)
}

func Xavier(r *rand.Rand, in, out int) Initializer {
	return initializer.Xavier(r, in, out)
}

// Optimizers
func SGD(cfg Config) Optimizer {
	return opt.NewSGD(cfg)
}

func Momentum(cfg Config, momentum float64) Optimizer {
	return opt.NewMomentum(opt.MomentumConfig{Config: cfg, Momentum: momentum})
}

func AdaGrad(cfg Config, eps float64) Optimizer {
	return opt.NewAdaGrad(opt.AdaGradConfig{Config: cfg, Eps: eps})
}

func RMSProp(cfg Config, decay, eps float64) Optimizer {
	return opt.NewRMSProp(opt.RMSPropConfig{Config: cfg, Decay: decay, Eps: eps})
}

func Adam(cfg Config, beta1, beta2, eps float64) Optimizer {
	return opt.NewAdam(opt.AdamConfig{Config: cfg, Betas: [2]float64{beta1, beta2}, Eps: eps})
}

// NewOptimizer creates an optimizer by name ("sgd", "momentum", "adagrad",
// "rmsprop" or "adam") with default hyperparameters.
func NewOptimizer(name string, cfg Config) (Optimizer, bool) {
	switch name {
	case "sgd":
		return SGD(cfg), true
	case "momentum":
		return Momentum(cfg, 0), true
	case "adagrad":
		return AdaGrad(cfg, 0), true
	case "rmsprop":
		return RMSProp(cfg, 0, 0), true
	case "adam":
		return Adam(cfg, 0, 0, 0), true
	}
	return nil, false
}

// Callbacks
func Logger(interval int) opt.Logger {
	return opt.Logger{Interval: interval}
}

func CSVLogger(filename string, append bool) Callback {
	return opt.NewCSVLogger(filename, append)
}

func ModelCheckpoint(filename string) *opt.ModelCheckpoint {
	return opt.NewModelCheckpoint(filename)
}

func SchedulerCallback(scheduler opt.Scheduler) Callback {
	return opt.NewSchedulerCallback(scheduler)
}

// Schedulers
func StepLR(o Optimizer, stepSize int, gamma float64) *opt.StepLR {
	return opt.NewStepLR(o, stepSize, gamma)
}

func ExponentialLR(o Optimizer, gamma float64) *opt.ExponentialLR {
	return opt.NewExponentialLR(o, gamma)
}

func ReduceLROnPlateau(o Optimizer, factor float64, patience int, threshold, minRate float64) *opt.ReduceLROnPlateau {
	return opt.NewReduceLROnPlateau(o, factor, patience, threshold, minRate)
}

// Perceptron
func NewPerceptron(inputSize int, r *rand.Rand) *Perceptron {
	return perceptron.New(inputSize, r)
}

// Datasets
func LoadCSV(filename string, labelCols []int, hasHeader bool) ([]Sample, error) {
	return net.LoadCSV(filename, labelCols, hasHeader)
}

func Normalize(samples []Sample) {
	net.Normalize(samples)
}

func Split(samples []Sample, ratio float64) (train, test []Sample) {
	return net.Split(samples, ratio)
}

// Model Persistence
func Load(filename string) (*Network, error) {
	return net.Load(filename)
}
