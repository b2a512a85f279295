// Package loss provides the loss functions used to score network outputs.
package loss

import "gonum.org/v1/gonum/floats"

// Loss is a loss function paired with the error signal it induces.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue []float64) float64

	// Error returns the per-output error signal yTrue - yPred.
	// The returned slice is newly allocated.
	Error(yPred, yTrue []float64) []float64
}

// ErrorInPlacer is an optional interface for losses that can write the
// error signal into a caller-owned buffer.
type ErrorInPlacer interface {
	ErrorInPlace(yPred, yTrue, dst []float64)
}

// Quadratic is half the sum of squared errors: sum((y_true - y_pred)^2) / 2.
// Its negative gradient with respect to y_pred is exactly the error signal,
// which is what backpropagation consumes.
type Quadratic struct{}

// Forward computes sum((y_true - y_pred)^2) / 2.
func (Quadratic) Forward(yPred, yTrue []float64) float64 {
	e := Quadratic{}.Error(yPred, yTrue)
	return floats.Dot(e, e) / 2
}

// Error computes y_true - y_pred.
func (Quadratic) Error(yPred, yTrue []float64) []float64 {
	checkLen("Quadratic", yPred, yTrue)
	return floats.SubTo(make([]float64, len(yPred)), yTrue, yPred)
}

// ErrorInPlace writes y_true - y_pred into dst.
func (Quadratic) ErrorInPlace(yPred, yTrue, dst []float64) {
	checkLen("Quadratic", yPred, yTrue)
	if len(dst) != len(yPred) {
		panic("loss: Quadratic: error buffer has wrong length")
	}
	floats.SubTo(dst, yTrue, yPred)
}

// Absolute is the sum of absolute errors: sum(|y_true - y_pred|).
type Absolute struct{}

// Forward computes sum(|y_true - y_pred|).
func (Absolute) Forward(yPred, yTrue []float64) float64 {
	checkLen("Absolute", yPred, yTrue)
	return floats.Distance(yPred, yTrue, 1)
}

// Error computes y_true - y_pred.
func (Absolute) Error(yPred, yTrue []float64) []float64 {
	checkLen("Absolute", yPred, yTrue)
	return floats.SubTo(make([]float64, len(yPred)), yTrue, yPred)
}

func checkLen(name string, yPred, yTrue []float64) {
	if len(yPred) != len(yTrue) {
		panic("loss: " + name + ": prediction and target must have same length")
	}
}
