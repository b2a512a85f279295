// Package initializer provides weight and bias generators.
//
// Every random initializer draws from the *rand.Rand it is given, so a
// seeded source reproduces a network exactly.
package initializer

import (
	"math"
	"math/rand"
)

// Initializer produces one weight or bias value per call.
type Initializer func() float64

// Constant returns an initializer that always yields v.
func Constant(v float64) Initializer {
	return func() float64 { return v }
}

// Uniform returns values drawn uniformly from [min, max).
func Uniform(r *rand.Rand, min, max float64) Initializer {
	return func() float64 {
		return r.Float64()*(max-min) + min
	}
}

// Normal returns values drawn from N(mean, sigma^2).
func Normal(r *rand.Rand, mean, sigma float64) Initializer {
	return func() float64 {
		return r.NormFloat64()*sigma + mean
	}
}

// Xavier returns the Glorot uniform initializer for a layer with the
// given fan-in and fan-out: values in [-sqrt(6/(in+out)), sqrt(6/(in+out))).
func Xavier(r *rand.Rand, in, out int) Initializer {
	scale := math.Sqrt(6.0 / (float64(in) + float64(out)))
	return Uniform(r, -scale, scale)
}
