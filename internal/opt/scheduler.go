package opt

import "math"

// RateSetter is anything with an adjustable learning rate. Every
// Optimizer is one.
type RateSetter interface {
	Rate() float64
	SetRate(rate float64)
}

// Scheduler defines the interface for learning rate schedulers.
type Scheduler interface {
	Step()
	StepWithLoss(loss float64)
	Rate() float64
}

// BaseScheduler provides default implementations for Scheduler.
type BaseScheduler struct{}

func (s BaseScheduler) Step()                     {}
func (s BaseScheduler) StepWithLoss(loss float64) {}

// StepLR decays the learning rate by gamma every stepSize epochs.
type StepLR struct {
	BaseScheduler
	optimizer RateSetter
	stepSize  int
	gamma     float64
	lastEpoch int
}

func NewStepLR(optimizer RateSetter, stepSize int, gamma float64) *StepLR {
	return &StepLR{
		optimizer: optimizer,
		stepSize:  stepSize,
		gamma:     gamma,
	}
}

func (s *StepLR) Step() {
	s.lastEpoch++
	if s.stepSize > 0 && s.lastEpoch%s.stepSize == 0 {
		s.optimizer.SetRate(s.optimizer.Rate() * s.gamma)
	}
}

func (s *StepLR) Rate() float64 {
	return s.optimizer.Rate()
}

// ExponentialLR decays the learning rate by gamma every epoch.
type ExponentialLR struct {
	BaseScheduler
	optimizer RateSetter
	gamma     float64
}

func NewExponentialLR(optimizer RateSetter, gamma float64) *ExponentialLR {
	return &ExponentialLR{
		optimizer: optimizer,
		gamma:     gamma,
	}
}

func (s *ExponentialLR) Step() {
	s.optimizer.SetRate(s.optimizer.Rate() * s.gamma)
}

func (s *ExponentialLR) Rate() float64 {
	return s.optimizer.Rate()
}

// ReduceLROnPlateau reduces the learning rate when the loss has stopped
// improving for patience epochs.
type ReduceLROnPlateau struct {
	BaseScheduler
	optimizer RateSetter
	factor    float64
	patience  int
	threshold float64
	cooldown  int
	minRate   float64

	bestLoss        float64
	numBadEpochs    int
	cooldownCounter int
}

func NewReduceLROnPlateau(optimizer RateSetter, factor float64, patience int, threshold float64, minRate float64) *ReduceLROnPlateau {
	return &ReduceLROnPlateau{
		optimizer: optimizer,
		factor:    factor,
		patience:  patience,
		threshold: threshold,
		minRate:   minRate,
		bestLoss:  math.MaxFloat64,
	}
}

// SetCooldown sets how many epochs to wait after a reduction before
// monitoring resumes.
func (s *ReduceLROnPlateau) SetCooldown(epochs int) {
	s.cooldown = epochs
}

func (s *ReduceLROnPlateau) StepWithLoss(currentLoss float64) {
	if s.cooldownCounter > 0 {
		s.cooldownCounter--
		return
	}

	if currentLoss < s.bestLoss-s.threshold {
		s.bestLoss = currentLoss
		s.numBadEpochs = 0
	} else {
		s.numBadEpochs++
	}

	if s.numBadEpochs >= s.patience {
		s.optimizer.SetRate(math.Max(s.optimizer.Rate()*s.factor, s.minRate))
		s.numBadEpochs = 0
		s.cooldownCounter = s.cooldown
	}
}

func (s *ReduceLROnPlateau) Rate() float64 {
	return s.optimizer.Rate()
}
