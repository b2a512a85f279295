package opt

import (
	"log/slog"
	"math"

	"github.com/FlavioCFOliveira/ffnet/internal/net"
)

// Callback defines the interface for training callbacks.
// An epoch is one online step in Train and one applied batch in BatchTrain.
type Callback interface {
	OnTrainBegin(n *net.Network)
	OnEpochEnd(epoch int, loss float64, n *net.Network)
	OnTrainEnd(n *net.Network)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(n *net.Network)                        {}
func (c BaseCallback) OnEpochEnd(epoch int, loss float64, n *net.Network) {}
func (c BaseCallback) OnTrainEnd(n *net.Network)                          {}

// SchedulerCallback is a callback that wraps a learning rate scheduler.
type SchedulerCallback struct {
	BaseCallback
	scheduler Scheduler
}

func NewSchedulerCallback(scheduler Scheduler) *SchedulerCallback {
	return &SchedulerCallback{scheduler: scheduler}
}

func (c *SchedulerCallback) OnEpochEnd(epoch int, loss float64, n *net.Network) {
	c.scheduler.Step()
	c.scheduler.StepWithLoss(loss)
}

// sessionLogger is implemented by callbacks that log through the
// optimizer's Logger unless they are given their own.
type sessionLogger interface {
	useSessionLogger(l *slog.Logger)
}

// callbackLogger picks own, then the session's logger, then slog.Default().
func callbackLogger(own, session *slog.Logger) *slog.Logger {
	switch {
	case own != nil:
		return own
	case session != nil:
		return session
	default:
		return slog.Default()
	}
}

// ModelCheckpoint saves the network whenever the loss reaches a new best.
type ModelCheckpoint struct {
	BaseCallback
	Filename string

	// Log receives checkpoint records (default: the training optimizer's
	// Logger).
	Log *slog.Logger

	// Err holds the last save failure, if any.
	Err error

	session  *slog.Logger
	bestLoss float64
}

func NewModelCheckpoint(filename string) *ModelCheckpoint {
	return &ModelCheckpoint{
		Filename: filename,
		bestLoss: math.MaxFloat64,
	}
}

func (c *ModelCheckpoint) useSessionLogger(l *slog.Logger) { c.session = l }

func (c *ModelCheckpoint) OnEpochEnd(epoch int, loss float64, n *net.Network) {
	if loss >= c.bestLoss {
		return
	}
	c.bestLoss = loss
	l := callbackLogger(c.Log, c.session)
	if err := n.Save(c.Filename); err != nil {
		c.Err = err
		l.Warn("checkpoint failed", slog.String("file", c.Filename), slog.Any("error", err))
		return
	}
	l.Debug("checkpoint saved", slog.String("file", c.Filename), slog.Int("epoch", epoch), slog.Float64("loss", loss))
}

// Logger logs training progress every Interval epochs.
type Logger struct {
	BaseCallback
	Interval int

	// Log receives the records (default: slog.Default()).
	Log *slog.Logger
}

func (c Logger) OnEpochEnd(epoch int, loss float64, n *net.Network) {
	if c.Interval <= 0 || epoch%c.Interval != 0 {
		return
	}
	l := c.Log
	if l == nil {
		l = slog.Default()
	}
	l.Info("epoch", slog.Int("epoch", epoch), slog.Float64("loss", loss))
}
