package opt

import (
	"log/slog"
	"time"

	"github.com/FlavioCFOliveira/ffnet/internal/net"
	"github.com/google/uuid"
)

// Train runs an online session: each step learns one sample drawn
// uniformly with replacement, then checks the total loss over samples.
// It reports whether the loss fell below epsilon within maxIter steps.
func (t *trainer) Train(n *net.Network, samples []net.Sample, maxIter int, epsilon float64) bool {
	if len(samples) == 0 {
		panic("opt: no training samples")
	}

	s := t.begin(n, "online", len(samples))
	defer t.CleanNetwork(n)

	for s.steps < maxIter {
		t.LearnSample(n, samples[t.rng.Intn(len(samples))])
		if s.step(n, samples, epsilon) {
			break
		}
	}
	return t.end(n, s)
}

// BatchTrain runs a batch session. samples is cut into contiguous batches
// of batchSize (the last may be smaller; batchSize <= 0 means one batch).
// Each epoch learns one randomly chosen batch, then checks the total loss.
func (t *trainer) BatchTrain(n *net.Network, samples []net.Sample, maxEpoch int, epsilon float64, batchSize int) bool {
	if len(samples) == 0 {
		panic("opt: no training samples")
	}
	batches := Batches(samples, batchSize)

	s := t.begin(n, "batch", len(samples))
	defer t.CleanNetwork(n)

	for s.steps < maxEpoch {
		t.LearnBatch(n, batches[t.rng.Intn(len(batches))])
		if s.step(n, samples, epsilon) {
			break
		}
	}
	return t.end(n, s)
}

// Batches cuts samples into contiguous batches of size. The last batch
// may be smaller. size <= 0 yields a single batch.
func Batches(samples []net.Sample, size int) [][]net.Sample {
	if size <= 0 || size >= len(samples) {
		return [][]net.Sample{samples}
	}
	batches := make([][]net.Sample, 0, (len(samples)+size-1)/size)
	for start := 0; start < len(samples); start += size {
		end := min(start+size, len(samples))
		batches = append(batches, samples[start:end])
	}
	return batches
}

// session tracks one Train or BatchTrain run.
type session struct {
	id        string
	mode      string
	start     time.Time
	steps     int
	loss      float64
	success   bool
	callbacks []Callback
}

func (t *trainer) begin(n *net.Network, mode string, count int) *session {
	t.PrepareNetwork(n)
	s := &session{
		id:        uuid.NewString(),
		mode:      mode,
		start:     time.Now(),
		callbacks: t.callbacks,
	}
	t.logger.Debug("training started",
		slog.String("session", s.id),
		slog.String("optimizer", t.rule.Name()),
		slog.String("mode", mode),
		slog.Int("samples", count),
		slog.Float64("rate", t.rate),
	)
	for _, cb := range s.callbacks {
		if sl, ok := cb.(sessionLogger); ok {
			sl.useSessionLogger(t.logger)
		}
		cb.OnTrainBegin(n)
	}
	return s
}

// step records one finished step and reports whether training converged.
func (s *session) step(n *net.Network, samples []net.Sample, epsilon float64) bool {
	s.steps++
	s.loss = n.TotalLoss(samples)
	for _, cb := range s.callbacks {
		cb.OnEpochEnd(s.steps, s.loss, n)
	}
	s.success = s.loss < epsilon
	return s.success
}

func (t *trainer) end(n *net.Network, s *session) bool {
	for _, cb := range s.callbacks {
		cb.OnTrainEnd(n)
	}
	t.logger.Info("training finished",
		slog.String("session", s.id),
		slog.String("optimizer", t.rule.Name()),
		slog.String("mode", s.mode),
		slog.Int("steps", s.steps),
		slog.Float64("loss", s.loss),
		slog.Bool("success", s.success),
		slog.Duration("elapsed", time.Since(s.start)),
	)
	return s.success
}
