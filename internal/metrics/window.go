// Package metrics accumulates training statistics over a logging
// window: loss, accuracy, and sample throughput.
package metrics

import "time"

// Window aggregates per-batch measurements until the next Snapshot.
// The zero value is ready to use.
type Window struct {
	samples int
	correct int
	lossSum float64
	steps   int
	elapsed time.Duration
}

// Record adds one batch: its size, how many predictions were correct,
// its mean loss, and how long the step took.
func (w *Window) Record(batchSize, correct int, loss float64, took time.Duration) {
	w.samples += batchSize
	w.correct += correct
	w.lossSum += loss
	w.steps++
	w.elapsed += took
}

// Steps returns the number of batches recorded since the last
// Snapshot.
func (w *Window) Steps() int { return w.steps }

// Snapshot returns the aggregated window and resets it.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{}
	if w.steps > 0 {
		snap.AvgLoss = w.lossSum / float64(w.steps)
	}
	if w.samples > 0 {
		snap.Accuracy = float64(w.correct) / float64(w.samples)
	}
	if w.elapsed > 0 {
		snap.SamplesPerSec = float64(w.samples) / w.elapsed.Seconds()
	}
	*w = Window{}
	return snap
}

// Snapshot represents loggable training metrics.
type Snapshot struct {
	AvgLoss       float64
	Accuracy      float64
	SamplesPerSec float64
}
