package metrics

import (
	"math"
	"testing"
	"time"
)

func TestWindowSnapshot(t *testing.T) {
	var w Window
	w.Record(32, 16, 1.2, 100*time.Millisecond)
	w.Record(32, 24, 0.8, 100*time.Millisecond)

	if w.Steps() != 2 {
		t.Fatalf("expected 2 steps, got %d", w.Steps())
	}

	snap := w.Snapshot()
	if math.Abs(snap.AvgLoss-1.0) > 1e-9 {
		t.Fatalf("unexpected avg loss %.4f", snap.AvgLoss)
	}
	if math.Abs(snap.Accuracy-0.625) > 1e-9 {
		t.Fatalf("unexpected accuracy %.4f", snap.Accuracy)
	}
	if math.Abs(snap.SamplesPerSec-320) > 1 {
		t.Fatalf("unexpected throughput %.2f", snap.SamplesPerSec)
	}
	if w.Steps() != 0 {
		t.Fatal("window was not reset")
	}
}

func TestEmptyWindow(t *testing.T) {
	var w Window
	snap := w.Snapshot()
	if snap.AvgLoss != 0 || snap.Accuracy != 0 || snap.SamplesPerSec != 0 {
		t.Fatalf("empty window should snapshot zeros, got %+v", snap)
	}
}
