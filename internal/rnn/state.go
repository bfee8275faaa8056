package rnn

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// State is a batch of hidden state: one tensor per state slot, each
// shaped [batch, ...]. A simple cell carries one slot, an LSTM two
// (hidden and cell memory), a nested cell any number. State tuples are
// deliberately distinct from output tuples even when their shapes
// coincide, so the two can never alias.
type State[B tensor.Backend] []*tensor.Tensor[float32, B]

// BatchSize returns the leading dimension shared by all slots, or 0 for
// an empty state.
func (s State[B]) BatchSize() int {
	if len(s) == 0 {
		return 0
	}
	return s[0].Shape()[0]
}

// Clone deep-copies every slot. The runner clones state at the
// stateful-storage boundary so callers and the runner never share
// mutable tensors.
func (s State[B]) Clone() State[B] {
	out := make(State[B], len(s))
	for i, t := range s {
		out[i] = t.Clone()
	}
	return out
}

// conform checks slot count and per-slot shapes against a spec for the
// given batch size.
func (s State[B]) conform(spec []tensor.Shape, batch int) error {
	if len(s) != len(spec) {
		return fmt.Errorf("%w: state has %d slots, cell declares %d", ErrShapeMismatch, len(s), len(spec))
	}
	for i, t := range s {
		want := append(tensor.Shape{batch}, spec[i]...)
		if !t.Shape().Equal(want) {
			return fmt.Errorf("%w: state slot %d is %v, want %v", ErrShapeMismatch, i, t.Shape(), want)
		}
	}
	return nil
}

// zeroState builds an all-zero state for a spec and batch size.
func zeroState[B tensor.Backend](spec []tensor.Shape, batch int, backend B) State[B] {
	out := make(State[B], len(spec))
	for i, shape := range spec {
		out[i] = tensor.Zeros[float32](append(tensor.Shape{batch}, shape...), backend)
	}
	return out
}
