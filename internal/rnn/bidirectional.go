package rnn

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/nn"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// MergeMode selects how bidirectional outputs combine.
type MergeMode int

// Merge modes. Concat appends the backward features after the forward
// ones; the arithmetic modes require both directions to share an
// output shape.
const (
	MergeConcat MergeMode = iota
	MergeSum
	MergeMul
	MergeAverage
)

// String returns the merge mode name.
func (m MergeMode) String() string {
	switch m {
	case MergeConcat:
		return "concat"
	case MergeSum:
		return "sum"
	case MergeMul:
		return "mul"
	case MergeAverage:
		return "average"
	default:
		return "unknown"
	}
}

// Bidirectional runs two runners over the same input, one forward and
// one backward in time, and merges their outputs along the feature
// axis. The two runners carry independent cells and independent state.
type Bidirectional[B tensor.Backend] struct {
	forward  *RNN[B]
	backward *RNN[B]
	merge    MergeMode
}

// NewBidirectional composes a forward and a backward runner. Both
// cells must declare a single input slot with identical shape and a
// single output slot. The backward runner's direction is forced
// regardless of its config.
func NewBidirectional[B tensor.Backend](forward, backward Cell[B], cfg Config, merge MergeMode) *Bidirectional[B] {
	if len(forward.InputSpec()) != 1 || len(backward.InputSpec()) != 1 {
		panic("rnn: bidirectional requires single-input cells")
	}
	if !forward.InputSpec()[0].Equal(backward.InputSpec()[0]) {
		panic(fmt.Sprintf("rnn: bidirectional input specs differ: %v vs %v",
			forward.InputSpec()[0], backward.InputSpec()[0]))
	}
	if len(forward.OutputSpec()) != 1 || len(backward.OutputSpec()) != 1 {
		panic("rnn: bidirectional requires single-output cells")
	}
	if merge != MergeConcat && !forward.OutputSpec()[0].Equal(backward.OutputSpec()[0]) {
		panic(fmt.Sprintf("rnn: merge mode %v requires matching output specs, got %v and %v",
			merge, forward.OutputSpec()[0], backward.OutputSpec()[0]))
	}

	fwdCfg := cfg
	fwdCfg.GoBackwards = false
	bwdCfg := cfg
	bwdCfg.GoBackwards = true

	return &Bidirectional[B]{
		forward:  New(forward, fwdCfg),
		backward: New(backward, bwdCfg),
		merge:    merge,
	}
}

// Forward runs both directions and merges the per-step outputs.
// Both directions emit outputs aligned to input positions, so the
// merge at position t combines both views of input step t.
func (bd *Bidirectional[B]) Forward(x *tensor.Tensor[float32, B]) (*Result[B], error) {
	fwd, err := bd.forward.Forward(x, nil)
	if err != nil {
		return nil, fmt.Errorf("forward direction: %w", err)
	}
	bwd, err := bd.backward.Forward(x, nil)
	if err != nil {
		return nil, fmt.Errorf("backward direction: %w", err)
	}

	backend := x.Backend()
	merged := bd.mergeSequences(fwd.Sequence(), bwd.Sequence(), backend)
	last := bd.mergeLast(fwd.Output(), bwd.Output(), backend)

	// Final state: both directions' slots, forward first.
	state := append(fwd.State.Clone(), bwd.State.Clone()...)

	return &Result[B]{
		Sequences: []*tensor.Tensor[float32, B]{merged},
		Last:      []*tensor.Tensor[float32, B]{last},
		State:     state,
	}, nil
}

// ResetState clears held state in both directions.
func (bd *Bidirectional[B]) ResetState() {
	bd.forward.ResetState()
	bd.backward.ResetState()
}

// Parameters returns both cells' parameters, forward first.
func (bd *Bidirectional[B]) Parameters() []*nn.Parameter[B] {
	return append(bd.forward.Cell().Parameters(), bd.backward.Cell().Parameters()...)
}

func (bd *Bidirectional[B]) mergeSequences(f, b *tensor.Tensor[float32, B], backend B) *tensor.Tensor[float32, B] {
	return bd.mergeAlong(f, b, 2, backend)
}

// mergeLast combines the final processed outputs of both directions:
// the forward pass ends at the last step, the backward pass at the
// first.
func (bd *Bidirectional[B]) mergeLast(f, b *tensor.Tensor[float32, B], backend B) *tensor.Tensor[float32, B] {
	return bd.mergeAlong(f, b, 1, backend)
}

func (bd *Bidirectional[B]) mergeAlong(f, b *tensor.Tensor[float32, B], dim int, backend B) *tensor.Tensor[float32, B] {
	switch bd.merge {
	case MergeConcat:
		return tensor.New[float32, B](backend.Cat([]*tensor.RawTensor{f.Raw(), b.Raw()}, dim), backend)
	case MergeSum:
		return f.Add(b)
	case MergeMul:
		return f.Mul(b)
	case MergeAverage:
		return f.Add(b).MulScalar(0.5)
	default:
		panic(fmt.Sprintf("rnn: unknown merge mode %d", bd.merge))
	}
}
