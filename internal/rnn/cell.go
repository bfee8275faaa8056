// Package rnn implements recurrent sequence processing: transition
// cells (simple, GRU, LSTM, arbitrary nested), a runner that threads
// hidden state across time steps and, in stateful mode, across calls,
// and a bidirectional composition.
//
// The per-step contract is a pure function from (input tuple, state)
// to (output tuple, new state). Cells declare their input, state, and
// output shapes; the runner validates batches against those
// declarations and fails fast on mismatch rather than reinterpreting
// which state belongs to which sequence.
package rnn

import (
	"github.com/tempo-ml/tempo/internal/nn"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Cell is the per-step transition function plus its shape metadata.
//
// Step must be pure with respect to everything but its return values:
// it must not mutate inputs, state, or parameters. Shapes exclude the
// batch dimension: an input spec of [{3}] means each step consumes one
// [batch, 3] tensor.
type Cell[B tensor.Backend] interface {
	// InputSpec returns the per-sequence shape of each input slot.
	InputSpec() []tensor.Shape

	// StateSpec returns the per-sequence shape of each state slot.
	StateSpec() []tensor.Shape

	// OutputSpec returns the per-sequence shape of each output slot.
	OutputSpec() []tensor.Shape

	// ZeroState returns the all-zero state for a batch.
	ZeroState(batch int) State[B]

	// Step applies the transition function to one time step.
	// Inputs hold one [batch, ...] tensor per input slot.
	Step(inputs []*tensor.Tensor[float32, B], state State[B]) ([]*tensor.Tensor[float32, B], State[B])

	// Parameters returns the cell's trainable parameters.
	Parameters() []*nn.Parameter[B]
}

// FuncCell adapts a pure step function into a Cell. It is the direct
// route for custom transition functions, including nested multi-tensor
// inputs and states: declare the shapes, provide the function.
type FuncCell[B tensor.Backend] struct {
	inputs  []tensor.Shape
	states  []tensor.Shape
	outputs []tensor.Shape
	step    StepFunc[B]
	backend B
}

// StepFunc is a pure transition function over input and state tuples.
type StepFunc[B tensor.Backend] func(inputs []*tensor.Tensor[float32, B], state State[B]) ([]*tensor.Tensor[float32, B], State[B])

// NewFuncCell builds a Cell from shape metadata and a step function.
func NewFuncCell[B tensor.Backend](inputs, states, outputs []tensor.Shape, step StepFunc[B], backend B) *FuncCell[B] {
	if len(inputs) == 0 || len(states) == 0 || len(outputs) == 0 {
		panic("rnn: FuncCell requires at least one input, state, and output slot")
	}
	return &FuncCell[B]{
		inputs:  inputs,
		states:  states,
		outputs: outputs,
		step:    step,
		backend: backend,
	}
}

// InputSpec returns the declared input shapes.
func (f *FuncCell[B]) InputSpec() []tensor.Shape { return f.inputs }

// StateSpec returns the declared state shapes.
func (f *FuncCell[B]) StateSpec() []tensor.Shape { return f.states }

// OutputSpec returns the declared output shapes.
func (f *FuncCell[B]) OutputSpec() []tensor.Shape { return f.outputs }

// ZeroState returns the all-zero state for a batch.
func (f *FuncCell[B]) ZeroState(batch int) State[B] {
	return zeroState(f.states, batch, f.backend)
}

// Step invokes the wrapped function.
func (f *FuncCell[B]) Step(inputs []*tensor.Tensor[float32, B], state State[B]) ([]*tensor.Tensor[float32, B], State[B]) {
	return f.step(inputs, state)
}

// Parameters returns nil; FuncCells close over any weights they use.
func (f *FuncCell[B]) Parameters() []*nn.Parameter[B] { return nil }
