package rnn

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Kernel selects the step-execution strategy. The choice is resolved
// once at construction and reported through RNN.Kernel; it never
// changes behind the caller's back at run time.
type Kernel int

// Kernel strategies.
const (
	// KernelAuto picks the fused path when the cell's profile allows
	// it, otherwise the generic path.
	KernelAuto Kernel = iota
	// KernelGeneric always calls Cell.Step once per time step.
	KernelGeneric
	// KernelFused requests the fused path: input projections for all
	// steps in one matmul, leaving only the recurrent half in the
	// loop. If the cell profile is incompatible the runner falls back
	// to generic and records the conflict.
	KernelFused
)

// String returns the strategy name.
func (k Kernel) String() string {
	switch k {
	case KernelAuto:
		return "auto"
	case KernelGeneric:
		return "generic"
	case KernelFused:
		return "fused"
	default:
		return "unknown"
	}
}

// Config controls a runner. The zero value processes forward, looped,
// non-stateful, with automatic kernel selection.
type Config struct {
	// Stateful makes the final state of each Forward call the initial
	// state of the next, until ResetState. Consecutive stateful calls
	// must keep the same batch size.
	Stateful bool

	// GoBackwards processes steps from the last to the first. Outputs
	// stay aligned to input positions; only the order state flows in
	// changes, so Last is the output at position 0.
	GoBackwards bool

	// Unroll materializes every per-step input up front instead of
	// slicing lazily inside the loop. Purely an execution choice; the
	// outputs are identical to the looped form.
	Unroll bool

	// Kernel selects the step-execution strategy.
	Kernel Kernel

	// Logf, when set, receives a one-line report of the resolved
	// kernel strategy at construction.
	Logf func(format string, args ...any)
}

// fusedCell is the profile a cell must expose for the fused strategy:
// a bulk input projection plus a step that consumes projected rows.
type fusedCell[B tensor.Backend] interface {
	Cell[B]
	projectInputs(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
	stepFused(proj *tensor.Tensor[float32, B], state State[B]) ([]*tensor.Tensor[float32, B], State[B])
	fusable() bool
}

// RNN iterates a cell over the time dimension of a batch, threading
// state from step to step and, in stateful mode, from call to call.
//
// A stateful RNN is not safe for concurrent Forward calls: the held
// state is owned by the instance and callers must serialize access.
type RNN[B tensor.Backend] struct {
	cell     Cell[B]
	cfg      Config
	fused    fusedCell[B] // non-nil when the fused strategy is active
	conflict error

	held      State[B] // nil while uninitialized
	heldBatch int
}

// New creates a runner for the cell. The kernel strategy resolves
// here: requesting KernelFused with an incompatible cell downgrades to
// generic, reported via Logf and KernelConflict rather than failing.
func New[B tensor.Backend](cell Cell[B], cfg Config) *RNN[B] {
	r := &RNN[B]{cell: cell, cfg: cfg}

	fc, ok := cell.(fusedCell[B])
	canFuse := ok && fc.fusable() && len(cell.InputSpec()) == 1 && len(cell.InputSpec()[0]) == 1

	switch cfg.Kernel {
	case KernelFused:
		if canFuse {
			r.fused = fc
		} else {
			r.conflict = fmt.Errorf("%w: fused kernel requested but cell profile is incompatible", ErrConfigurationConflict)
		}
	case KernelAuto:
		if canFuse {
			r.fused = fc
		}
	}

	if cfg.Logf != nil {
		if r.conflict != nil {
			cfg.Logf("rnn: kernel strategy %q unavailable, using generic", cfg.Kernel)
		} else {
			cfg.Logf("rnn: kernel strategy resolved to %q", r.Kernel())
		}
	}
	return r
}

// Cell returns the wrapped cell.
func (r *RNN[B]) Cell() Cell[B] { return r.cell }

// Kernel returns the resolved strategy name, "fused" or "generic".
func (r *RNN[B]) Kernel() string {
	if r.fused != nil {
		return "fused"
	}
	return "generic"
}

// KernelConflict returns the ErrConfigurationConflict recorded when an
// explicitly requested strategy was downgraded, or nil.
func (r *RNN[B]) KernelConflict() error { return r.conflict }

// HeldState returns a copy of the state carried between stateful
// calls. Before any stateful Forward it returns ErrUninitializedState.
func (r *RNN[B]) HeldState() (State[B], error) {
	if r.held == nil {
		return nil, fmt.Errorf("%w: no state held; run a stateful forward pass first", ErrUninitializedState)
	}
	return r.held.Clone(), nil
}

// ResetState discards held state. The next Forward without an explicit
// initial state starts from zero, whatever the batch size.
func (r *RNN[B]) ResetState() {
	r.held = nil
	r.heldBatch = 0
}

// Result is the outcome of one Forward call.
type Result[B tensor.Backend] struct {
	// Sequences holds one [batch, steps, ...] tensor per output slot.
	// Position t carries the output computed from input step t, also
	// under reverse processing.
	Sequences []*tensor.Tensor[float32, B]

	// Last holds the final processed step's output, one [batch, ...]
	// tensor per output slot. Under reverse processing this is the
	// output at position 0.
	Last []*tensor.Tensor[float32, B]

	// State is the final hidden state. It is the caller's copy;
	// mutating it does not affect state held by a stateful runner.
	State State[B]
}

// Sequence returns the full output sequence of the first output slot.
func (res *Result[B]) Sequence() *tensor.Tensor[float32, B] { return res.Sequences[0] }

// Output returns the last step's output of the first output slot.
func (res *Result[B]) Output() *tensor.Tensor[float32, B] { return res.Last[0] }

// Forward processes a [batch, steps, features] input for single-input
// cells. A nil initial state means: held state if stateful and
// holding, zero otherwise.
func (r *RNN[B]) Forward(x *tensor.Tensor[float32, B], initial State[B]) (*Result[B], error) {
	return r.ForwardTuple([]*tensor.Tensor[float32, B]{x}, initial)
}

// ForwardTuple is the general entry point for cells with multiple
// input slots. Each input is [batch, steps, ...] per its slot's spec;
// all slots must agree on batch and steps.
func (r *RNN[B]) ForwardTuple(inputs []*tensor.Tensor[float32, B], initial State[B]) (*Result[B], error) {
	batch, steps, err := r.validateInputs(inputs)
	if err != nil {
		return nil, err
	}

	state, err := r.resolveInitial(initial, batch)
	if err != nil {
		return nil, err
	}

	outSpec := r.cell.OutputSpec()
	stateSpec := r.cell.StateSpec()
	perStep := make([][]*tensor.Tensor[float32, B], len(outSpec))
	for slot := range perStep {
		perStep[slot] = make([]*tensor.Tensor[float32, B], steps)
	}

	var lastOuts []*tensor.Tensor[float32, B]
	step := r.stepper(inputs, batch, steps)
	for p := 0; p < steps; p++ {
		idx := p
		if r.cfg.GoBackwards {
			idx = steps - 1 - p
		}

		outs, next := step(idx, state)
		if err := r.checkOutputs(outs, outSpec, batch); err != nil {
			return nil, err
		}
		if err := next.conform(stateSpec, batch); err != nil {
			return nil, fmt.Errorf("after step %d: %w", idx, err)
		}
		state = next
		lastOuts = outs

		// Outputs land at the input position they were computed from,
		// so reverse processing flips how positions map, nothing else.
		for slot, out := range outs {
			perStep[slot][idx] = out
		}
	}

	res := &Result[B]{
		Sequences: make([]*tensor.Tensor[float32, B], len(outSpec)),
		Last:      lastOuts,
		State:     state,
	}
	backend := inputs[0].Backend()
	for slot := range outSpec {
		raws := make([]*tensor.RawTensor, steps)
		for idx, out := range perStep[slot] {
			raws[idx] = backend.Unsqueeze(out.Raw(), 1)
		}
		res.Sequences[slot] = tensor.New[float32, B](backend.Cat(raws, 1), backend)
	}

	if r.cfg.Stateful {
		r.held = state.Clone()
		r.heldBatch = batch
	}
	return res, nil
}

// stepFn computes one step: input index and incoming state to output
// tuple and next state.
type stepFn[B tensor.Backend] func(idx int, state State[B]) ([]*tensor.Tensor[float32, B], State[B])

// stepper binds the resolved kernel strategy and execution mode into a
// single per-step function.
func (r *RNN[B]) stepper(inputs []*tensor.Tensor[float32, B], batch, steps int) stepFn[B] {
	backend := inputs[0].Backend()

	if r.fused != nil {
		// One matmul projects the input half of every step; the loop
		// keeps only the recurrent half.
		x := inputs[0]
		features := x.Shape()[2]
		flat := x.Reshape(tensor.Shape{batch * steps, features})
		proj := r.fused.projectInputs(flat)
		gated := proj.Reshape(tensor.Shape{batch, steps, proj.Shape()[1]})

		if r.cfg.Unroll {
			projSteps := r.materialize([]*tensor.Tensor[float32, B]{gated}, steps, backend)
			return func(idx int, state State[B]) ([]*tensor.Tensor[float32, B], State[B]) {
				return r.fused.stepFused(projSteps[idx][0], state)
			}
		}
		return func(idx int, state State[B]) ([]*tensor.Tensor[float32, B], State[B]) {
			p := tensor.New[float32, B](backend.Select(gated.Raw(), 1, idx), backend)
			return r.fused.stepFused(p, state)
		}
	}

	if r.cfg.Unroll {
		stepInputs := r.materialize(inputs, steps, backend)
		return func(idx int, state State[B]) ([]*tensor.Tensor[float32, B], State[B]) {
			return r.cell.Step(stepInputs[idx], state)
		}
	}
	return func(idx int, state State[B]) ([]*tensor.Tensor[float32, B], State[B]) {
		stepIn := make([]*tensor.Tensor[float32, B], len(inputs))
		for i, in := range inputs {
			stepIn[i] = tensor.New[float32, B](backend.Select(in.Raw(), 1, idx), backend)
		}
		return r.cell.Step(stepIn, state)
	}
}

// materialize pre-splits every input into per-step tensors, the
// unrolled execution mode.
func (r *RNN[B]) materialize(inputs []*tensor.Tensor[float32, B], steps int, backend B) [][]*tensor.Tensor[float32, B] {
	out := make([][]*tensor.Tensor[float32, B], steps)
	for idx := 0; idx < steps; idx++ {
		stepIn := make([]*tensor.Tensor[float32, B], len(inputs))
		for i, in := range inputs {
			stepIn[i] = tensor.New[float32, B](backend.Select(in.Raw(), 1, idx), backend)
		}
		out[idx] = stepIn
	}
	return out
}

func (r *RNN[B]) validateInputs(inputs []*tensor.Tensor[float32, B]) (batch, steps int, err error) {
	spec := r.cell.InputSpec()
	if len(inputs) != len(spec) {
		return 0, 0, fmt.Errorf("%w: got %d input slots, cell declares %d", ErrShapeMismatch, len(inputs), len(spec))
	}
	for i, in := range inputs {
		shape := in.Shape()
		if len(shape) != 2+len(spec[i]) {
			return 0, 0, fmt.Errorf("%w: input slot %d is %v, want [batch, steps]+%v", ErrShapeMismatch, i, shape, spec[i])
		}
		if i == 0 {
			batch, steps = shape[0], shape[1]
		} else if shape[0] != batch || shape[1] != steps {
			return 0, 0, fmt.Errorf("%w: input slot %d is %v, other slots carry batch=%d steps=%d", ErrShapeMismatch, i, shape, batch, steps)
		}
		for d, want := range spec[i] {
			if shape[2+d] != want {
				return 0, 0, fmt.Errorf("%w: input slot %d is %v, want per-step shape %v", ErrShapeMismatch, i, shape, spec[i])
			}
		}
	}
	return batch, steps, nil
}

func (r *RNN[B]) resolveInitial(initial State[B], batch int) (State[B], error) {
	switch {
	case initial != nil:
		if err := initial.conform(r.cell.StateSpec(), batch); err != nil {
			return nil, fmt.Errorf("initial state: %w", err)
		}
		return initial.Clone(), nil
	case r.cfg.Stateful && r.held != nil:
		if r.heldBatch != batch {
			return nil, fmt.Errorf("%w: holding state for batch size %d, got %d; call ResetState before changing batch size", ErrShapeMismatch, r.heldBatch, batch)
		}
		return r.held.Clone(), nil
	default:
		return r.cell.ZeroState(batch), nil
	}
}

func (r *RNN[B]) checkOutputs(outs []*tensor.Tensor[float32, B], spec []tensor.Shape, batch int) error {
	if len(outs) != len(spec) {
		return fmt.Errorf("%w: cell produced %d output slots, declares %d", ErrShapeMismatch, len(outs), len(spec))
	}
	for i, out := range outs {
		want := append(tensor.Shape{batch}, spec[i]...)
		if !out.Shape().Equal(want) {
			return fmt.Errorf("%w: output slot %d is %v, want %v", ErrShapeMismatch, i, out.Shape(), want)
		}
	}
	return nil
}
