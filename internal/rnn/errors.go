package rnn

import "errors"

// Sentinel errors for the Forward contract. Callers match them with
// errors.Is; returned values wrap these with shape details.
var (
	// ErrShapeMismatch reports a batch size, feature width, or state
	// arity that disagrees with the cell configuration or held state.
	ErrShapeMismatch = errors.New("rnn: shape mismatch")

	// ErrConfigurationConflict reports an explicitly requested kernel
	// strategy that the cell configuration cannot satisfy. The runner
	// falls back to the generic path; this error only surfaces through
	// KernelConflict for callers that want to inspect the downgrade.
	ErrConfigurationConflict = errors.New("rnn: configuration conflict")

	// ErrUninitializedState reports reading held state before any
	// stateful call has established it.
	ErrUninitializedState = errors.New("rnn: uninitialized state access")
)
