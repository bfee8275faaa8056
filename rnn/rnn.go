// Copyright 2025 Tempo ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package rnn provides the public API for recurrent sequence
// processing.
//
// A Cell is a pure per-step transition function with declared input,
// state, and output shapes. An RNN iterates a cell over the time
// dimension of a batch, threading hidden state between steps and, in
// stateful mode, between calls:
//
//	backend := cpu.New()
//	cell := rnn.NewLSTMCell[*cpu.Backend](32, 64, rnn.CellConfig{}, rng, backend)
//	layer := rnn.New[*cpu.Backend](cell, rnn.Config{Stateful: true})
//
//	res, err := layer.Forward(x, nil) // x is [batch, steps, 32]
//
// Custom transition functions, including nested multi-tensor inputs
// and states, plug in through NewFuncCell. Bidirectional processing
// wraps two cells with NewBidirectional.
package rnn

import (
	"math/rand"

	"github.com/tempo-ml/tempo/internal/rnn"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrShapeMismatch reports inputs or state that disagree with the
	// cell's declared shapes, including a batch-size change between
	// stateful calls.
	ErrShapeMismatch = rnn.ErrShapeMismatch

	// ErrConfigurationConflict reports an explicitly requested kernel
	// strategy the cell cannot satisfy; see RNN.KernelConflict.
	ErrConfigurationConflict = rnn.ErrConfigurationConflict

	// ErrUninitializedState reports HeldState before any stateful
	// forward pass.
	ErrUninitializedState = rnn.ErrUninitializedState
)

// Cell is the per-step transition function plus its shape metadata.
type Cell[B tensor.Backend] = rnn.Cell[B]

// State is a batch of hidden state, one tensor per state slot.
type State[B tensor.Backend] = rnn.State[B]

// StepFunc is a pure transition function over input and state tuples.
type StepFunc[B tensor.Backend] = rnn.StepFunc[B]

// FuncCell adapts a StepFunc into a Cell.
type FuncCell[B tensor.Backend] = rnn.FuncCell[B]

// NewFuncCell builds a Cell from shape metadata and a step function.
func NewFuncCell[B tensor.Backend](inputs, states, outputs []tensor.Shape, step StepFunc[B], backend B) *FuncCell[B] {
	return rnn.NewFuncCell(inputs, states, outputs, step, backend)
}

// Activation selects a cell's candidate nonlinearity.
type Activation = rnn.Activation

// Supported activations.
const (
	Tanh       Activation = rnn.Tanh
	SigmoidAct Activation = rnn.SigmoidAct
	ReLUAct    Activation = rnn.ReLUAct
	Identity   Activation = rnn.Identity
)

// CellConfig holds the options shared by the built-in cells.
type CellConfig = rnn.CellConfig

// SimpleCell is the elementary recurrent cell.
type SimpleCell[B tensor.Backend] = rnn.SimpleCell[B]

// NewSimpleCell creates a simple recurrent cell.
func NewSimpleCell[B tensor.Backend](inputSize, units int, cfg CellConfig, rng *rand.Rand, backend B) *SimpleCell[B] {
	return rnn.NewSimpleCell[B](inputSize, units, cfg, rng, backend)
}

// LSTMCell is a long short-term memory cell with hidden and cell
// state slots.
type LSTMCell[B tensor.Backend] = rnn.LSTMCell[B]

// NewLSTMCell creates an LSTM cell with unit forget bias.
func NewLSTMCell[B tensor.Backend](inputSize, units int, cfg CellConfig, rng *rand.Rand, backend B) *LSTMCell[B] {
	return rnn.NewLSTMCell[B](inputSize, units, cfg, rng, backend)
}

// GRUCell is a gated recurrent unit cell.
type GRUCell[B tensor.Backend] = rnn.GRUCell[B]

// NewGRUCell creates a GRU cell.
func NewGRUCell[B tensor.Backend](inputSize, units int, cfg CellConfig, rng *rand.Rand, backend B) *GRUCell[B] {
	return rnn.NewGRUCell[B](inputSize, units, cfg, rng, backend)
}

// Kernel selects the step-execution strategy.
type Kernel = rnn.Kernel

// Kernel strategies.
const (
	KernelAuto    Kernel = rnn.KernelAuto
	KernelGeneric Kernel = rnn.KernelGeneric
	KernelFused   Kernel = rnn.KernelFused
)

// Config controls a runner.
type Config = rnn.Config

// RNN iterates a cell over the time dimension of a batch.
type RNN[B tensor.Backend] = rnn.RNN[B]

// Result is the outcome of one forward pass.
type Result[B tensor.Backend] = rnn.Result[B]

// New creates a runner for the cell.
func New[B tensor.Backend](cell Cell[B], cfg Config) *RNN[B] {
	return rnn.New[B](cell, cfg)
}

// MergeMode selects how bidirectional outputs combine.
type MergeMode = rnn.MergeMode

// Merge modes.
const (
	MergeConcat  MergeMode = rnn.MergeConcat
	MergeSum     MergeMode = rnn.MergeSum
	MergeMul     MergeMode = rnn.MergeMul
	MergeAverage MergeMode = rnn.MergeAverage
)

// Bidirectional runs a forward and a backward cell over the same
// sequence and merges their outputs.
type Bidirectional[B tensor.Backend] = rnn.Bidirectional[B]

// NewBidirectional wraps two cells into a bidirectional layer. The
// wrapper owns the processing directions.
func NewBidirectional[B tensor.Backend](forward, backward Cell[B], cfg Config, merge MergeMode) *Bidirectional[B] {
	return rnn.NewBidirectional[B](forward, backward, cfg, merge)
}
