package rnn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempo-ml/tempo/internal/backend/cpu"
	"github.com/tempo-ml/tempo/internal/tensor"
)

func TestBidirectionalConcat(t *testing.T) {
	backend := cpu.New()
	bd := NewBidirectional[*cpu.Backend](additiveCell(backend), additiveCell(backend), Config{}, MergeConcat)

	x := mustTensor(t, backend, []float32{1, 2, 3}, tensor.Shape{1, 3, 1})
	res, err := bd.Forward(x)
	require.NoError(t, err)

	// Forward running sums are 1, 3, 6; backward are 6, 5, 3 when read
	// in input order. Concat interleaves them per position.
	require.True(t, res.Sequence().Shape().Equal(tensor.Shape{1, 3, 2}))
	assert.Equal(t, []float32{1, 6, 3, 5, 6, 3}, res.Sequence().Data())

	// Each direction ends at its own last processed step, both with
	// the full sum.
	assert.Equal(t, []float32{6, 6}, res.Output().Data())

	require.Len(t, res.State, 2)
	assert.Equal(t, []float32{6}, res.State[0].Data())
	assert.Equal(t, []float32{6}, res.State[1].Data())
}

func TestBidirectionalMergeModes(t *testing.T) {
	backend := cpu.New()
	x := mustTensor(t, backend, []float32{1, 2, 3}, tensor.Shape{1, 3, 1})

	cases := map[MergeMode][]float32{
		MergeSum:     {7, 8, 9},
		MergeMul:     {6, 15, 18},
		MergeAverage: {3.5, 4, 4.5},
	}
	for mode, want := range cases {
		t.Run(mode.String(), func(t *testing.T) {
			bd := NewBidirectional[*cpu.Backend](additiveCell(backend), additiveCell(backend), Config{}, mode)
			res, err := bd.Forward(x)
			require.NoError(t, err)
			require.True(t, res.Sequence().Shape().Equal(tensor.Shape{1, 3, 1}))
			assert.Equal(t, want, res.Sequence().Data())
		})
	}
}

func TestBidirectionalDirectionsForced(t *testing.T) {
	backend := cpu.New()

	// The wrapper owns the directions; a GoBackwards in the shared
	// config must not flip the forward half.
	bd := NewBidirectional[*cpu.Backend](additiveCell(backend), additiveCell(backend), Config{GoBackwards: true}, MergeConcat)
	x := mustTensor(t, backend, []float32{1, 2, 3}, tensor.Shape{1, 3, 1})
	res, err := bd.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 6, 3, 5, 6, 3}, res.Sequence().Data())
}

func TestBidirectionalStateful(t *testing.T) {
	backend := cpu.New()
	bd := NewBidirectional[*cpu.Backend](additiveCell(backend), additiveCell(backend), Config{Stateful: true}, MergeSum)

	x := mustTensor(t, backend, []float32{1, 1}, tensor.Shape{1, 2, 1})
	res, err := bd.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 3}, res.Sequence().Data())

	// Both directions carry their sum of 2 into the next call.
	res, err = bd.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{7, 7}, res.Sequence().Data())

	bd.ResetState()
	res, err = bd.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 3}, res.Sequence().Data())
}

func TestBidirectionalParameters(t *testing.T) {
	backend := cpu.New()
	fwd := NewSimpleCell[*cpu.Backend](2, 3, CellConfig{}, testRng(), backend)
	bwd := NewSimpleCell[*cpu.Backend](2, 3, CellConfig{}, testRng(), backend)
	bd := NewBidirectional[*cpu.Backend](fwd, bwd, Config{}, MergeConcat)

	params := bd.Parameters()
	require.Len(t, params, 6)
	assert.Same(t, fwd.kernel, params[0])
	assert.Same(t, bwd.kernel, params[3])
}

func TestBidirectionalSimpleCellShapes(t *testing.T) {
	backend := cpu.New()
	fwd := NewSimpleCell[*cpu.Backend](4, 8, CellConfig{}, testRng(), backend)
	bwd := NewSimpleCell[*cpu.Backend](4, 8, CellConfig{}, testRng(), backend)
	bd := NewBidirectional[*cpu.Backend](fwd, bwd, Config{}, MergeConcat)

	x := tensor.Randn[float32](tensor.Shape{3, 5, 4}, testRng(), backend)
	res, err := bd.Forward(x)
	require.NoError(t, err)

	assert.True(t, res.Sequence().Shape().Equal(tensor.Shape{3, 5, 16}))
	assert.True(t, res.Output().Shape().Equal(tensor.Shape{3, 16}))
	require.Len(t, res.State, 2)
	assert.True(t, res.State[0].Shape().Equal(tensor.Shape{3, 8}))
}
