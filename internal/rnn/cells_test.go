package rnn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempo-ml/tempo/internal/backend/cpu"
	"github.com/tempo-ml/tempo/internal/tensor"
)

func sigmoid64(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func TestSimpleCellIdentityStep(t *testing.T) {
	backend := cpu.New()
	cell := NewSimpleCell[*cpu.Backend](1, 1, CellConfig{Activation: Identity}, testRng(), backend)
	copy(cell.kernel.Tensor().Data(), []float32{1})
	copy(cell.recurrent.Tensor().Data(), []float32{1})
	copy(cell.bias.Tensor().Data(), []float32{0})

	x := mustTensor(t, backend, []float32{2}, tensor.Shape{1, 1})
	h := State[*cpu.Backend]{mustTensor(t, backend, []float32{3}, tensor.Shape{1, 1})}

	outs, next := cell.Step([]*tensor.Tensor[float32, *cpu.Backend]{x}, h)
	require.Len(t, outs, 1)
	require.Len(t, next, 1)
	assert.Equal(t, []float32{5}, outs[0].Data())
	assert.Equal(t, []float32{5}, next[0].Data())

	// Output and state are distinct tensors even though the values
	// coincide.
	outs[0].Set(99, 0, 0)
	assert.Equal(t, []float32{5}, next[0].Data())
}

func TestSimpleCellTanhStep(t *testing.T) {
	backend := cpu.New()
	cell := NewSimpleCell[*cpu.Backend](1, 1, CellConfig{}, testRng(), backend)
	copy(cell.kernel.Tensor().Data(), []float32{0.5})
	copy(cell.recurrent.Tensor().Data(), []float32{0.25})
	copy(cell.bias.Tensor().Data(), []float32{0.1})

	x := mustTensor(t, backend, []float32{1}, tensor.Shape{1, 1})
	h := State[*cpu.Backend]{mustTensor(t, backend, []float32{2}, tensor.Shape{1, 1})}

	outs, _ := cell.Step([]*tensor.Tensor[float32, *cpu.Backend]{x}, h)
	want := math.Tanh(0.5*1 + 0.25*2 + 0.1)
	assert.InDelta(t, want, float64(outs[0].At(0, 0)), 1e-6)
}

func TestSimpleCellNoBias(t *testing.T) {
	backend := cpu.New()
	cell := NewSimpleCell[*cpu.Backend](2, 3, CellConfig{NoBias: true}, testRng(), backend)
	assert.Nil(t, cell.bias)
	assert.Len(t, cell.Parameters(), 2)

	withBias := NewSimpleCell[*cpu.Backend](2, 3, CellConfig{}, testRng(), backend)
	assert.Len(t, withBias.Parameters(), 3)
}

func TestLSTMForgetBiasInit(t *testing.T) {
	backend := cpu.New()
	units := 4
	cell := NewLSTMCell[*cpu.Backend](2, units, CellConfig{}, testRng(), backend)

	bias := cell.bias.Tensor().Data()
	require.Len(t, bias, 4*units)
	for i, v := range bias {
		if i >= units && i < 2*units {
			assert.Equal(t, float32(1), v, "forget slot %d", i)
		} else {
			assert.Equal(t, float32(0), v, "slot %d", i)
		}
	}
}

func TestLSTMZeroKernelStep(t *testing.T) {
	backend := cpu.New()
	cell := NewLSTMCell[*cpu.Backend](1, 1, CellConfig{}, testRng(), backend)
	clear(cell.kernel.Tensor().Data())
	clear(cell.recurrent.Tensor().Data())

	x := mustTensor(t, backend, []float32{7}, tensor.Shape{1, 1})
	state := State[*cpu.Backend]{
		mustTensor(t, backend, []float32{0}, tensor.Shape{1, 1}), // h
		mustTensor(t, backend, []float32{1}, tensor.Shape{1, 1}), // c
	}

	outs, next := cell.Step([]*tensor.Tensor[float32, *cpu.Backend]{x}, state)

	// With zero kernels only the biases survive: every gate sees 0
	// except forget, which starts at 1.
	f := sigmoid64(1)
	wantC := f * 1
	wantH := 0.5 * math.Tanh(wantC)
	assert.InDelta(t, wantC, float64(next[1].At(0, 0)), 1e-6)
	assert.InDelta(t, wantH, float64(next[0].At(0, 0)), 1e-6)
	assert.InDelta(t, wantH, float64(outs[0].At(0, 0)), 1e-6)
}

func TestLSTMStateSlots(t *testing.T) {
	backend := cpu.New()
	cell := NewLSTMCell[*cpu.Backend](3, 5, CellConfig{}, testRng(), backend)

	require.Equal(t, []tensor.Shape{{5}, {5}}, cell.StateSpec())
	zero := cell.ZeroState(2)
	require.Len(t, zero, 2)
	assert.True(t, zero[0].Shape().Equal(tensor.Shape{2, 5}))
	assert.True(t, zero[1].Shape().Equal(tensor.Shape{2, 5}))
}

func TestGRUZeroKernelStep(t *testing.T) {
	backend := cpu.New()
	cell := NewGRUCell[*cpu.Backend](1, 1, CellConfig{}, testRng(), backend)
	clear(cell.kernel.Tensor().Data())
	clear(cell.recurrent.Tensor().Data())

	x := mustTensor(t, backend, []float32{5}, tensor.Shape{1, 1})
	h := State[*cpu.Backend]{mustTensor(t, backend, []float32{2}, tensor.Shape{1, 1})}

	outs, next := cell.Step([]*tensor.Tensor[float32, *cpu.Backend]{x}, h)

	// z = r = sigmoid(0) = 0.5, candidate = tanh(0) = 0, so the new
	// state is half the old one.
	assert.InDelta(t, 1.0, float64(outs[0].At(0, 0)), 1e-6)
	assert.InDelta(t, 1.0, float64(next[0].At(0, 0)), 1e-6)
}

func TestGRUSeparateBiases(t *testing.T) {
	backend := cpu.New()
	cell := NewGRUCell[*cpu.Backend](2, 3, CellConfig{}, testRng(), backend)
	assert.Len(t, cell.Parameters(), 4)

	noBias := NewGRUCell[*cpu.Backend](2, 3, CellConfig{NoBias: true}, testRng(), backend)
	assert.Len(t, noBias.Parameters(), 2)
	assert.Nil(t, noBias.biasIn)
	assert.Nil(t, noBias.biasRec)
}

func TestCellConstructorPanics(t *testing.T) {
	backend := cpu.New()
	for name, build := range map[string]func(){
		"simple": func() { NewSimpleCell[*cpu.Backend](0, 4, CellConfig{}, testRng(), backend) },
		"lstm":   func() { NewLSTMCell[*cpu.Backend](3, -1, CellConfig{}, testRng(), backend) },
		"gru":    func() { NewGRUCell[*cpu.Backend](0, 0, CellConfig{}, testRng(), backend) },
	} {
		t.Run(name, func(t *testing.T) {
			assert.Panics(t, build)
		})
	}
}

func TestCellSpecsMatchDims(t *testing.T) {
	backend := cpu.New()
	cell := NewGRUCell[*cpu.Backend](7, 11, CellConfig{}, testRng(), backend)

	assert.Equal(t, []tensor.Shape{{7}}, cell.InputSpec())
	assert.Equal(t, []tensor.Shape{{11}}, cell.StateSpec())
	assert.Equal(t, []tensor.Shape{{11}}, cell.OutputSpec())
	assert.Equal(t, 7, cell.InputSize())
	assert.Equal(t, 11, cell.Units())

	assert.True(t, cell.kernel.Tensor().Shape().Equal(tensor.Shape{7, 33}))
	assert.True(t, cell.recurrent.Tensor().Shape().Equal(tensor.Shape{11, 33}))
}

func TestStepLeavesArgumentsIntact(t *testing.T) {
	backend := cpu.New()
	cell := NewSimpleCell[*cpu.Backend](2, 3, CellConfig{}, testRng(), backend)

	x := mustTensor(t, backend, []float32{1, 2}, tensor.Shape{1, 2})
	h := State[*cpu.Backend]{mustTensor(t, backend, []float32{0.1, 0.2, 0.3}, tensor.Shape{1, 3})}

	xBefore := append([]float32(nil), x.Data()...)
	hBefore := append([]float32(nil), h[0].Data()...)

	cell.Step([]*tensor.Tensor[float32, *cpu.Backend]{x}, h)

	assert.Equal(t, xBefore, x.Data())
	assert.Equal(t, hBefore, h[0].Data())
}
