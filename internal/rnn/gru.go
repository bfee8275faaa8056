package rnn

import (
	"fmt"
	"math/rand"

	"github.com/tempo-ml/tempo/internal/nn"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// GRUCell is a gated recurrent unit with one state slot. It uses the
// reset-after formulation (the reset gate scales the already-projected
// recurrent candidate), which keeps the whole recurrent contribution a
// single matmul:
//
//	p = x @ Wx + bIn                 (packed [z | r | n])
//	q = h @ Wh + bRec
//	z = sigmoid(p_z + q_z)
//	r = sigmoid(p_r + q_r)
//	n = act(p_n + r * q_n)
//	h' = z * h + (1 - z) * n
type GRUCell[B tensor.Backend] struct {
	inputSize int
	units     int
	cfg       CellConfig

	kernel    *nn.Parameter[B] // [inputSize, 3*units]
	recurrent *nn.Parameter[B] // [units, 3*units]
	biasIn    *nn.Parameter[B] // [3*units], nil when NoBias
	biasRec   *nn.Parameter[B] // [3*units], nil when NoBias

	backend B
}

// NewGRUCell creates a GRU cell with Xavier input kernel, orthogonal
// recurrent kernel, and zero biases.
func NewGRUCell[B tensor.Backend](inputSize, units int, cfg CellConfig, rng *rand.Rand, backend B) *GRUCell[B] {
	if inputSize <= 0 || units <= 0 {
		panic(fmt.Sprintf("rnn: invalid gru cell dims input=%d, units=%d", inputSize, units))
	}
	c := &GRUCell[B]{
		inputSize: inputSize,
		units:     units,
		cfg:       cfg,
		kernel:    nn.NewParameter("gru.kernel", nn.Xavier(inputSize, units, tensor.Shape{inputSize, 3 * units}, rng, backend)),
		recurrent: nn.NewParameter("gru.recurrent", nn.Orthogonal[B](tensor.Shape{units, 3 * units}, rng, backend)),
		backend:   backend,
	}
	if !cfg.NoBias {
		c.biasIn = nn.NewParameter("gru.bias_input", nn.Zeros(tensor.Shape{3 * units}, backend))
		c.biasRec = nn.NewParameter("gru.bias_recurrent", nn.Zeros(tensor.Shape{3 * units}, backend))
	}
	return c
}

// InputSize returns the per-step feature width.
func (c *GRUCell[B]) InputSize() int { return c.inputSize }

// Units returns the hidden width.
func (c *GRUCell[B]) Units() int { return c.units }

// InputSpec declares one [inputSize] input slot.
func (c *GRUCell[B]) InputSpec() []tensor.Shape { return []tensor.Shape{{c.inputSize}} }

// StateSpec declares one [units] state slot.
func (c *GRUCell[B]) StateSpec() []tensor.Shape { return []tensor.Shape{{c.units}} }

// OutputSpec declares one [units] output slot.
func (c *GRUCell[B]) OutputSpec() []tensor.Shape { return []tensor.Shape{{c.units}} }

// ZeroState returns the all-zero hidden state.
func (c *GRUCell[B]) ZeroState(batch int) State[B] {
	return zeroState(c.StateSpec(), batch, c.backend)
}

// Step advances one time step.
func (c *GRUCell[B]) Step(inputs []*tensor.Tensor[float32, B], state State[B]) ([]*tensor.Tensor[float32, B], State[B]) {
	p := c.projectInputs(inputs[0])
	return c.stepFused(p, state)
}

// projectInputs computes x @ Wx + bIn for any number of rows.
func (c *GRUCell[B]) projectInputs(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	p := x.MatMul(c.kernel.Tensor())
	if c.biasIn != nil {
		p = p.Add(c.biasIn.Tensor())
	}
	return p
}

// stepFused advances one step from a precomputed input projection.
func (c *GRUCell[B]) stepFused(proj *tensor.Tensor[float32, B], state State[B]) ([]*tensor.Tensor[float32, B], State[B]) {
	h := state[0]
	backend := c.backend

	q := h.MatMul(c.recurrent.Tensor())
	if c.biasRec != nil {
		q = q.Add(c.biasRec.Tensor())
	}

	p3 := backend.Chunk(proj.Raw(), 3, 1)
	q3 := backend.Chunk(q.Raw(), 3, 1)

	z := tensor.New[float32, B](backend.Sigmoid(backend.Add(p3[0], q3[0])), backend)
	r := tensor.New[float32, B](backend.Sigmoid(backend.Add(p3[1], q3[1])), backend)

	qn := tensor.New[float32, B](q3[2], backend)
	pn := tensor.New[float32, B](p3[2], backend)
	n := tensor.New[float32, B](c.cfg.Activation.apply(backend, pn.Add(r.Mul(qn)).Raw()), backend)

	oneMinusZ := z.MulScalar(-1).AddScalar(1)
	newH := z.Mul(h).Add(oneMinusZ.Mul(n))

	return []*tensor.Tensor[float32, B]{newH}, State[B]{newH.Clone()}
}

// fusable reports whether the configuration matches the fused profile.
func (c *GRUCell[B]) fusable() bool {
	return c.cfg.Activation == Tanh && !c.cfg.NoBias
}

// Parameters returns kernel, recurrent kernel, and biases.
func (c *GRUCell[B]) Parameters() []*nn.Parameter[B] {
	params := []*nn.Parameter[B]{c.kernel, c.recurrent}
	if c.biasIn != nil {
		params = append(params, c.biasIn, c.biasRec)
	}
	return params
}
