package rnn

import (
	"fmt"
	"math/rand"

	"github.com/tempo-ml/tempo/internal/nn"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// LSTMCell is a long short-term memory cell with two state slots:
// the hidden state h and the cell memory c.
//
//	z = x @ Wx + h @ Wh + b          (gates packed [i | f | g | o])
//	c' = sigmoid(f) * c + sigmoid(i) * act(g)
//	h' = sigmoid(o) * act(c')
//
// The forget-gate bias initializes to one, the standard guard against
// forgetting everything early in training.
type LSTMCell[B tensor.Backend] struct {
	inputSize int
	units     int
	cfg       CellConfig

	kernel    *nn.Parameter[B] // [inputSize, 4*units]
	recurrent *nn.Parameter[B] // [units, 4*units]
	bias      *nn.Parameter[B] // [4*units], nil when NoBias

	backend B
}

// NewLSTMCell creates an LSTM cell with Xavier input kernel,
// orthogonal recurrent kernel, and unit forget bias.
func NewLSTMCell[B tensor.Backend](inputSize, units int, cfg CellConfig, rng *rand.Rand, backend B) *LSTMCell[B] {
	if inputSize <= 0 || units <= 0 {
		panic(fmt.Sprintf("rnn: invalid lstm cell dims input=%d, units=%d", inputSize, units))
	}
	c := &LSTMCell[B]{
		inputSize: inputSize,
		units:     units,
		cfg:       cfg,
		kernel:    nn.NewParameter("lstm.kernel", nn.Xavier(inputSize, units, tensor.Shape{inputSize, 4 * units}, rng, backend)),
		recurrent: nn.NewParameter("lstm.recurrent", nn.Orthogonal[B](tensor.Shape{units, 4 * units}, rng, backend)),
		backend:   backend,
	}
	if !cfg.NoBias {
		bias := nn.Zeros(tensor.Shape{4 * units}, backend)
		data := bias.Data()
		for i := units; i < 2*units; i++ {
			data[i] = 1 // forget gate
		}
		c.bias = nn.NewParameter("lstm.bias", bias)
	}
	return c
}

// InputSize returns the per-step feature width.
func (c *LSTMCell[B]) InputSize() int { return c.inputSize }

// Units returns the hidden width.
func (c *LSTMCell[B]) Units() int { return c.units }

// InputSpec declares one [inputSize] input slot.
func (c *LSTMCell[B]) InputSpec() []tensor.Shape { return []tensor.Shape{{c.inputSize}} }

// StateSpec declares the h and c slots, both [units].
func (c *LSTMCell[B]) StateSpec() []tensor.Shape { return []tensor.Shape{{c.units}, {c.units}} }

// OutputSpec declares one [units] output slot.
func (c *LSTMCell[B]) OutputSpec() []tensor.Shape { return []tensor.Shape{{c.units}} }

// ZeroState returns zero h and c.
func (c *LSTMCell[B]) ZeroState(batch int) State[B] {
	return zeroState(c.StateSpec(), batch, c.backend)
}

// Step advances one time step.
func (c *LSTMCell[B]) Step(inputs []*tensor.Tensor[float32, B], state State[B]) ([]*tensor.Tensor[float32, B], State[B]) {
	p := c.projectInputs(inputs[0])
	return c.stepFused(p, state)
}

// projectInputs computes x @ Wx + b for any number of rows.
func (c *LSTMCell[B]) projectInputs(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	p := x.MatMul(c.kernel.Tensor())
	if c.bias != nil {
		p = p.Add(c.bias.Tensor())
	}
	return p
}

// stepFused advances one step from a precomputed input projection.
func (c *LSTMCell[B]) stepFused(proj *tensor.Tensor[float32, B], state State[B]) ([]*tensor.Tensor[float32, B], State[B]) {
	h, cell := state[0], state[1]
	backend := c.backend

	z := proj.Add(h.MatMul(c.recurrent.Tensor())) // [batch, 4*units]
	gates := backend.Chunk(z.Raw(), 4, 1)

	i := tensor.New[float32, B](backend.Sigmoid(gates[0]), backend)
	f := tensor.New[float32, B](backend.Sigmoid(gates[1]), backend)
	g := tensor.New[float32, B](c.cfg.Activation.apply(backend, gates[2]), backend)
	o := tensor.New[float32, B](backend.Sigmoid(gates[3]), backend)

	newCell := f.Mul(cell).Add(i.Mul(g))
	newH := o.Mul(tensor.New[float32, B](c.cfg.Activation.apply(backend, newCell.Raw()), backend))

	return []*tensor.Tensor[float32, B]{newH}, State[B]{newH.Clone(), newCell}
}

// fusable reports whether the configuration matches the fused profile.
func (c *LSTMCell[B]) fusable() bool {
	return c.cfg.Activation == Tanh && !c.cfg.NoBias
}

// Parameters returns kernel, recurrent kernel, and bias.
func (c *LSTMCell[B]) Parameters() []*nn.Parameter[B] {
	params := []*nn.Parameter[B]{c.kernel, c.recurrent}
	if c.bias != nil {
		params = append(params, c.bias)
	}
	return params
}
