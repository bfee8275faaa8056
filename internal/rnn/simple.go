package rnn

import (
	"fmt"
	"math/rand"

	"github.com/tempo-ml/tempo/internal/nn"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// CellConfig holds the options shared by the built-in cells. The zero
// value gives the default profile: tanh candidate activation, bias
// enabled. Only the default profile qualifies for the fused kernel.
type CellConfig struct {
	Activation Activation // Candidate nonlinearity; gates stay sigmoid.
	NoBias     bool       // Disable the bias term.
}

// SimpleCell is the elementary recurrent cell:
//
//	h' = act(x @ Wx + h @ Wh + b)
//
// with the new hidden state doubling as the step output.
type SimpleCell[B tensor.Backend] struct {
	inputSize int
	units     int
	cfg       CellConfig

	kernel    *nn.Parameter[B] // [inputSize, units]
	recurrent *nn.Parameter[B] // [units, units]
	bias      *nn.Parameter[B] // [units], nil when NoBias

	backend B
}

// NewSimpleCell creates a simple recurrent cell. The input kernel is
// Xavier-initialized, the recurrent kernel orthogonal, the bias zero.
func NewSimpleCell[B tensor.Backend](inputSize, units int, cfg CellConfig, rng *rand.Rand, backend B) *SimpleCell[B] {
	if inputSize <= 0 || units <= 0 {
		panic(fmt.Sprintf("rnn: invalid simple cell dims input=%d, units=%d", inputSize, units))
	}
	c := &SimpleCell[B]{
		inputSize: inputSize,
		units:     units,
		cfg:       cfg,
		kernel:    nn.NewParameter("simple.kernel", nn.Xavier(inputSize, units, tensor.Shape{inputSize, units}, rng, backend)),
		recurrent: nn.NewParameter("simple.recurrent", nn.Orthogonal[B](tensor.Shape{units, units}, rng, backend)),
		backend:   backend,
	}
	if !cfg.NoBias {
		c.bias = nn.NewParameter("simple.bias", nn.Zeros(tensor.Shape{units}, backend))
	}
	return c
}

// InputSize returns the per-step feature width.
func (c *SimpleCell[B]) InputSize() int { return c.inputSize }

// Units returns the hidden width.
func (c *SimpleCell[B]) Units() int { return c.units }

// InputSpec declares one [inputSize] input slot.
func (c *SimpleCell[B]) InputSpec() []tensor.Shape { return []tensor.Shape{{c.inputSize}} }

// StateSpec declares one [units] state slot.
func (c *SimpleCell[B]) StateSpec() []tensor.Shape { return []tensor.Shape{{c.units}} }

// OutputSpec declares one [units] output slot.
func (c *SimpleCell[B]) OutputSpec() []tensor.Shape { return []tensor.Shape{{c.units}} }

// ZeroState returns the all-zero hidden state.
func (c *SimpleCell[B]) ZeroState(batch int) State[B] {
	return zeroState(c.StateSpec(), batch, c.backend)
}

// Step advances one time step.
func (c *SimpleCell[B]) Step(inputs []*tensor.Tensor[float32, B], state State[B]) ([]*tensor.Tensor[float32, B], State[B]) {
	p := c.projectInputs(inputs[0])
	return c.stepFused(p, state)
}

// projectInputs computes x @ Wx + b for any number of rows.
func (c *SimpleCell[B]) projectInputs(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	p := x.MatMul(c.kernel.Tensor())
	if c.bias != nil {
		p = p.Add(c.bias.Tensor())
	}
	return p
}

// stepFused advances one step from a precomputed input projection.
func (c *SimpleCell[B]) stepFused(proj *tensor.Tensor[float32, B], state State[B]) ([]*tensor.Tensor[float32, B], State[B]) {
	z := proj.Add(state[0].MatMul(c.recurrent.Tensor()))
	h := tensor.New[float32, B](c.cfg.Activation.apply(c.backend, z.Raw()), c.backend)
	// Output and state stay distinct tensors so neither can be
	// corrupted through the other.
	return []*tensor.Tensor[float32, B]{h}, State[B]{h.Clone()}
}

// fusable reports whether the configuration matches the fused profile.
func (c *SimpleCell[B]) fusable() bool {
	return c.cfg.Activation == Tanh && !c.cfg.NoBias
}

// Parameters returns kernel, recurrent kernel, and bias.
func (c *SimpleCell[B]) Parameters() []*nn.Parameter[B] {
	params := []*nn.Parameter[B]{c.kernel, c.recurrent}
	if c.bias != nil {
		params = append(params, c.bias)
	}
	return params
}
