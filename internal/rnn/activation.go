package rnn

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Activation selects the cell's candidate-state nonlinearity. The zero
// value is Tanh, the default for every built-in cell; gate activations
// are always sigmoid.
type Activation int

// Supported activations.
const (
	Tanh Activation = iota
	SigmoidAct
	ReLUAct
	Identity
)

// String returns the activation name.
func (a Activation) String() string {
	switch a {
	case Tanh:
		return "tanh"
	case SigmoidAct:
		return "sigmoid"
	case ReLUAct:
		return "relu"
	case Identity:
		return "identity"
	default:
		return "unknown"
	}
}

func (a Activation) apply(backend tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
	switch a {
	case Tanh:
		return backend.Tanh(x)
	case SigmoidAct:
		return backend.Sigmoid(x)
	case ReLUAct:
		return backend.ReLU(x)
	case Identity:
		return x
	default:
		panic(fmt.Sprintf("rnn: unknown activation %d", a))
	}
}
