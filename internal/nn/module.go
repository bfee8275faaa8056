// Package nn implements neural network building blocks for the Tempo
// framework: the Module interface, trainable Parameters, dense and
// convolutional layers, activations, and a cross-entropy loss with an
// analytic gradient for training linear readouts.
//
// There is no automatic differentiation here. Layers compute forward
// passes; gradients for the pieces that need training are computed
// analytically by their callers and handed to the optim package.
package nn

import (
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules compose into pipelines:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, rng, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear(128, 10, rng, backend),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the module's output for the given input.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns the module's trainable parameters, including
	// those of nested modules. Modules without parameters return nil.
	Parameters() []*Parameter[B]
}
