// Package optim implements parameter-update algorithms. Optimizers
// consume gradients stored on parameters (via Parameter.SetGrad) and
// mutate parameter tensors in place between forward passes; they never
// run during one.
package optim

import (
	"github.com/tempo-ml/tempo/internal/nn"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Optimizer is the common interface for parameter-update algorithms.
type Optimizer interface {
	// Step applies one update using the gradients currently stored on
	// the parameters. Parameters with no gradient are skipped.
	Step()

	// ZeroGrad clears stored gradients on all parameters.
	ZeroGrad()
}

// zeroGrads clears gradients on a parameter list.
func zeroGrads[B tensor.Backend](params []*nn.Parameter[B]) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
