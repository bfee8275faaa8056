package nn

import (
	"fmt"
	"math/rand"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Dropout randomly zeroes elements during training with probability p,
// scaling survivors by 1/(1-p) (inverted dropout). In eval mode it is
// the identity.
type Dropout[B tensor.Backend] struct {
	p        float64
	training bool
	rng      *rand.Rand
}

// NewDropout creates a Dropout module in training mode.
func NewDropout[B tensor.Backend](p float64, rng *rand.Rand) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("dropout: probability %v outside [0, 1)", p))
	}
	return &Dropout[B]{p: p, training: true, rng: rng}
}

// Train switches dropout on.
func (d *Dropout[B]) Train() { d.training = true }

// Eval switches dropout off; Forward becomes the identity.
func (d *Dropout[B]) Eval() { d.training = false }

// Forward applies the mask in training mode.
func (d *Dropout[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.p == 0 {
		return input
	}
	out := input.Clone()
	data := out.Data()
	scale := float32(1 / (1 - d.p))
	for i := range data {
		if d.rng.Float64() < d.p {
			data[i] = 0
		} else {
			data[i] *= scale
		}
	}
	return out
}

// Parameters returns nil.
func (d *Dropout[B]) Parameters() []*Parameter[B] { return nil }
