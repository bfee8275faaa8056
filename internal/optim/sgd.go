package optim

import (
	"github.com/tempo-ml/tempo/internal/nn"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Without momentum: param -= lr * grad.
// With momentum:    v = momentum*v + grad; param -= lr * v.
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter[B]][]float32
}

// SGDConfig configures SGD.
type SGDConfig struct {
	LR       float32 // Learning rate; defaults to 0.01.
	Momentum float32 // Momentum factor in [0, 1); defaults to 0.
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter[B]][]float32),
	}
}

// Step applies one SGD update from the gradients stored on parameters.
func (s *SGD[B]) Step() {
	for _, p := range s.params {
		grad := p.Grad()
		if grad == nil {
			continue
		}
		w := p.Tensor().Data()
		g := grad.Data()

		if s.momentum == 0 {
			for i := range w {
				w[i] -= s.lr * g[i]
			}
			continue
		}

		v, ok := s.velocities[p]
		if !ok {
			v = make([]float32, len(w))
			s.velocities[p] = v
		}
		for i := range w {
			v[i] = s.momentum*v[i] + g[i]
			w[i] -= s.lr * v[i]
		}
	}
}

// ZeroGrad clears stored gradients.
func (s *SGD[B]) ZeroGrad() { zeroGrads(s.params) }
