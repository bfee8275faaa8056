package optim

import (
	"math"

	"github.com/tempo-ml/tempo/internal/nn"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Adam implements the Adam optimizer (Kingma & Ba, 2015) with bias
// correction.
type Adam[B tensor.Backend] struct {
	params []*nn.Parameter[B]
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	step   int

	m map[*nn.Parameter[B]][]float32
	v map[*nn.Parameter[B]][]float32
}

// AdamConfig configures Adam.
type AdamConfig struct {
	LR    float32 // Learning rate; defaults to 0.001.
	Beta1 float32 // First-moment decay; defaults to 0.9.
	Beta2 float32 // Second-moment decay; defaults to 0.999.
	Eps   float32 // Denominator fuzz; defaults to 1e-8.
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Beta1 == 0 {
		config.Beta1 = 0.9
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam[B]{
		params: params,
		lr:     config.LR,
		beta1:  config.Beta1,
		beta2:  config.Beta2,
		eps:    config.Eps,
		m:      make(map[*nn.Parameter[B]][]float32),
		v:      make(map[*nn.Parameter[B]][]float32),
	}
}

// Step applies one Adam update from the gradients stored on parameters.
func (a *Adam[B]) Step() {
	a.step++
	bc1 := 1 - float32(math.Pow(float64(a.beta1), float64(a.step)))
	bc2 := 1 - float32(math.Pow(float64(a.beta2), float64(a.step)))

	for _, p := range a.params {
		grad := p.Grad()
		if grad == nil {
			continue
		}
		w := p.Tensor().Data()
		g := grad.Data()

		m, ok := a.m[p]
		if !ok {
			m = make([]float32, len(w))
			a.m[p] = m
		}
		v, ok := a.v[p]
		if !ok {
			v = make([]float32, len(w))
			a.v[p] = v
		}

		for i := range w {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
			v[i] = a.beta2*v[i] + (1-a.beta2)*g[i]*g[i]
			mHat := m[i] / bc1
			vHat := v[i] / bc2
			w[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// ZeroGrad clears stored gradients.
func (a *Adam[B]) ZeroGrad() { zeroGrads(a.params) }
