package nn

import (
	"math"
	"math/rand"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Xavier returns a tensor initialized from the Glorot uniform
// distribution U(-b, b) with b = sqrt(6 / (fanIn + fanOut)).
// The RNG is caller-supplied so initialization stays reproducible.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		data[i] = float32((rng.Float64()*2 - 1) * bound)
	}
	return t
}

// Orthogonal returns a square-ish matrix with approximately orthonormal
// rows, the usual initialization for recurrent kernels. It runs a few
// Gram-Schmidt sweeps over Gaussian rows; exact orthogonality is not
// required for the state transition to stay well-conditioned.
func Orthogonal[B tensor.Backend](shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	if len(shape) != 2 {
		panic("nn: Orthogonal requires a 2D shape")
	}
	rows, cols := shape[0], shape[1]
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = rng.NormFloat64()
		}
	}

	for i := 0; i < rows; i++ {
		for k := 0; k < i; k++ {
			var dot float64
			for j := 0; j < cols; j++ {
				dot += m[i][j] * m[k][j]
			}
			for j := 0; j < cols; j++ {
				m[i][j] -= dot * m[k][j]
			}
		}
		var norm float64
		for j := 0; j < cols; j++ {
			norm += m[i][j] * m[i][j]
		}
		norm = math.Sqrt(norm)
		if norm < 1e-8 {
			continue
		}
		for j := 0; j < cols; j++ {
			m[i][j] /= norm
		}
	}

	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[i*cols+j] = float32(m[i][j])
		}
	}
	return t
}

// Zeros creates a zero tensor, the standard bias initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor of ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}
