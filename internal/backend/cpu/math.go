package cpu

import (
	"math"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Exp returns e^x element-wise.
func (c *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, "Exp",
		func(v float32) float32 { return float32(math.Exp(float64(v))) },
		math.Exp)
}

// Log returns the natural logarithm element-wise.
func (c *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, "Log",
		func(v float32) float32 { return float32(math.Log(float64(v))) },
		math.Log)
}

// Sqrt returns the square root element-wise.
func (c *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, "Sqrt",
		func(v float32) float32 { return float32(math.Sqrt(float64(v))) },
		math.Sqrt)
}

// Tanh returns the hyperbolic tangent element-wise.
func (c *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, "Tanh",
		func(v float32) float32 { return float32(math.Tanh(float64(v))) },
		math.Tanh)
}

// Sigmoid returns 1 / (1 + e^-x) element-wise.
func (c *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, "Sigmoid",
		func(v float32) float32 { return float32(1 / (1 + math.Exp(-float64(v)))) },
		func(v float64) float64 { return 1 / (1 + math.Exp(-v)) })
}

// ReLU returns max(0, x) element-wise.
func (c *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary(x, "ReLU",
		func(v float32) float32 { return max(v, 0) },
		func(v float64) float64 { return max(v, 0) })
}
