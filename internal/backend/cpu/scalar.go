package cpu

import "github.com/tempo-ml/tempo/internal/tensor"

// AddScalar returns x + s element-wise.
func (c *Backend) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return c.unary(x, "AddScalar",
		func(v float32) float32 { return v + float32(s) },
		func(v float64) float64 { return v + s })
}

// MulScalar returns x * s element-wise.
func (c *Backend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return c.unary(x, "MulScalar",
		func(v float32) float32 { return v * float32(s) },
		func(v float64) float64 { return v * s })
}

func (c *Backend) unary(x *tensor.RawTensor, op string,
	f32 func(float32) float32, f64 func(float64) float64,
) *tensor.RawTensor {
	mustFloat(x, op)
	out := c.alloc(x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		in, dst := x.AsFloat32(), out.AsFloat32()
		forElems(len(in), c.par, func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = f32(in[i])
			}
		})
	default:
		in, dst := x.AsFloat64(), out.AsFloat64()
		forElems(len(in), c.par, func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = f64(in[i])
			}
		})
	}
	return out
}
