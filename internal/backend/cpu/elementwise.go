package cpu

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Add performs element-wise addition. The second operand may be a
// trailing-compatible shape (e.g. bias [U] against [B, U]); it is then
// broadcast across the leading dimensions.
func (c *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary(a, b, "Add",
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with the same broadcast rule as Add.
func (c *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary(a, b, "Sub",
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with the same broadcast rule as Add.
func (c *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary(a, b, "Mul",
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with the same broadcast rule as Add.
func (c *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary(a, b, "Div",
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

func (c *Backend) binary(a, b *tensor.RawTensor, op string,
	f32 func(float32, float32) float32, f64 func(float64, float64) float64,
) *tensor.RawTensor {
	mustFloat(a, op)
	mustSameType(a, b, op)

	repeat := broadcastRepeat(a.Shape(), b.Shape(), op)
	out := c.alloc(a.Shape(), a.DType())

	switch a.DType() {
	case tensor.Float32:
		binaryLoop(a.AsFloat32(), b.AsFloat32(), out.AsFloat32(), repeat, c.par, f32)
	default:
		binaryLoop(a.AsFloat64(), b.AsFloat64(), out.AsFloat64(), repeat, c.par, f64)
	}
	return out
}

// broadcastRepeat validates that b's shape equals a's, or equals a
// trailing slice of a's dimensions, and returns how many times b tiles
// across a.
func broadcastRepeat(a, b tensor.Shape, op string) int {
	if len(b) > len(a) {
		panic(fmt.Sprintf("cpu: %s operand rank %d exceeds %d", op, len(b), len(a)))
	}
	offset := len(a) - len(b)
	for i, d := range b {
		if a[offset+i] != d {
			panic(fmt.Sprintf("cpu: %s shapes %v and %v are incompatible", op, a, b))
		}
	}
	repeat := 1
	for _, d := range a[:offset] {
		repeat *= d
	}
	return repeat
}

func binaryLoop[T float32 | float64](a, b, out []T, repeat int, par parallelConfig, f func(T, T) T) {
	n := len(b)
	if repeat == 1 {
		forElems(len(a), par, func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = f(a[i], b[i])
			}
		})
		return
	}
	forElems(repeat, par, func(start, end int) {
		for r := start; r < end; r++ {
			base := r * n
			for i := 0; i < n; i++ {
				out[base+i] = f(a[base+i], b[i])
			}
		}
	})
}
