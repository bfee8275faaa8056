package cpu

import (
	"math"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Softmax computes a numerically stable softmax along dim.
func (c *Backend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	mustFloat(x, "Softmax")
	shape := x.Shape()
	dim = normDim(dim, len(shape))
	outer, size, inner := outerInner(shape, dim)

	out := c.alloc(shape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		softmaxLanes(x.AsFloat32(), out.AsFloat32(), outer, size, inner, c.par)
	default:
		softmaxLanes(x.AsFloat64(), out.AsFloat64(), outer, size, inner, c.par)
	}
	return out
}

// softmaxLanes runs one softmax per (outer, inner) lane, striding by
// inner along dim.
func softmaxLanes[T float32 | float64](in, out []T, outer, size, inner int, par parallelConfig) {
	forElems(outer*inner, par, func(start, end int) {
		for lane := start; lane < end; lane++ {
			o, i := lane/inner, lane%inner
			base := o*size*inner + i

			maxV := in[base]
			for s := 1; s < size; s++ {
				if v := in[base+s*inner]; v > maxV {
					maxV = v
				}
			}

			var sum T
			for s := 0; s < size; s++ {
				e := T(math.Exp(float64(in[base+s*inner] - maxV)))
				out[base+s*inner] = e
				sum += e
			}
			for s := 0; s < size; s++ {
				out[base+s*inner] /= sum
			}
		}
	})
}
