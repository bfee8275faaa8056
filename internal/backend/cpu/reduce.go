package cpu

import (
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Sum reduces the whole tensor to a single-element tensor of shape [1].
func (c *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	mustFloat(x, "Sum")
	out := c.alloc(tensor.Shape{1}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		var sum float32
		for _, v := range x.AsFloat32() {
			sum += v
		}
		out.AsFloat32()[0] = sum
	default:
		var sum float64
		for _, v := range x.AsFloat64() {
			sum += v
		}
		out.AsFloat64()[0] = sum
	}
	return out
}

// SumDim sums along dim. With keepDim the reduced dimension stays as
// size 1; otherwise it is dropped.
func (c *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim(x, dim, keepDim, false)
}

// MeanDim averages along dim, with the same keepDim behavior as SumDim.
func (c *Backend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim(x, dim, keepDim, true)
}

func (c *Backend) reduceDim(x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	mustFloat(x, "SumDim")
	shape := x.Shape()
	dim = normDim(dim, len(shape))
	outer, size, inner := outerInner(shape, dim)

	out := c.alloc(reducedShape(shape, dim, keepDim), x.DType())

	switch x.DType() {
	case tensor.Float32:
		reduceLanes(x.AsFloat32(), out.AsFloat32(), outer, size, inner, mean, c.par)
	default:
		reduceLanes(x.AsFloat64(), out.AsFloat64(), outer, size, inner, mean, c.par)
	}
	return out
}

func reduceLanes[T float32 | float64](in, out []T, outer, size, inner int, mean bool, par parallelConfig) {
	forElems(outer*inner, par, func(start, end int) {
		for lane := start; lane < end; lane++ {
			o, i := lane/inner, lane%inner
			base := o*size*inner + i

			var sum T
			for s := 0; s < size; s++ {
				sum += in[base+s*inner]
			}
			if mean {
				sum /= T(size)
			}
			out[o*inner+i] = sum
		}
	})
}

// Argmax returns the index of the maximum along dim as an Int64 tensor.
// Ties resolve to the lowest index.
func (c *Backend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	mustFloat(x, "Argmax")
	shape := x.Shape()
	dim = normDim(dim, len(shape))
	outer, size, inner := outerInner(shape, dim)

	out := c.alloc(reducedShape(shape, dim, false), tensor.Int64)
	idx := out.AsInt64()

	switch x.DType() {
	case tensor.Float32:
		argmaxLanes(x.AsFloat32(), idx, outer, size, inner)
	default:
		argmaxLanes(x.AsFloat64(), idx, outer, size, inner)
	}
	return out
}

func argmaxLanes[T float32 | float64](in []T, idx []int64, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			base := o*size*inner + i
			best, bestV := 0, in[base]
			for s := 1; s < size; s++ {
				if v := in[base+s*inner]; v > bestV {
					best, bestV = s, v
				}
			}
			idx[o*inner+i] = int64(best)
		}
	}
}

func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			out = append(out, d)
		case keepDim:
			out = append(out, 1)
		}
	}
	if len(out) == 0 {
		out = tensor.Shape{1}
	}
	return out
}
