package cpu

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Reshape returns a view of x under a new shape with the same element count.
func (c *Backend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return x.WithShape(shape)
}

// Transpose permutes the axes of x. With no axes given, a 2D tensor is
// transposed; higher ranks require an explicit permutation.
func (c *Backend) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := x.Shape()
	rank := len(shape)

	if len(axes) == 0 {
		if rank != 2 {
			panic(fmt.Sprintf("cpu: Transpose without axes requires a 2D tensor, got rank %d", rank))
		}
		axes = []int{1, 0}
	}
	if len(axes) != rank {
		panic(fmt.Sprintf("cpu: Transpose got %d axes for rank %d", len(axes), rank))
	}
	seen := make([]bool, rank)
	for _, ax := range axes {
		if ax < 0 || ax >= rank || seen[ax] {
			panic(fmt.Sprintf("cpu: Transpose axes %v are not a permutation of rank %d", axes, rank))
		}
		seen[ax] = true
	}

	outShape := make(tensor.Shape, rank)
	for i, ax := range axes {
		outShape[i] = shape[ax]
	}
	out := c.alloc(outShape, x.DType())

	srcStrides := shape.Strides()
	dstStrides := outShape.Strides()
	elemSize := x.DType().Size()
	src, dst := x.Bytes(), out.Bytes()

	// Walk every output element, mapping its coordinates back to the
	// source offset through the permuted strides.
	n := x.NumElements()
	coords := make([]int, rank)
	for flat := 0; flat < n; flat++ {
		rem := flat
		for d := 0; d < rank; d++ {
			coords[d] = rem / dstStrides[d]
			rem %= dstStrides[d]
		}
		srcOff := 0
		for d := 0; d < rank; d++ {
			srcOff += coords[d] * srcStrides[axes[d]]
		}
		copy(dst[flat*elemSize:(flat+1)*elemSize], src[srcOff*elemSize:(srcOff+1)*elemSize])
	}
	return out
}

// Cat concatenates tensors along dim. All other dimensions must match.
func (c *Backend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cpu: Cat of zero tensors")
	}
	first := tensors[0]
	dim = normDim(dim, len(first.Shape()))

	total := 0
	for _, t := range tensors {
		s := t.Shape()
		if len(s) != len(first.Shape()) {
			panic(fmt.Sprintf("cpu: Cat rank mismatch: %v vs %v", first.Shape(), s))
		}
		for i, d := range s {
			if i != dim && d != first.Shape()[i] {
				panic(fmt.Sprintf("cpu: Cat shapes %v and %v differ outside dim %d", first.Shape(), s, dim))
			}
		}
		if t.DType() != first.DType() {
			panic("cpu: Cat with mixed dtypes")
		}
		total += s[dim]
	}

	outShape := first.Shape().Clone()
	outShape[dim] = total
	out := c.alloc(outShape, first.DType())

	outer, _, inner := outerInner(outShape, dim)
	elemSize := first.DType().Size()
	rowBytes := inner * elemSize
	dst := out.Bytes()

	for o := 0; o < outer; o++ {
		dstOff := o * total * rowBytes
		for _, t := range tensors {
			size := t.Shape()[dim]
			chunk := size * rowBytes
			src := t.Bytes()[o*chunk : (o+1)*chunk]
			copy(dst[dstOff:dstOff+chunk], src)
			dstOff += chunk
		}
	}
	return out
}

// Chunk splits x into n equal parts along dim. The dimension must divide
// evenly.
func (c *Backend) Chunk(x *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	shape := x.Shape()
	dim = normDim(dim, len(shape))
	if n <= 0 || shape[dim]%n != 0 {
		panic(fmt.Sprintf("cpu: Chunk cannot split dim of size %d into %d parts", shape[dim], n))
	}
	size := shape[dim] / n
	out := make([]*tensor.RawTensor, n)
	for i := range out {
		out[i] = c.Narrow(x, dim, i*size, size)
	}
	return out
}

// Narrow copies the slice [start, start+length) of x along dim.
func (c *Backend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	dim = normDim(dim, len(shape))
	if start < 0 || length <= 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("cpu: Narrow range [%d, %d) exceeds dim of size %d", start, start+length, shape[dim]))
	}

	outShape := shape.Clone()
	outShape[dim] = length
	out := c.alloc(outShape, x.DType())

	outer, size, inner := outerInner(shape, dim)
	elemSize := x.DType().Size()
	rowBytes := inner * elemSize
	src, dst := x.Bytes(), out.Bytes()

	for o := 0; o < outer; o++ {
		srcOff := (o*size + start) * rowBytes
		dstOff := o * length * rowBytes
		copy(dst[dstOff:dstOff+length*rowBytes], src[srcOff:srcOff+length*rowBytes])
	}
	return out
}

// Select copies the index'th slice of x along dim, dropping the dimension.
func (c *Backend) Select(x *tensor.RawTensor, dim, index int) *tensor.RawTensor {
	shape := x.Shape()
	dim = normDim(dim, len(shape))
	if index < 0 || index >= shape[dim] {
		panic(fmt.Sprintf("cpu: Select index %d out of range for dim of size %d", index, shape[dim]))
	}
	narrowed := c.Narrow(x, dim, index, 1)
	return c.Squeeze(narrowed, dim)
}

// Unsqueeze inserts a dimension of size 1 at dim.
func (c *Backend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape) + 1
	}
	if dim < 0 || dim > len(shape) {
		panic(fmt.Sprintf("cpu: Unsqueeze dim %d out of range for rank %d", dim, len(shape)))
	}
	outShape := make(tensor.Shape, 0, len(shape)+1)
	outShape = append(outShape, shape[:dim]...)
	outShape = append(outShape, 1)
	outShape = append(outShape, shape[dim:]...)
	return x.WithShape(outShape)
}

// Squeeze removes a dimension of size 1 at dim.
func (c *Backend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = normDim(dim, len(shape))
	if shape[dim] != 1 {
		panic(fmt.Sprintf("cpu: Squeeze dim %d has size %d, not 1", dim, shape[dim]))
	}
	outShape := make(tensor.Shape, 0, len(shape)-1)
	outShape = append(outShape, shape[:dim]...)
	outShape = append(outShape, shape[dim+1:]...)
	return x.WithShape(outShape)
}
