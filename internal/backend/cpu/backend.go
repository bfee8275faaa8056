// Package cpu implements the tensor.Backend interface in pure Go.
//
// Kernels are written against contiguous row-major buffers. Row-level
// loops fan out through internal/parallel; the matmul block size is
// picked once at startup from CPU feature detection.
package cpu

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/parallel"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Verify interface compliance at compile time.
var _ tensor.Backend = (*Backend)(nil)

// Backend is the pure-Go CPU compute backend.
type Backend struct {
	par      parallel.Config
	blockDim int
}

// New creates a CPU backend with default parallelism and a matmul block
// size chosen from the host's cache/SIMD profile.
func New() *Backend {
	return &Backend{
		par:      parallel.DefaultConfig(),
		blockDim: matmulBlockDim(),
	}
}

// NewSequential creates a CPU backend that never fans out goroutines.
// Useful for deterministic profiling and small unit tests.
func NewSequential() *Backend {
	return &Backend{
		par:      parallel.Config{Enabled: false},
		blockDim: matmulBlockDim(),
	}
}

// Name returns the backend name.
func (c *Backend) Name() string { return "cpu" }

// Device returns the backend's device placement.
func (c *Backend) Device() tensor.Device { return tensor.CPU }

// alloc creates an uninitialized result tensor on this backend.
func (c *Backend) alloc(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	return tensor.MustRaw(shape, dtype, c.Device())
}

func mustFloat(t *tensor.RawTensor, op string) {
	if t.DType() != tensor.Float32 && t.DType() != tensor.Float64 {
		panic(fmt.Sprintf("cpu: %s requires a float tensor, got %s", op, t.DType()))
	}
}

func mustSameType(a, b *tensor.RawTensor, op string) {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("cpu: %s operands have mixed types %s and %s", op, a.DType(), b.DType()))
	}
}

type parallelConfig = parallel.Config

// forElems fans a contiguous element range out across workers.
func forElems(n int, cfg parallelConfig, f func(start, end int)) {
	parallel.Ranges(n, cfg, f)
}

// normDim resolves a possibly-negative dimension index against rank.
func normDim(dim, rank int) int {
	if dim < 0 {
		dim += rank
	}
	if dim < 0 || dim >= rank {
		panic(fmt.Sprintf("cpu: dimension %d out of range for rank %d", dim, rank))
	}
	return dim
}

// outerInner splits a shape around dim: the product of dimensions before
// dim, the size of dim itself, and the product of dimensions after it.
func outerInner(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}
