package cpu

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/parallel"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// MatMul computes [M, K] @ [K, N] -> [M, N] with cache blocking over K
// and N, parallelized across output rows.
func (c *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	mustFloat(a, "MatMul")
	mustSameType(a, b, "MatMul")

	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("cpu: MatMul requires 2D operands, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("cpu: MatMul inner dimensions differ: %v @ %v", as, bs))
	}

	m, k, n := as[0], as[1], bs[1]
	out := c.alloc(tensor.Shape{m, n}, a.DType())

	switch a.DType() {
	case tensor.Float32:
		matmulBlocked(a.AsFloat32(), b.AsFloat32(), out.AsFloat32(), m, k, n, c.blockDim, c.par)
	default:
		matmulBlocked(a.AsFloat64(), b.AsFloat64(), out.AsFloat64(), m, k, n, c.blockDim, c.par)
	}
	return out
}

// matmulBlocked is an ikj-ordered kernel with blocking over k and j.
// The inner j loop streams both b and dst rows, which the compiler can
// vectorize.
func matmulBlocked[T float32 | float64](a, b, dst []T, m, k, n, block int, par parallel.Config) {
	// Row-blocked outer parallelism: each worker owns a contiguous
	// range of output rows, so no two goroutines write the same row.
	parallel.Ranges(m, par, func(rowStart, rowEnd int) {
		for kb := 0; kb < k; kb += block {
			kEnd := min(kb+block, k)
			for jb := 0; jb < n; jb += block {
				jEnd := min(jb+block, n)
				for i := rowStart; i < rowEnd; i++ {
					aRow := a[i*k : (i+1)*k]
					dstRow := dst[i*n : (i+1)*n]
					for kk := kb; kk < kEnd; kk++ {
						av := aRow[kk]
						if av == 0 {
							continue
						}
						bRow := b[kk*n : (kk+1)*n]
						for j := jb; j < jEnd; j++ {
							dstRow[j] += av * bRow[j]
						}
					}
				}
			}
		}
	})
}
