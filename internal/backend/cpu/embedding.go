package cpu

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Embedding gathers rows of weight ([vocab, dim]) by int64 index. The
// output appends dim to the index tensor's shape.
func (c *Backend) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	mustFloat(weight, "Embedding")
	if indices.DType() != tensor.Int64 {
		panic(fmt.Sprintf("cpu: Embedding indices must be int64, got %s", indices.DType()))
	}
	ws := weight.Shape()
	if len(ws) != 2 {
		panic(fmt.Sprintf("cpu: Embedding weight must be [vocab, dim], got %v", ws))
	}
	vocab, dim := ws[0], ws[1]

	outShape := append(indices.Shape().Clone(), dim)
	out := c.alloc(outShape, weight.DType())

	idx := indices.AsInt64()
	elemSize := weight.DType().Size()
	rowBytes := dim * elemSize
	src, dst := weight.Bytes(), out.Bytes()

	for i, id := range idx {
		if id < 0 || id >= int64(vocab) {
			panic(fmt.Sprintf("cpu: Embedding index %d out of range for vocab %d", id, vocab))
		}
		copy(dst[i*rowBytes:(i+1)*rowBytes], src[int(id)*rowBytes:(int(id)+1)*rowBytes])
	}
	return out
}
