package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Embedding maps int64 token ids to dense vectors via table lookup.
// Weight shape: [vocabSize, dim].
type Embedding[B tensor.Backend] struct {
	vocabSize int
	dim       int
	weight    *Parameter[B]
	backend   B
}

// NewEmbedding creates an embedding table with N(0, 1) entries scaled
// by 1/sqrt(dim).
func NewEmbedding[B tensor.Backend](vocabSize, dim int, rng *rand.Rand, backend B) *Embedding[B] {
	if vocabSize <= 0 || dim <= 0 {
		panic(fmt.Sprintf("embedding: invalid vocab=%d, dim=%d", vocabSize, dim))
	}
	weight := tensor.Zeros[float32](tensor.Shape{vocabSize, dim}, backend)
	data := weight.Data()
	scale := float32(1 / math.Sqrt(float64(dim)))
	for i := range data {
		data[i] = float32(rng.NormFloat64()) * scale
	}
	return &Embedding[B]{
		vocabSize: vocabSize,
		dim:       dim,
		weight:    NewParameter("embedding.weight", weight),
		backend:   backend,
	}
}

// Dim returns the embedding width.
func (e *Embedding[B]) Dim() int { return e.dim }

// VocabSize returns the table height.
func (e *Embedding[B]) VocabSize() int { return e.vocabSize }

// Lookup gathers embeddings for an int64 index tensor. The output
// appends dim to the index shape, e.g. [B, T] -> [B, T, dim].
func (e *Embedding[B]) Lookup(indices *tensor.Tensor[int64, B]) *tensor.Tensor[float32, B] {
	raw := e.backend.Embedding(e.weight.Tensor().Raw(), indices.Raw())
	return tensor.New[float32, B](raw, e.backend)
}

// Parameters returns the embedding table.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.weight}
}
