package nn

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// MaxPool2D reduces spatial dimensions by taking window maxima.
// It has no trainable parameters.
type MaxPool2D[B tensor.Backend] struct {
	kernelSize int
	stride     int
}

// NewMaxPool2D creates a max pooling layer. The common configuration is
// kernelSize=2, stride=2, halving each spatial dimension.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride int) *MaxPool2D[B] {
	if kernelSize <= 0 || stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel=%d, stride=%d", kernelSize, stride))
	}
	return &MaxPool2D[B]{kernelSize: kernelSize, stride: stride}
}

// Forward pools input [N, C, H, W].
func (m *MaxPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(input.Shape()) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %v", input.Shape()))
	}
	backend := input.Backend()
	return tensor.New[float32, B](backend.MaxPool2D(input.Raw(), m.kernelSize, m.stride), backend)
}

// Parameters returns nil.
func (m *MaxPool2D[B]) Parameters() []*Parameter[B] { return nil }

// Flatten collapses all dimensions after the batch dimension.
type Flatten[B tensor.Backend] struct{}

// NewFlatten creates a Flatten module.
func NewFlatten[B tensor.Backend]() *Flatten[B] { return &Flatten[B]{} }

// Forward reshapes [N, ...] to [N, prod(...)].
func (f *Flatten[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("flatten: expected input with a batch dimension, got %v", shape))
	}
	rest := 1
	for _, d := range shape[1:] {
		rest *= d
	}
	return input.Reshape(tensor.Shape{shape[0], rest})
}

// Parameters returns nil.
func (f *Flatten[B]) Parameters() []*Parameter[B] { return nil }
