package nn

import (
	"fmt"
	"math/rand"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Input shape:  [batch, inChannels, H, W]
// Weight shape: [outChannels, inChannels, K, K]
// Output shape: [batch, outChannels, OH, OW] with
// OH = (H + 2*padding - K)/stride + 1.
type Conv2D[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	kernelSize  int
	stride      int
	padding     int

	weight *Parameter[B]
	bias   *Parameter[B]

	backend B
}

// NewConv2D creates a square-kernel convolutional layer with Xavier
// weights and zero bias.
func NewConv2D[B tensor.Backend](inChannels, outChannels, kernelSize, stride, padding int, rng *rand.Rand, backend B) *Conv2D[B] {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelSize <= 0 || stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel=%d, stride=%d, padding=%d", kernelSize, stride, padding))
	}

	fanIn := inChannels * kernelSize * kernelSize
	fanOut := outChannels * kernelSize * kernelSize
	weight := Xavier(fanIn, fanOut, tensor.Shape{outChannels, inChannels, kernelSize, kernelSize}, rng, backend)

	return &Conv2D[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		padding:     padding,
		weight:      NewParameter("conv2d.weight", weight),
		bias:        NewParameter("conv2d.bias", Zeros(tensor.Shape{outChannels}, backend)),
		backend:     backend,
	}
}

// InChannels returns the input channel count.
func (c *Conv2D[B]) InChannels() int { return c.inChannels }

// OutChannels returns the output channel count.
func (c *Conv2D[B]) OutChannels() int { return c.outChannels }

// KernelSize returns the square kernel dimension.
func (c *Conv2D[B]) KernelSize() int { return c.kernelSize }

// Weight returns the kernel parameter.
func (c *Conv2D[B]) Weight() *Parameter[B] { return c.weight }

// Forward convolves the input and adds the per-channel bias.
func (c *Conv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %v", shape))
	}
	if shape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: expected %d input channels, got %d", c.inChannels, shape[1]))
	}

	backend := input.Backend()
	raw := backend.Conv2D(input.Raw(), c.weight.Tensor().Raw(), c.stride, c.padding)

	// Materialize the per-channel bias as [Cout, OH, OW] so it
	// broadcasts across the batch dimension.
	os := raw.Shape()
	oh, ow := os[2], os[3]
	plane := tensor.Zeros[float32](tensor.Shape{c.outChannels, oh, ow}, c.backend)
	pd := plane.Data()
	bd := c.bias.Tensor().Data()
	for ch := 0; ch < c.outChannels; ch++ {
		row := pd[ch*oh*ow : (ch+1)*oh*ow]
		for i := range row {
			row[i] = bd[ch]
		}
	}
	return tensor.New[float32, B](backend.Add(raw, plane.Raw()), backend)
}

// Parameters returns the kernel and bias.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weight, c.bias}
}
