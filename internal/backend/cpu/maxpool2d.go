package cpu

import (
	"fmt"
	"math"

	"github.com/tempo-ml/tempo/internal/parallel"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// MaxPool2D applies non-padded max pooling over [N, C, H, W] input.
func (c *Backend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	mustFloat(input, "MaxPool2D")
	if input.DType() != tensor.Float32 {
		panic("cpu: MaxPool2D implemented for float32 only")
	}
	is := input.Shape()
	if len(is) != 4 {
		panic(fmt.Sprintf("cpu: MaxPool2D requires 4D input, got %v", is))
	}
	if kernelSize <= 0 || stride <= 0 {
		panic(fmt.Sprintf("cpu: MaxPool2D invalid kernel %d or stride %d", kernelSize, stride))
	}

	n, ch, h, w := is[0], is[1], is[2], is[3]
	oh := (h-kernelSize)/stride + 1
	ow := (w-kernelSize)/stride + 1
	if oh <= 0 || ow <= 0 {
		panic(fmt.Sprintf("cpu: MaxPool2D output would be empty for input %v, kernel %d", is, kernelSize))
	}

	out := c.alloc(tensor.Shape{n, ch, oh, ow}, tensor.Float32)
	src, dst := input.AsFloat32(), out.AsFloat32()

	parallel.For(n*ch, c.par, func(plane int) {
		srcPlane := plane * h * w
		dstPlane := plane * oh * ow
		for oy := 0; oy < oh; oy++ {
			for ox := 0; ox < ow; ox++ {
				best := float32(math.Inf(-1))
				for ky := 0; ky < kernelSize; ky++ {
					row := srcPlane + (oy*stride+ky)*w + ox*stride
					for kx := 0; kx < kernelSize; kx++ {
						if v := src[row+kx]; v > best {
							best = v
						}
					}
				}
				dst[dstPlane+oy*ow+ox] = best
			}
		}
	})
	return out
}
