package cpu

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/parallel"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Conv2D computes a 2D cross-correlation.
//
// input:  [N, Cin, H, W]
// kernel: [Cout, Cin, KH, KW]
// output: [N, Cout, OH, OW] with OH = (H + 2*padding - KH)/stride + 1.
func (c *Backend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	mustFloat(input, "Conv2D")
	mustSameType(input, kernel, "Conv2D")
	if input.DType() != tensor.Float32 {
		panic("cpu: Conv2D implemented for float32 only")
	}

	is, ks := input.Shape(), kernel.Shape()
	if len(is) != 4 || len(ks) != 4 {
		panic(fmt.Sprintf("cpu: Conv2D requires 4D input and kernel, got %v and %v", is, ks))
	}
	if is[1] != ks[1] {
		panic(fmt.Sprintf("cpu: Conv2D channel mismatch: input %v, kernel %v", is, ks))
	}
	if stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("cpu: Conv2D invalid stride %d or padding %d", stride, padding))
	}

	n, cin, h, w := is[0], is[1], is[2], is[3]
	cout, kh, kw := ks[0], ks[2], ks[3]
	oh := (h+2*padding-kh)/stride + 1
	ow := (w+2*padding-kw)/stride + 1
	if oh <= 0 || ow <= 0 {
		panic(fmt.Sprintf("cpu: Conv2D output would be empty for input %v, kernel %v", is, ks))
	}

	out := c.alloc(tensor.Shape{n, cout, oh, ow}, tensor.Float32)
	src, ker, dst := input.AsFloat32(), kernel.AsFloat32(), out.AsFloat32()

	// One worker item per (image, output channel) pair.
	parallel.For(n*cout, c.par, func(item int) {
		b, oc := item/cout, item%cout
		for oy := 0; oy < oh; oy++ {
			for ox := 0; ox < ow; ox++ {
				var sum float32
				for ic := 0; ic < cin; ic++ {
					srcPlane := ((b*cin)+ic)*h*w
					kerPlane := ((oc*cin)+ic)*kh*kw
					for ky := 0; ky < kh; ky++ {
						iy := oy*stride + ky - padding
						if iy < 0 || iy >= h {
							continue
						}
						for kx := 0; kx < kw; kx++ {
							ix := ox*stride + kx - padding
							if ix < 0 || ix >= w {
								continue
							}
							sum += src[srcPlane+iy*w+ix] * ker[kerPlane+ky*kw+kx]
						}
					}
				}
				dst[((b*cout+oc)*oh+oy)*ow+ox] = sum
			}
		}
	})
	return out
}
