package nn

import (
	"fmt"
	"math"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// CrossEntropyLoss computes softmax cross-entropy over class logits.
//
// Because the framework carries no autodiff engine, the loss also
// exposes the analytic gradient with respect to the logits
// (softmax(logits) minus the one-hot target, averaged over the batch),
// which is all a linear readout needs for training.
type CrossEntropyLoss[B tensor.Backend] struct{}

// NewCrossEntropyLoss creates the loss module.
func NewCrossEntropyLoss[B tensor.Backend]() *CrossEntropyLoss[B] {
	return &CrossEntropyLoss[B]{}
}

// Forward returns the mean negative log-likelihood of the targets.
// logits: [batch, classes]; targets: [batch] int64 class ids.
func (c *CrossEntropyLoss[B]) Forward(logits *tensor.Tensor[float32, B], targets *tensor.Tensor[int64, B]) float32 {
	probs, labels, batch, classes := c.softmaxAndLabels(logits, targets)

	var loss float64
	for i := 0; i < batch; i++ {
		p := float64(probs[i*classes+int(labels[i])])
		loss += -math.Log(math.Max(p, 1e-9))
	}
	return float32(loss / float64(batch))
}

// Gradient returns dLoss/dLogits: (softmax(logits) - onehot) / batch.
func (c *CrossEntropyLoss[B]) Gradient(logits *tensor.Tensor[float32, B], targets *tensor.Tensor[int64, B]) *tensor.Tensor[float32, B] {
	probs, labels, batch, classes := c.softmaxAndLabels(logits, targets)

	grad := tensor.Zeros[float32](logits.Shape(), logits.Backend())
	gd := grad.Data()
	inv := 1 / float32(batch)
	for i := 0; i < batch; i++ {
		for j := 0; j < classes; j++ {
			v := probs[i*classes+j]
			if int64(j) == labels[i] {
				v -= 1
			}
			gd[i*classes+j] = v * inv
		}
	}
	return grad
}

func (c *CrossEntropyLoss[B]) softmaxAndLabels(
	logits *tensor.Tensor[float32, B], targets *tensor.Tensor[int64, B],
) (probs []float32, labels []int64, batch, classes int) {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross entropy: expected 2D logits [batch, classes], got %v", shape))
	}
	batch, classes = shape[0], shape[1]
	if !targets.Shape().Equal(tensor.Shape{batch}) {
		panic(fmt.Sprintf("cross entropy: expected targets [batch=%d], got %v", batch, targets.Shape()))
	}

	labels = targets.Data()
	for i, l := range labels {
		if l < 0 || l >= int64(classes) {
			panic(fmt.Sprintf("cross entropy: target %d at row %d out of range for %d classes", l, i, classes))
		}
	}

	backend := logits.Backend()
	probs = backend.Softmax(logits.Raw(), 1).AsFloat32()
	return probs, labels, batch, classes
}
