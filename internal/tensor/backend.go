package tensor

// Backend is the compute interface tensors delegate to. The CPU backend
// implements all of it; additional device backends would plug in here.
//
// All binary operations require operands of identical shape and dtype
// except where NumPy-style broadcasting is documented on the method.
type Backend interface {
	// Element-wise binary arithmetic. Shapes must match exactly, or the
	// second operand may be broadcast from a trailing-compatible shape.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul computes [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// Element-wise scalar arithmetic.
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Element-wise math and activations.
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	ReLU(x *RawTensor) *RawTensor

	// Softmax along the given dimension.
	Softmax(x *RawTensor, dim int) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	Argmax(x *RawTensor, dim int) *RawTensor

	// Shape manipulation. Narrow copies elements [start, start+length)
	// along dim; Select drops dim, picking a single index.
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Transpose(x *RawTensor, axes ...int) *RawTensor
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Chunk(x *RawTensor, n, dim int) []*RawTensor
	Narrow(x *RawTensor, dim, start, length int) *RawTensor
	Select(x *RawTensor, dim, index int) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor
	Squeeze(x *RawTensor, dim int) *RawTensor

	// Embedding gathers rows of weight ([vocab, dim]) by int64 indices.
	Embedding(weight, indices *RawTensor) *RawTensor

	// Convolutional ops over [N, C, H, W] inputs.
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	MaxPool2D(input *RawTensor, kernelSize, stride int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
