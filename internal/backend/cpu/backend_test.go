package cpu

import (
	"math"
	"testing"

	"github.com/tempo-ml/tempo/internal/tensor"
)

func fromFloats(t *testing.T, data []float32, shape tensor.Shape, b *Backend) *tensor.RawTensor {
	t.Helper()
	ten, err := tensor.FromSlice(data, shape, b)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	return ten.Raw()
}

func wantFloats(t *testing.T, got *tensor.RawTensor, want []float32, msg string) {
	t.Helper()
	data := got.AsFloat32()
	if len(data) != len(want) {
		t.Fatalf("%s: expected %d elements, got %d", msg, len(want), len(data))
	}
	for i := range want {
		if math.Abs(float64(data[i]-want[i])) > 1e-5 {
			t.Errorf("%s: element %d: expected %v, got %v", msg, i, want[i], data[i])
		}
	}
}

func TestAdd(t *testing.T) {
	b := New()
	a := fromFloats(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
	c := fromFloats(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2}, b)
	wantFloats(t, b.Add(a, c), []float32{11, 22, 33, 44}, "Add")
}

func TestAddBroadcastBias(t *testing.T) {
	b := New()
	a := fromFloats(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b)
	bias := fromFloats(t, []float32{10, 20, 30}, tensor.Shape{3}, b)
	wantFloats(t, b.Add(a, bias), []float32{11, 22, 33, 14, 25, 36}, "Add bias")
}

func TestAddShapeMismatchPanics(t *testing.T) {
	b := New()
	a := fromFloats(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
	c := fromFloats(t, []float32{1, 2}, tensor.Shape{2, 1}, b)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on incompatible shapes")
		}
	}()
	b.Add(a, c)
}

func TestMulAndScalars(t *testing.T) {
	b := New()
	a := fromFloats(t, []float32{1, -2, 3}, tensor.Shape{3}, b)
	wantFloats(t, b.MulScalar(a, 2), []float32{2, -4, 6}, "MulScalar")
	wantFloats(t, b.AddScalar(a, 1), []float32{2, -1, 4}, "AddScalar")
	wantFloats(t, b.Mul(a, a), []float32{1, 4, 9}, "Mul")
}

func TestMatMul(t *testing.T) {
	b := New()
	// [2, 3] @ [3, 2]
	a := fromFloats(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b)
	c := fromFloats(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2}, b)
	wantFloats(t, b.MatMul(a, c), []float32{58, 64, 139, 154}, "MatMul")
}

func TestMatMulLargeMatchesNaive(t *testing.T) {
	b := New()
	m, k, n := 37, 53, 29
	a := make([]float32, m*k)
	c := make([]float32, k*n)
	for i := range a {
		a[i] = float32((i*31)%17) / 7
	}
	for i := range c {
		c[i] = float32((i*13)%23) / 5
	}
	ra := fromFloats(t, a, tensor.Shape{m, k}, b)
	rc := fromFloats(t, c, tensor.Shape{k, n}, b)
	got := b.MatMul(ra, rc).AsFloat32()

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var want float32
			for kk := 0; kk < k; kk++ {
				want += a[i*k+kk] * c[kk*n+j]
			}
			if math.Abs(float64(got[i*n+j]-want)) > 1e-3 {
				t.Fatalf("MatMul[%d,%d]: expected %v, got %v", i, j, want, got[i*n+j])
			}
		}
	}
}

func TestActivations(t *testing.T) {
	b := New()
	a := fromFloats(t, []float32{-1, 0, 1}, tensor.Shape{3}, b)

	wantFloats(t, b.ReLU(a), []float32{0, 0, 1}, "ReLU")

	sig := b.Sigmoid(a).AsFloat32()
	if math.Abs(float64(sig[1])-0.5) > 1e-6 {
		t.Errorf("Sigmoid(0): expected 0.5, got %v", sig[1])
	}

	tanh := b.Tanh(a).AsFloat32()
	if math.Abs(float64(tanh[2])-math.Tanh(1)) > 1e-6 {
		t.Errorf("Tanh(1): expected %v, got %v", math.Tanh(1), tanh[2])
	}
}

func TestSoftmax(t *testing.T) {
	b := New()
	a := fromFloats(t, []float32{1, 2, 3, 1, 1, 1}, tensor.Shape{2, 3}, b)
	got := b.Softmax(a, -1).AsFloat32()

	// Rows sum to one.
	for r := 0; r < 2; r++ {
		var sum float32
		for i := 0; i < 3; i++ {
			sum += got[r*3+i]
		}
		if math.Abs(float64(sum)-1) > 1e-6 {
			t.Errorf("row %d sums to %v", r, sum)
		}
	}
	// Uniform logits give uniform probabilities.
	for i := 3; i < 6; i++ {
		if math.Abs(float64(got[i])-1.0/3) > 1e-6 {
			t.Errorf("uniform row: expected 1/3, got %v", got[i])
		}
	}
	if !(got[2] > got[1] && got[1] > got[0]) {
		t.Error("softmax must preserve ordering")
	}
}

func TestReductions(t *testing.T) {
	b := New()
	a := fromFloats(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b)

	if got := b.Sum(a).AsFloat32()[0]; got != 21 {
		t.Errorf("Sum: expected 21, got %v", got)
	}

	rows := b.SumDim(a, 1, false)
	if !rows.Shape().Equal(tensor.Shape{2}) {
		t.Errorf("SumDim shape: expected [2], got %v", rows.Shape())
	}
	wantFloats(t, rows, []float32{6, 15}, "SumDim")

	kept := b.SumDim(a, 1, true)
	if !kept.Shape().Equal(tensor.Shape{2, 1}) {
		t.Errorf("SumDim keepDim shape: expected [2 1], got %v", kept.Shape())
	}

	wantFloats(t, b.MeanDim(a, 0, false), []float32{2.5, 3.5, 4.5}, "MeanDim")

	am := b.Argmax(a, 1).AsInt64()
	if am[0] != 2 || am[1] != 2 {
		t.Errorf("Argmax: expected [2 2], got %v", am)
	}
}

func TestManipulation(t *testing.T) {
	b := New()
	a := fromFloats(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b)

	tr := b.Transpose(a)
	if !tr.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Transpose shape: expected [3 2], got %v", tr.Shape())
	}
	wantFloats(t, tr, []float32{1, 4, 2, 5, 3, 6}, "Transpose")

	cat := b.Cat([]*tensor.RawTensor{a, a}, 0)
	if !cat.Shape().Equal(tensor.Shape{4, 3}) {
		t.Fatalf("Cat shape: expected [4 3], got %v", cat.Shape())
	}

	catF := b.Cat([]*tensor.RawTensor{a, a}, 1)
	if !catF.Shape().Equal(tensor.Shape{2, 6}) {
		t.Fatalf("Cat dim=1 shape: expected [2 6], got %v", catF.Shape())
	}
	wantFloats(t, catF, []float32{1, 2, 3, 1, 2, 3, 4, 5, 6, 4, 5, 6}, "Cat dim=1")

	parts := b.Chunk(catF, 2, 1)
	if len(parts) != 2 {
		t.Fatalf("Chunk: expected 2 parts, got %d", len(parts))
	}
	wantFloats(t, parts[1], []float32{1, 2, 3, 4, 5, 6}, "Chunk")

	row := b.Select(a, 0, 1)
	if !row.Shape().Equal(tensor.Shape{3}) {
		t.Fatalf("Select shape: expected [3], got %v", row.Shape())
	}
	wantFloats(t, row, []float32{4, 5, 6}, "Select")

	col := b.Select(a, 1, 2)
	wantFloats(t, col, []float32{3, 6}, "Select dim=1")

	nar := b.Narrow(a, 1, 1, 2)
	wantFloats(t, nar, []float32{2, 3, 5, 6}, "Narrow")

	un := b.Unsqueeze(a, 0)
	if !un.Shape().Equal(tensor.Shape{1, 2, 3}) {
		t.Fatalf("Unsqueeze shape: expected [1 2 3], got %v", un.Shape())
	}
	sq := b.Squeeze(un, 0)
	if !sq.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("Squeeze shape: expected [2 3], got %v", sq.Shape())
	}
}

func TestEmbedding(t *testing.T) {
	b := New()
	weight := fromFloats(t, []float32{0, 0, 1, 1, 2, 2}, tensor.Shape{3, 2}, b)
	idx, err := tensor.FromSlice([]int64{2, 0, 1}, tensor.Shape{3}, b)
	if err != nil {
		t.Fatal(err)
	}

	got := b.Embedding(weight, idx.Raw())
	if !got.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Embedding shape: expected [3 2], got %v", got.Shape())
	}
	wantFloats(t, got, []float32{2, 2, 0, 0, 1, 1}, "Embedding")
}

func TestConv2D(t *testing.T) {
	b := New()
	// 3x3 input, 2x2 kernel, stride 1, no padding.
	input := fromFloats(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3}, b)
	kernel := fromFloats(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2}, b)

	got := b.Conv2D(input, kernel, 1, 0)
	if !got.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("Conv2D shape: expected [1 1 2 2], got %v", got.Shape())
	}
	wantFloats(t, got, []float32{37, 47, 67, 77}, "Conv2D")
}

func TestConv2DPadding(t *testing.T) {
	b := New()
	input := fromFloats(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2}, b)
	kernel := fromFloats(t, []float32{1}, tensor.Shape{1, 1, 1, 1}, b)

	got := b.Conv2D(input, kernel, 1, 1)
	if !got.Shape().Equal(tensor.Shape{1, 1, 4, 4}) {
		t.Fatalf("padded Conv2D shape: expected [1 1 4 4], got %v", got.Shape())
	}
	data := got.AsFloat32()
	if data[0] != 0 || data[5] != 1 || data[10] != 4 {
		t.Errorf("padded Conv2D values wrong: %v", data)
	}
}

func TestMaxPool2D(t *testing.T) {
	b := New()
	input := fromFloats(t, []float32{
		1, 2, 5, 6,
		3, 4, 7, 8,
		9, 1, 2, 3,
		5, 6, 4, 0,
	}, tensor.Shape{1, 1, 4, 4}, b)

	got := b.MaxPool2D(input, 2, 2)
	if !got.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("MaxPool2D shape: expected [1 1 2 2], got %v", got.Shape())
	}
	wantFloats(t, got, []float32{4, 8, 9, 4}, "MaxPool2D")
}

func TestSequentialBackendMatchesParallel(t *testing.T) {
	par := New()
	seq := NewSequential()

	data := make([]float32, 64*64)
	for i := range data {
		data[i] = float32(i%7) - 3
	}
	a := fromFloats(t, data, tensor.Shape{64, 64}, par)

	got := par.MatMul(a, a).AsFloat32()
	want := seq.MatMul(a, a).AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("parallel and sequential matmul differ at %d: %v vs %v", i, got[i], want[i])
		}
	}
}

func TestMatmulBlockDim(t *testing.T) {
	got := matmulBlockDim()
	switch got {
	case 32, 64, 128:
	default:
		t.Fatalf("matmulBlockDim() = %d, want one of 32, 64, 128", got)
	}
	if New().blockDim != got {
		t.Error("New() did not pick up the host block size")
	}
}
