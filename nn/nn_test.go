// Copyright 2025 Tempo ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand"
	"testing"

	"github.com/tempo-ml/tempo/backend/cpu"
	"github.com/tempo-ml/tempo/nn"
	"github.com/tempo-ml/tempo/tensor"
)

// TestModuleConstructors verifies that every layer constructor builds a
// working Module through the public API.
func TestModuleConstructors(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name    string
		module  nn.Module[*cpu.Backend]
		inShape tensor.Shape
	}{
		{
			name:    "Linear",
			module:  nn.NewLinear(10, 5, rng, backend),
			inShape: tensor.Shape{2, 10},
		},
		{
			name:    "Conv2D",
			module:  nn.NewConv2D(1, 4, 3, 1, 1, rng, backend),
			inShape: tensor.Shape{2, 1, 8, 8},
		},
		{
			name:    "MaxPool2D",
			module:  nn.NewMaxPool2D[*cpu.Backend](2, 2),
			inShape: tensor.Shape{2, 1, 4, 4},
		},
		{
			name:    "Flatten",
			module:  nn.NewFlatten[*cpu.Backend](),
			inShape: tensor.Shape{2, 3, 4},
		},
		{
			name:    "ReLU",
			module:  nn.NewReLU[*cpu.Backend](),
			inShape: tensor.Shape{2, 6},
		},
		{
			name:    "Sigmoid",
			module:  nn.NewSigmoid[*cpu.Backend](),
			inShape: tensor.Shape{2, 6},
		},
		{
			name:    "Tanh",
			module:  nn.NewTanh[*cpu.Backend](),
			inShape: tensor.Shape{2, 6},
		},
		{
			name:    "Dropout",
			module:  nn.NewDropout[*cpu.Backend](0.5, rng),
			inShape: tensor.Shape{2, 6},
		},
		{
			name: "Sequential",
			module: nn.NewSequential[*cpu.Backend](
				nn.NewLinear(10, 5, rng, backend),
				nn.NewReLU[*cpu.Backend](),
			),
			inShape: tensor.Shape{2, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tensor.Randn[float32](tt.inShape, rng, backend)
			out := tt.module.Forward(input)
			if out == nil {
				t.Fatal("Forward returned nil")
			}
			if out.Shape()[0] != tt.inShape[0] {
				t.Errorf("batch dimension changed: in %v, out %v", tt.inShape, out.Shape())
			}
			_ = tt.module.Parameters()
		})
	}
}

// TestMaxPool2DHalvesSpatial checks the common kernel=2 stride=2 shape.
func TestMaxPool2DHalvesSpatial(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(2))

	pool := nn.NewMaxPool2D[*cpu.Backend](2, 2)
	input := tensor.Randn[float32](tensor.Shape{2, 3, 4, 4}, rng, backend)

	out := pool.Forward(input)
	want := tensor.Shape{2, 3, 2, 2}
	if !out.Shape().Equal(want) {
		t.Errorf("pooled shape = %v, want %v", out.Shape(), want)
	}
	if pool.Parameters() != nil {
		t.Error("pooling layer reported trainable parameters")
	}
}

// TestEmbeddingLookup exercises the index-based layers that sit outside
// the Module interface.
func TestEmbeddingLookup(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(3))

	embed := nn.NewEmbedding(16, 8, rng, backend)
	idx, err := tensor.FromSlice([]int64{1, 3, 5, 7}, tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	out := embed.Lookup(idx)
	want := tensor.Shape{2, 2, 8}
	if !out.Shape().Equal(want) {
		t.Errorf("lookup shape = %v, want %v", out.Shape(), want)
	}
}
