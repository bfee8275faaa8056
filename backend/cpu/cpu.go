// Copyright 2025 Tempo ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the public API for the CPU compute backend.
//
// The backend parallelizes large element-wise and matrix operations
// across CPU cores and picks matmul block sizes from the detected
// SIMD feature set.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Randn[float32](tensor.Shape{128, 64}, rng, backend)
package cpu

import (
	"github.com/tempo-ml/tempo/internal/backend/cpu"
)

// Backend is the CPU implementation of tensor.Backend.
type Backend = cpu.Backend

// New creates a CPU backend that parallelizes across all cores.
func New() *Backend {
	return cpu.New()
}

// NewSequential creates a single-threaded CPU backend. Useful for
// benchmarking and for deterministic profiling.
func NewSequential() *Backend {
	return cpu.NewSequential()
}
