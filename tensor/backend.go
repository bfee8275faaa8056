// Copyright 2025 Tempo ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Backend is the interface compute devices implement. All operations
// take and return RawTensors; shape and dtype checks happen inside the
// backend, which panics on programmer errors such as mismatched
// operand shapes.
type Backend = tensor.Backend
