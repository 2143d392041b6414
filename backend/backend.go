// Copyright 2025 GradFlow ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backend resolves compute backends by name.
package backend

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/backend/cpu"
	"github.com/gradflow-ml/gradflow/backend/webgpu"
	"github.com/gradflow-ml/gradflow/tensor"
)

// Open returns the backend for a device name. Supported names are "cpu"
// and "webgpu". Opening "webgpu" fails when no GPU adapter is available.
func Open(name string) (tensor.Backend, error) {
	switch name {
	case "cpu":
		return cpu.New(), nil
	case "webgpu":
		b, err := webgpu.New()
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("backend: unknown device %q", name)
	}
}
