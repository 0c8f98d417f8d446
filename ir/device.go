// Copyright 2025 The TIR Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ir

import "fmt"

// DeviceKind identifies the device API a buffer lives on. The numeric
// values are part of the runtime ABI and must not be reordered.
type DeviceKind int64

const (
	// DeviceCPU is host memory.
	DeviceCPU DeviceKind = 1
	// DeviceCUDA is CUDA device memory.
	DeviceCUDA DeviceKind = 2
	// DeviceCUDAHost is CUDA pinned host memory.
	DeviceCUDAHost DeviceKind = 3
	// DeviceOpenCL is OpenCL device memory.
	DeviceOpenCL DeviceKind = 4
	// DeviceVulkan is Vulkan device memory.
	DeviceVulkan DeviceKind = 7
	// DeviceMetal is Metal device memory.
	DeviceMetal DeviceKind = 8
	// DeviceROCm is ROCm device memory.
	DeviceROCm DeviceKind = 10
)

// String returns the runtime name of the device kind.
func (k DeviceKind) String() string {
	switch k {
	case DeviceCPU:
		return "cpu"
	case DeviceCUDA:
		return "cuda"
	case DeviceCUDAHost:
		return "cuda_host"
	case DeviceOpenCL:
		return "opencl"
	case DeviceVulkan:
		return "vulkan"
	case DeviceMetal:
		return "metal"
	case DeviceROCm:
		return "rocm"
	default:
		return fmt.Sprintf("device(%d)", int64(k))
	}
}

// Expr returns the device kind as an immediate.
func (k DeviceKind) Expr() Expr {
	return Int(int64(k))
}
