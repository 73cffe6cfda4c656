// Copyright 2025 go-highway Authors
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

package hwy

// Promote widens lanes without changing their value. Demote narrows lanes,
// saturating to the destination range.

// PromoteI32ToI64 widens int32 to int64 (sign-extended).
func PromoteI32ToI64(v Vec[int32]) Vec[int64] {
	result := make([]int64, len(v.data))
	for i, x := range v.data {
		result[i] = int64(x)
	}
	return Vec[int64]{data: result}
}

// PromoteU8ToI32 widens uint8 to int32 (zero-extended).
func PromoteU8ToI32(v Vec[uint8]) Vec[int32] {
	result := make([]int32, len(v.data))
	for i, x := range v.data {
		result[i] = int32(x)
	}
	return Vec[int32]{data: result}
}

// PromoteF32ToF64 widens float32 to float64.
func PromoteF32ToF64(v Vec[float32]) Vec[float64] {
	result := make([]float64, len(v.data))
	for i, x := range v.data {
		result[i] = float64(x)
	}
	return Vec[float64]{data: result}
}

// DemoteI64ToI32 narrows int64 to int32 (saturating).
// Values outside int32 range are clamped to [-2147483648, 2147483647].
func DemoteI64ToI32(v Vec[int64]) Vec[int32] {
	result := make([]int32, len(v.data))
	for i, x := range v.data {
		result[i] = saturateI64ToI32(x)
	}
	return Vec[int32]{data: result}
}

// DemoteI32ToU8 narrows int32 to uint8 (saturating to [0, 255]).
func DemoteI32ToU8(v Vec[int32]) Vec[uint8] {
	result := make([]uint8, len(v.data))
	for i, x := range v.data {
		result[i] = uint8(min(max(x, 0), 255))
	}
	return Vec[uint8]{data: result}
}

// DemoteF64ToF32 narrows float64 to float32 with round-to-nearest-even.
func DemoteF64ToF32(v Vec[float64]) Vec[float32] {
	result := make([]float32, len(v.data))
	for i, x := range v.data {
		result[i] = float32(x)
	}
	return Vec[float32]{data: result}
}
