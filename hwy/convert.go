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

import "math"

// ConvertToFloat64 converts int32 lanes to float64 (exact).
func ConvertToFloat64[T ~int32](v Vec[T]) Vec[float64] {
	result := make([]float64, len(v.data))
	for i, x := range v.data {
		result[i] = float64(x)
	}
	return Vec[float64]{data: result}
}

// RoundToEven rounds to the nearest integer, ties to even (banker's rounding).
// This is the default IEEE 754 rounding mode.
func RoundToEven[T Floats](v Vec[T]) Vec[T] {
	result := make([]T, len(v.data))
	for i, x := range v.data {
		result[i] = T(math.RoundToEven(float64(x)))
	}
	return Vec[T]{data: result}
}

// ConvertToInt32Saturating converts integral float64 lanes to int32, clamping
// to [lo, hi]. NaN lanes become lo, so the result is defined for every input.
func ConvertToInt32Saturating(v Vec[float64], lo, hi int32) Vec[int32] {
	result := make([]int32, len(v.data))
	for i, x := range v.data {
		switch {
		case x != x || x <= float64(lo):
			result[i] = lo
		case x >= float64(hi):
			result[i] = hi
		default:
			result[i] = int32(x)
		}
	}
	return Vec[int32]{data: result}
}
