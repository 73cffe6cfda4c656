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

// This file provides saturating, rounding and fixed-point lane operations.
// Saturated operations clamp results to the type's valid range instead of
// wrapping. Each one mirrors a scalar primitive in hwy/contrib/fixedpoint.

// Clamp clamps each element to the range [lo, hi].
func Clamp[T Lanes](v, lo, hi Vec[T]) Vec[T] {
	return Min(Max(v, lo), hi)
}

// SaturatedAddI32 adds int32 lanes, clamping to [MinInt32, MaxInt32].
func SaturatedAddI32(a, b Vec[int32]) Vec[int32] {
	n := min(len(b.data), len(a.data))
	result := make([]int32, n)
	for i := range n {
		result[i] = saturateI64ToI32(int64(a.data[i]) + int64(b.data[i]))
	}
	return Vec[int32]{data: result}
}

// RoundingShiftRight divides each lane by 2^shift rounding to nearest, with
// ties going toward +inf. The bias 1<<(shift-1) is added exactly once before
// an arithmetic shift; shift < 1 returns v unchanged.
//
// For int32 lanes the bias is added in 64-bit arithmetic so that values near
// MaxInt32 do not wrap.
func RoundingShiftRight[T ~int32 | ~int64](v Vec[T], shift int) Vec[T] {
	if shift < 1 {
		return v
	}
	result := make([]T, len(v.data))
	for i, x := range v.data {
		result[i] = roundingShift(x, shift)
	}
	return Vec[T]{data: result}
}

// int64 lanes are assumed to stay at least 2^(shift-1) away from MaxInt64,
// which holds for any product of two int32 values plus an int32 offset.
func roundingShift[T ~int32 | ~int64](x T, shift int) T {
	return T((int64(x) + int64(1)<<(shift-1)) >> shift)
}

// MulFixedPoint31 returns the saturating, rounding, doubling high half of
// a*b for int32 lanes: the product of two Q0.31 numbers as a Q0.31 number.
// Ties round away from zero; the only overflowing input, MinInt32*MinInt32,
// saturates to MaxInt32.
func MulFixedPoint31(a, b Vec[int32]) Vec[int32] {
	n := min(len(b.data), len(a.data))
	result := make([]int32, n)
	for i := range n {
		result[i] = mulFixedPoint31(a.data[i], b.data[i])
	}
	return Vec[int32]{data: result}
}

func mulFixedPoint31(a, b int32) int32 {
	if a == math.MinInt32 && b == math.MinInt32 {
		return math.MaxInt32
	}
	ab := int64(a) * int64(b)
	nudge := int64(1) << 30
	if ab < 0 {
		nudge = 1 - nudge
	}
	return int32((ab + nudge) / (int64(1) << 31))
}

func saturateI64ToI32(x int64) int32 {
	if x > math.MaxInt32 {
		return math.MaxInt32
	}
	if x < math.MinInt32 {
		return math.MinInt32
	}
	return int32(x)
}
