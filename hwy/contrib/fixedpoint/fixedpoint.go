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

package fixedpoint

import (
	"errors"
	"fmt"
	"math"
)

// Largest right shifts accepted for 32-bit values and for the 64-bit
// products of range requantization. A product (v+offset)*multiplier of
// int32 operands stays below 2^63-2^32 in magnitude, so a rounding bias of
// up to 2^31 cannot overflow.
const (
	MaxShift   = 31
	MaxShift64 = 32
)

// ErrMultiplierRange is returned by QuantizeMultiplier for scales it cannot
// represent as a Q0.31 multiplier plus a right shift.
var ErrMultiplierRange = errors.New("fixedpoint: real multiplier out of range")

// RoundingDivideByPOT returns value / 2^shift rounded to nearest, ties toward
// +inf. shift < 1 returns value unchanged. The sum is formed in 64 bits so
// values near MaxInt32 do not wrap.
func RoundingDivideByPOT(value int32, shift int) int32 {
	if shift < 1 {
		return value
	}
	return int32((int64(value) + int64(1)<<(shift-1)) >> shift)
}

// RoundingDivideByPOT64 is RoundingDivideByPOT for 64-bit intermediates. The
// caller keeps value at least 2^(shift-1) below MaxInt64, which every product
// of an int32 by an int32 sum satisfies.
func RoundingDivideByPOT64(value int64, shift int) int64 {
	if shift < 1 {
		return value
	}
	return (value + int64(1)<<(shift-1)) >> shift
}

// SaturatingCastToUint8 clamps x to [0, 255] and narrows it.
func SaturatingCastToUint8(x int32) uint8 {
	if x < 0 {
		return 0
	}
	if x > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(x)
}

// SaturatingCastToInt16 clamps x to [-32768, 32767] and narrows it.
func SaturatingCastToInt16(x int32) int16 {
	if x < math.MinInt16 {
		return math.MinInt16
	}
	if x > math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(x)
}

// SaturatingCastToInt32 clamps x to the int32 range and narrows it.
func SaturatingCastToInt32(x int64) int32 {
	if x < math.MinInt32 {
		return math.MinInt32
	}
	if x > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(x)
}

// SaturatingAdd adds two int32 values, clamping instead of wrapping.
func SaturatingAdd(a, b int32) int32 {
	return SaturatingCastToInt32(int64(a) + int64(b))
}

// FixedPointMultiplyHigh returns the rounded high half of the doubled
// 64-bit product a*multiplier, i.e. the Q0.31 product of two Q0.31 values.
// Ties round away from zero. MinInt32*MinInt32 is the only product that
// does not fit and saturates to MaxInt32.
func FixedPointMultiplyHigh(a, multiplier int32) int32 {
	if a == math.MinInt32 && multiplier == math.MinInt32 {
		return math.MaxInt32
	}
	ab := int64(a) * int64(multiplier)
	nudge := int64(1) << 30
	if ab < 0 {
		nudge = 1 - nudge
	}
	// Division, not a shift: it truncates toward zero, which together with
	// the signed nudge gives round-half-away-from-zero.
	return int32((ab + nudge) / (int64(1) << 31))
}

// RangeRequantize returns RoundingDivideByPOT((v+offset)*multiplier, shift)
// computed in 64 bits and saturated to int32. The product cannot overflow
// for multiplier > MinInt32 and shift <= MaxShift64.
func RangeRequantize(v, offset, multiplier int32, shift int) int32 {
	x := (int64(v) + int64(offset)) * int64(multiplier)
	return SaturatingCastToInt32(RoundingDivideByPOT64(x, shift))
}

// FixedPointRequantize returns RoundingDivideByPOT(FixedPointMultiplyHigh(v,
// multiplier), shift) + postOffset, the addition saturating.
func FixedPointRequantize(v, multiplier int32, shift int, postOffset int32) int32 {
	return SaturatingAdd(RoundingDivideByPOT(FixedPointMultiplyHigh(v, multiplier), shift), postOffset)
}

// QuantizeMultiplier decomposes a real scale in (0, 1) into a Q0.31
// multiplier in [2^30, 2^31) and a right shift such that
//
//	RoundingDivideByPOT(FixedPointMultiplyHigh(v, multiplier), shift) ~= v * real
//
// It is the usual way calibration turns a float rescale factor into
// FixedPointRequantize parameters.
func QuantizeMultiplier(real float64) (multiplier int32, shift int, err error) {
	if !(real > 0 && real < 1) {
		return 0, 0, fmt.Errorf("%w: %v not in (0, 1)", ErrMultiplierRange, real)
	}
	frac, exp := math.Frexp(real) // real = frac * 2^exp, frac in [0.5, 1)
	q := int64(math.Round(frac * (1 << 31)))
	if q == 1<<31 {
		q /= 2
		exp++
	}
	shift = -exp
	if shift < 0 {
		return 0, 0, fmt.Errorf("%w: %v rounds to 1", ErrMultiplierRange, real)
	}
	if shift > MaxShift {
		return 0, 0, fmt.Errorf("%w: %v needs shift %d > %d", ErrMultiplierRange, real, shift, MaxShift)
	}
	return int32(q), shift, nil
}
