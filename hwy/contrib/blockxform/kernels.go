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
package blockxform

import "github.com/ajroetker/go-lowp/hwy/contrib/fixedpoint"

// Named kernels. Each one is Transform with the matching rule; parameters
// are not validated, see the rule types for their preconditions. The
// per-channel and bias kernels write nothing when given an empty vector.

// RequantizeInt32 applies Requantize{offset, multiplier, shift}.
func RequantizeInt32(src, dst []int32, count int, offset, multiplier int32, shift int) {
	Transform(Requantize{Offset: offset, Multiplier: multiplier, Shift: shift}, src, dst, count)
}

// FixedPointRequantizeInt32 applies FixedPointRequantize.
func FixedPointRequantizeInt32(src, dst []int32, count int, multiplier int32, shift int, postOffset int32) {
	Transform(FixedPointRequantize{Multiplier: multiplier, Shift: shift, PostOffset: postOffset}, src, dst, count)
}

// PerChannelRequantizeInt32 applies PerChannelRequantize; element i uses
// channel i % len(offsets).
func PerChannelRequantizeInt32(src, dst []int32, count int, offsets, multipliers []int32, shift int) {
	if len(offsets) == 0 || len(multipliers) == 0 {
		return
	}
	Transform(PerChannelRequantize{Offsets: offsets, Multipliers: multipliers, Shift: shift}, src, dst, count)
}

// SaturatingCastUint8 narrows int32 to uint8 with saturation.
func SaturatingCastUint8(src []int32, dst []uint8, count int) {
	Transform(SaturatingCast{}, src, dst, count)
}

// ClampInt32 clamps to [lo, hi].
func ClampInt32(src, dst []int32, count int, lo, hi int32) {
	Transform(Clamp[int32]{Lo: lo, Hi: hi}, src, dst, count)
}

// ClampUint8 clamps to [lo, hi].
func ClampUint8(src, dst []uint8, count int, lo, hi uint8) {
	Transform(Clamp[uint8]{Lo: lo, Hi: hi}, src, dst, count)
}

// MinMaxClampFloat32 clamps to [lo, hi].
func MinMaxClampFloat32(src, dst []float32, count int, lo, hi float32) {
	Transform(Clamp[float32]{Lo: lo, Hi: hi}, src, dst, count)
}

// BiasAddInt32 adds bias[i % len(bias)] to element i, saturating.
func BiasAddInt32(src, dst []int32, count int, bias []int32) {
	if len(bias) == 0 {
		return
	}
	Transform(BiasAdd{Bias: bias}, src, dst, count)
}

// BiasAddFloat32 adds bias[i % len(bias)] to element i.
func BiasAddFloat32(src, dst []float32, count int, bias []float32) {
	if len(bias) == 0 {
		return
	}
	Transform(BiasAddFloat{Bias: bias}, src, dst, count)
}

// TanhInt32 applies fixedpoint.TanhScaled(x, zero, amplitude).
func TanhInt32(src, dst []int32, count int, zero, amplitude int32) {
	Transform(Tanh{Zero: zero, Amplitude: amplitude}, src, dst, count)
}

// QuantizeFloat32 quantizes to uint8 codes.
func QuantizeFloat32(src []float32, dst []uint8, count int, a fixedpoint.Affine) {
	Transform(Quantize[uint8]{a}, src, dst, count)
}

// QuantizeFloat32ToInt32 quantizes to int32 codes.
func QuantizeFloat32ToInt32(src []float32, dst []int32, count int, a fixedpoint.Affine) {
	Transform(Quantize[int32]{a}, src, dst, count)
}

// DequantizeUint8 maps uint8 codes back to float32.
func DequantizeUint8(src []uint8, dst []float32, count int, a fixedpoint.Affine) {
	Transform(Dequantize[uint8]{a}, src, dst, count)
}

// DequantizeInt32 maps int32 codes back to float32.
func DequantizeInt32(src []int32, dst []float32, count int, a fixedpoint.Affine) {
	Transform(Dequantize[int32]{a}, src, dst, count)
}
