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

import (
	"math"

	"github.com/ajroetker/go-lowp/hwy"
	"github.com/ajroetker/go-lowp/hwy/contrib/fixedpoint"
)

// Requantize is range requantization with one offset and multiplier:
// RoundingDivideByPOT((x+Offset)*Multiplier, Shift) in 64 bits, saturated.
type Requantize struct {
	Offset     int32
	Multiplier int32
	Shift      int
}

func (r Requantize) Apply(x int32, _ int) int32 {
	return fixedpoint.RangeRequantize(x, r.Offset, r.Multiplier, r.Shift)
}

func (r Requantize) ApplyBlock(src, dst *[BlockSize]int32, _ int) {
	v := hwy.LoadN(src[:], BlockSize)
	off, mul := hwy.SetN(r.Offset, BlockSize), hwy.SetN(r.Multiplier, BlockSize)
	fixedpoint.RangeRequantizeLanes(v, off, mul, r.Shift).Store(dst[:])
}

// FixedPointRequantize multiplies by a Q0.31 multiplier, shifts right with
// rounding and adds PostOffset with saturation.
type FixedPointRequantize struct {
	Multiplier int32
	Shift      int
	PostOffset int32
}

func (r FixedPointRequantize) Apply(x int32, _ int) int32 {
	return fixedpoint.FixedPointRequantize(x, r.Multiplier, r.Shift, r.PostOffset)
}

func (r FixedPointRequantize) ApplyBlock(src, dst *[BlockSize]int32, _ int) {
	fixedpoint.FixedPointRequantizeLanes(hwy.LoadN(src[:], BlockSize), r.Multiplier, r.Shift, r.PostOffset).Store(dst[:])
}

// PerChannelRequantize is Requantize with the offset and multiplier of
// element i taken from channel i % len(Offsets). Offsets and Multipliers
// have the same non-zero length; Apply panics on empty vectors.
type PerChannelRequantize struct {
	Offsets     []int32
	Multipliers []int32
	Shift       int
}

func (r PerChannelRequantize) Apply(x int32, i int) int32 {
	k := i % len(r.Offsets)
	return fixedpoint.RangeRequantize(x, r.Offsets[k], r.Multipliers[k], r.Shift)
}

func (r PerChannelRequantize) ApplyBlock(src, dst *[BlockSize]int32, base int) {
	off, mul := cycle(r.Offsets, base), cycle(r.Multipliers, base)
	fixedpoint.RangeRequantizeLanes(hwy.LoadN(src[:], BlockSize), off, mul, r.Shift).Store(dst[:])
}

// SaturatingCast narrows int32 to uint8, clamping to [0, 255].
type SaturatingCast struct{}

func (SaturatingCast) Apply(x int32, _ int) uint8 {
	return fixedpoint.SaturatingCastToUint8(x)
}

func (SaturatingCast) ApplyBlock(src *[BlockSize]int32, dst *[BlockSize]uint8, _ int) {
	hwy.DemoteI32ToU8(hwy.LoadN(src[:], BlockSize)).Store(dst[:])
}

// Clamp bounds every element to [Lo, Hi]. For floats a NaN stays NaN.
type Clamp[T int32 | uint8 | float32] struct {
	Lo, Hi T
}

func (r Clamp[T]) Apply(x T, _ int) T {
	return min(max(x, r.Lo), r.Hi)
}

func (r Clamp[T]) ApplyBlock(src, dst *[BlockSize]T, _ int) {
	hwy.Clamp(hwy.LoadN(src[:], BlockSize), hwy.SetN(r.Lo, BlockSize), hwy.SetN(r.Hi, BlockSize)).Store(dst[:])
}

// BiasAdd adds Bias[i % len(Bias)] to element i, saturating. Bias must not
// be empty.
type BiasAdd struct {
	Bias []int32
}

func (r BiasAdd) Apply(x int32, i int) int32 {
	return fixedpoint.SaturatingAdd(x, r.Bias[i%len(r.Bias)])
}

func (r BiasAdd) ApplyBlock(src, dst *[BlockSize]int32, base int) {
	hwy.SaturatedAddI32(hwy.LoadN(src[:], BlockSize), cycle(r.Bias, base)).Store(dst[:])
}

// BiasAddFloat adds Bias[i % len(Bias)] to element i. Bias must not be
// empty.
type BiasAddFloat struct {
	Bias []float32
}

func (r BiasAddFloat) Apply(x float32, i int) float32 {
	return x + r.Bias[i%len(r.Bias)]
}

func (r BiasAddFloat) ApplyBlock(src, dst *[BlockSize]float32, base int) {
	hwy.Add(hwy.LoadN(src[:], BlockSize), cycle(r.Bias, base)).Store(dst[:])
}

// Tanh is fixedpoint.TanhScaled. It has no block form.
type Tanh struct {
	Zero      int32
	Amplitude int32
}

func (r Tanh) Apply(x int32, _ int) int32 {
	return fixedpoint.TanhScaled(x, r.Zero, r.Amplitude)
}

// Quantize maps float32 to integer codes of T under Affine, ties to even,
// saturating to the range of T.
type Quantize[T uint8 | int32] struct {
	fixedpoint.Affine
}

func codeRange[T uint8 | int32]() (lo, hi int32) {
	var zero T
	if _, ok := any(zero).(uint8); ok {
		return 0, math.MaxUint8
	}
	return math.MinInt32, math.MaxInt32
}

func (r Quantize[T]) Apply(x float32, _ int) T {
	lo, hi := codeRange[T]()
	return T(r.Affine.Quantize(x, lo, hi))
}

func (r Quantize[T]) ApplyBlock(src *[BlockSize]float32, dst *[BlockSize]T, _ int) {
	lo, hi := codeRange[T]()
	q := r.QuantizeLanes(hwy.LoadN(src[:], BlockSize), lo, hi).Data()
	for j := range dst {
		dst[j] = T(q[j])
	}
}

// Dequantize maps integer codes of T back to float32 under Affine.
type Dequantize[T uint8 | int32] struct {
	fixedpoint.Affine
}

func (r Dequantize[T]) Apply(x T, _ int) float32 {
	return r.Affine.Dequantize(int32(x))
}

func (r Dequantize[T]) ApplyBlock(src *[BlockSize]T, dst *[BlockSize]float32, _ int) {
	var codes [BlockSize]int32
	for j, x := range src {
		codes[j] = int32(x)
	}
	r.DequantizeLanes(hwy.LoadN(codes[:], BlockSize)).Store(dst[:])
}

// cycle returns the BlockSize entries of values starting at index base,
// wrapping around the end of values.
func cycle[T hwy.Lanes](values []T, base int) hwy.Vec[T] {
	var lanes [BlockSize]T
	k := base % len(values)
	for j := range lanes {
		lanes[j] = values[k]
		if k++; k == len(values) {
			k = 0
		}
	}
	return hwy.LoadN(lanes[:], BlockSize)
}
