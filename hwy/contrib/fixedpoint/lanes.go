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

import "github.com/ajroetker/go-lowp/hwy"

// Lane forms of the requantize and affine rules. Each produces exactly the
// bits of its scalar counterpart on every lane.

// RangeRequantizeLanes is RangeRequantize with per-lane offsets and
// multipliers.
func RangeRequantizeLanes(v, offsets, multipliers hwy.Vec[int32], shift int) hwy.Vec[int32] {
	x := hwy.Add(hwy.PromoteI32ToI64(v), hwy.PromoteI32ToI64(offsets))
	x = hwy.Mul(x, hwy.PromoteI32ToI64(multipliers))
	return hwy.DemoteI64ToI32(hwy.RoundingShiftRight(x, shift))
}

// FixedPointRequantizeLanes is FixedPointRequantize on every lane.
func FixedPointRequantizeLanes(v hwy.Vec[int32], multiplier int32, shift int, postOffset int32) hwy.Vec[int32] {
	n := v.NumLanes()
	x := hwy.RoundingShiftRight(hwy.MulFixedPoint31(v, hwy.SetN(multiplier, n)), shift)
	return hwy.SaturatedAddI32(x, hwy.SetN(postOffset, n))
}

// QuantizeLanes is Affine.Quantize on every lane.
func (a Affine) QuantizeLanes(v hwy.Vec[float32], lo, hi int32) hwy.Vec[int32] {
	n := v.NumLanes()
	x := hwy.Mul(hwy.Sub(hwy.PromoteF32ToF64(v), hwy.SetN(a.Min, n)), hwy.SetN(a.Scale, n))
	x = hwy.RoundToEven(hwy.Add(x, hwy.SetN(a.Offset, n)))
	return hwy.ConvertToInt32Saturating(x, lo, hi)
}

// DequantizeLanes is Affine.Dequantize on every lane.
func (a Affine) DequantizeLanes(q hwy.Vec[int32]) hwy.Vec[float32] {
	n := q.NumLanes()
	x := hwy.Sub(hwy.ConvertToFloat64(q), hwy.SetN(a.Offset, n))
	x = hwy.Add(hwy.Div(x, hwy.SetN(a.Scale, n)), hwy.SetN(a.Min, n))
	return hwy.DemoteF64ToF32(x)
}
