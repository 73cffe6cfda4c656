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
	"fmt"
	"math"
)

// Affine is the real <-> integer map used by quantize and dequantize:
//
//	q = (x - Min) * Scale + Offset
//	x = (q - Offset) / Scale + Min
//
// All arithmetic is float64; only the final dequantized value is narrowed to
// float32.
type Affine struct {
	Min    float64
	Scale  float64
	Offset float64
}

// Validate reports whether the map is invertible and finite.
func (a Affine) Validate() error {
	if math.IsNaN(a.Scale) || math.IsInf(a.Scale, 0) || a.Scale == 0 {
		return fmt.Errorf("affine scale %v must be finite and non-zero", a.Scale)
	}
	if math.IsNaN(a.Min) || math.IsInf(a.Min, 0) || math.IsNaN(a.Offset) || math.IsInf(a.Offset, 0) {
		return fmt.Errorf("affine min %v and offset %v must be finite", a.Min, a.Offset)
	}
	return nil
}

// Quantize maps x to the nearest integer code, ties to even, and saturates
// it to [lo, hi]. NaN maps to lo.
func (a Affine) Quantize(x float32, lo, hi int32) int32 {
	// The conversion rounds the product so it is never fused with the add.
	q := math.RoundToEven(float64((float64(x)-a.Min)*a.Scale) + a.Offset)
	switch {
	case q != q || q <= float64(lo):
		return lo
	case q >= float64(hi):
		return hi
	}
	return int32(q)
}

// Dequantize maps an integer code back to a real value.
func (a Affine) Dequantize(q int32) float32 {
	return float32((float64(q)-a.Offset)/a.Scale + a.Min)
}
