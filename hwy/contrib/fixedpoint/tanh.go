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

import "math"

// Tanh input format and table geometry. The table samples tanh on [0, 8] at
// steps of 1/32; inputs at or beyond 8 saturate to one.
const (
	// TanhInputFracBits is the number of fractional bits of Tanh's Q4.27 input.
	TanhInputFracBits = 27

	tanhStepBits   = 5 // 32 samples per unit
	tanhSegments   = 8 << tanhStepBits
	tanhInterpBits = TanhInputFracBits - tanhStepBits
	tanhSaturation = int64(8) << TanhInputFracBits
)

// tanhTable[i] = round(tanh(i/32) * MaxInt32). It is strictly increasing,
// which is what makes the interpolated Tanh monotonic.
var tanhTable = func() (t [tanhSegments + 1]int32) {
	for i := range t {
		t[i] = int32(math.Round(math.Tanh(float64(i)/(1<<tanhStepBits)) * math.MaxInt32))
	}
	return t
}()

// Tanh evaluates tanh on a Q4.27 input and returns a Q0.31 result.
//
// The approximation is piecewise linear between table samples, so it is
// monotonic, exactly odd (Tanh(-x) == -Tanh(x)) and saturates to
// +-MaxInt32 for |x| >= 8. Its absolute error is below 2e-4.
func Tanh(x int32) int32 {
	ax := int64(x)
	neg := ax < 0
	if neg {
		ax = -ax
	}
	var y int32
	if ax >= tanhSaturation {
		y = math.MaxInt32
	} else {
		idx := ax >> tanhInterpBits
		frac := ax & (1<<tanhInterpBits - 1)
		lo, hi := int64(tanhTable[idx]), int64(tanhTable[idx+1])
		y = int32(lo + ((hi-lo)*frac+1<<(tanhInterpBits-1))>>tanhInterpBits)
	}
	if neg {
		return -y
	}
	return y
}

// TanhScaled maps an integer v whose real value is (v-zero)/amplitude through
// tanh and back onto the same scale:
//
//	zero + round(amplitude * tanh((v - zero) / amplitude))
//
// Inputs at least 8*amplitude away from zero saturate to zero +- amplitude.
// The result is monotonic in v and symmetric around zero. amplitude must be
// positive.
func TanhScaled(v, zero, amplitude int32) int32 {
	d := int64(v) - int64(zero)
	neg := d < 0
	if neg {
		d = -d
	}
	amp := int64(amplitude)
	var y int64
	if d >= 8*amp {
		y = amp
	} else {
		// d < 8*amp < 2^34, so the shifted value stays below 2^61.
		xq := (d << TanhInputFracBits) / amp
		t := int64(Tanh(int32(xq)))
		y = (t*amp + 1<<30) >> 31
	}
	if neg {
		y = -y
	}
	return SaturatingCastToInt32(int64(zero) + y)
}
