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

// Package fixedpoint provides the scalar integer primitives every output
// stage is defined in terms of.
//
// # Rounding
//
// RoundingDivideByPOT divides by 2^shift rounding to nearest. The bias term
// 1<<(shift-1) is added exactly once before an arithmetic shift, so ties
// round toward +inf:
//
//	RoundingDivideByPOT(3, 1)  == 2
//	RoundingDivideByPOT(-3, 1) == -1
//	RoundingDivideByPOT(x, 0)  == x
//
// The batched lane operation hwy.RoundingShiftRight implements the same rule
// and the two are tested against each other.
//
// # Fixed-point formats
//
// Qm.n below means a signed 32-bit value with m integer bits and n
// fractional bits (m+n == 31). FixedPointMultiplyHigh multiplies two Q0.31
// values; Tanh maps Q4.27 to Q0.31.
//
// # Saturation
//
// SaturatingCastToUint8, SaturatingCastToInt16 and SaturatingCastToInt32
// clamp before narrowing and are defined for every input.
package fixedpoint
