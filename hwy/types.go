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

// Package hwy is the lane substrate of go-lowp: portable vector handles,
// the integer and float lane operations used by the batched output-stage
// kernels, and the runtime dispatch level that decides whether those batched
// kernels are used at all.
//
// Basic usage:
//
//	import "github.com/ajroetker/go-lowp/hwy"
//
//	acc := hwy.LoadN(accumulators, n)
//	wide := hwy.PromoteI32ToI64(acc)
//	wide = hwy.Mul(hwy.Add(wide, hwy.SetN(offset, n)), hwy.SetN(mult, n))
//	out := hwy.DemoteI64ToI32(hwy.RoundingShiftRight(wide, shift))
//	hwy.Store(out, dst)
//
// Every operation here has a scalar meaning that is bit-identical to the
// corresponding function in hwy/contrib/fixedpoint; the batched kernels rely
// on that to stay interchangeable with the scalar ones.
package hwy

// Floats is a constraint for floating-point types.
type Floats interface {
	~float32 | ~float64
}

// SignedInts is a constraint for signed integer types.
type SignedInts interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// UnsignedInts is a constraint for unsigned integer types.
type UnsignedInts interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Integers is a constraint for all integer types.
type Integers interface {
	SignedInts | UnsignedInts
}

// Lanes is a constraint for all types that can be stored in vector lanes.
type Lanes interface {
	Floats | Integers
}

// Vec is a portable vector handle of any number of lanes. Block kernels use
// one Vec per block. Binary operations work on the common prefix.
//
// Vec instances should not be created directly; use LoadN or SetN instead.
type Vec[T Lanes] struct {
	data []T
}

// NumLanes returns the number of lanes (elements) in this vector.
func (v Vec[T]) NumLanes() int {
	return len(v.data)
}

// Data returns the underlying slice representation of the vector.
// This is primarily for testing and should not be used in performance-critical code.
func (v Vec[T]) Data() []T {
	return v.data
}

// Store writes the vector's data to a slice.
// This is the method form of the hwy.Store function.
func (v Vec[T]) Store(dst []T) {
	Store(v, dst)
}
