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
// Package blockxform applies elementwise output-stage rules to contiguous
// buffers in blocks of BlockSize elements.
//
// Transform runs count/BlockSize full blocks and then exactly one leftover
// call for the remaining count%BlockSize elements. Each possible remainder
// has its own straight-line routine, generated by cmd/remgen into
// zz_remainder_gen.go, so the tail never loops or tests per element. The
// leftover path computes the same values as the block path; only the amount
// of work per call differs.
//
// Rules are small value types with an Apply(x, i) method. Those that also
// implement ApplyBlock get a whole-block lane implementation built on hwy,
// used for full blocks when the CPU has a vector unit:
//
//	scaled := make([]int32, len(acc))
//	blockxform.RequantizeInt32(acc, scaled, len(acc), -100, 3, 4)
//	out := make([]uint8, len(acc))
//	blockxform.SaturatingCastUint8(scaled, out, len(scaled))
//
// Per-channel and bias vectors in the flat kernels are indexed by the
// element's position modulo the vector length, so a bias of one entry per
// column repeats across the rows of a row-major buffer.
package blockxform

//go:generate go run ../../../cmd/remgen -block 16 -pkg blockxform -output zz_remainder_gen.go
