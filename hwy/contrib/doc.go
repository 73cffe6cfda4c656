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
// Package contrib groups the packages that turn int32 GEMM accumulators into
// stored low-precision outputs.
//
// # Subpackages
//
//   - fixedpoint: scalar rounding, saturation, Q0.31 multiply, tanh and the
//     affine quantize map, plus their lane forms on hwy.Vec
//   - outputstage: stages, evaluators, pipelines and destinations for the
//     per-element output path of a GEMM
//   - blockxform: bulk kernels over flat buffers, processed in blocks of 16
//     with a generated routine for every remainder
//   - workerpool: persistent goroutines for splitting rows or blocks
//   - calib: YAML and JSON calibration documents that build pipelines
//
// # Output pipelines (hwy/contrib/outputstage)
//
//	import "github.com/ajroetker/go-lowp/hwy/contrib/outputstage"
//
//	p, err := outputstage.NewPipeline[uint8](
//	    outputstage.RangeRequantize(-100, 3, 4),
//	    outputstage.SaturatingCast(),
//	)
//	q := p.Evaluate(acc, row, col)
//
// # Block kernels (hwy/contrib/blockxform)
//
//	import "github.com/ajroetker/go-lowp/hwy/contrib/blockxform"
//
//	blockxform.RequantizeInt32(acc, scaled, len(acc), -100, 3, 4)
//	blockxform.SaturatingCastUint8(scaled, out, len(scaled))
//
// Both paths pick their vector or scalar implementation once at startup from
// the hwy dispatch level. Setting HWY_NO_SIMD forces the scalar one.
package contrib
