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
// Package outputstage turns int32 GEMM accumulators into stored uint8, int32
// or float32 values by running them through an ordered list of stages.
//
// A Stage is one elementwise transformation with a fixed numeric contract
// (requantize, bias add, clamp, tanh, quantize, ...). Stages carry the
// representation they consume and produce; NewPipeline checks the whole
// chain once and returns a *Pipeline[Out] whose output type is fixed by Go
// generics:
//
//	p, err := outputstage.NewPipeline[uint8](
//		outputstage.RangeRequantize(-100, 3, 4),
//		outputstage.SaturatingCast(),
//	)
//	if err != nil {
//		return err
//	}
//	q := p.Evaluate(acc, row, col)
//
// # Evaluation strategies
//
// A pipeline compiles every stage through an Evaluator. ScalarEvaluator runs
// the per-element rule lane by lane; VectorEvaluator expresses the same rule
// with hwy lane operations over a whole Fragment. DefaultEvaluator picks one
// at init from hwy.CurrentLevel (scalar when HWY_NO_SIMD is set). Both
// strategies produce identical bits.
//
// # GEMM output
//
// Run and RunParallel evaluate every cell of an AccumulatorSource and store
// the results through a Destination. Accumulators applies the usual
// zero-point corrections from per-row and per-column sums.
package outputstage
