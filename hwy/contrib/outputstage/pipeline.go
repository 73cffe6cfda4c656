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
package outputstage

import (
	"fmt"
	"strings"

	"github.com/ajroetker/go-lowp/hwy"
)

// MaxStages is the longest pipeline NewPipeline accepts.
const MaxStages = 16

// Pipeline is a validated, immutable stage sequence producing Out. It is safe
// for concurrent use.
type Pipeline[Out Scalar] struct {
	stages  []Stage
	reprs   []Repr
	kernels []FragmentFunc
	eval    Evaluator
}

// NewPipeline builds a pipeline with DefaultEvaluator.
func NewPipeline[Out Scalar](stages ...Stage) (*Pipeline[Out], error) {
	return NewPipelineWith[Out](DefaultEvaluator(), stages...)
}

// NewPipelineWith builds a pipeline whose stages are compiled by eval.
//
// The representation chain is checked here and never again: stage 0 must
// consume Int32, each stage must consume what its predecessor produces, and
// the last stage must produce Out. An empty pipeline is the identity and is
// only valid for Out = int32.
func NewPipelineWith[Out Scalar](eval Evaluator, stages ...Stage) (*Pipeline[Out], error) {
	if len(stages) > MaxStages {
		return nil, fmt.Errorf("%w: %d stages, at most %d", ErrTooManyStages, len(stages), MaxStages)
	}
	reprs := make([]Repr, 0, len(stages)+1)
	reprs = append(reprs, Int32)
	for i, s := range stages {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		if prev := reprs[i]; s.In() != prev {
			return nil, fmt.Errorf("%w: stage %d (%s) consumes %s, previous stage produces %s",
				ErrReprMismatch, i, s.Kind(), s.In(), prev)
		}
		reprs = append(reprs, s.Out())
	}
	if last, want := reprs[len(reprs)-1], ReprOf[Out](); last != want {
		return nil, fmt.Errorf("%w: pipeline produces %s, destination stores %s", ErrReprMismatch, last, want)
	}

	kernels := make([]FragmentFunc, len(stages))
	for i, s := range stages {
		k, err := eval.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		kernels[i] = k
	}
	return &Pipeline[Out]{
		stages:  append([]Stage(nil), stages...),
		reprs:   reprs,
		kernels: kernels,
		eval:    eval,
	}, nil
}

// Len returns the number of stages.
func (p *Pipeline[Out]) Len() int { return len(p.stages) }

// Stages returns a copy of the stage list.
func (p *Pipeline[Out]) Stages() []Stage { return append([]Stage(nil), p.stages...) }

// Reprs returns the resolved representation chain: Reprs()[i] is the input
// of stage i and the last entry is the output.
func (p *Pipeline[Out]) Reprs() []Repr { return append([]Repr(nil), p.reprs...) }

// Evaluator returns the evaluator the stages were compiled with.
func (p *Pipeline[Out]) Evaluator() Evaluator { return p.eval }

// Evaluate runs one accumulator value at (r, c) through every stage.
func (p *Pipeline[Out]) Evaluate(acc int32, r, c int) Out {
	var f Fragment
	f.Repr, f.N, f.Row, f.Col = Int32, 1, r, c
	f.I32[0] = acc
	p.run(&f)
	var out [1]Out
	unload(&f, out[:])
	return out[0]
}

// EvaluateRow runs the accumulators of row r, starting at column c0, and
// writes min(len(acc), len(out)) results to out.
func (p *Pipeline[Out]) EvaluateRow(acc []int32, r, c0 int, out []Out) {
	var f Fragment
	fragment := func(i, w int) {
		f.Repr, f.N, f.Row, f.Col = Int32, w, r, c0+i
		copy(f.I32[:w], acc[i:i+w])
		p.run(&f)
		unload(&f, out[i:i+w])
	}
	hwy.ProcessWithTail(min(len(acc), len(out)), FragmentWidth,
		func(i int) { fragment(i, FragmentWidth) }, fragment)
}

func (p *Pipeline[Out]) run(f *Fragment) {
	for _, k := range p.kernels {
		k(f)
	}
}

// unload copies the live values of f into out.
func unload[Out Scalar](f *Fragment, out []Out) {
	switch o := any(out).(type) {
	case []int32:
		copy(o, f.I32[:f.N])
	case []uint8:
		copy(o, f.U8[:f.N])
	case []float32:
		copy(o, f.F32[:f.N])
	}
}

// String lists the stages and the representation chain.
func (p *Pipeline[Out]) String() string {
	var b strings.Builder
	b.WriteString(p.reprs[0].String())
	for i, s := range p.stages {
		fmt.Fprintf(&b, " -> %s -> %s", s, p.reprs[i+1])
	}
	return b.String()
}
