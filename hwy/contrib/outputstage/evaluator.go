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
	"math"

	"github.com/ajroetker/go-lowp/hwy"
	"github.com/ajroetker/go-lowp/hwy/contrib/fixedpoint"
)

// FragmentWidth is the number of cells in one Fragment.
const FragmentWidth = 16

// Fragment is a strip of up to FragmentWidth cells of one row, starting at
// column Col. Exactly one of the value arrays is live, selected by Repr.
// Fragments live only for one evaluation.
type Fragment struct {
	Repr Repr
	N    int
	Row  int
	Col  int

	I32 [FragmentWidth]int32
	U8  [FragmentWidth]uint8
	F32 [FragmentWidth]float32
}

// FragmentFunc applies one compiled stage to a Fragment in place, switching
// its live representation when the stage changes it.
type FragmentFunc func(f *Fragment)

// Evaluator compiles a stage into a FragmentFunc. Every implementation must
// produce the same bits as Stage.Apply.
type Evaluator interface {
	Name() string
	Compile(s Stage) (FragmentFunc, error)
}

var defaultEvaluator Evaluator

func init() {
	if hwy.Vectorized() {
		defaultEvaluator = VectorEvaluator{}
	} else {
		defaultEvaluator = ScalarEvaluator{}
	}
}

// DefaultEvaluator returns the evaluator chosen for this CPU at init.
func DefaultEvaluator() Evaluator {
	return defaultEvaluator
}

// ScalarEvaluator applies each stage's element rule cell by cell.
type ScalarEvaluator struct{}

// Name implements Evaluator.
func (ScalarEvaluator) Name() string { return "scalar" }

// Compile implements Evaluator.
func (ScalarEvaluator) Compile(s Stage) (FragmentFunc, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	a := s.p.Affine
	switch {
	case s.in == Int32 && s.out == Int32:
		return func(f *Fragment) {
			for i := range f.N {
				f.I32[i] = s.applyInt32(f.I32[i], f.Row, f.Col+i)
			}
		}, nil
	case s.in == Int32 && s.out == Uint8:
		return func(f *Fragment) {
			for i := range f.N {
				f.U8[i] = fixedpoint.SaturatingCastToUint8(f.I32[i])
			}
			f.Repr = Uint8
		}, nil
	case s.in == Uint8 && s.out == Uint8:
		lo, hi := uint8(s.p.Lo), uint8(s.p.Hi)
		return func(f *Fragment) {
			for i := range f.N {
				f.U8[i] = min(max(f.U8[i], lo), hi)
			}
		}, nil
	case s.in == Float32 && s.out == Float32:
		return func(f *Fragment) {
			for i := range f.N {
				f.F32[i] = s.applyFloat32(f.F32[i], f.Row, f.Col+i)
			}
		}, nil
	case s.in == Float32 && s.out == Uint8:
		return func(f *Fragment) {
			for i := range f.N {
				f.U8[i] = uint8(a.Quantize(f.F32[i], 0, math.MaxUint8))
			}
			f.Repr = Uint8
		}, nil
	case s.in == Float32 && s.out == Int32:
		return func(f *Fragment) {
			for i := range f.N {
				f.I32[i] = a.Quantize(f.F32[i], math.MinInt32, math.MaxInt32)
			}
			f.Repr = Int32
		}, nil
	case s.in == Uint8 && s.out == Float32:
		return func(f *Fragment) {
			for i := range f.N {
				f.F32[i] = a.Dequantize(int32(f.U8[i]))
			}
			f.Repr = Float32
		}, nil
	case s.in == Int32 && s.out == Float32:
		return func(f *Fragment) {
			for i := range f.N {
				f.F32[i] = a.Dequantize(f.I32[i])
			}
			f.Repr = Float32
		}, nil
	}
	return nil, fmt.Errorf("%w: %s: no %s -> %s rule", ErrInvalidStage, s.kind, s.in, s.out)
}

// VectorEvaluator expresses each stage with hwy lane operations over the
// whole Fragment. Tanh has no lane form and runs its element rule.
type VectorEvaluator struct{}

// Name implements Evaluator.
func (VectorEvaluator) Name() string { return "vector" }

// Compile implements Evaluator.
func (VectorEvaluator) Compile(s Stage) (FragmentFunc, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	p := s.p
	switch s.kind {
	case KindRangeRequantize:
		return func(f *Fragment) {
			v := hwy.LoadN(f.I32[:], f.N)
			fixedpoint.RangeRequantizeLanes(v, hwy.SetN(p.Offset, f.N), hwy.SetN(p.Multiplier, f.N), p.Shift).Store(f.I32[:])
		}, nil

	case KindPerChannelRequantize:
		return func(f *Fragment) {
			offsets, multipliers := channelLanes(p.Offsets, p.Axis, f), channelLanes(p.Multipliers, p.Axis, f)
			fixedpoint.RangeRequantizeLanes(hwy.LoadN(f.I32[:], f.N), offsets, multipliers, p.Shift).Store(f.I32[:])
		}, nil

	case KindFixedPointRequantize:
		return func(f *Fragment) {
			v := hwy.LoadN(f.I32[:], f.N)
			fixedpoint.FixedPointRequantizeLanes(v, p.Multiplier, p.Shift, p.PostOffset).Store(f.I32[:])
		}, nil

	case KindSaturatingCast:
		return func(f *Fragment) {
			hwy.DemoteI32ToU8(hwy.LoadN(f.I32[:], f.N)).Store(f.U8[:])
			f.Repr = Uint8
		}, nil

	case KindClamp:
		if s.in == Uint8 {
			lo, hi := uint8(p.Lo), uint8(p.Hi)
			return func(f *Fragment) {
				hwy.Clamp(hwy.LoadN(f.U8[:], f.N), hwy.SetN(lo, f.N), hwy.SetN(hi, f.N)).Store(f.U8[:])
			}, nil
		}
		return func(f *Fragment) {
			hwy.Clamp(hwy.LoadN(f.I32[:], f.N), hwy.SetN(p.Lo, f.N), hwy.SetN(p.Hi, f.N)).Store(f.I32[:])
		}, nil

	case KindMinMaxClamp:
		return func(f *Fragment) {
			hwy.Clamp(hwy.LoadN(f.F32[:], f.N), hwy.SetN(p.FLo, f.N), hwy.SetN(p.FHi, f.N)).Store(f.F32[:])
		}, nil

	case KindBiasAdd:
		if s.in == Float32 {
			return func(f *Fragment) {
				hwy.Add(hwy.LoadN(f.F32[:], f.N), channelLanes(p.FBias, p.Axis, f)).Store(f.F32[:])
			}, nil
		}
		return func(f *Fragment) {
			hwy.SaturatedAddI32(hwy.LoadN(f.I32[:], f.N), channelLanes(p.Bias, p.Axis, f)).Store(f.I32[:])
		}, nil

	case KindTanh:
		return func(f *Fragment) {
			for i := range f.N {
				f.I32[i] = fixedpoint.TanhScaled(f.I32[i], p.Zero, p.Amplitude)
			}
		}, nil

	case KindQuantize:
		a := p.Affine
		return func(f *Fragment) {
			x := hwy.LoadN(f.F32[:], f.N)
			if s.out == Uint8 {
				hwy.DemoteI32ToU8(a.QuantizeLanes(x, 0, math.MaxUint8)).Store(f.U8[:])
				f.Repr = Uint8
				return
			}
			a.QuantizeLanes(x, math.MinInt32, math.MaxInt32).Store(f.I32[:])
			f.Repr = Int32
		}, nil

	case KindDequantize:
		a := p.Affine
		return func(f *Fragment) {
			var codes hwy.Vec[int32]
			if s.in == Uint8 {
				codes = hwy.PromoteU8ToI32(hwy.LoadN(f.U8[:], f.N))
			} else {
				codes = hwy.LoadN(f.I32[:], f.N)
			}
			a.DequantizeLanes(codes).Store(f.F32[:])
			f.Repr = Float32
		}, nil
	}
	return nil, fmt.Errorf("%w: %s has no vector form", ErrInvalidStage, s.kind)
}

// channelLanes gathers a per-channel vector for the cells of f: one entry per
// column for ByCol, the row's entry broadcast for ByRow.
func channelLanes[T hwy.Lanes](values []T, axis Axis, f *Fragment) hwy.Vec[T] {
	if axis == ByRow {
		return hwy.SetN(values[f.Row], f.N)
	}
	return hwy.LoadN(values[f.Col:f.Col+f.N], f.N)
}
