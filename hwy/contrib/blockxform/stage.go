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
package blockxform

import (
	"fmt"

	"github.com/ajroetker/go-lowp/hwy/contrib/outputstage"
)

// Kernel is a bulk transform for one output stage with its element types
// erased, for callers that only know the stage at run time.
type Kernel struct {
	stage outputstage.Stage
	run   func(src, dst any, count int) error
}

// ForStage returns the flat kernel for s. Per-channel and bias vectors are
// indexed by element position modulo their length; the stage's axis and
// shape do not apply to a flat buffer.
func ForStage(s outputstage.Stage) (Kernel, error) {
	if err := s.Validate(); err != nil {
		return Kernel{}, err
	}
	p := s.Params()
	switch s.Kind() {
	case outputstage.KindRangeRequantize:
		return newKernel[int32, int32](s, Requantize{Offset: p.Offset, Multiplier: p.Multiplier, Shift: p.Shift}), nil
	case outputstage.KindFixedPointRequantize:
		return newKernel[int32, int32](s, FixedPointRequantize{Multiplier: p.Multiplier, Shift: p.Shift, PostOffset: p.PostOffset}), nil
	case outputstage.KindPerChannelRequantize:
		return newKernel[int32, int32](s, PerChannelRequantize{Offsets: p.Offsets, Multipliers: p.Multipliers, Shift: p.Shift}), nil
	case outputstage.KindSaturatingCast:
		return newKernel[int32, uint8](s, SaturatingCast{}), nil
	case outputstage.KindClamp:
		if s.In() == outputstage.Uint8 {
			return newKernel[uint8, uint8](s, Clamp[uint8]{Lo: uint8(p.Lo), Hi: uint8(p.Hi)}), nil
		}
		return newKernel[int32, int32](s, Clamp[int32]{Lo: p.Lo, Hi: p.Hi}), nil
	case outputstage.KindMinMaxClamp:
		return newKernel[float32, float32](s, Clamp[float32]{Lo: p.FLo, Hi: p.FHi}), nil
	case outputstage.KindBiasAdd:
		if s.In() == outputstage.Float32 {
			return newKernel[float32, float32](s, BiasAddFloat{Bias: p.FBias}), nil
		}
		return newKernel[int32, int32](s, BiasAdd{Bias: p.Bias}), nil
	case outputstage.KindTanh:
		return newKernel[int32, int32](s, Tanh{Zero: p.Zero, Amplitude: p.Amplitude}), nil
	case outputstage.KindQuantize:
		if s.Out() == outputstage.Uint8 {
			return newKernel[float32, uint8](s, Quantize[uint8]{p.Affine}), nil
		}
		return newKernel[float32, int32](s, Quantize[int32]{p.Affine}), nil
	case outputstage.KindDequantize:
		if s.In() == outputstage.Uint8 {
			return newKernel[uint8, float32](s, Dequantize[uint8]{p.Affine}), nil
		}
		return newKernel[int32, float32](s, Dequantize[int32]{p.Affine}), nil
	}
	return Kernel{}, fmt.Errorf("%w: %s has no block kernel", outputstage.ErrInvalidStage, s.Kind())
}

func newKernel[In, Out outputstage.Scalar, R Rule[In, Out]](s outputstage.Stage, rule R) Kernel {
	return Kernel{
		stage: s,
		run: func(src, dst any, count int) error {
			in, ok := src.([]In)
			if !ok {
				return fmt.Errorf("%w: %s kernel reads []%s, got %T", outputstage.ErrReprMismatch, s.Kind(), s.In(), src)
			}
			out, ok := dst.([]Out)
			if !ok {
				return fmt.Errorf("%w: %s kernel writes []%s, got %T", outputstage.ErrReprMismatch, s.Kind(), s.Out(), dst)
			}
			Transform(rule, in, out, count)
			return nil
		},
	}
}

// Stage returns the stage the kernel was built from.
func (k Kernel) Stage() outputstage.Stage { return k.stage }

// In returns the element representation the kernel reads.
func (k Kernel) In() outputstage.Repr { return k.stage.In() }

// Out returns the element representation the kernel writes.
func (k Kernel) Out() outputstage.Repr { return k.stage.Out() }

// Run transforms count elements of src into dst. src and dst must be slices
// of the kernel's In and Out types.
func (k Kernel) Run(src, dst any, count int) error {
	if k.run == nil {
		return fmt.Errorf("%w: zero Kernel", outputstage.ErrInvalidStage)
	}
	return k.run(src, dst, count)
}
