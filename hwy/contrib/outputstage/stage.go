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
	"slices"
	"strings"

	"github.com/ajroetker/go-lowp/hwy/contrib/fixedpoint"
)

// Kind tags the variant of a Stage.
type Kind uint8

const (
	KindRangeRequantize Kind = iota + 1
	KindFixedPointRequantize
	KindPerChannelRequantize
	KindSaturatingCast
	KindClamp
	KindMinMaxClamp
	KindBiasAdd
	KindTanh
	KindQuantize
	KindDequantize
)

var kindNames = [...]string{
	KindRangeRequantize:      "range_requantize",
	KindFixedPointRequantize: "fixed_point_requantize",
	KindPerChannelRequantize: "per_channel_requantize",
	KindSaturatingCast:       "saturating_cast",
	KindClamp:                "clamp",
	KindMinMaxClamp:          "min_max_clamp",
	KindBiasAdd:              "bias_add",
	KindTanh:                 "tanh",
	KindQuantize:             "quantize",
	KindDequantize:           "dequantize",
}

// String returns the snake_case name used in calibration documents.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name != "" && name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown stage kind %q", ErrInvalidStage, s)
}

// Axis selects which coordinate indexes a per-channel parameter vector.
type Axis uint8

const (
	// ByRow indexes the vector with the row r.
	ByRow Axis = iota
	// ByCol indexes the vector with the column c.
	ByCol
)

func (a Axis) String() string {
	if a == ByRow {
		return "row"
	}
	return "col"
}

// Shape is the declared shape of a bias vector.
type Shape uint8

const (
	// RowShaped is a 1xN bias with one entry per column, broadcast down the
	// rows.
	RowShaped Shape = iota
	// ColShaped is an Mx1 bias with one entry per row, broadcast across the
	// columns.
	ColShaped
)

// axis returns the coordinate that indexes a bias of this shape.
func (s Shape) axis() Axis {
	if s == RowShaped {
		return ByCol
	}
	return ByRow
}

func (s Shape) String() string {
	if s == RowShaped {
		return "row_shaped"
	}
	return "col_shaped"
}

// Params holds every numeric constant a stage may carry. Only the fields
// relevant to a stage's Kind are set. Slices are shared with the stage and
// must not be modified.
type Params struct {
	Offset     int32
	Multiplier int32
	Shift      int
	PostOffset int32

	Axis        Axis
	Offsets     []int32
	Multipliers []int32

	Lo, Hi   int32
	FLo, FHi float32

	Shape Shape
	Bias  []int32
	FBias []float32

	Zero      int32
	Amplitude int32

	Affine fixedpoint.Affine
}

// Stage is an immutable elementwise transformation. Build one with the
// constructor for its variant; parameters are checked by Validate, which
// NewPipeline calls.
type Stage struct {
	kind    Kind
	in, out Repr
	p       Params
}

// RangeRequantize computes RoundingDivideByPOT((v + offset) * multiplier,
// shift) in 64-bit arithmetic and saturates the result to int32.
func RangeRequantize(offset, multiplier int32, shift int) Stage {
	return Stage{kind: KindRangeRequantize, in: Int32, out: Int32,
		p: Params{Offset: offset, Multiplier: multiplier, Shift: shift}}
}

// FixedPointRequantize computes RoundingDivideByPOT(FixedPointMultiplyHigh(v,
// multiplier), shift) + postOffset, the addition saturating.
func FixedPointRequantize(multiplier int32, shift int, postOffset int32) Stage {
	return Stage{kind: KindFixedPointRequantize, in: Int32, out: Int32,
		p: Params{Multiplier: multiplier, Shift: shift, PostOffset: postOffset}}
}

// PerChannelRequantize is RangeRequantize with offset and multiplier looked up
// by the row or the column, as selected by axis.
func PerChannelRequantize(axis Axis, offsets, multipliers []int32, shift int) Stage {
	return Stage{kind: KindPerChannelRequantize, in: Int32, out: Int32,
		p: Params{Axis: axis, Shift: shift, Offsets: slices.Clone(offsets), Multipliers: slices.Clone(multipliers)}}
}

// SaturatingCast narrows int32 to uint8, clamping to [0, 255].
func SaturatingCast() Stage {
	return Stage{kind: KindSaturatingCast, in: Int32, out: Uint8}
}

// ClampInt32 clamps int32 values to [lo, hi].
func ClampInt32(lo, hi int32) Stage {
	return Stage{kind: KindClamp, in: Int32, out: Int32, p: Params{Lo: lo, Hi: hi}}
}

// ClampUint8 clamps uint8 values to [lo, hi].
func ClampUint8(lo, hi uint8) Stage {
	return Stage{kind: KindClamp, in: Uint8, out: Uint8, p: Params{Lo: int32(lo), Hi: int32(hi)}}
}

// MinMaxClamp clamps float32 values to [lo, hi]. NaN passes through.
func MinMaxClamp(lo, hi float32) Stage {
	return Stage{kind: KindMinMaxClamp, in: Float32, out: Float32, p: Params{FLo: lo, FHi: hi}}
}

// BiasAddInt32 adds bias[c] (RowShaped) or bias[r] (ColShaped), saturating.
func BiasAddInt32(shape Shape, bias []int32) Stage {
	return Stage{kind: KindBiasAdd, in: Int32, out: Int32,
		p: Params{Shape: shape, Axis: shape.axis(), Bias: slices.Clone(bias)}}
}

// BiasAddFloat32 adds bias[c] (RowShaped) or bias[r] (ColShaped).
func BiasAddFloat32(shape Shape, bias []float32) Stage {
	return Stage{kind: KindBiasAdd, in: Float32, out: Float32,
		p: Params{Shape: shape, Axis: shape.axis(), FBias: slices.Clone(bias)}}
}

// Tanh maps v to zero + amplitude*tanh((v-zero)/amplitude) using the
// fixed-point approximation in fixedpoint.TanhScaled.
func Tanh(zero, amplitude int32) Stage {
	return Stage{kind: KindTanh, in: Int32, out: Int32, p: Params{Zero: zero, Amplitude: amplitude}}
}

// Quantize maps float32 to the nearest integer code of out (Uint8 or Int32)
// under a, ties to even, saturating.
func Quantize(out Repr, a fixedpoint.Affine) Stage {
	return Stage{kind: KindQuantize, in: Float32, out: out, p: Params{Affine: a}}
}

// Dequantize maps integer codes of in (Uint8 or Int32) back to float32.
func Dequantize(in Repr, a fixedpoint.Affine) Stage {
	return Stage{kind: KindDequantize, in: in, out: Float32, p: Params{Affine: a}}
}

// Kind returns the stage variant.
func (s Stage) Kind() Kind { return s.kind }

// In returns the representation the stage consumes.
func (s Stage) In() Repr { return s.in }

// Out returns the representation the stage produces.
func (s Stage) Out() Repr { return s.out }

// Params returns the stage's constants.
func (s Stage) Params() Params { return s.p }

func invalid(s Stage, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidStage, s.kind, fmt.Sprintf(format, args...))
}

// Validate reports parameters for which the stage has no defined result.
func (s Stage) Validate() error {
	p := &s.p
	switch s.kind {
	case KindRangeRequantize:
		if p.Shift < 0 || p.Shift > fixedpoint.MaxShift64 {
			return invalid(s, "shift %d outside [0, %d]", p.Shift, fixedpoint.MaxShift64)
		}
		if p.Multiplier == math.MinInt32 {
			return invalid(s, "multiplier must be greater than MinInt32")
		}
	case KindFixedPointRequantize:
		if p.Shift < 0 || p.Shift > fixedpoint.MaxShift {
			return invalid(s, "shift %d outside [0, %d]", p.Shift, fixedpoint.MaxShift)
		}
	case KindPerChannelRequantize:
		if p.Shift < 0 || p.Shift > fixedpoint.MaxShift64 {
			return invalid(s, "shift %d outside [0, %d]", p.Shift, fixedpoint.MaxShift64)
		}
		if len(p.Offsets) == 0 || len(p.Offsets) != len(p.Multipliers) {
			return invalid(s, "need equal, non-empty offsets and multipliers, got %d and %d",
				len(p.Offsets), len(p.Multipliers))
		}
		for k, m := range p.Multipliers {
			if m == math.MinInt32 {
				return invalid(s, "multiplier[%d] must be greater than MinInt32", k)
			}
		}
	case KindSaturatingCast:
	case KindClamp:
		if p.Lo > p.Hi {
			return invalid(s, "lo %d > hi %d", p.Lo, p.Hi)
		}
	case KindMinMaxClamp:
		if !(p.FLo <= p.FHi) {
			return invalid(s, "lo %v must not exceed hi %v", p.FLo, p.FHi)
		}
	case KindBiasAdd:
		if n, _ := s.Channels(); n == 0 {
			return invalid(s, "empty bias vector")
		}
	case KindTanh:
		if p.Amplitude <= 0 {
			return invalid(s, "amplitude %d must be positive", p.Amplitude)
		}
	case KindQuantize, KindDequantize:
		if err := p.Affine.Validate(); err != nil {
			return invalid(s, "%v", err)
		}
		code := s.out
		if s.kind == KindDequantize {
			code = s.in
		}
		if code != Uint8 && code != Int32 {
			return invalid(s, "integer side must be uint8 or int32, got %s", code)
		}
	default:
		return invalid(s, "unknown kind")
	}
	return nil
}

// Channels returns the per-channel vector length and its axis, or 0 when the
// stage has no per-channel parameters.
func (s Stage) Channels() (int, Axis) {
	switch s.kind {
	case KindPerChannelRequantize:
		return len(s.p.Offsets), s.p.Axis
	case KindBiasAdd:
		if s.in == Float32 {
			return len(s.p.FBias), s.p.Axis
		}
		return len(s.p.Bias), s.p.Axis
	}
	return 0, ByRow
}

// index picks the per-channel coordinate.
func (p *Params) index(r, c int) int {
	if p.Axis == ByRow {
		return r
	}
	return c
}

// Apply runs the stage on one element at (r, c). It panics if v does not
// hold the stage's input representation.
func (s Stage) Apply(v Value, r, c int) Value {
	switch s.in {
	case Int32:
		x := v.Int32()
		switch s.out {
		case Int32:
			return Int32Value(s.applyInt32(x, r, c))
		case Uint8:
			return Uint8Value(fixedpoint.SaturatingCastToUint8(x))
		case Float32:
			return Float32Value(s.p.Affine.Dequantize(x))
		}
	case Uint8:
		x := v.Uint8()
		if s.out == Float32 {
			return Float32Value(s.p.Affine.Dequantize(int32(x)))
		}
		return Uint8Value(uint8(min(max(int32(x), s.p.Lo), s.p.Hi)))
	case Float32:
		x := v.Float32()
		switch s.out {
		case Float32:
			return Float32Value(s.applyFloat32(x, r, c))
		case Uint8:
			return Uint8Value(uint8(s.p.Affine.Quantize(x, 0, math.MaxUint8)))
		case Int32:
			return Int32Value(s.p.Affine.Quantize(x, math.MinInt32, math.MaxInt32))
		}
	}
	panic(fmt.Sprintf("outputstage: %s has no %s -> %s rule", s.kind, s.in, s.out))
}

// applyInt32 is the element rule of every int32 -> int32 stage.
func (s *Stage) applyInt32(v int32, r, c int) int32 {
	p := &s.p
	switch s.kind {
	case KindRangeRequantize:
		return fixedpoint.RangeRequantize(v, p.Offset, p.Multiplier, p.Shift)
	case KindPerChannelRequantize:
		k := p.index(r, c)
		return fixedpoint.RangeRequantize(v, p.Offsets[k], p.Multipliers[k], p.Shift)
	case KindFixedPointRequantize:
		return fixedpoint.FixedPointRequantize(v, p.Multiplier, p.Shift, p.PostOffset)
	case KindClamp:
		return min(max(v, p.Lo), p.Hi)
	case KindBiasAdd:
		return fixedpoint.SaturatingAdd(v, p.Bias[p.index(r, c)])
	case KindTanh:
		return fixedpoint.TanhScaled(v, p.Zero, p.Amplitude)
	}
	panic(fmt.Sprintf("outputstage: %s is not an int32 stage", s.kind))
}

// applyFloat32 is the element rule of every float32 -> float32 stage.
func (s *Stage) applyFloat32(v float32, r, c int) float32 {
	p := &s.p
	switch s.kind {
	case KindMinMaxClamp:
		return min(max(v, p.FLo), p.FHi)
	case KindBiasAdd:
		return v + p.FBias[p.index(r, c)]
	}
	panic(fmt.Sprintf("outputstage: %s is not a float32 stage", s.kind))
}

// String formats the stage as kind(param=value ...).
func (s Stage) String() string {
	p := &s.p
	var b strings.Builder
	b.WriteString(s.kind.String())
	b.WriteByte('(')
	switch s.kind {
	case KindRangeRequantize:
		fmt.Fprintf(&b, "offset=%d multiplier=%d shift=%d", p.Offset, p.Multiplier, p.Shift)
	case KindFixedPointRequantize:
		fmt.Fprintf(&b, "multiplier=%d shift=%d post_offset=%d", p.Multiplier, p.Shift, p.PostOffset)
	case KindPerChannelRequantize:
		fmt.Fprintf(&b, "axis=%s channels=%d shift=%d", p.Axis, len(p.Offsets), p.Shift)
	case KindClamp:
		fmt.Fprintf(&b, "%s lo=%d hi=%d", s.in, p.Lo, p.Hi)
	case KindMinMaxClamp:
		fmt.Fprintf(&b, "lo=%v hi=%v", p.FLo, p.FHi)
	case KindBiasAdd:
		n, _ := s.Channels()
		fmt.Fprintf(&b, "%s %s len=%d", s.in, p.Shape, n)
	case KindTanh:
		fmt.Fprintf(&b, "zero=%d amplitude=%d", p.Zero, p.Amplitude)
	case KindQuantize, KindDequantize:
		fmt.Fprintf(&b, "%s->%s min=%v scale=%v offset=%v", s.in, s.out, p.Affine.Min, p.Affine.Scale, p.Affine.Offset)
	}
	b.WriteByte(')')
	return b.String()
}
