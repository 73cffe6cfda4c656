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
package calib

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/ajroetker/go-lowp/hwy/contrib/fixedpoint"
	"github.com/ajroetker/go-lowp/hwy/contrib/outputstage"
)

// Format is a document encoding.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// ErrFormat is returned for unknown encodings and undecodable documents.
var ErrFormat = errors.New("calib: bad document")

// FormatOf picks the format from a file extension. Anything other than
// .json is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// Document is a decoded calibration document.
type Document struct {
	Output string      `yaml:"output" json:"output"`
	Specs  []StageSpec `yaml:"stages" json:"stages"`
}

// StageSpec is one stage as written in a document. Only the fields the kind
// uses are read.
type StageSpec struct {
	Kind string `yaml:"kind" json:"kind"`

	// Requantization.
	Offset         int32   `yaml:"offset,omitempty" json:"offset,omitempty"`
	Multiplier     int32   `yaml:"multiplier,omitempty" json:"multiplier,omitempty"`
	RealMultiplier float64 `yaml:"real_multiplier,omitempty" json:"real_multiplier,omitempty"`
	Shift          int     `yaml:"shift,omitempty" json:"shift,omitempty"`
	PostOffset     int32   `yaml:"post_offset,omitempty" json:"post_offset,omitempty"`
	Axis           string  `yaml:"axis,omitempty" json:"axis,omitempty"`
	Offsets        []int32 `yaml:"offsets,omitempty" json:"offsets,omitempty"`
	Multipliers    []int32 `yaml:"multipliers,omitempty" json:"multipliers,omitempty"`

	// Clamps, bias and the representation of repr-polymorphic stages.
	Repr  string    `yaml:"repr,omitempty" json:"repr,omitempty"`
	Lo    *float64  `yaml:"lo,omitempty" json:"lo,omitempty"`
	Hi    *float64  `yaml:"hi,omitempty" json:"hi,omitempty"`
	Shape string    `yaml:"shape,omitempty" json:"shape,omitempty"`
	Bias  []float64 `yaml:"bias,omitempty" json:"bias,omitempty"`

	// Tanh.
	Zero      int32 `yaml:"zero,omitempty" json:"zero,omitempty"`
	Amplitude int32 `yaml:"amplitude,omitempty" json:"amplitude,omitempty"`

	// Quantize and dequantize.
	Min       float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Scale     float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
	ZeroPoint float64 `yaml:"zero_point,omitempty" json:"zero_point,omitempty"`
}

// Load reads and decodes the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes data. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: yaml: %v", ErrFormat, err)
		}
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: json: %v", ErrFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrFormat, format)
	}
	return &doc, nil
}

// Marshal encodes doc.
func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case YAML:
		return yaml.Marshal(doc)
	case JSON:
		return json.MarshalIndent(doc, "", "  ")
	}
	return nil, fmt.Errorf("%w: unknown format %q", ErrFormat, format)
}

// OutputRepr returns the declared destination representation, Int32 when
// the document leaves it out.
func (d *Document) OutputRepr() (outputstage.Repr, error) {
	if d.Output == "" {
		return outputstage.Int32, nil
	}
	return outputstage.ParseRepr(d.Output)
}

// Stages converts and validates every stage spec. Errors name the stage's
// position in the document.
func (d *Document) Stages() ([]outputstage.Stage, error) {
	stages := make([]outputstage.Stage, 0, len(d.Specs))
	for i, spec := range d.Specs {
		s, err := spec.Stage()
		if err == nil {
			err = s.Validate()
		}
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, spec.Kind, err)
		}
		stages = append(stages, s)
	}
	return stages, nil
}

// Build returns the pipeline the document describes. Out must match the
// document's output representation.
func Build[Out outputstage.Scalar](d *Document) (*outputstage.Pipeline[Out], error) {
	want, err := d.OutputRepr()
	if err != nil {
		return nil, err
	}
	if got := outputstage.ReprOf[Out](); got != want {
		return nil, fmt.Errorf("%w: document output is %s, pipeline writes %s", outputstage.ErrReprMismatch, want, got)
	}
	stages, err := d.Stages()
	if err != nil {
		return nil, err
	}
	return outputstage.NewPipeline[Out](stages...)
}

// Stage converts the spec to a stage without validating its parameters.
func (s StageSpec) Stage() (outputstage.Stage, error) {
	kind, err := outputstage.ParseKind(s.Kind)
	if err != nil {
		return outputstage.Stage{}, err
	}
	switch kind {
	case outputstage.KindRangeRequantize:
		return outputstage.RangeRequantize(s.Offset, s.Multiplier, s.Shift), nil
	case outputstage.KindFixedPointRequantize:
		mult, shift := s.Multiplier, s.Shift
		if s.RealMultiplier != 0 {
			if mult, shift, err = fixedpoint.QuantizeMultiplier(s.RealMultiplier); err != nil {
				return outputstage.Stage{}, err
			}
		}
		return outputstage.FixedPointRequantize(mult, shift, s.PostOffset), nil
	case outputstage.KindPerChannelRequantize:
		axis, err := parseAxis(s.Axis)
		if err != nil {
			return outputstage.Stage{}, err
		}
		return outputstage.PerChannelRequantize(axis, s.Offsets, s.Multipliers, s.Shift), nil
	case outputstage.KindSaturatingCast:
		return outputstage.SaturatingCast(), nil
	case outputstage.KindClamp:
		return s.clamp()
	case outputstage.KindMinMaxClamp:
		lo, hi, err := s.bounds(-math.MaxFloat32, math.MaxFloat32)
		if err != nil {
			return outputstage.Stage{}, err
		}
		return outputstage.MinMaxClamp(float32(lo), float32(hi)), nil
	case outputstage.KindBiasAdd:
		return s.biasAdd()
	case outputstage.KindTanh:
		return outputstage.Tanh(s.Zero, s.Amplitude), nil
	case outputstage.KindQuantize:
		r, err := s.repr(outputstage.Uint8)
		if err != nil {
			return outputstage.Stage{}, err
		}
		return outputstage.Quantize(r, s.affine()), nil
	case outputstage.KindDequantize:
		r, err := s.repr(outputstage.Uint8)
		if err != nil {
			return outputstage.Stage{}, err
		}
		return outputstage.Dequantize(r, s.affine()), nil
	}
	return outputstage.Stage{}, fmt.Errorf("%w: %s", outputstage.ErrInvalidStage, kind)
}

func (s StageSpec) affine() fixedpoint.Affine {
	return fixedpoint.Affine{Min: s.Min, Scale: s.Scale, Offset: s.ZeroPoint}
}

func (s StageSpec) repr(def outputstage.Repr) (outputstage.Repr, error) {
	if s.Repr == "" {
		return def, nil
	}
	return outputstage.ParseRepr(s.Repr)
}

// bounds returns lo and hi, defaulting to [min, max] and checking both are
// inside it.
func (s StageSpec) bounds(minV, maxV float64) (lo, hi float64, err error) {
	lo, hi = minV, maxV
	if s.Lo != nil {
		lo = *s.Lo
	}
	if s.Hi != nil {
		hi = *s.Hi
	}
	if lo < minV || hi > maxV {
		return 0, 0, fmt.Errorf("%w: bounds [%v, %v] outside [%v, %v]", outputstage.ErrInvalidStage, lo, hi, minV, maxV)
	}
	return lo, hi, nil
}

// intBounds is bounds for integer clamps. NaN and fractional bounds are
// rejected rather than truncated.
func (s StageSpec) intBounds(minV, maxV float64) (lo, hi float64, err error) {
	lo, hi, err = s.bounds(minV, maxV)
	if err != nil {
		return 0, 0, err
	}
	if lo != math.Trunc(lo) || hi != math.Trunc(hi) {
		return 0, 0, fmt.Errorf("%w: integer clamp bounds [%v, %v] must be whole numbers", outputstage.ErrInvalidStage, lo, hi)
	}
	return lo, hi, nil
}

func (s StageSpec) clamp() (outputstage.Stage, error) {
	r, err := s.repr(outputstage.Int32)
	if err != nil {
		return outputstage.Stage{}, err
	}
	switch r {
	case outputstage.Int32:
		lo, hi, err := s.intBounds(math.MinInt32, math.MaxInt32)
		if err != nil {
			return outputstage.Stage{}, err
		}
		return outputstage.ClampInt32(int32(lo), int32(hi)), nil
	case outputstage.Uint8:
		lo, hi, err := s.intBounds(0, math.MaxUint8)
		if err != nil {
			return outputstage.Stage{}, err
		}
		return outputstage.ClampUint8(uint8(lo), uint8(hi)), nil
	}
	return outputstage.Stage{}, fmt.Errorf("%w: clamp of %s, use min_max_clamp", outputstage.ErrInvalidStage, r)
}

func (s StageSpec) biasAdd() (outputstage.Stage, error) {
	var shape outputstage.Shape
	switch strings.ToLower(s.Shape) {
	case "row", "row_shaped", "":
		shape = outputstage.RowShaped
	case "col", "col_shaped":
		shape = outputstage.ColShaped
	default:
		return outputstage.Stage{}, fmt.Errorf("%w: unknown bias shape %q", outputstage.ErrInvalidStage, s.Shape)
	}
	r, err := s.repr(outputstage.Int32)
	if err != nil {
		return outputstage.Stage{}, err
	}
	switch r {
	case outputstage.Int32:
		bias := make([]int32, len(s.Bias))
		for i, b := range s.Bias {
			if b != math.Trunc(b) || b < math.MinInt32 || b > math.MaxInt32 {
				return outputstage.Stage{}, fmt.Errorf("%w: bias[%d] = %v is not an int32", outputstage.ErrInvalidStage, i, b)
			}
			bias[i] = int32(b)
		}
		return outputstage.BiasAddInt32(shape, bias), nil
	case outputstage.Float32:
		bias := make([]float32, len(s.Bias))
		for i, b := range s.Bias {
			bias[i] = float32(b)
		}
		return outputstage.BiasAddFloat32(shape, bias), nil
	}
	return outputstage.Stage{}, fmt.Errorf("%w: bias_add of %s", outputstage.ErrInvalidStage, r)
}

func parseAxis(s string) (outputstage.Axis, error) {
	switch strings.ToLower(s) {
	case "col", "column", "":
		return outputstage.ByCol, nil
	case "row":
		return outputstage.ByRow, nil
	}
	return 0, fmt.Errorf("%w: unknown axis %q", outputstage.ErrInvalidStage, s)
}

// FromStages builds the document describing stages, the inverse of Build.
func FromStages(output outputstage.Repr, stages []outputstage.Stage) *Document {
	doc := &Document{Output: output.String(), Specs: make([]StageSpec, len(stages))}
	for i, s := range stages {
		doc.Specs[i] = specOf(s)
	}
	return doc
}

func specOf(s outputstage.Stage) StageSpec {
	p := s.Params()
	spec := StageSpec{Kind: s.Kind().String()}
	switch s.Kind() {
	case outputstage.KindRangeRequantize:
		spec.Offset, spec.Multiplier, spec.Shift = p.Offset, p.Multiplier, p.Shift
	case outputstage.KindFixedPointRequantize:
		spec.Multiplier, spec.Shift, spec.PostOffset = p.Multiplier, p.Shift, p.PostOffset
	case outputstage.KindPerChannelRequantize:
		spec.Axis = "col"
		if p.Axis == outputstage.ByRow {
			spec.Axis = "row"
		}
		spec.Offsets, spec.Multipliers, spec.Shift = p.Offsets, p.Multipliers, p.Shift
	case outputstage.KindClamp:
		lo, hi := float64(p.Lo), float64(p.Hi)
		spec.Repr, spec.Lo, spec.Hi = s.In().String(), &lo, &hi
	case outputstage.KindMinMaxClamp:
		lo, hi := float64(p.FLo), float64(p.FHi)
		spec.Lo, spec.Hi = &lo, &hi
	case outputstage.KindBiasAdd:
		spec.Repr = s.In().String()
		spec.Shape = "row"
		if p.Shape == outputstage.ColShaped {
			spec.Shape = "col"
		}
		if s.In() == outputstage.Float32 {
			for _, b := range p.FBias {
				spec.Bias = append(spec.Bias, float64(b))
			}
		} else {
			for _, b := range p.Bias {
				spec.Bias = append(spec.Bias, float64(b))
			}
		}
	case outputstage.KindTanh:
		spec.Zero, spec.Amplitude = p.Zero, p.Amplitude
	case outputstage.KindQuantize, outputstage.KindDequantize:
		spec.Repr = s.Out().String()
		if s.Kind() == outputstage.KindDequantize {
			spec.Repr = s.In().String()
		}
		spec.Min, spec.Scale, spec.ZeroPoint = p.Affine.Min, p.Affine.Scale, p.Affine.Offset
	}
	return spec
}
