package calib

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-lowp/hwy/contrib/fixedpoint"
	"github.com/ajroetker/go-lowp/hwy/contrib/outputstage"
)

const regressionYAML = `
output: uint8
stages:
  - kind: range_requantize
    offset: -100
    multiplier: 3
    shift: 4
  - kind: saturating_cast
`

const regressionJSON = `{
  "output": "uint8",
  "stages": [
    {"kind": "range_requantize", "offset": -100, "multiplier": 3, "shift": 4},
    {"kind": "saturating_cast"}
  ]
}`

func TestBuildRegression(t *testing.T) {
	for _, tc := range []struct {
		format Format
		data   string
	}{{YAML, regressionYAML}, {JSON, regressionJSON}} {
		t.Run(string(tc.format), func(t *testing.T) {
			doc, err := Parse([]byte(tc.data), tc.format)
			require.NoError(t, err)
			p, err := Build[uint8](doc)
			require.NoError(t, err)
			require.Equal(t, 2, p.Len())

			acc := []int32{1000, 0, 50000, 133, 100, 104}
			out := make([]uint8, len(acc))
			p.EvaluateRow(acc, 0, 0, out)
			assert.Equal(t, []uint8{169, 0, 255, 6, 0, 1}, out)
		})
	}
}

func TestLoadPicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{"a.yaml": regressionYAML, "b.yml": regressionYAML, "c.json": regressionJSON} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
		doc, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, "uint8", doc.Output, name)
		assert.Len(t, doc.Specs, 2, name)
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, JSON, FormatOf("x/calib.JSON"))
	assert.Equal(t, YAML, FormatOf("calib.yaml"))
	assert.Equal(t, YAML, FormatOf("calib"))
}

func TestParseRejectsBadDocuments(t *testing.T) {
	_, err := Parse([]byte("output: uint8\nstagez: []\n"), YAML)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Parse([]byte(`{"output":"uint8","extra":1}`), JSON)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Parse([]byte(`{"output":`), JSON)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Parse([]byte(regressionYAML), Format("toml"))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestStageErrorsNameThePosition(t *testing.T) {
	doc, err := Parse([]byte(`
stages:
  - kind: range_requantize
    multiplier: 1
  - kind: tanh
    amplitude: 0
`), YAML)
	require.NoError(t, err)
	_, err = doc.Stages()
	require.Error(t, err)
	assert.ErrorIs(t, err, outputstage.ErrInvalidStage)
	assert.True(t, strings.HasPrefix(err.Error(), "stage 1 (tanh)"), err.Error())

	doc.Specs[1].Kind = "sigmoid"
	_, err = doc.Stages()
	assert.ErrorIs(t, err, outputstage.ErrInvalidStage)
	assert.Contains(t, err.Error(), "stage 1 (sigmoid)")
}

func TestBuildChecksOutput(t *testing.T) {
	doc, err := Parse([]byte(regressionYAML), YAML)
	require.NoError(t, err)
	_, err = Build[int32](doc)
	assert.ErrorIs(t, err, outputstage.ErrReprMismatch)

	doc.Output = "int8"
	_, err = Build[uint8](doc)
	assert.Error(t, err)

	// No output field means int32.
	doc, err = Parse([]byte("stages:\n  - kind: range_requantize\n    multiplier: 2\n"), YAML)
	require.NoError(t, err)
	p, err := Build[int32](doc)
	require.NoError(t, err)
	assert.Equal(t, int32(14), p.Evaluate(7, 0, 0))
}

func TestRealMultiplier(t *testing.T) {
	doc, err := Parse([]byte(`{"output":"int32","stages":[{"kind":"fixed_point_requantize","real_multiplier":0.25,"post_offset":3}]}`), JSON)
	require.NoError(t, err)
	stages, err := doc.Stages()
	require.NoError(t, err)
	mult, shift, err := fixedpoint.QuantizeMultiplier(0.25)
	require.NoError(t, err)
	assert.Equal(t, outputstage.FixedPointRequantize(mult, shift, 3), stages[0])

	p, err := Build[int32](doc)
	require.NoError(t, err)
	assert.Equal(t, int32(28), p.Evaluate(100, 0, 0))

	doc.Specs[0].RealMultiplier = 3
	_, err = doc.Stages()
	assert.ErrorIs(t, err, fixedpoint.ErrMultiplierRange)
}

func TestStageSpecConversions(t *testing.T) {
	lo, hi := -1.0, 300.0
	_, err := StageSpec{Kind: "clamp", Repr: "uint8", Lo: &lo, Hi: &hi}.Stage()
	assert.ErrorIs(t, err, outputstage.ErrInvalidStage)

	_, err = StageSpec{Kind: "clamp", Repr: "float32"}.Stage()
	assert.ErrorIs(t, err, outputstage.ErrInvalidStage)

	_, err = StageSpec{Kind: "bias_add", Bias: []float64{1.5}}.Stage()
	assert.ErrorIs(t, err, outputstage.ErrInvalidStage)

	_, err = StageSpec{Kind: "bias_add", Shape: "diagonal", Bias: []float64{1}}.Stage()
	assert.ErrorIs(t, err, outputstage.ErrInvalidStage)

	_, err = StageSpec{Kind: "per_channel_requantize", Axis: "depth"}.Stage()
	assert.ErrorIs(t, err, outputstage.ErrInvalidStage)

	s, err := StageSpec{Kind: "clamp"}.Stage()
	require.NoError(t, err)
	assert.Equal(t, outputstage.ClampInt32(math.MinInt32, math.MaxInt32), s)

	s, err = StageSpec{Kind: "bias_add", Repr: "float32", Shape: "col", Bias: []float64{0.5, 2}}.Stage()
	require.NoError(t, err)
	assert.Equal(t, outputstage.BiasAddFloat32(outputstage.ColShaped, []float32{0.5, 2}), s)
}

func TestIntegerClampRejectsFractionalBounds(t *testing.T) {
	doc, err := Parse([]byte("output: int32\nstages:\n  - {kind: clamp, lo: 1.5, hi: 2.9}\n"), YAML)
	require.NoError(t, err)
	_, err = doc.Stages()
	assert.ErrorIs(t, err, outputstage.ErrInvalidStage)

	nan := math.NaN()
	_, err = StageSpec{Kind: "clamp", Repr: "uint8", Hi: &nan}.Stage()
	assert.ErrorIs(t, err, outputstage.ErrInvalidStage)

	lo, hi := 3.0, 250.0
	s, err := StageSpec{Kind: "clamp", Repr: "uint8", Lo: &lo, Hi: &hi}.Stage()
	require.NoError(t, err)
	assert.Equal(t, outputstage.ClampUint8(3, 250), s)
}

func TestRoundTrip(t *testing.T) {
	a := fixedpoint.Affine{Min: -2.5, Scale: 51, Offset: 3}
	stages := []outputstage.Stage{
		outputstage.BiasAddInt32(outputstage.ColShaped, []int32{-5, 7}),
		outputstage.PerChannelRequantize(outputstage.ByRow, []int32{1, 2}, []int32{3, -4}, 9),
		outputstage.FixedPointRequantize(1<<30, 2, -1),
		outputstage.Tanh(4, 1000),
		outputstage.RangeRequantize(0, 1, 3),
		outputstage.ClampInt32(-600, 600),
		outputstage.Dequantize(outputstage.Int32, a),
		outputstage.MinMaxClamp(-2, 2.75),
		outputstage.BiasAddFloat32(outputstage.RowShaped, []float32{0.125, -0.5}),
		outputstage.Quantize(outputstage.Uint8, a),
		outputstage.ClampUint8(4, 251),
	}
	for _, format := range []Format{YAML, JSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Marshal(FromStages(outputstage.Uint8, stages), format)
			require.NoError(t, err)
			doc, err := Parse(data, format)
			require.NoError(t, err)
			got, err := doc.Stages()
			require.NoError(t, err)
			assert.Equal(t, stages, got)

			_, err = Build[uint8](doc)
			require.NoError(t, err)
		})
	}
}

func TestMarshalUnknownFormat(t *testing.T) {
	_, err := Marshal(&Document{}, "ini")
	assert.True(t, errors.Is(err, ErrFormat))
}
