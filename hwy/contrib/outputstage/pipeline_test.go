package outputstage

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/ajroetker/go-lowp/hwy/contrib/fixedpoint"
	"github.com/google/go-cmp/cmp"
)

var evaluators = []Evaluator{ScalarEvaluator{}, VectorEvaluator{}}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

// Scenario locked as a regression value: requantize by 3/16 around -100,
// then saturate to uint8.
func TestCalibratedPipelineRegression(t *testing.T) {
	acc := []int32{1000, 0, 50000, 133, 100, 104}
	want := []uint8{169, 0, 255, 6, 0, 1}
	for _, eval := range evaluators {
		p, err := NewPipelineWith[uint8](eval, RangeRequantize(-100, 3, 4), SaturatingCast())
		if err != nil {
			t.Fatalf("%s: %v", eval.Name(), err)
		}
		got := make([]uint8, len(acc))
		for i, v := range acc {
			got[i] = p.Evaluate(v, 0, i)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: Evaluate mismatch (-want +got):\n%s", eval.Name(), diff)
		}
		row := make([]uint8, len(acc))
		p.EvaluateRow(acc, 0, 0, row)
		if diff := cmp.Diff(want, row); diff != "" {
			t.Errorf("%s: EvaluateRow mismatch (-want +got):\n%s", eval.Name(), diff)
		}
	}
}

func TestRangeRequantizePipelineScenario(t *testing.T) {
	p, err := NewPipeline[int32](RangeRequantize(0, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	out := make([]int32, 5)
	p.EvaluateRow([]int32{0, 1, 2, 3, 4}, 0, 0, out)
	if diff := cmp.Diff([]int32{0, 1, 1, 2, 2}, out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyPipelineIsIdentity(t *testing.T) {
	p, err := NewPipeline[int32]()
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []int32{math.MinInt32, -1, 0, 42, math.MaxInt32} {
		if got := p.Evaluate(v, 3, 4); got != v {
			t.Errorf("identity(%d) = %d", v, got)
		}
	}
	if _, err := NewPipeline[uint8](); !errors.Is(err, ErrReprMismatch) {
		t.Errorf("empty uint8 pipeline: err = %v, want ErrReprMismatch", err)
	}
}

func TestPipelineConstructionErrors(t *testing.T) {
	a := fixedpoint.Affine{Scale: 1}
	tests := []struct {
		name   string
		build  func() error
		target error
	}{
		{"float stage first", func() error { _, err := NewPipeline[float32](MinMaxClamp(0, 1)); return err }, ErrReprMismatch},
		{"broken chain", func() error {
			_, err := NewPipeline[uint8](SaturatingCast(), ClampInt32(0, 10))
			return err
		}, ErrReprMismatch},
		{"wrong destination", func() error { _, err := NewPipeline[float32](SaturatingCast()); return err }, ErrReprMismatch},
		{"int32 into uint8 dest", func() error { _, err := NewPipeline[uint8](RangeRequantize(0, 1, 1)); return err }, ErrReprMismatch},
		{"invalid stage", func() error {
			_, err := NewPipeline[uint8](ClampInt32(3, 1), SaturatingCast())
			return err
		}, ErrInvalidStage},
		{"too many", func() error {
			stages := make([]Stage, MaxStages+1)
			for i := range stages {
				stages[i] = ClampInt32(0, 1)
			}
			_, err := NewPipeline[int32](stages...)
			return err
		}, ErrTooManyStages},
		{"quantize to int32 then uint8 dest", func() error {
			_, err := NewPipeline[uint8](Dequantize(Int32, a), Quantize(Int32, a))
			return err
		}, ErrReprMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.build(); !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestPipelineMaxLength(t *testing.T) {
	stages := make([]Stage, MaxStages)
	for i := range stages {
		stages[i] = BiasAddInt32(RowShaped, []int32{1})
	}
	p, err := NewPipeline[int32](stages...)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Evaluate(0, 0, 0); got != MaxStages {
		t.Errorf("Evaluate = %d, want %d", got, MaxStages)
	}
	if p.Len() != MaxStages || len(p.Reprs()) != MaxStages+1 {
		t.Errorf("Len = %d, Reprs = %d", p.Len(), len(p.Reprs()))
	}
}

func TestPipelineReprsAndString(t *testing.T) {
	a := fixedpoint.Affine{Min: -1, Scale: 127.5}
	p, err := NewPipeline[uint8](
		RangeRequantize(0, 1, 8),
		Dequantize(Int32, fixedpoint.Affine{Scale: 100}),
		MinMaxClamp(-1, 1),
		Quantize(Uint8, a),
		ClampUint8(0, 250),
	)
	if err != nil {
		t.Fatal(err)
	}
	want := []Repr{Int32, Int32, Float32, Float32, Uint8, Uint8}
	if diff := cmp.Diff(want, p.Reprs()); diff != "" {
		t.Errorf("Reprs mismatch (-want +got):\n%s", diff)
	}
	s := p.String()
	for _, part := range []string{"range_requantize(offset=0 multiplier=1 shift=8)", "-> float32 ->", "clamp(uint8 lo=0 hi=250)"} {
		if !strings.Contains(s, part) {
			t.Errorf("String() = %q, missing %q", s, part)
		}
	}
}

// Evaluate([A, B]) must equal B.Apply(A.Apply(v)) for connecting stages.
func TestPipelineComposition(t *testing.T) {
	a := fixedpoint.Affine{Min: -4, Scale: 30, Offset: 2}
	first := []Stage{
		RangeRequantize(-7, 5, 3),
		FixedPointRequantize(1<<30+12345, 5, -3),
		PerChannelRequantize(ByCol, []int32{1, -2, 3, 0}, []int32{7, 9, 11, 13}, 2),
		ClampInt32(-1000, 1000),
		BiasAddInt32(ColShaped, []int32{5, 6, 7, 8}),
		Tanh(0, 500),
	}
	second := []Stage{SaturatingCast(), ClampInt32(-50, 50), Tanh(10, 200), Dequantize(Int32, a)}
	rng := testRNG()
	for _, eval := range evaluators {
		for _, sa := range first {
			for _, sb := range second {
				var p interface{ eval(v int32, r, c int) Value }
				switch sb.Out() {
				case Uint8:
					p = mustPipeline[uint8](t, eval, sa, sb)
				case Int32:
					p = mustPipeline[int32](t, eval, sa, sb)
				case Float32:
					p = mustPipeline[float32](t, eval, sa, sb)
				}
				for range 200 {
					v := int32(rng.Uint32()) >> rng.Intn(32)
					r, c := rng.Intn(4), rng.Intn(4)
					want := sb.Apply(sa.Apply(Int32Value(v), r, c), r, c)
					if got := p.eval(v, r, c); got != want {
						t.Fatalf("%s: [%v, %v](%d) at (%d,%d) = %v, want %v", eval.Name(), sa, sb, v, r, c, got, want)
					}
				}
			}
		}
	}
}

type valuePipeline[Out Scalar] struct{ *Pipeline[Out] }

func (p valuePipeline[Out]) eval(v int32, r, c int) Value {
	return ValueOf(p.Evaluate(v, r, c))
}

func mustPipeline[Out Scalar](t *testing.T, eval Evaluator, stages ...Stage) valuePipeline[Out] {
	t.Helper()
	p, err := NewPipelineWith[Out](eval, stages...)
	if err != nil {
		t.Fatalf("%v: %v", stages, err)
	}
	return valuePipeline[Out]{p}
}

func TestEvaluateRowMatchesEvaluate(t *testing.T) {
	rng := testRNG()
	bias := make([]float32, 70)
	for i := range bias {
		bias[i] = rng.Float32()*4 - 2
	}
	for _, eval := range evaluators {
		p, err := NewPipelineWith[float32](eval,
			FixedPointRequantize(1<<30, 4, 0),
			Dequantize(Int32, fixedpoint.Affine{Scale: 64}),
			BiasAddFloat32(RowShaped, bias),
			MinMaxClamp(-3, 3),
		)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range []int{0, 1, 15, 16, 17, 33, 70} {
			acc := make([]int32, n)
			for i := range acc {
				acc[i] = int32(rng.Uint32()) >> 8
			}
			got := make([]float32, n)
			p.EvaluateRow(acc, 2, 0, got)
			for i, v := range acc {
				if want := p.Evaluate(v, 2, i); got[i] != want {
					t.Fatalf("%s n=%d col %d: EvaluateRow %v, Evaluate %v", eval.Name(), n, i, got[i], want)
				}
			}
		}
	}
}

// randomStages returns one valid stage of every variant, with per-channel
// vectors long enough for rows and columns below channels.
func randomStages(rng *rand.Rand, channels int) []Stage {
	i32 := func() int32 { return int32(rng.Uint32()) }
	vec := func() []int32 {
		v := make([]int32, channels)
		for i := range v {
			v[i] = i32() >> rng.Intn(31)
		}
		return v
	}
	mults := func() []int32 {
		v := vec()
		for i := range v {
			v[i] = max(v[i], math.MinInt32+1)
		}
		return v
	}
	fvec := make([]float32, channels)
	for i := range fvec {
		fvec[i] = rng.Float32()*10 - 5
	}
	lo, hi := i32()>>4, i32()>>4
	if lo > hi {
		lo, hi = hi, lo
	}
	a := fixedpoint.Affine{Min: rng.Float64() - 0.5, Scale: rng.Float64()*200 + 0.01, Offset: float64(rng.Intn(256))}
	return []Stage{
		RangeRequantize(i32()>>rng.Intn(31), max(i32()>>rng.Intn(31), math.MinInt32+1), rng.Intn(fixedpoint.MaxShift64+1)),
		FixedPointRequantize(i32(), rng.Intn(fixedpoint.MaxShift+1), i32()>>rng.Intn(31)),
		PerChannelRequantize(ByRow, vec(), mults(), rng.Intn(fixedpoint.MaxShift64+1)),
		PerChannelRequantize(ByCol, vec(), mults(), rng.Intn(fixedpoint.MaxShift64+1)),
		SaturatingCast(),
		ClampInt32(lo, hi),
		ClampUint8(uint8(rng.Intn(100)), uint8(100+rng.Intn(156))),
		MinMaxClamp(-rng.Float32(), rng.Float32()),
		BiasAddInt32(RowShaped, vec()),
		BiasAddInt32(ColShaped, vec()),
		BiasAddFloat32(RowShaped, fvec),
		BiasAddFloat32(ColShaped, fvec),
		Tanh(i32()>>8, int32(rng.Intn(1<<20))+1),
		Quantize(Uint8, a),
		Quantize(Int32, a),
		Dequantize(Uint8, a),
		Dequantize(Int32, a),
	}
}

func fillFragment(rng *rand.Rand, f *Fragment, repr Repr) {
	f.Repr = repr
	specials := []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1)), 0, 1e30, -1e30, 0.5}
	for i := range f.N {
		switch repr {
		case Int32:
			f.I32[i] = int32(rng.Uint32()) >> rng.Intn(32)
		case Uint8:
			f.U8[i] = uint8(rng.Intn(256))
		case Float32:
			if rng.Intn(8) == 0 {
				f.F32[i] = specials[rng.Intn(len(specials))]
			} else {
				f.F32[i] = (rng.Float32()*2 - 1) * float32(int(1)<<rng.Intn(12))
			}
		}
	}
}

func fragmentValue(f *Fragment, i int) Value {
	switch f.Repr {
	case Int32:
		return Int32Value(f.I32[i])
	case Uint8:
		return Uint8Value(f.U8[i])
	default:
		return Float32Value(f.F32[i])
	}
}

// sameValue compares bit patterns, except that any two NaNs are equal.
func sameValue(a, b Value) bool {
	if a.Repr() == Float32 && b.Repr() == Float32 {
		x, y := a.Float32(), b.Float32()
		if x != x && y != y {
			return true
		}
	}
	return a == b
}

// Both evaluators must reproduce Stage.Apply bit for bit on every lane.
func TestEvaluatorsMatchApply(t *testing.T) {
	const channels = 40
	rng := testRNG()
	for trial := range 30 {
		for _, s := range randomStages(rng, channels) {
			for _, eval := range evaluators {
				kernel, err := eval.Compile(s)
				if err != nil {
					t.Fatalf("%s.Compile(%v): %v", eval.Name(), s, err)
				}
				for n := 1; n <= FragmentWidth; n++ {
					var f Fragment
					f.N, f.Row, f.Col = n, rng.Intn(channels), rng.Intn(channels-n+1)
					fillFragment(rng, &f, s.In())
					in := make([]Value, n)
					for i := range n {
						in[i] = fragmentValue(&f, i)
					}
					kernel(&f)
					if f.Repr != s.Out() {
						t.Fatalf("%s %v: fragment repr %s, want %s", eval.Name(), s, f.Repr, s.Out())
					}
					for i := range n {
						want := s.Apply(in[i], f.Row, f.Col+i)
						if got := fragmentValue(&f, i); !sameValue(got, want) {
							t.Fatalf("trial %d %s %v lane %d of %d: input %v got %v want %v",
								trial, eval.Name(), s, i, n, in[i], got, want)
						}
					}
				}
			}
		}
	}
}

func TestDefaultEvaluatorIsSelectedOnce(t *testing.T) {
	e := DefaultEvaluator()
	if e == nil {
		t.Fatal("DefaultEvaluator() = nil")
	}
	if e != DefaultEvaluator() {
		t.Error("DefaultEvaluator changed between calls")
	}
	p, err := NewPipeline[int32](ClampInt32(0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if p.Evaluator() != e {
		t.Errorf("pipeline evaluator %s, want %s", p.Evaluator().Name(), e.Name())
	}
}
