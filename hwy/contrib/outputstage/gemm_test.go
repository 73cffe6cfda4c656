package outputstage

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/ajroetker/go-lowp/hwy/contrib/workerpool"
	"github.com/google/go-cmp/cmp"
)

func TestMatrixMapLayouts(t *testing.T) {
	data := []int32{0, 1, 2, 3, 4, 5}
	rm, err := NewMatrixMap(data, 2, 3, RowMajor)
	if err != nil {
		t.Fatal(err)
	}
	cm, err := NewMatrixMap(data, 2, 3, ColMajor)
	if err != nil {
		t.Fatal(err)
	}
	// Row-major: [[0 1 2] [3 4 5]]; column-major: [[0 2 4] [1 3 5]].
	wantRM := [][]int32{{0, 1, 2}, {3, 4, 5}}
	wantCM := [][]int32{{0, 2, 4}, {1, 3, 5}}
	for r := range 2 {
		for c := range 3 {
			if got := rm.At(r, c); got != wantRM[r][c] {
				t.Errorf("RowMajor At(%d,%d) = %d, want %d", r, c, got, wantRM[r][c])
			}
			if got := cm.At(r, c); got != wantCM[r][c] {
				t.Errorf("ColMajor At(%d,%d) = %d, want %d", r, c, got, wantCM[r][c])
			}
		}
	}

	strided, err := NewMatrixMapStride(make([]uint8, 9), 2, 3, 4, RowMajor)
	if err != nil {
		t.Fatal(err)
	}
	Store(uint8(7), Destination[uint8](strided), 1, 2)
	if got := strided.Data()[6]; got != 7 {
		t.Errorf("strided Store wrote %v", strided.Data())
	}
	for i, v := range strided.Data() {
		if i != 6 && v != 0 {
			t.Errorf("Store touched element %d", i)
		}
	}
}

func TestMatrixMapShapeErrors(t *testing.T) {
	if _, err := NewMatrixMap(make([]int32, 5), 2, 3, RowMajor); !errors.Is(err, ErrShape) {
		t.Errorf("short data: err = %v", err)
	}
	if _, err := NewMatrixMapStride(make([]int32, 100), 2, 3, 2, RowMajor); !errors.Is(err, ErrShape) {
		t.Errorf("short stride: err = %v", err)
	}
	if _, err := NewMatrixMap(make([]int32, 100), -1, 3, ColMajor); !errors.Is(err, ErrShape) {
		t.Errorf("negative rows: err = %v", err)
	}
	if _, err := NewMatrixMap[int32](nil, 0, 5, RowMajor); err != nil {
		t.Errorf("empty matrix: %v", err)
	}
}

// naiveGEMM computes sum_k (lhs[r][k] + lhsOffset) * (rhs[k][c] + rhsOffset).
func naiveGEMM(lhs, rhs [][]int32, lhsOffset, rhsOffset int32) [][]int32 {
	out := make([][]int32, len(lhs))
	for r := range lhs {
		out[r] = make([]int32, len(rhs[0]))
		for c := range rhs[0] {
			var sum int32
			for k := range rhs {
				sum += (lhs[r][k] + lhsOffset) * (rhs[k][c] + rhsOffset)
			}
			out[r][c] = sum
		}
	}
	return out
}

func TestAccumulatorsZeroPointCorrection(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const m, k, n = 5, 7, 4
	lhs := make([][]int32, m)
	rhs := make([][]int32, k)
	for r := range lhs {
		lhs[r] = make([]int32, k)
		for i := range lhs[r] {
			lhs[r][i] = int32(rng.Intn(256))
		}
	}
	for i := range rhs {
		rhs[i] = make([]int32, n)
		for c := range rhs[i] {
			rhs[i][c] = int32(rng.Intn(256))
		}
	}
	const lhsOffset, rhsOffset = -128, -3

	raw := naiveGEMM(lhs, rhs, 0, 0)
	flat := make([]int32, 0, m*n)
	for _, row := range raw {
		flat = append(flat, row...)
	}
	rawMap, err := NewMatrixMap(flat, m, n, RowMajor)
	if err != nil {
		t.Fatal(err)
	}
	rowSums := make([]int32, m)
	for r := range lhs {
		for _, v := range lhs[r] {
			rowSums[r] += v
		}
	}
	colSums := make([]int32, n)
	for i := range rhs {
		for c, v := range rhs[i] {
			colSums[c] += v
		}
	}
	acc := &Accumulators{
		Raw: rawMap, RowSums: rowSums, ColSums: colSums,
		Depth: k, LHSOffset: lhsOffset, RHSOffset: rhsOffset,
	}
	if err := acc.Validate(); err != nil {
		t.Fatal(err)
	}
	want := naiveGEMM(lhs, rhs, lhsOffset, rhsOffset)
	for r := range m {
		for c := range n {
			if got := acc.At(r, c); got != want[r][c] {
				t.Errorf("At(%d,%d) = %d, want %d", r, c, got, want[r][c])
			}
		}
	}

	bad := *acc
	bad.ColSums = colSums[:2]
	if err := bad.Validate(); !errors.Is(err, ErrShape) {
		t.Errorf("short column sums: err = %v", err)
	}
}

func TestRunBiasShapes(t *testing.T) {
	bias := []int32{10, 20, 30}
	tests := []struct {
		name       string
		shape      Shape
		rows, cols int
	}{
		{"row-shaped over 1x3", RowShaped, 1, 3},
		{"col-shaped over 3x1", ColShaped, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipeline[int32](BiasAddInt32(tt.shape, bias))
			if err != nil {
				t.Fatal(err)
			}
			src, _ := NewMatrixMap(make([]int32, 3), tt.rows, tt.cols, RowMajor)
			dst, _ := NewMatrixMap(make([]int32, 3), tt.rows, tt.cols, RowMajor)
			if err := Run(p, src, dst); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(bias, dst.Data()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunShapeErrors(t *testing.T) {
	p, err := NewPipeline[int32](BiasAddInt32(ColShaped, []int32{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}
	src, _ := NewMatrixMap(make([]int32, 6), 2, 3, RowMajor)
	dst, _ := NewMatrixMap(make([]int32, 6), 2, 3, RowMajor)
	if err := Run(p, src, dst); !errors.Is(err, ErrShape) {
		t.Errorf("3 row biases over 2 rows: err = %v", err)
	}
	for _, v := range dst.Data() {
		if v != 0 {
			t.Fatal("Run wrote before failing the shape check")
		}
	}

	q, _ := NewPipeline[int32]()
	wide, _ := NewMatrixMap(make([]int32, 8), 2, 4, RowMajor)
	if err := Run(q, src, wide); !errors.Is(err, ErrShape) {
		t.Errorf("destination shape mismatch: err = %v", err)
	}

	if err := Run(q, &Accumulators{}, dst); !errors.Is(err, ErrShape) {
		t.Errorf("accumulators without raw matrix: err = %v", err)
	}
	if err := RunParallel(nil, q, &Accumulators{Raw: src, LHSOffset: 1, ColSums: []int32{1}}, dst); !errors.Is(err, ErrShape) {
		t.Errorf("short column sums: err = %v", err)
	}
}

func TestRunMatchesEvaluateAndParallel(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const rows, cols = 37, 45
	raw := make([]int32, rows*cols)
	for i := range raw {
		raw[i] = int32(rng.Uint32()) >> 9
	}
	offsets := make([]int32, cols)
	mults := make([]int32, cols)
	for c := range cols {
		offsets[c] = int32(rng.Intn(200) - 100)
		mults[c] = int32(rng.Intn(1<<12) + 1)
	}
	rowBias := make([]int32, rows)
	for r := range rowBias {
		rowBias[r] = int32(rng.Intn(64))
	}
	pool := workerpool.New(4)
	defer pool.Close()

	for _, eval := range evaluators {
		p, err := NewPipelineWith[uint8](eval,
			PerChannelRequantize(ByCol, offsets, mults, 20),
			BiasAddInt32(ColShaped, rowBias),
			Tanh(128, 120),
			SaturatingCast(),
			ClampUint8(5, 250),
		)
		if err != nil {
			t.Fatal(err)
		}
		for _, layout := range []Layout{RowMajor, ColMajor} {
			src, _ := NewMatrixMap(raw, rows, cols, layout)
			seq, _ := NewMatrixMap(make([]uint8, rows*cols), rows, cols, layout)
			par, _ := NewMatrixMap(make([]uint8, rows*cols), rows, cols, RowMajor)
			if err := Run(p, src, seq); err != nil {
				t.Fatal(err)
			}
			if err := RunParallel(pool, p, src, par); err != nil {
				t.Fatal(err)
			}
			for r := range rows {
				for c := range cols {
					want := p.Evaluate(src.At(r, c), r, c)
					if got := seq.At(r, c); got != want {
						t.Fatalf("%s %s: Run (%d,%d) = %d, want %d", eval.Name(), layout, r, c, got, want)
					}
					if got := par.At(r, c); got != want {
						t.Fatalf("%s %s: RunParallel (%d,%d) = %d, want %d", eval.Name(), layout, r, c, got, want)
					}
				}
			}
		}
	}
}

func BenchmarkRun(b *testing.B) {
	const rows, cols = 256, 256
	raw, _ := NewMatrixMap(make([]int32, rows*cols), rows, cols, RowMajor)
	for i := range raw.Data() {
		raw.Data()[i] = int32(i * 2654435761)
	}
	dst, _ := NewMatrixMap(make([]uint8, rows*cols), rows, cols, RowMajor)
	for _, eval := range evaluators {
		p, err := NewPipelineWith[uint8](eval, RangeRequantize(-100, 3, 12), SaturatingCast())
		if err != nil {
			b.Fatal(err)
		}
		b.Run(eval.Name(), func(b *testing.B) {
			b.SetBytes(rows * cols * 4)
			for b.Loop() {
				if err := Run(p, raw, dst); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
