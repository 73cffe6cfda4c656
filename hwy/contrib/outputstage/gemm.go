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

	"github.com/ajroetker/go-lowp/hwy"
	"github.com/ajroetker/go-lowp/hwy/contrib/fixedpoint"
	"github.com/ajroetker/go-lowp/hwy/contrib/workerpool"
)

// AccumulatorSource supplies one int32 accumulator per cell.
// *MatrixMap[int32] implements it.
type AccumulatorSource interface {
	Rows() int
	Cols() int
	At(r, c int) int32
}

// Accumulators applies zero-point corrections to raw products of an
// M x K by K x N integer GEMM:
//
//	At(r, c) = Raw(r, c) + LHSOffset*ColSums[c] + RHSOffset*RowSums[r]
//	         + Depth*LHSOffset*RHSOffset
//
// RowSums holds the sum of each LHS row and ColSums the sum of each RHS
// column. Either may be nil when the matching offset is zero. The corrected
// value is formed in 64 bits and saturated to int32.
type Accumulators struct {
	Raw       AccumulatorSource
	RowSums   []int32
	ColSums   []int32
	Depth     int
	LHSOffset int32
	RHSOffset int32
}

// Rows implements AccumulatorSource.
func (a *Accumulators) Rows() int { return a.Raw.Rows() }

// Cols implements AccumulatorSource.
func (a *Accumulators) Cols() int { return a.Raw.Cols() }

// At implements AccumulatorSource.
func (a *Accumulators) At(r, c int) int32 {
	v := int64(a.Raw.At(r, c))
	if a.LHSOffset != 0 {
		v += int64(a.LHSOffset) * int64(a.ColSums[c])
	}
	if a.RHSOffset != 0 {
		v += int64(a.RHSOffset) * int64(a.RowSums[r])
	}
	v += int64(a.Depth) * int64(a.LHSOffset) * int64(a.RHSOffset)
	return fixedpoint.SaturatingCastToInt32(v)
}

// Validate checks the correction vectors against the raw matrix.
func (a *Accumulators) Validate() error {
	if a.Raw == nil {
		return fmt.Errorf("%w: accumulators have no raw matrix", ErrShape)
	}
	if a.LHSOffset != 0 && len(a.ColSums) != a.Raw.Cols() {
		return fmt.Errorf("%w: %d column sums for %d columns", ErrShape, len(a.ColSums), a.Raw.Cols())
	}
	if a.RHSOffset != 0 && len(a.RowSums) != a.Raw.Rows() {
		return fmt.Errorf("%w: %d row sums for %d rows", ErrShape, len(a.RowSums), a.Raw.Rows())
	}
	if a.Depth < 0 {
		return fmt.Errorf("%w: negative depth %d", ErrShape, a.Depth)
	}
	return nil
}

// CheckShape reports whether p can run over a rows x cols matrix: every
// per-channel or bias vector must have one entry per row or column along its
// axis.
func (p *Pipeline[Out]) CheckShape(rows, cols int) error {
	for i, s := range p.stages {
		n, axis := s.Channels()
		if n == 0 {
			continue
		}
		want := cols
		if axis == ByRow {
			want = rows
		}
		if n != want {
			return fmt.Errorf("%w: stage %d (%s) has %d %s channels, matrix has %d",
				ErrShape, i, s.Kind(), n, axis, want)
		}
	}
	return nil
}

func checkRun[Out Scalar](p *Pipeline[Out], src AccumulatorSource, dst Destination[Out]) error {
	// Accumulators must be validated before Rows and Cols reach Raw.
	if a, ok := src.(*Accumulators); ok {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	if src.Rows() != dst.Rows() || src.Cols() != dst.Cols() {
		return fmt.Errorf("%w: source is %dx%d, destination is %dx%d",
			ErrShape, src.Rows(), src.Cols(), dst.Rows(), dst.Cols())
	}
	return p.CheckShape(src.Rows(), src.Cols())
}

// Run evaluates every cell of src through p and stores the results in dst.
// All shapes are checked before any element is written.
func Run[Out Scalar](p *Pipeline[Out], src AccumulatorSource, dst Destination[Out]) error {
	return RunParallel(nil, p, src, dst)
}

// RunParallel is Run with bands of rows spread over pool. Bands write
// disjoint destination rows. A nil pool runs on the calling goroutine.
func RunParallel[Out Scalar](pool *workerpool.Pool, p *Pipeline[Out], src AccumulatorSource, dst Destination[Out]) error {
	if err := checkRun(p, src, dst); err != nil {
		return err
	}
	pool.ParallelFor(src.Rows(), func(lo, hi int) {
		p.runRows(src, dst, lo, hi)
	})
	return nil
}

func (p *Pipeline[Out]) runRows(src AccumulatorSource, dst Destination[Out], lo, hi int) {
	cols := src.Cols()
	var f Fragment
	var out [FragmentWidth]Out
	var r int
	fragment := func(c0, w int) {
		f.Repr, f.N, f.Row, f.Col = Int32, w, r, c0
		for i := range w {
			f.I32[i] = src.At(r, c0+i)
		}
		p.run(&f)
		unload(&f, out[:w])
		for i := range w {
			Store(out[i], dst, r, c0+i)
		}
	}
	for r = lo; r < hi; r++ {
		hwy.ProcessWithTail(cols, FragmentWidth,
			func(c0 int) { fragment(c0, FragmentWidth) }, fragment)
	}
}
