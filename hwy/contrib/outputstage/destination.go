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

import "fmt"

// Destination is matrix storage addressed by (row, column). Layout is up to
// the implementation.
type Destination[T Scalar] interface {
	Rows() int
	Cols() int
	Set(r, c int, v T)
}

// Store writes v to dst at (r, c). It is the only way pipeline results reach
// a destination, and it writes exactly one element.
func Store[T Scalar](v T, dst Destination[T], r, c int) {
	dst.Set(r, c, v)
}

// Layout is the storage order of a MatrixMap.
type Layout uint8

const (
	RowMajor Layout = iota
	ColMajor
)

func (l Layout) String() string {
	if l == RowMajor {
		return "row_major"
	}
	return "col_major"
}

// MatrixMap views a flat slice as a rows x cols matrix. Stride is the
// distance between consecutive rows (RowMajor) or columns (ColMajor).
type MatrixMap[T Scalar] struct {
	data   []T
	rows   int
	cols   int
	stride int
	layout Layout
}

// NewMatrixMap returns a densely packed view of data.
func NewMatrixMap[T Scalar](data []T, rows, cols int, layout Layout) (*MatrixMap[T], error) {
	stride := cols
	if layout == ColMajor {
		stride = rows
	}
	return NewMatrixMapStride(data, rows, cols, stride, layout)
}

// NewMatrixMapStride returns a view of data with an explicit stride.
func NewMatrixMapStride[T Scalar](data []T, rows, cols, stride int, layout Layout) (*MatrixMap[T], error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrShape, rows, cols)
	}
	inner, outer := cols, rows
	if layout == ColMajor {
		inner, outer = rows, cols
	}
	if stride < inner {
		return nil, fmt.Errorf("%w: stride %d shorter than %d", ErrShape, stride, inner)
	}
	if outer > 0 && inner > 0 {
		if need := (outer-1)*stride + inner; len(data) < need {
			return nil, fmt.Errorf("%w: %dx%d %s matrix with stride %d needs %d elements, have %d",
				ErrShape, rows, cols, layout, stride, need, len(data))
		}
	}
	return &MatrixMap[T]{data: data, rows: rows, cols: cols, stride: stride, layout: layout}, nil
}

// Rows returns the number of rows.
func (m *MatrixMap[T]) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *MatrixMap[T]) Cols() int { return m.cols }

// Layout returns the storage order.
func (m *MatrixMap[T]) Layout() Layout { return m.layout }

// Data returns the underlying slice.
func (m *MatrixMap[T]) Data() []T { return m.data }

// Index returns the offset of (r, c) in Data.
func (m *MatrixMap[T]) Index(r, c int) int {
	if m.layout == RowMajor {
		return r*m.stride + c
	}
	return c*m.stride + r
}

// At returns the element at (r, c).
func (m *MatrixMap[T]) At(r, c int) T { return m.data[m.Index(r, c)] }

// Set writes the element at (r, c).
func (m *MatrixMap[T]) Set(r, c int, v T) { m.data[m.Index(r, c)] = v }
