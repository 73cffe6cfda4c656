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

import "github.com/ajroetker/go-lowp/hwy"

// BlockSize is the number of elements in a full block.
const BlockSize = 16

// Rule is the per-element contract of a transform: Apply maps the element
// at index i of the source to its output. Rules must be pure.
type Rule[In, Out any] interface {
	Apply(x In, i int) Out
}

// BlockRule is a Rule with a whole-block implementation. ApplyBlock must
// store exactly what Apply would for src[j] at index base+j.
type BlockRule[In, Out any] interface {
	Rule[In, Out]
	ApplyBlock(src *[BlockSize]In, dst *[BlockSize]Out, base int)
}

// useBlockRules selects ApplyBlock for full blocks. It is fixed at init from
// the dispatch level, which honours HWY_NO_SIMD.
var useBlockRules = hwy.Vectorized()

// UsesBlockRules reports whether full blocks run through ApplyBlock.
func UsesBlockRules() bool { return useBlockRules }

// Transform writes rule(src[i], i) to dst[i] for i < count. count is clamped
// to the shorter of src and dst; a non-positive count touches nothing.
func Transform[In, Out any, R Rule[In, Out]](rule R, src []In, dst []Out, count int) {
	count = min(count, len(src), len(dst))
	if count <= 0 {
		return
	}
	transform(rule, src[:count], dst[:count], 0)
}

// TransformParallel is Transform with the buffer split into runs of whole
// blocks, each handed to run as a range of block numbers. run is typically a
// workerpool.Pool's ParallelFor method. Element i still sees index i.
func TransformParallel[In, Out any, R Rule[In, Out]](run func(n int, fn func(lo, hi int)), rule R, src []In, dst []Out, count int) {
	count = min(count, len(src), len(dst))
	if count <= 0 {
		return
	}
	blocks := (count + BlockSize - 1) / BlockSize
	run(blocks, func(lo, hi int) {
		start, end := lo*BlockSize, min(hi*BlockSize, count)
		transform(rule, src[start:end], dst[start:end], start)
	})
}

// transform processes all of src, whose first element has index base.
// len(dst) == len(src) > 0.
func transform[In, Out any, R Rule[In, Out]](rule R, src []In, dst []Out, base int) {
	full, rem := hwy.SplitBlocks(len(src), BlockSize)

	block, ok := any(rule).(BlockRule[In, Out])
	if ok && useBlockRules {
		for b := range full {
			i := b * BlockSize
			block.ApplyBlock((*[BlockSize]In)(src[i:]), (*[BlockSize]Out)(dst[i:]), base+i)
		}
	} else {
		for b := range full {
			i := b * BlockSize
			applyBlock(rule, (*[BlockSize]In)(src[i:]), (*[BlockSize]Out)(dst[i:]), base+i)
		}
	}
	if rem == 0 {
		return
	}
	tail := full * BlockSize
	applyRemainder(rule, src[tail:], dst[tail:], base+tail, rem)
}
