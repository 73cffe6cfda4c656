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

package hwy

// SplitBlocks returns how many full blocks of size block fit in count and
// how many elements are left over. block must be positive.
func SplitBlocks(count, block int) (full, remainder int) {
	if count <= 0 {
		return 0, 0
	}
	remainder = count % block
	return (count - remainder) / block, remainder
}

// ProcessWithTail walks size elements in chunks of block. It calls
//   - fullFn(offset) for each full chunk (offset is the starting index)
//   - tailFn(offset, count) exactly once if size is not a multiple of block
//
// size == 0 calls neither function.
func ProcessWithTail(size, block int, fullFn func(offset int), tailFn func(offset, count int)) {
	full, remaining := SplitBlocks(size, block)
	for i := range full {
		fullFn(i * block)
	}
	if remaining > 0 {
		tailFn(full*block, remaining)
	}
}
