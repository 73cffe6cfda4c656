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
// Command remgen writes the fully unrolled block and remainder routines used
// by hwy/contrib/blockxform.
//
// For a block size B it emits one full-block routine with B element calls,
// one routine per remainder 1..B-1, and a switch that picks the routine for
// a given remainder, so the leftover path never loops or branches per
// element.
//
// Usage:
//
//	remgen -block 16 -pkg blockxform -output zz_remainder_gen.go
//
// Or via go:generate:
//
//	//go:generate go run ../../../cmd/remgen -block 16 -output zz_remainder_gen.go
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	blockSize  = flag.Int("block", 16, "Block size; remainders 1..block-1 are generated")
	packageOut = flag.String("pkg", "blockxform", "Package name of the generated file")
	outputFile = flag.String("output", "zz_remainder_gen.go", "Output file")
	namePrefix = flag.String("name", "remainder", "Prefix of the generated remainder routines")
)

func main() {
	flag.Parse()

	gen := &Generator{
		BlockSize: *blockSize,
		Package:   *packageOut,
		Prefix:    *namePrefix,
	}
	src, err := gen.Generate(*outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputFile, src, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: write %s: %v\n", *outputFile, err)
		os.Exit(1)
	}
	fmt.Printf("Successfully generated %d remainder routines in %s\n", gen.BlockSize-1, *outputFile)
}
