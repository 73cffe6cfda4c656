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
package main

import (
	"fmt"

	"github.com/ajroetker/go-lowp/hwy/contrib/calib"
	"github.com/ajroetker/go-lowp/hwy/contrib/outputstage"
)

// pipeline is a built outputstage.Pipeline with its output type erased.
type pipeline interface {
	Len() int
	Stages() []outputstage.Stage
	Reprs() []outputstage.Repr
	Evaluator() outputstage.Evaluator
	String() string
}

// buildAny builds the pipeline doc describes for whatever output
// representation it declares.
func buildAny(doc *calib.Document) (pipeline, error) {
	out, err := doc.OutputRepr()
	if err != nil {
		return nil, err
	}
	switch out {
	case outputstage.Int32:
		return calib.Build[int32](doc)
	case outputstage.Uint8:
		return calib.Build[uint8](doc)
	case outputstage.Float32:
		return calib.Build[float32](doc)
	}
	return nil, fmt.Errorf("unsupported output %s", out)
}

// makeBuffer returns a zeroed slice of n elements of r.
func makeBuffer(r outputstage.Repr, n int) any {
	switch r {
	case outputstage.Uint8:
		return make([]uint8, n)
	case outputstage.Float32:
		return make([]float32, n)
	}
	return make([]int32, n)
}
