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
// Package calib loads output pipelines from calibration documents.
//
// A document names the pipeline's destination representation and lists its
// stages in order. YAML and JSON are accepted; the field names are the same
// in both:
//
//	output: uint8
//	stages:
//	  - kind: range_requantize
//	    offset: -100
//	    multiplier: 3
//	    shift: 4
//	  - kind: saturating_cast
//
// Stage kinds use the names printed by outputstage.Kind.String. A
// fixed_point_requantize stage may give real_multiplier instead of
// multiplier and shift; it is decomposed with fixedpoint.QuantizeMultiplier.
package calib
