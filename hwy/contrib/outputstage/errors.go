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

import "errors"

var (
	// ErrReprMismatch is returned when a stage does not consume the
	// representation its predecessor produces, or the last stage does not
	// produce the destination's representation.
	ErrReprMismatch = errors.New("outputstage: representation mismatch")

	// ErrInvalidStage is returned for stage parameters with no defined
	// result, such as a clamp with lo > hi.
	ErrInvalidStage = errors.New("outputstage: invalid stage")

	// ErrTooManyStages is returned when a pipeline exceeds MaxStages.
	ErrTooManyStages = errors.New("outputstage: too many stages")

	// ErrShape is returned by Run when source, destination and per-channel
	// vectors disagree on the matrix shape.
	ErrShape = errors.New("outputstage: shape mismatch")
)
