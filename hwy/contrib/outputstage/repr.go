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
	"math"
)

// Repr identifies the scalar representation flowing between stages.
type Repr uint8

const (
	// Int32 is the accumulator's native representation.
	Int32 Repr = iota + 1
	Uint8
	Float32
)

// String returns the Go type name of the representation.
func (r Repr) String() string {
	switch r {
	case Int32:
		return "int32"
	case Uint8:
		return "uint8"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("Repr(%d)", uint8(r))
	}
}

// ParseRepr is the inverse of Repr.String.
func ParseRepr(s string) (Repr, error) {
	switch s {
	case "int32":
		return Int32, nil
	case "uint8":
		return Uint8, nil
	case "float32":
		return Float32, nil
	}
	return 0, fmt.Errorf("outputstage: unknown representation %q", s)
}

// Scalar is the set of storable destination types.
type Scalar interface {
	int32 | uint8 | float32
}

// ReprOf returns the representation of T.
func ReprOf[T Scalar]() Repr {
	var zero T
	switch any(zero).(type) {
	case int32:
		return Int32
	case uint8:
		return Uint8
	default:
		return Float32
	}
}

// Value is one scalar tagged with its representation. It is the currency of
// Stage.Apply; bulk paths work on typed slices instead.
type Value struct {
	repr Repr
	bits uint32
}

// Int32Value wraps an int32.
func Int32Value(v int32) Value { return Value{repr: Int32, bits: uint32(v)} }

// Uint8Value wraps a uint8.
func Uint8Value(v uint8) Value { return Value{repr: Uint8, bits: uint32(v)} }

// Float32Value wraps a float32.
func Float32Value(v float32) Value { return Value{repr: Float32, bits: math.Float32bits(v)} }

// ValueOf wraps any storable scalar.
func ValueOf[T Scalar](v T) Value {
	switch x := any(v).(type) {
	case int32:
		return Int32Value(x)
	case uint8:
		return Uint8Value(x)
	default:
		return Float32Value(any(v).(float32))
	}
}

// ValueAs unwraps v as T. It panics if v does not hold a T.
func ValueAs[T Scalar](v Value) T {
	var out T
	switch p := any(&out).(type) {
	case *int32:
		*p = v.Int32()
	case *uint8:
		*p = v.Uint8()
	case *float32:
		*p = v.Float32()
	}
	return out
}

// Repr returns the representation v holds.
func (v Value) Repr() Repr { return v.repr }

// Int32 returns the held int32. It panics if v holds another representation.
func (v Value) Int32() int32 {
	v.mustBe(Int32)
	return int32(v.bits)
}

// Uint8 returns the held uint8. It panics if v holds another representation.
func (v Value) Uint8() uint8 {
	v.mustBe(Uint8)
	return uint8(v.bits)
}

// Float32 returns the held float32. It panics if v holds another
// representation.
func (v Value) Float32() float32 {
	v.mustBe(Float32)
	return math.Float32frombits(v.bits)
}

func (v Value) mustBe(r Repr) {
	if v.repr != r {
		panic(fmt.Sprintf("outputstage: value holds %s, not %s", v.repr, r))
	}
}

// String formats the held scalar.
func (v Value) String() string {
	switch v.repr {
	case Int32:
		return fmt.Sprint(v.Int32())
	case Uint8:
		return fmt.Sprint(v.Uint8())
	case Float32:
		return fmt.Sprint(v.Float32())
	}
	return "<invalid>"
}
