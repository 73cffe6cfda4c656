package hwy

import (
	"math"
	"testing"
)

func TestClampInt32(t *testing.T) {
	v := LoadN([]int32{-5, 0, 7, 300}, 4)
	result := Clamp(v, SetN[int32](0, 4), SetN[int32](255, 4))

	expected := []int32{0, 0, 7, 255}
	for i, want := range expected {
		if result.data[i] != want {
			t.Errorf("Clamp int32: lane %d: got %d, want %d", i, result.data[i], want)
		}
	}
}

func TestSaturatedAddI32(t *testing.T) {
	a := LoadN([]int32{math.MaxInt32, math.MinInt32, 5, -5}, 4)
	b := LoadN([]int32{1, -1, 10, -10}, 4)
	result := SaturatedAddI32(a, b)

	expected := []int32{math.MaxInt32, math.MinInt32, 15, -15}
	for i, want := range expected {
		if result.data[i] != want {
			t.Errorf("SaturatedAddI32: lane %d: got %d, want %d", i, result.data[i], want)
		}
	}
}

func TestRoundingShiftRight(t *testing.T) {
	tests := []struct {
		name  string
		in    []int32
		shift int
		want  []int32
	}{
		{"shift0_identity", []int32{-3, 0, 3, math.MaxInt32}, 0, []int32{-3, 0, 3, math.MaxInt32}},
		{"negative_shift_identity", []int32{-3, 7}, -2, []int32{-3, 7}},
		{"shift1", []int32{0, 1, 2, 3, 4}, 1, []int32{0, 1, 1, 2, 2}},
		{"shift1_negative_ties_up", []int32{-1, -2, -3}, 1, []int32{0, -1, -1}},
		{"shift4", []int32{8, 7, -8, -9}, 4, []int32{1, 0, 0, -1}},
		{"max_no_wrap", []int32{math.MaxInt32}, 1, []int32{1 << 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundingShiftRight(LoadN(tt.in, len(tt.in)), tt.shift)
			for i, want := range tt.want {
				if got.data[i] != want {
					t.Errorf("lane %d: RoundingShiftRight(%d, %d) = %d, want %d", i, tt.in[i], tt.shift, got.data[i], want)
				}
			}
		})
	}
}

func TestRoundingShiftRightInt64(t *testing.T) {
	in := []int64{int64(math.MaxInt32) * 3, -(1 << 40), 5}
	got := RoundingShiftRight(LoadN(in, len(in)), 3)
	for i, x := range in {
		want := (x + 4) >> 3
		if got.data[i] != want {
			t.Errorf("lane %d: got %d, want %d", i, got.data[i], want)
		}
	}
}

func TestMulFixedPoint31(t *testing.T) {
	half := int32(1 << 30)
	a := LoadN([]int32{half, math.MinInt32, math.MaxInt32, -half, 3}, 5)
	b := LoadN([]int32{half, math.MinInt32, math.MaxInt32, half, 1 << 30}, 5)
	got := MulFixedPoint31(a, b)

	// 0.5*0.5 = 0.25; -1*-1 saturates; ~1*~1 ~= 1; -0.5*0.5 = -0.25; 3*0.5 = 1.5 -> 2 (away from zero).
	want := []int32{1 << 29, math.MaxInt32, math.MaxInt32 - 1, -(1 << 29), 2}
	for i := range want {
		if got.data[i] != want[i] {
			t.Errorf("lane %d: got %d, want %d", i, got.data[i], want[i])
		}
	}
}

func TestDemoteSaturates(t *testing.T) {
	wide := LoadN([]int64{math.MaxInt64, math.MinInt64, 42}, 3)
	narrow := DemoteI64ToI32(wide)
	want := []int32{math.MaxInt32, math.MinInt32, 42}
	for i := range want {
		if narrow.data[i] != want[i] {
			t.Errorf("DemoteI64ToI32 lane %d: got %d, want %d", i, narrow.data[i], want[i])
		}
	}

	bytes := DemoteI32ToU8(LoadN([]int32{-5, 300, 128}, 3))
	wantBytes := []uint8{0, 255, 128}
	for i := range wantBytes {
		if bytes.data[i] != wantBytes[i] {
			t.Errorf("DemoteI32ToU8 lane %d: got %d, want %d", i, bytes.data[i], wantBytes[i])
		}
	}
}

func TestConvertToInt32Saturating(t *testing.T) {
	v := LoadN([]float64{math.NaN(), -1e12, 1e12, 17, 255.0, 256}, 6)
	got := ConvertToInt32Saturating(v, 0, 255)
	want := []int32{0, 0, 255, 17, 255, 255}
	for i := range want {
		if got.data[i] != want[i] {
			t.Errorf("lane %d: got %d, want %d", i, got.data[i], want[i])
		}
	}
}
