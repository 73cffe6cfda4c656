package hwy

import (
	"testing"
)

func TestLoadNShort(t *testing.T) {
	v := LoadN([]int32{1, 2, 3}, 16)
	if v.NumLanes() != 3 {
		t.Fatalf("LoadN: got %d lanes, want 3", v.NumLanes())
	}
}

func TestSetN(t *testing.T) {
	v := SetN[int32](42, 5)
	if v.NumLanes() != 5 {
		t.Fatalf("SetN: got %d lanes, want 5", v.NumLanes())
	}
	for i := 0; i < v.NumLanes(); i++ {
		if v.data[i] != 42 {
			t.Errorf("SetN: lane %d: got %v, want 42", i, v.data[i])
		}
	}
}

func TestArithmeticInt32(t *testing.T) {
	a := LoadN([]int32{1, -2, 3, 40}, 4)
	b := LoadN([]int32{10, 20, -30, 4}, 4)

	check := func(name string, got Vec[int32], want []int32) {
		t.Helper()
		for i := range want {
			if got.data[i] != want[i] {
				t.Errorf("%s: lane %d: got %d, want %d", name, i, got.data[i], want[i])
			}
		}
	}
	check("Add", Add(a, b), []int32{11, 18, -27, 44})
	check("Sub", Sub(a, b), []int32{-9, -22, 33, 36})
	check("Mul", Mul(a, b), []int32{10, -40, -90, 160})
	check("Min", Min(a, b), []int32{1, -2, -30, 4})
	check("Max", Max(a, b), []int32{10, 20, 3, 40})
	check("Clamp", Clamp(a, SetN[int32](0, 4), SetN[int32](10, 4)), []int32{1, 0, 3, 10})
}

func TestRoundToEven(t *testing.T) {
	v := LoadN([]float64{0.5, 1.5, 2.5, -0.5, -1.5, 2.4}, 6)
	got := RoundToEven(v)
	want := []float64{0, 2, 2, 0, -2, 2}
	for i := range want {
		if got.data[i] != want[i] {
			t.Errorf("RoundToEven lane %d: got %v, want %v", i, got.data[i], want[i])
		}
	}
}

func TestDispatchLevelString(t *testing.T) {
	if CurrentName() == "" || CurrentName() == "unknown" {
		t.Errorf("CurrentName() = %q", CurrentName())
	}
	if Vectorized() != (CurrentLevel() != DispatchScalar) {
		t.Error("Vectorized disagrees with CurrentLevel")
	}
	if CurrentWidth() < 16 {
		t.Errorf("CurrentWidth() = %d, want >= 16", CurrentWidth())
	}
}

func TestProcessWithTail(t *testing.T) {
	for size := 0; size <= 40; size++ {
		var fullCalls, tailCalls, covered int
		ProcessWithTail(size, 16,
			func(offset int) {
				if offset != fullCalls*16 {
					t.Errorf("size %d: full offset %d, want %d", size, offset, fullCalls*16)
				}
				fullCalls++
				covered += 16
			},
			func(offset, count int) {
				tailCalls++
				if offset+count != size {
					t.Errorf("size %d: tail [%d,+%d) does not end at size", size, offset, count)
				}
				covered += count
			},
		)
		if covered != size {
			t.Errorf("size %d: covered %d", size, covered)
		}
		wantTail := 0
		if size%16 != 0 {
			wantTail = 1
		}
		if tailCalls != wantTail {
			t.Errorf("size %d: %d tail calls, want %d", size, tailCalls, wantTail)
		}
	}
}

func TestSplitBlocks(t *testing.T) {
	tests := []struct{ count, full, rem int }{
		{0, 0, 0}, {1, 0, 1}, {15, 0, 15}, {16, 1, 0}, {17, 1, 1}, {64, 4, 0}, {-3, 0, 0},
	}
	for _, tt := range tests {
		full, rem := SplitBlocks(tt.count, 16)
		if full != tt.full || rem != tt.rem {
			t.Errorf("SplitBlocks(%d, 16) = (%d, %d), want (%d, %d)", tt.count, full, rem, tt.full, tt.rem)
		}
	}
}
