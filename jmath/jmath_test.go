// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package jmath

import "testing"

func TestAlignUp(t *testing.T) {
	tests := []struct {
		n, align, want int
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 16, 16},
		{17, 16, 32},
		{12, 8, 16},
		{7, 1, 7},
	}
	for _, tc := range tests {
		if got := AlignUp(tc.n, tc.align); got != tc.want {
			t.Errorf("AlignUp(%d, %d): got %d, want %d", tc.n, tc.align, got, tc.want)
		}
	}
	if got := AlignUp[uint32](13, 8); got != 16 {
		t.Errorf("AlignUp[uint32](13, 8): got %d, want 16", got)
	}
}

func TestPaddingNeeded(t *testing.T) {
	for _, align := range []int{1, 2, 4, 8, 16, 32, 64, 256} {
		for offset := 0; offset < 3*align+5; offset++ {
			pad := PaddingNeeded(offset, align)
			if pad < 0 || pad >= align {
				t.Fatalf("PaddingNeeded(%d, %d) = %d, out of [0, %d)", offset, align, pad, align)
			}
			if (offset+pad)%align != 0 {
				t.Fatalf("PaddingNeeded(%d, %d) = %d doesn't reach alignment", offset, align, pad)
			}
			if pad != AlignUp(offset, align)-offset {
				t.Fatalf("PaddingNeeded(%d, %d) = %d disagrees with AlignUp", offset, align, pad)
			}
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, x := range []int{1, 2, 4, 16, 1024} {
		if !IsPowerOfTwo(x) {
			t.Errorf("IsPowerOfTwo(%d) = false", x)
		}
	}
	for _, x := range []int{-4, 0, 3, 12, 48} {
		if IsPowerOfTwo(x) {
			t.Errorf("IsPowerOfTwo(%d) = true", x)
		}
	}
}
