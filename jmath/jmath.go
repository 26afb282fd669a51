// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package jmath contains the integer arithmetic shared by the layout rules.
package jmath

import "golang.org/x/exp/constraints"

// AlignUp rounds n up to the next multiple of alignment, which must be a
// power of two.
func AlignUp[T constraints.Integer](n, alignment T) T {
	return (n + alignment - 1) &^ (alignment - 1)
}

// PaddingNeeded returns the number of bytes that have to be inserted after
// offset to reach the next multiple of alignment. It is zero if offset is
// already aligned.
func PaddingNeeded[T constraints.Integer](offset, alignment T) T {
	return (alignment - offset%alignment) % alignment
}

func IsPowerOfTwo[T constraints.Integer](x T) bool {
	return x > 0 && x&(x-1) == 0
}
