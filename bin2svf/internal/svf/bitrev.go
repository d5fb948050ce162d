// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svf

import "golang.org/x/exp/constraints"

// revTab[b] is b with its bit order inverted.
var revTab [256]uint8

func init() {
	for i := range revTab {
		v := uint8(i)
		var r uint8
		for b := 0; b < 8; b++ {
			r |= (v >> b & 1) << (7 - b)
		}
		revTab[i] = r
	}
}

// reverse inverts the bit order of v. The word is processed byte by byte:
// the least significant byte, reversed, becomes the most significant one.
func reverse[T constraints.Unsigned](v T) T {
	var r T
	for m := ^T(0); m != 0; m >>= 8 {
		r = r<<8 | T(revTab[uint8(v)])
		v >>= 8
	}
	return r
}

// ReverseBits8 returns v with bit i moved to bit 7-i.
func ReverseBits8(v uint8) uint8 { return revTab[v] }

// ReverseBits32 returns v with bit i moved to bit 31-i.
func ReverseBits32(v uint32) uint32 { return reverse(v) }
