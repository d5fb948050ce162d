// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svf

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedChipSize = errors.New("unsupported chip size")
	ErrEmptyMode           = errors.New("no erase, write or verify phase selected")
	ErrBadFrequency        = errors.New("TCK frequency must be positive")
)

// ChipSizeError reports a chip size without a known erase time.
type ChipSizeError struct {
	Size ChipSize
}

func (e *ChipSizeError) Error() string {
	return fmt.Sprintf("unsupported chip size: %s", e.Size)
}

func (e *ChipSizeError) Unwrap() error { return ErrUnsupportedChipSize }

// AddressLimit is the first flash address that cannot be encoded. Above 24
// bits the reversed page address would overlap the opcode byte.
const AddressLimit = 1 << 24

// AddressRangeError reports an image that does not fit below AddressLimit.
type AddressRangeError struct {
	Addr uint32
	Size int
}

func (e *AddressRangeError) Error() string {
	return fmt.Sprintf(
		"image [%#x, %#x) exceeds the 24-bit flash address space",
		e.Addr, uint64(e.Addr)+uint64(e.Size),
	)
}
