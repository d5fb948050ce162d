// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package svf generates Serial Vector Format command streams that erase,
// program and verify a SPI flash attached behind a JTAG data register.
//
// The flash sees one SDR shift per page operation. The shifted vector is
// 2080 bits long: the 256 page bytes followed by a 32-bit address/opcode
// word. The data register is wired MSB-first while the image bytes are
// LSB-first, so every byte (and the address word) is bit reversed and the
// page is sent last byte first. See PagePattern.
//
// Generate walks an image page by page and writes the complete sequence:
//
//	TRST ON
//	FREQUENCY
//	unlock (clear software protect) and check
//	bulk erase                  (Erase)
//	program + verify every page (Write, Verify)
//	TRST OFF
//
// The final TRST OFF is written only if the whole sequence was written, so a
// truncated stream can be told apart from a complete one.
package svf
