// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svf

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

const (
	PageSize    = 256          // bytes programmed or verified by one SDR
	PatternSize = PageSize + 4 // page data + address/opcode word
	PatternBits = PatternSize * 8
)

// Opcode selects what a PagePattern is used for. It occupies the low-order
// byte of the address/opcode word.
type Opcode uint8

const (
	OpProgramTDI Opcode = 0x40 // data shifted in to program a page
	OpVerifyTDI  Opcode = 0xc0 // address shifted in to read a page back
	OpVerifyTDO  Opcode = 0x00 // expected read back data
	OpVerifyMask Opcode = 0x00 // compare mask
)

// PagePattern is the bit vector shifted through the data register for one
// page operation. Data holds the page in reverse byte order with every byte
// bit reversed. AddrOp is sent after Data, most significant byte first.
type PagePattern struct {
	Data   [PageSize]byte
	AddrOp uint32
}

// NewPagePattern encodes data (at most PageSize bytes) as the pattern for
// operation op on the page at addr. Missing trailing bytes are encoded as
// 0xff, the erased flash state. The address is left out of the TDO and MASK
// patterns.
//
// The reversed address and the opcode do not overlap as long as addr fits in
// 24 bits; Generate checks that for the whole image.
func NewPagePattern(data []byte, addr uint32, op Opcode) PagePattern {
	if len(data) > PageSize {
		panic(fmt.Sprintf("svf: %d bytes do not fit in a page", len(data)))
	}
	var p PagePattern
	for i, b := range data {
		p.Data[PageSize-1-i] = ReverseBits8(b)
	}
	for i := len(data); i < PageSize; i++ {
		p.Data[PageSize-1-i] = 0xff
	}
	if op != OpVerifyTDO && op != OpVerifyMask {
		p.AddrOp = ReverseBits32(addr)
	}
	p.AddrOp |= uint32(op)
	return p
}

// AppendBytes appends the PatternSize bytes of p, in shift order, to dst.
func (p *PagePattern) AppendBytes(dst []byte) []byte {
	dst = append(dst, p.Data[:]...)
	return binary.BigEndian.AppendUint32(dst, p.AddrOp)
}

// AppendHex appends p to dst as lowercase hex digits, two per byte, in shift
// order.
func (p *PagePattern) AppendHex(dst []byte) []byte {
	var buf [PatternSize]byte
	return hex.AppendEncode(dst, p.AppendBytes(buf[:0]))
}
