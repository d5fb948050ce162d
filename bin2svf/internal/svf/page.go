// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svf

import (
	"strconv"
	"time"
)

// Page program cycle time.
const pageProgramTime = 2 * time.Millisecond

var sdrPage = "SDR " + strconv.Itoa(PatternBits) + " TDI ("

// pattern writes p as hex digits between prefix and suffix.
func (c *cmdWriter) pattern(prefix string, p *PagePattern, suffix string) {
	c.buf = append(c.buf[:0], prefix...)
	c.buf = p.AppendHex(c.buf)
	c.buf = append(c.buf, suffix...)
	c.write(c.buf)
}

// programPage programs data (at most PageSize bytes) at addr.
func (c *cmdWriter) programPage(data []byte, addr uint32) {
	p := NewPagePattern(data, addr, OpProgramTDI)
	c.writeEnable()
	c.printf("! Program page: 0x%08x\n", addr)
	c.pattern(sdrPage, &p, ");\n\n")
	c.writeDisable()
	c.wait(pageProgramTime)
}

// verifyPage reads the page at addr back and compares it with data. A
// partial page is compared against 0xff past its end.
func (c *cmdWriter) verifyPage(data []byte, addr uint32) {
	tdi := NewPagePattern(nil, addr, OpVerifyTDI)
	tdo := NewPagePattern(data, addr, OpVerifyTDO)
	mask := NewPagePattern(nil, addr, OpVerifyMask)
	c.printf("! Verify page: 0x%08x\n", addr)
	c.pattern(sdrPage, &tdi, ")\n")
	c.pattern("TDO (", &tdo, ")\n")
	c.pattern("MASK (", &mask, ");\n")
}
