// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svf

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"periph.io/x/conn/v3/physic"
)

// cmdWriter writes SVF commands to w. The first write error is kept in err
// and turns all subsequent writes into no-ops.
type cmdWriter struct {
	w   io.Writer
	err error
	buf []byte
}

func (c *cmdWriter) write(b []byte) {
	if c.err != nil {
		return
	}
	_, c.err = c.w.Write(b)
}

func (c *cmdWriter) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format, args...)
}

func (c *cmdWriter) trst(on bool) {
	if on {
		c.printf("TRST ON;\n\n")
	} else {
		c.printf("TRST OFF;\n\n")
	}
}

func (c *cmdWriter) frequency(f physic.Frequency) {
	c.printf("FREQUENCY %s HZ;\n\n", formatHz(f))
}

func (c *cmdWriter) writeEnable() {
	c.printf("! Write enable\nSDR 8 TDI(60);\n\n")
}

func (c *cmdWriter) writeDisable() {
	c.printf("! Write disable\nSDR 8 TDI(20);\n\n")
}

func (c *cmdWriter) wait(d time.Duration) {
	c.printf("RUNTEST IDLE %s SEC ENDSTATE IDLE;\n\n", formatSeconds(d))
}

func (c *cmdWriter) clearSoftwareProtect() {
	c.printf("! Clear software protect\nSDR 16 TDI(0080);\n\n")
}

func (c *cmdWriter) checkNoSoftwareProtect() {
	c.printf("! Check no software protect\nSDR 16 TDI(ffa0) TDO(c6ff) MASK(3900);\n\n")
}

func (c *cmdWriter) checkStatus() {
	c.printf("! Check status\nSDR 16 TDI(ffa0) TDO(0000) MASK(8000);\n\n")
}

func (c *cmdWriter) bulkErase() {
	c.printf("! Bulk erase\nSDR 8 TDI(e3);\n\n")
}

// formatHz formats f in Hz the way the JTAG vendor tools do: two decimals
// and a three digit exponent (5.00e+006).
func formatHz(f physic.Frequency) string {
	s := strconv.FormatFloat(float64(f)/float64(physic.Hertz), 'e', 2, 64)
	i := strings.LastIndexByte(s, 'e')
	mant, sign, exp := s[:i], s[i+1], s[i+2:]
	if len(exp) < 3 {
		exp = strings.Repeat("0", 3-len(exp)) + exp
	}
	return mant + "e" + string(sign) + exp
}

// formatSeconds formats d, rounded down to milliseconds, in seconds with at
// most six significant digits, like the %G verb of C printf.
func formatSeconds(d time.Duration) string {
	s := float32(d.Milliseconds()) / 1000
	return strconv.FormatFloat(float64(s), 'G', 6, 32)
}
