// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svf

import (
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
)

// Time to wait after clearing the software protection.
const unlockTime = 100 * time.Millisecond

// Stats counts the page operations of a run.
type Stats struct {
	Pages      int // pages of the image
	Programmed int // pages programmed
	Skipped    int // erased pages not programmed
	Verified   int // pages verified
}

// Generate writes to w the SVF sequence that programs image into the flash
// at addr according to cfg.
//
// Invalid configurations and images that do not fit in the 24-bit address
// space are reported before anything is written. A write error stops the
// sequence at once and the closing TRST OFF is not written.
func Generate(w io.Writer, image []byte, addr uint32, cfg Config) (st Stats, err error) {
	eraseTime, err := cfg.Chip.EraseTime()
	if err != nil {
		return st, err
	}
	if cfg.Mode&modeMask == 0 {
		return st, ErrEmptyMode
	}
	if uint64(addr)+uint64(len(image)) > AddressLimit {
		return st, &AddressRangeError{Addr: addr, Size: len(image)}
	}
	freq := cfg.Frequency
	switch {
	case freq < 0:
		return st, fmt.Errorf("%w: %s", ErrBadFrequency, freq)
	case freq == 0:
		freq = DefaultFrequency
	}

	c := &cmdWriter{w: w}
	c.trst(true)
	c.frequency(freq)
	c.writeEnable()
	c.clearSoftwareProtect()
	c.writeDisable()
	c.wait(unlockTime)
	c.checkNoSoftwareProtect()
	if cfg.Mode&Erase != 0 {
		c.writeEnable()
		c.bulkErase()
		c.writeDisable()
		c.wait(eraseTime)
		c.checkStatus()
	}
	if c.err != nil {
		return st, c.err
	}

	for off := 0; off < len(image); {
		n := min(len(image)-off, PageSize)
		page := image[off : off+n]
		erased := isErased(page)
		written := false
		if cfg.Mode&Write != 0 {
			// No need to program ones into an erased page.
			if cfg.Mode&Erase == 0 || !erased {
				c.programPage(page, addr)
				written = true
				st.Programmed++
			} else {
				st.Skipped++
			}
		}
		// Always verify what was written.
		if cfg.Mode&Verify != 0 || written {
			c.verifyPage(page, addr)
			st.Verified++
		}
		if c.err != nil {
			return st, fmt.Errorf("page 0x%08x: %w", addr, c.err)
		}
		if glog.V(2) {
			glog.Infof("page %#08x: %d bytes, erased=%t written=%t", addr, n, erased, written)
		}
		st.Pages++
		off += n
		addr += uint32(n)
		if cfg.Progress != nil {
			cfg.Progress(off, len(image))
		}
	}

	c.trst(false)
	return st, c.err
}

func isErased(page []byte) bool {
	for _, b := range page {
		if b != 0xff {
			return false
		}
	}
	return true
}
