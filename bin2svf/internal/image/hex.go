// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"bytes"
	"fmt"

	"github.com/marcinbor85/gohex"
)

// readHex decodes an Intel HEX file. Every contiguous data segment becomes
// one section.
func readHex(raw []byte) (Sections, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	segs := mem.GetDataSegments()
	ss := make(Sections, 0, len(segs))
	for _, seg := range segs {
		ss = append(ss, &Section{
			Name:  fmt.Sprintf("segment %#x", seg.Address),
			Paddr: uint64(seg.Address),
			Data:  seg.Data,
		})
	}
	return ss, nil
}
