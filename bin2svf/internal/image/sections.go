// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"debug/elf"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/embeddedgo/svftools/bin2svf/internal/util"
)

type Section struct {
	Name  string // file or ELF section the data comes from
	Paddr uint64 // location of the section in the flash
	Data  []byte
}

type Sections []*Section

// readELF reads the loadable sections of the program and returns them as
// a slice. The order of the returned sections is unspecified.
func readELF(r io.ReaderAt) (Sections, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ss := make(Sections, 0, 16)
	for i, s := range f.Sections {
		if s.Type != elf.SHT_PROGBITS || s.Flags&elf.SHF_ALLOC == 0 {
			if k := i + 1; k < len(f.Sections) && len(ss) != 0 {
				ns := f.Sections[k]
				if ns.Type == elf.SHT_PROGBITS && ns.Flags&elf.SHF_ALLOC != 0 {
					// The gap is filled with the pad byte.
					util.Warn("readelf: skipping section '%s' (%d bytes)", s.Name, s.Size)
				}
			}
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}
		paddr := s.Addr
		for _, p := range f.Progs {
			if p.Type != elf.PT_LOAD {
				continue
			}
			if p.Off <= s.Offset && s.Offset < p.Off+p.Filesz {
				paddr = p.Paddr + s.Offset - p.Off
				break
			}
		}
		ss = append(ss, &Section{s.Name, paddr, data})
	}
	return ss, nil
}

// ReadBins reads binary files acording to the description
// (BIN1:ADDR1[,BIN2:ADDR2[,...]]) and returns them as a slice of sections.
func ReadBins(descr string) (Sections, error) {
	bins := strings.Split(descr, ",")
	ss := make(Sections, len(bins))
	for k, ba := range bins {
		i := strings.LastIndexByte(ba, ':')
		if i <= 0 {
			return nil, fmt.Errorf("bad '%s' in the -inc option", ba)
		}
		bin, addr := ba[:i], ba[i+1:]
		s := &Section{Name: bin}
		var err error
		s.Paddr, err = strconv.ParseUint(addr, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("bad address in '%s': %s", addr, err)
		}
		s.Data, err = os.ReadFile(bin)
		if err != nil {
			return nil, err
		}
		ss[k] = s
	}
	return ss, nil
}

// SortByPaddr sorts sections according to the Paddr field.
func (ss Sections) SortByPaddr() {
	sort.SliceStable(
		ss,
		func(i, j int) bool {
			return ss[i].Paddr < ss[j].Paddr
		},
	)
}

// Relocate moves the sections so that the lowest one starts at addr. The
// distances between sections are preserved.
func (ss Sections) Relocate(addr uint64) {
	if len(ss) == 0 {
		return
	}
	lo := ss[0].Paddr
	for _, s := range ss[1:] {
		lo = min(lo, s.Paddr)
	}
	for _, s := range ss {
		s.Paddr = s.Paddr - lo + addr
	}
}

// Size returns the number of bytes Flatten writes.
func (ss Sections) Size() uint64 {
	if len(ss) == 0 {
		return 0
	}
	lo, end := ss[0].Paddr, uint64(0)
	for _, s := range ss {
		lo = min(lo, s.Paddr)
		end = max(end, s.Paddr+uint64(len(s.Data)))
	}
	return end - lo
}

// Flatten flattens sections by writting their data to the provided io.Writer
// according to the Paddr field (before writting the sections are sorted using
// SortPaddr method). The gaps between sections are filled using the pad byte.
func (ss Sections) Flatten(w io.Writer, pad byte) (n int, err error) {
	if len(ss) == 0 {
		return
	}
	ss.SortByPaddr()
	pa := ss[0].Paddr
	n, err = w.Write(ss[0].Data)
	if err != nil {
		return
	}
	pa += uint64(n)
	var padCache []byte
	prev := ss[0]
	for _, s := range ss[1:] {
		if s.Paddr < pa {
			err = fmt.Errorf("flatten: %s overlaps with %s", s.Name, prev.Name)
			return
		}
		m := int(s.Paddr - pa)
		if m != 0 {
			m, err = w.Write(padBytes(&padCache, m, pad))
			n += m
			if err != nil {
				return
			}
			pa += uint64(m)
		}
		m, err = w.Write(s.Data)
		n += m
		if err != nil {
			return
		}
		pa += uint64(m)
		prev = s
	}
	return
}

// padBytes returns the slice containing n byte equal b.
func padBytes(cache *[]byte, n int, b byte) []byte {
	if len(*cache) < n {
		*cache = make([]byte, n)
		for i := range *cache {
			(*cache)[i] = b
		}
	}
	return (*cache)[:n]
}
