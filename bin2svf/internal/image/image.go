// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package image loads a firmware image into one contiguous buffer.
package image

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blacktop/lzss"
)

// MaxSize is the largest image Load accepts.
const MaxSize = 32 << 20

var (
	ErrTooBig = errors.New("input file too big")
	ErrEmpty  = errors.New("empty image")
)

// Input formats.
const (
	FormatAuto = "auto"
	FormatBin  = "bin"
	FormatHex  = "hex"
	FormatELF  = "elf"
)

type Options struct {
	Format string // one of the Format constants, "" means FormatAuto

	// Addr is the flash address of a raw binary image. Hex and ELF images
	// carry their own addresses and are moved to Addr only if Relocate is
	// set.
	Addr     uint64
	Relocate bool

	LZSS    bool   // input is LZSS compressed
	Include string // extra binaries: BIN1:ADDR1[,BIN2:ADDR2[,...]]
	Pad     byte   // fills the gaps between sections
}

// Image is a firmware image placed in the flash address space.
type Image struct {
	Name string
	Addr uint64
	Data []byte
}

// Load reads the named file ("" or "-" for standard input) and the included
// binaries and flattens them into one image.
func Load(name string, opts Options) (*Image, error) {
	raw, err := readFile(name)
	if err != nil {
		return nil, err
	}
	if opts.LZSS && len(raw) != 0 {
		raw = lzss.Decompress(raw)
		if len(raw) > MaxSize {
			return nil, ErrTooBig
		}
	}
	format := opts.Format
	if format == "" || format == FormatAuto {
		format = detect(name, raw)
	}
	var ss Sections
	if len(raw) != 0 {
		switch format {
		case FormatBin:
			ss = Sections{{Name: displayName(name), Paddr: opts.Addr, Data: raw}}
		case FormatHex:
			ss, err = readHex(raw)
		case FormatELF:
			ss, err = readELF(bytes.NewReader(raw))
		default:
			return nil, fmt.Errorf("unknown image format %q", format)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", displayName(name), err)
		}
		if format != FormatBin && opts.Relocate {
			ss.Relocate(opts.Addr)
		}
	}
	if opts.Include != "" {
		inc, err := ReadBins(opts.Include)
		if err != nil {
			return nil, err
		}
		ss = append(ss, inc...)
	}
	if len(ss) == 0 {
		return nil, ErrEmpty
	}
	for _, s := range ss {
		if n := uint64(len(s.Data)); n > 1<<32 || s.Paddr > 1<<32-n {
			return nil, fmt.Errorf(
				"%s: %d bytes at %#x don't fit in 32-bit address space",
				s.Name, len(s.Data), s.Paddr,
			)
		}
	}
	ss.SortByPaddr()
	size := ss.Size()
	if size > MaxSize {
		return nil, ErrTooBig
	}
	var buf bytes.Buffer
	buf.Grow(int(size))
	if _, err := ss.Flatten(&buf, opts.Pad); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, ErrEmpty
	}
	return &Image{Name: displayName(name), Addr: ss[0].Paddr, Data: buf.Bytes()}, nil
}

func readFile(name string) ([]byte, error) {
	if name == "" || name == "-" {
		return readLimited(os.Stdin, MaxSize)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, MaxSize)
}

// readLimited reads r until EOF and fails if there are more than limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooBig
	}
	return data, nil
}

// detect guesses the format from the file name extension and the ELF magic
// number.
func detect(name string, raw []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".hex", ".ihex", ".ihx":
		return FormatHex
	case ".elf":
		return FormatELF
	}
	if bytes.HasPrefix(raw, []byte(elf.ELFMAG)) {
		return FormatELF
	}
	return FormatBin
}

func displayName(name string) string {
	if name == "" || name == "-" {
		return "stdin"
	}
	return name
}
