// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Bin2svf converts a flash image to an SVF file that erases, programs and
// verifies a SPI flash connected to the data register of a JTAG device.
//
// Usage:
//
//	bin2svf [OPTIONS] [IMAGE [SVF]]
//
// The image is read from the standard input and the SVF commands are written
// to the standard output if the file names are omitted or equal "-".
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/embeddedgo/svftools/bin2svf/internal/image"
	"github.com/embeddedgo/svftools/bin2svf/internal/svf"
	"github.com/embeddedgo/svftools/bin2svf/internal/util"
)

func usage() {
	os.Stderr.WriteString(`Usage:
  bin2svf [OPTIONS] [IMAGE [SVF]]

Converts a flash image (raw binary, Intel HEX or ELF) to SVF commands.
IMAGE defaults to the standard input, SVF to the standard output.
Options:
`)
	flag.PrintDefaults()
}

func main() {
	util.FatalErr("glog", logToStderr())

	cfg := svf.DefaultConfig()
	var opts image.Options
	flag.Var(&cfg.Chip, "chip", "flash chip `size`: 4M, 8M or 16M")
	flag.Var(&cfg.Mode, "mode", "comma separated `phases`: erase, write, verify")
	flag.Var(&cfg.Frequency, "freq", "JTAG TCK `frequency`")
	flag.Uint64Var(
		&opts.Addr, "addr", svf.DefaultAddr,
		"flash `address` of the image (moves hex and ELF images if given)",
	)
	flag.StringVar(
		&opts.Format, "format", image.FormatAuto,
		"input `format`: auto, bin, hex or elf",
	)
	flag.BoolVar(&opts.LZSS, "lzss", false, "decompress LZSS packed input")
	flag.StringVar(
		&opts.Include, "inc", "",
		"binary files to be included BIN1:ADDR1[,BIN2:ADDR2[,...]]",
	)
	pad := flag.Uint("pad", 0xff, "pad `byte` used to fill gaps between sections")
	progress := flag.Bool("progress", false, "show progress on stderr")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() > 2 {
		flag.Usage()
		util.Exit(1)
	}
	if *pad > 0xff {
		util.Fatal("bad pad byte: %#x", *pad)
	}
	opts.Pad = byte(*pad)
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "addr" {
			opts.Relocate = true
		}
	})
	if *progress {
		cfg.Progress = func(done, total int) {
			util.Progress("svf ", done, total, 1024, "KiB")
		}
	}

	err := convert(flag.Arg(0), flag.Arg(1), opts, cfg)
	if errors.Is(err, image.ErrEmpty) {
		util.Warn("empty input, nothing to do")
		util.Exit(0)
	}
	util.FatalErr("", err)
	glog.Flush()
}

// logToStderr makes glog log to stderr unless -logtostderr=false is given.
func logToStderr() error {
	return flag.Set("logtostderr", "true")
}

// convert loads the image and writes its SVF programming sequence to the
// file out. The file is removed if the sequence is not complete.
func convert(in, out string, opts image.Options, cfg svf.Config) (err error) {
	img, err := image.Load(in, opts)
	if err != nil {
		return err
	}
	if glog.V(1) {
		glog.Infof(
			"%s: %d bytes at %#x, crc32 %08x",
			img.Name, len(img.Data), img.Addr, crc32.ChecksumIEEE(img.Data),
		)
		glog.Infof("chip %s, mode %s, TCK %s", cfg.Chip, cfg.Mode, cfg.Frequency)
	}

	var w io.Writer = os.Stdout
	if out != "" && out != "-" {
		f, ferr := os.Create(out)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(out)
			}
		}()
		w = f
	}
	bw := bufio.NewWriter(w)
	st, err := svf.Generate(bw, img.Data, uint32(img.Addr), cfg)
	if err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("write svf: %w", err)
	}
	glog.V(1).Infof(
		"%d pages: %d programmed, %d skipped, %d verified",
		st.Pages, st.Programmed, st.Skipped, st.Verified,
	)
	return nil
}
