// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svf

import (
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Mode selects the phases of a programming run.
type Mode uint8

const (
	Erase Mode = 1 << iota
	Write
	Verify

	modeMask = Erase | Write | Verify
)

var modeNames = [...]struct {
	m    Mode
	name string
}{
	{Erase, "erase"},
	{Write, "write"},
	{Verify, "verify"},
}

// String returns the phases of m as a comma separated list.
func (m Mode) String() string {
	var s []string
	for _, n := range modeNames {
		if m&n.m != 0 {
			s = append(s, n.name)
		}
	}
	if rest := m &^ modeMask; rest != 0 {
		s = append(s, fmt.Sprintf("%#x", uint8(rest)))
	}
	return strings.Join(s, ",")
}

// Set implements flag.Value. It accepts a comma separated list of the
// phase names.
func (m *Mode) Set(s string) error {
	var mode Mode
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		found := false
		for _, n := range modeNames {
			if n.name == f {
				mode |= n.m
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown mode %q", f)
		}
	}
	if mode == 0 {
		return ErrEmptyMode
	}
	*m = mode
	return nil
}

// ChipSize is the capacity of the flash chip in bytes. It only selects how
// long to wait for a bulk erase.
type ChipSize int

const (
	Size4MB  ChipSize = 4 << 20
	Size8MB  ChipSize = 8 << 20
	Size16MB ChipSize = 16 << 20
)

// Bulk erase cycle time of the supported chips.
var eraseTimes = map[ChipSize]time.Duration{
	Size4MB:  80 * time.Second,
	Size8MB:  160 * time.Second,
	Size16MB: 250 * time.Second,
}

// EraseTime returns the time to wait after a bulk erase of the chip.
func (c ChipSize) EraseTime() (time.Duration, error) {
	t, ok := eraseTimes[c]
	if !ok {
		return 0, &ChipSizeError{Size: c}
	}
	return t, nil
}

func (c ChipSize) String() string {
	if c > 0 && c%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", c>>20)
	}
	return fmt.Sprintf("%dB", int(c))
}

// Set implements flag.Value. It accepts the supported sizes written as 4M,
// 4MB or 4MiB (case insensitive).
func (c *ChipSize) Set(s string) error {
	u := strings.ToUpper(strings.TrimSpace(s))
	u = strings.TrimSuffix(strings.TrimSuffix(u, "B"), "I")
	for size := range eraseTimes {
		if u == fmt.Sprintf("%dM", size>>20) {
			*c = size
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedChipSize, s)
}

// Defaults of the programming run.
const (
	DefaultAddr      = 0x800000
	DefaultChip      = Size16MB
	DefaultMode      = Erase | Write
	DefaultFrequency = 5 * physic.MegaHertz
)

// Config describes a programming run.
type Config struct {
	Chip ChipSize
	Mode Mode

	// Frequency is the TCK frequency. Zero means DefaultFrequency, negative
	// values are rejected by Generate.
	Frequency physic.Frequency

	// Progress, if not nil, is called after every page with the number of
	// image bytes done so far and the image length.
	Progress func(done, total int)
}

// DefaultConfig returns the configuration used by bin2svf when no options
// are given.
func DefaultConfig() Config {
	return Config{
		Chip:      DefaultChip,
		Mode:      DefaultMode,
		Frequency: DefaultFrequency,
	}
}
