// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

const preamble = `TRST ON;

FREQUENCY 5.00e+006 HZ;

! Write enable
SDR 8 TDI(60);

! Clear software protect
SDR 16 TDI(0080);

! Write disable
SDR 8 TDI(20);

RUNTEST IDLE 0.1 SEC ENDSTATE IDLE;

! Check no software protect
SDR 16 TDI(ffa0) TDO(c6ff) MASK(3900);

`

const eraseBlock = `! Write enable
SDR 8 TDI(60);

! Bulk erase
SDR 8 TDI(e3);

! Write disable
SDR 8 TDI(20);

RUNTEST IDLE 250 SEC ENDSTATE IDLE;

! Check status
SDR 16 TDI(ffa0) TDO(0000) MASK(8000);

`

const postamble = "TRST OFF;\n\n"

func programBlock(addr uint32, hexData string, addrOp string) string {
	return fmt.Sprintf(`! Write enable
SDR 8 TDI(60);

! Program page: 0x%08x
SDR 2080 TDI (%s%s);

! Write disable
SDR 8 TDI(20);

RUNTEST IDLE 0.002 SEC ENDSTATE IDLE;

`, addr, hexData, addrOp)
}

func verifyBlock(addr uint32, hexData string, addrOp string) string {
	ones := strings.Repeat("ff", PageSize)
	return fmt.Sprintf(`! Verify page: 0x%08x
SDR 2080 TDI (%s%s)
TDO (%s00000000)
MASK (%s00000000);
`, addr, ones, addrOp, hexData, ones)
}

func config(mode Mode) Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	return cfg
}

func TestGenerateGolden(t *testing.T) {
	var out strings.Builder
	st, err := Generate(&out, []byte{0x01, 0x02}, 0x800000, config(Erase|Write|Verify))
	if err != nil {
		t.Fatal(err)
	}
	data := strings.Repeat("ff", 254) + "4080"
	want := preamble + eraseBlock +
		programBlock(0x800000, data, "00000140") +
		verifyBlock(0x800000, data, "000001c0") +
		postamble
	if got := out.String(); got != want {
		t.Errorf("Generate output mismatch:\n got:\n%s\nwant:\n%s", got, want)
	}
	if st != (Stats{Pages: 1, Programmed: 1, Verified: 1}) {
		t.Errorf("stats = %+v", st)
	}
}

func TestGenerateWriteVerifyZeroPage(t *testing.T) {
	var out strings.Builder
	_, err := Generate(&out, make([]byte, PageSize), 0, config(Write|Verify))
	if err != nil {
		t.Fatal(err)
	}
	zeros := strings.Repeat("00", PageSize)
	want := preamble +
		programBlock(0, zeros, "00000040") +
		verifyBlock(0, zeros, "000000c0") +
		postamble
	got := out.String()
	if got != want {
		t.Errorf("Generate output mismatch:\n got:\n%s\nwant:\n%s", got, want)
	}
	if n := strings.Count(got, "! Program page"); n != 1 {
		t.Errorf("%d program blocks, want 1", n)
	}
	if n := strings.Count(got, "! Verify page"); n != 1 {
		t.Errorf("%d verify blocks, want 1", n)
	}
	if strings.Contains(got, "Bulk erase") {
		t.Error("bulk erase emitted without Erase mode")
	}
}

func TestGenerateWriteSkip(t *testing.T) {
	erased := bytes.Repeat([]byte{0xff}, PageSize)
	tests := []struct {
		name     string
		mode     Mode
		programs int
		verifies int
		stats    Stats
	}{
		{"erase write", Erase | Write, 0, 0, Stats{Pages: 1, Skipped: 1}},
		{"erase write verify", Erase | Write | Verify, 0, 1, Stats{Pages: 1, Skipped: 1, Verified: 1}},
		{"write", Write, 1, 1, Stats{Pages: 1, Programmed: 1, Verified: 1}},
		{"erase", Erase, 0, 0, Stats{Pages: 1}},
		{"verify", Verify, 0, 1, Stats{Pages: 1, Verified: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			st, err := Generate(&out, erased, 0x800000, config(tt.mode))
			if err != nil {
				t.Fatal(err)
			}
			got := out.String()
			if n := strings.Count(got, "! Program page"); n != tt.programs {
				t.Errorf("%d program blocks, want %d", n, tt.programs)
			}
			if n := strings.Count(got, "! Verify page"); n != tt.verifies {
				t.Errorf("%d verify blocks, want %d", n, tt.verifies)
			}
			if st != tt.stats {
				t.Errorf("stats = %+v, want %+v", st, tt.stats)
			}
			if !strings.HasSuffix(got, postamble) {
				t.Error("missing TRST OFF")
			}
		})
	}
}

func TestGeneratePages(t *testing.T) {
	for _, n := range []int{1, 255, 256, 257, 512, 1000} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			img := make([]byte, n)
			var out strings.Builder
			var calls []int
			cfg := config(Write)
			cfg.Progress = func(done, total int) {
				if total != n {
					t.Errorf("Progress total = %d, want %d", total, n)
				}
				calls = append(calls, done)
			}
			st, err := Generate(&out, img, 0x1000, cfg)
			if err != nil {
				t.Fatal(err)
			}
			pages := (n + PageSize - 1) / PageSize
			if st.Pages != pages || st.Programmed != pages || st.Verified != pages {
				t.Errorf("stats = %+v, want %d pages", st, pages)
			}
			if len(calls) != pages || calls[len(calls)-1] != n {
				t.Errorf("progress calls = %v", calls)
			}
			got := out.String()
			for i := 0; i < pages; i++ {
				comment := fmt.Sprintf("! Program page: 0x%08x\n", 0x1000+i*PageSize)
				if !strings.Contains(got, comment) {
					t.Errorf("missing %q", comment)
				}
			}
			// The last page is padded with erased bytes.
			last := n - (pages-1)*PageSize
			data := strings.Repeat("ff", PageSize-last) + strings.Repeat("00", last)
			if !strings.Contains(got, "TDO ("+data+"00000000)") {
				t.Errorf("last page (%d bytes) not verified as expected", last)
			}
		})
	}
}

func TestGenerateAddressOrder(t *testing.T) {
	img := make([]byte, 3*PageSize)
	img[PageSize] = 0xff // second page stays programmable, not all ones
	var out strings.Builder
	if _, err := Generate(&out, img, 0x800000, config(Erase|Write)); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	prev := -1
	for i := 0; i < 3; i++ {
		j := strings.Index(got, fmt.Sprintf("! Program page: 0x%08x", 0x800000+i*PageSize))
		if j <= prev {
			t.Fatalf("page %d out of order", i)
		}
		prev = j
	}
}

func TestGenerateEmptyImage(t *testing.T) {
	var out strings.Builder
	st, err := Generate(&out, nil, DefaultAddr, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if want := preamble + eraseBlock + postamble; out.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", out.String(), want)
	}
	if st.Pages != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestGenerateChipSize(t *testing.T) {
	tests := []struct {
		chip ChipSize
		wait string
	}{
		{Size4MB, "RUNTEST IDLE 80 SEC ENDSTATE IDLE;"},
		{Size8MB, "RUNTEST IDLE 160 SEC ENDSTATE IDLE;"},
		{Size16MB, "RUNTEST IDLE 250 SEC ENDSTATE IDLE;"},
	}
	for _, tt := range tests {
		t.Run(tt.chip.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Chip = tt.chip
			var out strings.Builder
			if _, err := Generate(&out, []byte{0}, 0, cfg); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out.String(), tt.wait) {
				t.Errorf("missing %q", tt.wait)
			}
		})
	}
}

func TestGenerateUnsupportedChipSize(t *testing.T) {
	for _, chip := range []ChipSize{0, 2 << 20, 32 << 20} {
		cfg := DefaultConfig()
		cfg.Chip = chip
		var out strings.Builder
		_, err := Generate(&out, []byte{1, 2, 3}, 0, cfg)
		if !errors.Is(err, ErrUnsupportedChipSize) {
			t.Errorf("chip %v: err = %v, want ErrUnsupportedChipSize", chip, err)
		}
		var cse *ChipSizeError
		if !errors.As(err, &cse) || cse.Size != chip {
			t.Errorf("chip %v: err = %#v, want *ChipSizeError", chip, err)
		}
		if out.Len() != 0 {
			t.Errorf("chip %v: wrote %q", chip, out.String())
		}
	}
}

func TestGenerateEmptyMode(t *testing.T) {
	var out strings.Builder
	_, err := Generate(&out, []byte{1}, 0, config(0))
	if !errors.Is(err, ErrEmptyMode) {
		t.Errorf("err = %v, want ErrEmptyMode", err)
	}
	if out.Len() != 0 {
		t.Errorf("wrote %q", out.String())
	}
}

func TestGenerateAddressRange(t *testing.T) {
	var out strings.Builder
	if _, err := Generate(&out, make([]byte, PageSize), AddressLimit-PageSize, DefaultConfig()); err != nil {
		t.Fatalf("last page: %v", err)
	}
	out.Reset()
	_, err := Generate(&out, make([]byte, PageSize+1), AddressLimit-PageSize, DefaultConfig())
	var are *AddressRangeError
	if !errors.As(err, &are) {
		t.Fatalf("err = %v, want *AddressRangeError", err)
	}
	if are.Addr != AddressLimit-PageSize || are.Size != PageSize+1 {
		t.Errorf("err = %+v", are)
	}
	if out.Len() != 0 {
		t.Errorf("wrote %d bytes", out.Len())
	}
}

// failWriter fails once more than limit bytes were written.
type failWriter struct {
	buf   bytes.Buffer
	limit int
}

var errSink = errors.New("sink full")

func (w *failWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) > w.limit {
		return 0, errSink
	}
	return w.buf.Write(p)
}

func TestGenerateWriteError(t *testing.T) {
	img := make([]byte, 4*PageSize)
	for _, limit := range []int{0, 10, len(preamble) + 100, len(preamble) + 3000} {
		t.Run(fmt.Sprint(limit), func(t *testing.T) {
			w := &failWriter{limit: limit}
			_, err := Generate(w, img, 0, config(Write|Verify))
			if !errors.Is(err, errSink) {
				t.Fatalf("err = %v, want %v", err, errSink)
			}
			if strings.Contains(w.buf.String(), "TRST OFF") {
				t.Error("TRST OFF written after a write error")
			}
		})
	}
}

func TestGenerateFrequency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = 0
	var out strings.Builder
	if _, err := Generate(&out, []byte{0}, 0, cfg); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "FREQUENCY 5.00e+006 HZ;\n") {
		t.Error("zero frequency does not fall back to the default")
	}
}

func TestGenerateNegativeFrequency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = -DefaultFrequency
	var out strings.Builder
	_, err := Generate(&out, []byte{0}, 0, cfg)
	if !errors.Is(err, ErrBadFrequency) {
		t.Errorf("err = %v, want ErrBadFrequency", err)
	}
	if out.Len() != 0 {
		t.Errorf("wrote %q", out.String())
	}
}
