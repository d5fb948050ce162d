// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/golang/glog"
)

// Prefix is prepended to every diagnostic message.
var Prefix = "bin2svf: "

func Warn(f string, args ...any) {
	fmt.Fprintf(os.Stderr, Prefix+f+"\n", args...)
}

// Fatal prints the message, flushes the logs and exits with status 1.
func Fatal(f string, args ...any) {
	Warn(f, args...)
	Exit(1)
}

// FatalErr prints an error description and exits the program if the
// err != nil.
func FatalErr(what string, err error) {
	if err == nil {
		return
	}
	if what != "" {
		Fatal("%s: %v", what, err)
	}
	Fatal("%v", err)
}

// Exit flushes pending log output and terminates the program. Deferred
// functions are not run.
func Exit(code int) {
	glog.Flush()
	os.Exit(code)
}

var pbuf = make([]byte, 80)

const (
	ptodo = "                         ] "
	pdone = " [========================="
)

// Progress draws a progress bar on stderr: pre, the bar, cur/scale and post.
// The line is terminated once cur reaches max.
func Progress(pre string, cur, max, scale int, post string) {
	if max <= 0 {
		return
	}
	pbuf = pbuf[:0]
	pbuf = append(pbuf, '\r')
	pbuf = append(pbuf, pre...)
	done := 25 * cur / max
	pbuf = append(pbuf, pdone[:2+done]...)
	pbuf = append(pbuf, ptodo[done:]...)
	pbuf = strconv.AppendInt(pbuf, int64(cur/scale), 10)
	pbuf = append(pbuf, '/')
	pbuf = strconv.AppendInt(pbuf, int64((max+scale-1)/scale), 10)
	pbuf = append(pbuf, ' ')
	pbuf = append(pbuf, post...)
	if cur == max {
		pbuf = append(pbuf, '\n')
	}
	os.Stderr.Write(pbuf)
}
