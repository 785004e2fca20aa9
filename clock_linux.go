// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package mcp3208

import (
	"time"

	"golang.org/x/sys/unix"
)

// Now reads CLOCK_MONOTONIC directly, sidestepping the wall clock.
func (c sysclock) Now() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// cannot fail on a supported kernel
		panic(err)
	}
	return time.Duration(ts.Nano())
}
