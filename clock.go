// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp3208

import (
	"time"
)

// Clock provides the elapsed time measurement and busy-wait the driver
// requires for calibration, speed tests and rate limiting.
type Clock interface {
	// Now returns the time elapsed since some fixed point.
	// The reading must be monotonic.
	Now() time.Duration
	// Delay blocks the caller for at least d.
	Delay(d time.Duration)
}

// sysclock is the Clock used unless one is provided with WithClock.
type sysclock struct{}

// Delay busy-waits on the clock. The driver assumes a single execution
// context, so the wait does not yield.
func (c sysclock) Delay(d time.Duration) {
	end := c.Now() + d
	for c.Now() < end {
	}
}
