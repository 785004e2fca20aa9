// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package mcp3208

import (
	"time"
)

var epoch = time.Now()

// Now falls back on the runtime's monotonic reading.
func (c sysclock) Now() time.Duration {
	return time.Since(epoch)
}
