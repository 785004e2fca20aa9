// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package spi provides a bit bashed SPI bus, using GPIO lines, suitable as
// the bus transport for the mcp3208 driver.
// It is not related to the SPI device drivers provided by Linux.
package spi

import (
	"sync"
	"time"

	"github.com/warthog618/gpio"
)

// SPI represents a mode 0 SPI bus bashed onto three GPIO lines.
// Chip select is not handled here - the device driver frames each exchange
// with its own chip select line.
// Depending on the device, the two data pins, Mosi and Miso, may be tied and
// connected to a single GPIO pin.
type SPI struct {
	Mu sync.Mutex
	// time between clock edges (i.e. half the cycle time)
	Tclk time.Duration
	Sclk *gpio.Pin
	Mosi *gpio.Pin
	Miso *gpio.Pin
}

// New creates a SPI.
func New(tclk time.Duration, sclk, mosi, miso int) *SPI {
	s := &SPI{
		Tclk: tclk,
		Sclk: gpio.NewPin(sclk),
		Mosi: gpio.NewPin(mosi),
		Miso: gpio.NewPin(miso),
	}
	// hold the bus reset until needed...
	s.Sclk.Low()
	s.Sclk.Output()
	s.Mosi.High()
	s.Mosi.Output()
	s.Miso.Input()
	return s
}

// Close disables the output pins used to drive the bus.
func (s *SPI) Close() {
	s.Mu.Lock()
	s.Sclk.Input()
	s.Mosi.Input()
	s.Mu.Unlock()
}

// Exchange clocks the tx bytes out on Mosi, MSB first, while capturing the
// response bytes from Miso into rx. len(rx) must be at least len(tx).
func (s *SPI) Exchange(tx, rx []byte) {
	s.Mu.Lock()
	for i, b := range tx {
		var d byte
		for bit := 7; bit >= 0; bit-- {
			l := gpio.Low
			if b>>uint(bit)&0x01 == 0x01 {
				l = gpio.High
			}
			d <<= 1
			if s.exchangeBit(l) {
				d |= 0x01
			}
		}
		rx[i] = d
	}
	s.Mu.Unlock()
}

// exchangeBit clocks a bit out on Mosi and in from Miso.
// Assumes the clock starts low and leaves it low.
func (s *SPI) exchangeBit(l gpio.Level) gpio.Level {
	s.Mosi.Write(l)
	time.Sleep(s.Tclk)
	s.Sclk.High() // device reads on the rising edge
	b := s.Miso.Read()
	time.Sleep(s.Tclk)
	s.Sclk.Low() // device writes on the falling edge
	return b
}
