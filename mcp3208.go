// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package mcp3208 provides a device driver for the Microchip MCP3208/3204
// family of 12 bit SPI ADCs.
//
// The driver owns the command framing, response decode, transfer timing
// calibration and software sample rate limiting. The bus transport, chip
// select line and clock are capabilities supplied by the caller - the spi
// subpackage provides a bit bashed bus for devices wired to GPIO lines,
// and a *gpio.Pin serves as the chip select.
//
// All calls are synchronous and blocking. A device serializes its own bursts,
// but callers sharing a bus between devices must serialize access themselves.
package mcp3208

import (
	"sync"
	"time"
)

// Channel selects the input multiplexer configuration for a conversion.
//
// The low nibble is the on-wire encoding: one mode bit (single ended = 1,
// differential = 0) followed by a 3 bit input index. Only the 16 defined
// constants are valid channels.
type Channel uint8

// Single ended inputs, measured relative to analog ground.
const (
	Single0 Channel = 0x08
	Single1 Channel = 0x09
	Single2 Channel = 0x0a
	Single3 Channel = 0x0b
	Single4 Channel = 0x0c
	Single5 Channel = 0x0d
	Single6 Channel = 0x0e
	Single7 Channel = 0x0f
)

// Differential input pairs. The suffix gives the polarity, e.g. Diff0PN
// measures input 0 positive against input 1 negative.
const (
	Diff0PN Channel = 0x00
	Diff0NP Channel = 0x01
	Diff1PN Channel = 0x02
	Diff1NP Channel = 0x03
	Diff2PN Channel = 0x04
	Diff2NP Channel = 0x05
	Diff3PN Channel = 0x06
	Diff3NP Channel = 0x07
)

const (
	// resBits is the converter resolution in bits.
	resBits = 12
	// res is the number of conversion levels.
	res = 1 << resBits
	// calibSamples is the number of transfers averaged by Calibrate, and the
	// default sample count for TestSplSpeed.
	calibSamples = 64
	// defaultSplTime is the per-transfer duration assumed until Calibrate
	// is run. Deliberately slow so an uncalibrated device over-delays
	// rather than overruns a requested rate.
	defaultSplTime = 100 * time.Microsecond
)

// Bus performs fixed size full-duplex byte exchanges with the ADC.
// The spi subpackage implements Bus over GPIO lines.
type Bus interface {
	// Exchange clocks out the tx bytes while capturing len(tx) response
	// bytes into rx.
	Exchange(tx, rx []byte)
}

// ChipSelect drives the chip select line of the ADC.
// Satisfied by *gpio.Pin.
type ChipSelect interface {
	High()
	Low()
}

// MCP3208 reads ADC values from a connected MCP3208 or MCP3204.
// The MCP3204 is limited to inputs 0-3.
type MCP3208 struct {
	mu   sync.Mutex
	vref uint16
	cs   ChipSelect
	bus  Bus
	clk  Clock
	// measured per-transfer duration, µs granularity
	splTime time.Duration
}

// Option configures an MCP3208 at construction.
type Option func(*MCP3208)

// WithClock replaces the system clock used for calibration, speed tests and
// rate limiting delays.
func WithClock(c Clock) Option {
	return func(a *MCP3208) {
		a.clk = c
	}
}

// New creates an MCP3208.
//
// vref is the reference voltage in mV. The chip select pin must already be
// configured as an output and held high, and the bus must be in a usable
// state before the device is read.
func New(vref uint16, cs ChipSelect, bus Bus, options ...Option) *MCP3208 {
	a := &MCP3208{
		vref:    vref,
		cs:      cs,
		bus:     bus,
		clk:     sysclock{},
		splTime: defaultSplTime,
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Read returns the value of a single conversion on ch.
func (a *MCP3208) Read(ch Channel) uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transfer(createCmd(ch))
}

// Calibrate measures the transfer timing using the supplied channel and
// stores the average per-transfer duration, rounded up to the microsecond,
// for use by the rate limited read calls.
//
// The transfer is the same size regardless of channel, so the result holds
// for all channels. Calibration is never automatic - re-run it after every
// bus clock change or other event that affects the sampling speed.
func (a *MCP3208) Calibrate(ch Channel) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cmd := createCmd(ch)
	start := a.clk.Now()
	for i := 0; i < calibSamples; i++ {
		a.transfer(cmd)
	}
	elapsed := a.clk.Now() - start
	avg := elapsed / calibSamples
	if r := avg % time.Microsecond; r != 0 {
		avg += time.Microsecond - r
	}
	a.splTime = avg
}

// TestSplSpeed measures the achieved sampling speed over 64 free-running
// samples and returns the average duration of one sample.
func (a *MCP3208) TestSplSpeed(ch Channel) time.Duration {
	return a.TestSplSpeedN(ch, calibSamples)
}

// TestSplSpeedN measures the achieved sampling speed over num free-running
// samples and returns the average duration of one sample.
func (a *MCP3208) TestSplSpeedN(ch Channel, num int) time.Duration {
	return a.testSplSpeed(ch, num, 0)
}

// TestSplSpeedLimited measures the sampling speed achieved over num samples
// with the rate limited to splFreq Hz, and returns the average duration of
// one sample.
func (a *MCP3208) TestSplSpeedLimited(ch Channel, num int, splFreq uint32) time.Duration {
	return a.testSplSpeed(ch, num, splFreq)
}

func (a *MCP3208) testSplSpeed(ch Channel, num int, splFreq uint32) time.Duration {
	if num <= 0 {
		return 0
	}
	start := a.clk.Now()
	a.sample(ch, num, splFreq, nil, nil)
	return (a.clk.Now() - start) / time.Duration(num)
}

// ToAnalog converts a raw conversion value to mV, based on the configured
// reference voltage. The result is rounded to the nearest millivolt, so
// ToDigital(ToAnalog(raw)) lands within one of raw.
func (a *MCP3208) ToAnalog(raw uint16) uint16 {
	return uint16((uint32(raw)*uint32(a.vref) + res/2) / res)
}

// ToDigital converts an analog value in mV to its raw representation, based
// on the configured reference voltage, rounded to the nearest level.
func (a *MCP3208) ToDigital(val uint16) uint16 {
	return uint16((uint32(val)*res + uint32(a.vref)/2) / uint32(a.vref))
}

// Vref returns the configured reference voltage in mV.
func (a *MCP3208) Vref() uint16 {
	return a.vref
}

// AnalogRes returns the analog value of one LSB in µV, based on the
// configured reference voltage.
func (a *MCP3208) AnalogRes() uint16 {
	return uint16(uint32(a.vref) * 1000 / res)
}

// createCmd builds the command word for ch.
//
// The word clocks out as 0b000001cccc000000 - a start bit followed by the
// 4 bit channel config, placed so the low 12 bits of the response hold the
// conversion once the null bit is masked off.
func createCmd(ch Channel) uint16 {
	return (uint16(ch&0x0f) | 0x10) << 6
}

// transfer performs one conversion - a two byte full-duplex exchange framed
// by the chip select.
func (a *MCP3208) transfer(cmd uint16) uint16 {
	tx := [2]byte{byte(cmd >> 8), byte(cmd)}
	var rx [2]byte
	a.cs.Low()
	a.bus.Exchange(tx[:], rx[:])
	a.cs.High()
	return (uint16(rx[0])<<8 | uint16(rx[1])) & (res - 1)
}

// splDelay returns the wait required between samples to limit the rate to
// splFreq Hz, given the calibrated transfer time. A splFreq of 0, or one the
// hardware cannot reach, returns 0 - sampling then runs at the maximum
// achievable rate.
func (a *MCP3208) splDelay(splFreq uint32) time.Duration {
	if splFreq == 0 {
		return 0
	}
	period := time.Duration(1000000/splFreq) * time.Microsecond
	if a.splTime >= period {
		return 0
	}
	return period - a.splTime
}
