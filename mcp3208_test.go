// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Test suite for the mcp3208 driver against a simulated bus.
package mcp3208_test

import (
	"testing"
	"time"

	"github.com/labfruits/mcp3208"
	"github.com/stretchr/testify/assert"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	now    time.Duration
	delays []time.Duration
}

func (c *fakeClock) Now() time.Duration {
	return c.now
}

func (c *fakeClock) Delay(d time.Duration) {
	c.delays = append(c.delays, d)
	c.now += d
}

func (c *fakeClock) advance(d time.Duration) {
	c.now += d
}

// fakeCS records chip select line writes. The line is active low.
type fakeCS struct {
	level   bool
	asserts int
}

func (p *fakeCS) High() {
	p.level = true
}

func (p *fakeCS) Low() {
	p.level = false
	p.asserts++
}

// fakeBus plays scripted response words, records the command words clocked
// out, and advances the clock by a fixed latency per exchange. Responses
// beyond the script repeat the last scripted word.
type fakeBus struct {
	clk       *fakeClock
	latency   time.Duration
	cs        *fakeCS
	rsp       []uint16
	tx        []uint16
	badSelect bool
	n         int
}

func (b *fakeBus) Exchange(tx, rx []byte) {
	b.tx = append(b.tx, uint16(tx[0])<<8|uint16(tx[1]))
	if b.cs != nil && b.cs.level {
		b.badSelect = true
	}
	var v uint16
	if b.n < len(b.rsp) {
		v = b.rsp[b.n]
	} else if len(b.rsp) > 0 {
		v = b.rsp[len(b.rsp)-1]
	}
	b.n++
	rx[0] = byte(v >> 8)
	rx[1] = byte(v)
	if b.clk != nil {
		b.clk.advance(b.latency)
	}
}

func newFixture(vref uint16, latency time.Duration, rsp ...uint16) (*mcp3208.MCP3208, *fakeBus, *fakeClock) {
	clk := &fakeClock{}
	cs := &fakeCS{level: true}
	b := &fakeBus{clk: clk, latency: latency, cs: cs, rsp: rsp}
	adc := mcp3208.New(vref, cs, b, mcp3208.WithClock(clk))
	return adc, b, clk
}

func TestRead(t *testing.T) {
	adc, b, _ := newFixture(3300, 0, 0xf7ff)
	d := adc.Read(mcp3208.Single3)
	assert.Equal(t, uint16(0x7ff), d, "leading response bits not masked")
	assert.Equal(t, 1, b.n)
	assert.Equal(t, 1, b.cs.asserts)
	assert.True(t, b.cs.level, "chip select not released")
	assert.False(t, b.badSelect, "exchange without chip select")
}

func TestReadCommand(t *testing.T) {
	patterns := []struct {
		name  string
		ch    mcp3208.Channel
		singl uint16
		index uint16
	}{
		{"single0", mcp3208.Single0, 1, 0},
		{"single1", mcp3208.Single1, 1, 1},
		{"single2", mcp3208.Single2, 1, 2},
		{"single3", mcp3208.Single3, 1, 3},
		{"single4", mcp3208.Single4, 1, 4},
		{"single5", mcp3208.Single5, 1, 5},
		{"single6", mcp3208.Single6, 1, 6},
		{"single7", mcp3208.Single7, 1, 7},
		{"diff0pn", mcp3208.Diff0PN, 0, 0},
		{"diff0np", mcp3208.Diff0NP, 0, 1},
		{"diff1pn", mcp3208.Diff1PN, 0, 2},
		{"diff1np", mcp3208.Diff1NP, 0, 3},
		{"diff2pn", mcp3208.Diff2PN, 0, 4},
		{"diff2np", mcp3208.Diff2NP, 0, 5},
		{"diff3pn", mcp3208.Diff3PN, 0, 6},
		{"diff3np", mcp3208.Diff3NP, 0, 7},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			adc, b, _ := newFixture(3300, 0)
			adc.Read(p.ch)
			cmd := b.tx[0]
			assert.NotZero(t, cmd&0x0400, "missing start bit")
			assert.Equal(t, p.singl, cmd>>9&0x01, "mode bit")
			assert.Equal(t, p.index, cmd>>6&0x07, "channel index")
			assert.Zero(t, cmd&0xf83f, "stray bits outside the command field")
		}
		t.Run(p.name, tf)
	}
}

func TestCalibrate(t *testing.T) {
	adc, b, clk := newFixture(3300, 25*time.Microsecond)
	adc.Calibrate(mcp3208.Single0)
	assert.Equal(t, 64, b.n)
	// calibrated estimate visible through the rate limiter...
	mcp3208.ReadNLimited(adc, mcp3208.Single0, make([]uint16, 3), 10000)
	assert.Equal(t, []time.Duration{75 * time.Microsecond, 75 * time.Microsecond}, clk.delays)
}

func TestCalibrateRoundsUp(t *testing.T) {
	adc, _, clk := newFixture(3300, 10500*time.Nanosecond)
	adc.Calibrate(mcp3208.Single0)
	// 10.5µs becomes 11µs, so a 20µs period leaves 9µs of delay.
	mcp3208.ReadNLimited(adc, mcp3208.Single0, make([]uint16, 2), 50000)
	assert.Equal(t, []time.Duration{9 * time.Microsecond}, clk.delays)
}

func TestTestSplSpeed(t *testing.T) {
	adc, b, _ := newFixture(3300, 25*time.Microsecond)
	adc.Calibrate(mcp3208.Single0)
	avg := adc.TestSplSpeed(mcp3208.Single0)
	assert.Equal(t, 25*time.Microsecond, avg)
	assert.Equal(t, 128, b.n)
}

func TestTestSplSpeedN(t *testing.T) {
	adc, b, _ := newFixture(3300, 40*time.Microsecond)
	avg := adc.TestSplSpeedN(mcp3208.Single2, 10)
	assert.Equal(t, 40*time.Microsecond, avg)
	assert.Equal(t, 10, b.n)

	assert.Zero(t, adc.TestSplSpeedN(mcp3208.Single2, 0))
	assert.Equal(t, 10, b.n, "zero count performed transfers")
}

func TestTestSplSpeedLimited(t *testing.T) {
	adc, _, _ := newFixture(3300, 25*time.Microsecond)
	adc.Calibrate(mcp3208.Single0)
	avg := adc.TestSplSpeedLimited(mcp3208.Single0, 64, 10000)
	// 100µs period, minus the missing delay before the first sample.
	assert.InDelta(t, float64(100*time.Microsecond), float64(avg),
		float64(2*time.Microsecond))
}

func TestToAnalog(t *testing.T) {
	adc, _, _ := newFixture(3300, 0)
	assert.Equal(t, uint16(1650), adc.ToAnalog(2048))
	assert.Equal(t, uint16(3299), adc.ToAnalog(4095))
	assert.Equal(t, uint16(0), adc.ToAnalog(0))
	// rounds to nearest, not down
	assert.Equal(t, uint16(1), adc.ToAnalog(1))
	assert.Equal(t, uint16(3292), adc.ToAnalog(4086))
}

func TestToDigital(t *testing.T) {
	adc, _, _ := newFixture(3300, 0)
	assert.Equal(t, uint16(2048), adc.ToDigital(1650))
	assert.Equal(t, uint16(0), adc.ToDigital(0))
	assert.Equal(t, uint16(4096), adc.ToDigital(3300))
	assert.Equal(t, uint16(4086), adc.ToDigital(3292))
}

func TestConversionRoundTrip(t *testing.T) {
	adc, _, _ := newFixture(3300, 0)
	for x := uint32(0); x < 4096; x++ {
		raw := uint16(x)
		rt := adc.ToDigital(adc.ToAnalog(raw))
		assert.InDelta(t, float64(raw), float64(rt), 1, "raw %d", raw)
		if x*3300%4096 == 0 {
			assert.Equal(t, raw, rt, "raw %d divides exactly", raw)
		}
	}
}

func TestVref(t *testing.T) {
	adc, _, _ := newFixture(5000, 0)
	assert.Equal(t, uint16(5000), adc.Vref())
}

func TestAnalogRes(t *testing.T) {
	adc, _, _ := newFixture(3300, 0)
	assert.Equal(t, uint16(805), adc.AnalogRes())
	adc, _, _ = newFixture(5000, 0)
	assert.Equal(t, uint16(1220), adc.AnalogRes())
}
