// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp3208

// Value is the set of element types a capture buffer may hold.
// Raw conversion values are converted to the element type as stored.
type Value interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~float32 | ~float64
}

// Predicate gates the start of a capture on a sampled value.
type Predicate func(uint16) bool

// ReadN fills data with conversions from ch at the maximum achievable rate.
// One value is stored per element - an empty slice performs no transfers.
func ReadN[T Value](a *MCP3208, ch Channel, data []T) {
	readn(a, ch, data, 0, nil)
}

// ReadNLimited fills data with conversions from ch, limited to splFreq
// samples per second.
//
// The limit is software controlled and has low precision. If splFreq is
// beyond the achievable rate no delay is inserted and sampling simply runs
// at the maximum achievable rate. The delay calculation uses the transfer
// time measured by Calibrate, or a conservative default if Calibrate has
// not been run.
func ReadNLimited[T Value](a *MCP3208, ch Channel, data []T, splFreq uint32) {
	readn(a, ch, data, splFreq, nil)
}

// ReadNIf samples ch discarding the values until p returns true, then fills
// data at the maximum achievable rate, starting with the triggering sample
// as data[0].
//
// p is polled continuously with no timeout - a predicate that never becomes
// true blocks the caller indefinitely.
func ReadNIf[T Value](a *MCP3208, ch Channel, data []T, p Predicate) {
	readn(a, ch, data, 0, p)
}

// ReadNIfLimited samples ch discarding the values until p returns true, then
// fills data limited to splFreq samples per second, starting with the
// triggering sample as data[0]. The hunt for the trigger is free-running -
// the rate limit only applies to the capture.
func ReadNIfLimited[T Value](a *MCP3208, ch Channel, data []T, splFreq uint32, p Predicate) {
	readn(a, ch, data, splFreq, p)
}

func readn[T Value](a *MCP3208, ch Channel, data []T, splFreq uint32, p Predicate) {
	a.sample(ch, len(data), splFreq, p, func(i int, v uint16) {
		data[i] = T(v)
	})
}

// sample is the loop primitive behind the ReadN family and the speed tests.
// It performs num transfers on ch, passing each kept value to store, with
// the bus held for the duration of the burst. A nil store discards the
// values. The inter-sample delay is applied between transfers, never before
// the first.
func (a *MCP3208) sample(ch Channel, num int, splFreq uint32, p Predicate, store func(int, uint16)) {
	if num <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	cmd := createCmd(ch)
	delay := a.splDelay(splFreq)
	i := 0
	if p != nil {
		for {
			v := a.transfer(cmd)
			if p(v) {
				if store != nil {
					store(0, v)
				}
				i = 1
				break
			}
		}
	}
	for ; i < num; i++ {
		if i > 0 && delay > 0 {
			a.clk.Delay(delay)
		}
		v := a.transfer(cmd)
		if store != nil {
			store(i, v)
		}
	}
}
