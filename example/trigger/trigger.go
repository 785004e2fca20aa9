// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/labfruits/mcp3208"
	"github.com/labfruits/mcp3208/spi"
	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/config/pflag"
	"github.com/warthog618/gpio"
)

// This example waits for the signal on channel 0 to cross half the reference
// voltage, then captures a one second burst at 256Hz, starting with the
// sample that crossed the threshold. It blocks indefinitely if the threshold
// is never crossed.
func main() {
	cfg := loadConfig()
	err := gpio.Open()
	if err != nil {
		panic(err)
	}
	defer gpio.Close()
	s := spi.New(
		cfg.MustGet("tclk").Duration(),
		cfg.MustGet("sclk").Int(),
		cfg.MustGet("mosi").Int(),
		cfg.MustGet("miso").Int())
	defer s.Close()
	cs := gpio.NewPin(cfg.MustGet("cs").Int())
	cs.High()
	cs.Output()
	defer cs.Input()
	adc := mcp3208.New(uint16(cfg.MustGet("vref").Int()), cs, s)
	adc.Calibrate(mcp3208.Single0)
	threshold := adc.ToDigital(adc.Vref() / 2)
	data := make([]uint16, 256)
	mcp3208.ReadNIfLimited(adc, mcp3208.Single0, data, 256,
		func(v uint16) bool { return v > threshold })
	for i, d := range data {
		fmt.Printf("%3d: %dmV\n", i, adc.ToAnalog(d))
	}
}

func loadConfig() *config.Config {
	defaultConfig := map[string]interface{}{
		"tclk": "500ns",
		"vref": 3300,
		"sclk": gpio.GPIO24,
		"cs":   gpio.GPIO17,
		"mosi": gpio.GPIO27,
		"miso": gpio.GPIO22,
	}
	def := dict.New(dict.WithMap(defaultConfig))
	cfg := config.New(
		pflag.New(pflag.WithFlags(
			[]pflag.Flag{{Short: 'c', Name: "config-file"}})),
		env.New(env.WithEnvPrefix("MCP3208_")),
		config.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "mcp3208.json", json.NewDecoder()))
	cfg = cfg.GetConfig("", config.WithMust)
	return cfg
}
