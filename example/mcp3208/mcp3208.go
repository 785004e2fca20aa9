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

// This example reads all eight single ended channels from an MCP3208
// connected to the RPI by four data lines - CS, SCLK, MOSI, and MISO. The
// default pin assignments are defined in loadConfig, but can be altered via
// configuration (env, flag or config file).
// All pins other than MISO are outputs so do not run this example on a board
// where those pins serve other purposes.
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
	for ch := mcp3208.Single0; ch <= mcp3208.Single7; ch++ {
		d := adc.Read(ch)
		fmt.Printf("ch%d=0x%03x (%dmV)\n", ch&0x07, d, adc.ToAnalog(d))
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
