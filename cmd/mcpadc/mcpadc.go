// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.

//go:build linux

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/labfruits/mcp3208"
	"github.com/labfruits/mcp3208/spi"
	"github.com/spf13/cobra"
	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/gpio"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "mcpadc",
	Short: "mcpadc is a utility to sample channels of an MCP3208 ADC",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var chanNames = map[string]mcp3208.Channel{
	"0":    mcp3208.Single0,
	"1":    mcp3208.Single1,
	"2":    mcp3208.Single2,
	"3":    mcp3208.Single3,
	"4":    mcp3208.Single4,
	"5":    mcp3208.Single5,
	"6":    mcp3208.Single6,
	"7":    mcp3208.Single7,
	"D0PN": mcp3208.Diff0PN,
	"D0NP": mcp3208.Diff0NP,
	"D1PN": mcp3208.Diff1PN,
	"D1NP": mcp3208.Diff1NP,
	"D2PN": mcp3208.Diff2PN,
	"D2NP": mcp3208.Diff2NP,
	"D3PN": mcp3208.Diff3PN,
	"D3NP": mcp3208.Diff3NP,
}

func parseChannel(arg string) (mcp3208.Channel, error) {
	if ch, ok := chanNames[strings.ToUpper(arg)]; ok {
		return ch, nil
	}
	return 0, fmt.Errorf("can't parse channel '%s'", arg)
}

func parseChannels(args []string) ([]mcp3208.Channel, error) {
	cc := []mcp3208.Channel(nil)
	for _, arg := range args {
		ch, err := parseChannel(arg)
		if err != nil {
			return nil, err
		}
		cc = append(cc, ch)
	}
	return cc, nil
}

// newADC wires up the ADC as laid out in the configuration.
// The returned closer releases the GPIO lines.
func newADC() (*mcp3208.MCP3208, func(), error) {
	cfg := loadConfig()
	err := gpio.Open()
	if err != nil {
		return nil, nil, err
	}
	s := spi.New(
		cfg.MustGet("tclk").Duration(),
		cfg.MustGet("sclk").Int(),
		cfg.MustGet("mosi").Int(),
		cfg.MustGet("miso").Int())
	cs := gpio.NewPin(cfg.MustGet("cs").Int())
	cs.High()
	cs.Output()
	adc := mcp3208.New(uint16(cfg.MustGet("vref").Int()), cs, s)
	closer := func() {
		s.Close()
		cs.Input()
		gpio.Close()
	}
	return adc, closer, nil
}

// The default pin assignments can be altered via environment (MCPADC_),
// or a mcpadc.json config file.
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
		env.New(env.WithEnvPrefix("MCPADC_")),
		config.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "mcpadc.json", json.NewDecoder()))
	cfg = cfg.GetConfig("", config.WithMust)
	return cfg
}
