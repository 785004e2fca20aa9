// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.

//go:build linux

package main

import (
	"errors"
	"fmt"

	"github.com/labfruits/mcp3208"
	"github.com/spf13/cobra"
)

func init() {
	sampleCmd.Flags().UintVarP(&sampleOpts.Num, "num-samples", "n", 64, "number of samples to capture")
	sampleCmd.Flags().Uint32VarP(&sampleOpts.Freq, "frequency", "f", 0, "sample rate limit in Hz (0 for unlimited)")
	sampleCmd.Flags().IntVar(&sampleOpts.Above, "above", -1, "start capturing once a sample exceeds this raw value")
	sampleCmd.Flags().IntVar(&sampleOpts.Below, "below", -1, "start capturing once a sample falls below this raw value")
	sampleCmd.Flags().BoolVar(&sampleOpts.Calibrate, "calibrate", false, "calibrate transfer timing before capturing")
	sampleCmd.Flags().BoolVarP(&sampleOpts.Millivolts, "millivolts", "m", false, "display samples in millivolts")
	sampleCmd.SetHelpTemplate(sampleCmd.HelpTemplate() + extendedSampleHelp)
	rootCmd.AddCommand(sampleCmd)
}

var (
	sampleCmd = &cobra.Command{
		Use:     "sample <channel>",
		Short:   "Capture a burst of samples from a channel",
		Example: "  mcpadc sample 0 -n 256 -f 1000 --above 2048",
		Args:    cobra.ExactArgs(1),
		RunE:    sample,
	}
	sampleOpts = struct {
		Num        uint
		Freq       uint32
		Above      int
		Below      int
		Calibrate  bool
		Millivolts bool
	}{}
)

var extendedSampleHelp = `
The capture is free-running unless a frequency limit is given. With a trigger
(--above or --below) the channel is sampled untriggered until the condition
is met; the triggering sample is the first one captured. If the condition
never occurs the command blocks indefinitely.
`

func sample(cmd *cobra.Command, args []string) error {
	if sampleOpts.Above >= 0 && sampleOpts.Below >= 0 {
		return errors.New("can't trigger on both above and below")
	}
	ch, err := parseChannel(args[0])
	if err != nil {
		return err
	}
	adc, closer, err := newADC()
	if err != nil {
		return err
	}
	defer closer()
	if sampleOpts.Calibrate {
		adc.Calibrate(ch)
	}
	var p mcp3208.Predicate
	switch {
	case sampleOpts.Above >= 0:
		lvl := uint16(sampleOpts.Above)
		p = func(v uint16) bool { return v > lvl }
	case sampleOpts.Below >= 0:
		lvl := uint16(sampleOpts.Below)
		p = func(v uint16) bool { return v < lvl }
	}
	data := make([]uint16, sampleOpts.Num)
	switch {
	case p != nil:
		mcp3208.ReadNIfLimited(adc, ch, data, sampleOpts.Freq, p)
	default:
		mcp3208.ReadNLimited(adc, ch, data, sampleOpts.Freq)
	}
	for i, d := range data {
		if sampleOpts.Millivolts {
			fmt.Printf("%4d: %dmV\n", i, adc.ToAnalog(d))
		} else {
			fmt.Printf("%4d: 0x%03x\n", i, d)
		}
	}
	return nil
}
