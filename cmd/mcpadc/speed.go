// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.

//go:build linux

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	speedCmd.Flags().IntVarP(&speedOpts.Num, "num-samples", "n", 64, "number of samples to time")
	speedCmd.Flags().Uint32VarP(&speedOpts.Freq, "frequency", "f", 0, "sample rate limit in Hz (0 for unlimited)")
	speedCmd.Flags().BoolVar(&speedOpts.Calibrate, "calibrate", false, "calibrate transfer timing before the test")
	rootCmd.AddCommand(speedCmd)
}

var (
	speedCmd = &cobra.Command{
		Use:     "speed <channel>",
		Short:   "Measure the achievable sampling speed on a channel",
		Example: "  mcpadc speed 0 -n 1000",
		Args:    cobra.ExactArgs(1),
		RunE:    speed,
	}
	speedOpts = struct {
		Num       int
		Freq      uint32
		Calibrate bool
	}{}
)

func speed(cmd *cobra.Command, args []string) error {
	ch, err := parseChannel(args[0])
	if err != nil {
		return err
	}
	adc, closer, err := newADC()
	if err != nil {
		return err
	}
	defer closer()
	if speedOpts.Calibrate {
		adc.Calibrate(ch)
	}
	var avg time.Duration
	if speedOpts.Freq > 0 {
		avg = adc.TestSplSpeedLimited(ch, speedOpts.Num, speedOpts.Freq)
	} else {
		avg = adc.TestSplSpeedN(ch, speedOpts.Num)
	}
	if avg <= 0 {
		return fmt.Errorf("no samples taken")
	}
	fmt.Printf("%v per sample (%d samples/s)\n", avg, time.Second/avg)
	return nil
}
