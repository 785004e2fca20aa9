// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Patrick Rogalla <patrick@labfruits.com>.

//go:build linux

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	readCmd.Flags().BoolVarP(&readOpts.Millivolts, "millivolts", "m", false, "display readings in millivolts")
	readCmd.SetHelpTemplate(readCmd.HelpTemplate() + extendedReadHelp)
	rootCmd.AddCommand(readCmd)
}

var (
	readCmd = &cobra.Command{
		Use:     "read <channel>...",
		Short:   "Read the level of a channel or channels",
		Example: "  mcpadc read 0 3 d0pn",
		Args:    cobra.MinimumNArgs(1),
		RunE:    read,
	}
	readOpts = struct {
		Millivolts bool
	}{}
)

var extendedReadHelp = `
Channels:
  Single ended inputs are identified by number (0-7), differential pairs by
  polarity name (d0pn, d0np, d1pn, d1np, d2pn, d2np, d3pn, d3np).
`

func read(cmd *cobra.Command, args []string) error {
	cc, err := parseChannels(args)
	if err != nil {
		return err
	}
	adc, closer, err := newADC()
	if err != nil {
		return err
	}
	defer closer()
	for i, ch := range cc {
		d := adc.Read(ch)
		if readOpts.Millivolts {
			fmt.Printf("%s: %dmV\n", args[i], adc.ToAnalog(d))
		} else {
			fmt.Printf("%s: 0x%03x\n", args[i], d)
		}
	}
	return nil
}
