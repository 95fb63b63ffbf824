// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"
)

var upCmd = &cobra.Command{
	Use:   "up [inches]",
	Short: "Move the desk up by inches (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNudge(args, +1)
	},
}

var downCmd = &cobra.Command{
	Use:   "down [inches]",
	Short: "Move the desk down by inches (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNudge(args, -1)
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
}

func runNudge(args []string, sign int) error {
	in := 1.0
	if len(args) == 1 {
		parsed, err := strconv.ParseFloat(args[0], 64)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("inches must be a positive number: %q", args[0])
		}
		in = parsed
	}
	deltaMM := sign * int(math.Round(in*25.4))

	ctx, cancel := signalContext()
	defer cancel()

	d, err := openDesk(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	move, err := d.MoveBy(ctx, deltaMM)
	if err != nil {
		return err
	}

	printHeight("Moved to ", move.FinalMM)
	if move.Clamped {
		fmt.Println("Requested height was outside the desk's travel; stopped at the limit.")
	}
	return nil
}
