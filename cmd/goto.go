// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var gotoCmd = &cobra.Command{
	Use:   "goto <height_mm>",
	Short: "Move the desk to an absolute height in millimeters",
	Long: `Move the desk to an absolute height.

The height must be within the desk's travel of 620-1270mm. The desk
stops a few millimeters early and lets momentum carry it the rest of
the way, so the final height is typically within 2mm of the target.`,
	Args: cobra.ExactArgs(1),
	RunE: runGoto,
}

func init() {
	rootCmd.AddCommand(gotoCmd)
}

func runGoto(cmd *cobra.Command, args []string) error {
	target, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("height must be an integer millimeter value: %q", args[0])
	}

	ctx, cancel := signalContext()
	defer cancel()

	d, err := openDesk(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	move, err := d.MoveTo(ctx, target)
	if err != nil {
		return err
	}

	printHeight("Moved to ", move.FinalMM)
	if move.ErrorMM != 0 {
		fmt.Printf("Target was %dmm, error %+dmm\n", move.TargetMM, move.ErrorMM)
	}
	return nil
}
