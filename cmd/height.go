// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"github.com/spf13/cobra"
)

var heightCmd = &cobra.Command{
	Use:   "height",
	Short: "Show the current desk height",
	Args:  cobra.NoArgs,
	RunE:  runHeight,
}

func init() {
	rootCmd.AddCommand(heightCmd)
}

func runHeight(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	d, err := openDesk(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	mm, err := d.Height(ctx)
	if err != nil {
		return err
	}
	printHeight("Height: ", mm)
	return nil
}
