// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var presetCmd = &cobra.Command{
	Use:   "preset [1-4]",
	Short: "Move the desk to a saved memory position (default 1)",
	Long: `Move the desk to one of its four memory positions.

The positions live in the desk itself; recalling one starts a move the
desk performs on its own, and deskctl waits for the height to settle.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreset,
}

var saveCmd = &cobra.Command{
	Use:   "save [1-4]",
	Short: "Save the current height to a memory position (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSave,
}

func init() {
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(saveCmd)
}

func parseSlot(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("preset must be 1-4: %q", args[0])
	}
	return slot, nil
}

func runPreset(cmd *cobra.Command, args []string) error {
	slot, err := parseSlot(args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	d, err := openDesk(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	final, err := d.RecallPreset(ctx, slot)
	if err != nil {
		return err
	}
	printHeight(fmt.Sprintf("Preset %d: ", slot), final)
	return nil
}

func runSave(cmd *cobra.Command, args []string) error {
	slot, err := parseSlot(args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	d, err := openDesk(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	height, err := d.SavePreset(ctx, slot)
	if err != nil {
		return err
	}
	printHeight(fmt.Sprintf("Saved preset %d at ", slot), height)
	return nil
}
