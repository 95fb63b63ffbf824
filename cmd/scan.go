// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for BLE devices and highlight desks",
	Long: `Scan for nearby BLE devices and list them strongest signal first.

Devices that look like Linak desks (a "desk" in the name or the Linak
vendor service in the advertisement) are marked. Use the advertised
name with --desk-name to pick a specific desk.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("Scanning for BLE devices (%s)...\n\n", cfg.ScanTimeout())

	devices, err := newTransport().Scan(ctx, cfg.ScanTimeout())
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		return nil
	}

	fmt.Printf("%-24s %-20s %6s\n", "NAME", "ADDRESS", "RSSI")
	desks := 0
	for _, dev := range devices {
		name := dev.Name
		if name == "" {
			name = "(no name)"
		}
		marker := ""
		if dev.IsDesk {
			marker = "  <- desk"
			desks++
		}
		fmt.Printf("%-24s %-20s %4ddB%s\n", name, dev.Address, dev.RSSI, marker)
	}

	if desks == 0 {
		fmt.Println("\nNo desks found. Make sure your desk is powered on.")
	} else {
		fmt.Printf("\nFound %d desk(s).\n", desks)
	}
	return nil
}
