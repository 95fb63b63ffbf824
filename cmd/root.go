// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskctl/deskctl/pkg/desk"
)

var (
	deskName    string
	configPath  string
	verbose     bool
	scanTimeout time.Duration

	cfg Config
)

var rootCmd = &cobra.Command{
	Use:   "deskctl",
	Short: "Control a Linak/IKEA Idåsen standing desk over BLE",
	Long: `Deskctl - drive a Linak BLE standing desk from the command line.

The desk is located by scanning for its advertised name (default "Desk").
Heights are millimeters within the physical travel of 620-1270mm; the up
and down commands take inches to match the desk's paper manual.

Movement commands exit with code 2 when the desk hits an obstruction,
so scripts can tell a blocked move from a connection failure (exit 1).

A config file (default ~/.config/deskctl/config.yaml) can set the desk
name, scan timeout, serve address and control tuning. Flags win over
the file.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return loadConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&deskName, "desk-name", "n", "Desk", "Advertised name (substring match) of the desk")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.config/deskctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().DurationVar(&scanTimeout, "scan-timeout", 10*time.Second, "How long to scan for the desk")
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func loadConfig(cmd *cobra.Command) error {
	loaded, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	// Flags the user set explicitly beat the file.
	if cmd.Flags().Changed("desk-name") || cfg.DeskName == "" {
		cfg.DeskName = deskName
	}
	if cmd.Flags().Changed("scan-timeout") || cfg.ScanTimeoutSec <= 0 {
		cfg.ScanTimeoutSec = int(scanTimeout / time.Second)
	}
	return nil
}

// Execute runs the root command and maps errors to exit codes:
// 0 success, 2 obstruction, 1 everything else.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var obstruction *desk.ObstructionError
		if errors.As(err, &obstruction) {
			fmt.Fprintf(os.Stderr, "Obstruction: %v\n", err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
