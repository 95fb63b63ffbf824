// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deskctl/deskctl/pkg/ble"
	"github.com/deskctl/deskctl/pkg/desk"
)

// newTransport builds the BLE transport from the effective config.
func newTransport() *ble.Transport {
	return ble.New(
		ble.WithScanTimeout(cfg.ScanTimeout()),
	)
}

// openDesk connects to the configured desk. The caller must Close it.
func openDesk(ctx context.Context) (*desk.Desk, error) {
	d, err := desk.Open(ctx, newTransport(), cfg.DeskName,
		desk.WithTuning(cfg.DeskTuning()),
	)
	if err != nil {
		return nil, fmt.Errorf("open desk %q: %w", cfg.DeskName, err)
	}
	return d, nil
}

// signalContext returns a context cancelled by Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// printHeight renders a height the way the desk manual talks about it:
// millimeters first, inches for the Americans.
func printHeight(prefix string, mm int) {
	fmt.Printf("%s%dmm (%.1f\")\n", prefix, mm, inches(mm))
}

func inches(mm int) float64 {
	return float64(mm) / 25.4
}
