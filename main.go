// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors
//
// Deskctl - Linak/IKEA Idåsen standing desk controller
//
// A CLI tool for driving a Linak BLE standing desk: absolute and
// relative moves, memory presets, live monitoring and telemetry
// streaming.

package main

import (
	"os"

	"github.com/deskctl/deskctl/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
