// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

// Package linak implements the byte-level BLE protocol spoken by Linak
// desk controllers (IKEA Idåsen and compatible frames).
//
// The protocol is tiny: movement is driven by fixed 2-byte command frames
// written to the command characteristic, and position feedback arrives as
// 4-byte height/speed frames on the telemetry characteristic. This package
// holds all wire-format knowledge; it performs no I/O.
//
// Protocol reverse-engineered from:
//   - https://github.com/anson-vandoren/linak-desk-spec
//   - https://github.com/j5lien/esphome-idasen-desk-controller
package linak

// GATT characteristic UUIDs (vendor-defined, base 99faXXXX-338a-1024-8a49-009c0215f78a)
const (
	UUIDControlService = "99fa0001-338a-1024-8a49-009c0215f78a" // advertised; useful as a desk marker in scans

	UUIDCommand   = "99fa0002-338a-1024-8a49-009c0215f78a" // write, write-without-response
	UUIDTelemetry = "99fa0021-338a-1024-8a49-009c0215f78a" // read, notify

	// Memory preset slots 1-4. Reading triggers movement to the stored
	// height; writing stores the desk's current height.
	UUIDMemory1 = "99fa0031-338a-1024-8a49-009c0215f78a"
	UUIDMemory2 = "99fa0032-338a-1024-8a49-009c0215f78a"
	UUIDMemory3 = "99fa0033-338a-1024-8a49-009c0215f78a"
	UUIDMemory4 = "99fa0034-338a-1024-8a49-009c0215f78a"

	// ServiceUUIDPrefix identifies Linak vendor services during scans.
	ServiceUUIDPrefix = "99fa"
)

// Height domain in millimeters. The raw telemetry field is tenths of a
// millimeter above the base height.
const (
	BaseHeightMM = 620
	MinHeightMM  = 620
	MaxHeightMM  = 1270
)

// Frame sizes
const (
	CommandFrameSize   = 2
	TelemetryFrameSize = 4
)

// PresetSlots is the number of memory positions the controller stores.
const PresetSlots = 4

// MemoryUUID returns the characteristic UUID for preset slot 1-4,
// or "" if the slot is out of range.
func MemoryUUID(slot int) string {
	switch slot {
	case 1:
		return UUIDMemory1
	case 2:
		return UUIDMemory2
	case 3:
		return UUIDMemory3
	case 4:
		return UUIDMemory4
	default:
		return ""
	}
}
