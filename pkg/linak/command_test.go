// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package linak

import (
	"bytes"
	"testing"
)

func TestCommandEncode(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want []byte
	}{
		{name: "up", cmd: CmdUp, want: []byte{0x47, 0x00}},
		{name: "down", cmd: CmdDown, want: []byte{0x46, 0x00}},
		{name: "stop", cmd: CmdStop, want: []byte{0xFF, 0x00}},
		{name: "wakeup", cmd: CmdWakeup, want: []byte{0xFE, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cmd.Encode()
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = % 02X, want % 02X", got, tt.want)
			}
			// Encoding is pure: a second call yields identical bytes.
			if again := tt.cmd.Encode(); !bytes.Equal(again, got) {
				t.Errorf("Encode() not deterministic: % 02X then % 02X", got, again)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{CmdUp, "UP"},
		{CmdDown, "DOWN"},
		{CmdStop, "STOP"},
		{CmdWakeup, "WAKEUP"},
		{Command(0x1234), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("Command(0x%04X).String() = %q, want %q", uint16(tt.cmd), got, tt.want)
		}
	}
}

func TestMemoryUUID(t *testing.T) {
	tests := []struct {
		slot int
		want string
	}{
		{1, UUIDMemory1},
		{2, UUIDMemory2},
		{3, UUIDMemory3},
		{4, UUIDMemory4},
		{0, ""},
		{5, ""},
		{-1, ""},
	}

	for _, tt := range tests {
		if got := MemoryUUID(tt.slot); got != tt.want {
			t.Errorf("MemoryUUID(%d) = %q, want %q", tt.slot, got, tt.want)
		}
	}
}
