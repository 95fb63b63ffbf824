// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package linak

import "encoding/binary"

// Command is one of the fixed 2-byte frames accepted by the command
// characteristic. Commands carry no arguments and no sequence numbers;
// the controller acts on the last frame received. Repeating a command
// is the normal operating mode, not an error: the desk stops on its own
// roughly one second after the last movement frame.
type Command uint16

const (
	CmdUp     Command = 0x0047
	CmdDown   Command = 0x0046
	CmdStop   Command = 0x00FF
	CmdWakeup Command = 0x00FE
)

// Encode returns the command's wire frame (little-endian, always 2 bytes).
// Total for every Command value.
func (c Command) Encode() []byte {
	frame := make([]byte, CommandFrameSize)
	binary.LittleEndian.PutUint16(frame, uint16(c))
	return frame
}

// String returns the command's protocol name.
func (c Command) String() string {
	switch c {
	case CmdUp:
		return "UP"
	case CmdDown:
		return "DOWN"
	case CmdStop:
		return "STOP"
	case CmdWakeup:
		return "WAKEUP"
	default:
		return "UNKNOWN"
	}
}
