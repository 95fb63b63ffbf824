// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package linak

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedFrame is returned when a telemetry frame has the wrong
// length or implies a height outside the desk's physical range.
var ErrMalformedFrame = errors.New("malformed telemetry frame")

// Telemetry is one decoded height/speed report.
//
// Speed is the raw signed value from the controller: positive while
// moving up, negative while moving down, zero at rest. The protocol
// does not define its unit, so no absolute velocity is derived from it.
type Telemetry struct {
	HeightMM int
	Speed    int16
}

// Moving reports whether the desk was in motion when the frame was sent.
func (t Telemetry) Moving() bool {
	return t.Speed != 0
}

// RawToMM converts the raw height field (tenths of a millimeter above
// the base) to absolute millimeters.
func RawToMM(raw uint16) int {
	return int(raw)/10 + BaseHeightMM
}

// MMToRaw converts an absolute height in millimeters to the raw field
// encoding. The caller must ensure mm >= BaseHeightMM.
func MMToRaw(mm int) uint16 {
	return uint16((mm - BaseHeightMM) * 10)
}

// DecodeTelemetry parses a 4-byte telemetry frame: u16 raw height
// followed by i16 speed, both little-endian.
//
// Frames whose decoded height falls outside [MinHeightMM, MaxHeightMM]
// are rejected with ErrMalformedFrame rather than clamped; an impossible
// height means the frame is corrupt or from an unexpected source.
func DecodeTelemetry(frame []byte) (Telemetry, error) {
	if len(frame) != TelemetryFrameSize {
		return Telemetry{}, fmt.Errorf("%w: length %d, want %d", ErrMalformedFrame, len(frame), TelemetryFrameSize)
	}

	raw := binary.LittleEndian.Uint16(frame[0:2])
	speed := int16(binary.LittleEndian.Uint16(frame[2:4]))

	height := RawToMM(raw)
	if height < MinHeightMM || height > MaxHeightMM {
		return Telemetry{}, fmt.Errorf("%w: height %dmm outside [%d, %d]", ErrMalformedFrame, height, MinHeightMM, MaxHeightMM)
	}

	return Telemetry{HeightMM: height, Speed: speed}, nil
}

// EncodeTelemetry builds the wire frame for a telemetry report. It is
// the inverse of DecodeTelemetry and exists for tests and simulators;
// real frames only ever originate from the desk.
func EncodeTelemetry(t Telemetry) ([]byte, error) {
	if t.HeightMM < MinHeightMM || t.HeightMM > MaxHeightMM {
		return nil, fmt.Errorf("%w: height %dmm outside [%d, %d]", ErrMalformedFrame, t.HeightMM, MinHeightMM, MaxHeightMM)
	}

	frame := make([]byte, TelemetryFrameSize)
	binary.LittleEndian.PutUint16(frame[0:2], MMToRaw(t.HeightMM))
	binary.LittleEndian.PutUint16(frame[2:4], uint16(t.Speed))
	return frame, nil
}
