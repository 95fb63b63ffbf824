// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package desk

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned for target heights outside the desk's
	// travel, before any device interaction happens.
	ErrOutOfRange = errors.New("target height outside desk travel")

	// ErrBusy is returned when a move is requested while another move
	// is in progress. Moves never queue.
	ErrBusy = errors.New("another move is in progress")

	// ErrTelemetryTimeout is returned when the desk stops reporting
	// height entirely. Distinct from an obstruction: here the data is
	// absent, not frozen.
	ErrTelemetryTimeout = errors.New("telemetry timed out")

	// ErrBadSlot is returned for preset slots outside 1-4.
	ErrBadSlot = errors.New("preset slot must be 1-4")
)

// ObstructionError reports a stall: movement commands were flowing but
// the height stopped changing before the target was reached. The
// protocol has no explicit obstruction signal, so the frozen height is
// the only evidence available.
type ObstructionError struct {
	HeightMM int
}

func (e *ObstructionError) Error() string {
	return fmt.Sprintf("obstruction detected at %dmm", e.HeightMM)
}
