// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package desk

import (
	"context"
	"fmt"
)

// Transport locates a desk and establishes a GATT session with it.
// The real implementation lives in pkg/ble; tests supply scripted fakes.
type Transport interface {
	// Connect discovers a device whose advertised name contains
	// nameFilter (case-insensitive) and opens a session to it.
	Connect(ctx context.Context, nameFilter string) (Conn, error)
}

// Conn is one live session with a desk. The desk's last-command-wins
// semantics make concurrent uncoordinated writers dangerous, so a Conn
// must only ever be driven by a single Desk.
type Conn interface {
	// Write writes payload to the characteristic with the given UUID.
	Write(ctx context.Context, characteristicUUID string, payload []byte) error

	// Read reads the current value of a characteristic. Note that on
	// this device, reading a memory characteristic has the side effect
	// of starting a move.
	Read(ctx context.Context, characteristicUUID string) ([]byte, error)

	// Subscribe registers fn for notifications on a characteristic.
	// fn runs on the transport's delivery context, concurrently with
	// whatever the caller is doing. The returned function cancels the
	// subscription.
	Subscribe(characteristicUUID string, fn func(payload []byte)) (func() error, error)

	// Disconnect tears down the session.
	Disconnect() error
}

// TransportError wraps a BLE-level failure. It is fatal to the
// operation in progress: the protocol offers nothing that a retry
// during a disconnect could recover.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
