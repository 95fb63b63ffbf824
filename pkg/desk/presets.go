// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package desk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deskctl/deskctl/pkg/linak"
)

// Memory presets live on the device: reading a slot's characteristic
// starts a move to the stored height, writing it stores the current
// height. The device never reports when a recall move completes, so
// arrival is observed the same way as for a normal move: by watching
// the height settle.

// recallStableSamples is how many consecutive unchanged heights count
// as "the desk has stopped moving".
const recallStableSamples = 3

// RecallPreset triggers the move to a stored slot (1-4) and waits for
// it to finish. Returns the settled height. The recall drives the desk,
// so it holds the same exclusive move slot as MoveTo.
func (d *Desk) RecallPreset(ctx context.Context, slot int) (int, error) {
	uuid := linak.MemoryUUID(slot)
	if uuid == "" {
		return 0, fmt.Errorf("%w: got %d", ErrBadSlot, slot)
	}
	if !d.moving.CompareAndSwap(false, true) {
		return 0, ErrBusy
	}
	defer d.moving.Store(false)

	// Wake first: a sleeping controller ignores the recall trigger
	// just like it ignores movement frames.
	if err := d.write(ctx, linak.CmdWakeup); err != nil {
		return 0, err
	}

	if _, err := d.conn.Read(ctx, uuid); err != nil {
		return 0, &TransportError{Op: fmt.Sprintf("recall preset %d", slot), Err: err}
	}

	final, err := d.waitSettled(ctx)
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	d.presets[slot] = final
	d.mu.Unlock()

	d.log.Debug("preset recalled", "slot", slot, "height", final)
	return final, nil
}

// SavePreset stores the desk's current height in a slot (1-4) and
// returns the height that was saved. The device stores its own
// position; the write payload is a dummy byte it ignores.
func (d *Desk) SavePreset(ctx context.Context, slot int) (int, error) {
	uuid := linak.MemoryUUID(slot)
	if uuid == "" {
		return 0, fmt.Errorf("%w: got %d", ErrBadSlot, slot)
	}

	height, err := d.readHeight(ctx)
	if err != nil {
		return 0, err
	}

	if err := d.conn.Write(ctx, uuid, []byte{0x00}); err != nil {
		return 0, &TransportError{Op: fmt.Sprintf("save preset %d", slot), Err: err}
	}

	d.mu.Lock()
	d.presets[slot] = height
	d.mu.Unlock()

	d.log.Debug("preset saved", "slot", slot, "height", height)
	return height, nil
}

// KnownPresets returns the session-local mirror of slot heights
// observed so far. It avoids redundant device reads but is never more
// authoritative than the device itself.
func (d *Desk) KnownPresets() map[int]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[int]int, len(d.presets))
	for slot, h := range d.presets {
		out[slot] = h
	}
	return out
}

// waitSettled waits until the height has held still across a few
// consecutive samples, bounded by RecallTimeout. Used for moves the
// desk performs autonomously.
func (d *Desk) waitSettled(ctx context.Context) (int, error) {
	deadline := time.Now().Add(d.tuning.RecallTimeout)

	// The desk takes a beat to start moving; don't mistake the
	// pre-move standstill for arrival.
	if err := sleepCtx(ctx, 5*d.tuning.Cadence); err != nil {
		return 0, err
	}

	last := -1
	stable := 0
	for {
		if time.Now().After(deadline) {
			return 0, ErrTelemetryTimeout
		}

		sample, err := d.stream.Wait(ctx, d.tuning.SampleTimeout)
		if err != nil {
			// The feed goes quiet once the desk stops moving; a
			// standing-still desk simply has nothing to report.
			if errors.Is(err, ErrTelemetryTimeout) && last >= 0 {
				return last, nil
			}
			return 0, err
		}

		if sample.HeightMM == last && !sample.Moving() {
			stable++
			if stable >= recallStableSamples-1 {
				return sample.HeightMM, nil
			}
		} else {
			stable = 0
			last = sample.HeightMM
		}
	}
}
