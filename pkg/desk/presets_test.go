// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package desk

import (
	"context"
	"errors"
	"testing"
)

func TestSavePreset(t *testing.T) {
	d, conn := openSimDesk(t, 800)
	conn.resetWrites()

	height, err := d.SavePreset(context.Background(), 2)
	if err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}
	if height != 800 {
		t.Errorf("saved height = %d, want 800", height)
	}

	conn.mu.Lock()
	stored := conn.stored[2]
	conn.mu.Unlock()
	if stored != 800 {
		t.Errorf("device stored %d, want 800", stored)
	}

	if got := d.KnownPresets()[2]; got != 800 {
		t.Errorf("mirror[2] = %d, want 800", got)
	}
}

func TestRecallPreset(t *testing.T) {
	d, conn := openSimDesk(t, 800)

	if _, err := d.SavePreset(context.Background(), 1); err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}
	if _, err := d.MoveTo(context.Background(), 900); err != nil {
		t.Fatalf("MoveTo failed: %v", err)
	}

	height, err := d.RecallPreset(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecallPreset failed: %v", err)
	}
	if diff := abs(height - 800); diff > 2 {
		t.Errorf("recalled height = %dmm, want ~800", height)
	}
	if got := conn.heightNow(); got != height {
		t.Errorf("reported %dmm but desk is at %dmm", height, got)
	}
	if got := d.KnownPresets()[1]; got != height {
		t.Errorf("mirror[1] = %d, want %d", got, height)
	}
}

func TestPresetBadSlot(t *testing.T) {
	d, conn := openSimDesk(t, 800)
	conn.resetWrites()

	for _, slot := range []int{0, 5, -1} {
		if _, err := d.RecallPreset(context.Background(), slot); !errors.Is(err, ErrBadSlot) {
			t.Errorf("RecallPreset(%d) error = %v, want ErrBadSlot", slot, err)
		}
		if _, err := d.SavePreset(context.Background(), slot); !errors.Is(err, ErrBadSlot) {
			t.Errorf("SavePreset(%d) error = %v, want ErrBadSlot", slot, err)
		}
	}
	if got := conn.totalWrites(); got != 0 {
		t.Errorf("writes for invalid slots = %d, want 0", got)
	}
}

func TestKnownPresetsEmpty(t *testing.T) {
	d, _ := openSimDesk(t, 800)
	if got := d.KnownPresets(); len(got) != 0 {
		t.Errorf("KnownPresets() = %v, want empty", got)
	}
}
