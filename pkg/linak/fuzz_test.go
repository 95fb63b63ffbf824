// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package linak

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// newFuzzRng creates a random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := time.Now().UnixNano()
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if s, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			seed = s
		}
	}
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// TestFuzzTelemetryRoundTrip encodes random valid telemetry and verifies the
// decoder reproduces it exactly.
func TestFuzzTelemetryRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		want := Telemetry{
			HeightMM: MinHeightMM + rng.Intn(MaxHeightMM-MinHeightMM+1),
			Speed:    int16(rng.Intn(1<<16) - 1<<15),
		}

		frame, err := EncodeTelemetry(want)
		if err != nil {
			t.Fatalf("round %d: EncodeTelemetry(%+v) failed: %v", i, want, err)
		}
		if len(frame) != TelemetryFrameSize {
			t.Fatalf("round %d: frame length %d", i, len(frame))
		}

		got, err := DecodeTelemetry(frame)
		if err != nil {
			t.Fatalf("round %d: DecodeTelemetry(% 02X) failed: %v", i, frame, err)
		}
		if got != want {
			t.Fatalf("round %d: round trip %+v -> %+v", i, want, got)
		}
	}
}

// TestFuzzDecodeNeverOutOfDomain feeds random 4-byte frames to the decoder and
// verifies every accepted frame decodes to an in-domain height.
func TestFuzzDecodeNeverOutOfDomain(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		frame := make([]byte, TelemetryFrameSize)
		rng.Read(frame)

		tel, err := DecodeTelemetry(frame)
		if err != nil {
			continue
		}
		if tel.HeightMM < MinHeightMM || tel.HeightMM > MaxHeightMM {
			t.Fatalf("round %d: accepted frame % 02X with height %dmm", i, frame, tel.HeightMM)
		}
	}
}

// TestFuzzDecodeRejectsBadLength verifies the decoder never accepts a frame
// whose length differs from the wire format.
func TestFuzzDecodeRejectsBadLength(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		n := rng.Intn(16)
		if n == TelemetryFrameSize {
			continue
		}
		frame := make([]byte, n)
		rng.Read(frame)

		if _, err := DecodeTelemetry(frame); err == nil {
			t.Fatalf("round %d: accepted %d-byte frame % 02X", i, n, frame)
		}
	}
}
