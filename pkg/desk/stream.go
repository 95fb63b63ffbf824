// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package desk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/deskctl/deskctl/pkg/linak"
)

// Sample is one telemetry report with its arrival time.
type Sample struct {
	linak.Telemetry
	At time.Time
}

// Stream turns the asynchronous notification feed into a single
// "latest known sample" cell. Only the newest height matters for
// control decisions, so it is a one-slot broadcast, not a queue: stale
// buffered samples must never block progress, and every waiter observes
// the same arriving sample.
//
// The producer (the transport's notification callback) and any number
// of waiters may run concurrently.
type Stream struct {
	log *slog.Logger

	mu      sync.Mutex
	sample  Sample
	seq     uint64
	arrived chan struct{} // closed and replaced on every accepted frame
}

// NewStream creates an empty stream. log may be nil.
func NewStream(log *slog.Logger) *Stream {
	if log == nil {
		log = slog.Default()
	}
	return &Stream{
		log:     log,
		arrived: make(chan struct{}),
	}
}

// Ingest decodes one raw notification frame and publishes it. Malformed
// frames are dropped and logged as protocol anomalies; they never reach
// a caller and never disturb Latest.
func (s *Stream) Ingest(frame []byte) {
	tel, err := linak.DecodeTelemetry(frame)
	if err != nil {
		s.log.Warn("dropping malformed telemetry frame",
			"frame", fmt.Sprintf("% 02X", frame), "err", err)
		return
	}

	s.mu.Lock()
	s.sample = Sample{Telemetry: tel, At: time.Now()}
	s.seq++
	close(s.arrived)
	s.arrived = make(chan struct{})
	s.mu.Unlock()
}

// Latest returns the most recent sample. ok is false until the first
// decodable frame has arrived.
func (s *Stream) Latest() (sample Sample, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sample, s.seq > 0
}

// Wait blocks until a sample newer than the call arrives, the timeout
// elapses (ErrTelemetryTimeout), or ctx is cancelled.
func (s *Stream) Wait(ctx context.Context, timeout time.Duration) (Sample, error) {
	s.mu.Lock()
	arrived := s.arrived
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-arrived:
		sample, _ := s.Latest()
		return sample, nil
	case <-timer.C:
		return Sample{}, ErrTelemetryTimeout
	case <-ctx.Done():
		return Sample{}, ctx.Err()
	}
}
