// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

// Package feed fans live desk telemetry out to multiple consumers:
// the monitor TUI, the websocket server and the session recorder all
// read the same stream without coordinating with each other.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/deskctl/deskctl/pkg/desk"
)

// Broadcaster distributes samples to any number of subscribers.
// Delivery is best-effort: a subscriber that falls behind misses
// samples rather than blocking the feed, which is the right trade for
// telemetry where only the latest value matters.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan desk.Sample]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan desk.Sample]struct{}),
	}
}

// Subscribe returns a channel of samples and a cleanup function. The
// caller must invoke the cleanup when done (e.g. on client disconnect).
func (b *Broadcaster) Subscribe() (<-chan desk.Sample, func()) {
	ch := make(chan desk.Sample, 16)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		if _, ok := b.clients[ch]; ok {
			delete(b.clients, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, unsub
}

// Publish sends a sample to all subscribers without blocking.
func (b *Broadcaster) Publish(sample desk.Sample) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- sample:
		default:
			// subscriber is behind; it only wants the latest anyway
		}
	}
}

// Pump forwards every sample from the desk's telemetry stream until
// ctx is cancelled. Quiet periods (a desk at rest stops notifying) are
// normal and simply produce no traffic.
func (b *Broadcaster) Pump(ctx context.Context, stream *desk.Stream) error {
	for {
		sample, err := stream.Wait(ctx, desk.DefaultTuning().SampleTimeout)
		if err != nil {
			if errors.Is(err, desk.ErrTelemetryTimeout) {
				continue
			}
			return err
		}
		b.Publish(sample)
	}
}
