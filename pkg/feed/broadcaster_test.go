// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package feed

import (
	"testing"
	"time"

	"github.com/deskctl/deskctl/pkg/desk"
	"github.com/deskctl/deskctl/pkg/linak"
)

func sampleAt(heightMM int) desk.Sample {
	return desk.Sample{
		Telemetry: linak.Telemetry{HeightMM: heightMM},
		At:        time.Now(),
	}
}

func TestBroadcastToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()

	ch1, unsub1 := b.Subscribe()
	defer unsub1()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Publish(sampleAt(900))

	for i, ch := range []<-chan desk.Sample{ch1, ch2} {
		select {
		case got := <-ch:
			if got.HeightMM != 900 {
				t.Errorf("subscriber %d got %dmm, want 900", i, got.HeightMM)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster()

	_, unsubSlow := b.Subscribe() // never read
	defer unsubSlow()
	fast, unsubFast := b.Subscribe()
	defer unsubFast()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			b.Publish(sampleAt(700 + i))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// The fast subscriber keeps the most recent samples its buffer
	// could hold; it must have received something.
	select {
	case <-fast:
	case <-time.After(time.Second):
		t.Fatal("fast subscriber received nothing")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()

	ch, unsub := b.Subscribe()
	unsub()
	unsub() // idempotent

	if _, ok := <-ch; ok {
		t.Error("channel delivered a value after unsubscribe")
	}

	// Publishing after unsubscribe must not panic on the closed channel.
	b.Publish(sampleAt(800))
}
