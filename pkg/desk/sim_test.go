// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package desk

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/deskctl/deskctl/pkg/linak"
)

// simTransport hands out a single scripted connection.
type simTransport struct {
	conn *simConn
	err  error
}

func (t *simTransport) Connect(_ context.Context, _ string) (Conn, error) {
	if t.err != nil {
		return nil, t.err
	}
	t.conn.start()
	return t.conn, nil
}

type recordedWrite struct {
	uuid    string
	payload []byte
}

// simConn models the physical desk closely enough to exercise the
// controller: constant drive speed, momentum after STOP, the ~1s
// auto-stop when command frames stop arriving, optional jam height,
// and autonomous preset-recall moves. Telemetry notifications are
// emitted on a fixed timer, like the real controller's notify feed.
type simConn struct {
	mu sync.Mutex

	height     float64
	speedMMs   float64
	momentumMM float64
	autoStop   time.Duration
	step       time.Duration

	dir          int // -1 down, 0 idle, +1 up
	lastCmd      time.Time
	obstructAt   int // jam height, 0 = none
	recallTarget int // autonomous move target, 0 = none
	stored       map[int]int

	notify func([]byte)
	mute   bool

	writes    []recordedWrite
	failAfter int // fail writes once this many have been recorded, 0 = never

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

func newSimConn(heightMM int) *simConn {
	return &simConn{
		height:     float64(heightMM),
		speedMMs:   200,
		momentumMM: 9,
		autoStop:   time.Second,
		step:       5 * time.Millisecond,
		stored:     make(map[int]int),
		done:       make(chan struct{}),
	}
}

// testTuning shrinks the control constants so the suite runs in
// milliseconds. Ratios between them match the real defaults.
func testTuning() Tuning {
	return Tuning{
		Cadence:            10 * time.Millisecond,
		SettleDelay:        30 * time.Millisecond,
		StallWindow:        60 * time.Millisecond,
		SampleTimeout:      250 * time.Millisecond,
		RecallTimeout:      3 * time.Second,
		DeadBandMM:         2,
		StopDistanceUpMM:   8,
		StopDistanceDownMM: 10,
	}
}

func (c *simConn) start() {
	c.startOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(c.step)
			defer ticker.Stop()
			for {
				select {
				case <-c.done:
					return
				case <-ticker.C:
					c.stepOnce()
				}
			}
		}()
	})
}

func (c *simConn) stepOnce() {
	c.mu.Lock()

	dt := c.step.Seconds()
	before := c.height

	if c.dir != 0 {
		if time.Since(c.lastCmd) > c.autoStop {
			c.dir = 0
		} else {
			c.height = c.constrain(c.height+float64(c.dir)*c.speedMMs*dt, c.dir)
		}
	}

	if c.recallTarget != 0 {
		diff := float64(c.recallTarget) - c.height
		stepMM := c.speedMMs * dt
		if math.Abs(diff) <= stepMM {
			c.height = float64(c.recallTarget)
			c.recallTarget = 0
		} else {
			c.height += math.Copysign(stepMM, diff)
		}
	}

	var speed int16
	switch {
	case c.height > before:
		speed = 100
	case c.height < before:
		speed = -100
	}

	frame, _ := linak.EncodeTelemetry(linak.Telemetry{
		HeightMM: int(math.Round(c.height)),
		Speed:    speed,
	})
	notify := c.notify
	mute := c.mute
	c.mu.Unlock()

	if notify != nil && !mute {
		notify(frame)
	}
}

// constrain applies the jam height and the travel limits for movement
// in the given direction.
func (c *simConn) constrain(nh float64, dir int) float64 {
	if c.obstructAt != 0 {
		if dir > 0 && nh > float64(c.obstructAt) {
			return float64(c.obstructAt)
		}
		if dir < 0 && nh < float64(c.obstructAt) {
			return float64(c.obstructAt)
		}
	}
	if nh < linak.MinHeightMM {
		return linak.MinHeightMM
	}
	if nh > linak.MaxHeightMM {
		return linak.MaxHeightMM
	}
	return nh
}

func (c *simConn) Write(_ context.Context, uuid string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failAfter > 0 && len(c.writes) >= c.failAfter {
		return fmt.Errorf("simulated link failure")
	}
	c.writes = append(c.writes, recordedWrite{uuid: uuid, payload: append([]byte{}, payload...)})

	if uuid == linak.UUIDCommand && len(payload) == linak.CommandFrameSize {
		switch linak.Command(binary.LittleEndian.Uint16(payload)) {
		case linak.CmdUp:
			c.dir = 1
			c.lastCmd = time.Now()
		case linak.CmdDown:
			c.dir = -1
			c.lastCmd = time.Now()
		case linak.CmdStop:
			if c.dir != 0 {
				c.height = c.constrain(c.height+float64(c.dir)*c.momentumMM, c.dir)
				c.dir = 0
			}
			c.recallTarget = 0
		case linak.CmdWakeup:
			// the simulated desk never sleeps
		}
		return nil
	}

	if slot := memorySlot(uuid); slot != 0 {
		c.stored[slot] = int(math.Round(c.height))
	}
	return nil
}

func (c *simConn) Read(_ context.Context, uuid string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if uuid == linak.UUIDTelemetry {
		frame, err := linak.EncodeTelemetry(linak.Telemetry{HeightMM: int(math.Round(c.height))})
		return frame, err
	}

	if slot := memorySlot(uuid); slot != 0 {
		if stored, ok := c.stored[slot]; ok {
			c.recallTarget = stored
		}
		return []byte{0x01}, nil
	}
	return nil, fmt.Errorf("unknown characteristic %s", uuid)
}

func (c *simConn) Subscribe(uuid string, fn func([]byte)) (func() error, error) {
	if uuid != linak.UUIDTelemetry {
		return nil, fmt.Errorf("unknown characteristic %s", uuid)
	}
	c.mu.Lock()
	c.notify = fn
	c.mu.Unlock()
	return func() error {
		c.mu.Lock()
		c.notify = nil
		c.mu.Unlock()
		return nil
	}, nil
}

func (c *simConn) Disconnect() error {
	c.stopOnce.Do(func() { close(c.done) })
	return nil
}

func memorySlot(uuid string) int {
	for slot := 1; slot <= linak.PresetSlots; slot++ {
		if strings.EqualFold(uuid, linak.MemoryUUID(slot)) {
			return slot
		}
	}
	return 0
}

// --- inspection helpers ---

func (c *simConn) resetWrites() {
	c.mu.Lock()
	c.writes = nil
	c.mu.Unlock()
}

func (c *simConn) commandWrites(cmd linak.Command) int {
	want := cmd.Encode()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.writes {
		if w.uuid == linak.UUIDCommand && string(w.payload) == string(want) {
			n++
		}
	}
	return n
}

func (c *simConn) totalWrites() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *simConn) setObstructAt(heightMM int) {
	c.mu.Lock()
	c.obstructAt = heightMM
	c.mu.Unlock()
}

func (c *simConn) setMute(mute bool) {
	c.mu.Lock()
	c.mute = mute
	c.mu.Unlock()
}

func (c *simConn) setFailAfter(n int) {
	c.mu.Lock()
	c.failAfter = n
	c.mu.Unlock()
}

func (c *simConn) heightNow() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(math.Round(c.height))
}
