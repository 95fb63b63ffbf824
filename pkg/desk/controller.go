// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

// Package desk drives a Linak BLE desk controller to exact heights.
//
// The protocol offers no acknowledgments, no stop precision and no
// obstruction signal, so "command completion" is an externally observed
// convergence condition: the controller re-sends movement frames on a
// fixed cadence, watches the telemetry feed, stops early to let
// momentum cover the remainder, and treats a frozen height as an
// obstruction.
package desk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/deskctl/deskctl/pkg/linak"
)

// Direction of travel, derived from target versus current height.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

func (d Direction) command() linak.Command {
	if d == DirectionDown {
		return linak.CmdDown
	}
	return linak.CmdUp
}

// Tuning holds the empirically fixed control constants. The stopping
// distances are asymmetric because gravity assists downward momentum
// and resists upward.
type Tuning struct {
	Cadence            time.Duration // movement frame re-send interval; the desk auto-stops ~1s after the last frame
	SettleDelay        time.Duration // mechanical settling time after STOP
	StallWindow        time.Duration // height frozen this long while driving = obstruction
	SampleTimeout      time.Duration // no telemetry at all this long = feed is dead
	RecallTimeout      time.Duration // ceiling for a preset recall to finish
	DeadBandMM         int           // |target-current| below this = already there
	StopDistanceUpMM   int
	StopDistanceDownMM int
}

// DefaultTuning returns the constants measured against real hardware.
func DefaultTuning() Tuning {
	return Tuning{
		Cadence:            100 * time.Millisecond,
		SettleDelay:        300 * time.Millisecond,
		StallWindow:        500 * time.Millisecond,
		SampleTimeout:      2 * time.Second,
		RecallTimeout:      30 * time.Second,
		DeadBandMM:         2,
		StopDistanceUpMM:   8,
		StopDistanceDownMM: 10,
	}
}

func (t Tuning) stopDistance(dir Direction) int {
	if dir == DirectionDown {
		return t.StopDistanceDownMM
	}
	return t.StopDistanceUpMM
}

// Move is the terminal report of one positioning attempt. ErrorMM is
// signed (final minus target); under early stopping it is typically
// 0-2mm. A successful Move means the drive loop terminated by reaching
// stopping distance — the caller judges whether the residual error is
// acceptable.
type Move struct {
	TargetMM int
	FinalMM  int
	ErrorMM  int
	Clamped  bool // MoveBy target was clamped to the travel limits
}

// Desk is one exclusive session with a desk. Only one Desk may hold the
// command characteristic at a time, and within a Desk only one move may
// be in flight: overlapping requests fail fast with ErrBusy.
type Desk struct {
	conn   Conn
	stream *Stream
	tuning Tuning
	log    *slog.Logger
	unsub  func() error

	moving atomic.Bool

	mu      sync.Mutex
	presets map[int]int // session-local mirror, device stays the source of truth
}

// Option configures a Desk during Open.
type Option func(*Desk)

// WithTuning overrides the control constants.
func WithTuning(t Tuning) Option {
	return func(d *Desk) { d.tuning = t }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Desk) { d.log = log }
}

// Open connects to a desk by advertised name, wakes it, subscribes to
// height notifications and primes the telemetry stream with an initial
// read. The caller owns the session until Close.
func Open(ctx context.Context, t Transport, nameFilter string, opts ...Option) (*Desk, error) {
	conn, err := t.Connect(ctx, nameFilter)
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}

	d := &Desk{
		conn:    conn,
		tuning:  DefaultTuning(),
		log:     slog.Default(),
		presets: make(map[int]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.stream = NewStream(d.log)

	// Sleep mode is assumed, not detected: the wakeup frame is cheap
	// and movement commands are ignored without it.
	if err := d.write(ctx, linak.CmdWakeup); err != nil {
		_ = conn.Disconnect()
		return nil, err
	}

	unsub, err := conn.Subscribe(linak.UUIDTelemetry, d.stream.Ingest)
	if err != nil {
		_ = conn.Disconnect()
		return nil, &TransportError{Op: "subscribe telemetry", Err: err}
	}
	d.unsub = unsub

	if _, err := d.readHeight(ctx); err != nil {
		_ = unsub()
		_ = conn.Disconnect()
		return nil, err
	}

	return d, nil
}

// Close cancels the telemetry subscription and disconnects.
func (d *Desk) Close() error {
	if d.unsub != nil {
		_ = d.unsub()
	}
	if err := d.conn.Disconnect(); err != nil {
		return &TransportError{Op: "disconnect", Err: err}
	}
	return nil
}

// Stream exposes the live telemetry feed, e.g. for monitoring UIs.
func (d *Desk) Stream() *Stream {
	return d.stream
}

// Height reads the current height directly from the device.
func (d *Desk) Height(ctx context.Context) (int, error) {
	return d.readHeight(ctx)
}

// Stop sends a single STOP immediately, bypassing any drive loop. Safe
// to call while a move is in progress.
func (d *Desk) Stop(ctx context.Context) error {
	return d.write(ctx, linak.CmdStop)
}

// MoveTo drives the desk to an absolute height in millimeters.
func (d *Desk) MoveTo(ctx context.Context, targetMM int) (Move, error) {
	if targetMM < linak.MinHeightMM || targetMM > linak.MaxHeightMM {
		return Move{}, fmt.Errorf("%w: %dmm not in [%d, %d]",
			ErrOutOfRange, targetMM, linak.MinHeightMM, linak.MaxHeightMM)
	}
	if !d.moving.CompareAndSwap(false, true) {
		return Move{}, ErrBusy
	}
	defer d.moving.Store(false)

	return d.moveTo(ctx, targetMM, false)
}

// MoveBy drives the desk by a signed delta in millimeters. A target
// beyond the travel limits is clamped and reported via Move.Clamped.
func (d *Desk) MoveBy(ctx context.Context, deltaMM int) (Move, error) {
	if !d.moving.CompareAndSwap(false, true) {
		return Move{}, ErrBusy
	}
	defer d.moving.Store(false)

	current, err := d.currentHeight(ctx)
	if err != nil {
		return Move{}, err
	}

	want := current + deltaMM
	target := clampHeight(want)
	return d.moveTo(ctx, target, target != want)
}

// moveTo runs the drive loop. The caller holds the moving flag.
//
// States: waking -> driving -> stopping -> settling -> done/obstructed,
// every transition bounded by a timeout. Cancellation wins over the
// arrival and stall checks and degrades to an immediate STOP.
func (d *Desk) moveTo(ctx context.Context, target int, clamped bool) (Move, error) {
	current, err := d.currentHeight(ctx)
	if err != nil {
		return Move{}, err
	}

	// Dead-band: within jitter of the target, moving would only hunt.
	if abs(target-current) < d.tuning.DeadBandMM {
		return Move{TargetMM: target, FinalMM: current, ErrorMM: current - target, Clamped: clamped}, nil
	}

	if err := d.write(ctx, linak.CmdWakeup); err != nil {
		return Move{}, err
	}

	dir := directionTo(current, target)
	cmd := dir.command()
	stopAt := d.tuning.stopDistance(dir)

	d.log.Debug("drive loop started",
		"from", current, "to", target, "direction", dir.String(), "stop_distance", stopAt)

	obstructed := false
	stallRef := current
	lastProgress := time.Now()
	var lastSampleAt time.Time

	ticker := time.NewTicker(d.tuning.Cadence)
	defer ticker.Stop()

drive:
	for {
		if err := ctx.Err(); err != nil {
			d.stopBestEffort()
			return Move{}, err
		}

		// The actuator auto-stops without a fresh frame, so the
		// cadence is the normal operating mode, not a retry.
		if err := d.write(ctx, cmd); err != nil {
			return Move{}, err
		}

		sample, ok := d.stream.Latest()
		if !ok || time.Since(sample.At) >= d.tuning.SampleTimeout {
			sample, err = d.stream.Wait(ctx, d.tuning.SampleTimeout)
			if err != nil {
				d.stopBestEffort()
				return Move{}, err
			}
		}
		h := sample.HeightMM

		var remaining int
		if dir == DirectionUp {
			remaining = target - h
		} else {
			remaining = h - target
		}
		if remaining <= stopAt {
			// Early stop: momentum covers the remainder.
			break drive
		}

		// A stall is frozen height on a live feed. Only fresh samples
		// feed the detector; an entirely silent feed is a timeout, not
		// an obstruction, and is caught by the staleness check above.
		if sample.At != lastSampleAt {
			lastSampleAt = sample.At
			if abs(h-stallRef) >= 1 {
				stallRef = h
				lastProgress = time.Now()
			} else if time.Since(lastProgress) >= d.tuning.StallWindow {
				obstructed = true
				break drive
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			d.stopBestEffort()
			return Move{}, ctx.Err()
		}
	}

	if err := d.write(ctx, linak.CmdStop); err != nil {
		return Move{}, err
	}

	if err := sleepCtx(ctx, d.tuning.SettleDelay); err != nil {
		return Move{}, err
	}

	final, err := d.readHeight(ctx)
	if err != nil {
		// The read is a convenience; the last notification is just as
		// authoritative once the desk has settled.
		sample, ok := d.stream.Latest()
		if !ok {
			return Move{}, err
		}
		final = sample.HeightMM
	}

	move := Move{TargetMM: target, FinalMM: final, ErrorMM: final - target, Clamped: clamped}

	if obstructed {
		d.log.Debug("move aborted by obstruction", "height", final, "target", target)
		return move, &ObstructionError{HeightMM: final}
	}

	d.log.Debug("move complete", "height", final, "error", move.ErrorMM)
	return move, nil
}

// currentHeight prefers the live feed and falls back to a direct read
// before the first notification has arrived.
func (d *Desk) currentHeight(ctx context.Context) (int, error) {
	if sample, ok := d.stream.Latest(); ok {
		return sample.HeightMM, nil
	}
	return d.readHeight(ctx)
}

func (d *Desk) readHeight(ctx context.Context) (int, error) {
	frame, err := d.conn.Read(ctx, linak.UUIDTelemetry)
	if err != nil {
		return 0, &TransportError{Op: "read height", Err: err}
	}
	tel, err := linak.DecodeTelemetry(frame)
	if err != nil {
		return 0, err
	}
	d.stream.Ingest(frame)
	return tel.HeightMM, nil
}

func (d *Desk) write(ctx context.Context, cmd linak.Command) error {
	if err := d.conn.Write(ctx, linak.UUIDCommand, cmd.Encode()); err != nil {
		return &TransportError{Op: "write " + cmd.String(), Err: err}
	}
	return nil
}

// stopBestEffort sends STOP on a fresh context, for paths where the
// caller's context is already dead.
func (d *Desk) stopBestEffort() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.conn.Write(ctx, linak.UUIDCommand, linak.CmdStop.Encode()); err != nil {
		d.log.Warn("best-effort stop failed", "err", err)
	}
}

func directionTo(current, target int) Direction {
	switch {
	case target > current:
		return DirectionUp
	case target < current:
		return DirectionDown
	default:
		return DirectionNone
	}
}

func clampHeight(mm int) int {
	if mm < linak.MinHeightMM {
		return linak.MinHeightMM
	}
	if mm > linak.MaxHeightMM {
		return linak.MaxHeightMM
	}
	return mm
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
