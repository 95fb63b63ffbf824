// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

// Package ble implements the desk transport on top of the operating
// system's Bluetooth stack via tinygo.org/x/bluetooth. It knows nothing
// about the Linak protocol beyond which characteristics to expose;
// frame contents are pkg/linak's business.
package ble

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/deskctl/deskctl/pkg/desk"
)

// DefaultScanTimeout bounds device discovery.
const DefaultScanTimeout = 10 * time.Second

// Transport discovers desks and opens GATT sessions. It implements
// desk.Transport.
type Transport struct {
	adapter     *bluetooth.Adapter
	scanTimeout time.Duration
	log         *slog.Logger

	enableOnce sync.Once
	enableErr  error
}

// Option configures a Transport.
type Option func(*Transport)

// WithScanTimeout overrides the discovery timeout.
func WithScanTimeout(d time.Duration) Option {
	return func(t *Transport) { t.scanTimeout = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(t *Transport) { t.log = log }
}

// New creates a Transport on the default adapter.
func New(opts ...Option) *Transport {
	t := &Transport{
		adapter:     bluetooth.DefaultAdapter,
		scanTimeout: DefaultScanTimeout,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) enable() error {
	t.enableOnce.Do(func() {
		t.enableErr = t.adapter.Enable()
	})
	return t.enableErr
}

// Connect scans for a device whose advertised name contains nameFilter
// (case-insensitive), connects, and resolves every characteristic of
// the vendor services.
func (t *Transport) Connect(ctx context.Context, nameFilter string) (desk.Conn, error) {
	if err := t.enable(); err != nil {
		return nil, fmt.Errorf("enable adapter: %w", err)
	}

	result, err := t.findByName(ctx, nameFilter)
	if err != nil {
		return nil, err
	}
	t.log.Debug("desk found", "name", result.LocalName(), "address", result.Address.String())

	device, err := t.adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", result.Address.String(), err)
	}

	chars, err := resolveCharacteristics(device)
	if err != nil {
		_ = device.Disconnect()
		return nil, err
	}

	return &conn{device: device, chars: chars, log: t.log}, nil
}

// findByName runs a scan until a name match appears, the scan timeout
// elapses, or ctx is cancelled.
func (t *Transport) findByName(ctx context.Context, nameFilter string) (bluetooth.ScanResult, error) {
	var (
		mu    sync.Mutex
		found bluetooth.ScanResult
		ok    bool
	)

	scanDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(t.scanTimeout):
		case <-scanDone:
		}
		_ = t.adapter.StopScan()
	}()

	err := t.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		if !nameMatches(result.LocalName(), nameFilter) {
			return
		}
		mu.Lock()
		found = result
		ok = true
		mu.Unlock()
		_ = adapter.StopScan()
	})
	close(scanDone)
	if err != nil {
		return bluetooth.ScanResult{}, fmt.Errorf("scan: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return bluetooth.ScanResult{}, err
	}

	mu.Lock()
	defer mu.Unlock()
	if !ok {
		return bluetooth.ScanResult{}, fmt.Errorf("no device matching %q found; is the desk powered on?", nameFilter)
	}
	return found, nil
}

// resolveCharacteristics walks every service and indexes its
// characteristics by UUID. The desk spreads command, telemetry and
// memory characteristics over several vendor services, so the whole
// tree is discovered once up front.
func resolveCharacteristics(device bluetooth.Device) (map[string]bluetooth.DeviceCharacteristic, error) {
	services, err := device.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("discover services: %w", err)
	}

	chars := make(map[string]bluetooth.DeviceCharacteristic)
	for _, service := range services {
		discovered, err := service.DiscoverCharacteristics(nil)
		if err != nil {
			return nil, fmt.Errorf("discover characteristics of %s: %w", service.UUID().String(), err)
		}
		for _, c := range discovered {
			chars[strings.ToLower(c.UUID().String())] = c
		}
	}
	return chars, nil
}

func nameMatches(localName, filter string) bool {
	if localName == "" {
		return false
	}
	return strings.Contains(strings.ToLower(localName), strings.ToLower(filter))
}

// conn is one live GATT session. tinygo's GATT calls block without
// context support, so cancellation is honored between operations, not
// inside them.
type conn struct {
	device bluetooth.Device
	chars  map[string]bluetooth.DeviceCharacteristic
	log    *slog.Logger
}

func (c *conn) characteristic(uuid string) (bluetooth.DeviceCharacteristic, error) {
	char, ok := c.chars[strings.ToLower(uuid)]
	if !ok {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("characteristic %s not present on device", uuid)
	}
	return char, nil
}

func (c *conn) Write(ctx context.Context, uuid string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	char, err := c.characteristic(uuid)
	if err != nil {
		return err
	}
	if _, err := char.WriteWithoutResponse(payload); err != nil {
		return fmt.Errorf("write %s: %w", uuid, err)
	}
	return nil
}

func (c *conn) Read(ctx context.Context, uuid string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	char, err := c.characteristic(uuid)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 32)
	n, err := char.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uuid, err)
	}
	return buf[:n], nil
}

func (c *conn) Subscribe(uuid string, fn func([]byte)) (func() error, error) {
	char, err := c.characteristic(uuid)
	if err != nil {
		return nil, err
	}
	if err := char.EnableNotifications(fn); err != nil {
		return nil, fmt.Errorf("enable notifications on %s: %w", uuid, err)
	}
	unsub := func() error {
		return char.EnableNotifications(nil)
	}
	return unsub, nil
}

func (c *conn) Disconnect() error {
	return c.device.Disconnect()
}
