// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package ble

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/deskctl/deskctl/pkg/linak"
)

// Device is one discovered BLE peripheral.
type Device struct {
	Name    string
	Address string
	RSSI    int16
	IsDesk  bool
}

// linakControlService advertises on Linak desks and is the reliable
// desk marker when the name is unhelpful.
var linakControlService = mustUUID(linak.UUIDControlService)

func mustUUID(s string) bluetooth.UUID {
	uuid, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return uuid
}

// Scan discovers nearby devices for the given duration and returns
// them strongest signal first, de-duplicated by address.
func (t *Transport) Scan(ctx context.Context, duration time.Duration) ([]Device, error) {
	if err := t.enable(); err != nil {
		return nil, fmt.Errorf("enable adapter: %w", err)
	}

	var (
		mu   sync.Mutex
		seen = make(map[string]Device)
	)

	scanDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(duration):
		case <-scanDone:
		}
		_ = t.adapter.StopScan()
	}()

	err := t.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		addr := result.Address.String()
		dev := Device{
			Name:    result.LocalName(),
			Address: addr,
			RSSI:    result.RSSI,
			IsDesk:  looksLikeDesk(result.LocalName(), result.HasServiceUUID(linakControlService)),
		}
		mu.Lock()
		// Keep the richest record per address; later advertisements
		// sometimes omit the name.
		if prev, ok := seen[addr]; !ok || (prev.Name == "" && dev.Name != "") {
			seen[addr] = dev
		}
		mu.Unlock()
	})
	close(scanDone)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return sortDevices(seen), nil
}

// looksLikeDesk applies the same heuristic the desk ecosystem uses:
// a "desk" name or an advertised Linak vendor service.
func looksLikeDesk(name string, hasLinakService bool) bool {
	if strings.Contains(strings.ToLower(name), "desk") {
		return true
	}
	return hasLinakService
}

func sortDevices(seen map[string]Device) []Device {
	devices := make([]Device, 0, len(seen))
	for _, dev := range seen {
		devices = append(devices, dev)
	}
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].RSSI != devices[j].RSSI {
			return devices[i].RSSI > devices[j].RSSI
		}
		return devices[i].Address < devices[j].Address
	})
	return devices
}
