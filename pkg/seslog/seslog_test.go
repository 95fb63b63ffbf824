// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package seslog

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/deskctl/deskctl/pkg/desk"
	"github.com/deskctl/deskctl/pkg/linak"
)

func TestWriteThenReadBack(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	want := []Record{
		{UnixMicro: 1700000000000000, HeightMM: 680, Speed: 0},
		{UnixMicro: 1700000000100000, HeightMM: 695, Speed: 150},
		{UnixMicro: 1700000000200000, HeightMM: 710, Speed: -32768},
	}
	for _, rec := range want {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	got, err := NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadEmptyStream(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	if _, err := r.Read(); err != io.EOF {
		t.Errorf("Read on empty stream = %v, want io.EOF", err)
	}
}

func TestFromSampleRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC)
	sample := desk.Sample{
		Telemetry: linak.Telemetry{HeightMM: 1042, Speed: -85},
		At:        at,
	}

	rec := FromSample(sample)
	if rec.HeightMM != 1042 || rec.Speed != -85 {
		t.Errorf("FromSample = %+v", rec)
	}
	if !rec.Time().Equal(at) {
		t.Errorf("Time() = %v, want %v", rec.Time(), at)
	}
}
