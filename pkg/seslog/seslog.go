// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

// Package seslog records desk telemetry sessions as a stream of CBOR
// records. The format is append-friendly and compact enough to leave a
// recorder running for a full workday.
package seslog

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/deskctl/deskctl/pkg/desk"
)

// Record is one telemetry observation. Integer keys keep the encoded
// size down over long sessions.
type Record struct {
	UnixMicro int64 `cbor:"1,keyasint"`
	HeightMM  int   `cbor:"2,keyasint"`
	Speed     int16 `cbor:"3,keyasint"`
}

// FromSample converts a live sample into a record.
func FromSample(s desk.Sample) Record {
	return Record{
		UnixMicro: s.At.UnixMicro(),
		HeightMM:  s.HeightMM,
		Speed:     s.Speed,
	}
}

// Time reconstructs the observation timestamp.
func (r Record) Time() time.Time {
	return time.UnixMicro(r.UnixMicro)
}

// Writer appends records to an underlying stream.
type Writer struct {
	enc *cbor.Encoder
}

// NewWriter creates a session writer on w.
func NewWriter(w io.Writer) (*Writer, error) {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder: %w", err)
	}
	return &Writer{enc: mode.NewEncoder(w)}, nil
}

// Write appends one record.
func (w *Writer) Write(r Record) error {
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

// Reader decodes records from a recorded session.
type Reader struct {
	dec *cbor.Decoder
}

// NewReader creates a session reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Read returns the next record, or io.EOF at end of stream.
func (r *Reader) Read() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// ReadAll drains the stream. Useful for replay tooling and tests.
func (r *Reader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
