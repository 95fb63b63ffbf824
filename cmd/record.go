// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskctl/deskctl/pkg/desk"
	"github.com/deskctl/deskctl/pkg/seslog"
)

var recordOutput string

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record desk telemetry to a CBOR session file",
	Long: `Record every telemetry sample to a compact CBOR stream.

The desk only notifies while it is moving, so an idle desk produces no
records. Stop with Ctrl+C; the file is flushed per record and survives
an abrupt exit.`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "", "Output file (default desk-<timestamp>.cbor)")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	path := recordOutput
	if path == "" {
		path = fmt.Sprintf("desk-%s.cbor", time.Now().Format("20060102-150405"))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer, err := seslog.NewWriter(file)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	d, err := openDesk(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	fmt.Printf("Recording to %s\n", path)
	fmt.Println("Press Ctrl+C to stop")

	count := 0
	for {
		sample, err := d.Stream().Wait(ctx, 30*time.Second)
		if err != nil {
			if errors.Is(err, desk.ErrTelemetryTimeout) {
				continue
			}
			if errors.Is(err, context.Canceled) {
				break
			}
			return err
		}
		if err := writer.Write(seslog.FromSample(sample)); err != nil {
			return err
		}
		count++
	}

	fmt.Printf("\nRecorded %d sample(s) to %s\n", count, path)
	return nil
}
