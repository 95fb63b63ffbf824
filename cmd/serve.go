// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskctl/deskctl/pkg/feed"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream desk telemetry over a websocket",
	Long: `Serve live telemetry as JSON events on ws://<addr>/ws.

Each event carries a timestamp, the height in millimeters and the raw
speed value. Slow clients miss samples rather than stalling the feed.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8372)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.ServeAddr
	}
	if addr == "" {
		addr = ":8372"
	}

	ctx, cancel := signalContext()
	defer cancel()

	d, err := openDesk(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	broadcaster := feed.NewBroadcaster()
	go func() {
		if err := broadcaster.Pump(ctx, d.Stream()); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("telemetry pump stopped", "err", err)
		}
	}()

	server := &http.Server{
		Addr:    addr,
		Handler: feed.NewServer(broadcaster, slog.Default()).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	fmt.Printf("Serving telemetry on ws://%s/ws\n", addr)
	fmt.Println("Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
