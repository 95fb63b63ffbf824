// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/deskctl/deskctl/pkg/desk"
	"github.com/deskctl/deskctl/pkg/linak"
)

// maxNudgeInches bounds a single relative move so a confused caller
// cannot sweep the desk through its whole travel in one request.
const maxNudgeInches = 10

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing desk control over stdio",
	Long: `Expose the desk as Model Context Protocol tools on stdio.

Tools: get_height, move_to_height, move_up, move_down, stop_desk,
go_to_preset, save_preset. Each call opens its own connection to the
desk and disconnects when done, so the desk stays usable from its own
panel between calls.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	s := server.NewMCPServer("Standing Desk Controller", rootCmd.Version,
		server.WithInstructions("Control a Linak/IKEA Idåsen standing desk via BLE. "+
			"Tools: get_height (check position), move_up/move_down (relative movement in inches), "+
			"move_to_height (absolute positioning in mm), go_to_preset/save_preset (memory positions 1-4), "+
			"stop_desk (emergency stop)."),
	)

	s.AddTool(mcp.NewTool("get_height",
		mcp.WithDescription("Get the current desk height in millimeters and inches."),
	), handleGetHeight)

	s.AddTool(mcp.NewTool("move_to_height",
		mcp.WithDescription(fmt.Sprintf("Move the desk to a specific height in millimeters (%d-%d).",
			linak.MinHeightMM, linak.MaxHeightMM)),
		mcp.WithNumber("height_mm",
			mcp.Required(),
			mcp.Description("Target height in millimeters."),
		),
	), handleMoveToHeight)

	s.AddTool(mcp.NewTool("move_up",
		mcp.WithDescription("Move the desk up by the given number of inches."),
		mcp.WithNumber("inches",
			mcp.Description("How many inches to move up (default 1, max 10)."),
			mcp.DefaultNumber(1),
		),
	), nudgeHandler(+1, "up"))

	s.AddTool(mcp.NewTool("move_down",
		mcp.WithDescription("Move the desk down by the given number of inches."),
		mcp.WithNumber("inches",
			mcp.Description("How many inches to move down (default 1, max 10)."),
			mcp.DefaultNumber(1),
		),
	), nudgeHandler(-1, "down"))

	s.AddTool(mcp.NewTool("stop_desk",
		mcp.WithDescription("Emergency stop: immediately halt desk movement."),
	), handleStopDesk)

	s.AddTool(mcp.NewTool("go_to_preset",
		mcp.WithDescription("Move the desk to a saved memory preset position (1-4)."),
		mcp.WithNumber("preset",
			mcp.Description("Preset number 1-4 (default 1)."),
			mcp.DefaultNumber(1),
		),
	), handleGoToPreset)

	s.AddTool(mcp.NewTool("save_preset",
		mcp.WithDescription("Save the current desk height to a memory preset (1-4)."),
		mcp.WithNumber("preset",
			mcp.Description("Preset number 1-4 to save to (default 1)."),
			mcp.DefaultNumber(1),
		),
	), handleSavePreset)

	return server.ServeStdio(s)
}

// withDesk opens a fresh desk session for one tool call.
func withDesk(ctx context.Context, fn func(*desk.Desk) (string, error)) (*mcp.CallToolResult, error) {
	d, err := openDesk(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Could not connect to desk: %v. Is it powered on?", err)), nil
	}
	defer d.Close()

	text, err := fn(d)
	if err != nil {
		var obstruction *desk.ObstructionError
		if errors.As(err, &obstruction) {
			return mcp.NewToolResultText(fmt.Sprintf(
				"Collision detected! Stopped at %dmm (%.1f\").",
				obstruction.HeightMM, inches(obstruction.HeightMM))), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func handleGetHeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return withDesk(ctx, func(d *desk.Desk) (string, error) {
		mm, err := d.Height(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Current height: %dmm (%.1f inches)", mm, inches(mm)), nil
	})
}

func handleMoveToHeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireInt("height_mm")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if target < linak.MinHeightMM {
		return mcp.NewToolResultError(fmt.Sprintf("Minimum height is %dmm", linak.MinHeightMM)), nil
	}
	if target > linak.MaxHeightMM {
		return mcp.NewToolResultError(fmt.Sprintf("Maximum height is %dmm", linak.MaxHeightMM)), nil
	}

	return withDesk(ctx, func(d *desk.Desk) (string, error) {
		move, err := d.MoveTo(ctx, target)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved to %dmm (%.1f\"). Target was %dmm, error: %dmm",
			move.FinalMM, inches(move.FinalMM), move.TargetMM, abs(move.ErrorMM)), nil
	})
}

func nudgeHandler(sign int, direction string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := req.GetFloat("inches", 1)
		if in <= 0 {
			return mcp.NewToolResultError("inches must be positive"), nil
		}
		if in > maxNudgeInches {
			return mcp.NewToolResultError(fmt.Sprintf("Maximum movement is %d inches at a time", maxNudgeInches)), nil
		}

		return withDesk(ctx, func(d *desk.Desk) (string, error) {
			move, err := d.MoveBy(ctx, sign*int(math.Round(in*25.4)))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Moved %s to %dmm (%.1f\")", direction, move.FinalMM, inches(move.FinalMM)), nil
		})
	}
}

func handleStopDesk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return withDesk(ctx, func(d *desk.Desk) (string, error) {
		if err := d.Stop(ctx); err != nil {
			return "", err
		}
		mm, err := d.Height(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Desk stopped at %dmm (%.1f\")", mm, inches(mm)), nil
	})
}

func handleGoToPreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slot := req.GetInt("preset", 1)
	return withDesk(ctx, func(d *desk.Desk) (string, error) {
		final, err := d.RecallPreset(ctx, slot)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved to preset %d: %dmm (%.1f\")", slot, final, inches(final)), nil
	})
}

func handleSavePreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slot := req.GetInt("preset", 1)
	return withDesk(ctx, func(d *desk.Desk) (string, error) {
		height, err := d.SavePreset(ctx, slot)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Saved preset %d at %dmm (%.1f\")", slot, height, inches(height)), nil
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
