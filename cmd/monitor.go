// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/deskctl/deskctl/pkg/desk"
	"github.com/deskctl/deskctl/pkg/linak"
)

// nudgeStepMM is how far one keypress drives the desk (about an inch).
const nudgeStepMM = 25

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live desk view with keyboard control",
	Long: `Watch the desk height live and drive it from the keyboard.

Keys:
  u / d    nudge up / down by about an inch
  s        stop
  1-4      go to memory preset
  q        quit`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type sampleMsg desk.Sample

type statusMsg string

type feedLostMsg struct{}

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

var (
	monitorTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	monitorHeightStyle = lipgloss.NewStyle().Bold(true)
	monitorStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	monitorHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

type monitorModel struct {
	desk  *desk.Desk
	gauge progress.Model

	sample     desk.Sample
	haveSample bool
	feedLost   bool
	status     string

	width    int
	quitting bool
}

func initialMonitorModel(d *desk.Desk) monitorModel {
	gauge := progress.New(progress.WithDefaultGradient())
	gauge.Width = 50
	return monitorModel{
		desk:   d,
		gauge:  gauge,
		status: "connected",
		width:  80,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return nil
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 12
		if w < 10 {
			w = 10
		}
		if w > 60 {
			w = 60
		}
		m.gauge.Width = w

	case sampleMsg:
		m.sample = desk.Sample(msg)
		m.haveSample = true
		m.feedLost = false

	case feedLostMsg:
		m.feedLost = true

	case statusMsg:
		m.status = string(msg)
	}
	return m, nil
}

func (m monitorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "u":
		m.status = "moving up..."
		return m, m.moveCmd(+nudgeStepMM)
	case "d":
		m.status = "moving down..."
		return m, m.moveCmd(-nudgeStepMM)
	case "s":
		return m, m.stopCmd()
	case "1", "2", "3", "4":
		slot := int(msg.String()[0] - '0')
		m.status = fmt.Sprintf("recalling preset %d...", slot)
		return m, m.presetCmd(slot)
	}
	return m, nil
}

// moveCmd runs a nudge off the UI goroutine and reports the outcome.
func (m monitorModel) moveCmd(deltaMM int) tea.Cmd {
	d := m.desk
	return func() tea.Msg {
		move, err := d.MoveBy(context.Background(), deltaMM)
		switch {
		case errors.Is(err, desk.ErrBusy):
			return statusMsg("desk is busy")
		case err != nil:
			var obstruction *desk.ObstructionError
			if errors.As(err, &obstruction) {
				return statusMsg(fmt.Sprintf("obstruction at %dmm", obstruction.HeightMM))
			}
			return statusMsg(fmt.Sprintf("move failed: %v", err))
		case move.Clamped:
			return statusMsg(fmt.Sprintf("at travel limit, %dmm", move.FinalMM))
		default:
			return statusMsg(fmt.Sprintf("at %dmm", move.FinalMM))
		}
	}
}

func (m monitorModel) stopCmd() tea.Cmd {
	d := m.desk
	return func() tea.Msg {
		if err := d.Stop(context.Background()); err != nil {
			return statusMsg(fmt.Sprintf("stop failed: %v", err))
		}
		return statusMsg("stopped")
	}
}

func (m monitorModel) presetCmd(slot int) tea.Cmd {
	d := m.desk
	return func() tea.Msg {
		final, err := d.RecallPreset(context.Background(), slot)
		switch {
		case errors.Is(err, desk.ErrBusy):
			return statusMsg("desk is busy")
		case err != nil:
			return statusMsg(fmt.Sprintf("preset %d failed: %v", slot, err))
		default:
			return statusMsg(fmt.Sprintf("preset %d: %dmm", slot, final))
		}
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return ""
	}

	s := monitorTitleStyle.Render("deskctl monitor") + "\n\n"

	if m.haveSample {
		travel := float64(linak.MaxHeightMM - linak.MinHeightMM)
		percent := float64(m.sample.HeightMM-linak.MinHeightMM) / travel
		s += "  " + m.gauge.ViewAs(percent) + "\n\n"
		s += "  " + monitorHeightStyle.Render(
			fmt.Sprintf("%dmm (%.1f\")", m.sample.HeightMM, inches(m.sample.HeightMM))) + "\n"
		s += "  " + describeMotion(m.sample) + "\n"
	} else {
		s += "  waiting for telemetry...\n"
	}

	if m.feedLost {
		s += "\n  " + monitorStatusStyle.Render("telemetry feed quiet") + "\n"
	}
	s += "\n  " + monitorStatusStyle.Render(m.status) + "\n"
	s += "\n" + monitorHelpStyle.Render("  u up · d down · s stop · 1-4 presets · q quit") + "\n"
	return s
}

func describeMotion(sample desk.Sample) string {
	switch {
	case sample.Speed > 0:
		return fmt.Sprintf("moving up (speed %d)", sample.Speed)
	case sample.Speed < 0:
		return fmt.Sprintf("moving down (speed %d)", sample.Speed)
	default:
		return "at rest"
	}
}

//////////////////////////////////////////////////////////////
// Command
//////////////////////////////////////////////////////////////

func runMonitor(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("monitor needs a terminal; use 'deskctl serve' for machine consumers")
	}

	ctx, cancel := signalContext()
	defer cancel()

	d, err := openDesk(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	p := tea.NewProgram(initialMonitorModel(d), tea.WithAltScreen())

	// Feed telemetry into the TUI. The stream goes quiet while the desk
	// is at rest; surface that instead of treating it as an error.
	pumpCtx, stopPump := context.WithCancel(ctx)
	defer stopPump()
	go func() {
		for {
			sample, err := d.Stream().Wait(pumpCtx, 2*time.Second)
			if err != nil {
				if errors.Is(err, desk.ErrTelemetryTimeout) {
					p.Send(feedLostMsg{})
					continue
				}
				return
			}
			p.Send(sampleMsg(sample))
		}
	}()

	// Prime the display before the first notification.
	go func() {
		if mm, err := d.Height(pumpCtx); err == nil {
			p.Send(statusMsg(fmt.Sprintf("connected, %dmm", mm)))
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
