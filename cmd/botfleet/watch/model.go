// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	fleetcore "github.com/bureau-foundation/botfleet/lib/fleet"
)

// requestTimeout bounds each call the dashboard makes.
const requestTimeout = 10 * time.Second

// Source is what the dashboard needs from the controller.
type Source interface {
	Status(ctx context.Context) (fleetcore.FleetStatus, error)
	Connect(ctx context.Context, count int) (fleetcore.ConnectResult, error)
	Disconnect(ctx context.Context, count int) (fleetcore.DisconnectResult, error)
}

// statusMsg carries the result of one poll.
type statusMsg struct {
	status fleetcore.FleetStatus
	err    error
}

// tickMsg schedules the next poll. generation discards ticks from
// superseded schedules.
type tickMsg struct {
	generation int
}

// actionMsg reports the outcome of a key-triggered fleet action.
type actionMsg struct {
	text string
	err  error
}

// Model is the dashboard's bubbletea model.
type Model struct {
	source   Source
	interval time.Duration
	keys     KeyMap
	theme    Theme
	help     help.Model

	width  int
	height int

	status     fleetcore.FleetStatus
	loaded     bool
	pollError  error
	message    string
	messageErr bool
	generation int
}

// NewModel creates a dashboard polling source every interval.
func NewModel(source Source, interval time.Duration) Model {
	return Model{
		source:   source,
		interval: interval,
		keys:     DefaultKeyMap,
		theme:    DefaultTheme,
		help:     help.New(),
	}
}

// Init starts the first poll.
func (model Model) Init() tea.Cmd {
	return model.poll()
}

func (model Model) poll() tea.Cmd {
	source := model.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		status, err := source.Status(ctx)
		return statusMsg{status: status, err: err}
	}
}

func (model Model) schedule() tea.Cmd {
	generation := model.generation
	return tea.Tick(model.interval, func(time.Time) tea.Msg {
		return tickMsg{generation: generation}
	})
}

// Update handles input, poll results, and ticks.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.help.Width = message.Width
		return model, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit
		case key.Matches(message, model.keys.ConnectAll):
			return model, model.connectAll()
		case key.Matches(message, model.keys.DisconnectAll):
			return model, model.disconnectAll()
		case key.Matches(message, model.keys.Refresh):
			model.generation++
			return model, model.poll()
		}
		return model, nil

	case statusMsg:
		model.pollError = message.err
		if message.err == nil {
			model.status = message.status
			model.loaded = true
		}
		return model, model.schedule()

	case tickMsg:
		if message.generation != model.generation {
			return model, nil
		}
		return model, model.poll()

	case actionMsg:
		model.message = message.text
		model.messageErr = message.err != nil
		if message.err != nil {
			model.message = message.err.Error()
		}
		model.generation++
		return model, model.poll()
	}
	return model, nil
}

func (model Model) connectAll() tea.Cmd {
	source := model.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := source.Connect(ctx, fleetcore.AllBots)
		if err != nil {
			return actionMsg{err: err}
		}
		if result.Target == 0 {
			return actionMsg{text: "No disconnected bots to connect"}
		}
		return actionMsg{text: fmt.Sprintf("Connecting %d bots", result.Target)}
	}
}

func (model Model) disconnectAll() tea.Cmd {
	source := model.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := source.Disconnect(ctx, fleetcore.AllBots)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("Disconnecting %d bots", result.Disconnecting)}
	}
}

// View renders the dashboard.
func (model Model) View() string {
	if !model.loaded {
		if model.pollError != nil {
			return model.line(lipgloss.NewStyle().Foreground(model.theme.ErrorForeground).
				Render("error: "+model.pollError.Error())) + "\n"
		}
		return "Loading fleet status...\n"
	}

	var builder strings.Builder
	header := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	title := fmt.Sprintf("botfleet  %d bots  %d regions", len(model.status.Bots), model.status.RegionCount)
	if model.status.ConnectInProgress {
		title += "  connecting..."
	}
	builder.WriteString(model.line(header.Render(title)) + "\n\n")

	nameWidth, regionWidth := len("NAME"), len("REGION")
	for _, row := range model.status.Bots {
		nameWidth = max(nameWidth, len(row.FirstName)+1+len(row.LastName))
		regionWidth = max(regionWidth, len(row.Region))
	}
	columns := fmt.Sprintf("%%-%ds  %%-%ds  %%-13s  %%s", nameWidth, regionWidth)
	builder.WriteString(model.line(faint.Render(fmt.Sprintf(columns, "NAME", "REGION", "STATE", "SIMS"))) + "\n")

	rows := model.status.Bots
	if limit := model.rowLimit(); limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, row := range rows {
		state := lipgloss.NewStyle().Foreground(model.theme.StateColor(row.State)).Render(fmt.Sprintf("%-13s", row.State))
		region := row.Region
		if region == "" {
			region = "-"
		}
		text := fmt.Sprintf(fmt.Sprintf("%%-%ds  %%-%ds  ", nameWidth, regionWidth), row.FirstName+" "+row.LastName, region) +
			state + fmt.Sprintf("  %d", row.SimulatorCount)
		builder.WriteString(model.line(text) + "\n")
	}
	if hidden := len(model.status.Bots) - len(rows); hidden > 0 {
		builder.WriteString(model.line(faint.Render(fmt.Sprintf("... %d more", hidden))) + "\n")
	}

	builder.WriteString("\n")
	totals := make([]string, 0, len(model.status.Totals))
	for _, total := range model.status.Totals {
		style := lipgloss.NewStyle().Foreground(model.theme.StateColor(total.State))
		totals = append(totals, style.Render(fmt.Sprintf("%s %d", total.State, total.Count)))
	}
	builder.WriteString(model.line(strings.Join(totals, "  ")) + "\n")

	switch {
	case model.pollError != nil:
		builder.WriteString(model.line(lipgloss.NewStyle().Foreground(model.theme.ErrorForeground).
			Render("poll failed: "+model.pollError.Error())) + "\n")
	case model.message != "":
		style := lipgloss.NewStyle().Foreground(model.theme.NormalText)
		if model.messageErr {
			style = style.Foreground(model.theme.ErrorForeground)
		}
		builder.WriteString(model.line(style.Render(model.message)) + "\n")
	}

	builder.WriteString("\n" + model.line(model.help.View(model.keys)) + "\n")
	return builder.String()
}

// line truncates rendered text to the terminal width.
func (model Model) line(text string) string {
	if model.width <= 0 {
		return text
	}
	return ansi.Truncate(text, model.width, "…")
}

// rowLimit is how many bot rows fit, or -1 before the terminal size is
// known. Eight lines are chrome: title, blank, column header, blank,
// totals, message, blank, help.
func (model Model) rowLimit() int {
	if model.height <= 0 {
		return -1
	}
	return max(model.height-8, 1)
}
