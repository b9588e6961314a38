// Package tui renders the terminal dashboard: run status, stream liveness,
// per-category counters, and the live event table.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lab-ups/upsmon/internal/api/transmission"
	"github.com/lab-ups/upsmon/internal/rxlog"
	"github.com/lab-ups/upsmon/internal/runtime"
	"github.com/lab-ups/upsmon/internal/stream"
)

// filterCycle is the order the f key walks through.
var filterCycle = []rxlog.Category{
	rxlog.CategoryAll,
	rxlog.CategoryA,
	rxlog.CategoryB,
	rxlog.CategoryB2,
	rxlog.CategoryUnknown,
}

// TickMsg drives the periodic refresh.
type TickMsg time.Time

// actionMsg carries the outcome of an async start or stop request.
type actionMsg struct {
	err error
}

type Model struct {
	mon    *runtime.Monitor
	table  table.Model
	filter int

	status  transmission.RunStatus
	conn    stream.ConnectionState
	counts  rxlog.Counts
	lastErr error
}

func NewModel(mon *runtime.Monitor) Model {
	columns := []table.Column{
		{Title: "Received", Width: 14},
		{Title: "Source", Width: 22},
		{Title: "Bytes", Width: 7},
		{Title: "Cat", Width: 8},
		{Title: "Payload", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return Model{
		mon:   mon,
		table: t,
		conn:  stream.Disconnected,
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
