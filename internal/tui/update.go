package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			return m, m.startCmd()
		case "x":
			return m, m.stopCmd()
		case "c":
			m.mon.Controller.ClearLog()
		case "f":
			m.filter = (m.filter + 1) % len(filterCycle)
		}

	case actionMsg:
		m.lastErr = msg.err

	case TickMsg:
		m.status = m.mon.Controller.CachedStatus()
		m.conn = m.mon.Session.ConnectionState()
		m.counts = m.mon.Events.Counts()
		if err := m.mon.Controller.LastError(); err != nil {
			m.lastErr = err
		}

		events := m.mon.Events.FilterByCategory(filterCycle[m.filter])
		rows := make([]table.Row, len(events))
		for i, ev := range events {
			rows[i] = table.Row{
				ev.ReceivedAt.Format("15:04:05.000"),
				fmt.Sprintf("%s:%d", ev.SourceIP, ev.SourcePort),
				formatBytes(ev.ByteCount),
				string(ev.Category),
				ev.PayloadHex,
			}
		}
		m.table.SetRows(rows)

		return m, tickCmd()
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// startCmd fires the start request off the UI loop. The status line picks up
// the result on the next tick; the error surfaces through actionMsg.
func (m Model) startCmd() tea.Cmd {
	req := m.mon.StartDefaults()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := m.mon.Controller.RequestStart(ctx, &req)
		return actionMsg{err: err}
	}
}

func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := m.mon.Controller.RequestStop(ctx)
		return actionMsg{err: err}
	}
}

func formatBytes(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}
