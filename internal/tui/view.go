package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/lab-ups/upsmon/internal/stream"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	runningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	stoppedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func (m Model) View() string {
	title := titleStyle.Render("upsmon - UDP Transmission Monitor")

	// Run status panel
	var run string
	if m.status.Running {
		run = runningStyle.Render("RUNNING")
		if m.status.DstIP != nil && m.status.DstPort != nil {
			run += fmt.Sprintf("  %s:%d", *m.status.DstIP, *m.status.DstPort)
		}
		if m.status.SiteID != nil {
			run += fmt.Sprintf("  site %s", *m.status.SiteID)
		}
	} else {
		run = stoppedStyle.Render("STOPPED")
	}
	conn := "stream: " + string(m.conn)
	if m.conn == stream.Connected {
		conn = "stream: " + runningStyle.Render(string(m.conn))
	}
	statusBox := infoStyle.Render(fmt.Sprintf("Transmission: %s\n%s", run, conn))

	// Counter panel covers the whole log, never just the filtered view
	countBox := infoStyle.Render(fmt.Sprintf(
		"A: %d   B: %d   B2: %d   UNKNOWN: %d\nTotal: %d   Filter: %s",
		m.counts.A, m.counts.B, m.counts.B2, m.counts.Unknown,
		m.counts.Total, filterCycle[m.filter]))

	tableBox := infoStyle.Render("Received Events\n" + m.table.View())

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, statusBox, countBox)
	body := lipgloss.JoinVertical(lipgloss.Left, title, row1, tableBox)

	if m.lastErr != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body,
			errorStyle.Render("error: "+m.lastErr.Error()))
	}

	return body + "\ns start  x stop  c clear  f filter  q quit"
}
