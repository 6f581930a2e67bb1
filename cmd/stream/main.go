// Command stream browses a growing stream of synthetic request rows through
// a bubbletea program. Arrow keys, paging, and the mouse wheel move the
// window; only the visible rows ever render while new rows keep arriving.
package main

import (
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kungfusheep/sash"
)

const startRows = 1_000_000

var services = []string{
	"api-gateway", "auth", "billing", "search",
	"ingest", "mailer", "webhooks", "reports",
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

// stream is the shared row counter; Update grows it, Count reads it.
type stream struct {
	rows int
}

type appendMsg struct{}

func appendTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return appendMsg{}
	})
}

type model struct {
	sash.TeaModel
	st *stream
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.TeaModel.Init(), appendTick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" {
			m.Win.Unmount()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		// Header and footer take a row each.
		if msg.Height > 2 {
			msg.Height -= 2
		}
		inner, cmd := m.TeaModel.Update(msg)
		m.TeaModel = inner.(sash.TeaModel)
		return m, cmd

	case appendMsg:
		m.st.rows += 7
		m.Win.Refresh()
		return m, appendTick()
	}

	inner, cmd := m.TeaModel.Update(msg)
	m.TeaModel = inner.(sash.TeaModel)
	return m, cmd
}

func (m model) View() string {
	header := headerStyle.Render(fmt.Sprintf(" %8s  %-12s  %6s  %s",
		"index", "service", "latency", "status"))
	footer := footerStyle.Render(fmt.Sprintf(" %d rows | arrows or j/k scroll | q quits", m.st.rows))
	return header + "\n" + m.TeaModel.View() + "\n" + footer
}

func main() {
	host := sash.NewTeaHost(80, 22)
	st := &stream{rows: startRows}

	var win *sash.Window
	win, err := sash.New(sash.Config{
		Host:       host,
		ItemHeight: 1,
		Count:      func() int { return st.rows },
		Render: func(n *sash.Node, i int) error {
			// synthetic but deterministic row content
			svc := services[i%len(services)]
			latency := (i*37)%480 + 3
			status := "ok"
			style := sash.DefaultStyle()
			switch {
			case latency > 400:
				status = "slow"
				style = style.Foreground(sash.BrightYellow)
			case i%271 == 0:
				status = "error"
				style = style.Foreground(sash.BrightRed)
			}
			if i == win.FocusedIndex() {
				style = style.Inverse()
			}
			line := fmt.Sprintf(" %8d  %-12s  %4dms  %s", i, svc, latency, status)
			n.Buf.WriteStringFast(0, 0, line, style, n.Buf.Width())
			return nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	p := tea.NewProgram(
		model{TeaModel: sash.NewTeaModel(host, win), st: st},
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
