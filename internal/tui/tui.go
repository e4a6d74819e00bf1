package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/n0roo/mdhelper/internal/generator"
	"github.com/n0roo/mdhelper/internal/history"
)

// Tab represents a dashboard tab
type Tab int

const (
	TabReports Tab = iota
	TabHistory
)

const tabCount = 2

func (t Tab) String() string {
	return []string{"Reports", "History"}[t]
}

// Runner runs one generation pass
type Runner interface {
	Run(ctx context.Context) (*generator.Summary, error)
}

// HistoryFunc loads recent runs; nil hides history
type HistoryFunc func(limit int) ([]history.Run, error)

// Model is the dashboard model. A generation pass runs in a tea.Cmd; the
// model only changes on the resulting message.
type Model struct {
	runner  Runner
	history HistoryFunc
	vault   string

	currentTab Tab
	width      int
	height     int
	running    bool
	cursor     int

	summary *generator.Summary
	err     error
	runs    []history.Run
	lastRun time.Time

	spinner spinner.Model
}

// runMsg carries the result of a generation pass
type runMsg struct {
	summary *generator.Summary
	err     error
}

// historyMsg carries recent runs
type historyMsg struct {
	runs []history.Run
	err  error
}

// NewModel creates the dashboard model
func NewModel(runner Runner, hist HistoryFunc, vault string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		runner:  runner,
		history: hist,
		vault:   vault,
		running: true,
		spinner: s,
	}
}

// Init starts the first pass
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.generate)
}

func (m Model) generate() tea.Msg {
	sum, err := m.runner.Run(context.Background())
	return runMsg{summary: sum, err: err}
}

func (m Model) loadHistory() tea.Msg {
	if m.history == nil {
		return historyMsg{}
	}
	runs, err := m.history(20)
	return historyMsg{runs: runs, err: err}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.running {
				return m, nil
			}
			m.running = true
			return m, tea.Batch(m.spinner.Tick, m.generate)
		case "tab":
			m.currentTab = Tab((int(m.currentTab) + 1) % tabCount)
		case "1":
			m.currentTab = TabReports
		case "2":
			m.currentTab = TabHistory
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < m.rows()-1 {
				m.cursor++
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case runMsg:
		m.running = false
		m.summary = msg.summary
		m.err = msg.err
		m.lastRun = time.Now()
		if m.cursor >= m.rows() {
			m.cursor = 0
		}
		return m, m.loadHistory

	case historyMsg:
		if msg.err == nil {
			m.runs = msg.runs
		}

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) rows() int {
	if m.currentTab == TabHistory {
		return len(m.runs)
	}
	if m.summary == nil {
		return 0
	}
	return len(m.summary.Reports)
}

// View renders the UI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.currentTab {
	case TabReports:
		b.WriteString(m.renderReportsTab())
	case TabHistory:
		b.WriteString(m.renderHistoryTab())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  [1-2] Switch tabs  [Tab] Next  [↑/↓] Select  [r] Regenerate  [q] Quit"))
	return b.String()
}

func (m Model) renderHeader() string {
	title := "mdhelper · " + m.vault
	status := "Last run: -"
	if m.running {
		status = m.spinner.View() + " generating..."
	} else if !m.lastRun.IsZero() {
		status = "Last run: " + m.lastRun.Format("15:04:05")
	}

	width := m.width
	if width < 60 {
		width = 60
	}

	left := lipgloss.NewStyle().Bold(true).Render(title)
	right := lipgloss.NewStyle().Foreground(mutedColor).Render(status)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 0 {
		gap = 0
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#2D3748")).
		Foreground(lipgloss.Color("#FFFFFF")).
		Padding(0, 1).
		Width(width).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderTabs() string {
	var tabs []string
	for i := 0; i < tabCount; i++ {
		style := tabStyle
		if Tab(i) == m.currentTab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("[%d]%s", i+1, Tab(i))))
	}
	return strings.Join(tabs, " ")
}

func (m Model) renderReportsTab() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(failedStyle.Render("  ✗ " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if m.summary == nil {
		b.WriteString(dimStyle.Render("  Waiting for the first pass..."))
		return b.String()
	}

	s := m.summary
	b.WriteString(boxStyle.Render(
		titleStyle.Render("Pass") + "\n" +
			fmt.Sprintf("Documents: %d\n", s.Documents) +
			fmt.Sprintf("Tags:      %d\n", s.Tags) +
			fmt.Sprintf("Reports:   %s / %d\n", okStyle.Render(fmt.Sprint(len(s.Reports)-s.Failed())), len(s.Reports)) +
			fmt.Sprintf("Entries:   %d", s.Entries()),
	))
	b.WriteString("\n\n")

	for i, r := range s.Reports {
		status := history.StatusSuccess
		detail := fmt.Sprintf("%d entries", r.Entries)
		if r.Err != nil {
			status = history.StatusPartial
			detail = "skipped"
		}
		line := fmt.Sprintf("%-30s %-40s %s", r.Title, r.Target, dimStyle.Render(detail))
		if i == m.cursor {
			line = selectedItemStyle.Render(line)
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", StatusIcon(status), line))
	}

	if m.cursor < len(s.Reports) && s.Reports[m.cursor].Err != nil {
		b.WriteString("\n")
		b.WriteString(detailPanelStyle.Render(failedStyle.Render(s.Reports[m.cursor].Error)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHistoryTab() string {
	var b strings.Builder

	if m.history == nil {
		b.WriteString(subtitleStyle.Render("  History is disabled"))
		return b.String()
	}
	if len(m.runs) == 0 {
		b.WriteString(dimStyle.Render("  No runs"))
		return b.String()
	}

	for i, run := range m.runs {
		line := fmt.Sprintf("%s  %-8s %3d reports  %3d failed  %6d entries  %s",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Status, run.Reports, run.Failed, run.Entries,
			run.Duration().Round(time.Millisecond))
		if i == m.cursor {
			line = selectedItemStyle.Render(line)
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", StatusIcon(run.Status), line))
	}
	return b.String()
}

// Run starts the dashboard
func Run(runner Runner, hist HistoryFunc, vault string) error {
	p := tea.NewProgram(
		NewModel(runner, hist, vault),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
