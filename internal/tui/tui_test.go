package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/n0roo/mdhelper/internal/bloc"
	"github.com/n0roo/mdhelper/internal/generator"
	"github.com/n0roo/mdhelper/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls int
	sum   *generator.Summary
	err   error
}

func (f *fakeRunner) Run(context.Context) (*generator.Summary, error) {
	f.calls++
	return f.sum, f.err
}

func summary() *generator.Summary {
	missing := &bloc.MissingFieldError{Field: "target"}
	return &generator.Summary{
		Documents: 3,
		Tags:      5,
		Reports: []generator.Outcome{
			{Title: "Games", Target: "Games.md", Entries: 3},
			{Title: "Broken", Err: missing, Error: missing.Error()},
		},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_RunCycle(t *testing.T) {
	runner := &fakeRunner{sum: summary()}
	hist := func(limit int) ([]history.Run, error) {
		return []history.Run{{Status: history.StatusPartial, StartedAt: time.Now(), Reports: 2, Failed: 1}}, nil
	}

	m := NewModel(runner, hist, "/vault")
	assert.True(t, m.running)

	msg := m.generate()
	assert.Equal(t, 1, runner.calls)

	m, cmd := update(t, m, msg)
	assert.False(t, m.running)
	require.NotNil(t, m.summary)
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	require.Len(t, m.runs, 1)

	view := m.View()
	assert.Contains(t, view, "Games")
	assert.Contains(t, view, "3 entries")
	assert.Contains(t, view, "skipped")

	// 두 번째 행 선택 시 오류 상세 표시
	m, _ = update(t, m, key("j"))
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.View(), "target")

	m, _ = update(t, m, key("2"))
	assert.Equal(t, TabHistory, m.currentTab)
	assert.Contains(t, m.View(), "partial")
}

func TestModel_Rerun(t *testing.T) {
	runner := &fakeRunner{sum: summary()}
	m := NewModel(runner, nil, "/vault")

	// 실행 중에는 r을 무시
	_, cmd := update(t, m, key("r"))
	assert.Nil(t, cmd)

	m, _ = update(t, m, runMsg{summary: runner.sum})
	m, cmd = update(t, m, key("r"))
	assert.True(t, m.running)
	assert.NotNil(t, cmd)
}

func TestModel_FatalError(t *testing.T) {
	m := NewModel(&fakeRunner{}, nil, "/vault")
	m, _ = update(t, m, runMsg{err: errors.New("vault 파싱 실패")})

	assert.Contains(t, m.View(), "vault 파싱 실패")

	m, _ = update(t, m, key("2"))
	assert.Contains(t, m.View(), "History is disabled")
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(&fakeRunner{}, nil, "/vault")
	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestStatusIcon(t *testing.T) {
	icons := map[history.Status]string{
		history.StatusSuccess: "✓",
		history.StatusPartial: "○",
		history.StatusFailed:  "✗",
		"":                    "●",
	}
	for status, icon := range icons {
		assert.Contains(t, StatusIcon(status), icon, string(status))
	}
}
