package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studyhall/studyhall/internal/screen"
	"github.com/studyhall/studyhall/internal/store"
	"github.com/studyhall/studyhall/internal/ui/theme"
)

const historyLimit = 15

type loadedMsg struct {
	attempts []store.AttemptSummary
	err      error
}

// Screen lists recent attempts from the local journal.
type Screen struct {
	journal  store.Journal
	attempts []store.AttemptSummary
	loaded   bool
	err      error
}

var _ screen.Screen = (*Screen)(nil)

// New creates a history screen backed by the given journal.
func New(journal store.Journal) *Screen {
	return &Screen{journal: journal}
}

func (s *Screen) Init() tea.Cmd {
	return func() tea.Msg {
		if s.journal == nil {
			return loadedMsg{}
		}
		attempts, err := s.journal.RecentAttempts(context.Background(), historyLimit)
		return loadedMsg{attempts: attempts, err: err}
	}
}

func (s *Screen) Title() string { return "History" }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(loadedMsg); ok {
		s.loaded = true
		s.attempts = m.attempts
		s.err = m.err
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder

	switch {
	case !s.loaded:
		b.WriteString(theme.Hint.Render("Loading..."))
	case s.err != nil:
		b.WriteString(theme.Incorrect.Render("Could not read history"))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(s.err.Error()))
	case len(s.attempts) == 0:
		b.WriteString(theme.Hint.Render("No attempts yet. Finish a session and it will show up here."))
	default:
		b.WriteString(theme.Title.Render("Recent Attempts"))
		b.WriteString("\n\n")
		for _, a := range s.attempts {
			b.WriteString(renderAttempt(a))
			b.WriteString("\n")
		}
	}

	content := b.String()
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderAttempt(a store.AttemptSummary) string {
	when := a.When.Format("Jan 2 15:04")

	var mark string
	switch a.Action {
	case "abandoned":
		mark = theme.Hint.Render("left early")
	case "declined":
		mark = theme.Warning.Render("retaking")
	default:
		if a.Passed {
			mark = theme.Correct.Render("passed")
		} else {
			mark = theme.Incorrect.Render("not passed")
		}
	}

	line := fmt.Sprintf("%-12s  %-14s  %3d pts  %3.0f%%  ", when, a.Activity, a.Score, a.Percentage)
	return theme.Body.Render(line) + mark
}
