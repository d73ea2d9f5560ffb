package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studyhall/studyhall/internal/api"
	"github.com/studyhall/studyhall/internal/config"
	"github.com/studyhall/studyhall/internal/router"
	"github.com/studyhall/studyhall/internal/screen"
	"github.com/studyhall/studyhall/internal/screens/activity"
	"github.com/studyhall/studyhall/internal/screens/history"
	"github.com/studyhall/studyhall/internal/store"
	"github.com/studyhall/studyhall/internal/ui/components"
	"github.com/studyhall/studyhall/internal/ui/layout"
	"github.com/studyhall/studyhall/internal/ui/theme"
)

// Screen is the main menu. Picking an activity asks for an assignment
// code, then opens the session screen.
type Screen struct {
	svc     api.Service
	journal store.Journal
	cfg     *config.Config

	menu components.Menu

	// picking holds the chosen activity while the assignment code prompt
	// is up; empty otherwise.
	picking api.ActivityType
	subject components.TextInput
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the home screen.
func New(svc api.Service, journal store.Journal, cfg *config.Config) *Screen {
	s := &Screen{
		svc:     svc,
		journal: journal,
		cfg:     cfg,
	}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "Vocabulary Challenge", Action: s.pick(api.ActivityVocab)},
		{Label: "Concept Map", Action: s.pick(api.ActivityConceptMap)},
		{Label: "Debate Practice", Action: s.pick(api.ActivityDebate)},
		{Label: "History", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(journal)}
			}
		}},
		{Label: "Exit", Action: func() tea.Cmd { return tea.Quit }},
	})
	return s
}

func (s *Screen) pick(activityType api.ActivityType) func() tea.Cmd {
	return func() tea.Cmd {
		s.picking = activityType
		s.subject = components.NewTextInput("Assignment code (e.g. unit-3)", 64, false)
		return s.subject.Init()
	}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Home" }

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.picking != "" {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.picking != "" {
		return s.updateSubjectPrompt(msg)
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Screen) updateSubjectPrompt(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "esc":
			s.picking = ""
			return s, nil
		case "enter":
			subjectID := strings.TrimSpace(s.subject.Value())
			if subjectID == "" {
				return s, nil
			}
			activityType := s.picking
			s.picking = ""
			next := activity.New(
				s.svc,
				s.journal,
				activityType,
				subjectID,
				s.cfg.Policy(string(activityType)),
				s.cfg.PollInterval,
			)
			return s, func() tea.Msg {
				return router.PushScreenMsg{Screen: next}
			}
		}
	}

	var cmd tea.Cmd
	s.subject, cmd = s.subject.Update(msg)
	return s, cmd
}

func (s *Screen) View(width, height int) string {
	if s.picking != "" {
		var b strings.Builder
		b.WriteString(theme.Title.Render(activityLabel(s.picking)))
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Render("Which assignment?"))
		b.WriteString("\n\n")
		b.WriteString(s.subject.View())
		card := theme.Card.Width(min(width-8, 56)).Render(b.String())
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("What do you want to practice?"))
	b.WriteString("\n\n")
	b.WriteString(s.menu.View())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}

func activityLabel(t api.ActivityType) string {
	switch t {
	case api.ActivityVocab:
		return "Vocabulary Challenge"
	case api.ActivityConceptMap:
		return "Concept Map"
	case api.ActivityDebate:
		return "Debate Practice"
	}
	return "Practice"
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
