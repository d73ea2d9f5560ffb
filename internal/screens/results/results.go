package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studyhall/studyhall/internal/router"
	"github.com/studyhall/studyhall/internal/screen"
	"github.com/studyhall/studyhall/internal/ui/layout"
	"github.com/studyhall/studyhall/internal/ui/theme"
)

// Summary is the committed outcome of a finished session.
type Summary struct {
	Activity   string
	Score      int
	TotalItems int
	Resolved   int
	Percentage float64
	Passed     bool
	Early      bool
}

// Screen shows the final result of a session. Terminal: the only way out
// is back to the menu.
type Screen struct {
	summary Summary
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates a results screen for the given summary.
func New(summary Summary) *Screen {
	return &Screen{summary: summary}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Results" }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter/Esc", Description: "Back to menu"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	sum := s.summary
	var b strings.Builder

	heading := "Session Complete"
	if sum.Early {
		heading = "Finished Early"
	}
	b.WriteString(theme.Title.Render(heading))
	b.WriteString("\n\n")
	b.WriteString(theme.Subtitle.Render(sum.Activity))
	b.WriteString("\n\n")

	b.WriteString(theme.Body.Render(fmt.Sprintf("Final score   %d", sum.Score)))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Items done    %d of %d", sum.Resolved, sum.TotalItems)))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Percentage    %.0f%%", sum.Percentage)))
	b.WriteString("\n\n")

	if sum.Passed {
		b.WriteString(theme.Correct.Render("★ Passed"))
	} else {
		b.WriteString(theme.Incorrect.Render("Did not pass — 70% needed"))
	}

	card := theme.Card.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
