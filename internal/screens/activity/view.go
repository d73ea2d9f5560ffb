package activity

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	sess "github.com/studyhall/studyhall/internal/session"
	"github.com/studyhall/studyhall/internal/ui/components"
	"github.com/studyhall/studyhall/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	var body string
	switch {
	case s.showLeaveConfirm:
		body = s.leaveConfirmView()
	case s.errMsg != "":
		body = s.errorView()
	case s.state == nil:
		body = theme.Hint.Render("Loading session...")
	case s.state.Status() == sess.StatusAwaitingConfirmation:
		body = s.gateView()
	case s.awaiting:
		body = s.awaitingView(width)
	default:
		body = s.itemView(width)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (s *Screen) itemView(width int) string {
	st := s.state
	var b strings.Builder

	if s.resumeNotice {
		b.WriteString(theme.Warning.Render("Continuing your previous session"))
		b.WriteString("\n\n")
	}

	if st.TotalItems > 0 {
		pct := float64(st.ResolvedCount()) / float64(st.TotalItems)
		b.WriteString(components.NewProgressBar("Progress", pct, true, 48).View())
		b.WriteString("\n\n")
	}

	if st.CurrentItem == nil {
		b.WriteString(theme.Hint.Render("Preparing the next prompt..."))
		return theme.Card.Width(min(width-8, 72)).Render(b.String())
	}

	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Item %d of %d", st.CurrentIndex+1, st.TotalItems)))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(st.CurrentItem.Prompt))
	b.WriteString("\n")

	if len(st.CurrentItem.Choices) > 0 {
		b.WriteString("\n")
		for i, c := range st.CurrentItem.Choices {
			b.WriteString(theme.Unselected.Render(fmt.Sprintf("  %c) %s", 'a'+i, c)))
			b.WriteString("\n")
		}
	}

	if len(st.Posts) > 0 {
		b.WriteString("\n")
		b.WriteString(s.transcriptView())
	}

	if s.position != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Arguing: ") + theme.Selected.Render(strings.ToUpper(s.position)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.input.View())
	b.WriteString("\n")

	for _, fe := range s.fieldErrs {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render("✗ " + fe.Message))
	}

	if s.feedback != "" {
		b.WriteString("\n")
		if s.goodNews {
			b.WriteString(theme.Correct.Render(s.feedback))
		} else {
			b.WriteString(theme.Warning.Render(s.feedback))
		}
	}

	if s.submitting {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Checking..."))
	}

	return theme.Card.Width(min(width-8, 72)).Render(b.String())
}

func (s *Screen) transcriptView() string {
	var b strings.Builder
	for _, p := range s.state.Posts {
		author := theme.Selected.Render(p.Author + ":")
		if strings.EqualFold(p.Author, "opponent") {
			author = theme.Warning.Render(p.Author + ":")
		}
		b.WriteString(author + " " + theme.Body.Render(p.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Screen) awaitingView(width int) string {
	var b strings.Builder
	if len(s.state.Posts) > 0 {
		b.WriteString(s.transcriptView())
		b.WriteString("\n")
	}
	b.WriteString(theme.Hint.Render("Waiting for a response..."))
	return theme.Card.Width(min(width-8, 72)).Render(b.String())
}

func (s *Screen) gateView() string {
	p := s.state.Pending
	var b strings.Builder
	b.WriteString(theme.Title.Render("Session Complete"))
	b.WriteString("\n\n")
	if p != nil {
		b.WriteString(theme.Body.Render(fmt.Sprintf("Score: %d (%.0f%%)", s.state.Score, p.PercentageScore)))
		b.WriteString("\n")
		if p.Passed {
			b.WriteString(theme.Correct.Render("Passed"))
		} else {
			b.WriteString(theme.Incorrect.Render("Below the 70% pass mark"))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(theme.Body.Render("Accept this result?"))
	b.WriteString("\n\n")
	b.WriteString(theme.Selected.Render("[Enter]") + theme.Body.Render(" Accept   "))
	b.WriteString(theme.Selected.Render("[R]") + theme.Body.Render(" Retake missed items"))
	return theme.Card.Render(b.String())
}

func (s *Screen) leaveConfirmView() string {
	var b strings.Builder
	b.WriteString(theme.Warning.Render("Leave this session?"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render("Your progress is saved on the server, but this\nattempt will be marked abandoned."))
	b.WriteString("\n\n")
	b.WriteString(theme.Selected.Render("[Y]") + theme.Body.Render(" Leave   "))
	b.WriteString(theme.Selected.Render("[N]") + theme.Body.Render(" Stay"))
	return theme.Card.Render(b.String())
}

func (s *Screen) errorView() string {
	var b strings.Builder
	b.WriteString(theme.Incorrect.Render("Something went wrong"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(s.errMsg))
	b.WriteString("\n\n")
	if s.errRetryable {
		b.WriteString(theme.Selected.Render("[R]") + theme.Body.Render(" Retry   "))
		b.WriteString(theme.Selected.Render("[Esc]") + theme.Body.Render(" Back"))
	} else {
		b.WriteString(theme.Hint.Render("Press any key to go back"))
	}
	return theme.Card.Render(b.String())
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
