package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studyhall/studyhall/internal/api"
	"github.com/studyhall/studyhall/internal/config"
	"github.com/studyhall/studyhall/internal/router"
	"github.com/studyhall/studyhall/internal/screen"
	"github.com/studyhall/studyhall/internal/screens/activity"
	"github.com/studyhall/studyhall/internal/screens/home"
	"github.com/studyhall/studyhall/internal/store"
	"github.com/studyhall/studyhall/internal/ui/layout"
)

// Options carries the injected dependencies for the TUI. Activity and
// SubjectID, when set, open that session directly on top of the menu.
type Options struct {
	API       api.Service
	Journal   store.Journal
	Config    *config.Config
	Activity  api.ActivityType
	SubjectID string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	initCmd tea.Cmd
	width   int
	height  int
}

func newAppModel(opts Options) AppModel {
	homeScreen := home.New(opts.API, opts.Journal, opts.Config)
	m := AppModel{
		router: router.New(homeScreen),
	}
	if opts.Activity != "" && opts.SubjectID != "" {
		m.initCmd = m.router.Push(activity.New(
			opts.API,
			opts.Journal,
			opts.Activity,
			opts.SubjectID,
			opts.Config.Policy(string(opts.Activity)),
			opts.Config.PollInterval,
		))
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	return m.initCmd
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				// Screens with unfinished work intercept the pop.
				if lg, ok := m.router.Active().(screen.LeaveGuard); ok && lg.HandleLeave() {
					return m, nil
				}
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	status := ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.HeaderStatus()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if khp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = khp.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
			footerHints = []layout.KeyHint{
				{Key: "Esc", Description: "Back"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		} else {
			footerHints = []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Select"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
