package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/studyhall/studyhall/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for screens that want to place
// live text (e.g. the running score) on the right edge of the header.
type StatusProvider interface {
	HeaderStatus() string
}

// LeaveGuard is an optional interface for screens that must intercept a
// back/quit request while work would be lost. HandleLeave returns true
// when the screen consumed the request (e.g. by opening its own dialog).
type LeaveGuard interface {
	HandleLeave() bool
}

// Teardown is an optional interface for screens holding resources
// (timers, pollers) that must be released when the screen is popped.
type Teardown interface {
	Teardown()
}
