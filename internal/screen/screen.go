// Package screen declares the contract every full-window view satisfies.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/asamadder/kodama/internal/ui/layout"
)

// Screen is one view managed by the router stack.
type Screen interface {
	// Init returns the command to run when the screen becomes active.
	Init() tea.Cmd

	// Update reacts to a message. The returned screen replaces the
	// receiver on the stack.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area between header and footer.
	View(width, height int) string

	// Title is shown in the header bar.
	Title() string
}

// KeyHintProvider lets a screen put its own shortcuts in the footer
// instead of the defaults.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}
