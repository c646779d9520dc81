package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/PabloGalante/studybuddy/internal/app/conversation"
)

type (
	// streamUpdateMsg carries one folded snapshot of the reply being streamed.
	streamUpdateMsg struct {
		Update conversation.Update
	}

	// streamDoneMsg ends a submit, successfully or not.
	streamDoneMsg struct {
		Result *conversation.SubmitResult
		Err    error
	}
)

// waitForStream reads the next message of a running submit. It yields nil once
// the channel is closed.
func waitForStream(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
