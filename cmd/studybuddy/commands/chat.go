package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/studybuddy/internal/tui"
)

// NewChatCommand creates the chat command
func NewChatCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
}

func runChat(cmd *cobra.Command, opts *rootOptions) error {
	a, err := newApp(cmd.Context(), opts.cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	m := tui.New(cmd.Context(), tui.Deps{
		Service:  a.svc,
		Sessions: a.sessions,
		Prefs:    a.binder,
	})
	defer m.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
