package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/studybuddy/internal/app/conversation"
	"github.com/PabloGalante/studybuddy/internal/config"
)

type rootOptions struct {
	stateBackend string
	mock         bool

	cfg      *config.Config
	closeLog func() error
}

// NewRootCommand creates the root command. Without a subcommand it opens the chat.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "studybuddy",
		Short:         "Chat with StudyBuddy, a mentor for international students",
		Long:          `studybuddy answers questions about studying abroad, comparing official rules with community hacks and citing its sources.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.stateBackend != "" {
				cfg.StateBackend = opts.stateBackend
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			if opts.mock {
				cfg.UseMockLLM = true
			}
			closeLog, err := initLogging(cfg)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.closeLog = closeLog
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.closeLog != nil {
				return opts.closeLog()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.stateBackend, "state-backend", "", "where preferences and sessions are kept (memory, file, sqlite, firestore)")
	rootCmd.PersistentFlags().BoolVar(&opts.mock, "mock", false, "use the scripted mock model instead of Gemini")

	rootCmd.AddCommand(NewChatCommand(opts))
	rootCmd.AddCommand(NewAskCommand(opts))
	rootCmd.AddCommand(NewSessionsCommand(opts))
	rootCmd.AddCommand(NewPrefsCommand(opts))
	rootCmd.AddCommand(NewExportCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", conversation.UserMessage(err))
}
