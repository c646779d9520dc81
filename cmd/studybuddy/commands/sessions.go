package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/studybuddy/internal/app/sections"
	"github.com/PabloGalante/studybuddy/internal/domain"
)

// NewSessionsCommand creates the sessions command and its subcommands
func NewSessionsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List, show or delete saved conversations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			list := a.sessions.Sessions()
			if len(list) == 0 {
				fmt.Fprintln(out, "No saved conversations")
				return nil
			}
			for i, s := range list {
				created := time.UnixMilli(s.CreatedAt).Format("2006-01-02 15:04")
				fmt.Fprintf(out, "%d. %s\n   ID: %s\n   Created: %s, %d messages\n", i+1, s.Title, s.ID, created, len(s.Messages))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			sess, ok := a.svc.Timeline(cmd.Context(), domain.SessionID(args[0]))
			if !ok {
				return fmt.Errorf("session %q not found", args[0])
			}
			printSession(cmd, sess)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.sessions.DeleteSession(domain.SessionID(args[0])) {
				return fmt.Errorf("session %q not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n := a.sessions.Len()
			a.sessions.Clear()
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d conversations\n", n)
			return nil
		},
	})

	return cmd
}

func printSession(cmd *cobra.Command, sess domain.Session) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n%s\n", sess.Title, strings.Repeat("=", len([]rune(sess.Title))))

	for _, m := range sess.Messages {
		if m.Role == domain.RoleUser {
			fmt.Fprintf(out, "\nYou: %s\n", m.Content)
			continue
		}
		fmt.Fprintln(out)
		for _, b := range sections.Parse(m.Content) {
			if b.Kind == sections.KindPlain {
				fmt.Fprintln(out, b.Text)
				continue
			}
			fmt.Fprintf(out, "[%s] %s\n", b.Kind.Heading(), b.Text)
		}
		for _, c := range m.Citations {
			fmt.Fprintf(out, "  source: %s <%s>\n", c.Title, c.URI)
		}
	}
}
