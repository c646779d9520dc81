package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/studybuddy/internal/app/conversation"
)

// NewAskCommand creates the ask command
func NewAskCommand(opts *rootOptions) *cobra.Command {
	var keepSession bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and stream the answer to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := newApp(ctx, opts.cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			a.sessions.SelectNone()
			if keepSession {
				if list := a.sessions.Sessions(); len(list) > 0 {
					a.sessions.SelectSession(list[0].ID)
				}
			}
			return ask(ctx, cmd, a.svc, strings.Join(args, " "))
		},
	}
	cmd.Flags().BoolVar(&keepSession, "continue", false, "append to the newest saved session instead of starting a new one")
	return cmd
}

func ask(ctx context.Context, cmd *cobra.Command, svc *conversation.Service, query string) error {
	out := cmd.OutOrStdout()

	printed := 0
	res, err := svc.Submit(ctx, query, func(u conversation.Update) {
		text := u.Snapshot.Text
		if len(text) > printed {
			fmt.Fprint(out, text[printed:])
			printed = len(text)
		}
	})
	fmt.Fprintln(out)

	if res != nil && len(res.Reply.Citations) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for i, c := range res.Reply.Citations {
			title := c.Title
			if title == "" {
				title = c.URI
			}
			fmt.Fprintf(out, "%d. %s <%s>\n", i+1, title, c.URI)
		}
	}

	if errors.Is(err, conversation.ErrConnection) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
