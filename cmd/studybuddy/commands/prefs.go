package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/studybuddy/internal/domain"
)

// NewPrefsCommand creates the prefs command and its subcommands
func NewPrefsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the save-history and share-logs preferences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "save-history: %s\n", onOff(a.binder.SaveHistory()))
			fmt.Fprintf(out, "share-logs:   %s\n", onOff(a.binder.ShareLogs()))

			lister, ok := a.state.(domain.KeyLister)
			if !ok {
				return nil
			}
			keys, err := lister.Keys(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing stored keys: %w", err)
			}
			fmt.Fprintf(out, "stored keys:  %s\n", strings.Join(keys, ", "))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <save-history|share-logs> <on|off>",
		Short:     "Change a preference",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"save-history", "share-logs"},
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseOnOff(args[1])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			switch args[0] {
			case "save-history":
				err = a.binder.OnSavePreferenceChanged(cmd.Context(), enabled)
			case "share-logs":
				err = a.binder.OnLoggingPreferenceChanged(cmd.Context(), enabled)
			default:
				return fmt.Errorf("unknown preference %q", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], onOff(enabled))
			return nil
		},
	})

	return cmd
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return b, nil
}
