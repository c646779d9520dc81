package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/studybuddy/internal/export"
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	var in, out, engine string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert the logging server's JSON-lines log to CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := export.NewReader(engine)
			if err != nil {
				return err
			}
			n, err := export.Convert(cmd.Context(), r, in, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Read %d rows from %s\nWrote CSV to: %s\n", n, in, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", filepath.Join("data", "logs.jsonl"), "log file to read")
	cmd.Flags().StringVar(&out, "out", filepath.Join("data", "logs.csv"), "CSV file to write")
	cmd.Flags().StringVar(&engine, "engine", "jsonl", "reader to use: jsonl or duckdb")
	return cmd
}
