package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewCmdExport creates the export command
func NewCmdExport() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the store as a JSON snapshot or XLSX workbook",
		Long: `Writes the persisted record families to a file. A .json output
produces a snapshot that can be replayed with the import command; a
.xlsx output produces a leaderboard workbook.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			switch {
			case strings.HasSuffix(out, ".json"):
				return app.export.Export(out)
			case strings.HasSuffix(out, ".xlsx"):
				return app.spreadsheet.Export(out)
			default:
				return fmt.Errorf("unsupported output format %q, expected .json or .xlsx", out)
			}
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "laurel-export.json", "output file (.json or .xlsx)")

	return cmd
}

// NewCmdImport creates the import command
func NewCmdImport() *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Replay a JSON snapshot through the idempotent upserts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			return app.export.Import(args[0])
		},
	}
}
