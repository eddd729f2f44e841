package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

// NewImportRosterCommand creates the import-roster command.
func NewImportRosterCommand(rootOpts *RootOptions, load Loader) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import-roster",
		Short: "Bulk-create student accounts from a CSV or XLSX roster",
		Long: `Import a roster file with name, email, roll and password columns.

Optional columns: branch, year, cgpa, phone, address, skills.
Rows that fail validation or collide with existing students are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open roster: %w", err)
			}
			defer f.Close()

			return withApp(cmd.Context(), load, func(app *App) error {
				result, err := app.Roster.ImportFile(cmd.Context(), filepath.Base(file), f)
				if err != nil {
					return err
				}
				return printRosterResult(cmd, rootOpts, result)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the roster file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func printRosterResult(cmd *cobra.Command, opts *RootOptions, result *models.RosterImportResult) error {
	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(out, result)
	}
	fmt.Fprintf(out, "imported: %d\nskipped: %d\n", result.Imported, len(result.Skipped))
	for _, row := range result.Skipped {
		fmt.Fprintf(out, "  row %d (%s): %s\n", row.Row, row.Data.Roll, row.Reason)
	}
	return nil
}
