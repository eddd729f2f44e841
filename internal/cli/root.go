package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

type rosterImporter interface {
	ImportFile(ctx context.Context, filename string, r io.Reader) (*models.RosterImportResult, error)
}

type adminCreator interface {
	CreateAdmin(ctx context.Context, req models.CreateAdminRequest) (*models.Admin, error)
}

// App is the slice of the wired application the CLI drives.
type App struct {
	Roster  rosterImporter
	Admins  adminCreator
	Migrate func(ctx context.Context) ([]string, error)
	Close   func()
}

// Loader builds an App on demand so commands that fail flag validation never touch the database.
type Loader func(ctx context.Context) (*App, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the placementctl root command.
func NewRootCommand(load Loader) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "placementctl",
		Short: "Operator tooling for the campus placement API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewImportRosterCommand(opts, load))
	cmd.AddCommand(NewCreateAdminCommand(opts, load))
	cmd.AddCommand(NewMigrateCommand(opts, load))

	return cmd
}

func withApp(ctx context.Context, load Loader, fn func(*App) error) error {
	app, err := load(ctx)
	if err != nil {
		return err
	}
	if app.Close != nil {
		defer app.Close()
	}
	return fn(app)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
