package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

// NewCreateAdminCommand creates the create-admin command used to bootstrap the first admin.
func NewCreateAdminCommand(rootOpts *RootOptions, load Loader) *cobra.Command {
	var req models.CreateAdminRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a placement cell admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), load, func(app *App) error {
				admin, err := app.Admins.CreateAdmin(cmd.Context(), req)
				if err != nil {
					return err
				}
				if rootOpts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), admin)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", admin.Username, admin.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "admin username")
	cmd.Flags().StringVar(&req.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&req.Password, "password", "", "admin password (min 8 characters)")
	for _, name := range []string{"username", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
