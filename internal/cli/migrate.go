package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/dissolvo/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	if app.DB == nil {
		return fmt.Errorf("no database configured; set DISSOLVO_DATABASE_URL")
	}

	if err := migrate.RunAll(ctx, app.DB.DB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, _, err := migrate.GetCurrentVersion(ctx, app.DB.DB)
	if err != nil {
		return err
	}
	fmt.Printf("Database at version %d\n", version)
	return nil
}
