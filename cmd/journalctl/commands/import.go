package commands

import (
	"fmt"

	"github.com/benvon/smart-journal/internal/config"
	"github.com/benvon/smart-journal/internal/database"
	"github.com/spf13/cobra"
)

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Store the templates of a file in the database",
		Long:  "Validate every template of --file and upsert it into the database named by DATABASE_URL. The schema is migrated first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadTemplates(opts.file)
			if err != nil {
				return err
			}
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close database: %v\n", err)
				}
			}()

			ctx := cmd.Context()
			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}
			tasks := database.NewTaskRepository(db)
			for _, task := range file.Tasks {
				if err := tasks.Upsert(ctx, task); err != nil {
					return fmt.Errorf("failed to import task %s: %w", task.ID, err)
				}
			}
			txns := database.NewTransactionRepository(db)
			for _, txn := range file.Transactions {
				if err := txns.Upsert(ctx, txn); err != nil {
					return fmt.Errorf("failed to import transaction %s: %w", txn.ID, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks and %d transactions.\n", len(file.Tasks), len(file.Transactions))
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tasks and transactions tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func openDatabase() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
