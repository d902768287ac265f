package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AnshRaj112/serenify-journal/internal/database"
)

func addMigrate(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Apply, roll back or inspect the PostgreSQL schema.",
		Long: `Migrate manages the embedded PostgreSQL migrations.

Examples:
  serenify migrate          # same as "migrate up"
  serenify migrate down     # roll back one step
  serenify migrate version`,
		ValidArgs: []string{"up", "down", "version"},
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return err
			}
			return cobra.OnlyValidArgs(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			url := e.cfg.PostgresURI

			switch action {
			case "up":
				if err := database.RunMigrations(url); err != nil {
					return err
				}
			case "down":
				if err := database.RollbackMigration(url); err != nil {
					return err
				}
			}

			v, dirty, err := database.MigrationVersion(url)
			if err != nil {
				return err
			}
			state := color.GreenString("clean")
			if dirty {
				state = color.RedString("dirty")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", v, state)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
