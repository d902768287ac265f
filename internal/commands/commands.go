// Package commands holds the serenify CLI: the API server plus maintenance
// commands that run against the same stores.
package commands

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/config"
	"github.com/AnshRaj112/serenify-journal/internal/logger"
)

// env is filled by the root command before any subcommand runs.
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func New() *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:           "serenify",
		Short:         "Serenify journal API server and tools.",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; the process environment still applies.
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			e.cfg = config.Load()
			log, err := logger.New(e.cfg.Environment)
			if err != nil {
				return err
			}
			e.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
	}

	serve := addServe(cmd, e)
	cmd.RunE = serve.RunE
	addMigrate(cmd, e)
	addExport(cmd, e)
	addReport(cmd, e)
	return cmd
}
