package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"community-lending/internal/adapter/repository/mysql"
)

func checkOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-overdue",
		Short: "Run one overdue monitor cycle and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.monitor.RunOnce(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "overdue cycle")
			}
			a.log.Info().Int("overdue", rep.OverdueLoans).Int("notifications", rep.Notifications).
				Int("failed", rep.Failed).Msg("overdue check finished")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			gdb, err := openDB(cfg, log)
			if err != nil {
				return errors.Wrap(err, "open mysql")
			}
			if err := mysql.Migrate(gdb.WithContext(cmd.Context())); err != nil {
				return err
			}
			log.Info().Msg("schema up to date")
			return nil
		},
	}
}
