package cmd

import (
	"github.com/spf13/cobra"

	"geohash-service/config"
	"geohash-service/migration"
)

func newMigrateCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return migration.Run(cfg)
		},
	}
}
