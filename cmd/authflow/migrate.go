package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authflow/internal/store/pg"
	migrations "github.com/dropDatabas3/authflow/migrations/postgres"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones SQL pendientes (storage.driver=postgres)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != "postgres" {
				return errors.New("migrate requires storage.driver=postgres")
			}
			ctx := cmd.Context()
			st, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{MaxConns: 2})
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.Migrate(ctx, migrations.FS)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			return nil
		},
	}
}
