package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authflow/internal/app"
	"github.com/dropDatabas3/authflow/internal/jobs"
)

func newCleanupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Purga una vez codes, tokens y sesiones vencidos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			st, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := jobs.NewCleanup(st, nil, 0).RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "codes=%d access_tokens=%d refresh_tokens=%d sessions=%d\n",
				res.Codes, res.AccessTokens, res.RefreshTokens, res.Sessions)
			return nil
		},
	}
}
