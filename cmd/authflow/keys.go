package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authflow/internal/app"
	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	"github.com/dropDatabas3/authflow/internal/security/secretbox"
)

func newKeysCmd(opts *rootOptions) *cobra.Command {
	keys := &cobra.Command{Use: "keys", Short: "Llave de firma RS256"}

	keys.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Genera la llave si no existe e imprime su kid",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			ks, err := app.KeyStore(cfg)
			if err != nil {
				return err
			}
			kp, err := ks.Ensure()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), kp.KID)
			return nil
		},
	})

	keys.AddCommand(&cobra.Command{
		Use:   "jwks",
		Short: "Imprime el JWKS público de la llave existente",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			ks, err := app.KeyStore(cfg)
			if err != nil {
				return err
			}
			kp, err := ks.Load()
			if err != nil {
				return fmt.Errorf("load keys from %s: %w", cfg.Keys.Dir, err)
			}
			b, err := jwtx.NewJWKS(kp).JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	})
	keys.AddCommand(&cobra.Command{
		Use:   "master-key",
		Short: "Genera una clave maestra (base64) para AUTHFLOW_KEYS_MASTER_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := secretbox.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), k)
			return nil
		},
	})
	return keys
}
