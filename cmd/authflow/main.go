// Command authflow es el binario del servidor de autorización y sus
// herramientas operativas (llaves, migraciones, limpieza).
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authflow/internal/config"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{
		configPath: envOr("AUTHFLOW_CONFIG", ""),
		envFile:    envOr("AUTHFLOW_ENV_FILE", ".env"),
	}

	root := &cobra.Command{
		Use:           "authflow",
		Short:         "Servidor OAuth2/OIDC y herramientas operativas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env es opcional; nunca pisa variables ya definidas.
			if opts.envFile != "" {
				if err := godotenv.Load(opts.envFile); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("load %s: %w", opts.envFile, err)
				}
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "Archivo YAML de configuración (env AUTHFLOW_CONFIG)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", opts.envFile, "Archivo .env a cargar antes de leer la configuración")

	root.AddCommand(
		newServeCmd(opts),
		newKeysCmd(opts),
		newMigrateCmd(opts),
		newCleanupCmd(opts),
		newHashPasswordCmd(),
		newWebhookCmd(),
	)
	return root
}

// loadConfig lee la configuración e inicializa el logger global.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.ServiceName,
		Version:     cfg.App.Version,
	})
	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
