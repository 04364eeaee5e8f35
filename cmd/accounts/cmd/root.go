package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vavastapak/account-service/internal/pkg/config"
	"github.com/vavastapak/account-service/pkg/logger"
)

const serviceName = "account-service"

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Account service: registration, login and password reset",
	Long: `accounts runs the account HTTP API and its operator tasks.

Configuration is read from the environment (and an optional .env file).

Available commands:
  serve         Run the HTTP server
  migrate       Apply the credential store schema and exit
  admin-token   Print a bearer token for the operator routes
  wipe          Delete every account`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		log = logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  cfg.IsDevelopment(),
			Output:  os.Stderr,
			Service: serviceName,
		})
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
