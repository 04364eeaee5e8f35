package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vavastapak/account-service/internal/api/middleware"
	"github.com/vavastapak/account-service/internal/core/domain"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var adminTokenCmd = &cobra.Command{
	Use:   "admin-token",
	Short: "Print a bearer token for the operator routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		signed, err := middleware.IssueToken(cfg.JWTSecret, tokenSubject, domain.RoleAdmin, tokenTTL)
		if err != nil {
			return err
		}
		log.Info().Str("subject", tokenSubject).Dur("ttl", tokenTTL).Msg("admin token issued")
		_, err = fmt.Fprintln(cmd.OutOrStdout(), signed)
		return err
	},
}

func init() {
	adminTokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "operator name recorded as the token subject")
	adminTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	_ = adminTokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(adminTokenCmd)
}
