/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa-be/utils"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the document routes",
	Long: `Signs an HS256 token with JWT_SECRET. Send it as "Authorization: Bearer <token>"
to POST /database/, PUT /add_document/ and DELETE /delete_document/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}

		token, err := utils.GenerateToken(cfg.JWTSecret, subject, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringP("subject", "s", "admin", "Token subject")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
