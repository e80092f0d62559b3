package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/middleware"
)

var (
	tokenUserID uint
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for a user id (development only)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		if !cfg.IsDevelopment() {
			return errors.New("token is only available when ENV=development")
		}
		if cfg.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET is required")
		}
		if tokenUserID == 0 {
			return errors.New("--user is required")
		}

		token, err := middleware.NewTokenVerifier(cfg.Auth.JWTSecret).Issue(tokenUserID, tokenTTL)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().UintVar(&tokenUserID, "user", 0, "User id to embed in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
