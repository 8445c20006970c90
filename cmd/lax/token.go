package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vedran77/lax/internal/service"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Server.AuthSecret == "" {
			return errors.New("no auth secret configured (LAX_AUTH_SECRET)")
		}
		token, err := service.NewAuthService(cfg.Server.AuthSecret).IssueToken(tokenUser, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id the token is issued for")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", service.DefaultTokenTTL, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}
