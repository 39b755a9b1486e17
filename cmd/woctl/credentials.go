package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medops-hub/workorder-service/internal/auth"
	"github.com/medops-hub/workorder-service/internal/config"
)

func tokenCmd() *cobra.Command {
	var (
		userID     string
		roles      []string
		teams      []string
		ttlMinutes int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development access token with AUTH_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tm := auth.NewTokenManager(cfg.Auth.JWTSecret, ttlMinutes)
			token, expiresAt, err := tm.GenerateToken(userID, roles, teams)
			if err != nil {
				return err
			}
			return render(map[string]any{"token": token, "expires_at": expiresAt},
				[]string{"Token", "Expires"}, [][]any{{token, expiresAt}})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "subject user id")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "platform roles")
	cmd.Flags().StringSliceVar(&teams, "teams", nil, "team ids")
	cmd.Flags().IntVar(&ttlMinutes, "ttl", 60, "lifetime in minutes")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func hashKeyCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-key <key>",
		Short: "Hash a scheduler key for AUTH_SCHEDULER_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashKey(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (default when zero)")
	return cmd
}
