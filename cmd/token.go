package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/usecase"
)

func newTokenCmd() *cobra.Command {
	var (
		user models.AuthUser
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a dashboard token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			token, expiresAt, err := usecase.NewAuthUseCase(conf).Issue(user, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&user.ID, "user-id", "demo-owner", "user id carried as the token subject")
	cmd.Flags().StringVar(&user.Email, "email", "owner@ragzy.local", "user email")
	cmd.Flags().StringVar(&user.Name, "name", "Demo Owner", "user display name")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to AUTH_TOKEN_TTL")
	return cmd
}
