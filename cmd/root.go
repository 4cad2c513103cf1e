package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ragzy-ai/ragzy-api/internal/app"
	"github.com/ragzy-ai/ragzy-api/internal/kafka"
	"github.com/ragzy-ai/ragzy-api/internal/scheduler"
	"github.com/ragzy-ai/ragzy-api/internal/server"
	"github.com/ragzy-ai/ragzy-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "ragzy-api",
	Short:         "Ragzy dashboard and widget API",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		app.Invoke(
			server.StartServer,
			scheduler.RegisterScheduler,
			kafka.RegisterConsumer,
		).Run()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, newTokenCmd())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.MustNamed("cmd").Errorw("command failed", "error", err)
		os.Exit(1)
	}
}
