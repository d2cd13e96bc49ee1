package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"backline/logger"
	"backline/server"
)

var rootCmd = &cobra.Command{
	Use:   "backline",
	Short: "Backline is the backend for the label site and its back-office.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(getenv("LOG_LEVEL", "info")),
			OutputPath: getenv("LOG_PATH", "logs/backline.log"),
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	},
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
