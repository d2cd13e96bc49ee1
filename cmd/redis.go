package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"backline/cache"
	"backline/config"
	"backline/db"
)

var redisFlush bool

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Check the Redis connection and manage cache keys",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer db.CloseRedis()
		fmt.Printf("Connected to Redis at %s:%s (db %d)\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if redisFlush {
			deleted, err := cache.FlushAppKeys(context.Background())
			if err != nil {
				log.Fatalf("Failed to flush cache keys: %v", err)
			}
			fmt.Printf("Deleted %d cache key(s)\n", deleted)
		}
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
	redisCmd.Flags().BoolVar(&redisFlush, "flush", false, "delete the application's cache keys")
}
