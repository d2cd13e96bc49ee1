package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"backline/config"
	"backline/storage"
)

var (
	storagePrefix    string
	storageStats     bool
	storageDelete    bool
	storagePruneTemp bool
	storageMaxAge    time.Duration
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect and maintain the asset bucket",
	Long: `Lists bucket contents, shows storage statistics, deletes asset
directories and prunes orphaned temporary uploads left behind by
interrupted replacements.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to connect to object storage: %v", err)
		}

		bucket := storage.NewBucket(storage.GetMinioClient(), cfg.MinioBucket)
		ctx := context.Background()

		switch {
		case storagePruneTemp:
			pruned, err := bucket.PruneTempObjects(ctx, storageMaxAge)
			if err != nil {
				log.Fatalf("Prune failed: %v", err)
			}
			fmt.Printf("Pruned %d orphaned temp object(s) older than %s\n", pruned, storageMaxAge)

		case storageDelete:
			if storagePrefix == "" {
				log.Fatal("Delete requires a directory prefix (-p)")
			}
			deleted, err := bucket.DeleteDirectory(ctx, storagePrefix)
			if err != nil {
				log.Fatalf("Delete failed: %v", err)
			}
			fmt.Printf("Deleted %d object(s) under %s\n", deleted, storagePrefix)

		case storageStats:
			_, stats, err := bucket.ListObjects(ctx, storagePrefix)
			if err != nil {
				log.Fatalf("Stats failed: %v", err)
			}
			fmt.Printf("Bucket %s: %d object(s), %d bytes total\n", cfg.MinioBucket, stats.TotalObjects, stats.TotalSize)
			if !stats.LastModified.IsZero() {
				fmt.Printf("Last modified: %s\n", stats.LastModified.Format(time.RFC3339))
			}

		default:
			if err := bucket.PrintStatus(ctx, storagePrefix); err != nil {
				log.Fatalf("Listing failed: %v", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)

	storageCmd.Flags().StringVarP(&storagePrefix, "prefix", "p", "", "filter objects by prefix, or name the directory to operate on")
	storageCmd.Flags().BoolVarP(&storageStats, "stats", "s", false, "show bucket statistics")
	storageCmd.Flags().BoolVarP(&storageDelete, "delete", "d", false, "delete the directory named by --prefix")
	storageCmd.Flags().BoolVar(&storagePruneTemp, "prune-temp", false, "remove orphaned tmp- uploads older than --max-age")
	storageCmd.Flags().DurationVar(&storageMaxAge, "max-age", 24*time.Hour, "minimum age for --prune-temp")

	storageCmd.Example = `  # List all objects
  backline storage

  # List one artist's directory
  backline storage -p "artist/Volt/"

  # Show bucket statistics
  backline storage -s

  # Delete an event's asset directory
  backline storage -d -p "images/events/Summer-Closing/"

  # Sweep temp uploads older than 48h
  backline storage --prune-temp --max-age 48h`
}
