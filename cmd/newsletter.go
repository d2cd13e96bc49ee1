package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"backline/config"
	"backline/core/mailer"
	"backline/db"
	"backline/model"
	"backline/repository"
)

var newsletterEventID int64

var newsletterCmd = &cobra.Command{
	Use:   "newsletter",
	Short: "Send a lineup broadcast to the subscriber list",
	Long:  `Mails the lineup of the event named by --event to every active subscriber.`,
	Run: func(cmd *cobra.Command, args []string) {
		if newsletterEventID <= 0 {
			log.Fatal("An event id is required (--event)")
		}

		cfg := config.Load()
		if err := db.ConnectDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.DB.Close()

		mail := mailer.NewMailer(cfg.MailEndpoint, cfg.MailAPIKey, cfg.MailFrom, cfg.SiteBaseURL)
		if !mail.Enabled() {
			log.Fatal("Mail provider is not configured (MAIL_ENDPOINT / MAIL_API_KEY)")
		}

		ctx := context.Background()
		eventRepo := repository.NewMySQLEventRepository()
		newsletterRepo := repository.NewMySQLNewsletterRepository()

		event, err := eventRepo.GetEventByID(ctx, newsletterEventID)
		if err != nil {
			log.Fatalf("Failed to load event: %v", err)
		}
		if event == nil {
			log.Fatalf("Event %d does not exist", newsletterEventID)
		}
		lineup, err := eventRepo.GetLineup(ctx, event.ID)
		if err != nil {
			log.Fatalf("Failed to load lineup: %v", err)
		}
		event.Lineup = lineup

		subs, err := newsletterRepo.GetSubscribers(ctx, model.SubscriberActive)
		if err != nil {
			log.Fatalf("Failed to load subscribers: %v", err)
		}
		if len(subs) == 0 {
			fmt.Println("No active subscribers, nothing to send")
			return
		}

		sent, failed := mail.BroadcastLineup(ctx, event, subs)
		fmt.Printf("Broadcast for %q: %d sent, %d failed\n", event.Title, sent, failed)
	},
}

func init() {
	rootCmd.AddCommand(newsletterCmd)
	newsletterCmd.Flags().Int64Var(&newsletterEventID, "event", 0, "id of the event to announce")
}
