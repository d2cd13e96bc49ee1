package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backline/model"
)

type sentMail struct {
	To      []string `json:"to"`
	From    string   `json:"from"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func mailProvider(t *testing.T, failFor string) (*httptest.Server, *[]sentMail) {
	t.Helper()
	var sent []sentMail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var mail sentMail
		if err := json.NewDecoder(r.Body).Decode(&mail); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if len(mail.To) == 1 && mail.To[0] == failFor {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		sent = append(sent, mail)
		w.WriteHeader(http.StatusOK)
	}))
	return srv, &sent
}

func TestSendWelcome(t *testing.T) {
	srv, sent := mailProvider(t, "")
	defer srv.Close()
	m := NewMailer(srv.URL, "key-123", "news@example.com", "https://example.com")

	sub := &model.NewsletterSubscriber{Email: "fan@example.com", UnsubscribeToken: "tok-1"}
	if err := m.SendWelcome(context.Background(), sub); err != nil {
		t.Fatalf("SendWelcome: %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("provider received %d mails, want 1", len(*sent))
	}
	mail := (*sent)[0]
	if mail.To[0] != "fan@example.com" || mail.From != "news@example.com" {
		t.Errorf("addressing = to %v from %s", mail.To, mail.From)
	}
	if !strings.Contains(mail.HTML, "/api/newsletter/unsubscribe?token=tok-1") {
		t.Errorf("welcome body lacks personal unsubscribe link: %s", mail.HTML)
	}
}

func TestBroadcastLineupSkipsFailures(t *testing.T) {
	srv, sent := mailProvider(t, "dead@example.com")
	defer srv.Close()
	m := NewMailer(srv.URL, "key-123", "news@example.com", "https://example.com")

	event := &model.Event{
		Title:     "Summer Closing",
		TitleSlug: "Summer-Closing",
		Date:      time.Date(2026, 9, 12, 22, 0, 0, 0, time.UTC),
		Location:  "Warehouse 9",
		Lineup: []model.EventArtist{
			{ArtistNickname: "Volt", IsHeadliner: true},
			{ArtistNickname: "Nova"},
		},
	}
	subs := []model.NewsletterSubscriber{
		{Email: "a@example.com", Status: model.SubscriberActive, UnsubscribeToken: "tok-a"},
		{Email: "dead@example.com", Status: model.SubscriberActive, UnsubscribeToken: "tok-d"},
		{Email: "gone@example.com", Status: model.SubscriberUnsubscribed, UnsubscribeToken: "tok-g"},
		{Email: "b@example.com", Status: model.SubscriberActive, UnsubscribeToken: "tok-b"},
	}

	sentN, failedN := m.BroadcastLineup(context.Background(), event, subs)
	if sentN != 2 || failedN != 1 {
		t.Fatalf("sent=%d failed=%d, want 2 and 1", sentN, failedN)
	}
	if len(*sent) != 2 {
		t.Fatalf("provider received %d mails, want 2", len(*sent))
	}

	first := (*sent)[0]
	if !strings.Contains(first.HTML, "Volt") || !strings.Contains(first.HTML, "(headliner)") {
		t.Errorf("broadcast body lacks lineup: %s", first.HTML)
	}
	if !strings.Contains(first.HTML, "token=tok-a") {
		t.Errorf("broadcast body lacks personal unsubscribe token: %s", first.HTML)
	}
	second := (*sent)[1]
	if !strings.Contains(second.HTML, "token=tok-b") {
		t.Errorf("second recipient got the wrong unsubscribe token: %s", second.HTML)
	}
}

func TestMailerDisabled(t *testing.T) {
	m := NewMailer("", "", "news@example.com", "https://example.com")
	if m.Enabled() {
		t.Fatal("mailer reports enabled without endpoint and key")
	}
	sub := &model.NewsletterSubscriber{Email: "fan@example.com"}
	if err := m.SendWelcome(context.Background(), sub); err == nil {
		t.Error("SendWelcome succeeded without a configured provider")
	}
}
