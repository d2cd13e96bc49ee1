package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"backline/logger"
	"backline/model"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<p>Welcome aboard.</p>
<p>You are now on the list and will hear about new shows and lineups first.</p>
<p><a href="{{.UnsubscribeURL}}">Unsubscribe</a></p>
`))

var unsubscribedTmpl = template.Must(template.New("unsubscribed").Parse(`
<p>You have been removed from the list.</p>
<p>Changed your mind? You can sign up again on the site any time.</p>
`))

var lineupTmpl = template.Must(template.New("lineup").Parse(`
<h2>{{.Event.Title}}</h2>
<p>{{.Event.Date.Format "Monday, 2 January 2006"}}{{if .Event.Location}} &middot; {{.Event.Location}}{{end}}</p>
{{if .Event.Description}}<p>{{.Event.Description}}</p>{{end}}
<ul>
{{range .Lineup}}<li>{{.ArtistNickname}}{{if .IsHeadliner}} (headliner){{end}}</li>
{{end}}</ul>
<p><a href="{{.EventURL}}">Full details</a></p>
<p><a href="{{.UnsubscribeURL}}">Unsubscribe</a></p>
`))

// Mailer sends transactional mail through an HTTP provider API.
type Mailer struct {
	http     *http.Client
	endpoint string
	apiKey   string
	from     string
	siteBase string
}

// NewMailer wires a mailer against the provider endpoint.
func NewMailer(endpoint, apiKey, from, siteBase string) *Mailer {
	return &Mailer{
		http:     &http.Client{Timeout: 10 * time.Second},
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		siteBase: siteBase,
	}
}

// Enabled reports whether the provider is configured. Mail is optional in
// development setups; callers skip sending when it is off.
func (m *Mailer) Enabled() bool {
	return m.endpoint != "" && m.apiKey != ""
}

func (m *Mailer) unsubscribeURL(token string) string {
	return m.siteBase + "/api/newsletter/unsubscribe?token=" + url.QueryEscape(token)
}

// SendWelcome mails a signup confirmation with the personal unsubscribe link.
func (m *Mailer) SendWelcome(ctx context.Context, sub *model.NewsletterSubscriber) error {
	var body bytes.Buffer
	if err := welcomeTmpl.Execute(&body, map[string]string{
		"UnsubscribeURL": m.unsubscribeURL(sub.UnsubscribeToken),
	}); err != nil {
		return err
	}
	return m.send(ctx, sub.Email, "Welcome to the newsletter", body.String())
}

// SendUnsubscribed mails a confirmation that the address was removed.
func (m *Mailer) SendUnsubscribed(ctx context.Context, email string) error {
	var body bytes.Buffer
	if err := unsubscribedTmpl.Execute(&body, nil); err != nil {
		return err
	}
	return m.send(ctx, email, "You are unsubscribed", body.String())
}

// BroadcastLineup mails the event lineup to every active subscriber, each
// with their own unsubscribe link. Failed sends are logged and skipped so one
// dead address cannot stall the rest of the list; the number of failures is
// returned alongside the successes.
func (m *Mailer) BroadcastLineup(ctx context.Context, event *model.Event, subs []model.NewsletterSubscriber) (sent, failed int) {
	subject := "Lineup announced: " + event.Title
	for i := range subs {
		sub := &subs[i]
		if sub.Status != model.SubscriberActive {
			continue
		}
		var body bytes.Buffer
		err := lineupTmpl.Execute(&body, map[string]interface{}{
			"Event":          event,
			"Lineup":         event.Lineup,
			"EventURL":       m.siteBase + "/events/" + url.PathEscape(event.TitleSlug),
			"UnsubscribeURL": m.unsubscribeURL(sub.UnsubscribeToken),
		})
		if err == nil {
			err = m.send(ctx, sub.Email, subject, body.String())
		}
		if err != nil {
			failed++
			logger.Warn("Newsletter send failed",
				logger.String("email", sub.Email),
				logger.ErrorField(err))
			continue
		}
		sent++
	}
	logger.Info("Lineup broadcast finished",
		logger.String("event", event.Title),
		logger.Int("sent", sent),
		logger.Int("failed", failed))
	return sent, failed
}

func (m *Mailer) send(ctx context.Context, to, subject, html string) error {
	if !m.Enabled() {
		return fmt.Errorf("mail provider is not configured")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"from":    m.from,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("mail provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}
	return nil
}
