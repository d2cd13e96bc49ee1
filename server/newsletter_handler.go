package server

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/google/uuid"

	"backline/logger"
	"backline/model"
)

// SubscribeHandler signs an email address up for the newsletter. Resubscribing
// a previously unsubscribed address reactivates it; an already active address
// is acknowledged without a new row.
func (h *APIHandler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	email := addr.Address

	existing, err := h.newsletterRepo.GetSubscriberByEmail(r.Context(), email)
	if err != nil {
		logger.Error("Subscriber lookup failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if existing != nil {
		if existing.Status == model.SubscriberActive {
			writeJSON(w, http.StatusOK, map[string]string{"status": "already subscribed"})
			return
		}
		if err := h.newsletterRepo.UpdateSubscriberStatus(r.Context(), existing.ID, model.SubscriberActive); err != nil {
			logger.Error("Failed to reactivate subscriber", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "subscribed"})
		return
	}

	sub := &model.NewsletterSubscriber{
		Email:            email,
		Status:           model.SubscriberActive,
		UnsubscribeToken: uuid.NewString(),
	}
	if _, err := h.newsletterRepo.CreateSubscriber(r.Context(), sub); err != nil {
		logger.Error("Failed to create subscriber", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if h.mailer.Enabled() {
		if err := h.mailer.SendWelcome(r.Context(), sub); err != nil {
			// The signup stands even when the welcome mail does not go out.
			logger.Warn("Welcome mail failed", logger.ErrorField(err))
		}
	}

	logger.Info("Newsletter signup", logger.String("email", email))
	writeJSON(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

// UnsubscribeHandler removes a subscriber via their personal token link.
func (h *APIHandler) UnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "A token is required")
		return
	}

	sub, err := h.newsletterRepo.GetSubscriberByToken(r.Context(), token)
	if err != nil {
		logger.Error("Subscriber lookup failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "Unknown unsubscribe token")
		return
	}

	if sub.Status != model.SubscriberUnsubscribed {
		if err := h.newsletterRepo.UpdateSubscriberStatus(r.Context(), sub.ID, model.SubscriberUnsubscribed); err != nil {
			logger.Error("Failed to unsubscribe", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if h.mailer.Enabled() {
			if err := h.mailer.SendUnsubscribed(r.Context(), sub.Email); err != nil {
				logger.Warn("Unsubscribe confirmation mail failed", logger.ErrorField(err))
			}
		}
		logger.Info("Newsletter unsubscribe", logger.String("email", sub.Email))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}

// GetSubscribersHandler lists subscribers for the back-office, optionally
// filtered with ?status=.
func (h *APIHandler) GetSubscribersHandler(w http.ResponseWriter, r *http.Request) {
	subs, err := h.newsletterRepo.GetSubscribers(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		logger.Error("Failed to list subscribers", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// BroadcastHandler mails an event's lineup to all active subscribers.
func (h *APIHandler) BroadcastHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventID int64 `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.mailer.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "Mail provider is not configured")
		return
	}

	event, err := h.eventRepo.GetEventByID(r.Context(), req.EventID)
	if err != nil {
		logger.Error("Failed to load event for broadcast", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	lineup, err := h.eventRepo.GetLineup(r.Context(), event.ID)
	if err != nil {
		logger.Error("Failed to load lineup for broadcast", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	event.Lineup = lineup

	subs, err := h.newsletterRepo.GetSubscribers(r.Context(), model.SubscriberActive)
	if err != nil {
		logger.Error("Failed to list subscribers for broadcast", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	sent, failed := h.mailer.BroadcastLineup(r.Context(), event, subs)
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent, "failed": failed})
}
