package server

import (
	"net/http"

	"backline/core/media"
	"backline/logger"
	"backline/model"
)

// eventView is an event row with its derived asset link.
type eventView struct {
	*model.Event
	ImageURL string `json:"imageUrl,omitempty"`
}

func (h *APIHandler) eventView(e *model.Event) eventView {
	v := eventView{Event: e}
	if e.ImageFile != "" {
		v.ImageURL = h.media.AssetURL(media.EventDir(e.TitleSlug) + "/" + e.ImageFile)
	}
	return v
}

// GetEventsHandler lists events, newest first, or upcoming ones with
// ?upcoming=true.
func (h *APIHandler) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	upcomingOnly := r.URL.Query().Get("upcoming") == "true"
	events, err := h.eventRepo.GetAllEvents(r.Context(), upcomingOnly)
	if err != nil {
		logger.Error("Failed to list events", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, h.eventView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

// GetEventHandler returns one event with its lineup.
func (h *APIHandler) GetEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.eventRepo.GetEventByID(r.Context(), id)
	if err != nil {
		logger.Error("Failed to load event", logger.Int64("id", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}

	lineup, err := h.eventRepo.GetLineup(r.Context(), id)
	if err != nil {
		logger.Error("Failed to load lineup", logger.Int64("id", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	e.Lineup = lineup
	writeJSON(w, http.StatusOK, h.eventView(e))
}

// CreateEventHandler creates an event, optionally with a hero image and an
// initial lineup.
func (h *APIHandler) CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	var e model.Event
	if err := decodePayload(r, &e); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	e.ID = 0

	image, file, err := formUpload(r, "image")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if file != nil {
		defer file.Close()
	}

	if err := h.media.SaveEvent(r.Context(), &e, image); err != nil {
		writeMediaError(w, err)
		return
	}

	logger.Info("Event created",
		logger.Int64("id", e.ID),
		logger.String("slug", e.TitleSlug),
		logger.String("by", UsernameFromContext(r.Context())))
	writeJSON(w, http.StatusCreated, h.eventView(&e))
}

// UpdateEventHandler updates an event. A retitle relocates its asset
// directory; a non-nil lineup in the payload replaces the stored lineup.
func (h *APIHandler) UpdateEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var e model.Event
	if err := decodePayload(r, &e); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	e.ID = id

	image, file, err := formUpload(r, "image")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if file != nil {
		defer file.Close()
	}

	if err := h.media.SaveEvent(r.Context(), &e, image); err != nil {
		writeMediaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.eventView(&e))
}

// DeleteEventHandler deletes an event: lineup, then assets, then the row.
func (h *APIHandler) DeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.media.DeleteEvent(r.Context(), id); err != nil {
		writeMediaError(w, err)
		return
	}
	logger.Info("Event deleted",
		logger.Int64("id", id),
		logger.String("by", UsernameFromContext(r.Context())))
	w.WriteHeader(http.StatusNoContent)
}
