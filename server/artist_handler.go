package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"backline/core/media"
	"backline/logger"
	"backline/model"
)

// artistView is an artist row with its derived asset link.
type artistView struct {
	*model.Artist
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func (h *APIHandler) artistView(a *model.Artist) artistView {
	v := artistView{Artist: a}
	if a.AvatarFile != "" {
		v.AvatarURL = h.media.AssetURL(media.ArtistDir(a.NormalizedNickname) + "/" + a.AvatarFile)
	}
	return v
}

// writeMediaError maps media lifecycle errors onto HTTP statuses.
func writeMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, media.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, media.ErrEmptySlug):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, media.ErrArtistReferenced):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, media.ErrSlugTaken):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("Media operation failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// GetArtistsHandler lists artists in display order. The public site gets
// active artists; the back-office passes ?all=true for the full roster.
func (h *APIHandler) GetArtistsHandler(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	artists, err := h.artistRepo.GetAllArtists(r.Context(), activeOnly)
	if err != nil {
		logger.Error("Failed to list artists", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	views := make([]artistView, 0, len(artists))
	for _, a := range artists {
		views = append(views, h.artistView(a))
	}
	writeJSON(w, http.StatusOK, views)
}

// GetArtistHandler returns one artist.
func (h *APIHandler) GetArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.artistRepo.GetArtistByID(r.Context(), id)
	if err != nil {
		logger.Error("Failed to load artist", logger.Int64("id", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "Artist not found")
		return
	}
	writeJSON(w, http.StatusOK, h.artistView(a))
}

// CreateArtistHandler creates an artist from a JSON body or a multipart form
// with an optional avatar file.
func (h *APIHandler) CreateArtistHandler(w http.ResponseWriter, r *http.Request) {
	var a model.Artist
	if err := decodePayload(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a.ID = 0

	avatar, file, err := formUpload(r, "avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if file != nil {
		defer file.Close()
	}

	if err := h.media.SaveArtist(r.Context(), &a, avatar); err != nil {
		writeMediaError(w, err)
		return
	}

	logger.Info("Artist created",
		logger.Int64("id", a.ID),
		logger.String("slug", a.NormalizedNickname),
		logger.String("by", UsernameFromContext(r.Context())))
	writeJSON(w, http.StatusCreated, h.artistView(&a))
}

// UpdateArtistHandler updates an artist, moving its asset directory when the
// nickname's slug changes.
func (h *APIHandler) UpdateArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var a model.Artist
	if err := decodePayload(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a.ID = id

	avatar, file, err := formUpload(r, "avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if file != nil {
		defer file.Close()
	}

	if err := h.media.SaveArtist(r.Context(), &a, avatar); err != nil {
		writeMediaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.artistView(&a))
}

// DeleteArtistHandler deletes an artist and its stored files. Referenced
// artists are refused with a conflict.
func (h *APIHandler) DeleteArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.media.DeleteArtist(r.Context(), id); err != nil {
		writeMediaError(w, err)
		return
	}
	logger.Info("Artist deleted",
		logger.Int64("id", id),
		logger.String("by", UsernameFromContext(r.Context())))
	w.WriteHeader(http.StatusNoContent)
}

// ReorderArtistsHandler moves an artist between display positions and
// returns the reordered roster.
func (h *APIHandler) ReorderArtistsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.artistRepo.ReorderArtists(r.Context(), req.From, req.To); err != nil {
		logger.Error("Failed to reorder artists", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	artists, err := h.artistRepo.GetAllArtists(r.Context(), false)
	if err != nil {
		logger.Error("Failed to list artists after reorder", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	views := make([]artistView, 0, len(artists))
	for _, a := range artists {
		views = append(views, h.artistView(a))
	}
	writeJSON(w, http.StatusOK, views)
}
