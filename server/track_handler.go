package server

import (
	"net/http"

	"backline/core/media"
	"backline/logger"
	"backline/model"
)

// trackView is a track row with its derived asset links.
type trackView struct {
	*model.Track
	AudioURL   string `json:"audioUrl,omitempty"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
}

func (h *APIHandler) trackView(t *model.Track, artistSlug string) trackView {
	v := trackView{Track: t}
	if artistSlug == "" {
		// Without the owner slug no valid object path can be built.
		return v
	}
	dir := media.ArtistDir(artistSlug)
	if t.AudioFile != "" {
		v.AudioURL = h.media.AssetURL(dir + "/" + t.AudioFile)
	}
	if t.ArtworkFile != "" {
		v.ArtworkURL = h.media.AssetURL(dir + "/" + t.ArtworkFile)
	}
	return v
}

// trackViews resolves owner slugs once per artist for a batch of tracks.
func (h *APIHandler) trackViews(r *http.Request, tracks []*model.Track) ([]trackView, error) {
	slugs := make(map[int64]string)
	views := make([]trackView, 0, len(tracks))
	for _, t := range tracks {
		slug, ok := slugs[t.ArtistID]
		if !ok {
			owner, err := h.artistRepo.GetArtistByID(r.Context(), t.ArtistID)
			if err != nil {
				return nil, err
			}
			if owner != nil {
				slug = owner.NormalizedNickname
			}
			slugs[t.ArtistID] = slug
		}
		views = append(views, h.trackView(t, slug))
	}
	return views, nil
}

// GetTracksHandler lists tracks, optionally for one artist.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	var tracks []*model.Track
	var err error
	if raw := r.URL.Query().Get("artistId"); raw != "" {
		id, perr := parseID(raw)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		tracks, err = h.trackRepo.GetTracksByArtist(r.Context(), id)
	} else {
		tracks, err = h.trackRepo.GetAllTracks(r.Context())
	}
	if err != nil {
		logger.Error("Failed to list tracks", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	views, err := h.trackViews(r, tracks)
	if err != nil {
		logger.Error("Failed to resolve track owners", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GetFeaturedTrackHandler returns the single featured track, or 404 when
// none is set.
func (h *APIHandler) GetFeaturedTrackHandler(w http.ResponseWriter, r *http.Request) {
	t, err := h.trackRepo.GetFeaturedTrack(r.Context())
	if err != nil {
		logger.Error("Failed to load featured track", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "No featured track")
		return
	}

	owner, err := h.artistRepo.GetArtistByID(r.Context(), t.ArtistID)
	if err != nil || owner == nil {
		logger.Error("Failed to resolve featured track owner", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, h.trackView(t, owner.NormalizedNickname))
}

// CreateTrackHandler creates a track from a multipart form: payload JSON,
// required audio part, optional artwork part.
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var t model.Track
	if err := decodePayload(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	t.ID = 0

	audio, audioFile, err := formUpload(r, "audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if audioFile != nil {
		defer audioFile.Close()
	}
	artwork, artFile, err := formUpload(r, "artwork")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if artFile != nil {
		defer artFile.Close()
	}

	if audio == nil {
		writeError(w, http.StatusBadRequest, "An audio file is required")
		return
	}

	if err := h.media.SaveTrack(r.Context(), &t, audio, artwork); err != nil {
		writeMediaError(w, err)
		return
	}

	owner, _ := h.artistRepo.GetArtistByID(r.Context(), t.ArtistID)
	slug := ""
	if owner != nil {
		slug = owner.NormalizedNickname
	}
	logger.Info("Track created",
		logger.Int64("id", t.ID),
		logger.String("slug", t.TitleSlug),
		logger.String("by", UsernameFromContext(r.Context())))
	writeJSON(w, http.StatusCreated, h.trackView(&t, slug))
}

// UpdateTrackHandler updates a track, relocating its files on a retitle or
// owner change before the row is touched.
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var t model.Track
	if err := decodePayload(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	t.ID = id

	audio, audioFile, err := formUpload(r, "audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if audioFile != nil {
		defer audioFile.Close()
	}
	artwork, artFile, err := formUpload(r, "artwork")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if artFile != nil {
		defer artFile.Close()
	}

	if err := h.media.SaveTrack(r.Context(), &t, audio, artwork); err != nil {
		writeMediaError(w, err)
		return
	}

	owner, _ := h.artistRepo.GetArtistByID(r.Context(), t.ArtistID)
	slug := ""
	if owner != nil {
		slug = owner.NormalizedNickname
	}
	writeJSON(w, http.StatusOK, h.trackView(&t, slug))
}

// DeleteTrackHandler deletes a track and its stored files.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.media.DeleteTrack(r.Context(), id); err != nil {
		writeMediaError(w, err)
		return
	}
	logger.Info("Track deleted",
		logger.Int64("id", id),
		logger.String("by", UsernameFromContext(r.Context())))
	w.WriteHeader(http.StatusNoContent)
}

// FeatureTrackHandler marks one track as the featured one.
func (h *APIHandler) FeatureTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.trackRepo.SetFeatured(r.Context(), id); err != nil {
		logger.Error("Failed to set featured track", logger.Int64("id", id), logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Info("Featured track changed",
		logger.Int64("id", id),
		logger.String("by", UsernameFromContext(r.Context())))
	w.WriteHeader(http.StatusNoContent)
}
