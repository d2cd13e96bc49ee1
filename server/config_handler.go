package server

import (
	"encoding/json"
	"net/http"

	"backline/cache"
	"backline/logger"
)

// GetConfigHandler returns the public site configuration map, served from
// the short-lived cache when warm.
func (h *APIHandler) GetConfigHandler(w http.ResponseWriter, r *http.Request) {
	if values, ok := cache.GetSiteConfig(r.Context()); ok {
		writeJSON(w, http.StatusOK, values)
		return
	}

	values, err := h.siteConfigRepo.GetAll(r.Context())
	if err != nil {
		logger.Error("Failed to load site config", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	cache.SetSiteConfig(r.Context(), values)
	writeJSON(w, http.StatusOK, values)
}

// UpdateConfigHandler upserts site configuration keys, last write wins, and
// drops the cache so the public site picks the change up.
func (h *APIHandler) UpdateConfigHandler(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(values) == 0 {
		writeError(w, http.StatusBadRequest, "No configuration values given")
		return
	}

	if err := h.siteConfigRepo.UpsertMany(r.Context(), values); err != nil {
		logger.Error("Failed to update site config", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	cache.InvalidateSiteConfig(r.Context())

	logger.Info("Site config updated",
		logger.Int("keys", len(values)),
		logger.String("by", UsernameFromContext(r.Context())))

	fresh, err := h.siteConfigRepo.GetAll(r.Context())
	if err != nil {
		logger.Error("Failed to reload site config", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, fresh)
}
