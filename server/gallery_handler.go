package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// GetGalleryHandler returns one page of an event's photo gallery from the
// external image host. An unreachable host yields an empty page, never an
// error, so the public site keeps rendering.
func (h *APIHandler) GetGalleryHandler(w http.ResponseWriter, r *http.Request) {
	eventTitle := mux.Vars(r)["eventTitle"]
	if eventTitle == "" {
		writeError(w, http.StatusBadRequest, "An event title is required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	result := h.gallery.FetchPage(r.Context(), eventTitle, page, pageSize)
	writeJSON(w, http.StatusOK, result)
}
