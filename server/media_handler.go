package server

import (
	"net/http"

	"backline/logger"
)

// UploadIntroHandler replaces the site intro video. Whatever the uploaded
// file was called, it lands under the fixed intro path.
func (h *APIHandler) UploadIntroHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	up, file, err := formUpload(r, "video")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if up == nil {
		writeError(w, http.StatusBadRequest, "A video file is required")
		return
	}
	defer file.Close()

	finalPath, err := h.media.ReplaceIntroVideo(r.Context(), *up)
	if err != nil {
		writeMediaError(w, err)
		return
	}

	logger.Info("Intro video replaced",
		logger.String("path", finalPath),
		logger.String("by", UsernameFromContext(r.Context())))
	writeJSON(w, http.StatusOK, map[string]string{
		"path": finalPath,
		"url":  h.media.AssetURL(finalPath),
	})
}
