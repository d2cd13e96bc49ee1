package server

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"backline/config"
	"backline/logger"
	"backline/storage"
)

// StaticHandler streams bucket objects under /static/. Canonical asset names
// are stable across replacements, so clients only get a short cache window.
func StaticHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objectPath := strings.TrimPrefix(r.URL.Path, "/static/")
		client := storage.GetMinioClient()
		if client == nil {
			writeError(w, http.StatusInternalServerError, "Object storage not available")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		object, err := client.GetObject(ctx, cfg.MinioBucket, objectPath, minio.GetObjectOptions{})
		if err != nil {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		defer object.Close()

		stat, err := object.Stat()
		if err != nil {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}

		contentType := stat.ContentType
		if contentType == "" || contentType == "application/octet-stream" {
			if byExt := mime.TypeByExtension(filepath.Ext(objectPath)); byExt != "" {
				contentType = byExt
			} else {
				contentType = "application/octet-stream"
			}
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")

		if _, err := io.Copy(w, object); err != nil {
			logger.Warn("Error serving object",
				logger.String("path", objectPath),
				logger.ErrorField(err))
		}
	}
}
