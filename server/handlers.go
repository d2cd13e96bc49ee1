package server

import (
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"

	"backline/config"
	"backline/core/gallery"
	"backline/core/mailer"
	"backline/core/media"
	"backline/repository"
)

// APIHandler carries the wiring every route handler needs.
type APIHandler struct {
	artistRepo     repository.ArtistRepository
	eventRepo      repository.EventRepository
	trackRepo      repository.TrackRepository
	userRepo       repository.UserRepository
	newsletterRepo repository.NewsletterRepository
	siteConfigRepo repository.SiteConfigRepository
	media          *media.Manager
	gallery        *gallery.Client
	mailer         *mailer.Mailer
	cfg            *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	artistRepo repository.ArtistRepository,
	eventRepo repository.EventRepository,
	trackRepo repository.TrackRepository,
	userRepo repository.UserRepository,
	newsletterRepo repository.NewsletterRepository,
	siteConfigRepo repository.SiteConfigRepository,
	mediaManager *media.Manager,
	galleryClient *gallery.Client,
	mail *mailer.Mailer,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		artistRepo:     artistRepo,
		eventRepo:      eventRepo,
		trackRepo:      trackRepo,
		userRepo:       userRepo,
		newsletterRepo: newsletterRepo,
		siteConfigRepo: siteConfigRepo,
		media:          mediaManager,
		gallery:        galleryClient,
		mailer:         mail,
		cfg:            cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// pathID extracts the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	return parseID(mux.Vars(r)["id"])
}

// maxUploadSize caps multipart bodies; audio files are the largest uploads.
const maxUploadSize = 200 << 20

// decodePayload reads the request's entity payload. Mutating endpoints
// accept either a plain JSON body or a multipart form with a "payload" JSON
// field next to the file parts.
func decodePayload(r *http.Request, dst interface{}) error {
	mediatype, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediatype == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return fmt.Errorf("failed to parse multipart form: %w", err)
		}
		raw := r.FormValue("payload")
		if raw == "" {
			return fmt.Errorf("multipart form is missing the payload field")
		}
		return json.Unmarshal([]byte(raw), dst)
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

// formUpload returns the named file part as a media.Upload, or nil when the
// part is absent. The caller owns closing the returned file via the closer.
func formUpload(r *http.Request, field string) (*media.Upload, multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read %s upload: %w", field, err)
	}
	up := &media.Upload{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Ext:         filepath.Ext(header.Filename),
	}
	return up, file, nil
}
