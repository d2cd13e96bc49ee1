package server

import (
	"context"
	"io"
	"testing"

	"backline/core/media"
	"backline/model"
)

type stubStore struct{}

func (stubStore) Upload(context.Context, string, io.Reader, int64, string) error { return nil }
func (stubStore) List(context.Context, string) ([]string, error)                 { return nil, nil }
func (stubStore) Remove(context.Context, string) error                           { return nil }
func (stubStore) Move(context.Context, string, string) error                     { return nil }
func (stubStore) PublicURL(objectPath string) string                             { return "/static/" + objectPath }

func newViewHandler() *APIHandler {
	return &APIHandler{media: media.NewManager(stubStore{}, nil, nil, nil)}
}

func TestTrackViewAssetURLs(t *testing.T) {
	h := newViewHandler()
	tr := &model.Track{ID: 1, Title: "Night Drive", AudioFile: "Night-Drive.mp3", ArtworkFile: "Night-Drive-icon.jpg"}

	v := h.trackView(tr, "Volt")
	if v.AudioURL != "/static/artist/Volt/Night-Drive.mp3" {
		t.Errorf("AudioURL = %q", v.AudioURL)
	}
	if v.ArtworkURL != "/static/artist/Volt/Night-Drive-icon.jpg" {
		t.Errorf("ArtworkURL = %q", v.ArtworkURL)
	}
}

func TestTrackViewMissingOwnerSkipsURLs(t *testing.T) {
	h := newViewHandler()
	tr := &model.Track{ID: 1, Title: "Night Drive", AudioFile: "Night-Drive.mp3", ArtworkFile: "Night-Drive-icon.jpg"}

	v := h.trackView(tr, "")
	if v.AudioURL != "" || v.ArtworkURL != "" {
		t.Errorf("urls = %q, %q; want both empty when the owner slug is unknown", v.AudioURL, v.ArtworkURL)
	}
}
