// Package media owns the asset lifecycle: canonical storage paths, the
// upload-rename-replace sequence, and the synchronization between database
// rows and the objects that belong to them.
package media

import "strings"

// IntroVideoPath is the single well-known location of the site intro video.
const IntroVideoPath = "videos/intro.mp4"

// Canonical filename prefixes. A prefix identifies an asset's role
// independent of its extension: replacing avatar.png with a .jpg upload
// still matches "avatar.".
const (
	AvatarPrefix = "avatar."
	ImagePrefix  = "image."
)

// ArtistDir returns the storage directory for an artist slug.
func ArtistDir(artistSlug string) string {
	return "artist/" + artistSlug
}

// EventDir returns the storage directory for an event title slug.
func EventDir(titleSlug string) string {
	return "images/events/" + titleSlug
}

// AudioPrefix returns the canonical prefix of a track's audio file.
func AudioPrefix(titleSlug string) string {
	return titleSlug + "."
}

// ArtworkPrefix returns the canonical prefix of a track's artwork file.
func ArtworkPrefix(titleSlug string) string {
	return titleSlug + "-icon."
}

// AssetName combines a canonical prefix with a file extension into the final
// object name, e.g. AssetName("avatar.", ".jpg") == "avatar.jpg".
func AssetName(prefix, ext string) string {
	return strings.TrimSuffix(prefix, ".") + normalizeExt(ext)
}

func normalizeExt(ext string) string {
	if ext == "" {
		return ".bin"
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
