package media

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"backline/logger"
	"backline/storage"
)

// ReplaceState tracks where a replace sequence is, so a failure can name the
// step it died in.
type ReplaceState int

const (
	StateIdle ReplaceState = iota
	StateUploading
	StateListingExisting
	StateDeletingOld
	StateRenaming
	StateDone
	StateFailed
)

func (s ReplaceState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploading:
		return "uploading"
	case StateListingExisting:
		return "listing-existing"
	case StateDeletingOld:
		return "deleting-old"
	case StateRenaming:
		return "renaming"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Upload is a pending binary with its metadata.
type Upload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Ext         string
}

// Replacer executes the upload-rename-replace sequence against an object
// store:
//
//	upload temp -> list existing -> delete old (0..1) -> rename temp to final
//
// The new binary is never written over the canonical name directly, so the
// asset is present under either its old or its new name at every point a
// step can fail. There is no rollback: a failure after the temp upload
// leaves the temp object orphaned (swept by the storage prune command).
type Replacer struct {
	store storage.ObjectStore
	now   func() time.Time
}

// NewReplacer creates a Replacer over the given store.
func NewReplacer(store storage.ObjectStore) *Replacer {
	return &Replacer{store: store, now: time.Now}
}

// Replace runs the sequence in dir for the asset class identified by
// canonicalPrefix and returns the final object path. The final name takes
// the upload's extension; the prefix match on the old file is
// extension-agnostic.
func (r *Replacer) Replace(ctx context.Context, dir, canonicalPrefix string, up Upload) (string, error) {
	state := StateIdle
	fail := func(err error) (string, error) {
		failed := fmt.Errorf("replace %s/%s: %s: %w", dir, canonicalPrefix, state, err)
		state = StateFailed
		return "", failed
	}

	tempPath := dir + "/" + tempName(r.now(), up.Ext)
	finalPath := dir + "/" + AssetName(canonicalPrefix, up.Ext)

	state = StateUploading
	if err := r.store.Upload(ctx, tempPath, up.Reader, up.Size, up.ContentType); err != nil {
		return fail(err)
	}

	state = StateListingExisting
	existing, err := r.store.List(ctx, dir+"/"+canonicalPrefix)
	if err != nil {
		return fail(err)
	}

	state = StateDeletingOld
	for _, key := range existing {
		if err := r.store.Remove(ctx, key); err != nil {
			return fail(err)
		}
		logger.Debug("Deleted previous asset", logger.String("key", key))
	}

	state = StateRenaming
	if err := r.store.Move(ctx, tempPath, finalPath); err != nil {
		return fail(err)
	}

	state = StateDone
	logger.Info("Asset replaced", logger.String("path", finalPath))
	return finalPath, nil
}

// tempName builds the timestamped temporary object name. The "tmp-" shape
// keeps temp objects out of canonical prefix matches and findable by the
// prune sweep.
func tempName(t time.Time, ext string) string {
	return "tmp-" + strconv.FormatInt(t.UnixNano(), 10) + normalizeExt(ext)
}

// isTempKey reports whether an object key names a temporary upload.
func isTempKey(key string) bool {
	base := key
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.HasPrefix(base, "tmp-")
}
