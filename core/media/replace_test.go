package media

import (
	"context"
	"strings"
	"testing"
)

func newUpload(content, ext, contentType string) Upload {
	return Upload{
		Reader:      strings.NewReader(content),
		Size:        int64(len(content)),
		ContentType: contentType,
		Ext:         ext,
	}
}

func TestReplaceSwapsExtension(t *testing.T) {
	var log []string
	store := newFakeStore(&log)
	store.objects["artist/Dj-Pepe/avatar.png"] = []byte("old")

	r := NewReplacer(store)
	final, err := r.Replace(context.Background(), "artist/Dj-Pepe", AvatarPrefix, newUpload("new", ".jpg", "image/jpeg"))
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	if final != "artist/Dj-Pepe/avatar.jpg" {
		t.Errorf("final path = %q, want artist/Dj-Pepe/avatar.jpg", final)
	}

	keys := store.keysWithPrefix("artist/Dj-Pepe/avatar.")
	if len(keys) != 1 || keys[0] != "artist/Dj-Pepe/avatar.jpg" {
		t.Errorf("canonical keys = %v, want exactly [artist/Dj-Pepe/avatar.jpg]", keys)
	}
	if store.hasTempKey() {
		t.Error("temp object left behind after successful replace")
	}
	if string(store.objects["artist/Dj-Pepe/avatar.jpg"]) != "new" {
		t.Error("final object does not carry the new content")
	}
}

func TestReplaceFirstUpload(t *testing.T) {
	store := newFakeStore(nil)

	r := NewReplacer(store)
	final, err := r.Replace(context.Background(), "artist/Volt", AvatarPrefix, newUpload("avatar", ".png", "image/png"))
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	if final != "artist/Volt/avatar.png" {
		t.Errorf("final path = %q, want artist/Volt/avatar.png", final)
	}
	if len(store.objects) != 1 {
		t.Errorf("store holds %d objects, want 1", len(store.objects))
	}
}

func TestReplaceDeleteOldFailureKeepsTemp(t *testing.T) {
	store := newFakeStore(nil)
	store.objects["artist/Dj-Pepe/avatar.png"] = []byte("old")
	store.failRemove["artist/Dj-Pepe/avatar.png"] = true

	r := NewReplacer(store)
	_, err := r.Replace(context.Background(), "artist/Dj-Pepe", AvatarPrefix, newUpload("new", ".jpg", "image/jpeg"))
	if err == nil {
		t.Fatal("Replace succeeded despite remove failure")
	}
	if !strings.Contains(err.Error(), StateDeletingOld.String()) {
		t.Errorf("error %q does not name the %s step", err, StateDeletingOld)
	}

	// The temp object must survive and the final name must not exist: no
	// silent data loss disguised as success.
	if !store.hasTempKey() {
		t.Error("temp object missing after aborted replace")
	}
	if _, ok := store.objects["artist/Dj-Pepe/avatar.jpg"]; ok {
		t.Error("final object exists despite aborted replace")
	}
	if _, ok := store.objects["artist/Dj-Pepe/avatar.png"]; !ok {
		t.Error("previous object vanished despite failed delete")
	}
}

func TestReplaceRenameFailure(t *testing.T) {
	store := newFakeStore(nil)
	store.failMove = true

	r := NewReplacer(store)
	_, err := r.Replace(context.Background(), "artist/Volt", AvatarPrefix, newUpload("new", ".jpg", "image/jpeg"))
	if err == nil {
		t.Fatal("Replace succeeded despite move failure")
	}
	if !strings.Contains(err.Error(), StateRenaming.String()) {
		t.Errorf("error %q does not name the %s step", err, StateRenaming)
	}
	if !store.hasTempKey() {
		t.Error("temp object missing after aborted rename")
	}
	if _, ok := store.objects["artist/Volt/avatar.jpg"]; ok {
		t.Error("final object exists despite aborted rename")
	}
}

func TestReplaceUploadFailureLeavesNothing(t *testing.T) {
	store := newFakeStore(nil)
	store.failUploads = true

	r := NewReplacer(store)
	_, err := r.Replace(context.Background(), "artist/Volt", AvatarPrefix, newUpload("new", ".jpg", "image/jpeg"))
	if err == nil {
		t.Fatal("Replace succeeded despite upload failure")
	}
	if !strings.Contains(err.Error(), StateUploading.String()) {
		t.Errorf("error %q does not name the %s step", err, StateUploading)
	}
	if len(store.objects) != 0 {
		t.Errorf("store holds %d objects after failed upload, want 0", len(store.objects))
	}
}

func TestReplaceIgnoresTempNames(t *testing.T) {
	store := newFakeStore(nil)
	// An orphan from an earlier failed run must not be mistaken for the
	// canonical asset.
	store.objects["artist/Volt/tmp-123456789.png"] = []byte("orphan")

	r := NewReplacer(store)
	final, err := r.Replace(context.Background(), "artist/Volt", AvatarPrefix, newUpload("new", ".png", "image/png"))
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	if final != "artist/Volt/avatar.png" {
		t.Errorf("final path = %q, want artist/Volt/avatar.png", final)
	}
	if _, ok := store.objects["artist/Volt/tmp-123456789.png"]; !ok {
		t.Error("pre-existing orphan was deleted by an unrelated replace")
	}
}
