package media

import (
	"context"
	"errors"
	"testing"

	"backline/model"
)

type managerFixture struct {
	store   *fakeStore
	artists *fakeArtists
	tracks  *fakeTracks
	events  *fakeEvents
	mgr     *Manager
	log     []string
}

func newManagerFixture() *managerFixture {
	f := &managerFixture{}
	f.store = newFakeStore(&f.log)
	f.artists = newFakeArtists(&f.log)
	f.tracks = newFakeTracks(&f.log)
	f.events = newFakeEvents(&f.log)
	f.mgr = NewManager(f.store, f.artists, f.tracks, f.events)
	return f
}

func (f *managerFixture) addArtist(nickname string) *model.Artist {
	a := &model.Artist{Nickname: nickname, IsActive: true}
	if err := f.mgr.SaveArtist(context.Background(), a, nil); err != nil {
		panic(err)
	}
	return a
}

func indexOf(log []string, entry string) int {
	for i, op := range log {
		if op == entry {
			return i
		}
	}
	return -1
}

func TestSaveArtistDerivesSlug(t *testing.T) {
	f := newManagerFixture()
	a := &model.Artist{Nickname: "Dj Pépé  & Co."}
	if err := f.mgr.SaveArtist(context.Background(), a, nil); err != nil {
		t.Fatalf("SaveArtist: %v", err)
	}
	if a.NormalizedNickname != "Dj-Pepe-Co" {
		t.Errorf("slug = %q, want Dj-Pepe-Co", a.NormalizedNickname)
	}

	if err := f.mgr.SaveArtist(context.Background(), &model.Artist{Nickname: "!!!"}, nil); !errors.Is(err, ErrEmptySlug) {
		t.Errorf("empty slug error = %v, want ErrEmptySlug", err)
	}
}

func TestSaveArtistUploadsAvatar(t *testing.T) {
	f := newManagerFixture()
	a := &model.Artist{Nickname: "Volt"}
	up := newUpload("avatar-bytes", ".png", "image/png")
	if err := f.mgr.SaveArtist(context.Background(), a, &up); err != nil {
		t.Fatalf("SaveArtist: %v", err)
	}
	if a.AvatarFile != "avatar.png" {
		t.Errorf("AvatarFile = %q, want avatar.png", a.AvatarFile)
	}
	if _, ok := f.store.objects["artist/Volt/avatar.png"]; !ok {
		t.Error("avatar object missing from store")
	}
}

func TestSaveArtistRefusesSlugCollision(t *testing.T) {
	f := newManagerFixture()
	a := &model.Artist{Nickname: "Volt"}
	up := newUpload("original-avatar", ".png", "image/png")
	if err := f.mgr.SaveArtist(context.Background(), a, &up); err != nil {
		t.Fatalf("SaveArtist: %v", err)
	}

	// "Völt" normalizes to the same slug as "Volt".
	clash := &model.Artist{Nickname: "Völt"}
	jpg := newUpload("intruder-avatar", ".jpg", "image/jpeg")
	if err := f.mgr.SaveArtist(context.Background(), clash, &jpg); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("SaveArtist collision error = %v, want ErrSlugTaken", err)
	}
	if string(f.store.objects["artist/Volt/avatar.png"]) != "original-avatar" {
		t.Error("existing artist's avatar was overwritten")
	}
	if _, ok := f.store.objects["artist/Volt/avatar.jpg"]; ok {
		t.Error("colliding upload reached the existing artist's directory")
	}
	if len(f.artists.rows) != 1 {
		t.Errorf("artist rows = %d, want 1", len(f.artists.rows))
	}

	// The slug holder itself can still be re-saved.
	a.Bio = "updated"
	if err := f.mgr.SaveArtist(context.Background(), a, nil); err != nil {
		t.Errorf("SaveArtist on the slug holder: %v", err)
	}
}

func TestSaveArtistRenameRefusesSlugCollision(t *testing.T) {
	f := newManagerFixture()
	f.addArtist("Volt")
	f.store.objects["artist/Volt/avatar.png"] = []byte("x")
	b := f.addArtist("Nova")

	b.Nickname = "Völt"
	if err := f.mgr.SaveArtist(context.Background(), b, nil); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("SaveArtist rename collision error = %v, want ErrSlugTaken", err)
	}
	if _, ok := f.store.objects["artist/Volt/avatar.png"]; !ok {
		t.Error("slug holder's directory lost objects on the refused rename")
	}
	if f.artists.rows[b.ID].NormalizedNickname != "Nova" {
		t.Error("row rewritten despite refused rename")
	}
}

func TestSaveArtistRenameMovesDirectory(t *testing.T) {
	f := newManagerFixture()
	a := f.addArtist("Volt")
	f.store.objects["artist/Volt/avatar.png"] = []byte("x")
	f.store.objects["artist/Volt/Night-Drive.mp3"] = []byte("y")

	a.Nickname = "Vôlt Deluxe"
	a.AvatarFile = "avatar.png"
	if err := f.mgr.SaveArtist(context.Background(), a, nil); err != nil {
		t.Fatalf("SaveArtist rename: %v", err)
	}
	if a.NormalizedNickname != "Volt-Deluxe" {
		t.Fatalf("slug = %q, want Volt-Deluxe", a.NormalizedNickname)
	}

	if len(f.store.keysWithPrefix("artist/Volt/")) != 0 {
		t.Error("old directory still holds objects after rename")
	}
	want := []string{"artist/Volt-Deluxe/Night-Drive.mp3", "artist/Volt-Deluxe/avatar.png"}
	got := f.store.keysWithPrefix("artist/Volt-Deluxe/")
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("new directory keys = %v, want %v", got, want)
	}
}

func TestDeleteArtistBlockedWhileReferenced(t *testing.T) {
	f := newManagerFixture()
	a := f.addArtist("Volt")
	f.tracks.rows[1] = &model.Track{ID: 1, ArtistID: a.ID, Title: "Song", TitleSlug: "Song", AudioFile: "Song.mp3"}

	err := f.mgr.DeleteArtist(context.Background(), a.ID)
	if !errors.Is(err, ErrArtistReferenced) {
		t.Fatalf("DeleteArtist error = %v, want ErrArtistReferenced", err)
	}
	if _, ok := f.artists.rows[a.ID]; !ok {
		t.Error("artist row deleted despite reference check failure")
	}

	// Lineup references block the same way.
	delete(f.tracks.rows, 1)
	f.events.lineup[9] = []model.EventArtist{{EventID: 9, ArtistID: a.ID}}
	if err := f.mgr.DeleteArtist(context.Background(), a.ID); !errors.Is(err, ErrArtistReferenced) {
		t.Fatalf("DeleteArtist error = %v, want ErrArtistReferenced", err)
	}
}

func TestDeleteArtistRemovesFilesThenRow(t *testing.T) {
	f := newManagerFixture()
	a := f.addArtist("Volt")
	f.store.objects["artist/Volt/avatar.png"] = []byte("x")

	if err := f.mgr.DeleteArtist(context.Background(), a.ID); err != nil {
		t.Fatalf("DeleteArtist: %v", err)
	}
	if len(f.store.keysWithPrefix("artist/Volt/")) != 0 {
		t.Error("artist directory not emptied")
	}
	if _, ok := f.artists.rows[a.ID]; ok {
		t.Error("artist row still present")
	}

	removeIdx := indexOf(f.log, "remove artist/Volt/avatar.png")
	deleteIdx := indexOf(f.log, "artists.delete 1")
	if removeIdx == -1 || deleteIdx == -1 || removeIdx > deleteIdx {
		t.Errorf("file removal must precede row deletion, log: %v", f.log)
	}
}

func TestSaveTrackCreate(t *testing.T) {
	f := newManagerFixture()
	a := f.addArtist("Volt")

	tr := &model.Track{ArtistID: a.ID, Title: "Night Drive"}
	audio := newUpload("audio", ".mp3", "audio/mpeg")
	artwork := newUpload("art", ".jpg", "image/jpeg")
	if err := f.mgr.SaveTrack(context.Background(), tr, &audio, &artwork); err != nil {
		t.Fatalf("SaveTrack: %v", err)
	}
	if tr.TitleSlug != "Night-Drive" {
		t.Errorf("TitleSlug = %q, want Night-Drive", tr.TitleSlug)
	}
	if tr.AudioFile != "Night-Drive.mp3" || tr.ArtworkFile != "Night-Drive-icon.jpg" {
		t.Errorf("files = %q / %q, want Night-Drive.mp3 / Night-Drive-icon.jpg", tr.AudioFile, tr.ArtworkFile)
	}
	if _, ok := f.store.objects["artist/Volt/Night-Drive.mp3"]; !ok {
		t.Error("audio object missing")
	}

	if err := f.mgr.SaveTrack(context.Background(), &model.Track{ArtistID: a.ID, Title: "No Audio"}, nil, nil); err == nil {
		t.Error("SaveTrack accepted a new track without audio")
	}
}

func TestSaveTrackReparentMovesFilesBeforeRowUpdate(t *testing.T) {
	f := newManagerFixture()
	a := f.addArtist("Volt")
	b := f.addArtist("Nova")

	tr := &model.Track{ArtistID: a.ID, Title: "Night Drive"}
	audio := newUpload("audio", ".mp3", "audio/mpeg")
	artwork := newUpload("art", ".jpg", "image/jpeg")
	if err := f.mgr.SaveTrack(context.Background(), tr, &audio, &artwork); err != nil {
		t.Fatalf("SaveTrack create: %v", err)
	}

	tr.ArtistID = b.ID
	if err := f.mgr.SaveTrack(context.Background(), tr, nil, nil); err != nil {
		t.Fatalf("SaveTrack reparent: %v", err)
	}

	if len(f.store.keysWithPrefix("artist/Volt/")) != 0 {
		t.Error("old owner directory still holds track files")
	}
	if _, ok := f.store.objects["artist/Nova/Night-Drive.mp3"]; !ok {
		t.Error("audio not moved to new owner directory")
	}
	if _, ok := f.store.objects["artist/Nova/Night-Drive-icon.jpg"]; !ok {
		t.Error("artwork not moved to new owner directory")
	}
	if f.tracks.rows[tr.ID].ArtistID != b.ID {
		t.Error("row does not point at the new owner")
	}

	moveIdx := indexOf(f.log, "move artist/Volt/Night-Drive.mp3 artist/Nova/Night-Drive.mp3")
	updateIdx := indexOf(f.log, "tracks.update 1")
	if moveIdx == -1 || updateIdx == -1 || moveIdx > updateIdx {
		t.Errorf("files must move before the row update, log: %v", f.log)
	}
}

func TestSaveTrackRetitleRenamesFiles(t *testing.T) {
	f := newManagerFixture()
	a := f.addArtist("Volt")

	tr := &model.Track{ArtistID: a.ID, Title: "Night Drive"}
	audio := newUpload("audio", ".mp3", "audio/mpeg")
	if err := f.mgr.SaveTrack(context.Background(), tr, &audio, nil); err != nil {
		t.Fatalf("SaveTrack create: %v", err)
	}

	tr.Title = "Day Drive"
	if err := f.mgr.SaveTrack(context.Background(), tr, nil, nil); err != nil {
		t.Fatalf("SaveTrack retitle: %v", err)
	}
	if tr.AudioFile != "Day-Drive.mp3" {
		t.Errorf("AudioFile = %q, want Day-Drive.mp3", tr.AudioFile)
	}
	if _, ok := f.store.objects["artist/Volt/Day-Drive.mp3"]; !ok {
		t.Error("renamed audio object missing")
	}
	if _, ok := f.store.objects["artist/Volt/Night-Drive.mp3"]; ok {
		t.Error("old audio object still present")
	}
}

func TestDeleteTrackRemovesFiles(t *testing.T) {
	f := newManagerFixture()
	a := f.addArtist("Volt")
	tr := &model.Track{ArtistID: a.ID, Title: "Night Drive"}
	audio := newUpload("audio", ".mp3", "audio/mpeg")
	if err := f.mgr.SaveTrack(context.Background(), tr, &audio, nil); err != nil {
		t.Fatalf("SaveTrack: %v", err)
	}

	if err := f.mgr.DeleteTrack(context.Background(), tr.ID); err != nil {
		t.Fatalf("DeleteTrack: %v", err)
	}
	if _, ok := f.store.objects["artist/Volt/Night-Drive.mp3"]; ok {
		t.Error("audio object still present after delete")
	}
	if _, ok := f.tracks.rows[tr.ID]; ok {
		t.Error("track row still present after delete")
	}
}

func TestSaveEventCreateWithLineup(t *testing.T) {
	f := newManagerFixture()
	a := f.addArtist("Volt")

	e := &model.Event{
		Title:  "Summer Closing 2025",
		Lineup: []model.EventArtist{{ArtistID: a.ID, Position: 0, IsHeadliner: true}},
	}
	image := newUpload("hero", ".jpg", "image/jpeg")
	if err := f.mgr.SaveEvent(context.Background(), e, &image); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}
	if e.TitleSlug != "Summer-Closing-2025" {
		t.Errorf("TitleSlug = %q, want Summer-Closing-2025", e.TitleSlug)
	}
	if e.ImageFile != "image.jpg" {
		t.Errorf("ImageFile = %q, want image.jpg", e.ImageFile)
	}
	if len(f.events.lineup[e.ID]) != 1 {
		t.Errorf("lineup rows = %d, want 1", len(f.events.lineup[e.ID]))
	}
}

func TestSaveEventRetitleMovesDirectory(t *testing.T) {
	f := newManagerFixture()
	e := &model.Event{Title: "Summer Closing"}
	image := newUpload("hero", ".jpg", "image/jpeg")
	if err := f.mgr.SaveEvent(context.Background(), e, &image); err != nil {
		t.Fatalf("SaveEvent create: %v", err)
	}

	e.Title = "Winter Opening"
	if err := f.mgr.SaveEvent(context.Background(), e, nil); err != nil {
		t.Fatalf("SaveEvent retitle: %v", err)
	}
	if _, ok := f.store.objects["images/events/Winter-Opening/image.jpg"]; !ok {
		t.Error("hero image not relocated to new title directory")
	}
	if len(f.store.keysWithPrefix("images/events/Summer-Closing/")) != 0 {
		t.Error("old title directory still holds objects")
	}
}

func TestDeleteEventOrdering(t *testing.T) {
	f := newManagerFixture()
	a := f.addArtist("Volt")
	e := &model.Event{
		Title:  "Summer Closing",
		Lineup: []model.EventArtist{{ArtistID: a.ID}},
	}
	image := newUpload("hero", ".jpg", "image/jpeg")
	if err := f.mgr.SaveEvent(context.Background(), e, &image); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}

	if err := f.mgr.DeleteEvent(context.Background(), e.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	if len(f.events.lineup[e.ID]) != 0 {
		t.Error("lineup rows remain")
	}
	if len(f.store.keysWithPrefix("images/events/Summer-Closing/")) != 0 {
		t.Error("asset files remain")
	}
	if _, ok := f.events.rows[e.ID]; ok {
		t.Error("event row remains")
	}

	lineupIdx := indexOf(f.log, "events.deleteLineup 1")
	removeIdx := indexOf(f.log, "remove images/events/Summer-Closing/image.jpg")
	rowIdx := indexOf(f.log, "events.delete 1")
	if lineupIdx == -1 || removeIdx == -1 || rowIdx == -1 ||
		!(lineupIdx < removeIdx && removeIdx < rowIdx) {
		t.Errorf("delete order must be lineup, assets, row; log: %v", f.log)
	}
}

func TestDeleteEventAssetFailureLeavesRow(t *testing.T) {
	f := newManagerFixture()
	e := &model.Event{Title: "Summer Closing"}
	image := newUpload("hero", ".jpg", "image/jpeg")
	if err := f.mgr.SaveEvent(context.Background(), e, &image); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}
	f.store.failRemove["images/events/Summer-Closing/image.jpg"] = true

	if err := f.mgr.DeleteEvent(context.Background(), e.ID); err == nil {
		t.Fatal("DeleteEvent succeeded despite asset removal failure")
	}
	// Lineup went first; the event row must survive the aborted sequence so
	// no lineup row ever outlives its event.
	if _, ok := f.events.rows[e.ID]; !ok {
		t.Error("event row deleted despite aborted sequence")
	}
}

func TestReplaceIntroVideo(t *testing.T) {
	f := newManagerFixture()
	f.store.objects[IntroVideoPath] = []byte("old")

	up := newUpload("new-video", ".mov", "video/mp4")
	final, err := f.mgr.ReplaceIntroVideo(context.Background(), up)
	if err != nil {
		t.Fatalf("ReplaceIntroVideo: %v", err)
	}
	if final != IntroVideoPath {
		t.Errorf("final = %q, want %q", final, IntroVideoPath)
	}
	if string(f.store.objects[IntroVideoPath]) != "new-video" {
		t.Error("intro video content not replaced")
	}
	if f.store.hasTempKey() {
		t.Error("temp object left behind")
	}
}
