package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"backline/core/slug"
	"backline/logger"
	"backline/model"
	"backline/storage"
)

// Sentinel errors surfaced to handlers.
var (
	// ErrNotFound reports a missing entity row.
	ErrNotFound = errors.New("not found")
	// ErrArtistReferenced blocks artist deletion while tracks or lineup
	// entries still point at the artist.
	ErrArtistReferenced = errors.New("artist is still referenced")
	// ErrEmptySlug reports a display name that normalizes to nothing.
	ErrEmptySlug = errors.New("name normalizes to an empty slug")
	// ErrSlugTaken reports a nickname whose slug already belongs to another
	// artist.
	ErrSlugTaken = errors.New("slug already belongs to another artist")
)

// ArtistStore is the artist persistence the manager needs.
type ArtistStore interface {
	GetArtistByID(ctx context.Context, id int64) (*model.Artist, error)
	GetArtistBySlug(ctx context.Context, slug string) (*model.Artist, error)
	CreateArtist(ctx context.Context, a *model.Artist) (int64, error)
	UpdateArtist(ctx context.Context, a *model.Artist) error
	DeleteArtist(ctx context.Context, id int64) error
}

// TrackStore is the track persistence the manager needs.
type TrackStore interface {
	GetTrackByID(ctx context.Context, id int64) (*model.Track, error)
	CreateTrack(ctx context.Context, t *model.Track) (int64, error)
	UpdateTrack(ctx context.Context, t *model.Track) error
	DeleteTrack(ctx context.Context, id int64) error
	CountTracksByArtist(ctx context.Context, artistID int64) (int64, error)
}

// EventStore is the event persistence the manager needs.
type EventStore interface {
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, id int64) error
	ReplaceLineup(ctx context.Context, eventID int64, lineup []model.EventArtist) error
	DeleteLineup(ctx context.Context, eventID int64) error
	CountLineupByArtist(ctx context.Context, artistID int64) (int64, error)
}

// Manager ties row lifecycles to asset lifecycles. Every mutation sequences
// its storage calls so the row points at a valid (or absent) asset at each
// step this layer can control: assets are written or moved first, the row is
// written last. Failed sequences abort without compensation.
type Manager struct {
	store    storage.ObjectStore
	replacer *Replacer
	artists  ArtistStore
	tracks   TrackStore
	events   EventStore
}

// NewManager wires a Manager.
func NewManager(store storage.ObjectStore, artists ArtistStore, tracks TrackStore, events EventStore) *Manager {
	return &Manager{
		store:    store,
		replacer: NewReplacer(store),
		artists:  artists,
		tracks:   tracks,
		events:   events,
	}
}

// AssetURL derives the public URL for an object path.
func (m *Manager) AssetURL(objectPath string) string {
	return m.store.PublicURL(objectPath)
}

// SaveArtist creates or updates an artist, replacing the avatar when an
// upload is present. The normalized nickname is always recomputed from the
// nickname; on rename the artist's whole asset directory moves to the new
// slug before the row is written. A nickname whose slug already belongs to
// another artist is refused before anything touches storage, since the slug
// keys the asset directory.
func (m *Manager) SaveArtist(ctx context.Context, a *model.Artist, avatar *Upload) error {
	newSlug := slug.Make(a.Nickname)
	if newSlug == "" {
		return fmt.Errorf("nickname %q: %w", a.Nickname, ErrEmptySlug)
	}
	holder, err := m.artists.GetArtistBySlug(ctx, newSlug)
	if err != nil {
		return err
	}
	if holder != nil && holder.ID != a.ID {
		return fmt.Errorf("nickname %q: %w", a.Nickname, ErrSlugTaken)
	}
	a.NormalizedNickname = newSlug

	if a.ID == 0 {
		if avatar != nil {
			final, err := m.replacer.Replace(ctx, ArtistDir(newSlug), AvatarPrefix, *avatar)
			if err != nil {
				return err
			}
			a.AvatarFile = path.Base(final)
		}
		id, err := m.artists.CreateArtist(ctx, a)
		if err != nil {
			return err
		}
		a.ID = id
		return nil
	}

	prev, err := m.artists.GetArtistByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if prev == nil {
		return fmt.Errorf("artist %d: %w", a.ID, ErrNotFound)
	}

	if prev.NormalizedNickname != newSlug {
		if err := m.moveDir(ctx, ArtistDir(prev.NormalizedNickname), ArtistDir(newSlug)); err != nil {
			return fmt.Errorf("failed to relocate assets for renamed artist: %w", err)
		}
	}

	if a.AvatarFile == "" {
		a.AvatarFile = prev.AvatarFile
	}
	if avatar != nil {
		final, err := m.replacer.Replace(ctx, ArtistDir(newSlug), AvatarPrefix, *avatar)
		if err != nil {
			return err
		}
		a.AvatarFile = path.Base(final)
	}

	return m.artists.UpdateArtist(ctx, a)
}

// DeleteArtist removes an artist and its stored files. Deletion is refused
// while any track or lineup entry references the artist; the check runs
// before any destructive call.
func (m *Manager) DeleteArtist(ctx context.Context, id int64) error {
	a, err := m.artists.GetArtistByID(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("artist %d: %w", id, ErrNotFound)
	}

	nTracks, err := m.tracks.CountTracksByArtist(ctx, id)
	if err != nil {
		return err
	}
	nLineup, err := m.events.CountLineupByArtist(ctx, id)
	if err != nil {
		return err
	}
	if nTracks > 0 || nLineup > 0 {
		return fmt.Errorf("%w: %d tracks, %d lineup entries", ErrArtistReferenced, nTracks, nLineup)
	}

	if err := m.removeDir(ctx, ArtistDir(a.NormalizedNickname)); err != nil {
		return err
	}
	return m.artists.DeleteArtist(ctx, id)
}

// SaveTrack creates or updates a track. Audio is required on create,
// artwork optional. When the owning artist changes, existing files are
// moved into the new artist's directory before the row is updated; a title
// change renames them to the new title slug the same way.
func (m *Manager) SaveTrack(ctx context.Context, t *model.Track, audio, artwork *Upload) error {
	owner, err := m.artists.GetArtistByID(ctx, t.ArtistID)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("artist %d: %w", t.ArtistID, ErrNotFound)
	}

	newSlug := slug.Make(t.Title)
	if newSlug == "" {
		return fmt.Errorf("title %q: %w", t.Title, ErrEmptySlug)
	}
	t.TitleSlug = newSlug
	newDir := ArtistDir(owner.NormalizedNickname)

	if t.ID == 0 {
		if audio == nil {
			return errors.New("audio upload is required for a new track")
		}
		final, err := m.replacer.Replace(ctx, newDir, AudioPrefix(newSlug), *audio)
		if err != nil {
			return err
		}
		t.AudioFile = path.Base(final)

		if artwork != nil {
			final, err := m.replacer.Replace(ctx, newDir, ArtworkPrefix(newSlug), *artwork)
			if err != nil {
				return err
			}
			t.ArtworkFile = path.Base(final)
		}

		id, err := m.tracks.CreateTrack(ctx, t)
		if err != nil {
			return err
		}
		t.ID = id
		return nil
	}

	prev, err := m.tracks.GetTrackByID(ctx, t.ID)
	if err != nil {
		return err
	}
	if prev == nil {
		return fmt.Errorf("track %d: %w", t.ID, ErrNotFound)
	}

	prevOwner, err := m.artists.GetArtistByID(ctx, prev.ArtistID)
	if err != nil {
		return err
	}
	if prevOwner == nil {
		return fmt.Errorf("artist %d: %w", prev.ArtistID, ErrNotFound)
	}
	oldDir := ArtistDir(prevOwner.NormalizedNickname)

	ownerChanged := prev.ArtistID != t.ArtistID
	slugChanged := prev.TitleSlug != newSlug

	t.AudioFile = prev.AudioFile
	t.ArtworkFile = prev.ArtworkFile

	if ownerChanged || slugChanged {
		if prev.AudioFile != "" {
			name := prev.AudioFile
			if slugChanged {
				name = AssetName(AudioPrefix(newSlug), path.Ext(prev.AudioFile))
			}
			if err := m.store.Move(ctx, oldDir+"/"+prev.AudioFile, newDir+"/"+name); err != nil {
				return fmt.Errorf("failed to relocate track audio: %w", err)
			}
			t.AudioFile = name
		}
		if prev.ArtworkFile != "" {
			name := prev.ArtworkFile
			if slugChanged {
				name = AssetName(ArtworkPrefix(newSlug), path.Ext(prev.ArtworkFile))
			}
			if err := m.store.Move(ctx, oldDir+"/"+prev.ArtworkFile, newDir+"/"+name); err != nil {
				return fmt.Errorf("failed to relocate track artwork: %w", err)
			}
			t.ArtworkFile = name
		}
	}

	if audio != nil {
		final, err := m.replacer.Replace(ctx, newDir, AudioPrefix(newSlug), *audio)
		if err != nil {
			return err
		}
		t.AudioFile = path.Base(final)
	}
	if artwork != nil {
		final, err := m.replacer.Replace(ctx, newDir, ArtworkPrefix(newSlug), *artwork)
		if err != nil {
			return err
		}
		t.ArtworkFile = path.Base(final)
	}

	return m.tracks.UpdateTrack(ctx, t)
}

// DeleteTrack removes a track's stored files, then its row.
func (m *Manager) DeleteTrack(ctx context.Context, id int64) error {
	t, err := m.tracks.GetTrackByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("track %d: %w", id, ErrNotFound)
	}

	owner, err := m.artists.GetArtistByID(ctx, t.ArtistID)
	if err != nil {
		return err
	}
	if owner != nil {
		dir := ArtistDir(owner.NormalizedNickname)
		if t.AudioFile != "" {
			if err := m.store.Remove(ctx, dir+"/"+t.AudioFile); err != nil {
				return err
			}
		}
		if t.ArtworkFile != "" {
			if err := m.store.Remove(ctx, dir+"/"+t.ArtworkFile); err != nil {
				return err
			}
		}
	}

	return m.tracks.DeleteTrack(ctx, id)
}

// SaveEvent creates or updates an event together with its lineup. A title
// change moves the event's asset directory to the new title slug before the
// row is written.
func (m *Manager) SaveEvent(ctx context.Context, e *model.Event, image *Upload) error {
	newSlug := slug.Make(e.Title)
	if newSlug == "" {
		return fmt.Errorf("title %q: %w", e.Title, ErrEmptySlug)
	}
	e.TitleSlug = newSlug

	if e.ID == 0 {
		if image != nil {
			final, err := m.replacer.Replace(ctx, EventDir(newSlug), ImagePrefix, *image)
			if err != nil {
				return err
			}
			e.ImageFile = path.Base(final)
		}
		id, err := m.events.CreateEvent(ctx, e)
		if err != nil {
			return err
		}
		e.ID = id
		if len(e.Lineup) > 0 {
			return m.events.ReplaceLineup(ctx, e.ID, e.Lineup)
		}
		return nil
	}

	prev, err := m.events.GetEventByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if prev == nil {
		return fmt.Errorf("event %d: %w", e.ID, ErrNotFound)
	}

	if prev.TitleSlug != newSlug {
		if err := m.moveDir(ctx, EventDir(prev.TitleSlug), EventDir(newSlug)); err != nil {
			return fmt.Errorf("failed to relocate assets for retitled event: %w", err)
		}
	}

	if e.ImageFile == "" {
		e.ImageFile = prev.ImageFile
	}
	if image != nil {
		final, err := m.replacer.Replace(ctx, EventDir(newSlug), ImagePrefix, *image)
		if err != nil {
			return err
		}
		e.ImageFile = path.Base(final)
	}

	if err := m.events.UpdateEvent(ctx, e); err != nil {
		return err
	}
	if e.Lineup != nil {
		return m.events.ReplaceLineup(ctx, e.ID, e.Lineup)
	}
	return nil
}

// DeleteEvent removes an event: lineup rows first (relational constraint),
// then the asset directory, then the event row. A failure at any step
// aborts, leaving earlier steps done; lineup rows never outlive their event.
func (m *Manager) DeleteEvent(ctx context.Context, id int64) error {
	e, err := m.events.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("event %d: %w", id, ErrNotFound)
	}

	if err := m.events.DeleteLineup(ctx, id); err != nil {
		return err
	}
	if err := m.removeDir(ctx, EventDir(e.TitleSlug)); err != nil {
		return err
	}
	return m.events.DeleteEvent(ctx, id)
}

// ReplaceIntroVideo stores the site intro video under its fixed name.
func (m *Manager) ReplaceIntroVideo(ctx context.Context, up Upload) (string, error) {
	up.Ext = ".mp4"
	return m.replacer.Replace(ctx, "videos", "intro.", up)
}

// moveDir relocates every object under oldDir to the same relative path in
// newDir. Orphaned temp objects are left behind for the prune sweep instead
// of being carried along.
func (m *Manager) moveDir(ctx context.Context, oldDir, newDir string) error {
	keys, err := m.store.List(ctx, oldDir+"/")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if isTempKey(key) {
			continue
		}
		dst := newDir + "/" + strings.TrimPrefix(key, oldDir+"/")
		if err := m.store.Move(ctx, key, dst); err != nil {
			return err
		}
	}
	if len(keys) > 0 {
		logger.Info("Relocated asset directory",
			logger.String("from", oldDir),
			logger.String("to", newDir),
			logger.Int("objects", len(keys)))
	}
	return nil
}

// removeDir deletes every object under dir.
func (m *Manager) removeDir(ctx context.Context, dir string) error {
	keys, err := m.store.List(ctx, dir+"/")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := m.store.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
