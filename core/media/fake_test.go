package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"backline/model"
)

// fakeStore is an in-memory ObjectStore. Every mutation appends to ops so
// tests can assert call ordering; fail* fields inject step failures.
type fakeStore struct {
	objects map[string][]byte
	ops     *[]string

	failUploads bool
	failRemove  map[string]bool
	failMove    bool
	failList    bool
}

func newFakeStore(log *[]string) *fakeStore {
	return &fakeStore{
		objects:    make(map[string][]byte),
		ops:        log,
		failRemove: make(map[string]bool),
	}
}

func (s *fakeStore) record(op string) {
	if s.ops != nil {
		*s.ops = append(*s.ops, op)
	}
}

func (s *fakeStore) Upload(_ context.Context, objectPath string, r io.Reader, _ int64, _ string) error {
	if s.failUploads {
		return errors.New("injected upload failure")
	}
	var buf bytes.Buffer
	if r != nil {
		io.Copy(&buf, r)
	}
	s.objects[objectPath] = buf.Bytes()
	s.record("upload " + objectPath)
	return nil
}

func (s *fakeStore) List(_ context.Context, prefix string) ([]string, error) {
	if s.failList {
		return nil, errors.New("injected list failure")
	}
	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *fakeStore) Remove(_ context.Context, objectPath string) error {
	if s.failRemove[objectPath] {
		return fmt.Errorf("injected remove failure for %s", objectPath)
	}
	if _, ok := s.objects[objectPath]; !ok {
		return fmt.Errorf("object %s does not exist", objectPath)
	}
	delete(s.objects, objectPath)
	s.record("remove " + objectPath)
	return nil
}

func (s *fakeStore) Move(_ context.Context, src, dst string) error {
	if s.failMove {
		return errors.New("injected move failure")
	}
	data, ok := s.objects[src]
	if !ok {
		return fmt.Errorf("object %s does not exist", src)
	}
	s.objects[dst] = data
	delete(s.objects, src)
	s.record("move " + src + " " + dst)
	return nil
}

func (s *fakeStore) PublicURL(objectPath string) string {
	return "/static/" + objectPath
}

// keysWithPrefix returns stored keys under prefix, sorted.
func (s *fakeStore) keysWithPrefix(prefix string) []string {
	keys, _ := s.List(context.Background(), prefix)
	return keys
}

// hasTempKey reports whether any temp object exists anywhere.
func (s *fakeStore) hasTempKey() bool {
	for key := range s.objects {
		if isTempKey(key) {
			return true
		}
	}
	return false
}

// fakeArtists implements ArtistStore in memory.
type fakeArtists struct {
	rows   map[int64]*model.Artist
	nextID int64
	ops    *[]string
}

func newFakeArtists(log *[]string) *fakeArtists {
	return &fakeArtists{rows: make(map[int64]*model.Artist), nextID: 1, ops: log}
}

func (f *fakeArtists) record(op string) {
	if f.ops != nil {
		*f.ops = append(*f.ops, op)
	}
}

func (f *fakeArtists) GetArtistByID(_ context.Context, id int64) (*model.Artist, error) {
	a, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeArtists) GetArtistBySlug(_ context.Context, slug string) (*model.Artist, error) {
	for _, a := range f.rows {
		if a.NormalizedNickname == slug {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeArtists) CreateArtist(_ context.Context, a *model.Artist) (int64, error) {
	id := f.nextID
	f.nextID++
	cp := *a
	cp.ID = id
	f.rows[id] = &cp
	f.record(fmt.Sprintf("artists.create %d", id))
	return id, nil
}

func (f *fakeArtists) UpdateArtist(_ context.Context, a *model.Artist) error {
	if _, ok := f.rows[a.ID]; !ok {
		return fmt.Errorf("artist %d does not exist", a.ID)
	}
	cp := *a
	f.rows[a.ID] = &cp
	f.record(fmt.Sprintf("artists.update %d", a.ID))
	return nil
}

func (f *fakeArtists) DeleteArtist(_ context.Context, id int64) error {
	delete(f.rows, id)
	f.record(fmt.Sprintf("artists.delete %d", id))
	return nil
}

// fakeTracks implements TrackStore in memory.
type fakeTracks struct {
	rows   map[int64]*model.Track
	nextID int64
	ops    *[]string
}

func newFakeTracks(log *[]string) *fakeTracks {
	return &fakeTracks{rows: make(map[int64]*model.Track), nextID: 1, ops: log}
}

func (f *fakeTracks) record(op string) {
	if f.ops != nil {
		*f.ops = append(*f.ops, op)
	}
}

func (f *fakeTracks) GetTrackByID(_ context.Context, id int64) (*model.Track, error) {
	t, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTracks) CreateTrack(_ context.Context, t *model.Track) (int64, error) {
	id := f.nextID
	f.nextID++
	cp := *t
	cp.ID = id
	f.rows[id] = &cp
	f.record(fmt.Sprintf("tracks.create %d", id))
	return id, nil
}

func (f *fakeTracks) UpdateTrack(_ context.Context, t *model.Track) error {
	if _, ok := f.rows[t.ID]; !ok {
		return fmt.Errorf("track %d does not exist", t.ID)
	}
	cp := *t
	f.rows[t.ID] = &cp
	f.record(fmt.Sprintf("tracks.update %d", t.ID))
	return nil
}

func (f *fakeTracks) DeleteTrack(_ context.Context, id int64) error {
	delete(f.rows, id)
	f.record(fmt.Sprintf("tracks.delete %d", id))
	return nil
}

func (f *fakeTracks) CountTracksByArtist(_ context.Context, artistID int64) (int64, error) {
	var n int64
	for _, t := range f.rows {
		if t.ArtistID == artistID {
			n++
		}
	}
	return n, nil
}

// fakeEvents implements EventStore in memory.
type fakeEvents struct {
	rows   map[int64]*model.Event
	lineup map[int64][]model.EventArtist
	nextID int64
	ops    *[]string
}

func newFakeEvents(log *[]string) *fakeEvents {
	return &fakeEvents{
		rows:   make(map[int64]*model.Event),
		lineup: make(map[int64][]model.EventArtist),
		nextID: 1,
		ops:    log,
	}
}

func (f *fakeEvents) record(op string) {
	if f.ops != nil {
		*f.ops = append(*f.ops, op)
	}
}

func (f *fakeEvents) GetEventByID(_ context.Context, id int64) (*model.Event, error) {
	e, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) CreateEvent(_ context.Context, e *model.Event) (int64, error) {
	id := f.nextID
	f.nextID++
	cp := *e
	cp.ID = id
	f.rows[id] = &cp
	f.record(fmt.Sprintf("events.create %d", id))
	return id, nil
}

func (f *fakeEvents) UpdateEvent(_ context.Context, e *model.Event) error {
	if _, ok := f.rows[e.ID]; !ok {
		return fmt.Errorf("event %d does not exist", e.ID)
	}
	cp := *e
	f.rows[e.ID] = &cp
	f.record(fmt.Sprintf("events.update %d", e.ID))
	return nil
}

func (f *fakeEvents) DeleteEvent(_ context.Context, id int64) error {
	delete(f.rows, id)
	f.record(fmt.Sprintf("events.delete %d", id))
	return nil
}

func (f *fakeEvents) ReplaceLineup(_ context.Context, eventID int64, lineup []model.EventArtist) error {
	f.lineup[eventID] = append([]model.EventArtist(nil), lineup...)
	f.record(fmt.Sprintf("events.replaceLineup %d", eventID))
	return nil
}

func (f *fakeEvents) DeleteLineup(_ context.Context, eventID int64) error {
	delete(f.lineup, eventID)
	f.record(fmt.Sprintf("events.deleteLineup %d", eventID))
	return nil
}

func (f *fakeEvents) CountLineupByArtist(_ context.Context, artistID int64) (int64, error) {
	var n int64
	for _, slots := range f.lineup {
		for _, slot := range slots {
			if slot.ArtistID == artistID {
				n++
			}
		}
	}
	return n, nil
}
