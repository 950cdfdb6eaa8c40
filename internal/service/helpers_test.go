package service

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tejashwikalptaru/qtunes/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/logger"
)

// fakeTags returns canned songs; unknown paths get a song titled after the file.
type fakeTags struct {
	mu     sync.Mutex
	songs  map[string]domain.Song
	fail   map[string]bool
	onRead func(path string)
}

func newFakeTags() *fakeTags {
	return &fakeTags{songs: map[string]domain.Song{}, fail: map[string]bool{}}
}

func (f *fakeTags) Read(path string) (domain.Song, error) {
	f.mu.Lock()
	hook := f.onRead
	song, ok := f.songs[path]
	fail := f.fail[path]
	f.mu.Unlock()

	if hook != nil {
		hook(path)
	}
	if fail {
		return domain.Song{}, domain.ErrUnsupportedFormat
	}
	if ok {
		return song, nil
	}
	song = domain.NewSong(path)
	song.ID = "id:" + path
	song.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	song.Size = 100
	return song, nil
}

func (f *fakeTags) CoverArt(string) ([]byte, string, error) {
	return nil, "", domain.ErrNoCoverArt
}

// memLibraryRepo is an in-process ports.LibraryRepository.
type memLibraryRepo struct {
	mu      sync.Mutex
	root    string
	songs   []domain.Song
	saves   int
	saveErr error
}

func (r *memLibraryRepo) Save(root string, songs []domain.Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.root, r.songs = root, slices.Clone(songs)
	return nil
}

func (r *memLibraryRepo) Load() (string, []domain.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.root, slices.Clone(r.songs), nil
}

func (r *memLibraryRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root, r.songs = "", nil
	return nil
}

func (r *memLibraryRepo) Close() error { return nil }

// memPlaylistRepo is an in-process ports.PlaylistRepository.
type memPlaylistRepo struct {
	mu         sync.Mutex
	paths      []string
	lastPlayed string
	saves      int
}

func (r *memPlaylistRepo) SavePlaylist(paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.paths = slices.Clone(paths)
	return nil
}

func (r *memPlaylistRepo) LoadPlaylist() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paths == nil {
		return []string{}, nil
	}
	return slices.Clone(r.paths), nil
}

func (r *memPlaylistRepo) SaveLastPlayed(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastPlayed = path
	return nil
}

func (r *memPlaylistRepo) LoadLastPlayed() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPlayed, nil
}

func (r *memPlaylistRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths, r.lastPlayed = nil, ""
	return nil
}

// recorder keeps every event published on a bus.
type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func newRecorder(bus *eventbus.SyncEventBus) *recorder {
	r := &recorder{}
	bus.SubscribeAll(func(e domain.Event) {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	})
	return r
}

func (r *recorder) ofType(t domain.EventType) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) count(t domain.EventType) int {
	return len(r.ofType(t))
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

func newTestBus() *eventbus.SyncEventBus {
	return eventbus.NewSyncEventBus(logger.NewTestLogger())
}

// testSongs builds songs with the given "title|artist|album|genre" specs.
func testSongs(specs ...string) []domain.Song {
	songs := make([]domain.Song, 0, len(specs))
	for i, spec := range specs {
		parts := strings.Split(spec, "|")
		for len(parts) < 4 {
			parts = append(parts, domain.Placeholder)
		}
		s := domain.NewSong(filepath.Join("/music", parts[1], parts[2], parts[0]+".mp3"))
		s.ID = s.Path
		s.Title, s.Artist, s.Album, s.Genre = parts[0], parts[1], parts[2], parts[3]
		s.Track = string(rune('1' + i%9))
		songs = append(songs, s)
	}
	return songs
}

func paths(songs []domain.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.Path
	}
	return out
}

func titles(songs []domain.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.Title
	}
	return out
}
